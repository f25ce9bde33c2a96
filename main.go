/*
File   : thistle/main.go
Package main is the entry point for the Thistle interpreter.
It provides two modes of operation:
1. REPL Mode (default): Interactive Read-Eval-Print Loop for live coding
2. File Mode: Execute a Thistle source file from the command line
*/
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/thistle-lang/thistle/repl"
	"github.com/thistle-lang/thistle/run"
)

// VERSION is the current version of the Thistle interpreter.
var VERSION = "v1.0.0"

// PROMPT is the command prompt displayed in REPL mode.
var PROMPT = "thistle >>> "

// BANNER is the ASCII art logo displayed when starting the REPL.
var BANNER = `
 ▄▄▄▄▄▄▄▄▄▄▄  ▄         ▄  ▄▄▄▄▄▄▄▄▄▄▄  ▄▄▄▄▄▄▄▄▄▄▄  ▄         ▄  ▄          ▄▄▄▄▄▄▄▄▄▄▄
▐░░░░░░░░░░░▌▐░▌       ▐░▌▐░░░░░░░░░░░▌▐░░░░░░░░░░░▌▐░▌       ▐░▌▐░▌        ▐░░░░░░░░░░░▌
▐░█▀▀▀▀▀▀▀█░▌▐░▌       ▐░▌▐░█▀▀▀▀▀▀▀▀▀ ░▌▀▀▀▀█░█▀▀▀▀ ▐░▌       ▐░▌▐░▌        ▐░█▀▀▀▀▀▀▀▀▀
     ▐░▌     ▐░▌       ▐░▌▐░▌               ▐░▌     ▐░▌       ▐░▌▐░▌        ▐░▌
     ▐░▌     ▐░█▄▄▄▄▄▄▄█░▌▐░█▄▄▄▄▄▄▄▄▄       ▐░▌     ▐░▌       ▐░▌▐░▌        ▐░█▄▄▄▄▄▄▄▄▄
     ▐░▌     ▐░░░░░░░░░░░▌▐░░░░░░░░░░░▌      ▐░▌     ▐░▌       ▐░▌▐░▌        ▐░░░░░░░░░░░▌
`

// LINE is a separator line used for visual formatting.
var LINE = "----------------------------------------------------------------"

var (
	redColor = color.New(color.FgRed)
)

// main is the entry point of the Thistle interpreter.
//
// Usage:
//
//	thistle              - Start in REPL (interactive) mode
//	thistle <script>     - Execute the given Thistle source file
//	thistle --help       - Display help information
//	thistle --version    - Display version information
func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			showHelp()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		}
		runFile(os.Args[1])
		return
	}

	repler := repl.New(BANNER, VERSION, LINE, PROMPT)
	repler.Start(os.Stdin, os.Stdout)
}

func showHelp() {
	color.New(color.FgCyan).Println("Thistle - A small dynamically-typed scripting language")
	color.New(color.FgYellow).Println("  thistle                Start interactive REPL mode")
	color.New(color.FgYellow).Println("  thistle <path-to-file>  Execute a Thistle source file")
	color.New(color.FgYellow).Println("  thistle --help          Display this help message")
	color.New(color.FgYellow).Println("  thistle --version       Display version information")
}

func showVersion() {
	color.New(color.FgCyan).Printf("Thistle %s\n", VERSION)
}

// runFile reads and runs path, printing the result or error per spec.md
// §6 and exiting nonzero on any failure stage.
func runFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] Could not read file '%s': %v\n", path, err)
		os.Exit(1)
	}

	result, runErr := run.Source(string(source))
	if runErr != nil {
		redColor.Fprintln(os.Stderr, runErr.Error())
		os.Exit(1)
	}
	os.Stdout.WriteString(result + "\n")
}
