// Package run composes the three pipeline stages — parse, compile,
// interpret — into the single caller-facing entry point spec.md §7
// calls run_source: the first stage to fail short-circuits the rest.
package run

import (
	"fmt"

	"github.com/thistle-lang/thistle/compiler"
	"github.com/thistle-lang/thistle/heap"
	"github.com/thistle-lang/thistle/parser"
	"github.com/thistle-lang/thistle/value"
	"github.com/thistle-lang/thistle/vm"
)

// Source runs a complete program from source text on a fresh heap and
// VM, returning the display string of its result (spec.md §6) or the
// first error from whichever stage failed.
func Source(src string) (string, error) {
	v, _, err := SourceWithHeap(src)
	if err != nil {
		return "", err
	}
	return value.ToDisplayString(v), nil
}

// SourceWithHeap is like Source but also returns the fresh heap the
// program ran on, so a caller can pass it to RunOn for later inputs.
func SourceWithHeap(src string) (value.Value, *heap.Heap, error) {
	h := heap.New()
	v, err := RunOn(src, h)
	return v, h, err
}

// RunOn parses, compiles, and interprets src against an existing heap,
// so successive calls share its interned strings. Each call uses a new
// compiler and VM, so globals are not carried from one call to the next.
func RunOn(src string, h *heap.Heap) (value.Value, error) {
	program, err := parser.Parse(src)
	if err != nil {
		return value.Null(), fmt.Errorf("parse error: %w", err)
	}

	fn, err := compiler.Compile(program, h)
	if err != nil {
		return value.Null(), fmt.Errorf("compile error: %w", err)
	}

	v, err := vm.New(h).Run(fn)
	if err != nil {
		return value.Null(), err
	}
	return v, nil
}
