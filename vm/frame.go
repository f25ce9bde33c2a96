package vm

import "github.com/thistle-lang/thistle/object"

// Frame is one activation record: the function being executed, its
// instruction pointer, the base index of its register window inside
// the VM's shared register stack, the line of its currently executing
// instruction (for error traces), and the caller's register that
// should receive this call's result (spec.md Glossary, "Frame").
type Frame struct {
	fn      *object.ObjFunction
	ip      int
	base    int
	line    int
	destReg byte
}
