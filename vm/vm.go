// Package vm implements the register-based bytecode interpreter of
// spec.md §4.4: a growable register stack, a growable call-frame
// stack, a flat globals table, and frame-by-frame runtime error
// reporting, tied together with package heap's garbage collector.
package vm

import (
	"github.com/thistle-lang/thistle/heap"
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/value"
)

// VM owns one heap and the mutable state of one run: the shared
// register stack (every active frame's window is a slice of it), the
// call-frame stack, and the flat, lazily-grown globals table.
type VM struct {
	heap *heap.Heap

	registers []value.Value
	frames    []*Frame

	globals       []value.Value
	globalDefined []bool

	ctorNameCache *object.ObjString
}

// New creates a VM over h. Distinct VMs share nothing (spec.md §5).
func New(h *heap.Heap) *VM {
	return &VM{heap: h}
}

// Run interprets fn as the program's top-level function to completion,
// returning its result value or a *RuntimeError (spec.md §7, kind 4).
func (vm *VM) Run(fn *object.ObjFunction) (value.Value, error) {
	vm.frames = vm.frames[:0]
	vm.registers = vm.registers[:0]
	vm.pushFrame(fn, 0, 0)
	return vm.run()
}

func (vm *VM) ensureRegisters(n int) {
	for len(vm.registers) < n {
		vm.registers = append(vm.registers, value.Null())
	}
}

// pushFrame allocates a fresh register window immediately above the
// current top of the register stack and pushes a new frame over it.
// Because Go slices are reallocated (never relocated pointers the
// caller kept around), "growth invalidates the frame pointer" from
// spec.md §4.4/§9 has no analogue here: every access goes through
// vm.registers[frame.base+offset], recomputed on each read, so growth
// is transparent.
func (vm *VM) pushFrame(fn *object.ObjFunction, base int, destReg byte) *Frame {
	vm.ensureRegisters(base + fn.RegisterCount)
	f := &Frame{fn: fn, base: base, destReg: destReg}
	vm.frames = append(vm.frames, f)
	return f
}

func (vm *VM) popFrame() {
	vm.frames = vm.frames[:len(vm.frames)-1]
}

func (vm *VM) getReg(f *Frame, r byte) value.Value {
	return vm.registers[f.base+int(r)]
}

func (vm *VM) setReg(f *Frame, r byte, v value.Value) {
	vm.registers[f.base+int(r)] = v
}

func (vm *VM) ensureGlobalSlot(slot uint16) {
	for len(vm.globals) <= int(slot) {
		vm.globals = append(vm.globals, value.Null())
		vm.globalDefined = append(vm.globalDefined, false)
	}
}

// collectIfNeeded runs a GC cycle when the heap's trigger policy says
// to, using every active frame's registers, every active frame's
// function, and every defined global as roots (spec.md §4.5, "Roots").
func (vm *VM) collectIfNeeded() {
	if !vm.heap.ShouldCollect() || len(vm.frames) == 0 {
		return
	}
	top := vm.frames[len(vm.frames)-1]
	stackTop := top.base + top.fn.RegisterCount

	fns := make([]*object.ObjFunction, len(vm.frames))
	for i, f := range vm.frames {
		fns[i] = f.fn
	}

	var globalRoots []value.Value
	for i, defined := range vm.globalDefined {
		if defined {
			globalRoots = append(globalRoots, vm.globals[i])
		}
	}

	vm.heap.Collect(heap.Roots{
		Stack:   vm.registers[:stackTop],
		Frames:  fns,
		Globals: globalRoots,
	})
}

// run is the tight dispatch loop: read one opcode, execute it, repeat
// until RETURN unwinds the outermost frame or an error aborts.
func (vm *VM) run() (value.Value, error) {
	for {
		if len(vm.frames) == 0 {
			return value.Null(), nil
		}
		frame := vm.frames[len(vm.frames)-1]
		vm.collectIfNeeded()

		code := frame.fn.Chunk.Code
		if frame.ip >= len(code) {
			return value.Null(), vm.runtimeError("Reached end of chunk without a RETURN.")
		}
		opStart := frame.ip
		op := opcode.Code(code[frame.ip])
		frame.ip++
		frame.line = frame.fn.Chunk.LineAt(opStart)

		result, done, err := vm.dispatch(frame, op)
		if err != nil {
			return value.Null(), err
		}
		if done {
			return result, nil
		}
	}
}
