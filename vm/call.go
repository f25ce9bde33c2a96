package vm

import (
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/value"
)

// call implements CALL's polymorphic dispatch (spec.md §4.4): a plain
// function call, a call through a bound method, or a class used as a
// constructor. Any other callee is a runtime error.
func (vm *VM) call(caller *Frame, callee value.Value, argRegs []byte, dst byte) error {
	switch {
	case callee.IsObj(value.ObjFunctionType):
		fn := callee.Obj.(*object.ObjFunction)
		return vm.callFunction(caller, fn, argRegs, dst, value.Value{}, false)

	case callee.IsObj(value.ObjBoundMethodType):
		bm := callee.Obj.(*object.ObjBoundMethod)
		return vm.callFunction(caller, bm.Method, argRegs, dst, bm.Receiver, true)

	case callee.IsObj(value.ObjClassType):
		cls := callee.Obj.(*object.ObjClass)
		inst := vm.heap.NewInstance(cls)
		instVal := value.FromObj(inst)
		if ctor, ok := cls.Method(vm.ctorName()); ok {
			fn := ctor.Obj.(*object.ObjFunction)
			return vm.callFunction(caller, fn, argRegs, dst, instVal, true)
		}
		if len(argRegs) != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", len(argRegs))
		}
		vm.setReg(caller, dst, instVal)
		return nil

	default:
		return vm.runtimeError("Attempted to call a non-function value.")
	}
}

// invoke implements INVOKE (spec.md §4.4): the fused "look up and call"
// path for obj.name(args). An instance field shadows a class method, and
// when it does, the field is called as any other callable value.
func (vm *VM) invoke(caller *Frame, objVal value.Value, name *object.ObjString, argRegs []byte, dst byte) error {
	if !objVal.IsObj(value.ObjInstanceType) {
		return vm.runtimeError("Only instances have methods.")
	}
	inst := objVal.Obj.(*object.ObjInstance)
	if fieldVal, ok := inst.Field(name); ok {
		return vm.call(caller, fieldVal, argRegs, dst)
	}
	if methodVal, ok := inst.Class.Method(name); ok {
		fn := methodVal.Obj.(*object.ObjFunction)
		return vm.callFunction(caller, fn, argRegs, dst, objVal, true)
	}
	return vm.runtimeError("Undefined property '%s'.", name.Chars)
}

// callFunction checks arity, pushes a new frame stacked directly above
// caller's register window, and copies the receiver (if any) and
// arguments into registers 0..arity-1, zero-filling the rest (spec.md
// §4.4, "Call").
func (vm *VM) callFunction(caller *Frame, fn *object.ObjFunction, argRegs []byte, dst byte, receiver value.Value, hasReceiver bool) error {
	expected := fn.Arity
	if hasReceiver {
		expected--
	}
	if len(argRegs) != expected {
		return vm.runtimeError("Expected %d arguments but got %d.", expected, len(argRegs))
	}

	args := make([]value.Value, len(argRegs))
	for i, r := range argRegs {
		args[i] = vm.getReg(caller, r)
	}

	newBase := caller.base + caller.fn.RegisterCount
	newFrame := vm.pushFrame(fn, newBase, dst)

	offset := 0
	if hasReceiver {
		vm.setReg(newFrame, 0, receiver)
		offset = 1
	}
	for i, v := range args {
		vm.setReg(newFrame, byte(offset+i), v)
	}
	for i := offset + len(args); i < fn.RegisterCount; i++ {
		vm.setReg(newFrame, byte(i), value.Null())
	}
	return nil
}

// ctorName returns the canonical interned "constructor" string, lazily
// caching it so a Class call site doesn't re-hash the literal every time.
func (vm *VM) ctorName() *object.ObjString {
	if vm.ctorNameCache == nil {
		vm.ctorNameCache = vm.heap.NewString("constructor")
	}
	return vm.ctorNameCache
}
