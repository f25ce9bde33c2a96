package vm

import (
	"math"

	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/value"
)

func (vm *VM) readByte(f *Frame) byte {
	b := f.fn.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readU16(f *Frame) uint16 {
	v := f.fn.Chunk.ReadUint16(f.ip)
	f.ip += 2
	return v
}

// dispatch executes exactly one already-read opcode against frame. It
// returns (result, true, nil) when the whole program finished via a
// RETURN at the outermost frame, (_, false, nil) to keep looping, or an
// error on a runtime failure.
func (vm *VM) dispatch(frame *Frame, op opcode.Code) (value.Value, bool, error) {
	switch op {
	case opcode.LOAD_CONST:
		dst := vm.readByte(frame)
		idx := vm.readU16(frame)
		vm.setReg(frame, dst, frame.fn.Chunk.Constants[idx])

	case opcode.LOAD_NULL:
		dst := vm.readByte(frame)
		vm.setReg(frame, dst, value.Null())

	case opcode.LOAD_TRUE:
		dst := vm.readByte(frame)
		vm.setReg(frame, dst, value.BoolValue(true))

	case opcode.LOAD_FALSE:
		dst := vm.readByte(frame)
		vm.setReg(frame, dst, value.BoolValue(false))

	case opcode.MOVE:
		dst := vm.readByte(frame)
		src := vm.readByte(frame)
		vm.setReg(frame, dst, vm.getReg(frame, src))

	case opcode.ADD:
		dst, a, b := vm.readByte(frame), vm.readByte(frame), vm.readByte(frame)
		v, err := vm.add(vm.getReg(frame, a), vm.getReg(frame, b))
		if err != nil {
			return value.Null(), false, err
		}
		vm.setReg(frame, dst, v)

	case opcode.SUB, opcode.MUL, opcode.DIV:
		dst, a, b := vm.readByte(frame), vm.readByte(frame), vm.readByte(frame)
		x, y := vm.getReg(frame, a), vm.getReg(frame, b)
		if x.Kind != value.KindNumber || y.Kind != value.KindNumber {
			return value.Null(), false, vm.runtimeError("Operands must be numbers.")
		}
		var n float64
		switch op {
		case opcode.SUB:
			n = x.Number - y.Number
		case opcode.MUL:
			n = x.Number * y.Number
		case opcode.DIV:
			n = x.Number / y.Number
		}
		vm.setReg(frame, dst, value.Num(n))

	case opcode.GT, opcode.LT:
		dst, a, b := vm.readByte(frame), vm.readByte(frame), vm.readByte(frame)
		x, y := vm.getReg(frame, a), vm.getReg(frame, b)
		if x.Kind != value.KindNumber || y.Kind != value.KindNumber {
			return value.Null(), false, vm.runtimeError("Operands must be numbers.")
		}
		var result bool
		if op == opcode.GT {
			result = x.Number > y.Number
		} else {
			result = x.Number < y.Number
		}
		vm.setReg(frame, dst, value.BoolValue(result))

	case opcode.EQ:
		dst, a, b := vm.readByte(frame), vm.readByte(frame), vm.readByte(frame)
		vm.setReg(frame, dst, value.BoolValue(value.Equal(vm.getReg(frame, a), vm.getReg(frame, b))))

	case opcode.NEG:
		dst, a := vm.readByte(frame), vm.readByte(frame)
		x := vm.getReg(frame, a)
		if x.Kind != value.KindNumber {
			return value.Null(), false, vm.runtimeError("Operand must be a number.")
		}
		vm.setReg(frame, dst, value.Num(-x.Number))

	case opcode.NOT:
		dst, a := vm.readByte(frame), vm.readByte(frame)
		vm.setReg(frame, dst, value.BoolValue(!vm.getReg(frame, a).Truthy()))

	case opcode.JUMP:
		off := vm.readU16(frame)
		frame.ip += int(off)

	case opcode.JUMP_IF_FALSE:
		cond := vm.readByte(frame)
		off := vm.readU16(frame)
		if !vm.getReg(frame, cond).Truthy() {
			frame.ip += int(off)
		}

	case opcode.LOOP:
		off := vm.readU16(frame)
		frame.ip -= int(off)

	case opcode.CALL:
		dst := vm.readByte(frame)
		calleeReg := vm.readByte(frame)
		n := vm.readByte(frame)
		args := make([]byte, n)
		for i := range args {
			args[i] = vm.readByte(frame)
		}
		if err := vm.call(frame, vm.getReg(frame, calleeReg), args, dst); err != nil {
			return value.Null(), false, err
		}

	case opcode.RETURN:
		src := vm.readByte(frame)
		result := vm.getReg(frame, src)
		destReg := frame.destReg
		vm.popFrame()
		if len(vm.frames) == 0 {
			return result, true, nil
		}
		vm.setReg(vm.frames[len(vm.frames)-1], destReg, result)

	case opcode.GET_GLOBAL:
		dst := vm.readByte(frame)
		slot := vm.readU16(frame)
		if int(slot) >= len(vm.globalDefined) || !vm.globalDefined[slot] {
			return value.Null(), false, vm.runtimeError("Undefined variable.")
		}
		vm.setReg(frame, dst, vm.globals[slot])

	case opcode.DEFINE_GLOBAL:
		src := vm.readByte(frame)
		slot := vm.readU16(frame)
		vm.ensureGlobalSlot(slot)
		vm.globals[slot] = vm.getReg(frame, src)
		vm.globalDefined[slot] = true

	case opcode.SET_GLOBAL:
		src := vm.readByte(frame)
		slot := vm.readU16(frame)
		if int(slot) >= len(vm.globalDefined) || !vm.globalDefined[slot] {
			return value.Null(), false, vm.runtimeError("Undefined variable.")
		}
		vm.globals[slot] = vm.getReg(frame, src)

	case opcode.BUILD_ARRAY:
		dst := vm.readByte(frame)
		n := vm.readByte(frame)
		elems := make([]value.Value, n)
		for i := range elems {
			elems[i] = vm.getReg(frame, vm.readByte(frame))
		}
		vm.setReg(frame, dst, value.FromObj(vm.heap.NewArray(elems)))

	case opcode.ARRAY_GET:
		dst, arrReg, idxReg := vm.readByte(frame), vm.readByte(frame), vm.readByte(frame)
		v, err := vm.arrayGet(vm.getReg(frame, arrReg), vm.getReg(frame, idxReg))
		if err != nil {
			return value.Null(), false, err
		}
		vm.setReg(frame, dst, v)

	case opcode.GET_PROPERTY:
		dst, objReg := vm.readByte(frame), vm.readByte(frame)
		idx := vm.readU16(frame)
		name := frame.fn.Chunk.Constants[idx].Obj.(*object.ObjString)
		v, err := vm.getProperty(vm.getReg(frame, objReg), name)
		if err != nil {
			return value.Null(), false, err
		}
		vm.setReg(frame, dst, v)

	case opcode.SET_PROPERTY:
		objReg := vm.readByte(frame)
		idx := vm.readU16(frame)
		valReg := vm.readByte(frame)
		name := frame.fn.Chunk.Constants[idx].Obj.(*object.ObjString)
		if err := vm.setProperty(vm.getReg(frame, objReg), name, vm.getReg(frame, valReg)); err != nil {
			return value.Null(), false, err
		}

	case opcode.CLASS:
		dst := vm.readByte(frame)
		idx := vm.readU16(frame)
		name := frame.fn.Chunk.Constants[idx].Obj.(*object.ObjString)
		vm.setReg(frame, dst, value.FromObj(vm.heap.NewClass(name)))

	case opcode.METHOD:
		classReg := vm.readByte(frame)
		idx := vm.readU16(frame)
		methodReg := vm.readByte(frame)
		name := frame.fn.Chunk.Constants[idx].Obj.(*object.ObjString)
		cls := vm.getReg(frame, classReg).Obj.(*object.ObjClass)
		cls.AddMethod(name, vm.getReg(frame, methodReg))

	case opcode.INVOKE:
		dst, objReg := vm.readByte(frame), vm.readByte(frame)
		idx := vm.readU16(frame)
		n := vm.readByte(frame)
		args := make([]byte, n)
		for i := range args {
			args[i] = vm.readByte(frame)
		}
		name := frame.fn.Chunk.Constants[idx].Obj.(*object.ObjString)
		if err := vm.invoke(frame, vm.getReg(frame, objReg), name, args, dst); err != nil {
			return value.Null(), false, err
		}

	default:
		return value.Null(), false, vm.runtimeError("Unknown opcode %d.", byte(op))
	}
	return value.Null(), false, nil
}

// add implements the polymorphic ADD of spec.md §4.4: array
// concatenation/append, string concatenation, or numeric sum.
func (vm *VM) add(a, b value.Value) (value.Value, error) {
	if a.IsObj(value.ObjArrayType) {
		left := a.Obj.(*object.ObjArray)
		elems := make([]value.Value, 0, len(left.Elements)+1)
		elems = append(elems, left.Elements...)
		if b.IsObj(value.ObjArrayType) {
			elems = append(elems, b.Obj.(*object.ObjArray).Elements...)
		} else {
			elems = append(elems, b)
		}
		return value.FromObj(vm.heap.NewArray(elems)), nil
	}
	if a.IsObj(value.ObjStringType) && b.IsObj(value.ObjStringType) {
		as := a.Obj.(*object.ObjString)
		bs := b.Obj.(*object.ObjString)
		return value.FromObj(vm.heap.NewString(as.Chars + bs.Chars)), nil
	}
	if a.Kind == value.KindNumber && b.Kind == value.KindNumber {
		return value.Num(a.Number + b.Number), nil
	}
	return value.Value{}, vm.runtimeError("Operands must be two numbers, two strings, or an array.")
}

func (vm *VM) arrayGet(arrVal, idxVal value.Value) (value.Value, error) {
	if !arrVal.IsObj(value.ObjArrayType) {
		return value.Value{}, vm.runtimeError("Only arrays can be indexed.")
	}
	if idxVal.Kind != value.KindNumber {
		return value.Value{}, vm.runtimeError("Array index must be an integer.")
	}
	idx := idxVal.Number
	if idx != math.Trunc(idx) {
		return value.Value{}, vm.runtimeError("Array index must be an integer.")
	}
	arr := arrVal.Obj.(*object.ObjArray)
	if idx < 0 || int(idx) >= len(arr.Elements) {
		return value.Value{}, vm.runtimeError("Array index out of range.")
	}
	return arr.Elements[int(idx)], nil
}

func (vm *VM) getProperty(objVal value.Value, name *object.ObjString) (value.Value, error) {
	if !objVal.IsObj(value.ObjInstanceType) {
		return value.Value{}, vm.runtimeError("Only instances have properties.")
	}
	inst := objVal.Obj.(*object.ObjInstance)
	if v, ok := inst.Field(name); ok {
		return v, nil
	}
	if methodVal, ok := inst.Class.Method(name); ok {
		fn := methodVal.Obj.(*object.ObjFunction)
		return value.FromObj(vm.heap.NewBoundMethod(objVal, fn)), nil
	}
	return value.Value{}, vm.runtimeError("Undefined property '%s'.", name.Chars)
}

func (vm *VM) setProperty(objVal value.Value, name *object.ObjString, val value.Value) error {
	if !objVal.IsObj(value.ObjInstanceType) {
		return vm.runtimeError("Only instances have settable properties.")
	}
	objVal.Obj.(*object.ObjInstance).SetField(name, val)
	return nil
}
