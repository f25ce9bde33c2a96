package compiler

import (
	"fmt"

	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/value"
)

func (c *Compiler) expr(e ast.Expr) byte {
	if c.hadError {
		return 0
	}
	switch v := e.(type) {
	case *ast.NumberLiteral:
		return c.numberLiteral(v)
	case *ast.StringLiteral:
		return c.stringLiteral(v)
	case *ast.BoolLiteral:
		return c.boolLiteral(v)
	case *ast.NullLiteral:
		return c.nullLiteral(v)
	case *ast.Identifier:
		return c.identifier(v.Name, v.Line)
	case *ast.This:
		return c.this(v)
	case *ast.Unary:
		return c.unary(v)
	case *ast.Binary:
		return c.binary(v)
	case *ast.Assign:
		return c.assign(v)
	case *ast.Call:
		return c.call(v)
	case *ast.Get:
		return c.get(v)
	case *ast.Invoke:
		return c.invoke(v)
	case *ast.Index:
		return c.index(v)
	case *ast.ArrayLiteral:
		return c.arrayLiteral(v)
	}
	c.errorAt(0, "Unrecognized expression.")
	return 0
}

func (c *Compiler) numberLiteral(v *ast.NumberLiteral) byte {
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	idx := c.addConstant(value.Num(v.Value), v.Line)
	c.emitOp(opcode.LOAD_CONST, v.Line)
	c.emit(reg, v.Line)
	c.emitU16(idx, v.Line)
	return reg
}

func (c *Compiler) stringLiteral(v *ast.StringLiteral) byte {
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	s := c.heap.NewString(v.Value)
	idx := c.addConstant(value.FromObj(s), v.Line)
	c.emitOp(opcode.LOAD_CONST, v.Line)
	c.emit(reg, v.Line)
	c.emitU16(idx, v.Line)
	return reg
}

func (c *Compiler) boolLiteral(v *ast.BoolLiteral) byte {
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	if v.Value {
		c.emitOp(opcode.LOAD_TRUE, v.Line)
	} else {
		c.emitOp(opcode.LOAD_FALSE, v.Line)
	}
	c.emit(reg, v.Line)
	return reg
}

func (c *Compiler) nullLiteral(v *ast.NullLiteral) byte {
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	c.emitOp(opcode.LOAD_NULL, v.Line)
	c.emit(reg, v.Line)
	return reg
}

// identifier resolves name against the current function's locals, then
// the flat globals table (spec.md §4.3, "Scope resolution"). A local
// read returns that local's own register directly — no copy, since any
// register can serve as an instruction operand in a register VM.
func (c *Compiler) identifier(name string, line int) byte {
	if local, ok := c.cur.resolveLocal(name); ok {
		if !local.initialized {
			c.errorAt(line, fmt.Sprintf("Cannot read local variable '%s' before initialization.", name))
			return 0
		}
		return local.reg
	}
	if slot, ok := c.resolveGlobal(name); ok {
		reg, ok := c.cur.reserve()
		if !ok {
			c.errorAt(line, "Register overflow.")
			return 0
		}
		c.emitOp(opcode.GET_GLOBAL, line)
		c.emit(reg, line)
		c.emitU16(slot, line)
		return reg
	}
	c.errorAt(line, fmt.Sprintf("Undefined variable '%s'.", name))
	return 0
}

func (c *Compiler) this(v *ast.This) byte {
	if local, ok := c.cur.resolveLocal("this"); ok {
		return local.reg
	}
	c.errorAt(v.Line, "Cannot use 'this' outside of a method.")
	return 0
}

func (c *Compiler) unary(v *ast.Unary) byte {
	snapshot := c.cur.stackDepth
	a := c.expr(v.Right)
	if c.hadError {
		return 0
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	switch v.Operator {
	case "-":
		c.emitOp(opcode.NEG, v.Line)
	case "!":
		c.emitOp(opcode.NOT, v.Line)
	default:
		c.errorAt(v.Line, fmt.Sprintf("Unknown unary operator '%s'.", v.Operator))
		return 0
	}
	c.emit(dst, v.Line)
	c.emit(a, v.Line)
	return dst
}

// binary compiles the six comparison/equality operators onto the three
// opcodes the VM actually has (GT, LT, EQ) by synthesizing the rest
// with a trailing NOT, and the four arithmetic operators directly.
func (c *Compiler) binary(v *ast.Binary) byte {
	snapshot := c.cur.stackDepth
	a := c.expr(v.Left)
	b := c.expr(v.Right)
	if c.hadError {
		return 0
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}

	negate := false
	switch v.Operator {
	case "+":
		c.emitOp(opcode.ADD, v.Line)
	case "-":
		c.emitOp(opcode.SUB, v.Line)
	case "*":
		c.emitOp(opcode.MUL, v.Line)
	case "/":
		c.emitOp(opcode.DIV, v.Line)
	case ">":
		c.emitOp(opcode.GT, v.Line)
	case "<":
		c.emitOp(opcode.LT, v.Line)
	case "==":
		c.emitOp(opcode.EQ, v.Line)
	case "!=":
		c.emitOp(opcode.EQ, v.Line)
		negate = true
	case ">=":
		c.emitOp(opcode.LT, v.Line)
		negate = true
	case "<=":
		c.emitOp(opcode.GT, v.Line)
		negate = true
	default:
		c.errorAt(v.Line, fmt.Sprintf("Unknown binary operator '%s'.", v.Operator))
		return 0
	}
	c.emit(dst, v.Line)
	c.emit(a, v.Line)
	c.emit(b, v.Line)
	if negate {
		c.emitOp(opcode.NOT, v.Line)
		c.emit(dst, v.Line)
		c.emit(dst, v.Line)
	}
	return dst
}

// assign handles both forms of assignment target the parser admits:
// a bare identifier (local or global store) and a property store,
// which leaves the assigned value as the expression's own result
// (spec.md §4.2, "Assignment targets"; §4.3, "Property access").
func (c *Compiler) assign(v *ast.Assign) byte {
	line := v.Line
	switch t := v.Target.(type) {
	case *ast.Identifier:
		valReg := c.expr(v.Value)
		if c.hadError {
			return 0
		}
		if local, ok := c.cur.resolveLocal(t.Name); ok {
			if local.reg != valReg {
				c.emitOp(opcode.MOVE, line)
				c.emit(local.reg, line)
				c.emit(valReg, line)
				c.cur.discard(valReg)
			}
			return local.reg
		}
		if slot, ok := c.resolveGlobal(t.Name); ok {
			c.emitOp(opcode.SET_GLOBAL, line)
			c.emit(valReg, line)
			c.emitU16(slot, line)
			return valReg
		}
		c.errorAt(line, fmt.Sprintf("Undefined variable '%s'.", t.Name))
		return 0
	case *ast.Get:
		objReg := c.expr(t.Object)
		valReg := c.expr(v.Value)
		if c.hadError {
			return 0
		}
		nameObj := c.heap.NewString(t.Name)
		idx := c.addConstant(value.FromObj(nameObj), line)
		c.emitOp(opcode.SET_PROPERTY, line)
		c.emit(objReg, line)
		c.emitU16(idx, line)
		c.emit(valReg, line)
		return valReg
	default:
		c.errorAt(line, "Invalid assignment target.")
		return 0
	}
}

func (c *Compiler) call(v *ast.Call) byte {
	snapshot := c.cur.stackDepth
	callee := c.expr(v.Callee)
	if c.hadError {
		return 0
	}
	if len(v.Args) > maxOperands {
		c.errorAt(v.Line, "Too many arguments.")
		return 0
	}
	args := make([]byte, 0, len(v.Args))
	for _, a := range v.Args {
		args = append(args, c.expr(a))
		if c.hadError {
			return 0
		}
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	c.emitOp(opcode.CALL, v.Line)
	c.emit(dst, v.Line)
	c.emit(callee, v.Line)
	c.emit(byte(len(args)), v.Line)
	for _, a := range args {
		c.emit(a, v.Line)
	}
	return dst
}

func (c *Compiler) get(v *ast.Get) byte {
	snapshot := c.cur.stackDepth
	objReg := c.expr(v.Object)
	if c.hadError {
		return 0
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	nameObj := c.heap.NewString(v.Name)
	idx := c.addConstant(value.FromObj(nameObj), v.Line)
	c.emitOp(opcode.GET_PROPERTY, v.Line)
	c.emit(dst, v.Line)
	c.emit(objReg, v.Line)
	c.emitU16(idx, v.Line)
	return dst
}

func (c *Compiler) invoke(v *ast.Invoke) byte {
	snapshot := c.cur.stackDepth
	objReg := c.expr(v.Object)
	if c.hadError {
		return 0
	}
	if len(v.Args) > maxOperands {
		c.errorAt(v.Line, "Too many arguments.")
		return 0
	}
	args := make([]byte, 0, len(v.Args))
	for _, a := range v.Args {
		args = append(args, c.expr(a))
		if c.hadError {
			return 0
		}
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	nameObj := c.heap.NewString(v.Name)
	idx := c.addConstant(value.FromObj(nameObj), v.Line)
	c.emitOp(opcode.INVOKE, v.Line)
	c.emit(dst, v.Line)
	c.emit(objReg, v.Line)
	c.emitU16(idx, v.Line)
	c.emit(byte(len(args)), v.Line)
	for _, a := range args {
		c.emit(a, v.Line)
	}
	return dst
}

func (c *Compiler) index(v *ast.Index) byte {
	snapshot := c.cur.stackDepth
	arrReg := c.expr(v.Array)
	idxReg := c.expr(v.Index)
	if c.hadError {
		return 0
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	c.emitOp(opcode.ARRAY_GET, v.Line)
	c.emit(dst, v.Line)
	c.emit(arrReg, v.Line)
	c.emit(idxReg, v.Line)
	return dst
}

func (c *Compiler) arrayLiteral(v *ast.ArrayLiteral) byte {
	snapshot := c.cur.stackDepth
	if len(v.Elements) > maxOperands {
		c.errorAt(v.Line, "Too many elements in array literal.")
		return 0
	}
	elems := make([]byte, 0, len(v.Elements))
	for _, e := range v.Elements {
		elems = append(elems, c.expr(e))
		if c.hadError {
			return 0
		}
	}
	dst, ok := c.cur.finishOp(snapshot)
	if !ok {
		c.errorAt(v.Line, "Register overflow.")
		return 0
	}
	c.emitOp(opcode.BUILD_ARRAY, v.Line)
	c.emit(dst, v.Line)
	c.emit(byte(len(elems)), v.Line)
	for _, e := range elems {
		c.emit(e, v.Line)
	}
	return dst
}
