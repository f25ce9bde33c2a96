package compiler

import (
	"fmt"

	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/value"
)

// functionDecl installs a function declaration. A global function's slot
// is declared before its body compiles, so the body can call the
// function by its own name; a local one goes through installBinding.
func (c *Compiler) functionDecl(s *ast.FunctionStmt) {
	if c.cur.isOutermost && c.cur.scopeDepth == 0 {
		slot, ok := c.declareGlobal(s.Name, s.Line)
		if !ok {
			return
		}
		reg, ok := c.compileFunctionValue(s.Name, s.Params, s.Body, kindFunction, s.Line)
		if !ok || c.hadError {
			return
		}
		c.emitOp(opcode.DEFINE_GLOBAL, s.Line)
		c.emit(reg, s.Line)
		c.emitU16(slot, s.Line)
		c.cur.discard(reg)
		return
	}
	reg, ok := c.compileFunctionValue(s.Name, s.Params, s.Body, kindFunction, s.Line)
	if !ok || c.hadError {
		return
	}
	c.installBinding(s.Name, reg, s.Line)
}

// classDecl follows spec.md §4.3, "Classes": emit CLASS, install the
// class into storage, then compile and attach each method. The class
// register must survive every METHOD emission, so — unlike a plain
// function declaration — installation into a global does not free the
// register until every method has been attached.
func (c *Compiler) classDecl(s *ast.ClassStmt) {
	line := s.Line
	nameObj := c.heap.NewString(s.Name)
	nameIdx := c.addConstant(value.FromObj(nameObj), line)
	if c.hadError {
		return
	}

	classReg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(line, "Register overflow.")
		return
	}
	c.emitOp(opcode.CLASS, line)
	c.emit(classReg, line)
	c.emitU16(nameIdx, line)

	isGlobal := c.cur.isOutermost && c.cur.scopeDepth == 0
	if isGlobal {
		slot, ok := c.declareGlobal(s.Name, line)
		if !ok {
			return
		}
		c.emitOp(opcode.DEFINE_GLOBAL, line)
		c.emit(classReg, line)
		c.emitU16(slot, line)
	} else {
		local, ok := c.cur.declareLocal(s.Name)
		if !ok {
			c.errorAt(line, fmt.Sprintf("Local '%s' is already declared in this scope.", s.Name))
			return
		}
		local.reg = classReg
		local.initialized = true
		c.cur.stackDepth--
	}

	for _, m := range s.Methods {
		if c.hadError {
			return
		}
		kind := kindMethod
		if m.IsConstructor {
			kind = kindConstructor
		}
		fnReg, ok := c.compileFunctionValue(m.Name, m.Params, m.Body, kind, m.Line)
		if !ok || c.hadError {
			return
		}
		methodNameObj := c.heap.NewString(m.Name)
		methodIdx := c.addConstant(value.FromObj(methodNameObj), m.Line)
		if c.hadError {
			return
		}
		c.emitOp(opcode.METHOD, m.Line)
		c.emit(classReg, m.Line)
		c.emitU16(methodIdx, m.Line)
		c.emit(fnReg, m.Line)
		c.cur.discard(fnReg)
	}

	if isGlobal {
		c.cur.discard(classReg)
	}
}

// compileFunctionValue compiles name/params/body into a fresh
// ObjFunction in a nested compiler state, loads it as a constant of the
// enclosing chunk, and returns the register holding it. For a method or
// constructor, register 0 is reserved for `this` and arity is
// params+1; a plain function's arity is exactly its parameter count
// (spec.md §4.3, "Functions").
func (c *Compiler) compileFunctionValue(name string, params []string, body *ast.BlockStmt, kind fnKind, line int) (byte, bool) {
	if len(params) > maxOperands {
		c.errorAt(line, "Too many parameters.")
		return 0, false
	}

	nameObj := c.heap.NewString(name)
	fn := c.heap.NewFunction(nameObj)
	fn.IsInitializer = kind == kindConstructor

	enclosing := c.cur
	c.cur = &state{enclosing: enclosing, fn: fn, kind: kind}

	if kind == kindMethod || kind == kindConstructor {
		c.cur.locals = append(c.cur.locals, localVar{name: "this", depth: 0, reg: 0, initialized: true})
	}
	for _, p := range params {
		local, ok := c.cur.declareLocal(p)
		if !ok {
			c.errorAt(line, fmt.Sprintf("Duplicate parameter name '%s'.", p))
			c.cur = enclosing
			return 0, false
		}
		local.initialized = true
	}
	fn.Arity = len(params)
	if kind == kindMethod || kind == kindConstructor {
		fn.Arity++
	}

	// this/params occupy registers 0..localCount()-1 whether or not the
	// body ever reserves a temporary above them; the frame must be sized
	// to hold them even if highWater would otherwise stay lower (e.g. a
	// constructor that only stores parameters straight into fields).
	if c.cur.localCount() > c.cur.highWater {
		c.cur.highWater = c.cur.localCount()
	}

	c.block(body)
	c.finishFunction(body.Line)
	fn.RegisterCount = c.cur.highWater
	c.cur = enclosing

	if c.hadError {
		return 0, false
	}

	idx := c.addConstant(value.FromObj(fn), line)
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(line, "Register overflow.")
		return 0, false
	}
	c.emitOp(opcode.LOAD_CONST, line)
	c.emit(reg, line)
	c.emitU16(idx, line)
	return reg, true
}

// finishFunction emits the implicit end-of-body return: the receiver
// for a constructor (spec.md §4.3, "Constructor return"), null
// otherwise.
func (c *Compiler) finishFunction(line int) {
	if c.hadError {
		return
	}
	if c.cur.kind == kindConstructor {
		c.emitOp(opcode.RETURN, line)
		c.emit(0, line)
		return
	}
	reg, ok := c.cur.reserve()
	if !ok {
		c.errorAt(line, "Register overflow.")
		return
	}
	c.emitOp(opcode.LOAD_NULL, line)
	c.emit(reg, line)
	c.emitOp(opcode.RETURN, line)
	c.emit(reg, line)
}
