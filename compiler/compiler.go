package compiler

import (
	"fmt"

	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/chunk"
	"github.com/thistle-lang/thistle/heap"
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/value"
)

const maxGlobals = 1 << 16
const maxConstants = 1 << 16
const maxOperands = 254

// globalVar is one entry in the compiler's flat, program-wide globals
// table: an ordered name -> 16-bit slot mapping, populated in
// declaration order (spec.md §4.3, "Scope resolution").
type globalVar struct {
	name string
	slot uint16
}

// Compiler walks one Program and produces the script's top-level
// ObjFunction. It owns the globals table, which — unlike locals — is
// shared across every nested function and method compiled along the
// way.
type Compiler struct {
	heap    *heap.Heap
	cur     *state
	globals []globalVar

	hadError bool
	errMsg   string
}

// Compile produces the top-level function for program, or an error
// describing the first compile-time problem encountered (spec.md §4.3,
// "Compile-time errors").
func Compile(program *ast.Program, h *heap.Heap) (*object.ObjFunction, error) {
	c := &Compiler{heap: h}
	script := h.NewFunction(nil)
	c.cur = &state{fn: script, kind: kindScript, isOutermost: true}

	c.compileProgram(program)
	if c.hadError {
		return nil, fmt.Errorf("%s", c.errMsg)
	}
	c.finishScript(lastLine(program))
	if c.hadError {
		return nil, fmt.Errorf("%s", c.errMsg)
	}
	script.RegisterCount = c.cur.highWater
	return script, nil
}

func lastLine(program *ast.Program) int {
	if len(program.Declarations) == 0 {
		return 0
	}
	return lineOfStmt(program.Declarations[len(program.Declarations)-1])
}

func (c *Compiler) chunk() *chunk.Chunk { return c.cur.fn.Chunk }

func (c *Compiler) emit(b byte, line int) { c.chunk().WriteByte(b, line) }

func (c *Compiler) emitOp(code opcode.Code, line int) { c.emit(byte(code), line) }

func (c *Compiler) emitU16(v uint16, line int) { c.chunk().WriteUint16(v, line) }

// patchJump backpatches the placeholder 16-bit operand written at
// operandOffset with the forward distance from the instruction that
// follows it to the current end of the chunk.
func (c *Compiler) patchJump(operandOffset, line int) {
	dist := len(c.chunk().Code) - (operandOffset + 2)
	if dist < 0 || dist > 0xFFFF {
		c.errorAt(line, "Jump offset overflow.")
		return
	}
	c.chunk().PatchUint16(operandOffset, uint16(dist))
}

func (c *Compiler) errorAt(line int, msg string) {
	if c.hadError {
		return
	}
	c.hadError = true
	c.errMsg = fmt.Sprintf("[line %d] %s", line, msg)
}

func (c *Compiler) addConstant(v value.Value, line int) uint16 {
	idx := c.chunk().AddConstant(v)
	if idx >= maxConstants {
		c.errorAt(line, "Too many constants in one chunk.")
		return 0
	}
	return uint16(idx)
}

func (c *Compiler) declareGlobal(name string, line int) (uint16, bool) {
	for _, g := range c.globals {
		if g.name == name {
			c.errorAt(line, fmt.Sprintf("Global '%s' is already defined.", name))
			return 0, false
		}
	}
	if len(c.globals) >= maxGlobals {
		c.errorAt(line, "Too many globals.")
		return 0, false
	}
	slot := uint16(len(c.globals))
	c.globals = append(c.globals, globalVar{name: name, slot: slot})
	return slot, true
}

func (c *Compiler) resolveGlobal(name string) (uint16, bool) {
	for _, g := range c.globals {
		if g.name == name {
			return g.slot, true
		}
	}
	return 0, false
}

// installBinding installs a newly constructed function value into
// storage: a global at scope depth 0 of the outermost compiler, a local
// otherwise (spec.md §9, first Open Question). functionDecl calls it only
// for local declarations; a global function declares its slot before
// compiling its body and emits DEFINE_GLOBAL itself.
func (c *Compiler) installBinding(name string, reg byte, line int) {
	s := c.cur
	if s.isOutermost && s.scopeDepth == 0 {
		slot, ok := c.declareGlobal(name, line)
		if !ok {
			return
		}
		c.emitOp(opcode.DEFINE_GLOBAL, line)
		c.emit(reg, line)
		c.emitU16(slot, line)
		s.discard(reg)
		return
	}
	local, ok := s.declareLocal(name)
	if !ok {
		c.errorAt(line, fmt.Sprintf("Local '%s' is already declared in this scope.", name))
		return
	}
	local.reg = reg
	local.initialized = true
	s.stackDepth--
}

func (c *Compiler) compileProgram(p *ast.Program) {
	for _, stmt := range p.Declarations {
		if c.hadError {
			return
		}
		c.topLevelStmt(stmt)
	}
}

// topLevelStmt implements spec.md §4.3's trailing-expression-value rule:
// only reachable when c.cur is the outermost compiler at scope depth 0,
// which is exactly the context compileProgram's loop runs in.
func (c *Compiler) topLevelStmt(stmt ast.Stmt) {
	if es, ok := stmt.(*ast.ExpressionStmt); ok {
		c.discardPending()
		if c.hadError {
			return
		}
		reg := c.expr(es.Expression)
		if c.hadError {
			return
		}
		c.cur.hasPending = true
		c.cur.pendingReg = reg
		return
	}
	c.discardPending()
	if c.hadError {
		return
	}
	c.declarationOrStatement(stmt)
}

func (c *Compiler) discardPending() {
	s := c.cur
	if s.hasPending {
		s.discard(s.pendingReg)
		s.hasPending = false
	}
}

func (c *Compiler) finishScript(line int) {
	s := c.cur
	if s.hasPending {
		c.emitOp(opcode.RETURN, line)
		c.emit(s.pendingReg, line)
		return
	}
	reg, ok := s.reserve()
	if !ok {
		c.errorAt(line, "Register overflow.")
		return
	}
	c.emitOp(opcode.LOAD_NULL, line)
	c.emit(reg, line)
	c.emitOp(opcode.RETURN, line)
	c.emit(reg, line)
}

func lineOfStmt(stmt ast.Stmt) int {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return s.Line
	case *ast.FunctionStmt:
		return s.Line
	case *ast.ClassStmt:
		return s.Line
	case *ast.IfStmt:
		return s.Line
	case *ast.WhileStmt:
		return s.Line
	case *ast.ReturnStmt:
		return s.Line
	case *ast.BlockStmt:
		return s.Line
	case *ast.ExpressionStmt:
		return s.Line
	default:
		return 0
	}
}
