package compiler

import (
	"fmt"

	"github.com/thistle-lang/thistle/ast"
	"github.com/thistle-lang/thistle/opcode"
)

// declarationOrStatement dispatches every statement kind the grammar
// allows inside a block (and, via topLevelStmt, at the program root).
func (c *Compiler) declarationOrStatement(stmt ast.Stmt) {
	if c.hadError {
		return
	}
	switch s := stmt.(type) {
	case *ast.LetStmt:
		c.letDecl(s)
	case *ast.FunctionStmt:
		c.functionDecl(s)
	case *ast.ClassStmt:
		c.classDecl(s)
	default:
		c.statement(stmt)
	}
}

func (c *Compiler) statement(stmt ast.Stmt) {
	if c.hadError {
		return
	}
	switch s := stmt.(type) {
	case *ast.IfStmt:
		c.ifStatement(s)
	case *ast.WhileStmt:
		c.whileStatement(s)
	case *ast.ReturnStmt:
		c.returnStatement(s)
	case *ast.BlockStmt:
		c.block(s)
	case *ast.ExpressionStmt:
		reg := c.expr(s.Expression)
		c.cur.discard(reg)
	default:
		c.errorAt(lineOfStmt(stmt), "Unrecognized statement.")
	}
}

func (c *Compiler) block(b *ast.BlockStmt) {
	c.cur.beginScope()
	for _, st := range b.Statements {
		if c.hadError {
			c.cur.endScope()
			return
		}
		c.declarationOrStatement(st)
	}
	c.cur.endScope()
}

// letDecl installs either a new global slot or a new local register,
// per spec.md §4.3's "Global vs local decision". A local is declared
// (uninitialized) before its initializer compiles so a self-reference
// such as `let x = x;` resolves to the not-yet-initialized local and
// fails, rather than silently finding an outer binding.
func (c *Compiler) letDecl(s *ast.LetStmt) {
	line := s.Line
	isGlobal := c.cur.isOutermost && c.cur.scopeDepth == 0

	if isGlobal {
		var reg byte
		if s.Initializer != nil {
			reg = c.expr(s.Initializer)
		} else {
			r, ok := c.cur.reserve()
			if !ok {
				c.errorAt(line, "Register overflow.")
				return
			}
			c.emitOp(opcode.LOAD_NULL, line)
			c.emit(r, line)
			reg = r
		}
		if c.hadError {
			return
		}
		slot, ok := c.declareGlobal(s.Name, line)
		if !ok {
			return
		}
		c.emitOp(opcode.DEFINE_GLOBAL, line)
		c.emit(reg, line)
		c.emitU16(slot, line)
		c.cur.discard(reg)
		return
	}

	local, ok := c.cur.declareLocal(s.Name)
	if !ok {
		c.errorAt(line, fmt.Sprintf("Local '%s' is already declared in this scope.", s.Name))
		return
	}
	if s.Initializer != nil {
		valReg := c.expr(s.Initializer)
		if c.hadError {
			return
		}
		if valReg != local.reg {
			c.emitOp(opcode.MOVE, line)
			c.emit(local.reg, line)
			c.emit(valReg, line)
			c.cur.discard(valReg)
		}
	} else {
		c.emitOp(opcode.LOAD_NULL, line)
		c.emit(local.reg, line)
	}
	local.initialized = true
}

func (c *Compiler) ifStatement(s *ast.IfStmt) {
	line := s.Line
	condReg := c.expr(s.Condition)
	if c.hadError {
		return
	}
	c.emitOp(opcode.JUMP_IF_FALSE, line)
	c.emit(condReg, line)
	thenOperand := len(c.chunk().Code)
	c.emitU16(0, line)
	c.cur.discard(condReg)

	c.block(s.Then)
	if c.hadError {
		return
	}

	elseOperand := -1
	if s.Else != nil {
		c.emitOp(opcode.JUMP, line)
		elseOperand = len(c.chunk().Code)
		c.emitU16(0, line)
	}

	c.patchJump(thenOperand, line)
	if c.hadError {
		return
	}

	if s.Else != nil {
		c.block(s.Else)
		if c.hadError {
			return
		}
		c.patchJump(elseOperand, line)
	}
}

func (c *Compiler) whileStatement(s *ast.WhileStmt) {
	line := s.Line
	loopStart := len(c.chunk().Code)

	condReg := c.expr(s.Condition)
	if c.hadError {
		return
	}
	c.emitOp(opcode.JUMP_IF_FALSE, line)
	c.emit(condReg, line)
	exitOperand := len(c.chunk().Code)
	c.emitU16(0, line)
	c.cur.discard(condReg)

	c.block(s.Body)
	if c.hadError {
		return
	}

	c.emitOp(opcode.LOOP, line)
	loopOperand := len(c.chunk().Code)
	dist := (loopOperand + 2) - loopStart
	if dist < 0 || dist > 0xFFFF {
		c.errorAt(line, "Loop body too large.")
		return
	}
	c.emitU16(uint16(dist), line)

	c.patchJump(exitOperand, line)
}

// returnStatement enforces the constructor-return compile error of
// spec.md §4.3: an explicit `return expr;` inside a constructor fails,
// while a bare `return;` returns the receiver like the default return.
func (c *Compiler) returnStatement(s *ast.ReturnStmt) {
	line := s.Line
	if s.Value != nil {
		if c.cur.kind == kindConstructor {
			c.errorAt(line, "Cannot return a value from a constructor.")
			return
		}
		reg := c.expr(s.Value)
		if c.hadError {
			return
		}
		c.emitOp(opcode.RETURN, line)
		c.emit(reg, line)
		c.cur.discard(reg)
		return
	}

	var reg byte
	if c.cur.kind == kindConstructor {
		reg = 0
	} else {
		r, ok := c.cur.reserve()
		if !ok {
			c.errorAt(line, "Register overflow.")
			return
		}
		c.emitOp(opcode.LOAD_NULL, line)
		c.emit(r, line)
		reg = r
	}
	c.emitOp(opcode.RETURN, line)
	c.emit(reg, line)
}
