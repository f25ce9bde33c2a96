// Package compiler walks a parsed Program and emits one top-level
// ObjFunction whose chunk — together with the chunks of every nested
// function and method it creates — fully encodes the program
// (spec.md §4.3). It runs exactly once per program.
package compiler

import (
	"github.com/thistle-lang/thistle/object"
)

const maxRegisters = 256

// fnKind distinguishes the few function shapes that need slightly
// different locals-table priming (spec.md §4.3, "Functions").
type fnKind int

const (
	kindScript fnKind = iota
	kindFunction
	kindMethod
	kindConstructor
)

// localVar is one compile-time local descriptor: its name, declaration
// scope depth, the register it occupies, and whether it has finished
// initializing (spec.md §3, invariant 6 and §4.3, "Scope resolution").
type localVar struct {
	name        string
	depth       int
	reg         byte
	initialized bool
}

// state is one function's (or the script's) compiler frame. Locals
// occupy a dense register prefix; stackDepth is the compile-time
// simulated stack used for expression evaluation above that prefix —
// "a counter plus a base, not a runtime data structure" (spec.md §9).
type state struct {
	enclosing *state
	fn        *object.ObjFunction
	kind      fnKind

	locals     []localVar
	scopeDepth int
	stackDepth int
	highWater  int

	// Pending-trailing-expression bookkeeping — meaningful only on the
	// outermost (script) state, at scope depth 0 (spec.md §4.3,
	// "Trailing-expression value"; §9, "Pending trailing expression").
	isOutermost bool
	hasPending  bool
	pendingReg  byte
}

func (s *state) localCount() int { return len(s.locals) }

// isTemp reports whether r is one of the compile-time expression-stack
// registers rather than a declared local's register.
func (s *state) isTemp(r byte) bool { return int(r) >= s.localCount() }

// reserve allocates the next free register above the local prefix,
// updating the chunk's high-water register count.
func (s *state) reserve() (byte, bool) {
	idx := s.localCount() + s.stackDepth
	if idx >= maxRegisters {
		return 0, false
	}
	s.stackDepth++
	if s.localCount()+s.stackDepth > s.highWater {
		s.highWater = s.localCount() + s.stackDepth
	}
	return byte(idx), true
}

// finishOp collapses however many operand temporaries were reserved
// since snapshot into exactly one result register at the lowest position
// they could have occupied. Every multi-operand construct (binary ops,
// calls, BUILD_ARRAY, INVOKE) uses this: whichever operands happened to
// be fresh temporaries are simply overwritten by the result; whichever
// were local registers are left untouched, and a single new slot is
// reserved for the result if no operand supplied one.
func (s *state) finishOp(snapshot int) (byte, bool) {
	dstIdx := s.localCount() + snapshot
	if dstIdx >= maxRegisters {
		return 0, false
	}
	s.stackDepth = snapshot + 1
	if s.localCount()+s.stackDepth > s.highWater {
		s.highWater = s.localCount() + s.stackDepth
	}
	return byte(dstIdx), true
}

// discard releases reg if it is the topmost temporary on the compile-
// time expression stack, undoing a preceding reserve/finishOp. A local's
// register is never freed this way — locals live until endScope — and a
// temp that isn't currently on top is left alone rather than corrupting
// the stack depth of whatever is above it (the LIFO discipline every
// caller is expected to honor; see compiler_expr.go's assignment path
// for the one deliberate exception).
func (s *state) discard(reg byte) {
	if !s.isTemp(reg) {
		return
	}
	if int(reg) == s.localCount()+s.stackDepth-1 {
		s.stackDepth--
	}
}

// resolveLocal searches this function's own locals, innermost
// declaration first (no enclosing-function capture: the language has no
// closures, so a nested function's compiler starts with a fresh empty
// locals table).
func (s *state) resolveLocal(name string) (*localVar, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].name == name {
			return &s.locals[i], true
		}
	}
	return nil, false
}

// declareLocal adds an uninitialized local descriptor, returning false
// if name is already declared at the current scope depth (spec.md §4.3,
// "Redeclaring a name at the same scope is an error").
func (s *state) declareLocal(name string) (*localVar, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if s.locals[i].depth < s.scopeDepth {
			break
		}
		if s.locals[i].name == name {
			return nil, false
		}
	}
	reg := byte(s.localCount())
	s.locals = append(s.locals, localVar{name: name, depth: s.scopeDepth, reg: reg})
	return &s.locals[len(s.locals)-1], true
}

// beginScope/endScope bracket a block; endScope pops every local
// declared inside it, freeing their registers for reuse by later
// sibling blocks.
func (s *state) beginScope() { s.scopeDepth++ }

func (s *state) endScope() {
	s.scopeDepth--
	for len(s.locals) > 0 && s.locals[len(s.locals)-1].depth > s.scopeDepth {
		s.locals = s.locals[:len(s.locals)-1]
	}
}
