package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thistle-lang/thistle/heap"
	"github.com/thistle-lang/thistle/object"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/parser"
	"github.com/thistle-lang/thistle/value"
)

func mustCompile(t *testing.T, src string) (*heap.Heap, []byte) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	h := heap.New()
	fn, err := Compile(prog, h)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return h, fn.Chunk.Code
}

func TestCompile_TrailingExpressionBecomesPendingReturn(t *testing.T) {
	prog, err := parser.Parse(`let x = 41; let y = 1; x + y;`)
	require.NoError(t, err)
	h := heap.New()
	fn, err := Compile(prog, h)
	require.NoError(t, err)

	code := fn.Chunk.Code
	require.NotEmpty(t, code)
	require.Equal(t, byte(opcode.RETURN), code[len(code)-2])
}

func TestCompile_NoTrailingExpressionReturnsNull(t *testing.T) {
	prog, err := parser.Parse(`let x = 41;`)
	require.NoError(t, err)
	h := heap.New()
	fn, err := Compile(prog, h)
	require.NoError(t, err)

	code := fn.Chunk.Code
	found := false
	for _, b := range code {
		if b == byte(opcode.LOAD_NULL) {
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, byte(opcode.RETURN), code[len(code)-2])
}

func TestCompile_DuplicateGlobalIsError(t *testing.T) {
	prog, err := parser.Parse(`let x = 1; let x = 2;`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already defined")
}

func TestCompile_UndefinedVariableIsError(t *testing.T) {
	prog, err := parser.Parse(`x;`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Undefined variable")
}

func TestCompile_SelfReferencingInitializerIsError(t *testing.T) {
	prog, err := parser.Parse(`function f() { let x = x; }`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "before initialization")
}

func TestCompile_DuplicateLocalInSameScopeIsError(t *testing.T) {
	prog, err := parser.Parse(`function f() { let a = 1; let a = 2; }`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already declared")
}

func TestCompile_ShadowingInNestedBlockIsAllowed(t *testing.T) {
	prog, err := parser.Parse(`function f() { let a = 1; if (true) { let a = 2; } }`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.NoError(t, err)
}

func TestCompile_ReturnValueInConstructorIsError(t *testing.T) {
	prog, err := parser.Parse(`class C { constructor() { return 1; } }`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Cannot return a value from a constructor")
}

func TestCompile_BareReturnInConstructorIsAllowed(t *testing.T) {
	prog, err := parser.Parse(`class C { constructor() { return; } }`)
	require.NoError(t, err)
	h := heap.New()
	_, err = Compile(prog, h)
	require.NoError(t, err)
}

func TestCompile_FunctionArityAndRegisterCount(t *testing.T) {
	prog, err := parser.Parse(`function add(a, b) { return a + b; }`)
	require.NoError(t, err)
	h := heap.New()
	fn, err := Compile(prog, h)
	require.NoError(t, err)
	require.Len(t, fn.Chunk.Constants, 1)
	require.Contains(t, fn.Chunk.Constants[0].Obj.DisplayString(), "add")

	// a, b in registers 0-1, plus one temporary for `a + b`.
	add := fn.Chunk.Constants[0].Obj.(*object.ObjFunction)
	require.Equal(t, 2, add.Arity)
	require.Equal(t, 3, add.RegisterCount)
}

func TestCompile_MethodArityIncludesReceiver(t *testing.T) {
	prog, err := parser.Parse(`class Player { constructor(s) { this.value = s; } tick(n) { this.value = this.value + n; } }`)
	require.NoError(t, err)
	h := heap.New()
	fn, err := Compile(prog, h)
	require.NoError(t, err)

	arities := map[string]int{}
	for _, k := range fn.Chunk.Constants {
		if m, ok := k.Obj.(*object.ObjFunction); ok {
			arities[m.Name.Chars] = m.Arity
		}
	}
	require.Equal(t, map[string]int{"constructor": 2, "tick": 2}, arities)
}

func TestCompile_InvalidAssignmentTargetIsError(t *testing.T) {
	_, err := parser.Parse(`1 + 2 = 3;`)
	require.Error(t, err)
}

func TestCompile_ArrayLiteralEmitsBuildArray(t *testing.T) {
	_, code := mustCompile(t, `[1, 2, 3];`)
	found := false
	for _, b := range code {
		if b == byte(opcode.BUILD_ARRAY) {
			found = true
		}
	}
	require.True(t, found)
}

func TestCompile_IfElseEmitsJumps(t *testing.T) {
	_, code := mustCompile(t, `let x = 10; if (x > 5) { x = x + 1; } else { x = x - 1; } x;`)
	hasJumpIfFalse, hasJump := false, false
	for _, b := range code {
		if b == byte(opcode.JUMP_IF_FALSE) {
			hasJumpIfFalse = true
		}
		if b == byte(opcode.JUMP) {
			hasJump = true
		}
	}
	require.True(t, hasJumpIfFalse)
	require.True(t, hasJump)
}

func TestCompile_WhileLoopEmitsLoop(t *testing.T) {
	_, code := mustCompile(t, `let i = 0; while (i < 4) { i = i + 1; } i;`)
	found := false
	for _, b := range code {
		if b == byte(opcode.LOOP) {
			found = true
		}
	}
	require.True(t, found)
}

func TestCompile_StringLiteralsIntern(t *testing.T) {
	h := heap.New()
	prog, err := parser.Parse(`let a = "foo"; let b = "foo"; a;`)
	require.NoError(t, err)
	fn, err := Compile(prog, h)
	require.NoError(t, err)

	var strs []value.Value
	for _, c := range fn.Chunk.Constants {
		if c.Kind == value.KindObj {
			strs = append(strs, c)
		}
	}
	require.GreaterOrEqual(t, len(strs), 2)
	require.Same(t, strs[0].Obj, strs[1].Obj)
}
