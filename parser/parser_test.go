package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thistle-lang/thistle/ast"
)

func TestParse_LetWithAndWithoutInitializer(t *testing.T) {
	prog, err := Parse("let x = 5; let y;")
	require.NoError(t, err)
	require.Len(t, prog.Declarations, 2)

	first, ok := prog.Declarations[0].(*ast.LetStmt)
	require.True(t, ok)
	require.Equal(t, "x", first.Name)
	require.NotNil(t, first.Initializer)

	second, ok := prog.Declarations[1].(*ast.LetStmt)
	require.True(t, ok)
	require.Equal(t, "y", second.Name)
	require.Nil(t, second.Initializer)
}

func TestParse_Precedence(t *testing.T) {
	prog, err := Parse("1 + 2 * 3;")
	require.NoError(t, err)
	require.Len(t, prog.Declarations, 1)

	stmt := prog.Declarations[0].(*ast.ExpressionStmt)
	root, ok := stmt.Expression.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, "+", root.Operator)

	_, ok = root.Left.(*ast.NumberLiteral)
	require.True(t, ok)

	right, ok := root.Right.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, "*", right.Operator)
}

func TestParse_PlusEqDesugarsToAssign(t *testing.T) {
	prog, err := Parse("x += 1;")
	require.NoError(t, err)
	stmt := prog.Declarations[0].(*ast.ExpressionStmt)
	assign, ok := stmt.Expression.(*ast.Assign)
	require.True(t, ok)
	_, ok = assign.Target.(*ast.Identifier)
	require.True(t, ok)
	bin, ok := assign.Value.(*ast.Binary)
	require.True(t, ok)
	require.Equal(t, "+", bin.Operator)
}

func TestParse_InvalidAssignmentTarget(t *testing.T) {
	_, err := Parse("1 + 2 = 3;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target")
}

func TestParse_MissingExpressionIsError(t *testing.T) {
	_, err := Parse("let x = ;")
	require.Error(t, err)
}

func TestParse_InvokeDesugarsToInvokeNode(t *testing.T) {
	prog, err := Parse("obj.greet(1, 2);")
	require.NoError(t, err)
	stmt := prog.Declarations[0].(*ast.ExpressionStmt)
	invoke, ok := stmt.Expression.(*ast.Invoke)
	require.True(t, ok)
	require.Equal(t, "greet", invoke.Name)
	require.Len(t, invoke.Args, 2)
}

func TestParse_ClassWithConstructorAndMethod(t *testing.T) {
	src := `
	class Player {
		constructor(s) { this.value = s; }
		tick(n) { this.value = this.value + n; }
	}`
	prog, err := Parse(src)
	require.NoError(t, err)
	cls, ok := prog.Declarations[0].(*ast.ClassStmt)
	require.True(t, ok)
	require.Equal(t, "Player", cls.Name)
	require.Len(t, cls.Methods, 2)
	require.True(t, cls.Methods[0].IsConstructor)
	require.Equal(t, "tick", cls.Methods[1].Name)
}

func TestParse_ArrayLiteralAndIndex(t *testing.T) {
	prog, err := Parse("let list = [1, 2, 3]; list[0];")
	require.NoError(t, err)
	let := prog.Declarations[0].(*ast.LetStmt)
	arr, ok := let.Initializer.(*ast.ArrayLiteral)
	require.True(t, ok)
	require.Len(t, arr.Elements, 3)

	exprStmt := prog.Declarations[1].(*ast.ExpressionStmt)
	_, ok = exprStmt.Expression.(*ast.Index)
	require.True(t, ok)
}

func TestParse_IfElse(t *testing.T) {
	prog, err := Parse("if (x > 5) { x = x + 1; } else { x = x - 1; }")
	require.NoError(t, err)
	ifStmt, ok := prog.Declarations[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}
