package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thistle-lang/thistle/compiler"
	"github.com/thistle-lang/thistle/heap"
	"github.com/thistle-lang/thistle/opcode"
	"github.com/thistle-lang/thistle/parser"
	"github.com/thistle-lang/thistle/value"
)

func mustRun(t *testing.T, src string) value.Value {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	h := heap.New()
	fn, err := compiler.Compile(prog, h)
	require.NoError(t, err)
	v, err := New(h).Run(fn)
	require.NoError(t, err)
	return v
}

func runErr(t *testing.T, src string) error {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	h := heap.New()
	fn, err := compiler.Compile(prog, h)
	require.NoError(t, err)
	_, err = New(h).Run(fn)
	return err
}

func TestVM_TrailingArithmeticExpression(t *testing.T) {
	v := mustRun(t, "let x = 41; let y = 1; x + y;")
	require.Equal(t, value.KindNumber, v.Kind)
	require.Equal(t, 42.0, v.Number)
}

func TestVM_StringConcatenation(t *testing.T) {
	v := mustRun(t, `"foo" + "bar";`)
	require.Equal(t, "foobar", value.ToDisplayString(v))
}

func TestVM_ArrayConcatenationThenIndex(t *testing.T) {
	v := mustRun(t, `let a = [1, 2] + [3, 4]; a[2];`)
	require.Equal(t, 3.0, v.Number)
}

func TestVM_ArrayAppendScalar(t *testing.T) {
	v := mustRun(t, `let a = [1, 2] + 3; a[2];`)
	require.Equal(t, 3.0, v.Number)
}

func TestVM_IfElseTakesTrueBranch(t *testing.T) {
	v := mustRun(t, `let x = 0; if (true) { x = 1; } else { x = 2; } x;`)
	require.Equal(t, 1.0, v.Number)
}

func TestVM_IfElseTakesFalseBranch(t *testing.T) {
	v := mustRun(t, `let x = 0; if (false) { x = 1; } else { x = 2; } x;`)
	require.Equal(t, 2.0, v.Number)
}

func TestVM_WhileLoopAccumulates(t *testing.T) {
	v := mustRun(t, `
		let i = 0;
		let sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum;
	`)
	require.Equal(t, 10.0, v.Number)
}

func TestVM_FunctionCallAndReturn(t *testing.T) {
	v := mustRun(t, `
		function add(a, b) {
			return a + b;
		}
		add(3, 4);
	`)
	require.Equal(t, 7.0, v.Number)
}

func TestVM_RecursiveGlobalFunction(t *testing.T) {
	v := mustRun(t, `
		function fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		fib(10);
	`)
	require.Equal(t, 55.0, v.Number)
}

func TestVM_ClassInstantiationAndMethodInvoke(t *testing.T) {
	v := mustRun(t, `
		class Player {
			constructor(name) {
				this.name = name;
				this.hp = 100;
			}
			damage(amount) {
				this.hp = this.hp - amount;
				return this.hp;
			}
		}
		let p = Player("Arin");
		p.damage(30);
	`)
	require.Equal(t, 70.0, v.Number)
}

func TestVM_ConstructorThatOnlyStoresParamsNeedsNoTemporaries(t *testing.T) {
	v := mustRun(t, `
		class Player {
			constructor(s) {
				this.value = s;
			}
			get() {
				return this.value;
			}
		}
		let p = Player(0);
		p.get();
	`)
	require.Equal(t, 0.0, v.Number)
}

func TestVM_EmptyConstructorStillSizesFrameToArity(t *testing.T) {
	v := mustRun(t, `
		class Thing {
			constructor() {}
			tag() {
				return "thing";
			}
		}
		let t = Thing();
		t.tag();
	`)
	require.Equal(t, "thing", value.ToDisplayString(v))
}

func TestVM_ClassWithoutConstructorTakesNoArgs(t *testing.T) {
	v := mustRun(t, `
		class Empty {
			greet() {
				return "hi";
			}
		}
		let e = Empty();
		e.greet();
	`)
	require.Equal(t, "hi", value.ToDisplayString(v))
}

func TestVM_BoundMethodValueIsCallableLater(t *testing.T) {
	v := mustRun(t, `
		class Counter {
			constructor() {
				this.n = 0;
			}
			bump() {
				this.n = this.n + 1;
				return this.n;
			}
		}
		let c = Counter();
		let bumpIt = c.bump;
		bumpIt();
		bumpIt();
	`)
	require.Equal(t, 2.0, v.Number)
}

func TestVM_EqualityOnInternedStrings(t *testing.T) {
	v := mustRun(t, `let a = "hi"; let b = "h" + "i"; a == b;`)
	require.Equal(t, true, v.Bool)
}

func TestVM_UndefinedVariableIsRuntimeError(t *testing.T) {
	// An unknown name in source is rejected by the compiler, so the
	// runtime check is reached with hand-built bytecode: GET_GLOBAL of a
	// slot that no DEFINE_GLOBAL has set.
	h := heap.New()
	fn := h.NewFunction(nil)
	fn.RegisterCount = 1
	fn.Chunk.WriteByte(byte(opcode.GET_GLOBAL), 1)
	fn.Chunk.WriteByte(0, 1)
	fn.Chunk.WriteUint16(0, 1)
	fn.Chunk.WriteByte(byte(opcode.RETURN), 1)
	fn.Chunk.WriteByte(0, 1)
	_, err := New(h).Run(fn)
	require.Error(t, err)
}

func TestVM_CallingNonFunctionIsRuntimeError(t *testing.T) {
	err := runErr(t, `let x = 5; x();`)
	require.Error(t, err)
	var rerr *RuntimeError
	require.ErrorAs(t, err, &rerr)
}

func TestVM_ArrayIndexOutOfRangeIsRuntimeError(t *testing.T) {
	err := runErr(t, `let a = [1, 2]; a[5];`)
	require.Error(t, err)
}

func TestVM_WrongArityIsRuntimeError(t *testing.T) {
	err := runErr(t, `
		function add(a, b) {
			return a + b;
		}
		add(1);
	`)
	require.Error(t, err)
}

func TestVM_ErrorTraceIncludesCallStack(t *testing.T) {
	err := runErr(t, `
		function inner() {
			return 1 + "oops";
		}
		function outer() {
			return inner();
		}
		outer();
	`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(rerr.Trace), 2)
}

func TestVM_GarbageCollectionDoesNotCorruptLiveState(t *testing.T) {
	v := mustRun(t, `
		let total = 0;
		let i = 0;
		while (i < 2000) {
			let garbage = [i, i] + [i, i];
			total = total + garbage[0];
			total = total - garbage[1];
			total = total + 1;
			i = i + 1;
		}
		total;
	`)
	require.Equal(t, 2000.0, v.Number)
}
