// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hiyho/neo-one/ast"
	. "github.com/Hiyho/neo-one/compiler"
	"github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/vm"
)

func compileSource(t *testing.T, src string) *Result {
	t.Helper()
	res, err := CompileSource(nil, "test.ts", []byte(src), Options{ResultValue: true})
	require.NoError(t, err, "source:\n%s", src)
	require.Empty(t, res.Diagnostics)
	return res
}

func expectRun(t *testing.T, src string, expected interface{}) {
	t.Helper()
	res := compileSource(t, src)
	v := vm.NewVM(res.Bytecode)
	require.NoError(t, v.Run(), "source:\n%s", src)
	stack := v.Estack()
	require.Len(t, stack, 1, "source:\n%s", src)
	got, err := Inspect(stack[0])
	require.NoError(t, err)
	require.Equal(t, expected, got, "source:\n%s", src)
}

func expectDiagnostic(t *testing.T, src string, code DiagnosticCode) {
	t.Helper()
	res, err := CompileSource(nil, "test.ts", []byte(src), Options{})
	require.Error(t, err)
	var diags Diagnostics
	require.True(t, errors.As(err, &diags), "unexpected error %v", err)
	require.True(t, diags.HasErrors())
	require.Equal(t, code, diags.Errors()[0].Code)
	require.NotNil(t, res)
}

func TestEndToEnd(t *testing.T) {
	t.Run("addition", func(t *testing.T) {
		expectRun(t, `const x = 1 + 2; x`, int64(3))
	})
	t.Run("class field initializer", func(t *testing.T) {
		expectRun(t, `
class Counter {
	count = 5;
}
const c = new Counter();
c.count`, int64(5))
	})
	t.Run("for loop accumulator", func(t *testing.T) {
		expectRun(t, `
let acc = 0;
for (let i = 0; i < 5; i++) {
	acc = acc + 2;
}
acc`, int64(10))
	})
	t.Run("caught throw", func(t *testing.T) {
		expectRun(t, `
function fail() {
	throw new Error("boom");
}
let caught = false;
try {
	fail();
} catch (e) {
	caught = true;
}
caught`, true)
	})
}

func TestExpressions(t *testing.T) {
	expectRun(t, `10 - 4 * 2`, int64(2))
	expectRun(t, `(10 - 4) * 2`, int64(12))
	expectRun(t, `7 / 2`, int64(3))
	expectRun(t, `7 % 4`, int64(3))
	expectRun(t, `2 ** 10`, int64(1024))
	expectRun(t, `-5 + 2`, int64(-3))
	expectRun(t, `1 << 4`, int64(16))
	expectRun(t, `6 & 3`, int64(2))
	expectRun(t, `6 | 3`, int64(7))
	expectRun(t, `6 ^ 3`, int64(5))
	expectRun(t, `1 < 2`, true)
	expectRun(t, `2 <= 1`, false)
	expectRun(t, `!0`, true)
	expectRun(t, `"a" + "b"`, "ab")
	expectRun(t, `"n" + 1`, "n1")
	expectRun(t, `1 + "2"`, "12")
	expectRun(t, `1 === 1`, true)
	expectRun(t, `1 !== 1`, false)
	expectRun(t, `null == undefined`, true)
	expectRun(t, `null === undefined`, false)
	expectRun(t, `true ? "yes" : "no"`, "yes")
	expectRun(t, `0 || "fallback"`, "fallback")
	expectRun(t, `1 && 2`, int64(2))
	expectRun(t, `null ?? 4`, int64(4))
	expectRun(t, `typeof 1`, "number")
	expectRun(t, `typeof "s"`, "string")
	expectRun(t, `typeof null`, "object")
	expectRun(t, `typeof undefined`, "undefined")
	expectRun(t, `void 1`, Undefined{})
	expectRun(t, `null`, nil)
	expectRun(t, `let i = 1; i++`, int64(1))
	expectRun(t, `let i = 1; ++i`, int64(2))
	expectRun(t, `let i = 1; i += 4; i`, int64(5))
	expectRun(t, `let i = 1; i -= 4; i`, int64(-3))
}

func TestUntypedOperations(t *testing.T) {
	src := `
function f(a, b, c) {
	let x = a + b;
	let y = a - b;
	let z = a * c;
	let w = c / a;
	let r = c % b;
	let s = x + y + z + w + r;
	let u = s - a * b + c;
	let cmp = (x < y) + (z > w) + (a <= b) + (c >= a);
	let eq = (a == 2) + (b != 3) + (x == "5");
	return s + u + cmp + eq + (a << 1) + (c >> 1) + (b & 1) + (c | 1) + (a ^ 3);
}
f(2, 3, 7)`
	expectRun(t, src, int64(66))
	expectRun(t, `
function cat(a, b) {
	return a + "-" + b + "-" + (a + b) + "-" + (a * b);
}
cat(4, 5)`, "4-5-9-20")

	// conversions are emitted once and called from every use
	sum := func(n int) int {
		var sb strings.Builder
		sb.WriteString("function g(a, b) {\n\tlet t = 0;\n")
		for i := 0; i < n; i++ {
			sb.WriteString("\tt = t + a * b - a;\n")
		}
		sb.WriteString("\treturn t;\n}\ng(3, 4)")
		res := compileSource(t, sb.String())
		return len(res.Bytecode)
	}
	one, many := sum(1), sum(40)
	require.Less(t, many-one, 39*400)
	expectRun(t, `
function g(a, b) {
	let t = 0;
	t = t + a * b - a; t = t + a * b - a; t = t + a * b - a; t = t + a * b - a;
	t = t + a * b - a; t = t + a * b - a; t = t + a * b - a; t = t + a * b - a;
	return t;
}
g(3, 4)`, int64(72))
}

func TestFunctions(t *testing.T) {
	expectRun(t, `
function add(a, b) {
	return a + b;
}
add(2, 3)`, int64(5))
	expectRun(t, `
function withDefault(a, b = 10) {
	return a + b;
}
withDefault(1)`, int64(11))
	expectRun(t, `
function count(...rest) {
	return rest.length;
}
count(1, 2, 3)`, int64(3))
	expectRun(t, `
const double = (x) => x * 2;
double(21)`, int64(42))
	expectRun(t, `
function makeCounter() {
	let n = 0;
	return () => {
		n = n + 1;
		return n;
	};
}
const next = makeCounter();
next();
next();
next()`, int64(3))
	expectRun(t, `
function hoisted() {
	return later();
}
function later() {
	return "late";
}
hoisted()`, "late")
	expectRun(t, `
function fib(n) {
	if (n < 2) {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
fib(10)`, int64(55))
	expectRun(t, `function noReturn() {} noReturn()`, Undefined{})
}

func TestObjectsAndArrays(t *testing.T) {
	expectRun(t, `const o = {a: 1, b: "x"}; o.b`, "x")
	expectRun(t, `const o = {a: 1}; o.a = 5; o.a`, int64(5))
	expectRun(t, `const o = {a: 1}; o["a"] + 1`, int64(2))
	expectRun(t, `const o = {a: 1}; "a" in o`, true)
	expectRun(t, `const o = {a: 1}; delete o.a; "a" in o`, false)
	expectRun(t, `const o = {a: 1}; o.missing`, Undefined{})
	expectRun(t, `const o = {a: 1, b: 2}; o`, Object{"a": int64(1), "b": int64(2)})
	expectRun(t, `[1, "two", true]`, []interface{}{int64(1), "two", true})
	expectRun(t, `const a = [1, 2, 3]; a[1]`, int64(2))
	expectRun(t, `const a = [1, 2, 3]; a.length`, int64(3))
	expectRun(t, `const a = [1, 2, 3]; a.push(4); a.length`, int64(4))
	expectRun(t, `const a = [1, 2]; a[0] = 9; a`, []interface{}{int64(9), int64(2)})
	expectRun(t, `
let sum = 0;
for (const v of [1, 2, 3]) {
	sum += v;
}
sum`, int64(6))
	expectRun(t, `"hello".length`, int64(5))
	expectRun(t, `const s = Symbol("k"); typeof s`, "symbol")
	expectRun(t, `[] instanceof Array`, true)
}

func TestClasses(t *testing.T) {
	expectRun(t, `
class Animal {
	constructor(name) {
		this.name = name;
	}
	speak() {
		return this.name + " speaks";
	}
}
class Dog extends Animal {
	constructor(name) {
		super(name);
	}
	speak() {
		return super.speak() + " loudly";
	}
}
new Dog("Rex").speak()`, "Rex speaks loudly")
	expectRun(t, `
class Base {
	value = 7;
}
class Derived extends Base {
	extra = 1;
}
const d = new Derived();
d.value + d.extra`, int64(8))
	expectRun(t, `
class Base {}
class Derived extends Base {}
const d = new Derived();
d instanceof Base`, true)
	expectRun(t, `
class MathUtil {
	static square(x) {
		return x * x;
	}
}
MathUtil.square(9)`, int64(81))
}

func TestControlFlow(t *testing.T) {
	expectRun(t, `
let n = 0;
while (n < 10) {
	n++;
	if (n === 4) {
		break;
	}
}
n`, int64(4))
	expectRun(t, `
let odd = 0;
for (let i = 0; i < 10; i++) {
	if (i % 2 === 0) {
		continue;
	}
	odd++;
}
odd`, int64(5))
	expectRun(t, `
let i = 0;
do {
	i++;
} while (i < 3);
i`, int64(3))
	expectRun(t, `
function name(k) {
	let out = "";
	switch (k) {
	case 1:
		out = "one";
		break;
	case 2:
		out = "two";
	case 3:
		out = out + "three";
		break;
	default:
		out = "other";
	}
	return out;
}
name(1) + "," + name(2) + "," + name(5)`, "one,twothree,other")
}

func TestForLetBindingPerIteration(t *testing.T) {
	expectRun(t, `
let fs = [];
for (let i = 0; i < 3; i++) {
	fs.push(() => i);
}
fs[0]() + fs[1]() * 10 + fs[2]() * 100`, int64(210))
	expectRun(t, `
let fs = [];
for (let i = 0; i < 4; i++) {
	let sq = i * i;
	if (i === 1) {
		continue;
	}
	fs.push(() => i + sq);
}
fs[0]() + "," + fs[1]() + "," + fs[2]()`, "0,6,12")
	expectRun(t, `
let fs = [];
for (var i = 0; i < 2; i++) {
	fs.push(() => i);
}
fs[0]()`, int64(2))
	expectRun(t, `
let n = 0;
for (let i = 0; i < 5; i++) {
	i++;
	n++;
}
n`, int64(3))
}

func TestCompletionPropagation(t *testing.T) {
	src := `
function inner() {
	throw 41;
}
function outer() {
	inner();
	return 0;
}
`
	// the throw passes through outer's return
	expectRun(t, src+`
let got = 0;
try {
	outer();
} catch (e) {
	got = e + 1;
}
got`, int64(42))

	// without a handler the main program faults
	res := compileSource(t, src+`outer();`)
	v := vm.NewVM(res.Bytecode)
	err := v.Run()
	require.Error(t, err)
	require.True(t, errors.Is(err, vm.ErrFault), "unexpected error %v", err)
	require.Equal(t, vm.StateFault, v.State())

	expectRun(t, `
let msg = "";
try {
	throw new Error("bad");
} catch (e) {
	msg = e.message;
}
msg`, "bad")
	expectRun(t, `
let r = 0;
try {
	[1, 2].nope();
} catch (e) {
	r = 1;
}
r`, int64(1))
}

func TestDiagnostics(t *testing.T) {
	expectDiagnostic(t, `missing + 1`, UnknownSymbol)
	expectDiagnostic(t, "let a = 1;\nb;", UnknownSymbol)
	for _, src := range []string{`undefined;`, `Object;`, `let a = 1; a;`} {
		res, err := CompileSource(nil, "ok.ts", []byte(src), Options{})
		require.NoError(t, err, src)
		require.Empty(t, res.Diagnostics, src)
	}
	expectDiagnostic(t, `return 1;`, TranspilationError)
	expectDiagnostic(t, `break;`, TranspilationError)
	expectDiagnostic(t, `1.5`, UnsupportedSyntax)
	expectDiagnostic(t, `try {} finally {}`, UnsupportedSyntax)
	expectDiagnostic(t, `const o = {...{}}`, UnsupportedSyntax)

	res, err := CompileSource(nil, "warn.ts", []byte(`const x = 1 as Foo; x`), Options{})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
	require.Equal(t, UnknownType, res.Diagnostics[0].Code)

	fileSet := parser.NewFileSet()
	_, err = CompileSource(fileSet, "pos.ts", []byte("let a = 1;\nb;"), Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "pos.ts:2:1")
	require.Contains(t, err.Error(), "UNKNOWN_SYMBOL")
}

func TestCompileParseError(t *testing.T) {
	_, err := CompileSource(nil, "bad.ts", []byte(`let = ;`), Options{})
	require.Error(t, err)
	var list parser.ErrorList
	require.True(t, errors.As(err, &list))
}

func TestRegistry(t *testing.T) {
	ident := NodeCompilerFunc(ast.KindIdent, func(ScriptBuilder, ast.Node, VisitOptions) {})
	_, err := NewRegistry(ident, ident)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")

	r, err := NewRegistry(ident)
	require.NoError(t, err)
	_, ok := r.Lookup(ast.KindIdent)
	require.True(t, ok)
	_, ok = r.Lookup(ast.KindNumberLit)
	require.False(t, ok)

	kinds := DefaultRegistry().Kinds()
	require.Contains(t, kinds, ast.KindClassLit)
	require.Contains(t, kinds, ast.KindTryStmt)
	for i := 1; i < len(kinds); i++ {
		require.Less(t, kinds[i-1], kinds[i])
	}

	// every number literal compiles to a raw 99
	custom := DefaultRegistry().With(NodeCompilerFunc(ast.KindNumberLit,
		func(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
			if opts.PushValue {
				sb.EmitPushInt(node, 99)
			}
		}))
	res, err := CompileSource(nil, "custom.ts", []byte(`1`), Options{ResultValue: true, Registry: custom})
	require.NoError(t, err)
	v := vm.NewVM(res.Bytecode)
	require.NoError(t, v.Run())
	stack := v.Estack()
	require.Len(t, stack, 1)
	n, err := stack[0].BigInt()
	require.NoError(t, err)
	require.Equal(t, int64(99), n.Int64())
}

func TestOnVisited(t *testing.T) {
	var nodes []ast.Node
	res, err := CompileSource(nil, "hook.ts", []byte(`let a = 40; a = a + 2;`), Options{
		OnVisited: func(sb ScriptBuilder, node ast.Node) {
			nodes = append(nodes, node)
			name, ok := sb.Scope().Lookup("a")
			require.True(t, ok)
			sb.Scope().Get(sb, node, PushValueOptions(VisitOptions{}), name)
		},
	})
	require.NoError(t, err)
	require.Len(t, nodes, 2, "capturing and emitting pass")
	_, ok := nodes[1].(*ast.File)
	require.True(t, ok)

	v := vm.NewVM(res.Bytecode)
	require.NoError(t, v.Run())
	stack := v.Estack()
	require.Len(t, stack, 1)
	got, err := Inspect(stack[0])
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}

func TestCompileTrace(t *testing.T) {
	var buf bytes.Buffer
	_, err := CompileSource(nil, "trace.ts", []byte(`let a = 1; a`), Options{Trace: &buf})
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "VariableStatement")
	require.Contains(t, out, "helper compiler.createGlobalObject")
	require.True(t, strings.Contains(out, "PUSH") && strings.Contains(out, "JMP"))
}
