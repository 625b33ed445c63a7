// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package parser_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hiyho/neo-one/ast"
	. "github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/token"
)

func TestParserTrace(t *testing.T) {
	var buf bytes.Buffer
	input := "let a = 1 + 2"
	fileSet := NewFileSet()
	file := fileSet.AddFile("test", -1, len(input))
	_, err := NewParser(file, []byte(input), &buf).ParseFile()
	require.NoError(t, err)
	require.Contains(t, buf.String(), "VarDecl (")
	require.Contains(t, buf.String(), "BinaryExpression (")
}

func TestParserError(t *testing.T) {
	err := &Error{Pos: SourceFilePos{
		Offset: 10, Line: 1, Column: 10,
	}, Msg: "test"}
	require.Equal(t, "Parse Error: test\n\tat 1:10", err.Error())
}

func TestParserErrorList(t *testing.T) {
	var list ErrorList
	list.Add(SourceFilePos{Offset: 20, Line: 2, Column: 10}, "error 2")
	list.Add(SourceFilePos{Offset: 30, Line: 3, Column: 10}, "error 3")
	list.Add(SourceFilePos{Offset: 10, Line: 1, Column: 10}, "error 1")
	list.Sort()
	require.Equal(t, "Parse Error: error 1\n\tat 1:10 (and 2 more errors)",
		list.Error())
	require.Nil(t, ErrorList(nil).Err())
}

func TestParsePrecedence(t *testing.T) {
	expectParseString(t, `a + b + c`, `((a + b) + c)`)
	expectParseString(t, `a + b * c`, `(a + (b * c))`)
	expectParseString(t, `x = 2 * 1 + 3 / 4`, `x = ((2 * 1) + (3 / 4))`)
	expectParseString(t, `x ** y ** z`, `(x ** (y ** z))`)
	expectParseString(t, `a || b && c`, `(a || (b && c))`)
	expectParseString(t, `a == b < c`, `(a == (b < c))`)
	expectParseString(t, `a | b ^ c & d`, `(a | (b ^ (c & d)))`)
	expectParseString(t, `a << 1 + 2`, `(a << (1 + 2))`)
	expectParseString(t, `a = b = c`, `a = b = c`)
	expectParseString(t, `-a + typeof b`, `((-a) + (typeof b))`)
	expectParseString(t, `!a === !b`, `((!a) === (!b))`)
	expectParseString(t, `a ? b : c ? d : e`, `(a ? b : (c ? d : e))`)
	expectParseString(t, `x instanceof Foo`, `(x instanceof Foo)`)
	expectParseString(t, `a ?? b`, `(a ?? b)`)
}

func TestParseUpdate(t *testing.T) {
	expectParseString(t, `i++`, `i++`)
	expectParseString(t, `--i`, `--i`)
	expectParseString(t, `a.b++`, `a.b++`)
	expectParseString(t, "a\n++b", `a; ++b`)
	expectParseError(t, `1++`)
}

func TestParseCall(t *testing.T) {
	expectParseString(t, `f()`, `f()`)
	expectParseString(t, `obj.foo(1, ...rest)[0]`, `obj.foo(1, ...rest)[0]`)
	expectParseString(t, `a.b.c(d)(e)`, `a.b.c(d)(e)`)
	expectParseString(t, `new Foo`, `new Foo()`)
	expectParseString(t, `new Foo<number>(1).bar`, `new Foo(1).bar`)
	expectParseString(t, `new a.B(x)`, `new a.B(x)`)
	expectParseString(t, `x.default.new`, `x.default.new`)
	expectParseString(t, `a!.b`, `a.b`)
}

func TestParseFunction(t *testing.T) {
	expectParseString(t,
		`function add(a: number, b: number): number { return a + b }`,
		`function add(a, b) {return (a + b)}`)
	expectParseString(t,
		`const f = (a: number, b = 2): number => a + b`,
		`const f = (a, b = 2) => (a + b)`)
	expectParseString(t, `const g = x => x * 2`, `const g = (x) => (x * 2)`)
	expectParseString(t, `const h = () => { return 1 }`,
		`const h = () => {return 1}`)
	expectParseString(t, `let f = function(...args: any[]) {}`,
		`let f = function(...args) {}`)
	expectParseString(t, `function id<T>(x: T): T { return x }`,
		`function id(x) {return x}`)
	expectParseString(t, "function f() { return\n1 }",
		`function f() {return; 1}`)
	expectParseString(t, `(a)`, `(a)`)
}

func TestParseLiterals(t *testing.T) {
	expectParseString(t, `let a = [1, "two", ...rest]`,
		`let a = [1, "two", ...rest]`)
	expectParseString(t, `let o = {a, b: 1, [k]: 2, m() { return 1 }, ...p}`,
		`let o = {a, b: 1, [k]: 2, m: function() {return 1}, ...p}`)
	expectParseString(t, `let o = {"x": null, 1: true, if: false}`,
		`let o = {"x": null, 1: true, if: false}`)
	expectParseString(t, `let a = []`, `let a = []`)

	numbers := []struct {
		lit   string
		value int64
		float bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"0x1F", 31, false},
		{"0b101", 5, false},
		{"0o17", 15, false},
		{"1_000", 1000, false},
		{"1e3", 1000, false},
		{"10n", 10, false},
		{"2.0", 2, false},
		{"1.5", 0, true},
	}
	for _, tc := range numbers {
		f := parseSource(t, "x = "+tc.lit)
		lit := f.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr).RHS.(*ast.NumberLit)
		require.Equal(t, tc.value, lit.Value, tc.lit)
		require.Equal(t, tc.float, lit.Float, tc.lit)
		require.Equal(t, tc.lit, lit.Literal)
	}

	f := parseSource(t, `x = 'a\n\x41B\u{43}'`)
	lit := f.Stmts[0].(*ast.ExprStmt).X.(*ast.AssignExpr).RHS.(*ast.StringLit)
	require.Equal(t, "a\nABC", lit.Value)
}

func TestParseClass(t *testing.T) {
	expectParseString(t, `
class A extends B implements I {
  private x: number = 1;
  static y = 2;
  constructor(a: number) { super(a); }
  get() { return this.x }
}`,
		`class A extends B { x = 1; static y = 2; constructor(a) {super(a)} get() {return this.x} }`)

	f := parseSource(t, `class C { static m() {} n?: string; constructor() {} }`)
	class := f.Stmts[0].(*ast.ClassDecl).Class
	require.Len(t, class.Members, 3)
	require.Equal(t, ast.MethodMember, class.Members[0].MemberKind)
	require.True(t, class.Members[0].Static)
	require.Equal(t, ast.FieldMember, class.Members[1].MemberKind)
	require.Nil(t, class.Members[1].Value)
	require.Same(t, class.Members[2], class.Constructor())

	expectParseString(t, `const K = class {}`, `const K = class { }`)
	expectParseError(t, `class {}`)
	expectParseError(t, `class A { get x() { return 1 } }`)
}

func TestParseStatements(t *testing.T) {
	expectParseString(t, `for (let i = 0; i < 10; i++) { s += i }`,
		`for (let i = 0; (i < 10); i++) {s += i}`)
	expectParseString(t, `for (;;) {}`, `for (;;) {}`)
	expectParseString(t, `for (const x of xs) total += x`,
		`for (const x of xs) total += x`)
	expectParseString(t, `for (x of xs) {}`, `for (x of xs) {}`)
	expectParseString(t, `while (true) break`, `while (true) break`)
	expectParseString(t, `do { i-- } while (i > 0)`,
		`do {i--} while ((i > 0))`)
	expectParseString(t, `switch (x) { case 1: a(); break; default: b() }`,
		`switch (x) {case 1: a(); break default: b()}`)
	expectParseString(t, `try { f() } catch (e) { g(e) } finally { h() }`,
		`try {f()} catch (e) {g(e)} finally {h()}`)
	expectParseString(t, `try { f() } catch { }`, `try {f()} catch {}`)
	expectParseString(t, `if (a) b(); else { c() }`, `if (a) b() else {c()}`)
	expectParseString(t, `throw new Error("x")`, `throw new Error("x")`)
	expectParseString(t, `;`, `;`)
	expectParseString(t, "let a = 1\nlet b = a\n", `let a = 1; let b = a`)
	expectParseString(t, `export const a = 1`, `const a = 1`)
}

func TestParseTypes(t *testing.T) {
	expectParseString(t, `type T = number | string; let y: T[] = []`,
		`;; let y = []`)
	expectParseString(t, `interface P { x: number; y(): void }`, `;`)
	expectParseString(t, `let m: Map<string, Array<number>> = x`, `let m = x`)
	expectParseString(t, `let f: (a: number) => void = g`, `let f = g`)
	expectParseString(t, `let v = x as string`, `let v = (x as string)`)
	expectParseString(t, `let v = <T>(x: T) => x`, `let v = (x) => x`)
	expectParseString(t, `let u: { a: number } | null = null`, `let u = null`)
}

func TestParseErrors(t *testing.T) {
	expectParseErrorContains(t, `const a;`,
		"missing initializer in const declaration")
	expectParseErrorContains(t, `for (k in o) {}`,
		"for-in statements are not supported")
	expectParseErrorContains(t, `import x from "y"`,
		"import declarations are not supported")
	expectParseErrorContains(t, "let s = `x`",
		"template literals are not supported")
	expectParseErrorContains(t, `let a = [1, , 2]`, "array holes")
	expectParseErrorContains(t, `while (a) { break outer }`,
		"labeled statements are not supported")
	expectParseErrorContains(t, `a, b`, "comma expressions")
	expectParseErrorContains(t, `try {}`, "expected 'catch' or 'finally'")
	expectParseErrorContains(t, `1 = 2`, "invalid assignment target")
	expectParseErrorContains(t, `let x = 1 2`, "expected ';'")
	expectParseError(t, `if (a {}`)
	expectParseError(t, `}`)
	expectParseError(t, `enum E { A }`)
}

func TestParsePositions(t *testing.T) {
	input := "let a = 1\nf(a)"
	fileSet := NewFileSet()
	file := fileSet.AddFile("test", -1, len(input))
	f, err := NewParser(file, []byte(input), nil).ParseFile()
	require.NoError(t, err)
	require.Len(t, f.Stmts, 2)
	require.Equal(t, ast.Pos(1), f.Stmts[0].Pos())
	call := f.Stmts[1].(*ast.ExprStmt).X.(*ast.CallExpr)
	require.Equal(t, SourceFilePos{Filename: "test", Offset: 10, Line: 2, Column: 1},
		file.Position(call.Pos()))
	require.Equal(t, SourceFilePos{Filename: "test", Offset: 13, Line: 2, Column: 4},
		file.Position(call.RParen))
}

func TestParseDeclKinds(t *testing.T) {
	f := parseSource(t, "var a; let b = 1, c = 2")
	require.Len(t, f.Stmts, 2)
	require.Equal(t, token.Var, f.Stmts[0].(*ast.VarDecl).Tok)
	decl := f.Stmts[1].(*ast.VarDecl)
	require.Equal(t, token.Let, decl.Tok)
	require.Len(t, decl.Specs, 2)
	require.Equal(t, "c", decl.Specs[1].Name.Name)
}

type parseTracer struct {
	out []string
}

func (o *parseTracer) Write(p []byte) (n int, err error) {
	o.out = append(o.out, string(p))
	return len(p), nil
}

func parseSource(t *testing.T, input string) *ast.File {
	t.Helper()
	f, err := Parse(NewFileSet(), "test", []byte(input))
	require.NoError(t, err)
	return f
}

func expectParseString(t *testing.T, input, expected string) {
	t.Helper()
	var ok bool
	defer func() {
		if !ok {
			// print trace
			tr := &parseTracer{}
			fileSet := NewFileSet()
			file := fileSet.AddFile("test", -1, len(input))
			_, _ = NewParser(file, []byte(input), tr).ParseFile()
			t.Logf("Trace:\n%s", strings.Join(tr.out, ""))
		}
	}()

	actual, err := Parse(NewFileSet(), "test", []byte(input))
	require.NoError(t, err)
	require.Equal(t, expected, actual.String())
	ok = true
}

func expectParseError(t *testing.T, input string) {
	t.Helper()
	_, err := Parse(NewFileSet(), "test", []byte(input))
	require.Error(t, err)
}

func expectParseErrorContains(t *testing.T, input, msg string) {
	t.Helper()
	_, err := Parse(NewFileSet(), "test", []byte(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), msg)
}
