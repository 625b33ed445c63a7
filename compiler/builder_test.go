// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/parser"
	"github.com/Hiyho/neo-one/vm"
)

func emitScript(t *testing.T, fn func(sb *scriptBuilder, node ast.Node)) []byte {
	t.Helper()
	sb := newScriptBuilder(NewContext(nil), defaultRegistry, map[scopeKey]int{}, false)
	fn(sb, &ast.EmptyStmt{Semicolon: 1})
	code, _ := sb.finalize()
	return code
}

// emitProgram runs fn in the root scope of both passes, after the global
// object is set, and returns the emitted script.
func emitProgram(t *testing.T, fn func(sb *scriptBuilder, node ast.Node)) []byte {
	t.Helper()
	file := &ast.File{Name: "helpers.ts", FileStart: 1}
	counts := make(map[scopeKey]int)
	capture := newScriptBuilder(NewContext(nil), defaultRegistry, counts, true)
	capture.processWith(file, func(VisitOptions) { fn(capture, file) })
	sb := newScriptBuilder(NewContext(nil), defaultRegistry, counts, false)
	sb.processWith(file, func(VisitOptions) { fn(sb, file) })
	code, _ := sb.finalize()
	return code
}

func runScript(t *testing.T, code []byte) []vm.StackItem {
	t.Helper()
	v := vm.NewVM(code)
	require.NoError(t, v.Run())
	require.Equal(t, vm.StateHalt, v.State())
	return v.Estack()
}

func decodeAll(t *testing.T, code []byte) []vm.Instruction {
	t.Helper()
	var out []vm.Instruction
	require.NoError(t, vm.IterateInstructions(code, func(ins vm.Instruction) bool {
		out = append(out, ins)
		return true
	}))
	return out
}

func TestEmitPushIntEncoding(t *testing.T) {
	testCases := []struct {
		v    int64
		code []byte
	}{
		{-1, []byte{vm.PUSHM1}},
		{0, []byte{vm.PUSHBYTES1, 0x00}},
		{1, []byte{vm.PUSH1}},
		{15, []byte{vm.PUSH15}},
		{16, []byte{vm.PUSHBYTES1, 0x10}},
		{17, []byte{vm.PUSHBYTES1, 0x11}},
		{255, []byte{0x02, 0xFF, 0x00}},
		{256, []byte{0x02, 0x00, 0x01}},
		{65535, []byte{0x03, 0xFF, 0xFF, 0x00}},
		{65536, []byte{0x03, 0x00, 0x00, 0x01}},
		{-2, []byte{vm.PUSHBYTES1, 0xFE}},
	}
	for _, tC := range testCases {
		code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushInt(node, tC.v)
		})
		require.Equal(t, tC.code, code, "value %d", tC.v)
	}
}

func TestEmitPushIntRoundTrip(t *testing.T) {
	for v := int64(-1); v <= 10000; v++ {
		code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushInt(node, v)
		})
		stack := runScript(t, code)
		require.Len(t, stack, 1)
		n, err := stack[0].BigInt()
		require.NoError(t, err)
		require.Equal(t, v, n.Int64(), "value %d", v)
	}
}

func TestEmitPushBytesEncoding(t *testing.T) {
	for _, n := range []int{0, 1, 75, 76, 255, 256, 65535, 65536} {
		b := make([]byte, n)
		code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushBytes(node, b)
		})
		ins := decodeAll(t, code)
		require.Len(t, ins, 1, "size %d", n)
		require.Len(t, ins[0].Data, n)
		switch {
		case n <= 75:
			require.Equal(t, vm.Opcode(n), ins[0].Op)
		case n < 0x100:
			require.Equal(t, vm.PUSHDATA1, ins[0].Op)
		case n < 0x10000:
			require.Equal(t, vm.PUSHDATA2, ins[0].Op)
		default:
			require.Equal(t, vm.PUSHDATA4, ins[0].Op)
		}
	}
}

func TestIfElseJumpResolution(t *testing.T) {
	var code []byte
	code = emitScript(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitHelper(node, VisitOptions{}, ifHelper{
			condition: func() { sb.EmitPushBoolean(node, true) },
			whenTrue:  func() { sb.EmitPushString(node, "A") },
			whenFalse: func() { sb.EmitPushString(node, "B") },
		})
	})
	ins := decodeAll(t, code)
	require.Len(t, ins, 5)
	require.Equal(t, vm.PUSH1, ins[0].Op)
	require.Equal(t, vm.JMPIFNOT, ins[1].Op)
	require.Equal(t, []byte("A"), ins[2].Data)
	require.Equal(t, vm.JMP, ins[3].Op)
	require.Equal(t, []byte("B"), ins[4].Data)

	// the conditional jump lands on B, the jump after A past B
	require.Equal(t, ins[4].Pos, ins[1].Target())
	require.Equal(t, len(code), ins[3].Target())
	require.Equal(t, ins[4].Pos-ins[1].Pos, ins[1].Offset)

	stack := runScript(t, code)
	require.Len(t, stack, 1)
	b, err := stack[0].Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte("A"), b)
}

func TestDeferredProgramCounterInFragment(t *testing.T) {
	code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushInt(node, 7)
		var f *Fragment
		sb.WithProgramCounter(func(end *ProgramCounterHelper) {
			f = sb.Capture(func() {
				sb.EmitJump(node, vm.JMP, end.GetLast())
				sb.EmitOp(node, vm.THROW)
			})
			sb.EmitOp(node, vm.NOP)
			sb.EmitBytecode(f)
		})
	})
	stack := runScript(t, code)
	require.Len(t, stack, 1)
	n, err := stack[0].BigInt()
	require.NoError(t, err)
	require.Equal(t, int64(7), n.Int64())
}

func TestEmitJumpWithoutTargetPanics(t *testing.T) {
	require.PanicsWithError(t, "internal compiler error: JMP without a target", func() {
		emitScript(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitJump(node, vm.JMP, NoPC)
		})
	})
	require.Panics(t, func() {
		emitScript(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitOp(node, vm.JMP)
		})
	})
}

// Helpers documented as Input: [a] Output: [] leave the stack as it was
// before a was pushed, whatever branch they take.
func TestStackNeutrality(t *testing.T) {
	marker := func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushString(node, "marker")
	}
	testCases := []struct {
		name string
		push func(sb *scriptBuilder, node ast.Node)
		h    func(sb *scriptBuilder) Helper
	}{
		{
			name: "handleCompletion normal",
			push: func(sb *scriptBuilder, node ast.Node) {
				sb.EmitHelper(node, PushValueOptions(VisitOptions{}), createUndefined{})
				sb.EmitHelper(node, PushValueOptions(VisitOptions{}), createNormalCompletion())
			},
			h: func(*scriptBuilder) Helper { return handleCompletion{} },
		},
		{
			name: "ifHelper true",
			push: func(sb *scriptBuilder, node ast.Node) { sb.EmitPushBoolean(node, true) },
			h: func(sb *scriptBuilder) Helper {
				return ifHelper{
					whenTrue:  func() { emitOps(sb, nil, vm.PUSH1, vm.DROP) },
					whenFalse: func() { emitOps(sb, nil, vm.PUSH2, vm.DROP) },
				}
			},
		},
		{
			name: "ifHelper false",
			push: func(sb *scriptBuilder, node ast.Node) { sb.EmitPushBoolean(node, false) },
			h: func(sb *scriptBuilder) Helper {
				return ifHelper{whenTrue: func() { emitOps(sb, nil, vm.PUSH1, vm.DROP) }}
			},
		},
		{
			name: "createValue without push",
			push: func(sb *scriptBuilder, node ast.Node) { sb.EmitPushInt(node, 42) },
			h:    func(*scriptBuilder) Helper { return createNumber() },
		},
	}
	for _, tC := range testCases {
		t.Run(tC.name, func(t *testing.T) {
			code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
				marker(sb, node)
				tC.push(sb, node)
				sb.EmitHelper(node, VisitOptions{}, tC.h(sb))
			})
			stack := runScript(t, code)
			require.Len(t, stack, 1)
			b, err := stack[0].Bytes()
			require.NoError(t, err)
			require.Equal(t, []byte("marker"), b)
		})
	}
}

func captureCounts(t *testing.T, file *ast.File) map[scopeKey]int {
	t.Helper()
	counts := make(map[scopeKey]int)
	sb := newScriptBuilder(NewContext(nil), defaultRegistry, counts, true)
	sb.process(file)
	return counts
}

func TestCapturingPassDeterminism(t *testing.T) {
	src := `
let total = 0;
function add(a, b = 2, ...rest) {
	const sum = a + b;
	return sum + rest.length;
}
class Point {
	x = 1;
	constructor(y) { this.y = y; }
	norm() { let n = this.x * this.y; return n; }
}
for (let i = 0; i < 3; i++) {
	let sq = i * i;
	total += add(sq);
}
try { total = total + new Point(2).norm(); } catch (e) { total = 0; }
switch (total) { case 1: { let z = 1; break; } default: total--; }
total
`
	file, err := parser.Parse(parser.NewFileSet(), "determinism.ts", []byte(src))
	require.NoError(t, err)

	first := captureCounts(t, file)
	second := captureCounts(t, file)
	require.NotEmpty(t, first)
	require.Equal(t, first, second)

	root := scopeKey{node: file}
	require.Equal(t, 4, first[root], "global, total, add and Point")

	res, err := Compile(file, Options{ResultValue: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.Bytecode)
}

func TestCompileDeterministicOutput(t *testing.T) {
	src := []byte(`let a = [1, 2]; for (const v of a) { a.push(v); } a.length`)
	r1, err := CompileSource(nil, "a.ts", src, Options{ResultValue: true})
	require.NoError(t, err)
	r2, err := CompileSource(nil, "a.ts", src, Options{ResultValue: true})
	require.NoError(t, err)
	require.Equal(t, r1.Bytecode, r2.Bytecode)
	require.Equal(t, r1.SourceMap, r2.SourceMap)
}

func TestSourceMapLookup(t *testing.T) {
	sm := SourceMap{{Offset: 0, Pos: 1}, {Offset: 4, Pos: 9}, {Offset: 10, Pos: 20}}
	for _, tC := range []struct {
		offset int
		pos    ast.Pos
	}{{0, 1}, {3, 1}, {4, 9}, {9, 9}, {10, 20}, {100, 20}} {
		pos, ok := sm.Lookup(tC.offset)
		require.True(t, ok)
		require.Equal(t, tC.pos, pos, "offset %d", tC.offset)
	}
	_, ok := SourceMap(nil).Lookup(0)
	require.False(t, ok)
}

var pushOpts = PushValueOptions(VisitOptions{})

type runtimeValue struct {
	name string
	tag  Tag
	push func(sb *scriptBuilder, node ast.Node)
}

func runtimeValues() []runtimeValue {
	payload := func(tag Tag, emit func(sb *scriptBuilder, node ast.Node)) func(*scriptBuilder, ast.Node) {
		return func(sb *scriptBuilder, node ast.Node) {
			emit(sb, node)
			sb.EmitHelper(node, pushOpts, createValue{tag: tag})
		}
	}
	return []runtimeValue{
		{"undefined", TagUndefined, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitHelper(node, pushOpts, createUndefined{})
		}},
		{"null", TagNull, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitHelper(node, pushOpts, createNull{})
		}},
		{"boolean", TagBoolean, payload(TagBoolean, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushBoolean(node, true)
		})},
		{"number", TagNumber, payload(TagNumber, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushInt(node, 12)
		})},
		{"string", TagString, payload(TagString, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushString(node, "12")
		})},
		{"symbol", TagSymbol, payload(TagSymbol, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushString(node, "s")
		})},
		{"object", TagObject, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitHelper(node, pushOpts, createObject{})
			sb.EmitHelper(node, pushOpts, setGlobalPrototype{global: "Object"})
		}},
	}
}

// emitGuarded runs body with a catch handler that unwinds the stack to
// its depth before body and pushes "caught".
func emitGuarded(sb *scriptBuilder, node ast.Node, body func(opts VisitOptions)) {
	depth := sb.Scope().AddUnique()
	sb.EmitOp(node, vm.DEPTH)
	sb.Scope().Set(sb, node, pushOpts, depth)
	catch := sb.DeferProgramCounter()
	sb.WithProgramCounter(func(end *ProgramCounterHelper) {
		body(CatchPCOptions(pushOpts, catch))
		sb.EmitJump(node, vm.JMP, end.GetLast())
		sb.ResolveProgramCounter(catch)
		sb.EmitHelper(node, pushOpts, unwind{base: func() {
			sb.Scope().Get(sb, node, pushOpts, depth)
		}})
		sb.EmitOp(node, vm.DROP)
		sb.EmitPushString(node, "caught")
	})
}

func stackStrings(t *testing.T, stack []vm.StackItem) []string {
	t.Helper()
	out := make([]string, 0, len(stack))
	for _, it := range stack {
		b, err := it.Bytes()
		require.NoError(t, err)
		out = append(out, string(b))
	}
	return out
}

// Conversions consume their input on every branch, the throwing ones
// leave nothing behind the handler either.
func TestConversionStackNeutrality(t *testing.T) {
	conversions := []struct {
		name   string
		h      func(t ast.Type) Helper
		throws map[Tag]bool
	}{
		{"toBoolean", func(t ast.Type) Helper { return toBoolean{t: t} }, nil},
		{"toNumber", func(t ast.Type) Helper { return toNumber{t: t} },
			map[Tag]bool{TagSymbol: true, TagObject: true}},
		{"toString", func(t ast.Type) Helper { return toString{t: t} },
			map[Tag]bool{TagSymbol: true}},
		{"toObject", func(t ast.Type) Helper { return toObject{t: t} },
			map[Tag]bool{TagUndefined: true, TagNull: true}},
	}
	for _, c := range conversions {
		for _, v := range runtimeValues() {
			for _, static := range []ast.Type{ast.Unknown, v.tag.Type()} {
				c, v, static := c, v, static
				t.Run(c.name+" "+v.name+" "+static.String(), func(t *testing.T) {
					code := emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
						sb.EmitPushString(node, "marker")
						emitGuarded(sb, node, func(opts VisitOptions) {
							v.push(sb, node)
							sb.EmitHelper(node, opts, c.h(static))
							sb.EmitOp(node, vm.DROP)
						})
					})
					expected := []string{"marker"}
					if c.throws[v.tag] {
						expected = []string{"caught", "marker"}
					}
					require.Equal(t, expected, stackStrings(t, runScript(t, code)))
				})
			}
		}
	}
}

func TestTypeSwitchDispatch(t *testing.T) {
	named := func(sb *scriptBuilder, node ast.Node, name string) func() {
		return func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, name)
		}
	}
	for _, v := range runtimeValues() {
		v := v
		t.Run(v.name, func(t *testing.T) {
			code := emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
				sb.EmitPushString(node, "marker")
				v.push(sb, node)
				sb.EmitHelper(node, pushOpts, typeSwitch{
					Boolean:   named(sb, node, "boolean"),
					Null:      named(sb, node, "null"),
					Undefined: named(sb, node, "undefined"),
					Object:    named(sb, node, "object"),
					Symbol:    named(sb, node, "symbol"),
					Number:    named(sb, node, "number"),
					String:    named(sb, node, "string"),
				})
				v.push(sb, node)
				sb.EmitHelper(node, pushOpts, typeSwitch{
					t:               ast.Any,
					NullOrUndefined: named(sb, node, "nullish"),
					ObjectOrSymbol:  named(sb, node, "reference"),
					Boolean:         named(sb, node, "boolean"),
					Number:          named(sb, node, "number"),
					String:          named(sb, node, "string"),
				})
			})
			combined := v.name
			switch v.tag {
			case TagNull, TagUndefined:
				combined = "nullish"
			case TagObject, TagSymbol:
				combined = "reference"
			}
			require.Equal(t, []string{combined, v.name, "marker"},
				stackStrings(t, runScript(t, code)))
		})
	}

	// a single known kind runs its case without a test
	code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushString(node, "marker")
		sb.EmitHelper(node, pushOpts, typeSwitch{
			t:      ast.Number,
			Number: named(sb, node, "number"),
			String: named(sb, node, "string"),
		})
	})
	ins := decodeAll(t, code)
	require.Len(t, ins, 3)
	require.Equal(t, []byte("number"), ins[2].Data)
}

// emitPrototypeChain pushes an object whose property k is 5, reached
// through links prototype hops.
func emitPrototypeChain(sb *scriptBuilder, node ast.Node, links int) {
	sb.EmitHelper(node, pushOpts, createObject{})
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, "k")
	sb.EmitPushInt(node, 5)
	sb.EmitHelper(node, pushOpts, createNumber())
	sb.EmitHelper(node, pushOpts, setPropertyObjectProperty{})
	for i := 0; i < links; i++ {
		// [object, prototype]
		sb.EmitHelper(node, pushOpts, createObject{})
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitPushInt(node, 3)
		sb.EmitOp(node, vm.ROLL)
		sb.EmitHelper(node, pushOpts, setPropertyObjectProperty{})
	}
}

func TestObjectPropertyWalk(t *testing.T) {
	testCases := []struct {
		name     string
		links    int
		key      string
		expected interface{}
	}{
		{"own property", 0, "k", int64(5)},
		{"missing", 2, "nope", Undefined{}},
		{"three links", 3, "k", int64(5)},
	}
	for _, tC := range testCases {
		tC := tC
		t.Run(tC.name, func(t *testing.T) {
			code := emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
				sb.EmitPushString(node, "marker")
				emitPrototypeChain(sb, node, tC.links)
				sb.EmitPushString(node, tC.key)
				sb.EmitHelper(node, pushOpts, getPropertyObjectProperty{})

				// the same lookup without a value leaves nothing
				emitPrototypeChain(sb, node, tC.links)
				sb.EmitPushString(node, tC.key)
				sb.EmitHelper(node, VisitOptions{}, getPropertyObjectProperty{})
			})
			stack := runScript(t, code)
			require.Len(t, stack, 2)
			got, err := Inspect(stack[0])
			require.NoError(t, err)
			require.Equal(t, tC.expected, got)
			require.Equal(t, []string{"marker"}, stackStrings(t, stack[1:]))
		})
	}
}

func TestInstanceOfWalk(t *testing.T) {
	for _, linked := range []bool{true, false} {
		code := emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
			sb.EmitPushString(node, "marker")
			// [constructor, prototype]
			sb.EmitHelper(node, pushOpts, createObject{})
			sb.EmitHelper(node, pushOpts, createObject{})
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushString(node, propertyPrototype)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.PICK)
			sb.EmitHelper(node, pushOpts, setPropertyObjectProperty{})
			if linked {
				// [middle, constructor, prototype]
				sb.EmitHelper(node, pushOpts, createObject{})
				sb.EmitOp(node, vm.DUP)
				sb.EmitPushString(node, propertyPrototype)
				sb.EmitPushInt(node, 4)
				sb.EmitOp(node, vm.PICK)
				sb.EmitHelper(node, pushOpts, setPropertyObjectProperty{})
				// [value, constructor, prototype]
				sb.EmitHelper(node, pushOpts, createObject{})
				sb.EmitOp(node, vm.DUP)
				sb.EmitPushString(node, propertyPrototype)
				sb.EmitPushInt(node, 3)
				sb.EmitOp(node, vm.ROLL)
				sb.EmitHelper(node, pushOpts, setPropertyObjectProperty{})
			} else {
				emitPrototypeChain(sb, node, 2)
			}
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, pushOpts, instanceOf{})
			sb.EmitOp(node, vm.NIP)

			// primitives are never instances
			sb.EmitPushInt(node, 1)
			sb.EmitHelper(node, pushOpts, createNumber())
			sb.EmitHelper(node, pushOpts, createObject{})
			sb.EmitHelper(node, pushOpts, instanceOf{})
		})
		stack := runScript(t, code)
		require.Len(t, stack, 3)
		require.False(t, stack[0].Bool())
		require.Equal(t, linked, stack[1].Bool(), "linked %v", linked)
		require.Equal(t, []string{"marker"}, stackStrings(t, stack[2:]))
	}
}

func TestCompletionValues(t *testing.T) {
	code := emitScript(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushString(node, "marker")
		sb.EmitPushInt(node, 5)
		sb.EmitHelper(node, pushOpts, createNumber())
		sb.EmitHelper(node, pushOpts, createNormalCompletion())
		sb.EmitHelper(node, pushOpts, getCompletionVal{})
	})
	stack := runScript(t, code)
	require.Len(t, stack, 2)
	got, err := Inspect(stack[0])
	require.NoError(t, err)
	require.Equal(t, int64(5), got)

	code = emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushString(node, "marker")
		emitGuarded(sb, node, func(opts VisitOptions) {
			sb.EmitPushInt(node, 1)
			sb.EmitPushInt(node, 7)
			sb.EmitHelper(node, opts, createNumber())
			sb.EmitHelper(node, opts, throwValue{})
		})
	})
	require.Equal(t, []string{"caught", "marker"}, stackStrings(t, runScript(t, code)))

	// a thrown completion is rethrown to the handler
	code = emitProgram(t, func(sb *scriptBuilder, node ast.Node) {
		sb.EmitPushString(node, "marker")
		emitGuarded(sb, node, func(opts VisitOptions) {
			sb.EmitPushInt(node, 7)
			sb.EmitHelper(node, opts, createNumber())
			sb.EmitHelper(node, opts, createThrowCompletion())
			sb.EmitHelper(node, opts, handleCompletion{})
		})
	})
	require.Equal(t, []string{"caught", "marker"}, stackStrings(t, runScript(t, code)))
}
