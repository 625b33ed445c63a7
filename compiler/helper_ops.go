// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/token"
	"github.com/Hiyho/neo-one/vm"
)

// emitBoth pushes h applied to copies of both operands.
//
// Input: [right, left]
// Output: [h(right), h(left), right, left]
func emitBoth(sb ScriptBuilder, node ast.Node, opts VisitOptions, h Helper) {
	sb.EmitOp(node, vm.OVER)
	sb.EmitHelper(node, opts, h)
	sb.EmitOp(node, vm.OVER)
	sb.EmitHelper(node, opts, h)
}

// emitConvertBoth applies a converting helper to both operands in place.
//
// Input: [right, left]
// Output: [f(right), f(left)]
func emitConvertBoth(sb ScriptBuilder, node ast.Node, opts VisitOptions, right, left Helper) {
	sb.EmitHelper(node, opts, right)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, opts, left)
	sb.EmitOp(node, vm.SWAP)
}

// strictEquals compares without conversion. Numbers compare numerically,
// objects by identity and the rest by payload bytes.
//
// Input: [right, left]
// Output: [boolean]
type strictEquals struct {
	lt, rt ast.Type
}

func (h strictEquals) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	if h.lt != ast.Unknown && h.rt != ast.Unknown && h.lt&h.rt == 0 {
		emitOps(sb, node, vm.DROP, vm.DROP)
		sb.EmitPushBoolean(node, false)
		return
	}
	sameTag := func() {
		sb.EmitHelper(node, opts, ifHelper{
			condition: func() {
				sb.EmitOp(node, vm.DUP)
				sb.EmitHelper(node, opts, isTag{tag: TagNumber})
			},
			whenTrue: func() {
				emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
				sb.EmitOp(node, vm.NUMEQUAL)
			},
			whenFalse: func() {
				emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
				sb.EmitOp(node, vm.EQUAL)
			},
		})
	}
	if h.lt.Only(ast.Number) && h.rt.Only(ast.Number) {
		emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
		sb.EmitOp(node, vm.NUMEQUAL)
		return
	}
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			emitBoth(sb, node, opts, HelperFunc(func(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
				emitTag(sb, node)
			}))
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: sameTag,
		whenFalse: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitPushBoolean(node, false)
		},
	})
}

// looseEquals implements == with null and undefined equal to each other
// only, identity for two objects, string comparison for two strings and
// numeric comparison otherwise.
//
// Input: [right, left]
// Output: [boolean]
type looseEquals struct {
	lt, rt ast.Type
}

func (h looseEquals) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	switch {
	case h.lt.Only(ast.Number) && h.rt.Only(ast.Number):
		emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
		sb.EmitOp(node, vm.NUMEQUAL)
		return
	case h.lt.Only(ast.String) && h.rt.Only(ast.String):
		emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
		sb.EmitOp(node, vm.EQUAL)
		return
	}
	shared := looseEquals{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h looseEquals) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	primitives := func() {
		emitConvertBoth(sb, node, opts, toPrimitiveIfObject{t: h.rt}, toPrimitiveIfObject{t: h.lt})
		sb.EmitHelper(node, opts, ifHelper{
			condition: func() {
				emitBoth(sb, node, opts, isTag{tag: TagString})
				sb.EmitOp(node, vm.BOOLAND)
			},
			whenTrue: func() {
				emitConvertBoth(sb, node, opts, getPayload{}, getPayload{})
				sb.EmitOp(node, vm.EQUAL)
			},
			whenFalse: func() {
				sb.EmitHelper(node, opts, ifHelper{
					condition: func() {
						emitBoth(sb, node, opts, isTag{tag: TagSymbol})
						sb.EmitOp(node, vm.BOOLOR)
					},
					whenTrue: func() {
						sb.EmitHelper(node, opts, strictEquals{})
					},
					whenFalse: func() {
						emitConvertBoth(sb, node, opts,
							toNumber{t: primitiveTypes}, toNumber{t: primitiveTypes})
						sb.EmitOp(node, vm.NUMEQUAL)
					},
				})
			},
		})
	}
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			emitBoth(sb, node, opts, isNullOrUndefined{})
			sb.EmitOp(node, vm.BOOLOR)
		},
		whenTrue: func() {
			emitConvertBoth(sb, node, opts, isNullOrUndefined{}, isNullOrUndefined{})
			sb.EmitOp(node, vm.BOOLAND)
		},
		whenFalse: func() {
			sb.EmitHelper(node, opts, ifHelper{
				condition: func() {
					emitBoth(sb, node, opts, isTag{tag: TagObject})
					sb.EmitOp(node, vm.BOOLAND)
				},
				whenTrue: func() {
					sb.EmitHelper(node, opts, strictEquals{})
				},
				whenFalse: primitives,
			})
		},
	})
}

// toPrimitiveIfObject converts objects and leaves primitives untouched.
//
// Input: [value]
// Output: [value]
type toPrimitiveIfObject struct {
	t ast.Type
}

func (h toPrimitiveIfObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if h.t.IsPrimitive() {
		return
	}
	if h.t.Only(ast.Object) {
		sb.EmitHelper(node, opts, toPrimitive{})
		return
	}
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagObject})
		},
		whenTrue: func() {
			sb.EmitHelper(node, opts, toPrimitive{})
		},
	})
}

// addValues implements + as string concatenation when either primitive
// operand is a string and numeric addition otherwise.
//
// Input: [right, left]
// Output: [value]
type addValues struct {
	lt, rt ast.Type
}

func (h addValues) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	concat := func(rt, lt ast.Type) {
		emitConvertBoth(sb, node, push, toString{t: rt}, toString{t: lt})
		sb.EmitOp(node, vm.CAT)
		sb.EmitHelper(node, opts, createString())
	}
	numeric := func(rt, lt ast.Type) {
		emitConvertBoth(sb, node, push, toNumber{t: rt}, toNumber{t: lt})
		sb.EmitOp(node, vm.ADD)
		sb.EmitHelper(node, opts, createNumber())
	}
	switch {
	case h.lt.Only(ast.String) || h.rt.Only(ast.String):
		concat(h.rt, h.lt)
		return
	case h.lt.IsPrimitive() && h.rt.IsPrimitive() && !h.lt.Has(ast.String) && !h.rt.Has(ast.String):
		numeric(h.rt, h.lt)
		return
	}
	shared := addValues{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h addValues) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	concat := func() {
		emitConvertBoth(sb, node, push, toString{t: primitiveTypes}, toString{t: primitiveTypes})
		sb.EmitOp(node, vm.CAT)
		sb.EmitHelper(node, opts, createString())
	}
	numeric := func() {
		emitConvertBoth(sb, node, push, toNumber{t: primitiveTypes}, toNumber{t: primitiveTypes})
		sb.EmitOp(node, vm.ADD)
		sb.EmitHelper(node, opts, createNumber())
	}
	emitConvertBoth(sb, node, push, toPrimitiveIfObject{t: h.rt}, toPrimitiveIfObject{t: h.lt})
	sb.EmitHelper(node, push, ifHelper{
		condition: func() {
			emitBoth(sb, node, push, isTag{tag: TagString})
			sb.EmitOp(node, vm.BOOLOR)
		},
		whenTrue:  concat,
		whenFalse: numeric,
	})
}

// numericOps maps arithmetic and bitwise operators to opcodes.
var numericOps = map[token.Token]vm.Opcode{
	token.Sub: vm.SUB,
	token.Mul: vm.MUL,
	token.Quo: vm.DIV,
	token.Rem: vm.MOD,
	token.And: vm.AND,
	token.Or:  vm.OR,
	token.Xor: vm.XOR,
}

// relationalOps maps comparison operators to opcodes.
var relationalOps = map[token.Token]vm.Opcode{
	token.Less:      vm.LT,
	token.Greater:   vm.GT,
	token.LessEq:    vm.LTE,
	token.GreaterEq: vm.GTE,
}

// numericOp converts both operands to numbers and applies op.
//
// Input: [right, left]
// Output: [number or boolean]
type numericOp struct {
	op     token.Token
	lt, rt ast.Type
}

func (h numericOp) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if h.lt.Only(ast.Number) && h.rt.Only(ast.Number) {
		h.emit(sb, node, opts)
		return
	}
	shared := numericOp{op: h.op}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h numericOp) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	emitConvertBoth(sb, node, push, toNumber{t: h.rt}, toNumber{t: h.lt})
	if op, ok := relationalOps[h.op]; ok {
		sb.EmitOp(node, op)
		sb.EmitHelper(node, opts, createBoolean())
		return
	}
	switch h.op {
	case token.Shl, token.Shr:
		sb.EmitPushInt(node, 31)
		sb.EmitOp(node, vm.AND)
		if h.op == token.Shl {
			sb.EmitOp(node, vm.SHL)
		} else {
			sb.EmitOp(node, vm.SHR)
		}
	case token.UShr:
		// [shift, uint32(left)]
		sb.EmitPushInt(node, 31)
		sb.EmitOp(node, vm.AND)
		sb.EmitOp(node, vm.SWAP)
		sb.EmitPushInt(node, 0xFFFFFFFF)
		sb.EmitOp(node, vm.AND)
		sb.EmitOp(node, vm.SWAP)
		sb.EmitOp(node, vm.SHR)
	case token.Exp:
		sb.EmitHelper(node, push, pow{})
	default:
		op, ok := numericOps[h.op]
		if !ok {
			internalErrorf(node, "no opcode for operator %s", h.op)
		}
		sb.EmitOp(node, op)
	}
	sb.EmitHelper(node, opts, createNumber())
}

// pow raises base to a non negative exponent by repeated multiplication.
// Negative exponents truncate to 0.
//
// Input: [exponent, base]
// Output: [number]
type pow struct{}

func (pow) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.LT)
		},
		whenTrue: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitPushInt(node, 0)
		},
		whenFalse: func() {
			// [exponent, acc, base]
			sb.EmitPushInt(node, 1)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, opts, forLoop{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitPushInt(node, 0)
					sb.EmitOp(node, vm.GT)
				},
				each: func(VisitOptions) {
					sb.EmitOp(node, vm.DEC)
					sb.EmitOp(node, vm.SWAP)
					sb.EmitPushInt(node, 2)
					sb.EmitOp(node, vm.PICK)
					sb.EmitOp(node, vm.MUL)
					sb.EmitOp(node, vm.SWAP)
				},
			})
			emitOps(sb, node, vm.DROP, vm.NIP)
		},
	})
}

// typeofNames lists typeof results by tag.
var typeofNames = [...]string{
	TagUndefined: "undefined",
	TagNull:      "object",
	TagBoolean:   "boolean",
	TagNumber:    "number",
	TagString:    "string",
	TagSymbol:    "symbol",
	TagObject:    "object",
}

// typeofHelper implements the typeof operator.
//
// Input: [value]
// Output: [string]
type typeofHelper struct {
	t ast.Type
}

func (h typeofHelper) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	if h.t.IsPrimitive() && bitCount(h.t) == 1 {
		sb.EmitOp(node, vm.DROP)
		for tag, name := range typeofNames {
			if h.t.Only(Tag(tag).Type()) {
				sb.EmitPushString(node, name)
			}
		}
		sb.EmitHelper(node, opts, createString())
		return
	}
	sb.EmitHelper(node, push, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, push, isCallable{})
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "function")
		},
		whenFalse: func() {
			// [tag, names]
			emitTag(sb, node)
			for i := len(typeofNames) - 1; i >= 0; i-- {
				sb.EmitPushString(node, typeofNames[i])
			}
			sb.EmitPushInt(node, int64(len(typeofNames)))
			sb.EmitOp(node, vm.PACK)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitOp(node, vm.PICKITEM)
		},
	})
	sb.EmitHelper(node, opts, createString())
}

func bitCount(t ast.Type) int {
	n := 0
	for ; t != 0; t &= t - 1 {
		n++
	}
	return n
}

// getElement reads obj[key]. Array objects index their data with numbers,
// symbols use the symbol map and other keys are converted to strings.
// Strings index their characters and other primitives are wrapped first.
//
// Input: [key, object]
// Output: [value]
type getElement struct {
	xt, kt ast.Type
}

func (h getElement) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !dispatches(h.xt) && !dispatches(h.kt) {
		h.emit(sb, node, opts)
		return
	}
	shared := getElement{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h getElement) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	fromObject := func() {
		// [key, object]
		sb.EmitOp(node, vm.SWAP)
		sb.EmitHelper(node, push, typeSwitch{
			t: h.kt,
			Number: func() {
				sb.EmitHelper(node, push, ifHelper{
					condition: func() {
						sb.EmitOp(node, vm.OVER)
						sb.EmitHelper(node, push, isArrayObject{})
					},
					whenTrue: func() {
						// [index, items]
						sb.EmitHelper(node, push, getPayload{})
						sb.EmitOp(node, vm.SWAP)
						sb.EmitHelper(node, push, getArrayData{})
						sb.EmitOp(node, vm.SWAP)
						sb.EmitHelper(node, push, getArrayIndex{})
					},
					whenFalse: func() {
						sb.EmitHelper(node, push, toString{t: ast.Number})
						sb.EmitHelper(node, push, getPropertyObjectProperty{})
					},
				})
			},
			Symbol: func() {
				sb.EmitHelper(node, push, getPayload{})
				sb.EmitHelper(node, push, getSymbolObjectProperty{})
			},
			String: func() {
				sb.EmitHelper(node, push, getPayload{})
				sb.EmitHelper(node, push, getPropertyObjectProperty{})
			},
			Boolean: func() {
				sb.EmitHelper(node, push, toString{t: ast.Boolean})
				sb.EmitHelper(node, push, getPropertyObjectProperty{})
			},
			NullOrUndefined: func() {
				sb.EmitHelper(node, push, toString{t: ast.Null | ast.Undefined})
				sb.EmitHelper(node, push, getPropertyObjectProperty{})
			},
			Object: func() {
				sb.EmitHelper(node, push, toString{t: ast.Object})
				sb.EmitHelper(node, push, getPropertyObjectProperty{})
			},
		})
	}
	// [object, key]
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, push, typeSwitch{
		t:      h.xt,
		Object: fromObject,
		String: func() {
			sb.EmitHelper(node, push, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.OVER)
					sb.EmitHelper(node, push, isTag{tag: TagNumber})
				},
				whenTrue: func() {
					// [1, index, bytes]
					sb.EmitHelper(node, push, getPayload{})
					sb.EmitOp(node, vm.SWAP)
					sb.EmitHelper(node, push, getPayload{})
					sb.EmitPushInt(node, 1)
					sb.EmitOp(node, vm.SUBSTR)
					sb.EmitHelper(node, push, createString())
				},
				whenFalse: func() {
					sb.EmitHelper(node, push, toObject{t: ast.String})
					fromObject()
				},
			})
		},
		NullOrUndefined: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitHelper(node, push, throwTypeError{message: "Cannot read properties of undefined or null"})
		},
		Boolean: func() {
			sb.EmitHelper(node, push, toObject{t: ast.Boolean})
			fromObject()
		},
		Number: func() {
			sb.EmitHelper(node, push, toObject{t: ast.Number})
			fromObject()
		},
		Symbol: func() {
			sb.EmitHelper(node, push, toObject{t: ast.Symbol})
			fromObject()
		},
	})
	if !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
	}
}

// setElement stores obj[key] = value on an object, see getElement for key
// handling. Setting on primitives throws a TypeError.
//
// Input: [value, key, object]
// Output: []
type setElement struct {
	xt, kt ast.Type
}

func (h setElement) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !dispatches(h.xt) && !dispatches(h.kt) {
		h.emit(sb, node, opts)
		return
	}
	shared := setElement{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 3, framed: true, body: shared.emit,
	})
}

func (h setElement) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	// [object, value, key]
	sb.EmitOp(node, vm.ROT)
	sb.EmitHelper(node, push, ifHelper{
		condition: func() {
			if h.xt.Only(ast.Object) {
				sb.EmitPushBoolean(node, true)
				return
			}
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, push, isTag{tag: TagObject})
		},
		whenFalse: func() {
			emitOps(sb, node, vm.DROP, vm.DROP, vm.DROP)
			sb.EmitHelper(node, push, throwTypeError{message: "Cannot set properties of a primitive"})
		},
	})
	// [key, object, value]
	sb.EmitPushInt(node, 2)
	sb.EmitOp(node, vm.ROLL)
	setString := func() {
		// [value, key, object]
		sb.EmitOp(node, vm.ROT)
		sb.EmitHelper(node, push, setPropertyObjectProperty{})
	}
	sb.EmitHelper(node, push, typeSwitch{
		t: h.kt,
		Number: func() {
			sb.EmitHelper(node, push, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.OVER)
					sb.EmitHelper(node, push, isArrayObject{})
				},
				whenTrue: func() {
					// [value, index, items]
					sb.EmitHelper(node, push, getPayload{})
					sb.EmitOp(node, vm.SWAP)
					sb.EmitHelper(node, push, getArrayData{})
					sb.EmitOp(node, vm.SWAP)
					sb.EmitOp(node, vm.ROT)
					sb.EmitHelper(node, push, setArrayIndex{})
				},
				whenFalse: func() {
					sb.EmitHelper(node, push, toString{t: ast.Number})
					setString()
				},
			})
		},
		Symbol: func() {
			sb.EmitHelper(node, push, getPayload{})
			sb.EmitOp(node, vm.ROT)
			sb.EmitHelper(node, push, setSymbolObjectProperty{})
		},
		String: func() {
			sb.EmitHelper(node, push, getPayload{})
			setString()
		},
		Boolean: func() {
			sb.EmitHelper(node, push, toString{t: ast.Boolean})
			setString()
		},
		NullOrUndefined: func() {
			sb.EmitHelper(node, push, toString{t: ast.Null | ast.Undefined})
			setString()
		},
		Object: func() {
			sb.EmitHelper(node, push, toString{t: ast.Object})
			setString()
		},
	})
}

// getMember reads a named property. length is the byte size of strings
// and the element count of array objects.
//
// Input: [object]
// Output: [value]
type getMember struct {
	name string
	xt   ast.Type
}

func (h getMember) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	generic := func() {
		sb.EmitPushString(node, h.name)
		sb.EmitHelper(node, push, createString())
		sb.EmitHelper(node, opts, getElement{xt: h.xt, kt: ast.String})
	}
	if h.name != "length" {
		generic()
		return
	}
	sb.EmitHelper(node, push, typeSwitch{
		t: h.xt,
		String: func() {
			sb.EmitHelper(node, push, getPayload{})
			sb.EmitOp(node, vm.SIZE)
			sb.EmitHelper(node, opts, createNumber())
		},
		Object: func() {
			sb.EmitHelper(node, push, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitHelper(node, push, isArrayObject{})
				},
				whenTrue: func() {
					sb.EmitHelper(node, push, getArrayData{})
					sb.EmitOp(node, vm.ARRAYSIZE)
					sb.EmitHelper(node, opts, createNumber())
				},
				whenFalse: generic,
			})
		},
		Boolean:         generic,
		NullOrUndefined: generic,
		Number:          generic,
		Symbol:          generic,
	})
}

// inOperator tests key in object through the prototype chain. Array
// objects also report their indexes.
//
// Input: [object, key]
// Output: [boolean]
type inOperator struct {
	kt, ot ast.Type
}

func (h inOperator) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if h.ot.Only(ast.Object) && !dispatches(h.kt) {
		h.emit(sb, node, opts)
		return
	}
	shared := inOperator{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h inOperator) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	if !h.ot.Only(ast.Object) {
		sb.EmitHelper(node, push, ifHelper{
			condition: func() {
				sb.EmitOp(node, vm.DUP)
				sb.EmitHelper(node, push, isTag{tag: TagObject})
			},
			whenFalse: func() {
				emitOps(sb, node, vm.DROP, vm.DROP)
				sb.EmitHelper(node, push, throwTypeError{message: "Cannot use 'in' operator on a primitive"})
			},
		})
	}
	// [key, object]
	sb.EmitOp(node, vm.SWAP)
	lookup := func() {
		sb.EmitHelper(node, push, typeSwitch{
			t: h.kt,
			Symbol: func() {
				sb.EmitHelper(node, push, getPayload{})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectSymbols})
			},
			Boolean: func() {
				sb.EmitHelper(node, push, toString{t: ast.Boolean})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectProperties})
			},
			NullOrUndefined: func() {
				sb.EmitHelper(node, push, toString{t: ast.Null | ast.Undefined})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectProperties})
			},
			Object: func() {
				sb.EmitHelper(node, push, toString{t: ast.Object})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectProperties})
			},
			Number: func() {
				sb.EmitHelper(node, push, toString{t: ast.Number})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectProperties})
			},
			String: func() {
				sb.EmitHelper(node, push, getPayload{})
				sb.EmitHelper(node, push, hasPropertyObjectProperty{index: objectProperties})
			},
		})
	}
	if !h.kt.Has(ast.Number) {
		lookup()
	} else {
		sb.EmitHelper(node, push, ifHelper{
			condition: func() {
				// [isIndex, key, object]
				sb.EmitOp(node, vm.DUP)
				sb.EmitHelper(node, push, isTag{tag: TagNumber})
				sb.EmitPushInt(node, 2)
				sb.EmitOp(node, vm.PICK)
				sb.EmitHelper(node, push, isArrayObject{})
				sb.EmitOp(node, vm.BOOLAND)
			},
			whenTrue: func() {
				// [0 <= index < size]
				sb.EmitHelper(node, push, getPayload{})
				sb.EmitOp(node, vm.SWAP)
				sb.EmitHelper(node, push, getArrayData{})
				sb.EmitOp(node, vm.ARRAYSIZE)
				sb.EmitPushInt(node, 0)
				sb.EmitOp(node, vm.SWAP)
				sb.EmitOp(node, vm.WITHIN)
			},
			whenFalse: lookup,
		})
	}
	sb.EmitHelper(node, opts, createBoolean())
}

// deleteElement removes an own property and pushes true. Array elements
// are set to undefined.
//
// Input: [key, object]
// Output: [boolean]
type deleteElement struct {
	kt ast.Type
}

func (h deleteElement) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !dispatches(h.kt) {
		h.emit(sb, node, opts)
		return
	}
	shared := deleteElement{}
	sb.EmitHelper(node, opts, sharedHelper{
		key: shared, in: 2, out: true, framed: true, body: shared.emit,
	})
}

func (h deleteElement) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	sb.EmitHelper(node, push, typeSwitch{
		t: h.kt,
		Symbol: func() {
			sb.EmitHelper(node, push, getPayload{})
			sb.EmitHelper(node, push, deleteObjectProperty{index: objectSymbols})
		},
		Number: func() {
			sb.EmitHelper(node, push, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.OVER)
					sb.EmitHelper(node, push, isArrayObject{})
				},
				whenTrue: func() {
					// [undefined, key, object]
					sb.EmitHelper(node, push, createUndefined{})
					sb.EmitHelper(node, push, setElement{xt: ast.Object, kt: ast.Number})
				},
				whenFalse: func() {
					sb.EmitHelper(node, push, toString{t: ast.Number})
					sb.EmitHelper(node, push, deleteObjectProperty{index: objectProperties})
				},
			})
		},
		String: func() {
			sb.EmitHelper(node, push, getPayload{})
			sb.EmitHelper(node, push, deleteObjectProperty{index: objectProperties})
		},
		Boolean: func() {
			sb.EmitHelper(node, push, toString{t: ast.Boolean})
			sb.EmitHelper(node, push, deleteObjectProperty{index: objectProperties})
		},
		NullOrUndefined: func() {
			sb.EmitHelper(node, push, toString{t: ast.Null | ast.Undefined})
			sb.EmitHelper(node, push, deleteObjectProperty{index: objectProperties})
		},
		Object: func() {
			sb.EmitHelper(node, push, toString{t: ast.Object})
			sb.EmitHelper(node, push, deleteObjectProperty{index: objectProperties})
		},
	})
	sb.EmitPushBoolean(node, true)
	sb.EmitHelper(node, opts, createBoolean())
}
