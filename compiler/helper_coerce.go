// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// primitiveTypes is every kind toPrimitive can produce.
const primitiveTypes = ast.Any &^ ast.Object

// toBoolean converts a value to a VM boolean.
//
// Input: [value]
// Output: [boolean]
type toBoolean struct {
	t ast.Type
}

func (h toBoolean) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, typeSwitch{
		t: h.t,
		Boolean: func() {
			sb.EmitHelper(node, opts, getPayload{})
		},
		NullOrUndefined: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushBoolean(node, false)
		},
		ObjectOrSymbol: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushBoolean(node, true)
		},
		Number: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitOp(node, vm.NZ)
		},
		String: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitOp(node, vm.SIZE)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.GT)
		},
	})
}

// toNumber converts a value to a VM integer.
//
// Input: [value]
// Output: [number]
type toNumber struct {
	t ast.Type
}

func (h toNumber) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if dispatches(h.t) {
		shared := toNumber{t: knownTypes(h.t)}
		sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{
			key: shared, in: 1, out: true, framed: true, body: shared.emit,
		})
		return
	}
	h.emit(sb, node, opts)
}

func (h toNumber) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, typeSwitch{
		t: h.t,
		Boolean: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.ADD)
		},
		NullOrUndefined: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushInt(node, 0)
		},
		Symbol: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert a Symbol value to a number"})
		},
		Object: func() {
			sb.EmitHelper(node, opts, toPrimitive{})
			sb.EmitHelper(node, opts, toNumber{t: primitiveTypes})
		},
		Number: func() {
			sb.EmitHelper(node, opts, getPayload{})
		},
		String: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitHelper(node, opts, stringToNumber{})
		},
	})
}

// toString converts a value to VM bytes.
//
// Input: [value]
// Output: [string]
type toString struct {
	t ast.Type
}

func (h toString) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if dispatches(h.t) {
		shared := toString{t: knownTypes(h.t)}
		sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{
			key: shared, in: 1, out: true, framed: true, body: shared.emit,
		})
		return
	}
	h.emit(sb, node, opts)
}

func (h toString) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, typeSwitch{
		t: h.t,
		Boolean: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitHelper(node, opts, ifHelper{
				whenTrue:  func() { sb.EmitPushString(node, "true") },
				whenFalse: func() { sb.EmitPushString(node, "false") },
			})
		},
		Null: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "null")
		},
		Undefined: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "undefined")
		},
		Symbol: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert a Symbol value to a string"})
		},
		Object: func() {
			sb.EmitHelper(node, opts, toPrimitive{})
			sb.EmitHelper(node, opts, toString{t: primitiveTypes})
		},
		Number: func() {
			sb.EmitHelper(node, opts, getPayload{})
			sb.EmitHelper(node, opts, numberToString{})
		},
		String: func() {
			sb.EmitHelper(node, opts, getPayload{})
		},
	})
}

// toPrimitive converts an object by calling its toString method.
//
// Input: [object]
// Output: [value]
type toPrimitive struct{}

func (h toPrimitive) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{
		key: h, in: 1, out: true, framed: true, body: h.emit,
	})
}

func (toPrimitive) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	fail := func() {
		sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert object to primitive value"})
	}
	// [method, object]
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, "toString")
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isCallable{})
		},
		whenTrue: func() {
			sb.EmitHelper(node, opts, getInternalObjectProperty{property: internalCall})
			sb.EmitHelper(node, opts, bindFunctionThis{overwrite: false})
			// [farr, args]
			sb.EmitOp(node, vm.PUSH0)
			sb.EmitOp(node, vm.NEWARRAY)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, opts, call{})
			sb.EmitHelper(node, opts, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitHelper(node, opts, isTag{tag: TagObject})
				},
				whenTrue: func() {
					sb.EmitOp(node, vm.DROP)
					fail()
				},
			})
		},
		whenFalse: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			fail()
		},
	})
}

// toObject wraps primitives into objects linked to their constructor's
// prototype. The primitive is kept in the internal value slot.
//
// Input: [value]
// Output: [object]
type toObject struct {
	t ast.Type
}

func (h toObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if dispatches(h.t) {
		shared := toObject{t: knownTypes(h.t)}
		sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{
			key: shared, in: 1, out: true, framed: true, body: shared.emit,
		})
		return
	}
	h.emit(sb, node, opts)
}

func (h toObject) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	wrap := func(global string) func() {
		return func() {
			// [object, object, value]
			sb.EmitHelper(node, opts, createObject{})
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ROT)
			sb.EmitHelper(node, opts, setInternalObjectProperty{property: internalValue})
			sb.EmitHelper(node, opts, setGlobalPrototype{global: global})
		}
	}
	sb.EmitHelper(node, opts, typeSwitch{
		t:       h.t,
		Boolean: wrap("Boolean"),
		NullOrUndefined: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert undefined or null to object"})
		},
		Object: func() {},
		Symbol: wrap("Symbol"),
		Number: wrap("Number"),
		String: wrap("String"),
	})
}

// numberToString renders a VM integer in decimal.
//
// Input: [number]
// Output: [string]
type numberToString struct{}

func (h numberToString) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{key: h, in: 1, out: true, body: h.emit})
}

func (numberToString) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "0")
		},
		whenFalse: func() {
			// [n, negative]
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.LT)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitOp(node, vm.ABS)
			// [n, out, negative]
			sb.EmitOp(node, vm.PUSH0)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, opts, forLoop{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitPushInt(node, 0)
					sb.EmitOp(node, vm.GT)
				},
				each: func(VisitOptions) {
					// [digit, n, out, negative]
					sb.EmitOp(node, vm.DUP)
					sb.EmitPushInt(node, 10)
					sb.EmitOp(node, vm.MOD)
					sb.EmitPushInt(node, '0')
					sb.EmitOp(node, vm.ADD)
					sb.EmitPushInt(node, 1)
					sb.EmitOp(node, vm.LEFT)
					// [digit || out, n, negative]
					sb.EmitPushInt(node, 2)
					sb.EmitOp(node, vm.ROLL)
					sb.EmitOp(node, vm.CAT)
					sb.EmitOp(node, vm.SWAP)
					sb.EmitPushInt(node, 10)
					sb.EmitOp(node, vm.DIV)
				},
			})
			sb.EmitOp(node, vm.DROP)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, opts, ifHelper{
				whenTrue: func() {
					sb.EmitPushString(node, "-")
					sb.EmitOp(node, vm.SWAP)
					sb.EmitOp(node, vm.CAT)
				},
			})
		},
	})
}

// stringToNumber parses an optionally signed decimal integer. Anything
// else throws a TypeError.
//
// Input: [string]
// Output: [number]
type stringToNumber struct{}

func (h stringToNumber) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{
		key: h, in: 1, out: true, framed: true, body: h.emit,
	})
}

func (stringToNumber) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	// [negative, string]
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 1)
			sb.EmitOp(node, vm.LEFT)
			sb.EmitPushString(node, "-")
			sb.EmitOp(node, vm.EQUAL)
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.SIZE)
			sb.EmitOp(node, vm.DEC)
			sb.EmitOp(node, vm.RIGHT)
			sb.EmitPushBoolean(node, true)
		},
		whenFalse: func() {
			sb.EmitPushBoolean(node, false)
		},
	})
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.SIZE)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert string to number"})
		},
	})
	// [index, acc, string, negative]
	sb.EmitPushInt(node, 0)
	sb.EmitPushInt(node, 0)
	sb.EmitHelper(node, opts, forLoop{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.SIZE)
			sb.EmitOp(node, vm.LT)
		},
		each: func(VisitOptions) {
			// [digit, index, acc, string, negative]
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.OVER)
			sb.EmitPushInt(node, 1)
			sb.EmitOp(node, vm.SUBSTR)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.ADD)
			sb.EmitPushInt(node, '0')
			sb.EmitOp(node, vm.SUB)
			sb.EmitHelper(node, opts, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitPushInt(node, 0)
					sb.EmitPushInt(node, 10)
					sb.EmitOp(node, vm.WITHIN)
				},
				whenFalse: func() {
					sb.EmitOp(node, vm.DROP)
					sb.EmitHelper(node, opts, throwTypeError{message: "Cannot convert string to number"})
				},
			})
			// [acc*10+digit, index, string, negative]
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.ROLL)
			sb.EmitPushInt(node, 10)
			sb.EmitOp(node, vm.MUL)
			sb.EmitOp(node, vm.ADD)
			sb.EmitOp(node, vm.SWAP)
		},
		incrementor: func() {
			sb.EmitOp(node, vm.INC)
		},
	})
	// [acc, negative]
	sb.EmitOp(node, vm.DROP)
	sb.EmitOp(node, vm.NIP)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, opts, ifHelper{
		whenTrue: func() {
			sb.EmitOp(node, vm.NEGATE)
		},
	})
}
