// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// builtinFunction creates a function object whose body is a jump table
// entry running body.
//
// body Input: [args]
// body Output: [value]
//
// Input: []
// Output: [function]
type builtinFunction struct {
	body      Helper
	construct bool
}

func (h builtinFunction) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	entry := sb.AddFunction(node, func() {
		emitFramePrologue(sb, node)
		sb.EmitHelper(node, PushValueOptions(VisitOptions{}), h.body)
		sb.EmitHelper(node, VisitOptions{}, returnValue{})
	})
	sb.EmitHelper(node, opts, createFunctionObject{
		entry:     entry,
		call:      true,
		construct: h.construct,
		prototype: h.construct,
	})
}

type builtinMethod struct {
	name string
	body Helper
}

// builtinConstructor is a global constructor with its prototype methods.
type builtinConstructor struct {
	name    string
	body    Helper
	methods []builtinMethod
}

// Builtin constructors added to the global object.
var (
	addObjectObject = builtinConstructor{
		name: "Object",
		body: HelperFunc(objectConstructor),
		methods: []builtinMethod{
			{name: "toString", body: HelperFunc(objectToString)},
		},
	}
	addBooleanObject = builtinConstructor{name: "Boolean", body: HelperFunc(booleanConstructor)}
	addNumberObject  = builtinConstructor{name: "Number", body: HelperFunc(numberConstructor)}
	addStringObject  = builtinConstructor{name: "String", body: HelperFunc(stringConstructor)}
	addSymbolObject  = builtinConstructor{name: "Symbol", body: HelperFunc(symbolConstructor)}
	addArrayObject   = builtinConstructor{
		name: "Array",
		body: HelperFunc(arrayConstructor),
		methods: []builtinMethod{
			{name: "push", body: HelperFunc(arrayPush)},
		},
	}
	addErrorObject = builtinConstructor{
		name: "Error",
		body: HelperFunc(errorConstructor),
		methods: []builtinMethod{
			{name: "toString", body: HelperFunc(errorToString)},
		},
	}
)

// builtins lists the global constructors in creation order. Object comes
// first as the other prototypes link to Object.prototype.
var builtins = []builtinConstructor{
	addObjectObject,
	addBooleanObject,
	addNumberObject,
	addStringObject,
	addSymbolObject,
	addArrayObject,
	addErrorObject,
}

// IsBuiltin reports whether name is a global created by the runtime.
func IsBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}

// createGlobalObject creates the global object holding the builtin
// constructors.
//
// Input: []
// Output: [global]
type createGlobalObject struct{}

func (createGlobalObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitHelper(node, opts, createObject{})
	for _, b := range builtins {
		sb.EmitHelper(node, opts, b)
	}
}

// Emit stores the constructor on the global object.
//
// Input: [global]
// Output: [global]
func (h builtinConstructor) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	// [function, name, global, global]
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, h.name)
	sb.EmitHelper(node, opts, builtinFunction{body: h.body, construct: true})
	// [prototype, function, name, global, global]
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, propertyPrototype)
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	for _, m := range h.methods {
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, m.name)
		sb.EmitHelper(node, opts, builtinFunction{body: m.body})
		sb.EmitHelper(node, opts, setPropertyObjectProperty{})
	}
	if h.name != "Object" {
		// [Object.prototype, "prototype", prototype, prototype, ...]
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitPushInt(node, 5)
		sb.EmitOp(node, vm.PICK)
		sb.EmitPushString(node, "Object")
		sb.EmitHelper(node, opts, getPropertyObjectProperty{})
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitHelper(node, opts, getPropertyObjectProperty{})
		sb.EmitHelper(node, opts, setPropertyObjectProperty{})
	}
	sb.EmitOp(node, vm.DROP)
	sb.EmitHelper(node, opts, setPropertyObjectProperty{})
}

func objectConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, argAt{index: 0})
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagObject})
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, createObject{})
			sb.EmitHelper(node, opts, setGlobalPrototype{global: "Object"})
		},
	})
}

func objectToString(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitOp(node, vm.DROP)
	sb.Scope().GetThis(sb, node, opts)
	plain := func() {
		sb.EmitOp(node, vm.DROP)
		sb.EmitPushString(node, "[object Object]")
	}
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagObject})
		},
		whenTrue: func() {
			sb.EmitHelper(node, opts, ifHelper{
				condition: func() {
					sb.EmitOp(node, vm.DUP)
					sb.EmitHelper(node, opts, isArrayObject{})
				},
				whenTrue: func() {
					sb.EmitOp(node, vm.DROP)
					sb.EmitPushString(node, "[object Array]")
				},
				whenFalse: plain,
			})
		},
		whenFalse: plain,
	})
	sb.EmitHelper(node, opts, createString())
}

func booleanConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, argAt{index: 0})
	sb.EmitHelper(node, opts, toBoolean{t: ast.Any})
	sb.EmitHelper(node, opts, createBoolean())
}

func numberConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, argAt{index: 0})
	sb.EmitHelper(node, opts, toNumber{t: ast.Any})
	sb.EmitHelper(node, opts, createNumber())
}

func stringConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitPushInt(node, 0)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "")
		},
		whenFalse: func() {
			sb.EmitHelper(node, opts, argAt{index: 0})
			sb.EmitHelper(node, opts, toString{t: ast.Any})
		},
	})
	sb.EmitHelper(node, opts, createString())
}

func symbolConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, argAt{index: 0})
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagUndefined})
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushString(node, "")
		},
		whenFalse: func() {
			sb.EmitHelper(node, opts, toString{t: ast.Any})
		},
	})
	sb.EmitHelper(node, opts, createSymbol())
}

func arrayConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	// copy so the array does not alias the arguments
	sb.EmitOp(node, vm.NEWARRAY)
	sb.EmitHelper(node, opts, createArray{})
}

// arrayPush appends every argument and returns the new length.
func arrayPush(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	// [index, args, items]
	sb.Scope().GetThis(sb, node, opts)
	sb.EmitHelper(node, opts, getArrayData{})
	sb.EmitOp(node, vm.SWAP)
	sb.EmitPushInt(node, 0)
	sb.EmitHelper(node, opts, forLoop{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitOp(node, vm.LT)
		},
		each: func(VisitOptions) {
			// [args[index], items, index, args, items]
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.PICKITEM)
			sb.EmitOp(node, vm.APPEND)
		},
		incrementor: func() {
			sb.EmitOp(node, vm.INC)
		},
	})
	emitOps(sb, node, vm.DROP, vm.DROP, vm.ARRAYSIZE)
	sb.EmitHelper(node, opts, createNumber())
}

// errorConstructor stores the message on this when called as a
// constructor, otherwise it creates a new Error instance.
func errorConstructor(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, argAt{index: 0})
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagUndefined})
		},
		whenFalse: func() {
			sb.EmitHelper(node, opts, toString{t: ast.Any})
			sb.EmitHelper(node, opts, createString())
		},
	})
	// [this, message]
	sb.Scope().GetThis(sb, node, opts)
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagObject})
		},
		whenTrue: func() {
			// [message, "message", this, this]
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ROT)
			sb.EmitPushString(node, "message")
			sb.EmitOp(node, vm.SWAP)
			sb.EmitHelper(node, opts, setPropertyObjectProperty{})
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, newErrorObject{})
		},
	})
}

func errorToString(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitOp(node, vm.DROP)
	sb.Scope().GetThis(sb, node, opts)
	sb.EmitPushString(node, "message")
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	sb.EmitHelper(node, opts, toString{t: ast.Any})
	sb.EmitPushString(node, "Error: ")
	sb.EmitOp(node, vm.SWAP)
	sb.EmitOp(node, vm.CAT)
	sb.EmitHelper(node, opts, createString())
}
