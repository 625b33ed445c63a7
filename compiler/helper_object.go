// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// createObject creates an empty object without prototype.
//
// Input: []
// Output: [object]
type createObject struct{}

func (createObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		return
	}
	emitOps(sb, node, vm.NEWMAP, vm.NEWMAP, vm.NEWMAP)
	sb.EmitPushInt(node, 3)
	sb.EmitOp(node, vm.PACK)
	sb.EmitHelper(node, opts, createValue{tag: TagObject})
}

// createArray creates an array object around a VM array of values.
//
// Input: [items]
// Output: [object]
type createArray struct{}

func (createArray) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
		return
	}
	emitOps(sb, node, vm.NEWMAP, vm.NEWMAP, vm.NEWMAP)
	sb.EmitPushInt(node, 4)
	sb.EmitOp(node, vm.PACK)
	sb.EmitHelper(node, opts, createValue{tag: TagObject})
	sb.EmitHelper(node, opts, setGlobalPrototype{global: "Array"})
}

// setGlobalPrototype links an object to the prototype of a global
// constructor.
//
// Input: [object]
// Output: [object]
type setGlobalPrototype struct {
	global string
}

func (h setGlobalPrototype) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{key: h, in: 1, out: true, body: h.emit})
}

func (h setGlobalPrototype) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, propertyPrototype)
	sb.Scope().GetGlobal(sb, node, opts)
	sb.EmitPushString(node, h.global)
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	sb.EmitPushString(node, propertyPrototype)
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	sb.EmitHelper(node, opts, setPropertyObjectProperty{})
}

// pushObjectMap replaces an object value with one of its payload maps.
func pushObjectMap(sb ScriptBuilder, node ast.Node, index int64) {
	emitPayload(sb, node)
	sb.EmitPushInt(node, index)
	sb.EmitOp(node, vm.PICKITEM)
}

// walkObjectProperty searches the prototype chain for key in the map at
// index. found runs with [owner, key], missing with [junk, key].
//
// Input: [key, object]
// Output: whatever found and missing leave
type walkObjectProperty struct {
	index   int64
	found   func()
	missing func()
}

func (h walkObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	found := sb.DeferProgramCounter()
	missing := sb.DeferProgramCounter()
	// [object, key]
	sb.EmitOp(node, vm.SWAP)
	sb.WithProgramCounter(func(end *ProgramCounterHelper) {
		loop := end.GetCurrent()
		// [map, object, key]
		sb.EmitOp(node, vm.DUP)
		pushObjectMap(sb, node, h.index)
		// [has, object, key]
		sb.EmitPushInt(node, 2)
		sb.EmitOp(node, vm.PICK)
		sb.EmitOp(node, vm.HASKEY)
		sb.EmitJump(node, vm.JMPIF, found)
		// [properties, key]
		pushObjectMap(sb, node, objectProperties)
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitOp(node, vm.HASKEY)
		sb.EmitJump(node, vm.JMPIFNOT, missing)
		// [prototype, key]
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitOp(node, vm.PICKITEM)
		sb.EmitOp(node, vm.DUP)
		sb.EmitHelper(node, opts, isTag{tag: TagObject})
		sb.EmitJump(node, vm.JMPIFNOT, missing)
		sb.EmitJump(node, vm.JMP, loop)

		sb.ResolveProgramCounter(found)
		h.found()
		sb.EmitJump(node, vm.JMP, end.GetLast())

		sb.ResolveProgramCounter(missing)
		h.missing()
	})
}

// getPropertyObjectProperty reads a string keyed property through the
// prototype chain, undefined when absent.
//
// Input: [key, object]
// Output: [value]
type getPropertyObjectProperty struct{}

func (h getPropertyObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, sharedHelper{
		key: h, in: 2, out: true,
		body: func(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
			emitGetObjectProperty(sb, node, opts, objectProperties)
		},
	})
}

// getSymbolObjectProperty reads a symbol keyed property, the key being the
// symbol payload.
//
// Input: [key, object]
// Output: [value]
type getSymbolObjectProperty struct{}

func (h getSymbolObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, sharedHelper{
		key: h, in: 2, out: true,
		body: func(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
			emitGetObjectProperty(sb, node, opts, objectSymbols)
		},
	})
}

func emitGetObjectProperty(sb ScriptBuilder, node ast.Node, opts VisitOptions, index int64) {
	sb.EmitHelper(node, opts, walkObjectProperty{
		index: index,
		found: func() {
			pushObjectMap(sb, node, index)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitOp(node, vm.PICKITEM)
			if !opts.PushValue {
				sb.EmitOp(node, vm.DROP)
			}
		},
		missing: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitHelper(node, opts, createUndefined{})
		},
	})
}

// hasPropertyObjectProperty tests a string keyed property through the
// prototype chain.
//
// Input: [key, object]
// Output: [boolean]
type hasPropertyObjectProperty struct {
	index int64
}

func (h hasPropertyObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{key: h, in: 2, out: true, body: h.emit})
}

func (h hasPropertyObjectProperty) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, walkObjectProperty{
		index: h.index,
		found: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitPushBoolean(node, true)
		},
		missing: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitPushBoolean(node, false)
		},
	})
}

// setPropertyObjectProperty stores an own string keyed property.
//
// Input: [value, key, object]
// Output: []
type setPropertyObjectProperty struct{}

func (setPropertyObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitSetObjectProperty(sb, node, objectProperties)
}

// setSymbolObjectProperty stores an own symbol keyed property.
//
// Input: [value, key, object]
// Output: []
type setSymbolObjectProperty struct{}

func (setSymbolObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitSetObjectProperty(sb, node, objectSymbols)
}

func emitSetObjectProperty(sb ScriptBuilder, node ast.Node, index int64) {
	// [object, value, key]
	sb.EmitOp(node, vm.ROT)
	// [map, value, key]
	pushObjectMap(sb, node, index)
	// [value, key, map]
	emitOps(sb, node, vm.ROT, vm.ROT, vm.SETITEM)
}

// deleteObjectProperty removes an own property.
//
// Input: [key, object]
// Output: []
type deleteObjectProperty struct {
	index int64
}

func (h deleteObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitOp(node, vm.SWAP)
	pushObjectMap(sb, node, h.index)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitOp(node, vm.REMOVE)
}

// getInternalObjectProperty reads an internal slot such as the call
// target of a function.
//
// Input: [object]
// Output: [value]
type getInternalObjectProperty struct {
	property string
}

func (h getInternalObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	pushObjectMap(sb, node, objectInternal)
	sb.EmitPushString(node, h.property)
	sb.EmitOp(node, vm.PICKITEM)
}

// setInternalObjectProperty stores an internal slot.
//
// Input: [value, object]
// Output: []
type setInternalObjectProperty struct {
	property string
}

func (h setInternalObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	// [internal, value]
	sb.EmitOp(node, vm.SWAP)
	pushObjectMap(sb, node, objectInternal)
	// [value, property, internal]
	sb.EmitPushString(node, h.property)
	sb.EmitOp(node, vm.ROT)
	sb.EmitOp(node, vm.SETITEM)
}

// hasInternalObjectProperty tests an internal slot.
//
// Input: [object]
// Output: [boolean]
type hasInternalObjectProperty struct {
	property string
}

func (h hasInternalObjectProperty) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	pushObjectMap(sb, node, objectInternal)
	sb.EmitPushString(node, h.property)
	sb.EmitOp(node, vm.HASKEY)
}

// isArrayObject tests whether an object carries a data array.
//
// Input: [object]
// Output: [boolean]
type isArrayObject struct{}

func (isArrayObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitPayload(sb, node)
	sb.EmitOp(node, vm.ARRAYSIZE)
	sb.EmitPushInt(node, objectData+1)
	sb.EmitOp(node, vm.NUMEQUAL)
}

// getArrayData returns the data array of an array object.
//
// Input: [object]
// Output: [items]
type getArrayData struct{}

func (getArrayData) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	pushObjectMap(sb, node, objectData)
}

// getArrayIndex reads an element, undefined when out of range.
//
// Input: [index, items]
// Output: [value]
type getArrayIndex struct{}

func (getArrayIndex) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			// [index, items] -> [inRange, index, items]
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 0)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitOp(node, vm.WITHIN)
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.PICKITEM)
		},
		whenFalse: func() {
			emitOps(sb, node, vm.DROP, vm.DROP)
			sb.EmitHelper(node, opts, createUndefined{})
		},
	})
}

// setArrayIndex stores an element, growing the array with undefined when
// index is past the end.
//
// Input: [value, index, items]
// Output: []
type setArrayIndex struct{}

func (setArrayIndex) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitHelper(node, opts, forLoop{
		condition: func() {
			// [size, index, value, index, items] -> [grow]
			sb.EmitPushInt(node, 1)
			sb.EmitOp(node, vm.PICK)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitOp(node, vm.GTE)
		},
		each: func(VisitOptions) {
			// append undefined to items
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitHelper(node, opts, createUndefined{})
			sb.EmitOp(node, vm.APPEND)
		},
	})
	// [value, index, items]
	sb.EmitOp(node, vm.SETITEM)
}

// instanceOf walks the prototype links of a value looking for the
// prototype of a constructor.
//
// Input: [constructor, value]
// Output: [boolean]
type instanceOf struct{}

func (h instanceOf) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{key: h, in: 2, out: true, body: h.emit})
}

func (instanceOf) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	// [prototype, value]
	sb.EmitPushString(node, propertyPrototype)
	sb.EmitHelper(node, opts, getPropertyObjectProperty{})
	// [value, prototype]
	sb.EmitOp(node, vm.SWAP)
	yes := sb.DeferProgramCounter()
	no := sb.DeferProgramCounter()
	sb.WithProgramCounter(func(end *ProgramCounterHelper) {
		loop := end.GetCurrent()
		sb.EmitOp(node, vm.DUP)
		sb.EmitHelper(node, opts, isTag{tag: TagObject})
		sb.EmitJump(node, vm.JMPIFNOT, no)
		// [properties, prototype]
		pushObjectMap(sb, node, objectProperties)
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitOp(node, vm.HASKEY)
		sb.EmitJump(node, vm.JMPIFNOT, no)
		// [link, prototype]
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitOp(node, vm.PICKITEM)
		// [same, link, prototype]
		sb.EmitOp(node, vm.DUP)
		emitPayload(sb, node)
		sb.EmitPushInt(node, 2)
		sb.EmitOp(node, vm.PICK)
		emitPayload(sb, node)
		sb.EmitOp(node, vm.EQUAL)
		sb.EmitJump(node, vm.JMPIF, yes)
		sb.EmitJump(node, vm.JMP, loop)

		sb.ResolveProgramCounter(yes)
		emitOps(sb, node, vm.DROP, vm.DROP)
		sb.EmitPushBoolean(node, true)
		sb.EmitJump(node, vm.JMP, end.GetLast())

		sb.ResolveProgramCounter(no)
		emitOps(sb, node, vm.DROP, vm.DROP)
		sb.EmitPushBoolean(node, false)
	})
}
