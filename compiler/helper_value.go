// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// createValue wraps a payload into a runtime value of tag.
//
// Input: [payload]
// Output: [value]
type createValue struct {
	tag Tag
}

func (h createValue) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
		return
	}
	sb.EmitPushInt(node, int64(h.tag))
	sb.EmitOp(node, vm.SWAP)
	sb.EmitPushInt(node, 2)
	sb.EmitOp(node, vm.PACK)
}

// Input: []
// Output: [value]
type createUndefined struct{}

func (createUndefined) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		return
	}
	sb.EmitOp(node, vm.PUSH0)
	sb.EmitHelper(node, opts, createValue{tag: TagUndefined})
}

// Input: []
// Output: [value]
type createNull struct{}

func (createNull) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		return
	}
	sb.EmitOp(node, vm.PUSH0)
	sb.EmitHelper(node, opts, createValue{tag: TagNull})
}

func createBoolean() Helper { return createValue{tag: TagBoolean} }
func createNumber() Helper  { return createValue{tag: TagNumber} }
func createString() Helper  { return createValue{tag: TagString} }
func createSymbol() Helper  { return createValue{tag: TagSymbol} }

// getPayload unwraps a runtime value. It serves getBoolean, getNumber,
// getString, getSymbol and getObject.
//
// Input: [value]
// Output: [payload]
type getPayload struct{}

func (getPayload) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitPayload(sb, node)
}

// isTag tests the tag of a runtime value.
//
// Input: [value]
// Output: [boolean]
type isTag struct {
	tag Tag
}

func (h isTag) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitTag(sb, node)
	sb.EmitPushInt(node, int64(h.tag))
	sb.EmitOp(node, vm.NUMEQUAL)
}

// Input: [value]
// Output: [boolean]
type isNullOrUndefined struct{}

func (isNullOrUndefined) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitTag(sb, node)
	sb.EmitPushInt(node, int64(TagNull))
	sb.EmitOp(node, vm.LTE)
}

// Input: [value]
// Output: [boolean]
type isObjectOrSymbol struct{}

func (isObjectOrSymbol) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitTag(sb, node)
	sb.EmitPushInt(node, int64(TagSymbol))
	sb.EmitOp(node, vm.GTE)
}

// typeSwitch dispatches on the tag of the value on top of the stack. Tests
// run in the order boolean, null/undefined, object/symbol, number, string.
// Kinds excluded by the static type t are skipped and the last candidate
// runs untested, so a single known kind costs no test at all. Every case
// starts with [value] on the stack.
type typeSwitch struct {
	t ast.Type

	Boolean   func()
	Null      func()
	Undefined func()
	Object    func()
	Symbol    func()
	Number    func()
	String    func()

	// NullOrUndefined and ObjectOrSymbol share one test for both kinds.
	NullOrUndefined func()
	ObjectOrSymbol  func()
}

type typeCase struct {
	test Helper
	body func()
}

func (h typeSwitch) cases() []typeCase {
	t := h.t
	if t&ast.Any == ast.Unknown {
		t = ast.Any
	}
	var out []typeCase
	single := func(tag Tag, body func()) {
		if body != nil && t.Has(tag.Type()) {
			out = append(out, typeCase{test: isTag{tag: tag}, body: body})
		}
	}
	pair := func(combined func(), a, b Tag, test Helper, bodyA, bodyB func()) {
		if combined != nil && t.Has(a.Type()) && t.Has(b.Type()) {
			out = append(out, typeCase{test: test, body: combined})
			return
		}
		if bodyA == nil {
			bodyA = combined
		}
		if bodyB == nil {
			bodyB = combined
		}
		single(a, bodyA)
		single(b, bodyB)
	}
	single(TagBoolean, h.Boolean)
	pair(h.NullOrUndefined, TagNull, TagUndefined, isNullOrUndefined{}, h.Null, h.Undefined)
	pair(h.ObjectOrSymbol, TagObject, TagSymbol, isObjectOrSymbol{}, h.Object, h.Symbol)
	single(TagNumber, h.Number)
	single(TagString, h.String)
	return out
}

func (h typeSwitch) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	cases := h.cases()
	if len(cases) == 0 {
		internalErrorf(node, "type switch without cases for %s", h.t)
	}
	var chain func(cs []typeCase)
	chain = func(cs []typeCase) {
		if len(cs) == 1 {
			cs[0].body()
			return
		}
		c := cs[0]
		sb.EmitHelper(node, opts, ifHelper{
			condition: func() {
				sb.EmitOp(node, vm.DUP)
				sb.EmitHelper(node, opts, c.test)
			},
			whenTrue:  c.body,
			whenFalse: func() { chain(cs[1:]) },
		})
	}
	chain(cases)
}
