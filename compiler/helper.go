// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// Helper emits a reusable code sequence. Each helper documents its stack
// contract as Input and Output lists, top of the stack first.
type Helper interface {
	Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions)
}

// HelperFunc adapts a function to Helper.
type HelperFunc func(sb ScriptBuilder, node ast.Node, opts VisitOptions)

// Emit implements Helper.
func (f HelperFunc) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	f(sb, node, opts)
}

// Tag is the type tag stored at index 1 of every runtime value.
type Tag int64

// Value tags.
const (
	TagUndefined Tag = iota
	TagNull
	TagBoolean
	TagNumber
	TagString
	TagSymbol
	TagObject
)

var tagNames = [...]string{
	TagUndefined: "undefined",
	TagNull:      "null",
	TagBoolean:   "boolean",
	TagNumber:    "number",
	TagString:    "string",
	TagSymbol:    "symbol",
	TagObject:    "object",
}

func (t Tag) String() string {
	if t >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "invalid"
}

// Type returns the static type matching t.
func (t Tag) Type() ast.Type {
	return ast.Type(1) << uint(t)
}

// Object payload indexes.
const (
	objectProperties = 0
	objectSymbols    = 1
	objectInternal   = 2
	objectData       = 3
)

// Internal property names.
const (
	internalCall      = "call"
	internalConstruct = "construct"
	propertyPrototype = "prototype"
	internalValue     = "value"
)

// Completion kinds.
const (
	completionNormal = 0
	completionThrow  = 1
)

func emitOps(sb ScriptBuilder, node ast.Node, ops ...vm.Opcode) {
	for _, op := range ops {
		sb.EmitOp(node, op)
	}
}

// emitTag replaces the value on top of the stack with its tag.
func emitTag(sb ScriptBuilder, node ast.Node) {
	sb.EmitPushInt(node, 1)
	sb.EmitOp(node, vm.PICKITEM)
}

// emitPayload replaces the value on top of the stack with its payload.
func emitPayload(sb ScriptBuilder, node ast.Node) {
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
}
