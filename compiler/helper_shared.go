// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// sharedHelper emits the body of a helper once per script as a jump table
// entry keyed by key, and calls it from every use.
//
// A raw body runs on the caller's stack and frame and must not throw. A
// framed body gets a frame of its own: a throw inside it returns a throw
// completion, which the call site rethrows with its own options.
//
// Input: the in topmost items
// Output: [value] if out and a value is requested
type sharedHelper struct {
	key    Helper
	in     int
	out    bool
	framed bool
	body   func(sb ScriptBuilder, node ast.Node, opts VisitOptions)
}

func (h sharedHelper) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if h.framed {
		h.emitFramed(sb, node, opts)
		return
	}
	entry := sb.AddHelperFunction(node, h.key, func() {
		h.body(sb, node, PushValueOptions(VisitOptions{}))
		sb.EmitOp(node, vm.RET)
	})
	sb.EmitPushInt(node, int64(entry))
	sb.EmitCall(node)
	if h.out && !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
	}
}

func (h sharedHelper) emitFramed(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	entry := sb.AddHelperFunction(node, h.key, func() {
		push := PushValueOptions(VisitOptions{})
		emitFramePrologue(sb, node)
		// [inputs]
		emitOps(sb, node, vm.UNPACK, vm.DROP)
		h.body(sb, node, push)
		if !h.out {
			sb.EmitHelper(node, push, createUndefined{})
		}
		sb.EmitHelper(node, VisitOptions{}, returnValue{})
	})
	push := PushValueOptions(opts)
	// [args]
	sb.EmitPushInt(node, int64(h.in))
	sb.EmitOp(node, vm.PACK)
	// [scopes, this, base, args]
	sb.EmitPushInt(node, 0)
	sb.EmitHelper(node, push, createUndefined{})
	sb.Scope().PushAll(sb, node, push)
	sb.EmitPushInt(node, 3)
	sb.EmitOp(node, vm.PACK)
	sb.EmitOp(node, vm.TOALTSTACK)
	sb.EmitPushInt(node, int64(entry))
	sb.EmitCall(node)
	// [completion]
	emitOps(sb, node, vm.FROMALTSTACK, vm.DROP)
	if h.out && opts.PushValue {
		sb.EmitOp(node, vm.DUP)
		sb.EmitHelper(node, opts, handleCompletion{})
		sb.EmitHelper(node, opts, getCompletionVal{})
	} else {
		sb.EmitHelper(node, opts, handleCompletion{})
	}
}

// knownTypes returns the kinds a value of static type t may have.
func knownTypes(t ast.Type) ast.Type {
	if t&ast.Any == ast.Unknown {
		return ast.Any
	}
	return t & ast.Any
}

// dispatches reports whether a helper specialized for t still needs a
// runtime type switch.
func dispatches(t ast.Type) bool {
	return bitCount(knownTypes(t)) > 1
}
