// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// createCompletion wraps a value into a completion record [value, kind].
//
// Input: [value]
// Output: [completion]
type createCompletion struct {
	kind int64
}

func (h createCompletion) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
		return
	}
	sb.EmitPushInt(node, h.kind)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitPushInt(node, 2)
	sb.EmitOp(node, vm.PACK)
}

func createNormalCompletion() Helper { return createCompletion{kind: completionNormal} }
func createThrowCompletion() Helper  { return createCompletion{kind: completionThrow} }

// getCompletionVal returns the value of a normal completion.
//
// Input: [completion]
// Output: [value]
type getCompletionVal struct{}

func (getCompletionVal) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
}

// getCompletionError returns the thrown value of a throw completion, which
// shares the value slot.
//
// Input: [completion]
// Output: [error]
type getCompletionError struct{}

func (getCompletionError) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, getCompletionVal{})
}

// handleCompletion rethrows a throw completion and discards a normal one.
//
// Input: [completion]
// Output: []
type handleCompletion struct{}

func (handleCompletion) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 1)
			sb.EmitOp(node, vm.PICKITEM)
			sb.EmitPushInt(node, completionThrow)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			sb.EmitHelper(node, opts, getCompletionError{})
			sb.EmitHelper(node, opts, throwValue{})
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
		},
	})
}

// throwValue transfers control to the innermost catch handler. Without one
// a function returns a throw completion and the main program faults.
//
// Input: [error]
// Output: []
type throwValue struct{}

func (throwValue) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	switch {
	case opts.CatchPC.IsValid():
		sb.EmitJump(node, vm.JMP, opts.CatchPC)
	case sb.InFunction():
		sb.EmitHelper(node, PushValueOptions(opts), createThrowCompletion())
		sb.EmitHelper(node, opts, unwind{})
		sb.EmitOp(node, vm.RET)
	default:
		sb.EmitOp(node, vm.THROW)
	}
}

// returnValue completes the current function normally.
//
// Input: [value]
// Output: []
type returnValue struct{}

func (returnValue) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), createNormalCompletion())
	sb.EmitHelper(node, opts, unwind{})
	sb.EmitOp(node, vm.RET)
}

// createError builds an Error instance with message.
//
// Input: []
// Output: [error]
type createError struct {
	message string
}

func (h createError) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitPushString(node, h.message)
	sb.EmitHelper(node, opts, createString())
	sb.EmitHelper(node, opts, newErrorObject{})
}

// newErrorObject builds an Error instance around a message value.
//
// Input: [message]
// Output: [error]
type newErrorObject struct{}

func (h newErrorObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, PushValueOptions(opts), sharedHelper{key: h, in: 1, out: true, body: h.emit})
}

func (newErrorObject) emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	// [object, message]
	sb.EmitHelper(node, opts, createObject{})
	sb.EmitHelper(node, opts, errorInit{})
}

// errorInit stores message on an object and links it to Error.prototype.
//
// Input: [object, message]
// Output: [object]
type errorInit struct{}

func (errorInit) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	// [message, "message", object, object]
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushString(node, "message")
	sb.EmitPushInt(node, 3)
	sb.EmitOp(node, vm.ROLL)
	sb.EmitHelper(node, opts, setPropertyObjectProperty{})
	sb.EmitHelper(node, opts, setGlobalPrototype{global: "Error"})
}

// throwTypeError throws a new Error with message.
//
// Input: []
// Output: []
type throwTypeError struct {
	message string
}

func (h throwTypeError) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	msg := h.message
	if msg == "" {
		msg = "TypeError"
	} else {
		msg = "TypeError: " + msg
	}
	sb.EmitHelper(node, opts, createError{message: msg})
	sb.EmitHelper(node, opts, throwValue{})
}
