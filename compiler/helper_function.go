// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// createFunctionObject creates a function object whose call and construct
// slots hold [target, scopes(, this)] for jump table entry.
//
// Input: []
// Output: [function]
type createFunctionObject struct {
	entry     int
	call      bool
	construct bool
	// bindThis captures the current this, for arrow functions.
	bindThis bool
	// prototype adds an empty prototype object property.
	prototype bool
}

func (h createFunctionObject) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if !opts.PushValue {
		return
	}
	sb.EmitHelper(node, opts, createObject{})
	if h.prototype {
		// [prototype, "prototype", function, function]
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushString(node, propertyPrototype)
		sb.EmitHelper(node, opts, createObject{})
		sb.EmitHelper(node, opts, setPropertyObjectProperty{})
	}
	set := func(property string) {
		sb.EmitOp(node, vm.DUP)
		h.pushTarget(sb, node, opts)
		sb.EmitHelper(node, opts, setInternalObjectProperty{property: property})
	}
	if h.call {
		set(internalCall)
	}
	if h.construct {
		set(internalConstruct)
	}
}

func (h createFunctionObject) pushTarget(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	n := int64(2)
	if h.bindThis {
		sb.Scope().GetThis(sb, node, opts)
		n = 3
	}
	sb.Scope().PushAll(sb, node, opts)
	sb.EmitPushInt(node, int64(h.entry))
	sb.EmitPushInt(node, n)
	sb.EmitOp(node, vm.PACK)
}

// createFunction registers the body of fn in the jump table and creates
// its function object.
//
// Input: []
// Output: [function]
type createFunction struct {
	fn *ast.FuncLit
}

func (h createFunction) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	fn := h.fn
	entry := sb.AddFunction(fn, func() {
		sb.EmitHelper(fn, VisitOptions{}, function{fn: fn})
	})
	sb.EmitHelper(node, opts, createFunctionObject{
		entry:     entry,
		call:      true,
		construct: !fn.Arrow,
		bindThis:  fn.Arrow,
		prototype: !fn.Arrow,
	})
}

// function is a jump table body. It records the frame base, binds the
// parameters and returns undefined when control reaches its end.
//
// Input: [args]
// Output: [completion]
type function struct {
	fn *ast.FuncLit
	// scopeNode keys the function scope when fn is nil.
	scopeNode ast.Node
	// beforeParams runs with [args] on the stack.
	beforeParams func(VisitOptions)
	// afterParams runs after the parameters are bound.
	afterParams func(VisitOptions)
}

func (h function) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = VisitOptions{}
	emitFramePrologue(sb, node)

	scopeNode := h.scopeNode
	if h.fn != nil {
		scopeNode = h.fn
	}
	exprBody := h.fn != nil && h.fn.Body == nil
	sb.WithScope(scopeNode, opts, func(inner VisitOptions) {
		if h.beforeParams != nil {
			h.beforeParams(inner)
		}
		var params []*ast.Param
		if h.fn != nil {
			params = h.fn.Params
		}
		sb.EmitHelper(node, inner, parameters{params: params})
		if h.afterParams != nil {
			h.afterParams(inner)
		}
		switch {
		case exprBody:
			sb.Visit(h.fn.ExprBody, PushValueOptions(inner))
			sb.EmitHelper(h.fn.ExprBody, inner, returnValue{})
		case h.fn != nil:
			sb.EmitHelper(h.fn.Body, inner, processStatements{stmts: h.fn.Body.Stmts})
		}
	})
	if !exprBody {
		sb.EmitHelper(node, PushValueOptions(opts), createUndefined{})
		sb.EmitHelper(node, opts, returnValue{})
	}
}

// emitFramePrologue records the stack depth below the arguments as the
// base of the current frame.
//
// Input: [args]
// Output: [args]
func emitFramePrologue(sb ScriptBuilder, node ast.Node) {
	emitOps(sb, node, vm.DEPTH, vm.DEC, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 2)
	emitOps(sb, node, vm.ROT, vm.SETITEM)
}

// parameters binds the call arguments to params. Missing arguments are
// undefined and take the parameter default, a rest parameter collects the
// remaining arguments into an array.
//
// Input: [args]
// Output: []
type parameters struct {
	params []*ast.Param
}

func (h parameters) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(NoSetValueOptions(opts))
	for i, p := range h.params {
		name := sb.Scope().Add(p.Name.Name)
		idx := int64(i)
		if p.Rest {
			emitRestArgs(sb, p.Name, opts, idx)
			sb.Scope().Set(sb, p.Name, opts, name)
			continue
		}
		// [arg, args]
		sb.EmitHelper(p.Name, opts, ifHelper{
			condition: func() {
				sb.EmitOp(p.Name, vm.DUP)
				sb.EmitOp(p.Name, vm.ARRAYSIZE)
				sb.EmitPushInt(p.Name, idx)
				sb.EmitOp(p.Name, vm.GT)
			},
			whenTrue: func() {
				sb.EmitOp(p.Name, vm.DUP)
				sb.EmitPushInt(p.Name, idx)
				sb.EmitOp(p.Name, vm.PICKITEM)
			},
			whenFalse: func() {
				sb.EmitHelper(p.Name, opts, createUndefined{})
			},
		})
		if p.Default != nil {
			def := p.Default
			sb.EmitHelper(def, opts, ifHelper{
				condition: func() {
					sb.EmitOp(def, vm.DUP)
					sb.EmitHelper(def, opts, isTag{tag: TagUndefined})
				},
				whenTrue: func() {
					sb.EmitOp(def, vm.DROP)
					sb.Visit(def, opts)
				},
			})
		}
		sb.Scope().Set(sb, p.Name, opts, name)
	}
	sb.EmitOp(node, vm.DROP)
}

// emitRestArgs collects args[from:] into an array object.
//
// Input: [args]
// Output: [array, args]
func emitRestArgs(sb ScriptBuilder, node ast.Node, opts VisitOptions, from int64) {
	// [index, items, args]
	sb.EmitOp(node, vm.PUSH0)
	sb.EmitOp(node, vm.NEWARRAY)
	sb.EmitPushInt(node, from)
	sb.EmitHelper(node, opts, forLoop{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitOp(node, vm.LT)
		},
		each: func(VisitOptions) {
			// [args[index], items, index, items, args]
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.OVER)
			sb.EmitOp(node, vm.PICKITEM)
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICK)
			sb.EmitOp(node, vm.SWAP)
			sb.EmitOp(node, vm.APPEND)
		},
		incrementor: func() {
			sb.EmitOp(node, vm.INC)
		},
	})
	sb.EmitOp(node, vm.DROP)
	sb.EmitHelper(node, opts, createArray{})
}

// argAt replaces the arguments array with one argument or undefined.
//
// Input: [args]
// Output: [value]
type argAt struct {
	index int64
}

func (h argAt) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = PushValueOptions(opts)
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitPushInt(node, h.index)
			sb.EmitOp(node, vm.GT)
		},
		whenTrue: func() {
			sb.EmitPushInt(node, h.index)
			sb.EmitOp(node, vm.PICKITEM)
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, opts, createUndefined{})
		},
	})
}

// emitArguments packs call arguments into a VM array in source order.
//
// Input: []
// Output: [args]
func emitArguments(sb ScriptBuilder, node ast.Node, opts VisitOptions, args []ast.Expr) {
	opts = PushValueOptions(NoSetValueOptions(opts))
	if len(args) == 0 {
		sb.EmitOp(node, vm.PUSH0)
		sb.EmitOp(node, vm.NEWARRAY)
		return
	}
	for _, arg := range args {
		sb.Visit(arg, opts)
	}
	sb.EmitPushInt(node, int64(len(args)))
	sb.EmitOp(node, vm.PACK)
	sb.EmitOp(node, vm.DUP)
	sb.EmitOp(node, vm.REVERSE)
}

// isCallable tests for an object with a call slot.
//
// Input: [value]
// Output: [boolean]
type isCallable struct{}

func (isCallable) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, opts, isTag{tag: TagObject})
		},
		whenTrue: func() {
			sb.EmitHelper(node, opts, hasInternalObjectProperty{property: internalCall})
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitPushBoolean(node, false)
		},
	})
}

// getCallable returns the call or construct slot of a function, throwing
// a TypeError for anything else.
//
// Input: [function]
// Output: [farr]
type getCallable struct {
	property string
}

func (h getCallable) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	msg := "value is not a function"
	if h.property == internalConstruct {
		msg = "value is not a constructor"
	}
	fail := func() {
		sb.EmitOp(node, vm.DROP)
		sb.EmitHelper(node, opts, throwTypeError{message: msg})
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
					sb.EmitHelper(node, opts, hasInternalObjectProperty{property: h.property})
				},
				whenTrue: func() {
					sb.EmitHelper(node, opts, getInternalObjectProperty{property: h.property})
				},
				whenFalse: fail,
			})
		},
		whenFalse: fail,
	})
}

// bindFunctionThis copies farr with this bound. Without overwrite an
// already bound this, as in arrow functions, is kept.
//
// Input: [farr, this]
// Output: [farr]
type bindFunctionThis struct {
	overwrite bool
}

func (h bindFunctionThis) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	emitOps(sb, node, vm.UNPACK, vm.PACK)
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			if !h.overwrite {
				sb.EmitOp(node, vm.NIP)
				return
			}
			emitOps(sb, node, vm.TUCK, vm.SWAP)
			sb.EmitPushInt(node, 2)
			emitOps(sb, node, vm.SWAP, vm.SETITEM)
		},
		whenFalse: func() {
			emitOps(sb, node, vm.TUCK, vm.SWAP, vm.APPEND)
		},
	})
}

// call invokes farr through the jump table with a new frame on the alt
// stack and handles the returned completion.
//
// Input: [farr, args]
// Output: [value]
type call struct{}

func (call) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	// [0, farr, args]
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.OVER)
	// [this, 0, farr, args]
	sb.EmitHelper(node, opts, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitOp(node, vm.ARRAYSIZE)
			sb.EmitPushInt(node, 3)
			sb.EmitOp(node, vm.NUMEQUAL)
		},
		whenTrue: func() {
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICKITEM)
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
			sb.EmitHelper(node, PushValueOptions(opts), createUndefined{})
		},
	})
	// [scopes, this, 0, farr, args]
	sb.EmitPushInt(node, 2)
	sb.EmitOp(node, vm.PICK)
	sb.EmitPushInt(node, 1)
	sb.EmitOp(node, vm.PICKITEM)
	// [target, args]
	sb.EmitPushInt(node, 3)
	sb.EmitOp(node, vm.PACK)
	sb.EmitOp(node, vm.TOALTSTACK)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
	sb.EmitCall(node)
	// [completion]
	emitOps(sb, node, vm.FROMALTSTACK, vm.DROP)
	if opts.PushValue {
		sb.EmitOp(node, vm.DUP)
		sb.EmitHelper(node, opts, handleCompletion{})
		sb.EmitHelper(node, opts, getCompletionVal{})
	} else {
		sb.EmitHelper(node, opts, handleCompletion{})
	}
}

// invokeCall calls a function value. With this the function is bound to
// the value below it first.
//
// Input: [function, this?, args]
// Output: [value]
type invokeCall struct {
	this bool
}

func (h invokeCall) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, getCallable{property: internalCall})
	if h.this {
		sb.EmitHelper(node, opts, bindFunctionThis{overwrite: false})
	}
	sb.EmitHelper(node, opts, call{})
}

// invokeConstruct creates an instance linked to the constructor's
// prototype and runs the constructor with it as this. An object returned
// by the constructor replaces the instance.
//
// Input: [function, args]
// Output: [object]
type invokeConstruct struct{}

func (invokeConstruct) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	// fail before allocating
	sb.EmitOp(node, vm.DUP)
	sb.EmitHelper(node, push, getCallable{property: internalConstruct})
	sb.EmitOp(node, vm.DROP)
	// [instance, function, args]
	sb.EmitHelper(node, push, createObject{})
	// [prototype, instance, function, args]
	sb.EmitOp(node, vm.OVER)
	sb.EmitPushString(node, propertyPrototype)
	sb.EmitHelper(node, push, getPropertyObjectProperty{})
	// [prototype, "prototype", instance, instance, function, args]
	emitOps(sb, node, vm.OVER, vm.SWAP)
	sb.EmitPushString(node, propertyPrototype)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, push, setPropertyObjectProperty{})
	// [function, instance, args, instance]
	sb.EmitPushInt(node, 3)
	sb.EmitOp(node, vm.XTUCK)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, push, getCallable{property: internalConstruct})
	sb.EmitHelper(node, push, bindFunctionThis{overwrite: true})
	// [result, instance]
	sb.EmitHelper(node, push, call{})
	sb.EmitHelper(node, push, ifHelper{
		condition: func() {
			sb.EmitOp(node, vm.DUP)
			sb.EmitHelper(node, push, isTag{tag: TagObject})
		},
		whenTrue: func() {
			sb.EmitOp(node, vm.NIP)
		},
		whenFalse: func() {
			sb.EmitOp(node, vm.DROP)
		},
	})
	if !opts.PushValue {
		sb.EmitOp(node, vm.DROP)
	}
}

// invokeSuperConstruct runs the parent constructor on the current this.
//
// Input: [parent, args]
// Output: []
type invokeSuperConstruct struct{}

func (invokeSuperConstruct) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	push := PushValueOptions(opts)
	sb.EmitHelper(node, push, getCallable{property: internalConstruct})
	// [farr, this, args]
	sb.Scope().GetThis(sb, node, push)
	sb.EmitOp(node, vm.SWAP)
	sb.EmitHelper(node, push, bindFunctionThis{overwrite: true})
	sb.EmitHelper(node, NoPushValueOptions(opts), call{})
}
