// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// ifHelper branches on a VM boolean. A nil condition means the boolean is
// already on the stack.
//
// Input: [boolean?]
// Output: []
type ifHelper struct {
	condition func()
	whenTrue  func()
	whenFalse func()
}

func (h ifHelper) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if h.condition != nil {
		h.condition()
	}
	switch {
	case h.whenFalse == nil:
		sb.WithProgramCounter(func(end *ProgramCounterHelper) {
			sb.EmitJump(node, vm.JMPIFNOT, end.GetLast())
			if h.whenTrue != nil {
				h.whenTrue()
			}
		})
	case h.whenTrue == nil:
		sb.WithProgramCounter(func(end *ProgramCounterHelper) {
			sb.EmitJump(node, vm.JMPIF, end.GetLast())
			h.whenFalse()
		})
	default:
		sb.WithProgramCounter(func(end *ProgramCounterHelper) {
			sb.WithProgramCounter(func(otherwise *ProgramCounterHelper) {
				sb.EmitJump(node, vm.JMPIFNOT, otherwise.GetLast())
				h.whenTrue()
				sb.EmitJump(node, vm.JMP, end.GetLast())
			})
			h.whenFalse()
		})
	}
}

// forLoop runs each while condition holds. A nil condition loops until a
// break. each gets the loop's break and continue targets, the incrementor
// runs after each and on continue.
//
// Input: []
// Output: []
type forLoop struct {
	condition   func()
	each        func(VisitOptions)
	incrementor func()
}

func (h forLoop) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = NoValueOptions(opts)
	sb.WithProgramCounter(func(brk *ProgramCounterHelper) {
		start := brk.GetCurrent()
		if h.condition != nil {
			h.condition()
			sb.EmitJump(node, vm.JMPIFNOT, brk.GetLast())
		}
		sb.WithProgramCounter(func(cont *ProgramCounterHelper) {
			h.each(ContinuePCOptions(BreakPCOptions(opts, brk.GetLast()), cont.GetLast()))
		})
		if h.incrementor != nil {
			h.incrementor()
		}
		sb.EmitJump(node, vm.JMP, start)
	})
}

// forkScope gives the current frame a copy of the slots at level, so
// closures created before keep the previous bindings. Levels above it are
// dropped from the chain.
//
// Input: []
// Output: []
type forkScope struct {
	level int
}

func (h forkScope) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	level := int64(h.level)
	// [scopes]
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
	// [scopes, copy]
	sb.EmitOp(node, vm.DUP)
	sb.EmitPushInt(node, level)
	sb.EmitOp(node, vm.PICKITEM)
	emitOps(sb, node, vm.UNPACK, vm.PACK, vm.SWAP)
	// [scopes[0], ..., scopes[level-1], copy]
	for i := level - 1; i >= 0; i-- {
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushInt(node, i)
		sb.EmitOp(node, vm.PICKITEM)
		sb.EmitOp(node, vm.SWAP)
	}
	sb.EmitOp(node, vm.DROP)
	sb.EmitPushInt(node, level+1)
	sb.EmitOp(node, vm.PACK)
	// [newScopes, 0, frame]
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.ROT)
	sb.EmitOp(node, vm.SETITEM)
}

type switchCase struct {
	// test pushes a VM boolean, nil for the default clause.
	test func()
	body func(VisitOptions)
}

// caseHelper tests every case in order, then runs the bodies in source
// order so control falls through until a break.
//
// Input: []
// Output: []
type caseHelper struct {
	cases []switchCase
}

func (h caseHelper) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = NoValueOptions(opts)
	sb.WithProgramCounter(func(brk *ProgramCounterHelper) {
		targets := make([]ProgramCounter, len(h.cases))
		def := -1
		for i, c := range h.cases {
			targets[i] = sb.DeferProgramCounter()
			if c.test == nil {
				def = i
				continue
			}
			c.test()
			sb.EmitJump(node, vm.JMPIF, targets[i])
		}
		if def >= 0 {
			sb.EmitJump(node, vm.JMP, targets[def])
		} else {
			sb.EmitJump(node, vm.JMP, brk.GetLast())
		}
		bodyOpts := BreakPCOptions(opts, brk.GetLast())
		for i, c := range h.cases {
			sb.ResolveProgramCounter(targets[i])
			c.body(bodyOpts)
		}
	})
}

// unwind drops every item between the value on top of the stack and the
// base depth pushed by base. A nil base uses the base of the current call
// frame.
//
// Input: [value, ...]
// Output: [value]
type unwind struct {
	base func()
}

func (h unwind) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.WithProgramCounter(func(end *ProgramCounterHelper) {
		loop := end.GetCurrent()
		sb.EmitOp(node, vm.DEPTH)
		if h.base != nil {
			h.base()
		} else {
			sb.EmitOp(node, vm.DUPFROMALTSTACK)
			sb.EmitPushInt(node, 2)
			sb.EmitOp(node, vm.PICKITEM)
		}
		emitOps(sb, node, vm.INC, vm.GT)
		sb.EmitJump(node, vm.JMPIFNOT, end.GetLast())
		sb.EmitOp(node, vm.NIP)
		sb.EmitJump(node, vm.JMP, loop)
	})
}

// processStatements compiles a statement list. Declarations are hoisted:
// every declared name is bound to undefined and function declarations are
// created before the first statement runs. With resultValue the value of
// a trailing expression statement, or undefined, is left on the stack.
//
// Input: []
// Output: [value?]
type processStatements struct {
	stmts       []ast.Stmt
	resultValue bool
}

func (h processStatements) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	opts = NoValueOptions(opts)
	for _, stmt := range h.stmts {
		hoistDeclaration(sb, stmt, opts)
	}
	for i, stmt := range h.stmts {
		if h.resultValue && i == len(h.stmts)-1 {
			if es, ok := stmt.(*ast.ExprStmt); ok {
				sb.Visit(es.X, PushValueOptions(opts))
				return
			}
		}
		sb.Visit(stmt, opts)
	}
	if h.resultValue {
		sb.EmitHelper(node, PushValueOptions(opts), createUndefined{})
	}
}

func hoistDeclaration(sb ScriptBuilder, stmt ast.Stmt, opts VisitOptions) {
	bindUndefined := func(id *ast.Ident) {
		name := sb.Scope().Add(id.Name)
		sb.EmitHelper(id, PushValueOptions(opts), createUndefined{})
		sb.Scope().Set(sb, id, opts, name)
	}
	switch s := stmt.(type) {
	case *ast.VarDecl:
		for _, spec := range s.Specs {
			bindUndefined(spec.Name)
		}
	case *ast.ClassDecl:
		if s.Class.Name != nil {
			bindUndefined(s.Class.Name)
		}
	case *ast.FuncDecl:
		if s.Func.Name == nil {
			return
		}
		name := sb.Scope().Add(s.Func.Name.Name)
		sb.EmitHelper(s.Func, PushValueOptions(opts), createFunction{fn: s.Func})
		sb.Scope().Set(sb, s.Func.Name, opts, name)
	}
}
