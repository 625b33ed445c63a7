// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/token"
	"github.com/Hiyho/neo-one/vm"
)

func compileVarDecl(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.VarDecl)
	opts = NoValueOptions(opts)
	for _, spec := range s.Specs {
		name := sb.Scope().Add(spec.Name.Name)
		switch {
		case spec.Init != nil:
			sb.Visit(spec.Init, PushValueOptions(opts))
		case s.Tok != token.Var:
			sb.EmitHelper(spec.Name, PushValueOptions(opts), createUndefined{})
		default:
			continue
		}
		sb.Scope().Set(sb, spec.Name, opts, name)
	}
}

// compileFuncDecl emits nothing, declarations are created when the
// enclosing statement list is entered.
func compileFuncDecl(ScriptBuilder, ast.Node, VisitOptions) {}

func compileClassDecl(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.ClassDecl)
	opts = NoValueOptions(opts)
	compileClass(sb, s.Class, PushValueOptions(opts))
	name := sb.Scope().Add(s.Class.Name.Name)
	sb.Scope().Set(sb, s.Class.Name, opts, name)
}

func compileExprStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.Visit(node.(*ast.ExprStmt).X, NoValueOptions(opts))
}

func compileBlockStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.BlockStmt)
	sb.WithScope(s, NoValueOptions(opts), func(inner VisitOptions) {
		sb.EmitHelper(s, inner, processStatements{stmts: s.Stmts})
	})
}

func compileEmptyStmt(ScriptBuilder, ast.Node, VisitOptions) {}

// emitCondition pushes the truthiness of cond as a VM boolean.
func emitCondition(sb ScriptBuilder, cond ast.Expr, opts VisitOptions) {
	push := PushValueOptions(NoSetValueOptions(opts))
	sb.Visit(cond, push)
	sb.EmitHelper(cond, push, toBoolean{t: sb.TypeOf(cond)})
}

func compileIfStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.IfStmt)
	opts = NoValueOptions(opts)
	emitCondition(sb, s.Cond, opts)
	h := ifHelper{whenTrue: func() { sb.Visit(s.Body, opts) }}
	if s.Else != nil {
		h.whenFalse = func() { sb.Visit(s.Else, opts) }
	}
	sb.EmitHelper(s, opts, h)
}

func compileForStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.ForStmt)
	sb.WithScope(s, NoValueOptions(opts), func(inner VisitOptions) {
		if s.Init != nil {
			sb.Visit(s.Init, inner)
		}
		loop := forLoop{each: func(o VisitOptions) { sb.Visit(s.Body, o) }}
		if s.Cond != nil {
			loop.condition = func() { emitCondition(sb, s.Cond, inner) }
		}
		fork := forkedLevel(sb, s.Init)
		if s.Post != nil || fork >= 0 {
			loop.incrementor = func() {
				if fork >= 0 {
					sb.EmitHelper(s, inner, forkScope{level: fork})
				}
				if s.Post != nil {
					sb.Visit(s.Post, inner)
				}
			}
		}
		sb.EmitHelper(s, inner, loop)
	})
}

// forkedLevel returns the scope level of the let or const bindings
// declared by init, -1 if there are none.
func forkedLevel(sb ScriptBuilder, init ast.Stmt) int {
	d, ok := init.(*ast.VarDecl)
	if !ok || d.Tok == token.Var || len(d.Specs) == 0 {
		return -1
	}
	name, ok := sb.Scope().Lookup(d.Specs[0].Name.Name)
	if !ok {
		return -1
	}
	return name.level
}

func compileForOfStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.ForOfStmt)
	sb.WithScope(s, NoValueOptions(opts), func(inner VisitOptions) {
		push := PushValueOptions(inner)
		items := sb.Scope().AddUnique()
		index := sb.Scope().AddUnique()

		sb.Visit(s.X, push)
		sb.EmitHelper(s.X, push, ifHelper{
			condition: func() {
				sb.EmitOp(s.X, vm.DUP)
				sb.EmitHelper(s.X, push, isTag{tag: TagObject})
				sb.EmitHelper(s.X, push, ifHelper{
					whenTrue: func() {
						sb.EmitOp(s.X, vm.DUP)
						sb.EmitHelper(s.X, push, isArrayObject{})
					},
					whenFalse: func() {
						sb.EmitPushBoolean(s.X, false)
					},
				})
			},
			whenFalse: func() {
				sb.EmitHelper(s.X, inner, throwTypeError{message: "value is not iterable"})
			},
		})
		sb.EmitHelper(s.X, push, getArrayData{})
		sb.Scope().Set(sb, s.X, inner, items)
		sb.EmitPushInt(s, 0)
		sb.Scope().Set(sb, s, inner, index)

		sb.EmitHelper(s, inner, forLoop{
			condition: func() {
				sb.Scope().Get(sb, s, push, index)
				sb.Scope().Get(sb, s, push, items)
				sb.EmitOp(s, vm.ARRAYSIZE)
				sb.EmitOp(s, vm.LT)
			},
			each: func(o VisitOptions) {
				sb.WithScope(s.Name, o, func(body VisitOptions) {
					name := sb.Scope().Add(s.Name.Name)
					sb.Scope().Get(sb, s.Name, push, items)
					sb.Scope().Get(sb, s.Name, push, index)
					sb.EmitOp(s.Name, vm.PICKITEM)
					sb.Scope().Set(sb, s.Name, body, name)
					sb.Visit(s.Body, body)
				})
			},
			incrementor: func() {
				sb.Scope().Get(sb, s, push, index)
				sb.EmitOp(s, vm.INC)
				sb.Scope().Set(sb, s, inner, index)
			},
		})
	})
}

func compileWhileStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.WhileStmt)
	opts = NoValueOptions(opts)
	sb.EmitHelper(s, opts, forLoop{
		condition: func() { emitCondition(sb, s.Cond, opts) },
		each:      func(o VisitOptions) { sb.Visit(s.Body, o) },
	})
}

func compileDoWhileStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.DoWhileStmt)
	opts = NoValueOptions(opts)
	sb.WithProgramCounter(func(brk *ProgramCounterHelper) {
		start := brk.GetCurrent()
		sb.WithProgramCounter(func(cont *ProgramCounterHelper) {
			sb.Visit(s.Body, ContinuePCOptions(BreakPCOptions(opts, brk.GetLast()), cont.GetLast()))
		})
		emitCondition(sb, s.Cond, opts)
		sb.EmitJump(s, vm.JMPIF, start)
	})
}

func compileSwitchStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.SwitchStmt)
	sb.WithScope(s, NoValueOptions(opts), func(inner VisitOptions) {
		push := PushValueOptions(inner)
		tag := sb.Scope().AddUnique()
		sb.Visit(s.Tag, push)
		sb.Scope().Set(sb, s.Tag, inner, tag)
		for _, c := range s.Cases {
			for _, stmt := range c.Body {
				hoistDeclaration(sb, stmt, inner)
			}
		}

		inner.SwitchExpressionType = sb.TypeOf(s.Tag)
		cases := make([]switchCase, len(s.Cases))
		for i, c := range s.Cases {
			c := c
			if c.Expr != nil {
				cases[i].test = func() {
					sb.Scope().Get(sb, c, push, tag)
					sb.Visit(c.Expr, push)
					sb.EmitHelper(c, push, strictEquals{
						lt: inner.SwitchExpressionType,
						rt: sb.TypeOf(c.Expr),
					})
				}
			}
			cases[i].body = func(o VisitOptions) {
				for _, stmt := range c.Body {
					sb.Visit(stmt, o)
				}
			}
		}
		sb.EmitHelper(s, inner, caseHelper{cases: cases})
	})
}

func compileBranchStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.BranchStmt)
	target := opts.BreakPC
	if s.Tok == token.Continue {
		target = opts.ContinuePC
	}
	if !target.IsValid() {
		sb.Context().ReportError(s, TranspilationError, "Illegal "+s.Tok.String()+" statement")
		return
	}
	sb.EmitJump(s, vm.JMP, target)
}

func compileReturnStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.ReturnStmt)
	opts = NoValueOptions(opts)
	if !sb.InFunction() {
		sb.Context().ReportError(s, TranspilationError, "Return statement outside of a function")
		return
	}
	if s.Result != nil {
		sb.Visit(s.Result, PushValueOptions(opts))
	} else {
		sb.EmitHelper(s, PushValueOptions(opts), createUndefined{})
	}
	sb.EmitHelper(s, opts, returnValue{})
}

func compileThrowStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.ThrowStmt)
	opts = NoValueOptions(opts)
	sb.Visit(s.X, PushValueOptions(opts))
	sb.EmitHelper(s, opts, throwValue{})
}

// compileTryStmt records the stack depth on entry so the handler can drop
// whatever the failed statement left behind.
func compileTryStmt(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	s := node.(*ast.TryStmt)
	if s.Finally != nil {
		sb.Context().ReportUnsupported(s.Finally)
	}
	sb.WithScope(s, NoValueOptions(opts), func(inner VisitOptions) {
		depth := sb.Scope().AddUnique()
		sb.EmitOp(s, vm.DEPTH)
		sb.Scope().Set(sb, s, inner, depth)

		sb.WithProgramCounter(func(end *ProgramCounterHelper) {
			catchPC := sb.DeferProgramCounter()
			sb.Visit(s.Block, CatchPCOptions(inner, catchPC))
			sb.EmitJump(s, vm.JMP, end.GetLast())

			// [error]
			sb.ResolveProgramCounter(catchPC)
			sb.EmitHelper(s, inner, unwind{base: func() {
				sb.Scope().Get(sb, s, PushValueOptions(inner), depth)
			}})
			if s.Catch == nil {
				sb.EmitHelper(s, inner, throwValue{})
				return
			}
			sb.WithScope(s.Catch, inner, func(catch VisitOptions) {
				if s.Catch.Param != nil {
					name := sb.Scope().Add(s.Catch.Param.Name)
					sb.Scope().Set(sb, s.Catch.Param, catch, name)
				} else {
					sb.EmitOp(s.Catch, vm.DROP)
				}
				sb.Visit(s.Catch.Body, catch)
			})
		})
	})
}
