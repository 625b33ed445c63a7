// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/token"
	"github.com/Hiyho/neo-one/vm"
)

// emitTuck copies the value on top of the stack below the depth items
// under it.
func emitTuck(sb ScriptBuilder, node ast.Node, depth int) {
	sb.EmitPushInt(node, int64(depth+1))
	sb.EmitOp(node, vm.XTUCK)
}

// reference is an assignable expression. emitBase pushes the operands the
// target needs, load reads the target keeping them and store consumes a
// value together with them.
type reference struct {
	base     int
	emitBase func()
	// Input: [base...] Output: [value, base...]
	load func()
	// Input: [value, base...] Output: []
	store func()
}

func newReference(sb ScriptBuilder, expr ast.Expr, opts VisitOptions) (reference, bool) {
	push := PushValueOptions(NoSetValueOptions(opts))
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return newReference(sb, e.X, opts)
	case *ast.AsExpr:
		return newReference(sb, e.X, opts)
	case *ast.Ident:
		name, ok := sb.Scope().Lookup(e.Name)
		if !ok {
			sb.Context().ReportError(e, UnknownSymbol, "Unknown symbol: "+e.Name)
			return reference{}, false
		}
		return reference{
			emitBase: func() {},
			load:     func() { sb.Scope().Get(sb, e, push, name) },
			store:    func() { sb.Scope().Set(sb, e, push, name) },
		}, true
	case *ast.MemberExpr:
		xt := sb.TypeOf(e.X)
		return reference{
			base: 2,
			emitBase: func() {
				sb.Visit(e.X, push)
				sb.EmitPushString(e.Name, e.Name.Name)
				sb.EmitHelper(e.Name, push, createString())
			},
			load: func() {
				emitOps(sb, e, vm.OVER, vm.OVER)
				sb.EmitHelper(e, push, getElement{xt: xt, kt: ast.String})
			},
			store: func() {
				sb.EmitHelper(e, push, setElement{xt: xt, kt: ast.String})
			},
		}, true
	case *ast.IndexExpr:
		xt, kt := sb.TypeOf(e.X), sb.TypeOf(e.Index)
		return reference{
			base: 2,
			emitBase: func() {
				sb.Visit(e.X, push)
				sb.Visit(e.Index, push)
			},
			load: func() {
				emitOps(sb, e, vm.OVER, vm.OVER)
				sb.EmitHelper(e, push, getElement{xt: xt, kt: kt})
			},
			store: func() {
				sb.EmitHelper(e, push, setElement{xt: xt, kt: kt})
			},
		}, true
	}
	sb.Context().ReportError(expr, TranspilationError, "Invalid assignment target")
	return reference{}, false
}

func compileIdent(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.Ident)
	name, found := sb.Scope().Lookup(e.Name)
	if opts.SetValue {
		if !found {
			sb.Context().ReportError(e, UnknownSymbol, "Unknown symbol: "+e.Name)
			if !opts.PushValue {
				sb.EmitOp(e, vm.DROP)
			}
			return
		}
		if opts.PushValue {
			sb.EmitOp(e, vm.DUP)
		}
		sb.Scope().Set(sb, e, opts, name)
		return
	}
	unknown := !found && e.Name != "undefined" && !IsBuiltin(e.Name)
	if unknown {
		sb.Context().ReportError(e, UnknownSymbol, "Unknown symbol: "+e.Name)
	}
	if !opts.PushValue {
		return
	}
	switch {
	case found:
		sb.Scope().Get(sb, e, opts, name)
	case IsBuiltin(e.Name):
		sb.Scope().GetGlobal(sb, e, opts)
		sb.EmitHelper(e, opts, getMember{name: e.Name, xt: ast.Object})
	default:
		sb.EmitHelper(e, opts, createUndefined{})
	}
}

func compileNumberLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.NumberLit)
	if e.Float {
		sb.Context().ReportError(e, UnsupportedSyntax,
			"Non integer number "+e.Literal+" is not supported")
	}
	if !opts.PushValue {
		return
	}
	sb.EmitPushInt(e, e.Value)
	sb.EmitHelper(e, opts, createNumber())
}

func compileStringLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.StringLit)
	if !opts.PushValue {
		return
	}
	sb.EmitPushString(e, e.Value)
	sb.EmitHelper(e, opts, createString())
}

func compileBoolLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.BoolLit)
	if !opts.PushValue {
		return
	}
	sb.EmitPushBoolean(e, e.Value)
	sb.EmitHelper(e, opts, createBoolean())
}

func compileNullLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, createNull{})
}

func compileThisExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	if opts.PushValue {
		sb.Scope().GetThis(sb, node, opts)
	}
}

func compileArrayLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.ArrayLit)
	emitArguments(sb, e, opts, e.Elements)
	sb.EmitHelper(e, opts, createArray{})
}

func compileObjectLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.ObjectLit)
	push := PushValueOptions(NoSetValueOptions(opts))
	sb.EmitHelper(e, push, createObject{})
	sb.EmitHelper(e, push, setGlobalPrototype{global: "Object"})
	for _, p := range e.Props {
		if p.Key == nil {
			sb.Context().ReportUnsupported(p.Value)
			continue
		}
		// [value, key, object, object]
		sb.EmitOp(p.Key, vm.DUP)
		kt := ast.String
		if name, ok := p.PropertyName(); ok {
			sb.EmitPushString(p.Key, name)
			sb.EmitHelper(p.Key, push, createString())
		} else {
			sb.Visit(p.Key, push)
			kt = sb.TypeOf(p.Key)
		}
		sb.Visit(p.Value, push)
		sb.EmitHelper(p.Value, push, setElement{xt: ast.Object, kt: kt})
	}
	if !opts.PushValue {
		sb.EmitOp(e, vm.DROP)
	}
}

func compileFuncLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.EmitHelper(node, opts, createFunction{fn: node.(*ast.FuncLit)})
}

func compileClassLit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	compileClass(sb, node.(*ast.ClassLit), opts)
}

func compileUnaryExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.UnaryExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	xt := sb.TypeOf(e.X)
	switch e.Op {
	case token.Void:
		sb.Visit(e.X, NoValueOptions(opts))
		sb.EmitHelper(e, opts, createUndefined{})
		return
	case token.Delete:
		compileDelete(sb, e, opts)
		return
	case token.Typeof:
		sb.Visit(e.X, push)
		sb.EmitHelper(e, opts, typeofHelper{t: xt})
		return
	}
	sb.Visit(e.X, push)
	switch e.Op {
	case token.Not:
		sb.EmitHelper(e, push, toBoolean{t: xt})
		sb.EmitOp(e, vm.NOT)
		sb.EmitHelper(e, opts, createBoolean())
	case token.Sub:
		sb.EmitHelper(e, push, toNumber{t: xt})
		sb.EmitOp(e, vm.NEGATE)
		sb.EmitHelper(e, opts, createNumber())
	case token.Add:
		sb.EmitHelper(e, push, toNumber{t: xt})
		sb.EmitHelper(e, opts, createNumber())
	case token.BitNot:
		sb.EmitHelper(e, push, toNumber{t: xt})
		sb.EmitOp(e, vm.INVERT)
		sb.EmitHelper(e, opts, createNumber())
	default:
		sb.Context().ReportUnsupported(e)
		sb.EmitOp(e, vm.DROP)
		sb.EmitHelper(e, opts, createUndefined{})
	}
}

func compileDelete(sb ScriptBuilder, e *ast.UnaryExpr, opts VisitOptions) {
	push := PushValueOptions(NoSetValueOptions(opts))
	x := e.X
	for {
		p, ok := x.(*ast.ParenExpr)
		if !ok {
			break
		}
		x = p.X
	}
	switch t := x.(type) {
	case *ast.MemberExpr:
		sb.Visit(t.X, push)
		sb.EmitPushString(t.Name, t.Name.Name)
		sb.EmitHelper(t.Name, push, createString())
		sb.EmitHelper(e, opts, deleteElement{kt: ast.String})
	case *ast.IndexExpr:
		sb.Visit(t.X, push)
		sb.Visit(t.Index, push)
		sb.EmitHelper(e, opts, deleteElement{kt: sb.TypeOf(t.Index)})
	default:
		sb.Visit(x, NoValueOptions(opts))
		if opts.PushValue {
			sb.EmitPushBoolean(e, true)
			sb.EmitHelper(e, opts, createBoolean())
		}
	}
}

func compileUpdateExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.UpdateExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	ref, ok := newReference(sb, e.X, opts)
	if !ok {
		sb.EmitHelper(e, opts, createUndefined{})
		return
	}
	ref.emitBase()
	ref.load()
	// [number, base...]
	sb.EmitHelper(e, push, toNumber{t: sb.TypeOf(e.X)})
	if opts.PushValue && !e.Prefix {
		sb.EmitOp(e, vm.DUP)
		sb.EmitHelper(e, push, createNumber())
		emitTuck(sb, e, ref.base+1)
		sb.EmitOp(e, vm.DROP)
	}
	if e.Op == token.Inc {
		sb.EmitOp(e, vm.INC)
	} else {
		sb.EmitOp(e, vm.DEC)
	}
	sb.EmitHelper(e, push, createNumber())
	if opts.PushValue && e.Prefix {
		emitTuck(sb, e, ref.base)
	}
	ref.store()
}

func compileAssignExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.AssignExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	ref, ok := newReference(sb, e.LHS, opts)
	if !ok {
		sb.Visit(e.RHS, NoSetValueOptions(opts))
		return
	}
	ref.emitBase()
	if e.Op == token.Assign {
		sb.Visit(e.RHS, push)
	} else {
		// [right, left, base...]
		ref.load()
		sb.Visit(e.RHS, push)
		emitBinaryOp(sb, e, push, e.Op.BinaryOp(), sb.TypeOf(e.LHS), sb.TypeOf(e.RHS))
	}
	if opts.PushValue {
		emitTuck(sb, e, ref.base)
	}
	ref.store()
}

// emitBinaryOp applies op to [right, left] leaving a value.
func emitBinaryOp(sb ScriptBuilder, node ast.Node, opts VisitOptions, op token.Token, lt, rt ast.Type) {
	switch op {
	case token.Add:
		sb.EmitHelper(node, opts, addValues{lt: lt, rt: rt})
	case token.Equal:
		sb.EmitHelper(node, opts, looseEquals{lt: lt, rt: rt})
		sb.EmitHelper(node, opts, createBoolean())
	case token.NotEqual:
		sb.EmitHelper(node, opts, looseEquals{lt: lt, rt: rt})
		sb.EmitOp(node, vm.NOT)
		sb.EmitHelper(node, opts, createBoolean())
	case token.StrictEqual:
		sb.EmitHelper(node, opts, strictEquals{lt: lt, rt: rt})
		sb.EmitHelper(node, opts, createBoolean())
	case token.StrictNotEqual:
		sb.EmitHelper(node, opts, strictEquals{lt: lt, rt: rt})
		sb.EmitOp(node, vm.NOT)
		sb.EmitHelper(node, opts, createBoolean())
	case token.Instanceof:
		sb.EmitHelper(node, opts, instanceOf{})
		sb.EmitHelper(node, opts, createBoolean())
	case token.In:
		sb.EmitHelper(node, opts, inOperator{kt: lt, ot: rt})
	default:
		sb.EmitHelper(node, opts, numericOp{op: op, lt: lt, rt: rt})
	}
}

func compileBinaryExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.BinaryExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	sb.Visit(e.X, push)
	sb.Visit(e.Y, push)
	emitBinaryOp(sb, e, NoSetValueOptions(opts), e.Op, sb.TypeOf(e.X), sb.TypeOf(e.Y))
}

func compileLogicalExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.LogicalExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	sb.Visit(e.X, push)
	sb.EmitOp(e, vm.DUP)
	right := func() {
		sb.EmitOp(e, vm.DROP)
		sb.Visit(e.Y, push)
	}
	switch e.Op {
	case token.LAnd:
		sb.EmitHelper(e, push, toBoolean{t: sb.TypeOf(e.X)})
		sb.EmitHelper(e, push, ifHelper{whenTrue: right})
	case token.LOr:
		sb.EmitHelper(e, push, toBoolean{t: sb.TypeOf(e.X)})
		sb.EmitHelper(e, push, ifHelper{whenFalse: right})
	default:
		sb.EmitHelper(e, push, isNullOrUndefined{})
		sb.EmitHelper(e, push, ifHelper{whenTrue: right})
	}
	if !opts.PushValue {
		sb.EmitOp(e, vm.DROP)
	}
}

func compileCondExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.CondExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	sb.Visit(e.Cond, push)
	sb.EmitHelper(e, push, toBoolean{t: sb.TypeOf(e.Cond)})
	sb.EmitHelper(e, opts, ifHelper{
		whenTrue:  func() { sb.Visit(e.True, opts) },
		whenFalse: func() { sb.Visit(e.False, opts) },
	})
}

func unparen(x ast.Expr) ast.Expr {
	for {
		p, ok := x.(*ast.ParenExpr)
		if !ok {
			return x
		}
		x = p.X
	}
}

func compileCallExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.CallExpr)
	opts = NoSetValueOptions(opts)
	push := PushValueOptions(opts)
	switch fn := unparen(e.Func).(type) {
	case *ast.SuperExpr:
		compileSuperCall(sb, e, opts)
	case *ast.MemberExpr:
		// [function, this]
		if _, ok := fn.X.(*ast.SuperExpr); ok {
			sb.Scope().GetThis(sb, fn, push)
			emitSuperPrototype(sb, fn.X, push)
			sb.EmitHelper(fn, push, getMember{name: fn.Name.Name, xt: ast.Object})
		} else {
			sb.Visit(fn.X, push)
			sb.EmitOp(fn, vm.DUP)
			sb.EmitHelper(fn, push, getMember{name: fn.Name.Name, xt: sb.TypeOf(fn.X)})
		}
		// [function, this, args]
		emitArguments(sb, e, push, e.Args)
		emitOps(sb, e, vm.ROT, vm.ROT)
		sb.EmitHelper(e, opts, invokeCall{this: true})
	case *ast.IndexExpr:
		sb.Visit(fn.X, push)
		sb.EmitOp(fn, vm.DUP)
		sb.Visit(fn.Index, push)
		sb.EmitHelper(fn, push, getElement{xt: sb.TypeOf(fn.X), kt: sb.TypeOf(fn.Index)})
		emitArguments(sb, e, push, e.Args)
		emitOps(sb, e, vm.ROT, vm.ROT)
		sb.EmitHelper(e, opts, invokeCall{this: true})
	default:
		sb.Visit(fn, push)
		emitArguments(sb, e, push, e.Args)
		sb.EmitOp(e, vm.SWAP)
		sb.EmitHelper(e, opts, invokeCall{})
	}
}

func compileNewExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.NewExpr)
	opts = NoSetValueOptions(opts)
	push := PushValueOptions(opts)
	sb.Visit(e.Func, push)
	emitArguments(sb, e, push, e.Args)
	sb.EmitOp(e, vm.SWAP)
	sb.EmitHelper(e, opts, invokeConstruct{})
}

func compileMemberExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.MemberExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	if _, ok := e.X.(*ast.SuperExpr); ok && !opts.SetValue {
		emitSuperPrototype(sb, e.X, push)
		sb.EmitHelper(e, NoSetValueOptions(opts), getMember{name: e.Name.Name, xt: ast.Object})
		return
	}
	xt := sb.TypeOf(e.X)
	if opts.SetValue {
		// [value, key, object]
		sb.Visit(e.X, push)
		sb.EmitPushString(e.Name, e.Name.Name)
		sb.EmitHelper(e.Name, push, createString())
		sb.EmitOp(e, vm.ROT)
		if opts.PushValue {
			emitTuck(sb, e, 2)
		}
		sb.EmitHelper(e, push, setElement{xt: xt, kt: ast.String})
		return
	}
	if !opts.PushValue {
		sb.Visit(e.X, NoValueOptions(opts))
		return
	}
	sb.Visit(e.X, push)
	sb.EmitHelper(e, opts, getMember{name: e.Name.Name, xt: xt})
}

func compileIndexExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.IndexExpr)
	push := PushValueOptions(NoSetValueOptions(opts))
	xt, kt := sb.TypeOf(e.X), sb.TypeOf(e.Index)
	if opts.SetValue {
		sb.Visit(e.X, push)
		sb.Visit(e.Index, push)
		sb.EmitOp(e, vm.ROT)
		if opts.PushValue {
			emitTuck(sb, e, 2)
		}
		sb.EmitHelper(e, push, setElement{xt: xt, kt: kt})
		return
	}
	if !opts.PushValue {
		sb.Visit(e.X, NoValueOptions(opts))
		sb.Visit(e.Index, NoValueOptions(opts))
		return
	}
	sb.Visit(e.X, push)
	sb.Visit(e.Index, push)
	sb.EmitHelper(e, opts, getElement{xt: xt, kt: kt})
}

func compileParenExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	sb.Visit(node.(*ast.ParenExpr).X, opts)
}

func compileAsExpr(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	e := node.(*ast.AsExpr)
	switch e.TypeName {
	case "any", "unknown", "object":
	default:
		if ast.TypeFromName(e.TypeName) == ast.Unknown {
			sb.Context().ReportWarning(e, UnknownType, "Unknown type "+e.TypeName)
		}
	}
	sb.Visit(e.X, opts)
}
