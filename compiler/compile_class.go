// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// ClassInfo describes the class whose members are being compiled.
type ClassInfo struct {
	Lit *ast.ClassLit
	// superName holds the parent constructor of a derived class.
	superName *Name
}

// Derived reports whether the class has an extends clause.
func (ci *ClassInfo) Derived() bool {
	return ci.superName != nil
}

func (ci *ClassInfo) members(static bool, kind ast.MemberKind) []*ast.ClassMember {
	var out []*ast.ClassMember
	for _, m := range ci.Lit.Members {
		if m.Static == static && m.MemberKind == kind {
			out = append(out, m)
		}
	}
	return out
}

// compileClass creates the constructor function of cl. Instance methods
// live on its prototype, static members on the constructor itself.
//
// Input: []
// Output: [constructor?]
func compileClass(sb ScriptBuilder, cl *ast.ClassLit, opts VisitOptions) {
	sb.WithScope(cl, NoValueOptions(opts), func(inner VisitOptions) {
		push := PushValueOptions(inner)
		ci := &ClassInfo{Lit: cl}
		if cl.Extends != nil {
			ci.superName = sb.Scope().AddUnique()
			sb.Visit(cl.Extends, push)
			sb.Scope().Set(sb, cl.Extends, inner, ci.superName)
		}
		sb.WithClass(ci, func() {
			// [constructor]
			entry := sb.AddFunction(cl, func() {
				sb.EmitHelper(cl, VisitOptions{}, constructorBody(sb, ci))
			})
			sb.EmitHelper(cl, push, createFunctionObject{
				entry:     entry,
				call:      true,
				construct: true,
				prototype: true,
			})

			// [prototype, constructor]
			sb.EmitOp(cl, vm.DUP)
			sb.EmitPushString(cl, propertyPrototype)
			sb.EmitHelper(cl, push, getPropertyObjectProperty{})
			sb.EmitOp(cl, vm.DUP)
			sb.EmitPushString(cl, propertyPrototype)
			if ci.Derived() {
				sb.Scope().Get(sb, cl, push, ci.superName)
				sb.EmitHelper(cl, push, getMember{name: propertyPrototype})
			} else {
				sb.Scope().GetGlobal(sb, cl, push)
				sb.EmitHelper(cl, push, getMember{name: "Object", xt: ast.Object})
				sb.EmitHelper(cl, push, getMember{name: propertyPrototype})
			}
			sb.EmitHelper(cl, push, setPropertyObjectProperty{})

			for _, m := range ci.members(false, ast.MethodMember) {
				emitMethod(sb, m, push)
			}
			// [constructor]
			sb.EmitOp(cl, vm.DROP)

			for _, m := range ci.members(true, ast.MethodMember) {
				emitMethod(sb, m, push)
			}
			for _, m := range ci.members(true, ast.FieldMember) {
				sb.EmitOp(m.Name, vm.DUP)
				emitFieldValue(sb, m, push)
			}
		})
		if !opts.PushValue {
			sb.EmitOp(cl, vm.DROP)
		}
	})
}

// constructorBody returns the jump table body of the class constructor.
// Instance fields are initialized once this is available: right after the
// parameters for a base class and after super() for a derived one.
func constructorBody(sb ScriptBuilder, ci *ClassInfo) function {
	body := function{scopeNode: ci.Lit}
	if ctor := ci.Lit.Constructor(); ctor != nil {
		body.fn = ctor.Func
	}
	switch {
	case !ci.Derived():
		body.afterParams = func(o VisitOptions) { emitFieldInits(sb, ci, o) }
	case body.fn == nil:
		// forwards every argument to the parent constructor
		body.beforeParams = func(o VisitOptions) {
			sb.EmitOp(ci.Lit, vm.DUP)
			sb.Scope().Get(sb, ci.Lit, PushValueOptions(o), ci.superName)
			sb.EmitHelper(ci.Lit, o, invokeSuperConstruct{})
			emitFieldInits(sb, ci, o)
		}
	}
	return body
}

// emitMethod defines a method on the object on top of the stack.
//
// Input: [object]
// Output: [object]
func emitMethod(sb ScriptBuilder, m *ast.ClassMember, opts VisitOptions) {
	sb.EmitOp(m.Name, vm.DUP)
	sb.EmitPushString(m.Name, m.Name.Name)
	sb.EmitHelper(m.Func, opts, createFunction{fn: m.Func})
	sb.EmitHelper(m.Name, opts, setPropertyObjectProperty{})
}

// emitFieldValue consumes an object and stores the initial value of field
// m on it.
//
// Input: [object]
// Output: []
func emitFieldValue(sb ScriptBuilder, m *ast.ClassMember, opts VisitOptions) {
	push := PushValueOptions(opts)
	sb.EmitPushString(m.Name, m.Name.Name)
	if m.Value != nil {
		sb.Visit(m.Value, push)
	} else {
		sb.EmitHelper(m.Name, push, createUndefined{})
	}
	sb.EmitHelper(m.Name, push, setPropertyObjectProperty{})
}

func emitFieldInits(sb ScriptBuilder, ci *ClassInfo, opts VisitOptions) {
	for _, m := range ci.members(false, ast.FieldMember) {
		sb.Scope().GetThis(sb, m.Name, PushValueOptions(opts))
		emitFieldValue(sb, m, opts)
	}
}

// emitSuperPrototype pushes the prototype of the parent class.
func emitSuperPrototype(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	ci := sb.CurrentClass()
	if ci == nil || !ci.Derived() {
		sb.Context().ReportError(node, TranspilationError,
			"'super' keyword unexpected here")
		sb.EmitHelper(node, PushValueOptions(opts), createUndefined{})
		return
	}
	push := PushValueOptions(opts)
	sb.Scope().Get(sb, node, push, ci.superName)
	sb.EmitHelper(node, push, getMember{name: propertyPrototype})
}

// compileSuperCall runs the parent constructor on this and then
// initializes the instance fields of the current class.
func compileSuperCall(sb ScriptBuilder, e *ast.CallExpr, opts VisitOptions) {
	ci := sb.CurrentClass()
	if ci == nil || !ci.Derived() || !sb.InFunction() {
		sb.Context().ReportError(e, TranspilationError,
			"super() is only valid in a derived class constructor")
		sb.EmitHelper(e, opts, createUndefined{})
		return
	}
	push := PushValueOptions(opts)
	// [parent, args]
	emitArguments(sb, e, push, e.Args)
	sb.Scope().Get(sb, e, push, ci.superName)
	sb.EmitHelper(e, NoPushValueOptions(opts), invokeSuperConstruct{})
	emitFieldInits(sb, ci, NoPushValueOptions(opts))
	sb.EmitHelper(e, opts, createUndefined{})
}
