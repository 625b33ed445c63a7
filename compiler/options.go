// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import "github.com/Hiyho/neo-one/ast"

// VisitOptions controls what a node compiler leaves on the stack. Options
// are passed by value; derive new ones with the helper functions below.
type VisitOptions struct {
	// PushValue requests the node's value on top of the stack.
	PushValue bool
	// SetValue means the value to assign is on top of the stack and the node
	// must consume it.
	SetValue bool
	// CatchPC is the handler a thrown error jumps to.
	CatchPC ProgramCounter
	// BreakPC is the target of a break statement.
	BreakPC ProgramCounter
	// ContinuePC is the target of a continue statement.
	ContinuePC ProgramCounter
	// SwitchExpressionType is the static type of the enclosing switch
	// discriminant.
	SwitchExpressionType ast.Type
}

// PlainOptions clears the value flags and the catch handler.
func PlainOptions(o VisitOptions) VisitOptions {
	o.PushValue = false
	o.SetValue = false
	o.CatchPC = NoPC
	return o
}

// PushValueOptions requests a value.
func PushValueOptions(o VisitOptions) VisitOptions {
	o.PushValue = true
	return o
}

// NoPushValueOptions discards the value.
func NoPushValueOptions(o VisitOptions) VisitOptions {
	o.PushValue = false
	return o
}

// SetValueOptions marks the top of the stack as the value to assign.
func SetValueOptions(o VisitOptions) VisitOptions {
	o.SetValue = true
	return o
}

// NoSetValueOptions clears the assignment flag.
func NoSetValueOptions(o VisitOptions) VisitOptions {
	o.SetValue = false
	return o
}

// NoValueOptions clears both value flags.
func NoValueOptions(o VisitOptions) VisitOptions {
	o.PushValue = false
	o.SetValue = false
	return o
}

// BreakPCOptions sets the break target.
func BreakPCOptions(o VisitOptions, pc ProgramCounter) VisitOptions {
	o.BreakPC = pc
	return o
}

// ContinuePCOptions sets the continue target.
func ContinuePCOptions(o VisitOptions, pc ProgramCounter) VisitOptions {
	o.ContinuePC = pc
	return o
}

// CatchPCOptions sets the catch handler.
func CatchPCOptions(o VisitOptions, pc ProgramCounter) VisitOptions {
	o.CatchPC = pc
	return o
}
