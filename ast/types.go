// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/Hiyho/neo-one/token"
)

// Type is a static type approximation of an expression as a set of value
// kinds. Unknown is the empty set.
type Type uint8

// Static types.
const (
	Undefined Type = 1 << iota
	Null
	Boolean
	Number
	String
	Symbol
	Object

	Unknown Type = 0
	Any          = Undefined | Null | Boolean | Number | String | Symbol | Object
)

var typeNames = []struct {
	t    Type
	name string
}{
	{Undefined, "undefined"},
	{Null, "null"},
	{Boolean, "boolean"},
	{Number, "number"},
	{String, "string"},
	{Symbol, "symbol"},
	{Object, "object"},
}

// Has reports whether t may be a value of kind o.
func (t Type) Has(o Type) bool { return t&o != 0 }

// Only reports whether t is exactly the single kind o.
func (t Type) Only(o Type) bool { return t != Unknown && t == o }

// IsPrimitive reports whether t is known and excludes objects.
func (t Type) IsPrimitive() bool { return t != Unknown && !t.Has(Object) }

func (t Type) String() string {
	if t == Unknown {
		return "unknown"
	}
	var parts []string
	for _, n := range typeNames {
		if t.Has(n.t) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, " | ")
}

// TypeFromName maps a type annotation name to a Type.
func TypeFromName(name string) Type {
	switch name {
	case "undefined", "void":
		return Undefined
	case "null":
		return Null
	case "boolean":
		return Boolean
	case "number":
		return Number
	case "string":
		return String
	case "symbol":
		return Symbol
	}
	return Unknown
}

// TypeOf returns the static type of e derived from its syntax. Identifiers,
// calls and property accesses are Unknown.
func TypeOf(e Expr) Type {
	switch e := e.(type) {
	case *NumberLit:
		return Number
	case *StringLit:
		return String
	case *BoolLit:
		return Boolean
	case *NullLit:
		return Null
	case *ArrayLit, *ObjectLit, *FuncLit, *ClassLit, *NewExpr:
		return Object
	case *ParenExpr:
		return TypeOf(e.X)
	case *AsExpr:
		if t := TypeFromName(e.TypeName); t != Unknown {
			return t
		}
		return TypeOf(e.X)
	case *UnaryExpr:
		switch e.Op {
		case token.Not, token.Delete:
			return Boolean
		case token.Typeof:
			return String
		case token.Void:
			return Undefined
		case token.Sub, token.Add, token.BitNot:
			return Number
		}
	case *UpdateExpr:
		return Number
	case *BinaryExpr:
		switch e.Op {
		case token.Add:
			x, y := TypeOf(e.X), TypeOf(e.Y)
			if x.Only(String) || y.Only(String) {
				return String
			}
			if x.IsPrimitive() && y.IsPrimitive() && !x.Has(String) && !y.Has(String) {
				return Number
			}
			return Unknown
		case token.Equal, token.NotEqual, token.StrictEqual, token.StrictNotEqual,
			token.Less, token.Greater, token.LessEq, token.GreaterEq,
			token.Instanceof, token.In:
			return Boolean
		}
		return Number
	case *LogicalExpr:
		x, y := TypeOf(e.X), TypeOf(e.Y)
		if x == Unknown || y == Unknown {
			return Unknown
		}
		return x | y
	case *CondExpr:
		x, y := TypeOf(e.True), TypeOf(e.False)
		if x == Unknown || y == Unknown {
			return Unknown
		}
		return x | y
	case *AssignExpr:
		if e.Op == token.Assign {
			return TypeOf(e.RHS)
		}
		if e.Op == token.AddAssign {
			return Unknown
		}
		return Number
	case *Ident:
		if e.Name == "undefined" {
			return Undefined
		}
	}
	return Unknown
}
