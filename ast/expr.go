// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

import (
	"strconv"
	"strings"

	"github.com/Hiyho/neo-one/token"
)

// BadExpr represents a bad expression.
type BadExpr struct {
	From Pos
	To   Pos
}

func (*BadExpr) exprNode() {}

// Kind implements Node interface.
func (*BadExpr) Kind() Kind { return KindBad }

// Pos returns the position of first character belonging to the node.
func (e *BadExpr) Pos() Pos { return e.From }

// End returns the position of first character immediately after the node.
func (e *BadExpr) End() Pos { return e.To }

func (e *BadExpr) String() string { return "<bad expression>" }

// Ident represents an identifier.
type Ident struct {
	Name    string
	NamePos Pos
}

func (*Ident) exprNode() {}

// Kind implements Node interface.
func (*Ident) Kind() Kind { return KindIdent }

// Pos returns the position of first character belonging to the node.
func (e *Ident) Pos() Pos { return e.NamePos }

// End returns the position of first character immediately after the node.
func (e *Ident) End() Pos { return Pos(int(e.NamePos) + len(e.Name)) }

func (e *Ident) String() string {
	if e != nil {
		return e.Name
	}
	return "<nil>"
}

// NumberLit represents a numeric literal. Float is set for literals with a
// fraction or exponent which the target machine cannot represent.
type NumberLit struct {
	Value    int64
	Float    bool
	ValuePos Pos
	Literal  string
}

func (*NumberLit) exprNode() {}

// Kind implements Node interface.
func (*NumberLit) Kind() Kind { return KindNumberLit }

// Pos returns the position of first character belonging to the node.
func (e *NumberLit) Pos() Pos { return e.ValuePos }

// End returns the position of first character immediately after the node.
func (e *NumberLit) End() Pos { return Pos(int(e.ValuePos) + len(e.Literal)) }

func (e *NumberLit) String() string { return e.Literal }

// StringLit represents a string literal.
type StringLit struct {
	Value    string
	ValuePos Pos
	Literal  string
}

func (*StringLit) exprNode() {}

// Kind implements Node interface.
func (*StringLit) Kind() Kind { return KindStringLit }

// Pos returns the position of first character belonging to the node.
func (e *StringLit) Pos() Pos { return e.ValuePos }

// End returns the position of first character immediately after the node.
func (e *StringLit) End() Pos { return Pos(int(e.ValuePos) + len(e.Literal)) }

func (e *StringLit) String() string {
	if e.Literal != "" {
		return e.Literal
	}
	return strconv.Quote(e.Value)
}

// BoolLit represents a boolean literal.
type BoolLit struct {
	Value    bool
	ValuePos Pos
}

func (*BoolLit) exprNode() {}

// Kind implements Node interface.
func (*BoolLit) Kind() Kind { return KindBoolLit }

// Pos returns the position of first character belonging to the node.
func (e *BoolLit) Pos() Pos { return e.ValuePos }

// End returns the position of first character immediately after the node.
func (e *BoolLit) End() Pos { return Pos(int(e.ValuePos) + len(e.String())) }

func (e *BoolLit) String() string { return strconv.FormatBool(e.Value) }

// NullLit represents the null literal.
type NullLit struct {
	TokenPos Pos
}

func (*NullLit) exprNode() {}

// Kind implements Node interface.
func (*NullLit) Kind() Kind { return KindNullLit }

// Pos returns the position of first character belonging to the node.
func (e *NullLit) Pos() Pos { return e.TokenPos }

// End returns the position of first character immediately after the node.
func (e *NullLit) End() Pos { return e.TokenPos + 4 }

func (e *NullLit) String() string { return "null" }

// ThisExpr represents the this keyword.
type ThisExpr struct {
	TokenPos Pos
}

func (*ThisExpr) exprNode() {}

// Kind implements Node interface.
func (*ThisExpr) Kind() Kind { return KindThisExpr }

// Pos returns the position of first character belonging to the node.
func (e *ThisExpr) Pos() Pos { return e.TokenPos }

// End returns the position of first character immediately after the node.
func (e *ThisExpr) End() Pos { return e.TokenPos + 4 }

func (e *ThisExpr) String() string { return "this" }

// SuperExpr represents the super keyword.
type SuperExpr struct {
	TokenPos Pos
}

func (*SuperExpr) exprNode() {}

// Kind implements Node interface.
func (*SuperExpr) Kind() Kind { return KindSuperExpr }

// Pos returns the position of first character belonging to the node.
func (e *SuperExpr) Pos() Pos { return e.TokenPos }

// End returns the position of first character immediately after the node.
func (e *SuperExpr) End() Pos { return e.TokenPos + 5 }

func (e *SuperExpr) String() string { return "super" }

// ArrayLit represents an array literal.
type ArrayLit struct {
	Elements []Expr
	LBrack   Pos
	RBrack   Pos
}

func (*ArrayLit) exprNode() {}

// Kind implements Node interface.
func (*ArrayLit) Kind() Kind { return KindArrayLit }

// Pos returns the position of first character belonging to the node.
func (e *ArrayLit) Pos() Pos { return e.LBrack }

// End returns the position of first character immediately after the node.
func (e *ArrayLit) End() Pos { return e.RBrack + 1 }

func (e *ArrayLit) String() string {
	var elements []string
	for _, m := range e.Elements {
		elements = append(elements, m.String())
	}
	return "[" + strings.Join(elements, ", ") + "]"
}

// Property is a property assignment of an object literal. Key is nil for a
// spread property whose Value is a *SpreadElement.
type Property struct {
	Key       Expr
	Computed  bool
	Value     Expr
	Shorthand bool
	Method    bool
}

// Pos returns the position of first character belonging to the property.
func (p *Property) Pos() Pos {
	if p.Key != nil {
		return p.Key.Pos()
	}
	return p.Value.Pos()
}

// End returns the position of first character immediately after the
// property.
func (p *Property) End() Pos { return p.Value.End() }

func (p *Property) String() string {
	switch {
	case p.Key == nil:
		return p.Value.String()
	case p.Shorthand:
		return p.Key.String()
	case p.Computed:
		return "[" + p.Key.String() + "]: " + p.Value.String()
	}
	return p.Key.String() + ": " + p.Value.String()
}

// PropertyName returns the static name of a non computed key.
func (p *Property) PropertyName() (string, bool) {
	if p.Computed || p.Key == nil {
		return "", false
	}
	switch k := p.Key.(type) {
	case *Ident:
		return k.Name, true
	case *StringLit:
		return k.Value, true
	case *NumberLit:
		if !k.Float {
			return strconv.FormatInt(k.Value, 10), true
		}
	}
	return "", false
}

// ObjectLit represents an object literal.
type ObjectLit struct {
	LBrace Pos
	Props  []*Property
	RBrace Pos
}

func (*ObjectLit) exprNode() {}

// Kind implements Node interface.
func (*ObjectLit) Kind() Kind { return KindObjectLit }

// Pos returns the position of first character belonging to the node.
func (e *ObjectLit) Pos() Pos { return e.LBrace }

// End returns the position of first character immediately after the node.
func (e *ObjectLit) End() Pos { return e.RBrace + 1 }

func (e *ObjectLit) String() string {
	var props []string
	for _, p := range e.Props {
		props = append(props, p.String())
	}
	return "{" + strings.Join(props, ", ") + "}"
}

// Param is a function parameter.
type Param struct {
	Name    *Ident
	Default Expr
	Rest    bool
}

func (p *Param) String() string {
	s := p.Name.String()
	if p.Rest {
		s = "..." + s
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// FuncLit represents a function expression, declaration body, method or
// arrow function. Arrow functions with an expression body have a nil Body
// and a non nil ExprBody.
type FuncLit struct {
	FuncPos  Pos
	Name     *Ident
	Params   []*Param
	Body     *BlockStmt
	ExprBody Expr
	Arrow    bool
}

func (*FuncLit) exprNode() {}

// Kind implements Node interface.
func (e *FuncLit) Kind() Kind {
	if e.Arrow {
		return KindArrowFunc
	}
	return KindFuncLit
}

// Pos returns the position of first character belonging to the node.
func (e *FuncLit) Pos() Pos { return e.FuncPos }

// End returns the position of first character immediately after the node.
func (e *FuncLit) End() Pos {
	if e.Body != nil {
		return e.Body.End()
	}
	return e.ExprBody.End()
}

func (e *FuncLit) String() string {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		params[i] = p.String()
	}
	ps := "(" + strings.Join(params, ", ") + ")"
	if e.Arrow {
		if e.Body != nil {
			return ps + " => " + e.Body.String()
		}
		return ps + " => " + e.ExprBody.String()
	}
	name := ""
	if e.Name != nil {
		name = " " + e.Name.Name
	}
	return "function" + name + ps + " " + e.Body.String()
}

// MemberKind is the kind of a class member.
type MemberKind int

// Class member kinds.
const (
	FieldMember MemberKind = iota
	MethodMember
	ConstructorMember
)

// ClassMember is a field, method or the constructor of a class.
type ClassMember struct {
	MemberKind MemberKind
	Static     bool
	Name       *Ident
	Value      Expr
	Func       *FuncLit
}

// Pos returns the position of first character belonging to the member.
func (m *ClassMember) Pos() Pos { return m.Name.Pos() }

func (m *ClassMember) String() string {
	s := ""
	if m.Static {
		s = "static "
	}
	switch m.MemberKind {
	case FieldMember:
		s += m.Name.Name
		if m.Value != nil {
			s += " = " + m.Value.String()
		}
		return s + ";"
	default:
		return s + m.Name.Name + strings.TrimPrefix(m.Func.String(), "function")
	}
}

// ClassLit represents a class expression or the body of a class
// declaration.
type ClassLit struct {
	ClassPos Pos
	Name     *Ident
	Extends  Expr
	Members  []*ClassMember
	RBrace   Pos
}

func (*ClassLit) exprNode() {}

// Kind implements Node interface.
func (*ClassLit) Kind() Kind { return KindClassLit }

// Pos returns the position of first character belonging to the node.
func (e *ClassLit) Pos() Pos { return e.ClassPos }

// End returns the position of first character immediately after the node.
func (e *ClassLit) End() Pos { return e.RBrace + 1 }

// Constructor returns the constructor member or nil.
func (e *ClassLit) Constructor() *ClassMember {
	for _, m := range e.Members {
		if m.MemberKind == ConstructorMember {
			return m
		}
	}
	return nil
}

func (e *ClassLit) String() string {
	var sb strings.Builder
	sb.WriteString("class")
	if e.Name != nil {
		sb.WriteString(" " + e.Name.Name)
	}
	if e.Extends != nil {
		sb.WriteString(" extends " + e.Extends.String())
	}
	sb.WriteString(" {")
	for _, m := range e.Members {
		sb.WriteString(" " + m.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// UnaryExpr represents a prefix unary operator expression: - + ! ~ typeof
// void delete.
type UnaryExpr struct {
	Op    token.Token
	OpPos Pos
	X     Expr
}

func (*UnaryExpr) exprNode() {}

// Kind implements Node interface.
func (*UnaryExpr) Kind() Kind { return KindUnaryExpr }

// Pos returns the position of first character belonging to the node.
func (e *UnaryExpr) Pos() Pos { return e.OpPos }

// End returns the position of first character immediately after the node.
func (e *UnaryExpr) End() Pos { return e.X.End() }

func (e *UnaryExpr) String() string {
	if e.Op.IsKeyword() {
		return "(" + e.Op.String() + " " + e.X.String() + ")"
	}
	return "(" + e.Op.String() + e.X.String() + ")"
}

// UpdateExpr represents ++ and -- in prefix or postfix form.
type UpdateExpr struct {
	Op     token.Token
	OpPos  Pos
	Prefix bool
	X      Expr
}

func (*UpdateExpr) exprNode() {}

// Kind implements Node interface.
func (*UpdateExpr) Kind() Kind { return KindUpdateExpr }

// Pos returns the position of first character belonging to the node.
func (e *UpdateExpr) Pos() Pos {
	if e.Prefix {
		return e.OpPos
	}
	return e.X.Pos()
}

// End returns the position of first character immediately after the node.
func (e *UpdateExpr) End() Pos {
	if e.Prefix {
		return e.X.End()
	}
	return e.OpPos + 2
}

func (e *UpdateExpr) String() string {
	if e.Prefix {
		return e.Op.String() + e.X.String()
	}
	return e.X.String() + e.Op.String()
}

// BinaryExpr represents a binary operator expression.
type BinaryExpr struct {
	X     Expr
	Y     Expr
	Op    token.Token
	OpPos Pos
}

func (*BinaryExpr) exprNode() {}

// Kind implements Node interface.
func (*BinaryExpr) Kind() Kind { return KindBinaryExpr }

// Pos returns the position of first character belonging to the node.
func (e *BinaryExpr) Pos() Pos { return e.X.Pos() }

// End returns the position of first character immediately after the node.
func (e *BinaryExpr) End() Pos { return e.Y.End() }

func (e *BinaryExpr) String() string {
	return "(" + e.X.String() + " " + e.Op.String() + " " + e.Y.String() + ")"
}

// LogicalExpr represents the short circuit operators && || and ??.
type LogicalExpr struct {
	X     Expr
	Y     Expr
	Op    token.Token
	OpPos Pos
}

func (*LogicalExpr) exprNode() {}

// Kind implements Node interface.
func (*LogicalExpr) Kind() Kind { return KindLogicalExpr }

// Pos returns the position of first character belonging to the node.
func (e *LogicalExpr) Pos() Pos { return e.X.Pos() }

// End returns the position of first character immediately after the node.
func (e *LogicalExpr) End() Pos { return e.Y.End() }

func (e *LogicalExpr) String() string {
	return "(" + e.X.String() + " " + e.Op.String() + " " + e.Y.String() + ")"
}

// AssignExpr represents simple and compound assignments.
type AssignExpr struct {
	LHS   Expr
	RHS   Expr
	Op    token.Token
	OpPos Pos
}

func (*AssignExpr) exprNode() {}

// Kind implements Node interface.
func (*AssignExpr) Kind() Kind { return KindAssignExpr }

// Pos returns the position of first character belonging to the node.
func (e *AssignExpr) Pos() Pos { return e.LHS.Pos() }

// End returns the position of first character immediately after the node.
func (e *AssignExpr) End() Pos { return e.RHS.End() }

func (e *AssignExpr) String() string {
	return e.LHS.String() + " " + e.Op.String() + " " + e.RHS.String()
}

// CondExpr represents a ternary conditional expression.
type CondExpr struct {
	Cond        Expr
	True        Expr
	False       Expr
	QuestionPos Pos
	ColonPos    Pos
}

func (*CondExpr) exprNode() {}

// Kind implements Node interface.
func (*CondExpr) Kind() Kind { return KindCondExpr }

// Pos returns the position of first character belonging to the node.
func (e *CondExpr) Pos() Pos { return e.Cond.Pos() }

// End returns the position of first character immediately after the node.
func (e *CondExpr) End() Pos { return e.False.End() }

func (e *CondExpr) String() string {
	return "(" + e.Cond.String() + " ? " + e.True.String() +
		" : " + e.False.String() + ")"
}

// CallExpr represents a function call expression.
type CallExpr struct {
	Func   Expr
	LParen Pos
	Args   []Expr
	RParen Pos
}

func (*CallExpr) exprNode() {}

// Kind implements Node interface.
func (*CallExpr) Kind() Kind { return KindCallExpr }

// Pos returns the position of first character belonging to the node.
func (e *CallExpr) Pos() Pos { return e.Func.Pos() }

// End returns the position of first character immediately after the node.
func (e *CallExpr) End() Pos { return e.RParen + 1 }

func (e *CallExpr) String() string {
	return e.Func.String() + "(" + joinExprs(e.Args) + ")"
}

// NewExpr represents a new expression. RParen is NoPos when the argument
// list is omitted.
type NewExpr struct {
	NewPos Pos
	Func   Expr
	Args   []Expr
	RParen Pos
}

func (*NewExpr) exprNode() {}

// Kind implements Node interface.
func (*NewExpr) Kind() Kind { return KindNewExpr }

// Pos returns the position of first character belonging to the node.
func (e *NewExpr) Pos() Pos { return e.NewPos }

// End returns the position of first character immediately after the node.
func (e *NewExpr) End() Pos {
	if e.RParen.IsValid() {
		return e.RParen + 1
	}
	return e.Func.End()
}

func (e *NewExpr) String() string {
	return "new " + e.Func.String() + "(" + joinExprs(e.Args) + ")"
}

// MemberExpr represents a property access with a dot.
type MemberExpr struct {
	X    Expr
	Name *Ident
}

func (*MemberExpr) exprNode() {}

// Kind implements Node interface.
func (*MemberExpr) Kind() Kind { return KindMemberExpr }

// Pos returns the position of first character belonging to the node.
func (e *MemberExpr) Pos() Pos { return e.X.Pos() }

// End returns the position of first character immediately after the node.
func (e *MemberExpr) End() Pos { return e.Name.End() }

func (e *MemberExpr) String() string {
	return e.X.String() + "." + e.Name.Name
}

// IndexExpr represents an element access expression.
type IndexExpr struct {
	X      Expr
	LBrack Pos
	Index  Expr
	RBrack Pos
}

func (*IndexExpr) exprNode() {}

// Kind implements Node interface.
func (*IndexExpr) Kind() Kind { return KindIndexExpr }

// Pos returns the position of first character belonging to the node.
func (e *IndexExpr) Pos() Pos { return e.X.Pos() }

// End returns the position of first character immediately after the node.
func (e *IndexExpr) End() Pos { return e.RBrack + 1 }

func (e *IndexExpr) String() string {
	return e.X.String() + "[" + e.Index.String() + "]"
}

// ParenExpr represents a parenthesis wrapped expression.
type ParenExpr struct {
	X      Expr
	LParen Pos
	RParen Pos
}

func (*ParenExpr) exprNode() {}

// Kind implements Node interface.
func (*ParenExpr) Kind() Kind { return KindParenExpr }

// Pos returns the position of first character belonging to the node.
func (e *ParenExpr) Pos() Pos { return e.LParen }

// End returns the position of first character immediately after the node.
func (e *ParenExpr) End() Pos { return e.RParen + 1 }

func (e *ParenExpr) String() string { return "(" + e.X.String() + ")" }

// SpreadElement represents ...x in array and object literals and calls.
type SpreadElement struct {
	Ellipsis Pos
	X        Expr
}

func (*SpreadElement) exprNode() {}

// Kind implements Node interface.
func (*SpreadElement) Kind() Kind { return KindSpreadElement }

// Pos returns the position of first character belonging to the node.
func (e *SpreadElement) Pos() Pos { return e.Ellipsis }

// End returns the position of first character immediately after the node.
func (e *SpreadElement) End() Pos { return e.X.End() }

func (e *SpreadElement) String() string { return "..." + e.X.String() }

// AsExpr represents a type assertion `x as T`. TypeName is the source text
// of the asserted type.
type AsExpr struct {
	X        Expr
	TypeName string
	TypeEnd  Pos
}

func (*AsExpr) exprNode() {}

// Kind implements Node interface.
func (*AsExpr) Kind() Kind { return KindAsExpr }

// Pos returns the position of first character belonging to the node.
func (e *AsExpr) Pos() Pos { return e.X.Pos() }

// End returns the position of first character immediately after the node.
func (e *AsExpr) End() Pos { return e.TypeEnd }

func (e *AsExpr) String() string {
	return "(" + e.X.String() + " as " + e.TypeName + ")"
}

func joinExprs(list []Expr) string {
	s := make([]string, len(list))
	for i, e := range list {
		s[i] = e.String()
	}
	return strings.Join(s, ", ")
}
