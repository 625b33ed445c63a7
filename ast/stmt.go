// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

import (
	"strings"

	"github.com/Hiyho/neo-one/token"
)

// BadStmt represents a bad statement.
type BadStmt struct {
	From Pos
	To   Pos
}

func (*BadStmt) stmtNode() {}

// Kind implements Node interface.
func (*BadStmt) Kind() Kind { return KindBad }

// Pos returns the position of first character belonging to the node.
func (s *BadStmt) Pos() Pos { return s.From }

// End returns the position of first character immediately after the node.
func (s *BadStmt) End() Pos { return s.To }

func (s *BadStmt) String() string { return "<bad statement>" }

// VarSpec is a single binding of a variable statement.
type VarSpec struct {
	Name *Ident
	Init Expr
}

func (s *VarSpec) String() string {
	if s.Init != nil {
		return s.Name.Name + " = " + s.Init.String()
	}
	return s.Name.Name
}

// VarDecl represents a var, let or const statement.
type VarDecl struct {
	Tok    token.Token
	TokPos Pos
	Specs  []*VarSpec
	EndPos Pos
}

func (*VarDecl) stmtNode() {}

// Kind implements Node interface.
func (*VarDecl) Kind() Kind { return KindVarDecl }

// Pos returns the position of first character belonging to the node.
func (s *VarDecl) Pos() Pos { return s.TokPos }

// End returns the position of first character immediately after the node.
func (s *VarDecl) End() Pos { return s.EndPos }

func (s *VarDecl) String() string {
	specs := make([]string, len(s.Specs))
	for i, spec := range s.Specs {
		specs[i] = spec.String()
	}
	return s.Tok.String() + " " + strings.Join(specs, ", ")
}

// FuncDecl represents a function declaration.
type FuncDecl struct {
	Func *FuncLit
}

func (*FuncDecl) stmtNode() {}

// Kind implements Node interface.
func (*FuncDecl) Kind() Kind { return KindFuncDecl }

// Pos returns the position of first character belonging to the node.
func (s *FuncDecl) Pos() Pos { return s.Func.Pos() }

// End returns the position of first character immediately after the node.
func (s *FuncDecl) End() Pos { return s.Func.End() }

func (s *FuncDecl) String() string { return s.Func.String() }

// ClassDecl represents a class declaration.
type ClassDecl struct {
	Class *ClassLit
}

func (*ClassDecl) stmtNode() {}

// Kind implements Node interface.
func (*ClassDecl) Kind() Kind { return KindClassDecl }

// Pos returns the position of first character belonging to the node.
func (s *ClassDecl) Pos() Pos { return s.Class.Pos() }

// End returns the position of first character immediately after the node.
func (s *ClassDecl) End() Pos { return s.Class.End() }

func (s *ClassDecl) String() string { return s.Class.String() }

// ExprStmt represents an expression statement.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmtNode() {}

// Kind implements Node interface.
func (*ExprStmt) Kind() Kind { return KindExprStmt }

// Pos returns the position of first character belonging to the node.
func (s *ExprStmt) Pos() Pos { return s.X.Pos() }

// End returns the position of first character immediately after the node.
func (s *ExprStmt) End() Pos { return s.X.End() }

func (s *ExprStmt) String() string { return s.X.String() }

// BlockStmt represents a block statement.
type BlockStmt struct {
	Stmts  []Stmt
	LBrace Pos
	RBrace Pos
}

func (*BlockStmt) stmtNode() {}

// Kind implements Node interface.
func (*BlockStmt) Kind() Kind { return KindBlockStmt }

// Pos returns the position of first character belonging to the node.
func (s *BlockStmt) Pos() Pos { return s.LBrace }

// End returns the position of first character immediately after the node.
func (s *BlockStmt) End() Pos { return s.RBrace + 1 }

func (s *BlockStmt) String() string {
	var list []string
	for _, e := range s.Stmts {
		list = append(list, e.String())
	}
	return "{" + strings.Join(list, "; ") + "}"
}

// EmptyStmt represents an empty statement.
type EmptyStmt struct {
	Semicolon Pos
}

func (*EmptyStmt) stmtNode() {}

// Kind implements Node interface.
func (*EmptyStmt) Kind() Kind { return KindEmptyStmt }

// Pos returns the position of first character belonging to the node.
func (s *EmptyStmt) Pos() Pos { return s.Semicolon }

// End returns the position of first character immediately after the node.
func (s *EmptyStmt) End() Pos { return s.Semicolon + 1 }

func (s *EmptyStmt) String() string { return ";" }

// IfStmt represents an if statement.
type IfStmt struct {
	IfPos Pos
	Cond  Expr
	Body  Stmt
	Else  Stmt
}

func (*IfStmt) stmtNode() {}

// Kind implements Node interface.
func (*IfStmt) Kind() Kind { return KindIfStmt }

// Pos returns the position of first character belonging to the node.
func (s *IfStmt) Pos() Pos { return s.IfPos }

// End returns the position of first character immediately after the node.
func (s *IfStmt) End() Pos {
	if s.Else != nil {
		return s.Else.End()
	}
	return s.Body.End()
}

func (s *IfStmt) String() string {
	var elseStmt string
	if s.Else != nil {
		elseStmt = " else " + s.Else.String()
	}
	return "if (" + s.Cond.String() + ") " + s.Body.String() + elseStmt
}

// ForStmt represents a for statement. Init is a *VarDecl, an *ExprStmt or
// nil.
type ForStmt struct {
	ForPos Pos
	Init   Stmt
	Cond   Expr
	Post   Expr
	Body   Stmt
}

func (*ForStmt) stmtNode() {}

// Kind implements Node interface.
func (*ForStmt) Kind() Kind { return KindForStmt }

// Pos returns the position of first character belonging to the node.
func (s *ForStmt) Pos() Pos { return s.ForPos }

// End returns the position of first character immediately after the node.
func (s *ForStmt) End() Pos { return s.Body.End() }

func (s *ForStmt) String() string {
	var init, cond, post string
	if s.Init != nil {
		init = s.Init.String()
	}
	if s.Cond != nil {
		cond = " " + s.Cond.String()
	}
	if s.Post != nil {
		post = " " + s.Post.String()
	}
	return "for (" + init + ";" + cond + ";" + post + ") " + s.Body.String()
}

// ForOfStmt represents a for-of statement. Tok is the declaration keyword
// or token.Illegal when an existing variable is assigned.
type ForOfStmt struct {
	ForPos Pos
	Tok    token.Token
	Name   *Ident
	X      Expr
	Body   Stmt
}

func (*ForOfStmt) stmtNode() {}

// Kind implements Node interface.
func (*ForOfStmt) Kind() Kind { return KindForOfStmt }

// Pos returns the position of first character belonging to the node.
func (s *ForOfStmt) Pos() Pos { return s.ForPos }

// End returns the position of first character immediately after the node.
func (s *ForOfStmt) End() Pos { return s.Body.End() }

func (s *ForOfStmt) String() string {
	decl := ""
	if s.Tok != token.Illegal {
		decl = s.Tok.String() + " "
	}
	return "for (" + decl + s.Name.Name + " of " + s.X.String() + ") " +
		s.Body.String()
}

// WhileStmt represents a while statement.
type WhileStmt struct {
	WhilePos Pos
	Cond     Expr
	Body     Stmt
}

func (*WhileStmt) stmtNode() {}

// Kind implements Node interface.
func (*WhileStmt) Kind() Kind { return KindWhileStmt }

// Pos returns the position of first character belonging to the node.
func (s *WhileStmt) Pos() Pos { return s.WhilePos }

// End returns the position of first character immediately after the node.
func (s *WhileStmt) End() Pos { return s.Body.End() }

func (s *WhileStmt) String() string {
	return "while (" + s.Cond.String() + ") " + s.Body.String()
}

// DoWhileStmt represents a do-while statement.
type DoWhileStmt struct {
	DoPos  Pos
	Body   Stmt
	Cond   Expr
	RParen Pos
}

func (*DoWhileStmt) stmtNode() {}

// Kind implements Node interface.
func (*DoWhileStmt) Kind() Kind { return KindDoWhileStmt }

// Pos returns the position of first character belonging to the node.
func (s *DoWhileStmt) Pos() Pos { return s.DoPos }

// End returns the position of first character immediately after the node.
func (s *DoWhileStmt) End() Pos { return s.RParen + 1 }

func (s *DoWhileStmt) String() string {
	return "do " + s.Body.String() + " while (" + s.Cond.String() + ")"
}

// CaseClause represents a case or default clause. Expr is nil for default.
type CaseClause struct {
	CasePos Pos
	Expr    Expr
	Body    []Stmt
	EndPos  Pos
}

// Kind implements Node interface.
func (*CaseClause) Kind() Kind { return KindCaseClause }

// Pos returns the position of first character belonging to the node.
func (c *CaseClause) Pos() Pos { return c.CasePos }

// End returns the position of first character immediately after the node.
func (c *CaseClause) End() Pos { return c.EndPos }

func (c *CaseClause) String() string {
	head := "default:"
	if c.Expr != nil {
		head = "case " + c.Expr.String() + ":"
	}
	var list []string
	for _, s := range c.Body {
		list = append(list, s.String())
	}
	return head + " " + strings.Join(list, "; ")
}

// SwitchStmt represents a switch statement.
type SwitchStmt struct {
	SwitchPos Pos
	Tag       Expr
	Cases     []*CaseClause
	RBrace    Pos
}

func (*SwitchStmt) stmtNode() {}

// Kind implements Node interface.
func (*SwitchStmt) Kind() Kind { return KindSwitchStmt }

// Pos returns the position of first character belonging to the node.
func (s *SwitchStmt) Pos() Pos { return s.SwitchPos }

// End returns the position of first character immediately after the node.
func (s *SwitchStmt) End() Pos { return s.RBrace + 1 }

func (s *SwitchStmt) String() string {
	list := make([]string, len(s.Cases))
	for i, c := range s.Cases {
		list[i] = c.String()
	}
	return "switch (" + s.Tag.String() + ") {" + strings.Join(list, " ") + "}"
}

// BranchStmt represents a break or continue statement.
type BranchStmt struct {
	Tok    token.Token
	TokPos Pos
}

func (*BranchStmt) stmtNode() {}

// Kind implements Node interface.
func (*BranchStmt) Kind() Kind { return KindBranchStmt }

// Pos returns the position of first character belonging to the node.
func (s *BranchStmt) Pos() Pos { return s.TokPos }

// End returns the position of first character immediately after the node.
func (s *BranchStmt) End() Pos { return Pos(int(s.TokPos) + len(s.Tok.String())) }

func (s *BranchStmt) String() string { return s.Tok.String() }

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	ReturnPos Pos
	Result    Expr
}

func (*ReturnStmt) stmtNode() {}

// Kind implements Node interface.
func (*ReturnStmt) Kind() Kind { return KindReturnStmt }

// Pos returns the position of first character belonging to the node.
func (s *ReturnStmt) Pos() Pos { return s.ReturnPos }

// End returns the position of first character immediately after the node.
func (s *ReturnStmt) End() Pos {
	if s.Result != nil {
		return s.Result.End()
	}
	return s.ReturnPos + 6
}

func (s *ReturnStmt) String() string {
	if s.Result != nil {
		return "return " + s.Result.String()
	}
	return "return"
}

// ThrowStmt represents a throw statement.
type ThrowStmt struct {
	ThrowPos Pos
	X        Expr
}

func (*ThrowStmt) stmtNode() {}

// Kind implements Node interface.
func (*ThrowStmt) Kind() Kind { return KindThrowStmt }

// Pos returns the position of first character belonging to the node.
func (s *ThrowStmt) Pos() Pos { return s.ThrowPos }

// End returns the position of first character immediately after the node.
func (s *ThrowStmt) End() Pos { return s.X.End() }

func (s *ThrowStmt) String() string { return "throw " + s.X.String() }

// CatchClause represents the catch part of a try statement. Param may be
// nil.
type CatchClause struct {
	CatchPos Pos
	Param    *Ident
	Body     *BlockStmt
}

// Kind implements Node interface.
func (*CatchClause) Kind() Kind { return KindCatchClause }

// Pos returns the position of first character belonging to the node.
func (c *CatchClause) Pos() Pos { return c.CatchPos }

// End returns the position of first character immediately after the node.
func (c *CatchClause) End() Pos { return c.Body.End() }

func (c *CatchClause) String() string {
	if c.Param != nil {
		return "catch (" + c.Param.Name + ") " + c.Body.String()
	}
	return "catch " + c.Body.String()
}

// TryStmt represents a try statement.
type TryStmt struct {
	TryPos  Pos
	Block   *BlockStmt
	Catch   *CatchClause
	Finally *BlockStmt
}

func (*TryStmt) stmtNode() {}

// Kind implements Node interface.
func (*TryStmt) Kind() Kind { return KindTryStmt }

// Pos returns the position of first character belonging to the node.
func (s *TryStmt) Pos() Pos { return s.TryPos }

// End returns the position of first character immediately after the node.
func (s *TryStmt) End() Pos {
	if s.Finally != nil {
		return s.Finally.End()
	}
	return s.Catch.End()
}

func (s *TryStmt) String() string {
	str := "try " + s.Block.String()
	if s.Catch != nil {
		str += " " + s.Catch.String()
	}
	if s.Finally != nil {
		str += " finally " + s.Finally.String()
	}
	return str
}
