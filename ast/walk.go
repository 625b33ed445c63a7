// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

// Visitor is called by Walk for each node. If the returned visitor w is not
// nil, Walk visits each of the children of node with w, followed by a call
// of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *File:
		walkStmts(v, n.Stmts)
	case *ArrayLit:
		walkExprs(v, n.Elements)
	case *ObjectLit:
		for _, p := range n.Props {
			if p.Key != nil && p.Computed {
				Walk(v, p.Key)
			}
			Walk(v, p.Value)
		}
	case *FuncLit:
		for _, p := range n.Params {
			Walk(v, p.Name)
			if p.Default != nil {
				Walk(v, p.Default)
			}
		}
		if n.Body != nil {
			Walk(v, n.Body)
		} else {
			Walk(v, n.ExprBody)
		}
	case *ClassLit:
		if n.Extends != nil {
			Walk(v, n.Extends)
		}
		for _, m := range n.Members {
			if m.Func != nil {
				Walk(v, m.Func)
			} else if m.Value != nil {
				Walk(v, m.Value)
			}
		}
	case *UnaryExpr:
		Walk(v, n.X)
	case *UpdateExpr:
		Walk(v, n.X)
	case *BinaryExpr:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *LogicalExpr:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *AssignExpr:
		Walk(v, n.LHS)
		Walk(v, n.RHS)
	case *CondExpr:
		Walk(v, n.Cond)
		Walk(v, n.True)
		Walk(v, n.False)
	case *CallExpr:
		Walk(v, n.Func)
		walkExprs(v, n.Args)
	case *NewExpr:
		Walk(v, n.Func)
		walkExprs(v, n.Args)
	case *MemberExpr:
		Walk(v, n.X)
	case *IndexExpr:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *ParenExpr:
		Walk(v, n.X)
	case *SpreadElement:
		Walk(v, n.X)
	case *AsExpr:
		Walk(v, n.X)
	case *VarDecl:
		for _, s := range n.Specs {
			Walk(v, s.Name)
			if s.Init != nil {
				Walk(v, s.Init)
			}
		}
	case *FuncDecl:
		Walk(v, n.Func)
	case *ClassDecl:
		Walk(v, n.Class)
	case *ExprStmt:
		Walk(v, n.X)
	case *BlockStmt:
		walkStmts(v, n.Stmts)
	case *IfStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *ForStmt:
		if n.Init != nil {
			Walk(v, n.Init)
		}
		if n.Cond != nil {
			Walk(v, n.Cond)
		}
		if n.Post != nil {
			Walk(v, n.Post)
		}
		Walk(v, n.Body)
	case *ForOfStmt:
		Walk(v, n.Name)
		Walk(v, n.X)
		Walk(v, n.Body)
	case *WhileStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *DoWhileStmt:
		Walk(v, n.Body)
		Walk(v, n.Cond)
	case *SwitchStmt:
		Walk(v, n.Tag)
		for _, c := range n.Cases {
			Walk(v, c)
		}
	case *CaseClause:
		if n.Expr != nil {
			Walk(v, n.Expr)
		}
		walkStmts(v, n.Body)
	case *ReturnStmt:
		if n.Result != nil {
			Walk(v, n.Result)
		}
	case *ThrowStmt:
		Walk(v, n.X)
	case *TryStmt:
		Walk(v, n.Block)
		if n.Catch != nil {
			Walk(v, n.Catch)
		}
		if n.Finally != nil {
			Walk(v, n.Finally)
		}
	case *CatchClause:
		if n.Param != nil {
			Walk(v, n.Param)
		}
		Walk(v, n.Body)
	}
	v.Visit(nil)
}

func walkExprs(v Visitor, list []Expr) {
	for _, e := range list {
		Walk(v, e)
	}
}

func walkStmts(v Visitor, list []Stmt) {
	for _, s := range list {
		Walk(v, s)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order: It starts by calling
// f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a call
// of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
