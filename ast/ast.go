// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package ast

import (
	"strconv"
	"strings"
)

// Pos represents a position in the file set.
type Pos int

// NoPos represents an invalid position.
const NoPos Pos = 0

// IsValid returns true if the position is valid.
func (p Pos) IsValid() bool {
	return p != NoPos
}

// Node represents a node in the AST.
type Node interface {
	// Kind returns the syntactic kind of the node.
	Kind() Kind
	// Pos returns the position of first character belonging to the node.
	Pos() Pos
	// End returns the position of first character immediately after the node.
	End() Pos
	// String returns a string representation of the node.
	String() string
}

// Expr represents an expression node in the AST.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	stmtNode()
}

// Kind is the syntactic kind of a node.
type Kind int

// Node kinds.
const (
	KindBad Kind = iota
	KindFile
	KindIdent
	KindNumberLit
	KindStringLit
	KindBoolLit
	KindNullLit
	KindThisExpr
	KindSuperExpr
	KindArrayLit
	KindObjectLit
	KindFuncLit
	KindArrowFunc
	KindClassLit
	KindUnaryExpr
	KindUpdateExpr
	KindBinaryExpr
	KindLogicalExpr
	KindAssignExpr
	KindCondExpr
	KindCallExpr
	KindNewExpr
	KindMemberExpr
	KindIndexExpr
	KindParenExpr
	KindSpreadElement
	KindAsExpr
	KindVarDecl
	KindFuncDecl
	KindClassDecl
	KindExprStmt
	KindBlockStmt
	KindEmptyStmt
	KindIfStmt
	KindForStmt
	KindForOfStmt
	KindWhileStmt
	KindDoWhileStmt
	KindSwitchStmt
	KindCaseClause
	KindBranchStmt
	KindReturnStmt
	KindThrowStmt
	KindTryStmt
	KindCatchClause
	kindEnd
)

var kindNames = [...]string{
	KindBad:           "Bad",
	KindFile:          "File",
	KindIdent:         "Identifier",
	KindNumberLit:     "NumericLiteral",
	KindStringLit:     "StringLiteral",
	KindBoolLit:       "BooleanLiteral",
	KindNullLit:       "NullLiteral",
	KindThisExpr:      "ThisKeyword",
	KindSuperExpr:     "SuperKeyword",
	KindArrayLit:      "ArrayLiteralExpression",
	KindObjectLit:     "ObjectLiteralExpression",
	KindFuncLit:       "FunctionExpression",
	KindArrowFunc:     "ArrowFunction",
	KindClassLit:      "ClassExpression",
	KindUnaryExpr:     "PrefixUnaryExpression",
	KindUpdateExpr:    "UpdateExpression",
	KindBinaryExpr:    "BinaryExpression",
	KindLogicalExpr:   "LogicalExpression",
	KindAssignExpr:    "AssignmentExpression",
	KindCondExpr:      "ConditionalExpression",
	KindCallExpr:      "CallExpression",
	KindNewExpr:       "NewExpression",
	KindMemberExpr:    "PropertyAccessExpression",
	KindIndexExpr:     "ElementAccessExpression",
	KindParenExpr:     "ParenthesizedExpression",
	KindSpreadElement: "SpreadElement",
	KindAsExpr:        "AsExpression",
	KindVarDecl:       "VariableStatement",
	KindFuncDecl:      "FunctionDeclaration",
	KindClassDecl:     "ClassDeclaration",
	KindExprStmt:      "ExpressionStatement",
	KindBlockStmt:     "Block",
	KindEmptyStmt:     "EmptyStatement",
	KindIfStmt:        "IfStatement",
	KindForStmt:       "ForStatement",
	KindForOfStmt:     "ForOfStatement",
	KindWhileStmt:     "WhileStatement",
	KindDoWhileStmt:   "DoStatement",
	KindSwitchStmt:    "SwitchStatement",
	KindCaseClause:    "CaseClause",
	KindBranchStmt:    "BranchStatement",
	KindReturnStmt:    "ReturnStatement",
	KindThrowStmt:     "ThrowStatement",
	KindTryStmt:       "TryStatement",
	KindCatchClause:   "CatchClause",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Kinds returns all valid node kinds.
func Kinds() []Kind {
	out := make([]Kind, 0, int(kindEnd))
	for k := KindBad; k < kindEnd; k++ {
		out = append(out, k)
	}
	return out
}

// File represents a parsed source file.
type File struct {
	Name      string
	Stmts     []Stmt
	FileStart Pos
	FileEnd   Pos
}

// Kind implements Node interface.
func (*File) Kind() Kind { return KindFile }

// Pos returns the position of first character belonging to the node.
func (n *File) Pos() Pos { return n.FileStart }

// End returns the position of first character immediately after the node.
func (n *File) End() Pos { return n.FileEnd }

func (n *File) String() string {
	var stmts []string
	for _, e := range n.Stmts {
		stmts = append(stmts, e.String())
	}
	return strings.Join(stmts, "; ")
}
