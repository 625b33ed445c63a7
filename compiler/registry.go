// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"fmt"
	"sort"

	"github.com/Hiyho/neo-one/ast"
)

// NodeCompiler compiles nodes of one syntax kind.
type NodeCompiler interface {
	Kind() ast.Kind
	Visit(sb ScriptBuilder, node ast.Node, opts VisitOptions)
}

type nodeCompilerFunc struct {
	kind  ast.Kind
	visit func(sb ScriptBuilder, node ast.Node, opts VisitOptions)
}

func (c nodeCompilerFunc) Kind() ast.Kind { return c.kind }

func (c nodeCompilerFunc) Visit(sb ScriptBuilder, node ast.Node, opts VisitOptions) {
	c.visit(sb, node, opts)
}

// NodeCompilerFunc returns a NodeCompiler for kind calling fn.
func NodeCompilerFunc(
	kind ast.Kind,
	fn func(sb ScriptBuilder, node ast.Node, opts VisitOptions),
) NodeCompiler {
	return nodeCompilerFunc{kind: kind, visit: fn}
}

// Registry maps syntax kinds to node compilers.
type Registry struct {
	compilers map[ast.Kind]NodeCompiler
}

// NewRegistry returns a registry of compilers. Registering a kind twice is
// an error.
func NewRegistry(compilers ...NodeCompiler) (*Registry, error) {
	r := &Registry{compilers: make(map[ast.Kind]NodeCompiler, len(compilers))}
	for _, c := range compilers {
		k := c.Kind()
		if _, ok := r.compilers[k]; ok {
			return nil, fmt.Errorf("duplicate node compiler for %s", k)
		}
		r.compilers[k] = c
	}
	return r, nil
}

// Lookup returns the compiler registered for kind.
func (r *Registry) Lookup(kind ast.Kind) (NodeCompiler, bool) {
	c, ok := r.compilers[kind]
	return c, ok
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []ast.Kind {
	out := make([]ast.Kind, 0, len(r.compilers))
	for k := range r.compilers {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of r where compilers replace the registered ones of
// the same kind.
func (r *Registry) With(compilers ...NodeCompiler) *Registry {
	out := &Registry{compilers: make(map[ast.Kind]NodeCompiler, len(r.compilers))}
	for k, c := range r.compilers {
		out.compilers[k] = c
	}
	for _, c := range compilers {
		out.compilers[c.Kind()] = c
	}
	return out
}

var defaultRegistry = mustRegistry(defaultCompilers()...)

func mustRegistry(compilers ...NodeCompiler) *Registry {
	r, err := NewRegistry(compilers...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the registry used when Options.Registry is nil.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func defaultCompilers() []NodeCompiler {
	return []NodeCompiler{
		// expressions
		NodeCompilerFunc(ast.KindIdent, compileIdent),
		NodeCompilerFunc(ast.KindNumberLit, compileNumberLit),
		NodeCompilerFunc(ast.KindStringLit, compileStringLit),
		NodeCompilerFunc(ast.KindBoolLit, compileBoolLit),
		NodeCompilerFunc(ast.KindNullLit, compileNullLit),
		NodeCompilerFunc(ast.KindThisExpr, compileThisExpr),
		NodeCompilerFunc(ast.KindArrayLit, compileArrayLit),
		NodeCompilerFunc(ast.KindObjectLit, compileObjectLit),
		NodeCompilerFunc(ast.KindFuncLit, compileFuncLit),
		NodeCompilerFunc(ast.KindArrowFunc, compileFuncLit),
		NodeCompilerFunc(ast.KindClassLit, compileClassLit),
		NodeCompilerFunc(ast.KindUnaryExpr, compileUnaryExpr),
		NodeCompilerFunc(ast.KindUpdateExpr, compileUpdateExpr),
		NodeCompilerFunc(ast.KindBinaryExpr, compileBinaryExpr),
		NodeCompilerFunc(ast.KindLogicalExpr, compileLogicalExpr),
		NodeCompilerFunc(ast.KindAssignExpr, compileAssignExpr),
		NodeCompilerFunc(ast.KindCondExpr, compileCondExpr),
		NodeCompilerFunc(ast.KindCallExpr, compileCallExpr),
		NodeCompilerFunc(ast.KindNewExpr, compileNewExpr),
		NodeCompilerFunc(ast.KindMemberExpr, compileMemberExpr),
		NodeCompilerFunc(ast.KindIndexExpr, compileIndexExpr),
		NodeCompilerFunc(ast.KindParenExpr, compileParenExpr),
		NodeCompilerFunc(ast.KindAsExpr, compileAsExpr),

		// statements
		NodeCompilerFunc(ast.KindVarDecl, compileVarDecl),
		NodeCompilerFunc(ast.KindFuncDecl, compileFuncDecl),
		NodeCompilerFunc(ast.KindClassDecl, compileClassDecl),
		NodeCompilerFunc(ast.KindExprStmt, compileExprStmt),
		NodeCompilerFunc(ast.KindBlockStmt, compileBlockStmt),
		NodeCompilerFunc(ast.KindEmptyStmt, compileEmptyStmt),
		NodeCompilerFunc(ast.KindIfStmt, compileIfStmt),
		NodeCompilerFunc(ast.KindForStmt, compileForStmt),
		NodeCompilerFunc(ast.KindForOfStmt, compileForOfStmt),
		NodeCompilerFunc(ast.KindWhileStmt, compileWhileStmt),
		NodeCompilerFunc(ast.KindDoWhileStmt, compileDoWhileStmt),
		NodeCompilerFunc(ast.KindSwitchStmt, compileSwitchStmt),
		NodeCompilerFunc(ast.KindBranchStmt, compileBranchStmt),
		NodeCompilerFunc(ast.KindReturnStmt, compileReturnStmt),
		NodeCompilerFunc(ast.KindThrowStmt, compileThrowStmt),
		NodeCompilerFunc(ast.KindTryStmt, compileTryStmt),
	}
}
