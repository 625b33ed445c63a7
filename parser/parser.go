// A modified version Go and Tengo parsers.

// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Copyright (c) 2019 Daniel Kang.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE.tengo file.

// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.golang file.

package parser

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/token"
)

type bailout struct{}

var stmtStart = map[token.Token]bool{
	token.Var:      true,
	token.Let:      true,
	token.Const:    true,
	token.Function: true,
	token.Class:    true,
	token.Break:    true,
	token.Continue: true,
	token.For:      true,
	token.While:    true,
	token.Do:       true,
	token.Switch:   true,
	token.If:       true,
	token.Return:   true,
	token.Try:      true,
	token.Throw:    true,
}

// Error represents a parser error.
type Error struct {
	Pos SourceFilePos
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Filename != "" || e.Pos.IsValid() {
		return fmt.Sprintf("Parse Error: %s\n\tat %s", e.Msg, e.Pos)
	}
	return fmt.Sprintf("Parse Error: %s", e.Msg)
}

// ErrorList is a collection of parser errors.
type ErrorList []*Error

// Add adds a new parser error to the collection.
func (p *ErrorList) Add(pos SourceFilePos, msg string) {
	*p = append(*p, &Error{pos, msg})
}

// Len returns the number of elements in the collection.
func (p ErrorList) Len() int {
	return len(p)
}

func (p ErrorList) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p ErrorList) Less(i, j int) bool {
	e := &p[i].Pos
	f := &p[j].Pos

	if e.Filename != f.Filename {
		return e.Filename < f.Filename
	}
	if e.Line != f.Line {
		return e.Line < f.Line
	}
	if e.Column != f.Column {
		return e.Column < f.Column
	}
	return p[i].Msg < p[j].Msg
}

// Sort sorts the collection.
func (p ErrorList) Sort() {
	sort.Sort(p)
}

func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", p[0], len(p)-1)
}

// Err returns an error.
func (p ErrorList) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

type tokenInfo struct {
	tok     token.Token
	lit     string
	pos     ast.Pos
	newline bool
}

// Parser parses a source file into an ast.File. The whole token stream is
// scanned up front so that arrow functions and type annotations can be
// recognized with unbounded lookahead.
type Parser struct {
	file      *SourceFile
	errors    ErrorList
	toks      []tokenInfo
	idx       int
	pos       ast.Pos
	token     token.Token
	tokenLit  string
	newline   bool // line terminator before the current token
	noIn      bool // 'in' is not a binary operator (for statement init)
	syncPos   ast.Pos
	syncCount int
	trace     bool
	indent    int
	traceOut  io.Writer
}

// NewParser creates a Parser.
func NewParser(file *SourceFile, src []byte, trace io.Writer) *Parser {
	p := &Parser{
		file:     file,
		trace:    trace != nil,
		traceOut: trace,
	}
	scanner := NewScanner(p.file, src,
		func(pos SourceFilePos, msg string) {
			p.errors.Add(pos, msg)
		}, 0)
	for {
		tok, lit, pos := scanner.Scan()
		p.toks = append(p.toks, tokenInfo{
			tok:     tok,
			lit:     lit,
			pos:     pos,
			newline: scanner.NewlineBefore(),
		})
		if tok == token.EOF {
			break
		}
	}
	p.idx = -1
	p.next()
	return p
}

// ParseFile parses the source and returns an AST file unit.
func (p *Parser) ParseFile() (file *ast.File, err error) {
	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(bailout); !ok {
				panic(e)
			}
		}

		p.errors.Sort()
		err = p.errors.Err()
	}()

	if p.trace {
		defer untracep(tracep(p, "File"))
	}

	if p.errors.Len() > 0 {
		return nil, p.errors.Err()
	}

	var stmts []ast.Stmt
	for p.token != token.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	if p.errors.Len() > 0 {
		return nil, p.errors.Err()
	}

	file = &ast.File{
		Name:      p.file.Name,
		Stmts:     stmts,
		FileStart: ast.Pos(p.file.Base),
		FileEnd:   ast.Pos(p.file.Base + p.file.Size),
	}
	return
}

// ---------------------------------------------------------------------------
// Statements

func (p *Parser) parseStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "Statement"))
	}

	switch p.token {
	case token.Var, token.Let, token.Const:
		s := p.parseVarDecl()
		p.expectSemi()
		return s
	case token.Function:
		return p.parseFuncDecl()
	case token.Class:
		return &ast.ClassDecl{Class: p.parseClass(true)}
	case token.Export:
		p.next()
		if p.token == token.Default {
			p.next()
		}
		return p.parseStmt()
	case token.Import:
		pos := p.pos
		p.error(pos, "import declarations are not supported")
		p.advance(stmtStart)
		return &ast.BadStmt{From: pos, To: p.pos}
	case token.If:
		return p.parseIfStmt()
	case token.For:
		return p.parseForStmt()
	case token.While:
		return p.parseWhileStmt()
	case token.Do:
		return p.parseDoWhileStmt()
	case token.Switch:
		return p.parseSwitchStmt()
	case token.Break, token.Continue:
		return p.parseBranchStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.Throw:
		return p.parseThrowStmt()
	case token.Try:
		return p.parseTryStmt()
	case token.LBrace:
		return p.parseBlockStmt()
	case token.Semicolon:
		s := &ast.EmptyStmt{Semicolon: p.pos}
		p.next()
		return s
	case token.Ident:
		if s := p.parseTypeDecl(); s != nil {
			return s
		}
	case token.EOF, token.RBrace, token.RParen, token.RBrack:
		pos := p.pos
		p.errorExpected(pos, "statement")
		p.next()
		return &ast.BadStmt{From: pos, To: p.pos}
	}

	x := p.parseExpr()
	p.expectSemi()
	return &ast.ExprStmt{X: x}
}

// parseTypeDecl skips type alias and interface declarations. It returns nil
// if the current identifier does not start one.
func (p *Parser) parseTypeDecl() ast.Stmt {
	next := p.peek(1)
	if next.tok != token.Ident || next.newline {
		return nil
	}
	pos := p.pos
	switch p.tokenLit {
	case "type":
		p.next()
		p.parseIdent()
		p.skipTypeParams()
		p.expect(token.Assign)
		p.skipType()
		p.expectSemi()
	case "interface":
		p.next()
		p.parseIdent()
		p.skipTypeParams()
		for p.token != token.LBrace && p.token != token.EOF {
			p.next()
		}
		p.skipBalanced()
	case "enum", "namespace", "module", "declare":
		p.error(pos, p.tokenLit+" declarations are not supported")
		p.advance(stmtStart)
		return &ast.BadStmt{From: pos, To: p.pos}
	default:
		return nil
	}
	return &ast.EmptyStmt{Semicolon: pos}
}

func (p *Parser) parseVarDecl() *ast.VarDecl {
	if p.trace {
		defer untracep(tracep(p, "VarDecl"))
	}

	decl := &ast.VarDecl{Tok: p.token, TokPos: p.pos}
	p.next()
	for {
		name := p.parseIdent()
		if p.token == token.Not {
			p.next()
		}
		if p.token == token.Colon {
			p.next()
			p.skipType()
		}
		spec := &ast.VarSpec{Name: name}
		decl.EndPos = name.End()
		if p.token == token.Assign {
			p.next()
			spec.Init = p.parseAssignExpr()
			decl.EndPos = spec.Init.End()
		} else if decl.Tok == token.Const {
			p.error(name.Pos(), "missing initializer in const declaration")
		}
		decl.Specs = append(decl.Specs, spec)
		if p.token != token.Comma {
			break
		}
		p.next()
	}
	return decl
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "FuncDecl"))
	}

	pos := p.expect(token.Function)
	name := p.parseIdent()
	fn := p.parseFuncRest(pos, name)
	return &ast.FuncDecl{Func: fn}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "IfStmt"))
	}

	pos := p.expect(token.If)
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	body := p.parseStmt()

	var elseStmt ast.Stmt
	if p.token == token.Else {
		p.next()
		elseStmt = p.parseStmt()
	}
	return &ast.IfStmt{IfPos: pos, Cond: cond, Body: body, Else: elseStmt}
}

func (p *Parser) parseForStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "ForStmt"))
	}

	pos := p.expect(token.For)
	p.expect(token.LParen)

	// for (const x of xs)
	switch {
	case (p.token == token.Var || p.token == token.Let || p.token == token.Const) &&
		p.peek(1).tok == token.Ident && isContextual(p.peek(2), "of"):
		tok := p.token
		p.next()
		return p.parseForOfRest(pos, tok)
	case p.token == token.Ident && isContextual(p.peek(1), "of"):
		return p.parseForOfRest(pos, token.Illegal)
	}

	var init ast.Stmt
	if p.token != token.Semicolon {
		prevNoIn := p.noIn
		p.noIn = true
		if p.token == token.Var || p.token == token.Let || p.token == token.Const {
			init = p.parseVarDecl()
		} else {
			init = &ast.ExprStmt{X: p.parseExpr()}
		}
		p.noIn = prevNoIn
		if p.token == token.In {
			p.error(p.pos, "for-in statements are not supported")
		}
	}
	p.expect(token.Semicolon)

	var cond ast.Expr
	if p.token != token.Semicolon {
		cond = p.parseExpr()
	}
	p.expect(token.Semicolon)

	var post ast.Expr
	if p.token != token.RParen {
		post = p.parseExpr()
	}
	p.expect(token.RParen)

	body := p.parseStmt()
	return &ast.ForStmt{
		ForPos: pos,
		Init:   init,
		Cond:   cond,
		Post:   post,
		Body:   body,
	}
}

func (p *Parser) parseForOfRest(pos ast.Pos, tok token.Token) ast.Stmt {
	name := p.parseIdent()
	p.next() // of
	x := p.parseAssignExpr()
	p.expect(token.RParen)
	body := p.parseStmt()
	return &ast.ForOfStmt{ForPos: pos, Tok: tok, Name: name, X: x, Body: body}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "WhileStmt"))
	}

	pos := p.expect(token.While)
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	body := p.parseStmt()
	return &ast.WhileStmt{WhilePos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhileStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "DoWhileStmt"))
	}

	pos := p.expect(token.Do)
	body := p.parseStmt()
	p.expect(token.While)
	p.expect(token.LParen)
	cond := p.parseExpr()
	rparen := p.expect(token.RParen)
	if p.token == token.Semicolon {
		p.next()
	}
	return &ast.DoWhileStmt{DoPos: pos, Body: body, Cond: cond, RParen: rparen}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "SwitchStmt"))
	}

	pos := p.expect(token.Switch)
	p.expect(token.LParen)
	tag := p.parseExpr()
	p.expect(token.RParen)
	p.expect(token.LBrace)

	var cases []*ast.CaseClause
	hasDefault := false
	for p.token == token.Case || p.token == token.Default {
		clause := &ast.CaseClause{CasePos: p.pos}
		if p.token == token.Case {
			p.next()
			clause.Expr = p.parseExpr()
		} else {
			if hasDefault {
				p.error(p.pos, "multiple default clauses in switch")
			}
			hasDefault = true
			p.next()
		}
		clause.EndPos = p.expect(token.Colon) + 1
		for p.token != token.Case && p.token != token.Default &&
			p.token != token.RBrace && p.token != token.EOF {
			s := p.parseStmt()
			clause.Body = append(clause.Body, s)
			clause.EndPos = s.End()
		}
		cases = append(cases, clause)
	}
	rbrace := p.expect(token.RBrace)
	return &ast.SwitchStmt{SwitchPos: pos, Tag: tag, Cases: cases, RBrace: rbrace}
}

func (p *Parser) parseBranchStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "BranchStmt"))
	}

	s := &ast.BranchStmt{Tok: p.token, TokPos: p.pos}
	p.next()
	if p.token == token.Ident && !p.newline {
		p.error(p.pos, "labeled statements are not supported")
		p.next()
	}
	p.expectSemi()
	return s
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "ReturnStmt"))
	}

	s := &ast.ReturnStmt{ReturnPos: p.pos}
	p.next()
	if !p.atStmtEnd() {
		s.Result = p.parseExpr()
	}
	p.expectSemi()
	return s
}

func (p *Parser) parseThrowStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "ThrowStmt"))
	}

	pos := p.expect(token.Throw)
	if p.newline {
		p.error(p.pos, "illegal newline after throw")
	}
	x := p.parseExpr()
	p.expectSemi()
	return &ast.ThrowStmt{ThrowPos: pos, X: x}
}

func (p *Parser) parseTryStmt() ast.Stmt {
	if p.trace {
		defer untracep(tracep(p, "TryStmt"))
	}

	pos := p.expect(token.Try)
	block := p.parseBlockStmt()
	s := &ast.TryStmt{TryPos: pos, Block: block}
	if p.token == token.Catch {
		clause := &ast.CatchClause{CatchPos: p.pos}
		p.next()
		if p.token == token.LParen {
			p.next()
			clause.Param = p.parseIdent()
			if p.token == token.Colon {
				p.next()
				p.skipType()
			}
			p.expect(token.RParen)
		}
		clause.Body = p.parseBlockStmt()
		s.Catch = clause
	}
	if p.token == token.Finally {
		p.next()
		s.Finally = p.parseBlockStmt()
	}
	if s.Catch == nil && s.Finally == nil {
		p.errorExpected(p.pos, "'catch' or 'finally'")
	}
	return s
}

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	if p.trace {
		defer untracep(tracep(p, "BlockStmt"))
	}

	lbrace := p.expect(token.LBrace)
	var list []ast.Stmt
	for p.token != token.RBrace && p.token != token.EOF {
		list = append(list, p.parseStmt())
	}
	rbrace := p.expect(token.RBrace)
	return &ast.BlockStmt{LBrace: lbrace, RBrace: rbrace, Stmts: list}
}

// ---------------------------------------------------------------------------
// Functions and classes

func (p *Parser) parseFuncRest(pos ast.Pos, name *ast.Ident) *ast.FuncLit {
	p.skipTypeParams()
	params := p.parseParams()
	if p.token == token.Colon {
		p.next()
		p.skipType()
	}
	body := p.parseBlockStmt()
	return &ast.FuncLit{FuncPos: pos, Name: name, Params: params, Body: body}
}

var paramModifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"readonly":  true,
}

func (p *Parser) parseParams() []*ast.Param {
	if p.trace {
		defer untracep(tracep(p, "Params"))
	}

	p.expect(token.LParen)
	var params []*ast.Param
	for p.token != token.RParen && p.token != token.EOF {
		param := &ast.Param{}
		if p.token == token.Ellipsis {
			param.Rest = true
			p.next()
		}
		if p.token == token.Ident && paramModifiers[p.tokenLit] &&
			p.peek(1).tok == token.Ident {
			p.error(p.pos, "parameter properties are not supported")
			p.next()
		}
		param.Name = p.parseIdent()
		if p.token == token.Question {
			p.next()
		}
		if p.token == token.Colon {
			p.next()
			p.skipType()
		}
		if p.token == token.Assign {
			p.next()
			param.Default = p.parseAssignExpr()
		}
		params = append(params, param)
		if !p.atComma("parameter list", token.RParen) {
			break
		}
		p.next()
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseArrowFunc() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "ArrowFunc"))
	}

	pos := p.pos
	p.skipTypeParams()
	var params []*ast.Param
	if p.token == token.Ident {
		params = []*ast.Param{{Name: p.parseIdent()}}
	} else {
		params = p.parseParams()
		if p.token == token.Colon {
			p.next()
			p.skipType()
		}
	}
	p.expect(token.Arrow)

	fn := &ast.FuncLit{FuncPos: pos, Params: params, Arrow: true}
	if p.token == token.LBrace {
		fn.Body = p.parseBlockStmt()
	} else {
		prevNoIn := p.noIn
		p.noIn = false
		fn.ExprBody = p.parseAssignExpr()
		p.noIn = prevNoIn
	}
	return fn
}

var memberModifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
	"readonly":  true,
	"abstract":  true,
	"override":  true,
	"declare":   true,
	"static":    true,
}

func (p *Parser) parseClass(decl bool) *ast.ClassLit {
	if p.trace {
		defer untracep(tracep(p, "Class"))
	}

	class := &ast.ClassLit{ClassPos: p.expect(token.Class)}
	if p.token == token.Ident && !isContextual(p.toks[p.idx], "implements") {
		class.Name = p.parseIdent()
	} else if decl {
		p.errorExpected(p.pos, "class name")
	}
	p.skipTypeParams()
	if p.token == token.Extends {
		p.next()
		class.Extends = p.parseLHSExpr(false)
		p.skipTypeParams()
	}
	if isContextual(p.toks[p.idx], "implements") {
		for p.token != token.LBrace && p.token != token.EOF {
			p.next()
		}
	}

	p.expect(token.LBrace)
	for p.token != token.RBrace && p.token != token.EOF {
		if p.token == token.Semicolon {
			p.next()
			continue
		}
		if m := p.parseClassMember(); m != nil {
			class.Members = append(class.Members, m)
		}
	}
	class.RBrace = p.expect(token.RBrace)
	return class
}

func (p *Parser) parseClassMember() *ast.ClassMember {
	m := &ast.ClassMember{}
modifiers:
	for p.token == token.Ident && memberModifiers[p.tokenLit] {
		switch p.peek(1).tok {
		case token.LParen, token.Assign, token.Semicolon, token.Colon,
			token.Question, token.RBrace:
			// a member named like a modifier
			break modifiers
		}
		if p.tokenLit == "static" {
			m.Static = true
		}
		p.next()
	}

	if p.token == token.Ident && (p.tokenLit == "get" || p.tokenLit == "set") &&
		p.peek(1).tok != token.LParen && p.peek(1).tok != token.Assign &&
		p.peek(1).tok != token.Semicolon && p.peek(1).tok != token.Colon {
		pos := p.pos
		p.error(pos, "accessors are not supported")
		p.next()
	}

	pos := p.pos
	switch p.token {
	case token.String:
		v, _ := Unquote(p.tokenLit)
		m.Name = &ast.Ident{Name: v, NamePos: pos}
		p.next()
	case token.LBrack:
		p.error(pos, "computed class member names are not supported")
		p.skipBalanced()
		m.Name = &ast.Ident{Name: "_", NamePos: pos}
	default:
		m.Name = p.parsePropertyIdent()
	}

	if p.token == token.Question || p.token == token.Not {
		p.next()
	}
	switch p.token {
	case token.LParen, token.Less:
		m.MemberKind = ast.MethodMember
		if m.Name.Name == "constructor" && !m.Static {
			m.MemberKind = ast.ConstructorMember
		}
		m.Func = p.parseFuncRest(pos, nil)
		return m
	}

	m.MemberKind = ast.FieldMember
	if p.token == token.Colon {
		p.next()
		p.skipType()
	}
	if p.token == token.Assign {
		p.next()
		m.Value = p.parseAssignExpr()
	}
	p.expectSemi()
	return m
}

// ---------------------------------------------------------------------------
// Expressions

func (p *Parser) parseExpr() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "Expression"))
	}

	x := p.parseAssignExpr()
	if p.token == token.Comma {
		p.error(p.pos, "comma expressions are not supported")
		for p.token == token.Comma {
			p.next()
			p.parseAssignExpr()
		}
	}
	return x
}

func (p *Parser) parseAssignExpr() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "AssignExpression"))
	}

	if p.isArrowStart() {
		return p.parseArrowFunc()
	}

	x := p.parseCondExpr()
	if !p.token.IsAssign() {
		return x
	}
	if !isAssignable(x) {
		p.error(x.Pos(), "invalid assignment target")
	}
	op, pos := p.token, p.pos
	p.next()
	rhs := p.parseAssignExpr()
	return &ast.AssignExpr{LHS: x, RHS: rhs, Op: op, OpPos: pos}
}

func isAssignable(x ast.Expr) bool {
	switch x := x.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
		return true
	case *ast.ParenExpr:
		return isAssignable(x.X)
	case *ast.AsExpr:
		return isAssignable(x.X)
	}
	return false
}

func (p *Parser) isArrowStart() bool {
	switch p.token {
	case token.Ident:
		return p.peek(1).tok == token.Arrow
	case token.LParen:
		return p.isArrowParams(p.idx)
	case token.Less:
		// <T>(x: T) => x
		depth := 0
		for i := p.idx; i < len(p.toks); i++ {
			switch p.toks[i].tok {
			case token.Less:
				depth++
			case token.Greater:
				depth--
			case token.EOF, token.Semicolon:
				return false
			}
			if depth == 0 {
				return p.tokenAt(i+1).tok == token.LParen && p.isArrowParams(i+1)
			}
		}
	}
	return false
}

// isArrowParams reports whether the parenthesized list starting at index
// start is followed by '=>' or by a return type annotation and '=>'.
func (p *Parser) isArrowParams(start int) bool {
	depth := 0
	for i := start; i < len(p.toks); i++ {
		switch p.toks[i].tok {
		case token.LParen, token.LBrack, token.LBrace:
			depth++
		case token.RParen, token.RBrack, token.RBrace:
			depth--
		case token.EOF:
			return false
		}
		if depth == 0 {
			next := p.tokenAt(i + 1)
			if next.tok == token.Arrow {
				return true
			}
			return next.tok == token.Colon &&
				p.tokenAt(i+2).tok == token.Ident &&
				p.tokenAt(i+3).tok == token.Arrow
		}
	}
	return false
}

func (p *Parser) parseCondExpr() ast.Expr {
	x := p.parseBinaryExpr(token.LowestPrec + 1)
	if p.token != token.Question {
		return x
	}

	questionPos := p.expect(token.Question)
	prevNoIn := p.noIn
	p.noIn = false
	trueExpr := p.parseAssignExpr()
	p.noIn = prevNoIn
	colonPos := p.expect(token.Colon)
	falseExpr := p.parseAssignExpr()

	return &ast.CondExpr{
		Cond:        x,
		True:        trueExpr,
		False:       falseExpr,
		QuestionPos: questionPos,
		ColonPos:    colonPos,
	}
}

const relationalPrec = 7

func (p *Parser) parseBinaryExpr(prec1 int) ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "BinaryExpression"))
	}

	x := p.parseUnaryExpr()

	for {
		if prec1 <= relationalPrec && p.token == token.Ident &&
			p.tokenLit == "as" && !p.newline {
			p.next()
			name, end := p.parseTypeText()
			x = &ast.AsExpr{X: x, TypeName: name, TypeEnd: end}
			continue
		}

		op, prec := p.token, p.token.Precedence()
		if op == token.In && p.noIn {
			return x
		}
		if prec < prec1 {
			return x
		}

		pos := p.expect(op)

		var y ast.Expr
		if op == token.Exp {
			// right associative
			y = p.parseBinaryExpr(prec)
		} else {
			y = p.parseBinaryExpr(prec + 1)
		}

		switch op {
		case token.LAnd, token.LOr, token.Nullish:
			x = &ast.LogicalExpr{X: x, Y: y, Op: op, OpPos: pos}
		default:
			x = &ast.BinaryExpr{X: x, Y: y, Op: op, OpPos: pos}
		}
	}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "UnaryExpression"))
	}

	switch p.token {
	case token.Not, token.BitNot, token.Add, token.Sub,
		token.Typeof, token.Void, token.Delete:
		pos, op := p.pos, p.token
		p.next()
		x := p.parseUnaryExpr()
		return &ast.UnaryExpr{Op: op, OpPos: pos, X: x}
	case token.Inc, token.Dec:
		pos, op := p.pos, p.token
		p.next()
		x := p.parseUnaryExpr()
		if !isAssignable(x) {
			p.error(x.Pos(), "invalid update target")
		}
		return &ast.UpdateExpr{Op: op, OpPos: pos, Prefix: true, X: x}
	}

	x := p.parseLHSExpr(true)
	if (p.token == token.Inc || p.token == token.Dec) && !p.newline {
		if !isAssignable(x) {
			p.error(x.Pos(), "invalid update target")
		}
		x = &ast.UpdateExpr{Op: p.token, OpPos: p.pos, X: x}
		p.next()
	}
	return x
}

// parseLHSExpr parses member, element, call and new expressions. Calls are
// not consumed when allowCall is false (extends clause, new callee).
func (p *Parser) parseLHSExpr(allowCall bool) ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "LHSExpression"))
	}

	var x ast.Expr
	if p.token == token.New {
		x = p.parseNewExpr()
	} else {
		x = p.parsePrimaryExpr()
	}

L:
	for {
		switch p.token {
		case token.Period:
			p.next()
			x = &ast.MemberExpr{X: x, Name: p.parsePropertyIdent()}
		case token.LBrack:
			lbrack := p.pos
			p.next()
			prevNoIn := p.noIn
			p.noIn = false
			index := p.parseExpr()
			p.noIn = prevNoIn
			rbrack := p.expect(token.RBrack)
			x = &ast.IndexExpr{X: x, LBrack: lbrack, Index: index, RBrack: rbrack}
		case token.LParen:
			if !allowCall {
				break L
			}
			lparen, args, rparen := p.parseArgs()
			x = &ast.CallExpr{Func: x, LParen: lparen, Args: args, RParen: rparen}
		case token.Not:
			// non-null assertion
			if p.newline {
				break L
			}
			p.next()
		default:
			break L
		}
	}
	return x
}

func (p *Parser) parseNewExpr() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "NewExpression"))
	}

	pos := p.expect(token.New)
	callee := p.parseLHSExpr(false)
	p.skipTypeParams()
	x := &ast.NewExpr{NewPos: pos, Func: callee}
	if p.token == token.LParen {
		_, x.Args, x.RParen = p.parseArgs()
	}
	return x
}

func (p *Parser) parseArgs() (lparen ast.Pos, args []ast.Expr, rparen ast.Pos) {
	if p.trace {
		defer untracep(tracep(p, "Arguments"))
	}

	lparen = p.expect(token.LParen)
	prevNoIn := p.noIn
	p.noIn = false
	for p.token != token.RParen && p.token != token.EOF {
		if p.token == token.Ellipsis {
			pos := p.pos
			p.next()
			args = append(args, &ast.SpreadElement{Ellipsis: pos, X: p.parseAssignExpr()})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if !p.atComma("argument list", token.RParen) {
			break
		}
		p.next()
	}
	p.noIn = prevNoIn
	rparen = p.expect(token.RParen)
	return
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "PrimaryExpression"))
	}

	switch p.token {
	case token.Ident:
		return p.parseIdent()
	case token.Number:
		return p.parseNumberLit()
	case token.String:
		v, err := Unquote(p.tokenLit)
		if err != nil {
			p.error(p.pos, "invalid string literal")
		}
		x := &ast.StringLit{Value: v, ValuePos: p.pos, Literal: p.tokenLit}
		p.next()
		return x
	case token.True, token.False:
		x := &ast.BoolLit{Value: p.token == token.True, ValuePos: p.pos}
		p.next()
		return x
	case token.Null:
		x := &ast.NullLit{TokenPos: p.pos}
		p.next()
		return x
	case token.This:
		x := &ast.ThisExpr{TokenPos: p.pos}
		p.next()
		return x
	case token.Super:
		x := &ast.SuperExpr{TokenPos: p.pos}
		p.next()
		return x
	case token.LParen:
		lparen := p.pos
		p.next()
		prevNoIn := p.noIn
		p.noIn = false
		x := p.parseExpr()
		p.noIn = prevNoIn
		rparen := p.expect(token.RParen)
		return &ast.ParenExpr{LParen: lparen, X: x, RParen: rparen}
	case token.LBrack:
		return p.parseArrayLit()
	case token.LBrace:
		return p.parseObjectLit()
	case token.Function:
		pos := p.pos
		p.next()
		var name *ast.Ident
		if p.token == token.Ident {
			name = p.parseIdent()
		}
		return p.parseFuncRest(pos, name)
	case token.Class:
		return p.parseClass(false)
	}

	pos := p.pos
	p.errorExpected(pos, "operand")
	p.advance(stmtStart)
	return &ast.BadExpr{From: pos, To: p.pos}
}

func (p *Parser) parseNumberLit() ast.Expr {
	lit, pos := p.tokenLit, p.pos
	p.next()
	x := &ast.NumberLit{ValuePos: pos, Literal: lit}

	s := strings.ReplaceAll(strings.TrimSuffix(lit, "n"), "_", "")
	if len(s) > 1 && s[0] == '0' && isDecimal(rune(s[1])) {
		// legacy octal
		s = "0o" + s[1:]
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err == nil {
		x.Value = v
		return x
	}
	f, ferr := strconv.ParseFloat(s, 64)
	if ferr != nil {
		p.error(pos, "invalid number literal "+lit)
		return x
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		x.Value = int64(f)
		return x
	}
	x.Float = true
	return x
}

func (p *Parser) parseArrayLit() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "ArrayLit"))
	}

	lbrack := p.expect(token.LBrack)
	prevNoIn := p.noIn
	p.noIn = false

	var elements []ast.Expr
	for p.token != token.RBrack && p.token != token.EOF {
		switch p.token {
		case token.Comma:
			p.error(p.pos, "array holes are not supported")
		case token.Ellipsis:
			pos := p.pos
			p.next()
			elements = append(elements,
				&ast.SpreadElement{Ellipsis: pos, X: p.parseAssignExpr()})
		default:
			elements = append(elements, p.parseAssignExpr())
		}
		if !p.atComma("array literal", token.RBrack) {
			break
		}
		p.next()
	}

	p.noIn = prevNoIn
	rbrack := p.expect(token.RBrack)
	return &ast.ArrayLit{Elements: elements, LBrack: lbrack, RBrack: rbrack}
}

func (p *Parser) parseObjectLit() ast.Expr {
	if p.trace {
		defer untracep(tracep(p, "ObjectLit"))
	}

	lbrace := p.expect(token.LBrace)
	prevNoIn := p.noIn
	p.noIn = false

	var props []*ast.Property
	for p.token != token.RBrace && p.token != token.EOF {
		props = append(props, p.parseProperty())
		if !p.atComma("object literal", token.RBrace) {
			break
		}
		p.next()
	}

	p.noIn = prevNoIn
	rbrace := p.expect(token.RBrace)
	return &ast.ObjectLit{LBrace: lbrace, Props: props, RBrace: rbrace}
}

func (p *Parser) parseProperty() *ast.Property {
	pos := p.pos
	if p.token == token.Ellipsis {
		p.next()
		return &ast.Property{
			Value: &ast.SpreadElement{Ellipsis: pos, X: p.parseAssignExpr()},
		}
	}

	prop := &ast.Property{}
	switch p.token {
	case token.LBrack:
		p.next()
		prop.Key = p.parseAssignExpr()
		prop.Computed = true
		p.expect(token.RBrack)
	case token.String:
		v, _ := Unquote(p.tokenLit)
		prop.Key = &ast.StringLit{Value: v, ValuePos: pos, Literal: p.tokenLit}
		p.next()
	case token.Number:
		prop.Key = p.parseNumberLit()
	default:
		if p.token == token.Ident && (p.tokenLit == "get" || p.tokenLit == "set") &&
			(p.peek(1).tok == token.Ident || p.peek(1).tok.IsKeyword()) {
			p.error(pos, "accessors are not supported")
			p.next()
		}
		isIdent := p.token == token.Ident
		prop.Key = p.parsePropertyIdent()
		if isIdent && (p.token == token.Comma || p.token == token.RBrace) {
			key := prop.Key.(*ast.Ident)
			prop.Shorthand = true
			prop.Value = &ast.Ident{Name: key.Name, NamePos: key.NamePos}
			return prop
		}
	}

	switch p.token {
	case token.LParen, token.Less:
		prop.Method = true
		prop.Value = p.parseFuncRest(pos, nil)
	default:
		p.expect(token.Colon)
		prop.Value = p.parseAssignExpr()
	}
	return prop
}

func (p *Parser) parseIdent() *ast.Ident {
	pos := p.pos
	name := "_"

	if p.token == token.Ident {
		name = p.tokenLit
		p.next()
	} else {
		p.expect(token.Ident)
	}
	return &ast.Ident{NamePos: pos, Name: name}
}

// parsePropertyIdent accepts identifiers and reserved words.
func (p *Parser) parsePropertyIdent() *ast.Ident {
	if p.token.IsKeyword() {
		x := &ast.Ident{NamePos: p.pos, Name: p.tokenLit}
		p.next()
		return x
	}
	return p.parseIdent()
}

// ---------------------------------------------------------------------------
// Type annotations are skipped; only `as` keeps the source text.

func (p *Parser) parseTypeText() (string, ast.Pos) {
	start := p.idx
	p.skipType()
	var sb strings.Builder
	end := p.pos
	for i := start; i < p.idx; i++ {
		t := p.toks[i]
		sb.WriteString(t.lit)
		end = t.pos + ast.Pos(len(t.lit))
	}
	return sb.String(), end
}

func (p *Parser) skipType() {
	if p.token == token.Or || p.token == token.And {
		p.next()
	}
	p.skipPrimaryType()
	for {
		switch {
		case p.token == token.LBrack && p.peek(1).tok == token.RBrack && !p.newline:
			p.next()
			p.next()
		case p.token == token.Or || p.token == token.And:
			p.next()
			p.skipPrimaryType()
		default:
			return
		}
	}
}

func (p *Parser) skipPrimaryType() {
	switch p.token {
	case token.Ident:
		switch p.tokenLit {
		case "keyof", "readonly", "unique":
			p.next()
			p.skipPrimaryType()
			return
		}
		p.skipTypeRef()
	case token.Typeof:
		p.next()
		p.skipTypeRef()
	case token.Void, token.Null, token.True, token.False, token.Number,
		token.String, token.This:
		p.next()
	case token.Sub:
		p.next()
		p.expect(token.Number)
	case token.LBrace, token.LBrack:
		p.skipBalanced()
	case token.LParen:
		p.skipBalanced()
		if p.token == token.Arrow {
			p.next()
			p.skipType()
		}
	case token.New:
		p.next()
		p.skipPrimaryType()
	case token.Less:
		p.skipTypeParams()
		p.skipPrimaryType()
	default:
		p.errorExpected(p.pos, "type")
		p.next()
	}
}

func (p *Parser) skipTypeRef() {
	p.next()
	for p.token == token.Period {
		p.next()
		p.parsePropertyIdent()
	}
	p.skipTypeParams()
}

// skipTypeParams skips a <...> list; '>>' and '>>>' close several levels.
func (p *Parser) skipTypeParams() {
	if p.token != token.Less {
		return
	}
	depth := 0
	for p.token != token.EOF {
		switch p.token {
		case token.Less:
			depth++
		case token.Greater:
			depth--
		case token.Shr:
			depth -= 2
		case token.UShr:
			depth -= 3
		}
		p.next()
		if depth <= 0 {
			return
		}
	}
}

// skipBalanced skips from an opening bracket to its matching close.
func (p *Parser) skipBalanced() {
	depth := 0
	for p.token != token.EOF {
		switch p.token {
		case token.LParen, token.LBrack, token.LBrace:
			depth++
		case token.RParen, token.RBrack, token.RBrace:
			depth--
		}
		p.next()
		if depth <= 0 {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Helpers

func isContextual(t tokenInfo, name string) bool {
	return t.tok == token.Ident && t.lit == name
}

func (p *Parser) tokenAt(i int) tokenInfo {
	if i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) peek(n int) tokenInfo {
	return p.tokenAt(p.idx + n)
}

func (p *Parser) atStmtEnd() bool {
	switch p.token {
	case token.Semicolon, token.RBrace, token.EOF:
		return true
	}
	return p.newline
}

func (p *Parser) atComma(context string, follow token.Token) bool {
	if p.token == token.Comma {
		return true
	}
	if p.token != follow {
		msg := "missing ','"
		if p.newline {
			msg += " before newline"
		}
		p.error(p.pos, msg+" in "+context)
		return true // "insert" comma and continue
	}
	return false
}

func (p *Parser) expect(tok token.Token) ast.Pos {
	pos := p.pos

	if p.token != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next()
	return pos
}

// expectSemi implements automatic semicolon insertion: a semicolon may be
// omitted before '}', at the end of input or after a line terminator.
func (p *Parser) expectSemi() {
	switch {
	case p.token == token.Semicolon:
		p.next()
	case p.token == token.RBrace || p.token == token.EOF || p.newline:
	default:
		p.errorExpected(p.pos, "';'")
		p.advance(stmtStart)
	}
}

func (p *Parser) advance(to map[token.Token]bool) {
	for ; p.token != token.EOF; p.next() {
		if to[p.token] {
			if p.pos == p.syncPos && p.syncCount < 10 {
				p.syncCount++
				return
			}
			if p.pos > p.syncPos {
				p.syncPos = p.pos
				p.syncCount = 0
				return
			}
		}
	}
}

func (p *Parser) error(pos ast.Pos, msg string) {
	filePos := p.file.Position(pos)

	n := len(p.errors)
	if n > 0 && p.errors[n-1].Pos.Line == filePos.Line {
		// discard errors reported on the same line
		return
	}
	if n > 10 {
		// too many errors; terminate early
		panic(bailout{})
	}
	p.errors.Add(filePos, msg)
}

func (p *Parser) errorExpected(pos ast.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.pos {
		// error happened at the current position: provide more specific
		switch {
		case p.token.IsLiteral():
			msg += ", found " + p.tokenLit
		default:
			msg += ", found '" + p.token.String() + "'"
		}
	}
	p.error(pos, msg)
}

func (p *Parser) next() {
	if p.trace && p.pos.IsValid() {
		s := p.token.String()
		switch {
		case p.token.IsLiteral():
			p.printTrace(s, p.tokenLit)
		case p.token.IsOperator(), p.token.IsKeyword():
			p.printTrace(`"` + s + `"`)
		default:
			p.printTrace(s)
		}
	}
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	t := p.toks[p.idx]
	p.token, p.tokenLit, p.pos, p.newline = t.tok, t.lit, t.pos, t.newline
}

func (p *Parser) printTrace(a ...interface{}) {
	const (
		dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
		n    = len(dots)
	)

	filePos := p.file.Position(p.pos)
	_, _ = fmt.Fprintf(p.traceOut, "%5d: %5d:%3d: ", p.pos, filePos.Line,
		filePos.Column)
	i := 2 * p.indent
	for i > n {
		_, _ = fmt.Fprint(p.traceOut, dots)
		i -= n
	}
	_, _ = fmt.Fprint(p.traceOut, dots[0:i])
	_, _ = fmt.Fprintln(p.traceOut, a...)
}

func tracep(p *Parser, msg string) *Parser {
	p.printTrace(msg, "(")
	p.indent++
	return p
}

func untracep(p *Parser) {
	p.indent--
	p.printTrace(")")
}

// Parse parses src as a file named name added to fileSet.
func Parse(fileSet *SourceFileSet, name string, src []byte) (*ast.File, error) {
	srcFile := fileSet.AddFile(name, -1, len(src))
	return NewParser(srcFile, src, nil).ParseFile()
}
