// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"fmt"
	"strings"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/parser"
)

// DiagnosticCode classifies a diagnostic.
type DiagnosticCode string

// Diagnostic codes.
const (
	UnsupportedSyntax     DiagnosticCode = "UNSUPPORTED_SYNTAX"
	TranspilationError    DiagnosticCode = "TRANSPILATION_ERROR"
	UnknownType           DiagnosticCode = "UNKNOWN_TYPE"
	ExpectedNumber        DiagnosticCode = "EXPECTED_NUMBER"
	ExpectedString        DiagnosticCode = "EXPECTED_STRING"
	UnknownSymbol         DiagnosticCode = "UNKNOWN_SYMBOL"
	InvalidContractType   DiagnosticCode = "INVALID_CONTRACT_TYPE"
	InvalidContractMethod DiagnosticCode = "INVALID_CONTRACT_METHOD"
	SomethingWentWrong    DiagnosticCode = "SOMETHING_WENT_WRONG"
)

// Severity of a diagnostic.
type Severity int

// Severities.
const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "Warning"
	}
	return "Error"
}

// Diagnostic is a user facing compile message.
type Diagnostic struct {
	Code     DiagnosticCode
	Severity Severity
	Message  string
	Pos      ast.Pos
	FilePos  parser.SourceFilePos
}

func (d *Diagnostic) Error() string {
	at := d.FilePos.String()
	if !d.FilePos.IsValid() {
		at = fmt.Sprintf("pos %d", d.Pos)
	}
	return fmt.Sprintf("Compile %s: %s [%s]\n\tat %s",
		d.Severity, d.Message, d.Code, at)
}

// Diagnostics is a list of diagnostics in report order.
type Diagnostics []*Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (d Diagnostics) HasErrors() bool {
	for _, x := range d {
		if x.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error severity diagnostics.
func (d Diagnostics) Errors() Diagnostics {
	var out Diagnostics
	for _, x := range d {
		if x.Severity == SeverityError {
			out = append(out, x)
		}
	}
	return out
}

func (d Diagnostics) Error() string {
	errs := d.Errors()
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(errs[0].Error())
	fmt.Fprintf(&sb, " (and %d more errors)", len(errs)-1)
	return sb.String()
}

// Err returns d as an error if it holds errors, nil otherwise.
func (d Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}
	return d
}

// InternalError is a violated compiler invariant. The builder panics with
// it and Compile recovers it.
type InternalError struct {
	Node    ast.Node
	Message string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Message
}

func internalErrorf(node ast.Node, format string, args ...interface{}) {
	panic(&InternalError{Node: node, Message: fmt.Sprintf(format, args...)})
}

// CompilerError wraps an error with the node it was raised for.
type CompilerError struct {
	FileSet *parser.SourceFileSet
	Node    ast.Node
	Err     error
}

func (e *CompilerError) Error() string {
	var filePos parser.SourceFilePos
	if e.FileSet != nil && e.Node != nil {
		filePos = e.FileSet.Position(e.Node.Pos())
	}
	return fmt.Sprintf("Compile Error: %s\n\tat %s", e.Err.Error(), filePos)
}

func (e *CompilerError) Unwrap() error {
	return e.Err
}

// Context collects diagnostics. Only the emitting pass reports, so every
// diagnostic appears once.
type Context struct {
	fileSet     *parser.SourceFileSet
	collect     bool
	diagnostics Diagnostics
}

// NewContext returns a Context resolving positions with fileSet, which may
// be nil.
func NewContext(fileSet *parser.SourceFileSet) *Context {
	return &Context{fileSet: fileSet}
}

// Diagnostics returns the collected diagnostics.
func (c *Context) Diagnostics() Diagnostics {
	return c.diagnostics
}

func (c *Context) report(node ast.Node, sev Severity, code DiagnosticCode, msg string) {
	if !c.collect {
		return
	}
	d := &Diagnostic{Code: code, Severity: sev, Message: msg}
	if node != nil {
		d.Pos = node.Pos()
		if c.fileSet != nil {
			d.FilePos = c.fileSet.Position(d.Pos)
		}
	}
	if sev == SeverityError {
		log.Info("diagnostic", "code", string(code), "message", msg, "pos", d.FilePos.String())
	} else {
		log.Warning("diagnostic", "code", string(code), "message", msg, "pos", d.FilePos.String())
	}
	c.diagnostics = append(c.diagnostics, d)
}

// ReportError adds an error diagnostic.
func (c *Context) ReportError(node ast.Node, code DiagnosticCode, msg string) {
	c.report(node, SeverityError, code, msg)
}

// ReportWarning adds a warning diagnostic.
func (c *Context) ReportWarning(node ast.Node, code DiagnosticCode, msg string) {
	c.report(node, SeverityWarning, code, msg)
}

// ReportUnsupported reports node as unsupported syntax.
func (c *Context) ReportUnsupported(node ast.Node) {
	c.ReportError(node, UnsupportedSyntax, "Unsupported syntax: "+node.Kind().String())
}

// ReportExpectedTranspiled reports a node that should have been lowered by
// an earlier stage.
func (c *Context) ReportExpectedTranspiled(node ast.Node) {
	c.ReportError(node, TranspilationError,
		"Expected "+node.Kind().String()+" to be transpiled")
}

// CheckNumber reports node unless its static type is exactly number.
func (c *Context) CheckNumber(node ast.Node, t ast.Type) bool {
	if t.Only(ast.Number) {
		return true
	}
	c.ReportError(node, ExpectedNumber, "Expected number, found "+t.String())
	return false
}

// CheckString reports node unless its static type is exactly string.
func (c *Context) CheckString(node ast.Node, t ast.Type) bool {
	if t.Only(ast.String) {
		return true
	}
	c.ReportError(node, ExpectedString, "Expected string, found "+t.String())
	return false
}
