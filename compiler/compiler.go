// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"fmt"
	"io"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/parser"
)

var log = commonlog.GetLogger("neoone.compiler")

// Options represents customizable options for Compile.
type Options struct {
	// FileSet resolves diagnostic positions, may be nil.
	FileSet *parser.SourceFileSet
	// Trace receives the emitted instructions of the emitting pass.
	Trace io.Writer
	// ResultValue leaves the value of the last expression statement on the
	// stack when the script halts.
	ResultValue bool
	// Registry overrides the default node compilers.
	Registry *Registry
	// OnVisited runs in the root scope of both passes after the last
	// statement, with the file as node. Code it emits runs before the
	// script halts.
	OnVisited func(sb ScriptBuilder, node ast.Node)
}

// SourceMapping maps a bytecode offset to the source position of the node
// that emitted it.
type SourceMapping struct {
	Offset int
	Pos    ast.Pos
}

// SourceMap is a list of mappings ordered by offset.
type SourceMap []SourceMapping

// Lookup returns the source position of the instruction at offset.
func (m SourceMap) Lookup(offset int) (ast.Pos, bool) {
	i := sort.Search(len(m), func(i int) bool { return m[i].Offset > offset })
	if i == 0 {
		return ast.NoPos, false
	}
	return m[i-1].Pos, true
}

// Result is the output of a successful compilation.
type Result struct {
	Bytecode    []byte
	Diagnostics Diagnostics
	SourceMap   SourceMap
}

// Compile compiles file in two passes. The capturing pass counts the
// bindings of every scope and the emitting pass generates the script. If
// any error diagnostic is reported, the result is returned together with
// the diagnostics as error.
func Compile(file *ast.File, opts Options) (res *Result, err error) {
	registry := opts.Registry
	if registry == nil {
		registry = defaultRegistry
	}
	counts := make(map[scopeKey]int)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*InternalError)
		if !ok {
			panic(r)
		}
		log.Warning("internal compiler error", "message", ie.Message)
		res = nil
		err = &CompilerError{FileSet: opts.FileSet, Node: ie.Node, Err: ie}
	}()

	capture := newScriptBuilder(NewContext(opts.FileSet), registry, counts, true)
	capture.resultValue = opts.ResultValue
	capture.onVisited = opts.OnVisited
	capture.process(file)
	log.Debug("capturing pass done", "file", file.Name, "scopes", len(counts))

	ctx := NewContext(opts.FileSet)
	ctx.collect = true
	emit := newScriptBuilder(ctx, registry, counts, false)
	emit.resultValue = opts.ResultValue
	emit.onVisited = opts.OnVisited
	emit.trace = opts.Trace
	emit.process(file)
	bytecode, sm := emit.finalize()
	log.Debug("emitting pass done", "file", file.Name,
		"bytes", len(bytecode), "functions", emit.jumpTable.Len(),
		"diagnostics", len(ctx.diagnostics))

	res = &Result{
		Bytecode:    bytecode,
		Diagnostics: ctx.diagnostics,
		SourceMap:   sm,
	}
	return res, ctx.diagnostics.Err()
}

// CompileSource parses src and compiles it.
func CompileSource(fileSet *parser.SourceFileSet, name string, src []byte, opts Options) (*Result, error) {
	if fileSet == nil {
		fileSet = parser.NewFileSet()
	}
	file, err := parser.Parse(fileSet, name, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	opts.FileSet = fileSet
	return Compile(file, opts)
}
