// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// ScriptBuilder is the emitter interface node compilers and helpers work
// against. The same traversal runs twice: first with capturing scopes that
// only count declarations, then with resolved scopes that emit real code.
type ScriptBuilder interface {
	// Context returns the diagnostics context.
	Context() *Context
	// Scope returns the current lexical scope.
	Scope() Scope
	// TypeOf returns the static type of node, Unknown if it has none.
	TypeOf(node ast.Node) ast.Type
	// Visit compiles node with the registered node compiler.
	Visit(node ast.Node, opts VisitOptions)
	// WithScope runs fn inside a new scope keyed by node.
	WithScope(node ast.Node, opts VisitOptions, fn func(VisitOptions))
	// WithProgramCounter runs fn with a helper whose GetLast target is
	// resolved after fn's code.
	WithProgramCounter(fn func(pc *ProgramCounterHelper))
	// DeferProgramCounter allocates an unresolved target.
	DeferProgramCounter() ProgramCounter
	// ResolveProgramCounter resolves pc at the current position.
	ResolveProgramCounter(pc ProgramCounter)
	// Capture collects the code emitted by fn into a relocatable fragment.
	Capture(fn func()) *Fragment
	// EmitBytecode appends a captured fragment.
	EmitBytecode(f *Fragment)
	EmitOp(node ast.Node, op vm.Opcode)
	EmitPushInt(node ast.Node, v int64)
	EmitPushBoolean(node ast.Node, v bool)
	EmitPushString(node ast.Node, v string)
	EmitPushBytes(node ast.Node, b []byte)
	// EmitJump emits a jump opcode whose offset is resolved later.
	EmitJump(node ast.Node, op vm.Opcode, pc ProgramCounter)
	// EmitCall emits a CALL to the jump table dispatcher.
	EmitCall(node ast.Node)
	EmitHelper(node ast.Node, opts VisitOptions, h Helper)
	// AddFunction registers a jump table entry whose body is emitted after
	// the main program in the current lexical scope. It returns the entry
	// index.
	AddFunction(node ast.Node, body func()) int
	// AddHelperFunction registers body once per key in the root scope and
	// returns its entry index.
	AddHelperFunction(node ast.Node, key Helper, body func()) int
	// InFunction reports whether code is emitted inside a jump table body.
	InFunction() bool
	// WithClass runs fn with ci as the enclosing class.
	WithClass(ci *ClassInfo, fn func())
	// CurrentClass returns the enclosing class or nil.
	CurrentClass() *ClassInfo
}

type scriptBuilder struct {
	ctx         *Context
	registry    *Registry
	capturing   bool
	counts      map[scopeKey]int
	entered     map[ast.Node]int
	scope       Scope
	root        Scope
	pcs         *pcTable
	frame       *Fragment
	jumpTable   JumpTable
	jumpTablePC ProgramCounter
	helpers     map[Helper]int
	inFunction  bool
	class       *ClassInfo
	resultValue bool
	onVisited   func(sb ScriptBuilder, node ast.Node)
	trace       io.Writer
	indent      int
}

var _ ScriptBuilder = (*scriptBuilder)(nil)

func newScriptBuilder(
	ctx *Context,
	registry *Registry,
	counts map[scopeKey]int,
	capturing bool,
) *scriptBuilder {
	return &scriptBuilder{
		ctx:       ctx,
		registry:  registry,
		capturing: capturing,
		counts:    counts,
		entered:   make(map[ast.Node]int),
		pcs:       newPCTable(),
		frame:     &Fragment{},
		helpers:   make(map[Helper]int),
	}
}

func (sb *scriptBuilder) Context() *Context { return sb.ctx }

func (sb *scriptBuilder) Scope() Scope { return sb.scope }

func (sb *scriptBuilder) InFunction() bool { return sb.inFunction }

func (sb *scriptBuilder) CurrentClass() *ClassInfo { return sb.class }

func (sb *scriptBuilder) WithClass(ci *ClassInfo, fn func()) {
	prev := sb.class
	sb.class = ci
	fn()
	sb.class = prev
}

func (sb *scriptBuilder) TypeOf(node ast.Node) ast.Type {
	if e, ok := node.(ast.Expr); ok {
		return ast.TypeOf(e)
	}
	return ast.Unknown
}

func (sb *scriptBuilder) Visit(node ast.Node, opts VisitOptions) {
	if sb.trace != nil {
		defer untracec(tracec(sb, node.Kind().String()))
	}
	c, ok := sb.registry.Lookup(node.Kind())
	if !ok {
		sb.ctx.ReportUnsupported(node)
		if opts.SetValue {
			sb.EmitOp(node, vm.DROP)
		}
		if opts.PushValue {
			sb.EmitHelper(node, opts, createUndefined{})
		}
		return
	}
	c.Visit(sb, node, opts)
}

func (sb *scriptBuilder) WithScope(node ast.Node, opts VisitOptions, fn func(VisitOptions)) {
	key := scopeKey{node: node, index: sb.entered[node]}
	sb.entered[node]++

	var s Scope
	if sb.capturing {
		s = newCapturingScope(sb.scope, key, sb.counts)
	} else {
		count, ok := sb.counts[key]
		if !ok {
			internalErrorf(node, "scope %s#%d was not captured", node.Kind(), key.index)
		}
		s = newResolvedScope(sb.scope, count)
	}
	prev := sb.scope
	if prev == nil {
		sb.root = s
	}
	sb.scope = s
	s.Emit(sb, node, opts, fn)
	sb.scope = prev
}

func (sb *scriptBuilder) WithProgramCounter(fn func(pc *ProgramCounterHelper)) {
	h := &ProgramCounterHelper{sb: sb, last: sb.DeferProgramCounter()}
	fn(h)
	sb.ResolveProgramCounter(h.last)
}

func (sb *scriptBuilder) DeferProgramCounter() ProgramCounter {
	return sb.pcs.alloc()
}

func (sb *scriptBuilder) ResolveProgramCounter(pc ProgramCounter) {
	if sb.pcs.target(pc) >= 0 {
		internalErrorf(nil, "program counter %d resolved twice", pc)
	}
	sb.pcs.targets[pc] = sb.frame.length
	sb.frame.resolved = append(sb.frame.resolved, pc)
}

func (sb *scriptBuilder) Capture(fn func()) *Fragment {
	prev := sb.frame
	f := &Fragment{}
	sb.frame = f
	fn()
	sb.frame = prev
	return f
}

func (sb *scriptBuilder) EmitBytecode(f *Fragment) {
	base := sb.frame.length
	for _, pc := range f.resolved {
		sb.pcs.targets[pc] += base
		sb.frame.resolved = append(sb.frame.resolved, pc)
	}
	for _, it := range f.items {
		sb.frame.append(it)
	}
}

func (sb *scriptBuilder) emit(node ast.Node, code ...byte) {
	sb.frame.append(codeItem{node: node, code: code})
}

func (sb *scriptBuilder) EmitOp(node ast.Node, op vm.Opcode) {
	if vm.IsJump(op) {
		internalErrorf(node, "%s needs a target", vm.OpcodeName(op))
	}
	if sb.trace != nil {
		sb.printTrace(fmt.Sprintf("%04d %s", sb.frame.length, vm.OpcodeName(op)))
	}
	sb.emit(node, op)
}

// EmitPushInt pushes v with the shortest encoding: PUSHM1 for -1, a single
// zero byte for 0, PUSH1..PUSH15 and little endian two's complement bytes
// otherwise.
func (sb *scriptBuilder) EmitPushInt(node ast.Node, v int64) {
	switch {
	case v == -1:
		sb.EmitOp(node, vm.PUSHM1)
	case v == 0:
		sb.emit(node, vm.PUSHBYTES1, 0x00)
	case v > 0 && v < 16:
		sb.EmitOp(node, vm.PUSH1+byte(v)-1)
	default:
		sb.EmitPushBytes(node, vm.IntToBytes(big.NewInt(v)))
	}
}

func (sb *scriptBuilder) EmitPushBoolean(node ast.Node, v bool) {
	if v {
		sb.EmitOp(node, vm.PUSH1)
	} else {
		sb.EmitOp(node, vm.PUSH0)
	}
}

func (sb *scriptBuilder) EmitPushString(node ast.Node, v string) {
	sb.EmitPushBytes(node, []byte(v))
}

func (sb *scriptBuilder) EmitPushBytes(node ast.Node, b []byte) {
	n := len(b)
	var code []byte
	switch {
	case n <= int(vm.PUSHBYTES75):
		code = append([]byte{byte(n)}, b...)
	case n < 0x100:
		code = append([]byte{vm.PUSHDATA1, byte(n)}, b...)
	case n < 0x10000:
		code = []byte{vm.PUSHDATA2, 0, 0}
		binary.LittleEndian.PutUint16(code[1:], uint16(n))
		code = append(code, b...)
	default:
		code = []byte{vm.PUSHDATA4, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(code[1:], uint32(n))
		code = append(code, b...)
	}
	if sb.trace != nil {
		sb.printTrace(fmt.Sprintf("%04d PUSH %x", sb.frame.length, b))
	}
	sb.emit(node, code...)
}

func (sb *scriptBuilder) EmitJump(node ast.Node, op vm.Opcode, pc ProgramCounter) {
	if !vm.IsJump(op) {
		internalErrorf(node, "%s is not a jump", vm.OpcodeName(op))
	}
	if !pc.IsValid() {
		internalErrorf(node, "%s without a target", vm.OpcodeName(op))
	}
	if sb.trace != nil {
		sb.printTrace(fmt.Sprintf("%04d %s -> #%d", sb.frame.length, vm.OpcodeName(op), pc))
	}
	sb.emit(node, op)
	sb.frame.append(codeItem{node: node, pc: pc})
}

func (sb *scriptBuilder) EmitCall(node ast.Node) {
	sb.EmitJump(node, vm.CALL, sb.jumpTablePC)
}

func (sb *scriptBuilder) EmitHelper(node ast.Node, opts VisitOptions, h Helper) {
	if sb.trace != nil {
		defer untracec(tracec(sb, fmt.Sprintf("helper %T", h)))
	}
	h.Emit(sb, node, opts)
}

func (sb *scriptBuilder) AddFunction(node ast.Node, body func()) int {
	return sb.jumpTable.add(&jumpTableEntry{
		node:  node,
		scope: sb.scope,
		class: sb.class,
		pc:    sb.DeferProgramCounter(),
		body:  body,
	})
}

func (sb *scriptBuilder) AddHelperFunction(node ast.Node, key Helper, body func()) int {
	if entry, ok := sb.helpers[key]; ok {
		return entry
	}
	entry := sb.jumpTable.add(&jumpTableEntry{
		node:  node,
		scope: sb.root,
		pc:    sb.DeferProgramCounter(),
		body:  body,
	})
	sb.helpers[key] = entry
	return entry
}

// process lays out the program as JMP main, the jump table and the main
// program.
func (sb *scriptBuilder) process(file *ast.File) {
	sb.processWith(file, func(opts VisitOptions) {
		sb.EmitHelper(file, opts, processStatements{
			stmts:       file.Stmts,
			resultValue: sb.resultValue,
		})
		if sb.onVisited != nil {
			sb.onVisited(sb, file)
		}
	})
}

// processWith runs body in the root scope once the global object is set.
func (sb *scriptBuilder) processWith(file *ast.File, body func(opts VisitOptions)) {
	sb.jumpTablePC = sb.DeferProgramCounter()
	var main *Fragment
	sb.WithProgramCounter(func(pc *ProgramCounterHelper) {
		main = sb.Capture(func() {
			sb.WithScope(file, VisitOptions{}, func(opts VisitOptions) {
				sb.EmitHelper(file, PushValueOptions(opts), createGlobalObject{})
				sb.scope.SetGlobal(sb, file, opts)
				body(opts)
			})
		})
		sb.EmitJump(file, vm.JMP, pc.GetLast())
		sb.emitJumpTable(file)
	})
	sb.EmitBytecode(main)
}

// finalize resolves every jump placeholder and returns the script with its
// source map.
func (sb *scriptBuilder) finalize() ([]byte, SourceMap) {
	out := make([]byte, 0, sb.frame.length)
	var sm SourceMap
	last := ast.NoPos
	for _, it := range sb.frame.items {
		pos := len(out)
		if it.node != nil && it.node.Pos() != last && !it.pc.IsValid() {
			last = it.node.Pos()
			sm = append(sm, SourceMapping{Offset: pos, Pos: last})
		}
		if !it.pc.IsValid() {
			out = append(out, it.code...)
			continue
		}
		target := sb.pcs.target(it.pc)
		if target < 0 {
			internalErrorf(it.node, "unresolved program counter #%d", it.pc)
		}
		offset := target - (pos - 1)
		if offset < math.MinInt16 || offset > math.MaxInt16 {
			internalErrorf(it.node, "jump offset %d out of range", offset)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(int16(offset)))
	}
	return out, sm
}

func (sb *scriptBuilder) printTrace(a ...interface{}) {
	const (
		dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
		n    = len(dots)
	)

	i := 2 * sb.indent
	for i > n {
		_, _ = fmt.Fprint(sb.trace, dots)
		i -= n
	}

	_, _ = fmt.Fprint(sb.trace, dots[0:i])
	_, _ = fmt.Fprintln(sb.trace, a...)
}

func tracec(sb *scriptBuilder, msg string) *scriptBuilder {
	sb.printTrace(msg, "{")
	sb.indent++
	return sb
}

func untracec(sb *scriptBuilder) {
	sb.indent--
	sb.printTrace("}")
}
