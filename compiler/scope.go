// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

// Name is a binding declared in a scope.
type Name struct {
	Value string
	index int
	level int
}

// Scope resolves names to slots of the runtime scope chain.
//
// At runtime the alt stack holds the current frame [scopes, this, base].
// scopes is indexed by chain level, the root scope is level 0 and slot 0 of
// the root scope holds the global object. A scope without slots adds no
// level.
type Scope interface {
	// Parent returns the enclosing scope or nil for the root.
	Parent() Scope
	// Add declares name, returning the existing binding on redeclaration.
	Add(name string) *Name
	// AddUnique declares an anonymous binding.
	AddUnique() *Name
	// Lookup finds name in this scope or its parents.
	Lookup(name string) (*Name, bool)
	// Get pushes the value of name.
	Get(sb ScriptBuilder, node ast.Node, opts VisitOptions, name *Name)
	// Set consumes the value on top of the stack into name.
	Set(sb ScriptBuilder, node ast.Node, opts VisitOptions, name *Name)
	GetThis(sb ScriptBuilder, node ast.Node, opts VisitOptions)
	SetThis(sb ScriptBuilder, node ast.Node, opts VisitOptions)
	GetGlobal(sb ScriptBuilder, node ast.Node, opts VisitOptions)
	SetGlobal(sb ScriptBuilder, node ast.Node, opts VisitOptions)
	// PushAll pushes the scope chain array for closures.
	PushAll(sb ScriptBuilder, node ast.Node, opts VisitOptions)
	// Emit wraps fn with the code creating this scope at runtime.
	Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions, fn func(VisitOptions))

	top() int
}

type scopeKey struct {
	node  ast.Node
	index int
}

// nameTable is the naming part shared by both scope variants.
type nameTable struct {
	parent Scope
	names  map[string]*Name
	added  int
	level  int
}

func newNameTable(parent Scope, reserved int) nameTable {
	return nameTable{
		parent: parent,
		names:  make(map[string]*Name),
		added:  reserved,
	}
}

func (t *nameTable) add(name string) *Name {
	if n, ok := t.names[name]; ok {
		return n
	}
	n := &Name{Value: name, index: t.added, level: t.level}
	t.added++
	t.names[name] = n
	return n
}

func (t *nameTable) addUnique() *Name {
	n := &Name{index: t.added, level: t.level}
	t.added++
	return n
}

func (t *nameTable) lookup(name string) (*Name, bool) {
	if n, ok := t.names[name]; ok {
		return n, true
	}
	if t.parent != nil {
		return t.parent.Lookup(name)
	}
	return nil, false
}

// capturingScope counts declarations and emits placeholders only.
type capturingScope struct {
	nameTable
	key    scopeKey
	counts map[scopeKey]int
}

var _ Scope = (*capturingScope)(nil)

func newCapturingScope(parent Scope, key scopeKey, counts map[scopeKey]int) *capturingScope {
	reserved := 0
	if parent == nil {
		reserved = 1
	}
	return &capturingScope{
		nameTable: newNameTable(parent, reserved),
		key:       key,
		counts:    counts,
	}
}

func (s *capturingScope) Parent() Scope { return s.parent }

func (s *capturingScope) Add(name string) *Name { return s.add(name) }

func (s *capturingScope) AddUnique() *Name { return s.addUnique() }

func (s *capturingScope) Lookup(name string) (*Name, bool) { return s.lookup(name) }

func (s *capturingScope) top() int { return 0 }

func (s *capturingScope) Get(sb ScriptBuilder, node ast.Node, _ VisitOptions, _ *Name) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) Set(sb ScriptBuilder, node ast.Node, _ VisitOptions, _ *Name) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) GetThis(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) SetThis(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) GetGlobal(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) SetGlobal(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) PushAll(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.NOP)
}

func (s *capturingScope) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions,
	fn func(VisitOptions)) {
	sb.EmitOp(node, vm.NOP)
	fn(opts)
	sb.EmitOp(node, vm.NOP)
	s.counts[s.key] = s.added
}

// resolvedScope knows its final slot count from the capturing pass.
type resolvedScope struct {
	nameTable
	count int
	root  bool
	depth int
}

var _ Scope = (*resolvedScope)(nil)

func newResolvedScope(parent Scope, count int) *resolvedScope {
	s := &resolvedScope{count: count, root: parent == nil}
	reserved := 0
	switch {
	case s.root:
		reserved = 1
	case count > 0:
		s.depth = parent.top() + 1
	default:
		s.depth = parent.top()
	}
	s.nameTable = newNameTable(parent, reserved)
	s.level = s.depth
	return s
}

func (s *resolvedScope) Parent() Scope { return s.parent }

func (s *resolvedScope) top() int { return s.depth }

func (s *resolvedScope) Add(name string) *Name {
	if _, ok := s.names[name]; !ok {
		s.checkSlot(name)
	}
	return s.add(name)
}

func (s *resolvedScope) AddUnique() *Name {
	s.checkSlot("<unique>")
	return s.addUnique()
}

func (s *resolvedScope) checkSlot(name string) {
	if s.added >= s.count {
		internalErrorf(nil, "scope slot for %q exceeds captured count %d", name, s.count)
	}
}

func (s *resolvedScope) Lookup(name string) (*Name, bool) { return s.lookup(name) }

// pushSlots pushes the slot array of level.
func pushSlots(sb ScriptBuilder, node ast.Node, level int) {
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
	sb.EmitPushInt(node, int64(level))
	sb.EmitOp(node, vm.PICKITEM)
}

func (s *resolvedScope) Get(sb ScriptBuilder, node ast.Node, _ VisitOptions, name *Name) {
	// [slots]
	pushSlots(sb, node, name.level)
	// [value]
	sb.EmitPushInt(node, int64(name.index))
	sb.EmitOp(node, vm.PICKITEM)
}

func (s *resolvedScope) Set(sb ScriptBuilder, node ast.Node, _ VisitOptions, name *Name) {
	// [slots, value]
	pushSlots(sb, node, name.level)
	// [index, slots, value]
	sb.EmitPushInt(node, int64(name.index))
	// [value, index, slots]
	sb.EmitOp(node, vm.ROT)
	// []
	sb.EmitOp(node, vm.SETITEM)
}

func (s *resolvedScope) GetThis(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 1)
	sb.EmitOp(node, vm.PICKITEM)
}

func (s *resolvedScope) SetThis(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	// [frame, value]
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 1)
	sb.EmitOp(node, vm.ROT)
	sb.EmitOp(node, vm.SETITEM)
}

func (s *resolvedScope) GetGlobal(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	pushSlots(sb, node, 0)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
}

func (s *resolvedScope) SetGlobal(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	pushSlots(sb, node, 0)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.ROT)
	sb.EmitOp(node, vm.SETITEM)
}

func (s *resolvedScope) PushAll(sb ScriptBuilder, node ast.Node, _ VisitOptions) {
	sb.EmitOp(node, vm.DUPFROMALTSTACK)
	sb.EmitPushInt(node, 0)
	sb.EmitOp(node, vm.PICKITEM)
}

func (s *resolvedScope) Emit(sb ScriptBuilder, node ast.Node, opts VisitOptions,
	fn func(VisitOptions)) {
	switch {
	case s.root:
		// [base]
		sb.EmitOp(node, vm.DEPTH)
		// [this, base]
		sb.EmitHelper(node, PushValueOptions(opts), createUndefined{})
		// [[slots], this, base]
		sb.EmitPushInt(node, int64(s.count))
		sb.EmitOp(node, vm.NEWARRAY)
		sb.EmitPushInt(node, 1)
		sb.EmitOp(node, vm.PACK)
		// [frame]
		sb.EmitPushInt(node, 3)
		sb.EmitOp(node, vm.PACK)
		sb.EmitOp(node, vm.TOALTSTACK)
		fn(opts)
		sb.EmitOp(node, vm.FROMALTSTACK)
		sb.EmitOp(node, vm.DROP)
	case s.count == 0:
		fn(opts)
	default:
		// [scopes, frame]
		sb.EmitOp(node, vm.DUPFROMALTSTACK)
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushInt(node, 0)
		sb.EmitOp(node, vm.PICKITEM)
		// [scopes, slots, frame]
		sb.EmitPushInt(node, int64(s.count))
		sb.EmitOp(node, vm.NEWARRAY)
		sb.EmitOp(node, vm.SWAP)
		// [scopes, scopes[0], ..., scopes[depth-1], slots, frame]
		for i := s.depth - 1; i >= 0; i-- {
			sb.EmitOp(node, vm.DUP)
			sb.EmitPushInt(node, int64(i))
			sb.EmitOp(node, vm.PICKITEM)
			sb.EmitOp(node, vm.SWAP)
		}
		sb.EmitOp(node, vm.DROP)
		// [newScopes, frame]
		sb.EmitPushInt(node, int64(s.depth+1))
		sb.EmitOp(node, vm.PACK)
		// []
		sb.EmitPushInt(node, 0)
		sb.EmitOp(node, vm.SWAP)
		sb.EmitOp(node, vm.SETITEM)
		fn(opts)
	}
}
