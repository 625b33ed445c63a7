// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import "github.com/Hiyho/neo-one/ast"

// ProgramCounter is a handle into the builder's program counter table. The
// target it names may be unknown when a jump to it is emitted; every
// placeholder is resolved in one final pass.
type ProgramCounter int

// NoPC is the zero ProgramCounter which names no target.
const NoPC ProgramCounter = 0

// IsValid reports whether pc names a target.
func (pc ProgramCounter) IsValid() bool { return pc > NoPC }

// pcTable maps handles to positions relative to the fragment that resolved
// them. Unresolved entries are -1.
type pcTable struct {
	targets []int
}

func newPCTable() *pcTable {
	return &pcTable{targets: []int{-1}}
}

func (t *pcTable) alloc() ProgramCounter {
	t.targets = append(t.targets, -1)
	return ProgramCounter(len(t.targets) - 1)
}

func (t *pcTable) target(pc ProgramCounter) int {
	if !pc.IsValid() || int(pc) >= len(t.targets) {
		return -1
	}
	return t.targets[pc]
}

// codeItem is either raw code or a 2 byte placeholder for the relative
// offset of a jump to pc.
type codeItem struct {
	node ast.Node
	code []byte
	pc   ProgramCounter
}

func (it codeItem) size() int {
	if it.pc.IsValid() {
		return 2
	}
	return len(it.code)
}

// Fragment is relocatable code produced by Capture. Targets resolved while
// capturing are relative to the fragment start until it is merged with
// EmitBytecode.
type Fragment struct {
	items    []codeItem
	resolved []ProgramCounter
	length   int
}

// Len returns the fragment size in bytes.
func (f *Fragment) Len() int { return f.length }

func (f *Fragment) append(it codeItem) {
	f.items = append(f.items, it)
	f.length += it.size()
}

// ProgramCounterHelper is passed to WithProgramCounter callbacks.
type ProgramCounterHelper struct {
	sb   *scriptBuilder
	last ProgramCounter
}

// GetCurrent returns a target resolved at the current position.
func (h *ProgramCounterHelper) GetCurrent() ProgramCounter {
	pc := h.sb.DeferProgramCounter()
	h.sb.ResolveProgramCounter(pc)
	return pc
}

// GetLast returns a target resolved at the position following the
// callback's code.
func (h *ProgramCounterHelper) GetLast() ProgramCounter {
	return h.last
}
