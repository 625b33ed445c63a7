// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package compiler

import (
	"github.com/Hiyho/neo-one/ast"
	"github.com/Hiyho/neo-one/vm"
)

type jumpTableEntry struct {
	node  ast.Node
	scope Scope
	class *ClassInfo
	pc    ProgramCounter
	body  func()
}

// JumpTable holds the function bodies called through the dispatcher. A
// CALL to the dispatcher expects [target, args] on the stack, target being
// the entry index.
type JumpTable struct {
	entries []*jumpTableEntry
}

// Len returns the number of entries.
func (t *JumpTable) Len() int { return len(t.entries) }

func (t *JumpTable) add(e *jumpTableEntry) int {
	t.entries = append(t.entries, e)
	return len(t.entries) - 1
}

// emitJumpTable emits the dispatcher followed by every body. Bodies may
// register further entries while they are emitted.
func (sb *scriptBuilder) emitJumpTable(node ast.Node) {
	var bodies []*Fragment
	for i := 0; i < len(sb.jumpTable.entries); i++ {
		e := sb.jumpTable.entries[i]
		bodies = append(bodies, sb.Capture(func() {
			sb.ResolveProgramCounter(e.pc)
			// [target, args] -> [args]
			sb.EmitOp(e.node, vm.DROP)

			prevScope, prevClass, prevFn := sb.scope, sb.class, sb.inFunction
			sb.scope, sb.class, sb.inFunction = e.scope, e.class, true
			e.body()
			sb.scope, sb.class, sb.inFunction = prevScope, prevClass, prevFn
		}))
	}

	sb.ResolveProgramCounter(sb.jumpTablePC)
	for i, e := range sb.jumpTable.entries {
		sb.EmitOp(node, vm.DUP)
		sb.EmitPushInt(node, int64(i))
		sb.EmitOp(node, vm.NUMEQUAL)
		sb.EmitJump(node, vm.JMPIF, e.pc)
	}
	sb.EmitOp(node, vm.THROW)

	for _, f := range bodies {
		sb.EmitBytecode(f)
	}
	log.Debug("jump table", "entries", len(sb.jumpTable.entries))
}
