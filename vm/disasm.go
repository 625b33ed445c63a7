// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Instruction is a decoded instruction.
type Instruction struct {
	Pos    int
	Op     Opcode
	Data   []byte
	Offset int
}

// Target returns the absolute jump target of a jump or call instruction.
func (ins Instruction) Target() int {
	return ins.Pos + ins.Offset
}

// Size returns the encoded size of the instruction.
func (ins Instruction) Size() int {
	switch {
	case ins.Op >= PUSHBYTES1 && ins.Op <= PUSHBYTES75:
		return 1 + len(ins.Data)
	case ins.Op == PUSHDATA1:
		return 2 + len(ins.Data)
	case ins.Op == PUSHDATA2:
		return 3 + len(ins.Data)
	case ins.Op == PUSHDATA4:
		return 5 + len(ins.Data)
	case IsJump(ins.Op):
		return 3
	}
	return 1
}

func (ins Instruction) String() string {
	name := OpcodeName(ins.Op)
	switch {
	case IsJump(ins.Op):
		return fmt.Sprintf("%-16s %d (%04d)", name, ins.Offset, ins.Target())
	case ins.Data != nil:
		if isPrintable(ins.Data) {
			return fmt.Sprintf("%-16s %q", name, ins.Data)
		}
		return fmt.Sprintf("%-16s 0x%s", name, hex.EncodeToString(ins.Data))
	}
	return name
}

// IterateInstructions decodes script and calls fn for each instruction until
// fn returns false. A truncated instruction results in an error.
func IterateInstructions(script []byte, fn func(ins Instruction) bool) error {
	for pos := 0; pos < len(script); {
		ins, err := Decode(script, pos)
		if err != nil {
			return err
		}
		if !fn(ins) {
			return nil
		}
		pos += ins.Size()
	}
	return nil
}

// Decode decodes the instruction at pos.
func Decode(script []byte, pos int) (Instruction, error) {
	if pos < 0 || pos >= len(script) {
		return Instruction{}, ErrIndexOutOfBounds.NewError(fmt.Sprint(pos))
	}
	op := script[pos]
	ins := Instruction{Pos: pos, Op: op}
	rest := script[pos+1:]
	truncated := ErrIndexOutOfBounds.NewError("truncated", OpcodeName(op), "at", fmt.Sprint(pos))

	width, n := 0, 0
	switch {
	case op >= PUSHBYTES1 && op <= PUSHBYTES75:
		n = int(op)
	case op == PUSHDATA1:
		width = 1
	case op == PUSHDATA2:
		width = 2
	case op == PUSHDATA4:
		width = 4
	case IsJump(op):
		if len(rest) < 2 {
			return ins, truncated
		}
		ins.Offset = int(int16(binary.LittleEndian.Uint16(rest)))
		return ins, nil
	default:
		return ins, nil
	}
	if len(rest) < width {
		return ins, truncated
	}
	switch width {
	case 1:
		n = int(rest[0])
	case 2:
		n = int(binary.LittleEndian.Uint16(rest))
	case 4:
		n = int(binary.LittleEndian.Uint32(rest))
	}
	if len(rest) < width+n {
		return ins, truncated
	}
	ins.Data = append([]byte{}, rest[width:width+n]...)
	return ins, nil
}

// Fprint writes a human readable listing of script to w. Labels maps
// positions to names printed before the instruction at that position.
func Fprint(w io.Writer, script []byte, labels map[int]string) error {
	return IterateInstructions(script, func(ins Instruction) bool {
		if l, ok := labels[ins.Pos]; ok {
			_, _ = fmt.Fprintf(w, "%s:\n", l)
		}
		_, _ = fmt.Fprintf(w, "%04d %s\n", ins.Pos, ins)
		return true
	})
}

// Disassemble returns the listing of script.
func Disassemble(script []byte) (string, error) {
	var sb strings.Builder
	err := Fprint(&sb, script, nil)
	return sb.String(), err
}
