// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/Hiyho/neo-one/vm"
)

func jump(op Opcode, offset int16) []byte {
	return []byte{op, byte(uint16(offset)), byte(uint16(offset) >> 8)}
}

func script(parts ...interface{}) []byte {
	var out []byte
	for _, p := range parts {
		switch v := p.(type) {
		case Opcode:
			out = append(out, v)
		case []byte:
			out = append(out, v...)
		case string:
			out = append(out, byte(len(v)))
			out = append(out, v...)
		}
	}
	return out
}

func expectStack(t *testing.T, s []byte, expected ...string) *VM {
	t.Helper()
	v := NewVM(s)
	require.NoError(t, v.Run(), "script %x", s)
	require.Equal(t, StateHalt, v.State())
	items := v.Estack()
	got := make([]string, len(items))
	for i := range items {
		got[i] = items[i].String()
	}
	if len(expected) == 0 {
		expected = []string{}
	}
	require.Equal(t, expected, got)
	return v
}

func expectFault(t *testing.T, s []byte, target error) {
	t.Helper()
	v := NewVM(s)
	err := v.Run()
	require.Error(t, err)
	require.Equal(t, StateFault, v.State())
	require.True(t, errors.Is(err, target), "expected %v, got %v", target, err)
}

func TestVMPush(t *testing.T) {
	expectStack(t, script(PUSH0), `""`)
	expectStack(t, script(PUSHM1), "-1")
	expectStack(t, script(PUSH1, PUSH16), "16", "1")
	expectStack(t, script("abc"), `"abc"`)
	expectStack(t, script(PUSHDATA1, []byte{2, 0x01, 0x02}), "0x0102")
	expectStack(t, script(PUSHDATA2, []byte{1, 0, 'x'}), `"x"`)
	expectStack(t, script(PUSHDATA4, []byte{1, 0, 0, 0, 'y'}), `"y"`)
	expectFault(t, script(PUSHBYTES1+2, []byte{1}), ErrIndexOutOfBounds)
}

func TestVMStackOps(t *testing.T) {
	expectStack(t, script(PUSH1, PUSH2, SWAP), "1", "2")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, ROT), "1", "3", "2")
	expectStack(t, script(PUSH1, PUSH2, TUCK), "2", "1", "2")
	expectStack(t, script(PUSH1, PUSH2, OVER), "1", "2", "1")
	expectStack(t, script(PUSH1, PUSH2, NIP), "2")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, PUSH2, PICK), "1", "3", "2", "1")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, PUSH2, ROLL), "1", "3", "2")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, PUSH2, XTUCK), "3", "2", "3", "1")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, PUSH2, XSWAP), "1", "2", "3")
	expectStack(t, script(PUSH1, PUSH2, PUSH3, PUSH1, XDROP), "3", "1")
	expectStack(t, script(PUSH1, PUSH2, DEPTH), "2", "2", "1")
	expectStack(t, script(PUSH5, TOALTSTACK, DUPFROMALTSTACK, FROMALTSTACK, ADD), "10")
	expectFault(t, script(DROP), ErrStackUnderflow)
	expectFault(t, script(FROMALTSTACK), ErrStackUnderflow)
}

func TestVMArithmetic(t *testing.T) {
	expectStack(t, script(PUSH7, PUSH2, SUB), "5")
	expectStack(t, script(PUSH7, PUSH2, DIV), "3")
	expectStack(t, script(PUSHM1, PUSH7, MUL, PUSH2, DIV), "-3")
	expectStack(t, script(PUSHM1, PUSH7, MUL, PUSH2, MOD), "-1")
	expectStack(t, script(PUSH3, PUSH5, GT), "false")
	expectStack(t, script(PUSH3, PUSH5, LT), "true")
	expectStack(t, script(PUSH3, PUSH3, NUMEQUAL), "true")
	expectStack(t, script(PUSH3, PUSH1, PUSH5, WITHIN), "true")
	expectStack(t, script(PUSH5, PUSH1, PUSH5, WITHIN), "false")
	expectStack(t, script(PUSH1, PUSH4, SHL), "16")
	expectStack(t, script(PUSH5, INC, DEC, NEGATE, ABS), "5")
	expectStack(t, script(PUSH0, NOT), "true")
	expectStack(t, script(PUSH2, PUSH3, MIN, PUSH4, MAX), "4")
	expectFault(t, script(PUSH1, PUSH0, DIV), ErrZeroDivision)
}

func TestVMSplice(t *testing.T) {
	expectStack(t, script("ab", "cd", CAT), `"abcd"`)
	expectStack(t, script("abcd", PUSH1, PUSH2, SUBSTR), `"bc"`)
	expectStack(t, script("abcd", PUSH2, LEFT), `"ab"`)
	expectStack(t, script("abcd", PUSH1, RIGHT), `"d"`)
	expectStack(t, script("abcd", SIZE), "4")
	expectStack(t, script("a", "a", EQUAL), "true")
	expectStack(t, script(PUSH1, "\x01", EQUAL), "true")
	expectStack(t, script(PUSH0, SHA256, SIZE), "32")
	expectStack(t, script(PUSH0, HASH160, SIZE), "20")
}

func TestVMCollections(t *testing.T) {
	// PACK takes the top item first
	expectStack(t, script(PUSH1, PUSH2, PUSH2, PACK, PUSH0, PICKITEM), "2")
	expectStack(t, script(PUSH1, PUSH2, PUSH2, PACK, UNPACK), "2", "2", "1")
	expectStack(t, script(PUSH3, NEWARRAY, ARRAYSIZE), "3")
	expectStack(t, script(PUSH0, NEWARRAY, DUP, PUSH7, APPEND, PUSH0, PICKITEM), "7")
	expectStack(t, script(PUSH1, PUSH2, PUSH2, PACK, DUP, REVERSE, PUSH0, PICKITEM), "1")
	expectStack(t, script(PUSH2, NEWARRAY, DUP, PUSH1, PUSH9, SETITEM, PUSH1, PICKITEM), "9")
	expectStack(t, script(NEWMAP, DUP, "k", PUSH9, SETITEM, DUP, "k", HASKEY), "true", "{\"k\": 9}")
	expectStack(t, script(NEWMAP, DUP, "k", PUSH9, SETITEM, "k", PICKITEM), "9")
	expectStack(t, script(NEWMAP, DUP, "k", PUSH9, SETITEM, DUP, "k", REMOVE, ARRAYSIZE), "0")
	expectStack(t, script(NEWMAP, DUP, "a", PUSH1, SETITEM, DUP, "b", PUSH2, SETITEM, KEYS), `["a", "b"]`)
	expectStack(t, script(PUSH1, NEWARRAY, PUSH1, HASKEY), "false")
	expectFault(t, script(NEWMAP, "k", PICKITEM), ErrKeyNotFound)
	expectFault(t, script(PUSH1, NEWARRAY, PUSH1, PICKITEM), ErrIndexOutOfBounds)
	expectFault(t, script(NEWMAP, PUSH0, NEWARRAY, PUSH1, SETITEM), ErrType)
}

func TestVMJumps(t *testing.T) {
	// 0: PUSH1, 1: JMPIF +4 -> 5, 4: PUSH2, 5: PUSH3
	expectStack(t, script(PUSH1, jump(JMPIF, 4), PUSH2, PUSH3), "3")
	expectStack(t, script(PUSH0, jump(JMPIF, 4), PUSH2, PUSH3), "3", "2")
	expectStack(t, script(PUSH0, jump(JMPIFNOT, 4), PUSH2, PUSH3), "3")

	// counting loop: 0: PUSH0, 1: INC, 2: DUP, 3: PUSH5, 4: LT, 5: JMPIF -4
	expectStack(t, script(PUSH0, INC, DUP, PUSH5, LT, jump(JMPIF, -4)), "5")

	// 0: CALL +4 -> 4, 3: RET, 4: PUSH7, 5: RET
	expectStack(t, script(jump(CALL, 4), RET, PUSH7, RET), "7")
	expectFault(t, script(jump(JMP, 100)), ErrInvalidJump)
	expectFault(t, script(PUSH1, THROW), ErrFault)
	expectFault(t, script(PUSH0, THROWIFNOT), ErrFault)
	expectStack(t, script(PUSH1, THROWIFNOT))
}

func TestVMLimits(t *testing.T) {
	loop := script(jump(JMP, 0))
	v := NewVM(loop).SetMaxSteps(100)
	err := v.Run()
	require.True(t, errors.Is(err, ErrStepLimit))
	require.Equal(t, 100, v.Steps())

	v = NewVM(loop).SetMaxSteps(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = v.RunContext(ctx)
	require.True(t, errors.Is(err, ErrVMAborted))

	grow := script(PUSH1, DUP, jump(JMP, -1))
	v = NewVM(grow).SetMaxStackSize(16)
	require.True(t, errors.Is(v.Run(), ErrStackOverflow))
}

func TestVMStepAndTrace(t *testing.T) {
	var buf bytes.Buffer
	v := NewVM(script(PUSH1, PUSH2, ADD)).SetTrace(&buf)
	ok, err := v.Step()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, v.IP())
	require.Equal(t, StateBreak, v.State())
	for ok {
		ok, err = v.Step()
		require.NoError(t, err)
	}
	require.Equal(t, StateHalt, v.State())
	require.Equal(t, "3", v.Estack()[0].String())
	require.Equal(t, 3, strings.Count(buf.String(), "\n"))
	require.Contains(t, buf.String(), "0002 ADD")
}

func TestIntToBytes(t *testing.T) {
	cases := map[int64][]byte{
		0:    {},
		1:    {0x01},
		-1:   {0xFF},
		127:  {0x7F},
		128:  {0x80, 0x00},
		-128: {0x80},
		-129: {0x7F, 0xFF},
		255:  {0xFF, 0x00},
		256:  {0x00, 0x01},
	}
	for n, expected := range cases {
		b := IntToBytes(big.NewInt(n))
		require.Equal(t, expected, b, "%d", n)
		require.Equal(t, n, BytesToInt(b).Int64())
	}
}

func TestDisassemble(t *testing.T) {
	s := script(PUSH1, "hi", jump(JMPIF, -3), PUSHDATA1, []byte{1, 0xFF}, RET)
	out, err := Disassemble(s)
	require.NoError(t, err)
	require.Equal(t, strings.Join([]string{
		"0000 PUSH1",
		`0001 PUSHBYTES2       "hi"`,
		"0004 JMPIF            -3 (0001)",
		"0007 PUSHDATA1        0xff",
		"0010 RET",
		"",
	}, "\n"), out)

	_, err = Disassemble([]byte{JMP, 0x01})
	require.True(t, errors.Is(err, ErrIndexOutOfBounds))
}
