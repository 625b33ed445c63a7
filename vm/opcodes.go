// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

import (
	"fmt"
	"strconv"
)

// Opcode represents a single byte operation code.
type Opcode = byte

// List of opcodes
const (
	PUSH0       Opcode = 0x00
	PUSHBYTES1  Opcode = 0x01
	PUSHBYTES75 Opcode = 0x4B
	PUSHDATA1   Opcode = 0x4C
	PUSHDATA2   Opcode = 0x4D
	PUSHDATA4   Opcode = 0x4E
	PUSHM1      Opcode = 0x4F
	PUSH1       Opcode = 0x51
	PUSH2       Opcode = 0x52
	PUSH3       Opcode = 0x53
	PUSH4       Opcode = 0x54
	PUSH5       Opcode = 0x55
	PUSH6       Opcode = 0x56
	PUSH7       Opcode = 0x57
	PUSH8       Opcode = 0x58
	PUSH9       Opcode = 0x59
	PUSH10      Opcode = 0x5A
	PUSH11      Opcode = 0x5B
	PUSH12      Opcode = 0x5C
	PUSH13      Opcode = 0x5D
	PUSH14      Opcode = 0x5E
	PUSH15      Opcode = 0x5F
	PUSH16      Opcode = 0x60

	NOP      Opcode = 0x61
	JMP      Opcode = 0x62
	JMPIF    Opcode = 0x63
	JMPIFNOT Opcode = 0x64
	CALL     Opcode = 0x65
	RET      Opcode = 0x66
	APPCALL  Opcode = 0x67
	SYSCALL  Opcode = 0x68
	TAILCALL Opcode = 0x69

	DUPFROMALTSTACK Opcode = 0x6A
	TOALTSTACK      Opcode = 0x6B
	FROMALTSTACK    Opcode = 0x6C
	XDROP           Opcode = 0x6D
	XSWAP           Opcode = 0x72
	XTUCK           Opcode = 0x73
	DEPTH           Opcode = 0x74
	DROP            Opcode = 0x75
	DUP             Opcode = 0x76
	NIP             Opcode = 0x77
	OVER            Opcode = 0x78
	PICK            Opcode = 0x79
	ROLL            Opcode = 0x7A
	ROT             Opcode = 0x7B
	SWAP            Opcode = 0x7C
	TUCK            Opcode = 0x7D

	CAT    Opcode = 0x7E
	SUBSTR Opcode = 0x7F
	LEFT   Opcode = 0x80
	RIGHT  Opcode = 0x81
	SIZE   Opcode = 0x82

	INVERT Opcode = 0x83
	AND    Opcode = 0x84
	OR     Opcode = 0x85
	XOR    Opcode = 0x86
	EQUAL  Opcode = 0x87

	INC         Opcode = 0x8B
	DEC         Opcode = 0x8C
	SIGN        Opcode = 0x8D
	NEGATE      Opcode = 0x8F
	ABS         Opcode = 0x90
	NOT         Opcode = 0x91
	NZ          Opcode = 0x92
	ADD         Opcode = 0x93
	SUB         Opcode = 0x94
	MUL         Opcode = 0x95
	DIV         Opcode = 0x96
	MOD         Opcode = 0x97
	SHL         Opcode = 0x98
	SHR         Opcode = 0x99
	BOOLAND     Opcode = 0x9A
	BOOLOR      Opcode = 0x9B
	NUMEQUAL    Opcode = 0x9C
	NUMNOTEQUAL Opcode = 0x9E
	LT          Opcode = 0x9F
	GT          Opcode = 0xA0
	LTE         Opcode = 0xA1
	GTE         Opcode = 0xA2
	MIN         Opcode = 0xA3
	MAX         Opcode = 0xA4
	WITHIN      Opcode = 0xA5

	SHA1          Opcode = 0xA7
	SHA256        Opcode = 0xA8
	HASH160       Opcode = 0xA9
	HASH256       Opcode = 0xAA
	CHECKSIG      Opcode = 0xAC
	VERIFY        Opcode = 0xAD
	CHECKMULTISIG Opcode = 0xAE

	ARRAYSIZE Opcode = 0xC0
	PACK      Opcode = 0xC1
	UNPACK    Opcode = 0xC2
	PICKITEM  Opcode = 0xC3
	SETITEM   Opcode = 0xC4
	NEWARRAY  Opcode = 0xC5
	NEWSTRUCT Opcode = 0xC6
	NEWMAP    Opcode = 0xC7
	APPEND    Opcode = 0xC8
	REVERSE   Opcode = 0xC9
	REMOVE    Opcode = 0xCA
	HASKEY    Opcode = 0xCB
	KEYS      Opcode = 0xCC
	VALUES    Opcode = 0xCD

	THROW      Opcode = 0xF0
	THROWIFNOT Opcode = 0xF1
)

// OpcodeNames are string representation of opcodes. Unassigned byte values
// have an empty name.
var OpcodeNames = [256]string{
	PUSH0:     "PUSH0",
	PUSHDATA1: "PUSHDATA1",
	PUSHDATA2: "PUSHDATA2",
	PUSHDATA4: "PUSHDATA4",
	PUSHM1:    "PUSHM1",
	PUSH1:     "PUSH1",
	PUSH2:     "PUSH2",
	PUSH3:     "PUSH3",
	PUSH4:     "PUSH4",
	PUSH5:     "PUSH5",
	PUSH6:     "PUSH6",
	PUSH7:     "PUSH7",
	PUSH8:     "PUSH8",
	PUSH9:     "PUSH9",
	PUSH10:    "PUSH10",
	PUSH11:    "PUSH11",
	PUSH12:    "PUSH12",
	PUSH13:    "PUSH13",
	PUSH14:    "PUSH14",
	PUSH15:    "PUSH15",
	PUSH16:    "PUSH16",

	NOP:      "NOP",
	JMP:      "JMP",
	JMPIF:    "JMPIF",
	JMPIFNOT: "JMPIFNOT",
	CALL:     "CALL",
	RET:      "RET",
	APPCALL:  "APPCALL",
	SYSCALL:  "SYSCALL",
	TAILCALL: "TAILCALL",

	DUPFROMALTSTACK: "DUPFROMALTSTACK",
	TOALTSTACK:      "TOALTSTACK",
	FROMALTSTACK:    "FROMALTSTACK",
	XDROP:           "XDROP",
	XSWAP:           "XSWAP",
	XTUCK:           "XTUCK",
	DEPTH:           "DEPTH",
	DROP:            "DROP",
	DUP:             "DUP",
	NIP:             "NIP",
	OVER:            "OVER",
	PICK:            "PICK",
	ROLL:            "ROLL",
	ROT:             "ROT",
	SWAP:            "SWAP",
	TUCK:            "TUCK",

	CAT:    "CAT",
	SUBSTR: "SUBSTR",
	LEFT:   "LEFT",
	RIGHT:  "RIGHT",
	SIZE:   "SIZE",

	INVERT: "INVERT",
	AND:    "AND",
	OR:     "OR",
	XOR:    "XOR",
	EQUAL:  "EQUAL",

	INC:         "INC",
	DEC:         "DEC",
	SIGN:        "SIGN",
	NEGATE:      "NEGATE",
	ABS:         "ABS",
	NOT:         "NOT",
	NZ:          "NZ",
	ADD:         "ADD",
	SUB:         "SUB",
	MUL:         "MUL",
	DIV:         "DIV",
	MOD:         "MOD",
	SHL:         "SHL",
	SHR:         "SHR",
	BOOLAND:     "BOOLAND",
	BOOLOR:      "BOOLOR",
	NUMEQUAL:    "NUMEQUAL",
	NUMNOTEQUAL: "NUMNOTEQUAL",
	LT:          "LT",
	GT:          "GT",
	LTE:         "LTE",
	GTE:         "GTE",
	MIN:         "MIN",
	MAX:         "MAX",
	WITHIN:      "WITHIN",

	SHA1:          "SHA1",
	SHA256:        "SHA256",
	HASH160:       "HASH160",
	HASH256:       "HASH256",
	CHECKSIG:      "CHECKSIG",
	VERIFY:        "VERIFY",
	CHECKMULTISIG: "CHECKMULTISIG",

	ARRAYSIZE: "ARRAYSIZE",
	PACK:      "PACK",
	UNPACK:    "UNPACK",
	PICKITEM:  "PICKITEM",
	SETITEM:   "SETITEM",
	NEWARRAY:  "NEWARRAY",
	NEWSTRUCT: "NEWSTRUCT",
	NEWMAP:    "NEWMAP",
	APPEND:    "APPEND",
	REVERSE:   "REVERSE",
	REMOVE:    "REMOVE",
	HASKEY:    "HASKEY",
	KEYS:      "KEYS",
	VALUES:    "VALUES",

	THROW:      "THROW",
	THROWIFNOT: "THROWIFNOT",
}

func init() {
	for op := PUSHBYTES1; op <= PUSHBYTES75; op++ {
		OpcodeNames[op] = "PUSHBYTES" + strconv.Itoa(int(op))
	}
}

// OpcodeName returns the name of op or a hex placeholder for unassigned
// byte values.
func OpcodeName(op Opcode) string {
	if name := OpcodeNames[op]; name != "" {
		return name
	}
	return fmt.Sprintf("0x%02X", op)
}

// IsJump reports whether op is followed by a 2-byte relative offset.
func IsJump(op Opcode) bool {
	switch op {
	case JMP, JMPIF, JMPIFNOT, CALL:
		return true
	}
	return false
}
