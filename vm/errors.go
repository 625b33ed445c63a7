// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package vm

import (
	"fmt"
	"strings"
)

// Error represents a VM fault. Sentinel values are wrapped with NewError so
// that errors.Is matches the sentinel through Unwrap.
type Error struct {
	Name    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	name := e.Name
	if name == "" {
		name = "error"
	}
	if e.Message == "" {
		return name
	}
	return fmt.Sprintf("%s: %s", name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error and sets original Error as its cause which can be unwrapped.
func (e *Error) NewError(messages ...string) *Error {
	return &Error{
		Name:    e.Name,
		Message: strings.Join(messages, " "),
		Cause:   e,
	}
}

var (
	// ErrStackOverflow represents a stack overflow error.
	ErrStackOverflow = &Error{Name: "StackOverflowError"}

	// ErrStackUnderflow is returned when an opcode pops from an empty stack.
	ErrStackUnderflow = &Error{Name: "StackUnderflowError"}

	// ErrInvalidOpcode is returned for byte values outside the opcode table.
	ErrInvalidOpcode = &Error{Name: "InvalidOpcodeError"}

	// ErrInvalidJump is returned when a jump lands outside the script.
	ErrInvalidJump = &Error{Name: "InvalidJumpError"}

	// ErrFault is returned when the script executes THROW or THROWIFNOT.
	ErrFault = &Error{Name: "FaultError"}

	// ErrType represents an operand type error.
	ErrType = &Error{Name: "TypeError"}

	// ErrIndexOutOfBounds represents an out of bounds index error.
	ErrIndexOutOfBounds = &Error{Name: "IndexOutOfBoundsError"}

	// ErrKeyNotFound is returned by PICKITEM on a map without the key.
	ErrKeyNotFound = &Error{Name: "KeyNotFoundError"}

	// ErrZeroDivision is an error where divisor is zero.
	ErrZeroDivision = &Error{Name: "ZeroDivisionError"}

	// ErrStepLimit is returned when the step limit is exhausted.
	ErrStepLimit = &Error{Name: "StepLimitError"}

	// ErrVMAborted represents a VM aborted error.
	ErrVMAborted = &Error{Name: "VMAbortedError"}

	// ErrNotSupported is returned for opcodes the reference VM does not
	// implement (APPCALL, SYSCALL, signature checks).
	ErrNotSupported = &Error{Name: "NotSupportedError"}
)
