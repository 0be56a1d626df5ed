package vm

import (
	"errors"
	"fmt"

	"github.com/protolambda/intcode/icgo/intcode"
)

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrOutOfBounds   = errors.New("address out of bounds")
	ErrInput         = errors.New("input failure")
	ErrFaulted       = errors.New("vm faulted")
)

// ParseError reports a program token that is not a signed decimal integer.
type ParseError struct {
	Index int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid program token %d %q: %v", e.Index, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type UnknownOpcodeError struct {
	PC     uint64
	Opcode intcode.Opcode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %d at pc %d", int64(e.Opcode), e.PC)
}

func (e *UnknownOpcodeError) Is(target error) bool { return target == ErrUnknownOpcode }

// OutOfBoundsError is raised for any fetch or operand address outside memory.
type OutOfBoundsError struct {
	PC   uint64
	Addr int64
	Len  int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("address %d out of bounds (memory size %d) at pc %d", e.Addr, e.Len, e.PC)
}

func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// InputError wraps a failure to obtain a value for the input opcode.
type InputError struct {
	PC  uint64
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("failed to read input at pc %d: %v", e.PC, e.Err)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

func (e *InputError) Unwrap() error { return e.Err }
