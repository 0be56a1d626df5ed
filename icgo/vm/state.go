package vm

import (
	"fmt"

	"github.com/protolambda/intcode/icgo/intcode"
)

type Status uint8

const (
	StatusRunning Status = iota
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*s = StatusRunning
	case "halted":
		*s = StatusHalted
	case "faulted":
		*s = StatusFaulted
	default:
		return fmt.Errorf("unknown vm status %q", text)
	}
	return nil
}

type VMState struct {
	Memory Memory `json:"memory"`

	PC   uint64 `json:"pc"`
	Step uint64 `json:"step"`

	Status Status `json:"status"`
	// Fault describes why execution stopped when Status is faulted.
	Fault string `json:"fault,omitempty"`
}

// NewVMState starts a running state at pc 0 over mem. The state takes ownership of mem.
func NewVMState(mem Memory) *VMState {
	return &VMState{Memory: mem}
}

// GetStep returns the number of instructions executed so far.
func (state *VMState) GetStep() uint64 {
	return state.Step
}

func (state *VMState) Running() bool {
	return state.Status == StatusRunning
}

// Opcode returns the opcode at pc, if pc is in bounds.
func (state *VMState) Opcode() (intcode.Opcode, bool) {
	if state.PC >= uint64(len(state.Memory)) {
		return 0, false
	}
	return intcode.Opcode(state.Memory[state.PC]), true
}

// Patch overwrites a single cell before execution, e.g. the noun and verb.
func (state *VMState) Patch(addr int64, v int64) error {
	if !state.Memory.InBounds(addr) {
		return &OutOfBoundsError{PC: state.PC, Addr: addr, Len: len(state.Memory)}
	}
	state.Memory[addr] = v
	return nil
}
