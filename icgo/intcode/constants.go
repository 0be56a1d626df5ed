package intcode

import "fmt"

// Opcode is the tag stored at the start of every instruction.
type Opcode int64

const (
	OpAdd    Opcode = 1
	OpMul    Opcode = 2
	OpInput  Opcode = 3
	OpOutput Opcode = 4
	OpHalt   Opcode = 99
)

const (
	// NounAddr and VerbAddr are the cells patched by the gravity-assist search.
	NounAddr = 1
	VerbAddr = 2
	// OutputAddr holds the program result once it halts.
	OutputAddr = 0

	// GravityAssistTarget is the address-0 value the search looks for by default.
	GravityAssistTarget = 19690720
)

// Width returns the number of cells the instruction occupies, opcode included.
// Halt reports 0: the pc never moves past it.
func (op Opcode) Width() uint64 {
	switch op {
	case OpAdd, OpMul:
		return 4
	case OpInput, OpOutput:
		return 2
	default:
		return 0
	}
}

func (op Opcode) Valid() bool {
	switch op {
	case OpAdd, OpMul, OpInput, OpOutput, OpHalt:
		return true
	default:
		return false
	}
}

func (op Opcode) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpInput:
		return "in"
	case OpOutput:
		return "out"
	case OpHalt:
		return "halt"
	default:
		return fmt.Sprintf("unknown(%d)", int64(op))
	}
}
