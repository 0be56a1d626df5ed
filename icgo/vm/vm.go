package vm

import (
	"fmt"

	"github.com/protolambda/intcode/icgo/intcode"
)

// Step runs a single instruction.
// Faults are recorded on the state and returned; a faulted state stays faulted.
func Step(s *VMState, in InputProvider, out OutputSink) error {
	switch s.Status {
	case StatusHalted:
		return nil
	case StatusFaulted:
		return fmt.Errorf("%w: %s", ErrFaulted, s.Fault)
	}
	if in == nil {
		in = NoInput
	}
	if out == nil {
		out = DiscardOutput
	}
	if err := step(s, in, out); err != nil {
		s.Status = StatusFaulted
		s.Fault = err.Error()
		return err
	}
	return nil
}

func step(s *VMState, in InputProvider, out OutputSink) error {
	mem := s.Memory
	pc := s.PC

	outOfBounds := func(addr int64) error {
		return &OutOfBoundsError{PC: pc, Addr: addr, Len: len(mem)}
	}
	// operand fetches the raw cell i positions after the opcode
	operand := func(i uint64) (int64, error) {
		at := pc + i
		if at >= uint64(len(mem)) {
			return 0, outOfBounds(int64(at))
		}
		return mem[at], nil
	}
	load := func(addr int64) (int64, error) {
		if !mem.InBounds(addr) {
			return 0, outOfBounds(addr)
		}
		return mem[addr], nil
	}

	if pc >= uint64(len(mem)) {
		return outOfBounds(int64(pc))
	}
	// always decode from live memory: earlier instructions may have rewritten this cell
	op := intcode.Opcode(mem[pc])
	if !op.Valid() {
		return &UnknownOpcodeError{PC: pc, Opcode: op}
	}

	switch op {
	case intcode.OpAdd, intcode.OpMul:
		var args [3]int64
		for i := range args {
			v, err := operand(uint64(i) + 1)
			if err != nil {
				return err
			}
			args[i] = v
		}
		a, err := load(args[0])
		if err != nil {
			return err
		}
		b, err := load(args[1])
		if err != nil {
			return err
		}
		dest := args[2]
		if !mem.InBounds(dest) {
			return outOfBounds(dest)
		}
		if op == intcode.OpAdd {
			mem[dest] = a + b
		} else {
			mem[dest] = a * b
		}
	case intcode.OpInput:
		dest, err := operand(1)
		if err != nil {
			return err
		}
		// check the destination before consuming input, so no value is lost on a fault
		if !mem.InBounds(dest) {
			return outOfBounds(dest)
		}
		v, err := in.ReadValue()
		if err != nil {
			return &InputError{PC: pc, Err: err}
		}
		mem[dest] = v
	case intcode.OpOutput:
		src, err := operand(1)
		if err != nil {
			return err
		}
		v, err := load(src)
		if err != nil {
			return err
		}
		if err := out.WriteValue(v); err != nil {
			return fmt.Errorf("failed to write output at pc %d: %w", pc, err)
		}
	case intcode.OpHalt:
		s.Status = StatusHalted
		s.Step++
		return nil
	}

	s.PC += op.Width()
	s.Step++
	return nil
}

// Execute runs mem to completion in place. The caller inspects mem afterwards.
func Execute(mem Memory, in InputProvider, out OutputSink) error {
	s := NewVMState(mem)
	for s.Running() {
		if err := Step(s, in, out); err != nil {
			return err
		}
	}
	return nil
}
