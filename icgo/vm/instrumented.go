package vm

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/log"
)

var ErrStepLimit = errors.New("step limit reached")

// ctxCheckInterval bounds how often Run polls the context.
const ctxCheckInterval = 1024

// InstrumentedState binds a state to its I/O devices and a logger.
type InstrumentedState struct {
	state *VMState

	in  InputProvider
	out OutputSink

	log log.Logger

	// StepLimit stops Run once the state has executed this many steps. 0 means no limit.
	StepLimit uint64
}

func NewInstrumentedState(state *VMState, in InputProvider, out OutputSink, logger log.Logger) *InstrumentedState {
	if in == nil {
		in = NoInput
	}
	if out == nil {
		out = DiscardOutput
	}
	if logger == nil {
		logger = log.Root()
	}
	return &InstrumentedState{
		state: state,
		in:    in,
		out:   out,
		log:   logger,
	}
}

func (m *InstrumentedState) State() *VMState {
	return m.state
}

func (m *InstrumentedState) Step() error {
	err := Step(m.state, m.in, m.out)
	switch {
	case err != nil:
		m.log.Debug("vm faulted", "step", m.state.Step, "pc", m.state.PC, "err", err)
	case m.state.Status == StatusHalted:
		m.log.Debug("vm halted", "step", m.state.Step, "pc", m.state.PC)
	}
	return err
}

// Run steps until the state halts or faults, the context is done, or the step limit is hit.
func (m *InstrumentedState) Run(ctx context.Context) error {
	for m.state.Running() {
		if m.state.Step%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if m.StepLimit != 0 && m.state.Step >= m.StepLimit {
			return ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
