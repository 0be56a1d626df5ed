package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/intcode"
	"github.com/protolambda/intcode/icgo/vm"
)

func loadState(ctx *cli.Context) (*vm.VMState, error) {
	statePath := ctx.Path(RunStateFlag.Name)
	programPath := ctx.Path(ProgramFlag.Name)
	switch {
	case statePath != "" && programPath != "":
		return nil, fmt.Errorf("--%s and --%s are mutually exclusive", RunStateFlag.Name, ProgramFlag.Name)
	case statePath != "":
		state, err := cannon.LoadJSON[vm.VMState](statePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
		if state.Status == vm.StatusFaulted {
			return nil, fmt.Errorf("cannot resume state %q: %w: %s", statePath, vm.ErrFaulted, state.Fault)
		}
		return state, nil
	default:
		mem, err := loadProgram(ctx)
		if err != nil {
			return nil, err
		}
		return vm.NewVMState(mem), nil
	}
}

// stepMatcher reads a step pattern flag. A zero interval would divide by zero on every match.
func stepMatcher(ctx *cli.Context, flag *cli.GenericFlag) (cannon.StepMatcher, error) {
	m := ctx.Generic(flag.Name).(*cannon.StepMatcherFlag)
	if interval, ok := strings.CutPrefix(m.String(), "%"); ok {
		if n, err := strconv.ParseUint(interval, 0, 64); err == nil && n == 0 {
			return nil, fmt.Errorf("invalid --%s pattern %q: interval must be positive", flag.Name, m.String())
		}
	}
	return m.Matcher(), nil
}

func Run(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}
	l, err := appLogger(ctx)
	if err != nil {
		return err
	}

	state, err := loadState(ctx)
	if err != nil {
		return err
	}
	if ctx.IsSet(RunNounFlag.Name) {
		if err := state.Patch(intcode.NounAddr, ctx.Int64(RunNounFlag.Name)); err != nil {
			return fmt.Errorf("failed to patch noun: %w", err)
		}
	}
	if ctx.IsSet(RunVerbFlag.Name) {
		if err := state.Patch(intcode.VerbAddr, ctx.Int64(RunVerbFlag.Name)); err != nil {
			return fmt.Errorf("failed to patch verb: %w", err)
		}
	}

	stopAt, err := stepMatcher(ctx, RunStopAtFlag)
	if err != nil {
		return err
	}
	infoAt, err := stepMatcher(ctx, RunInfoAtFlag)
	if err != nil {
		return err
	}
	snapshotAt, err := stepMatcher(ctx, RunSnapshotAtFlag)
	if err != nil {
		return err
	}
	snapshotFmt := ctx.String(RunSnapshotFmtFlag.Name)
	stepLimit := ctx.Uint64(StepLimitFlag.Name)

	in, closeInput, err := openInput(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeInput(); err != nil {
			l.Error("failed to close input", "err", err)
		}
	}()
	var out vm.OutputSink = &vm.LineOutput{W: ctx.App.Writer}
	if ctx.Bool(RunLogOutputFlag.Name) {
		out = vm.MultiOutput(out, &LoggingSink{Name: "program output", Log: l})
	}

	us := vm.NewInstrumentedState(state, in, out, l)

	start := time.Now()
	startStep := state.Step
	runErr := runLoop(ctx, l, us, stopAt, infoAt, snapshotAt, snapshotFmt, stepLimit, start, startStep)

	if outPath := ctx.Path(RunOutputFlag.Name); outPath != "" {
		if err := cannon.WriteJSON(outPath, state); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write state output: %w", err))
		}
	}
	if runErr != nil {
		return runErr
	}

	logCtx := []any{
		"status", state.Status,
		"steps", Count(state.Step - startStep),
		"memoryHash", state.Memory.Hash(),
	}
	if len(state.Memory) > intcode.OutputAddr {
		logCtx = append(logCtx, "result", state.Memory[intcode.OutputAddr])
	}
	l.Info("run complete", logCtx...)
	return nil
}

func runLoop(ctx *cli.Context, l log.Logger, us *vm.InstrumentedState,
	stopAt, infoAt, snapshotAt cannon.StepMatcher, snapshotFmt string, stepLimit uint64,
	start time.Time, startStep uint64) error {
	state := us.State()
	for state.Running() {
		if state.Step%100 == 0 { // don't do the ctx err check too often
			if err := ctx.Context.Err(); err != nil {
				return err
			}
		}
		step := state.Step

		if infoAt(state) {
			delta := time.Since(start)
			op, _ := state.Opcode()
			l.Info("processing",
				"step", Count(step),
				"pc", state.PC,
				"op", op,
				"ips", float64(step-startStep)/(float64(delta)/float64(time.Second)),
			)
		}

		if stopAt(state) {
			l.Info("stopping early", "step", step, "pc", state.PC)
			break
		}

		if snapshotAt(state) {
			if err := cannon.WriteJSON(fmt.Sprintf(snapshotFmt, step), state); err != nil {
				return fmt.Errorf("failed to write state snapshot: %w", err)
			}
		}

		if stepLimit != 0 && step-startStep >= stepLimit {
			return fmt.Errorf("stopped at step %d (pc %d): %w", step, state.PC, vm.ErrStepLimit)
		}

		if err := us.Step(); err != nil {
			return fmt.Errorf("failed at step %d (pc %d): %w", step, state.PC, err)
		}
	}
	return nil
}

var RunCommand = &cli.Command{
	Name:        "run",
	Usage:       "Run an intcode program until it halts",
	Description: "Run an intcode program or resume a JSON VM state. Input opcodes read one integer per line, output opcodes print one integer per line. See flags to match when to log progress, write a snapshot, or stop early.",
	Action:      Run,
	Flags: []cli.Flag{
		ProgramFlag,
		RunStateFlag,
		RunInputFlag,
		RunOutputFlag,
		RunNounFlag,
		RunVerbFlag,
		RunStopAtFlag,
		RunInfoAtFlag,
		RunSnapshotAtFlag,
		RunSnapshotFmtFlag,
		RunLogOutputFlag,
		StepLimitFlag,
		PProfCPUFlag,
	},
}
