package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/vm"
)

// ReadlineInput prompts an interactive terminal for each value the program reads.
type ReadlineInput struct {
	rl *readline.Instance
}

var _ vm.InputProvider = (*ReadlineInput)(nil)

func NewReadlineInput(prompt string, stdout io.Writer) (*ReadlineInput, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
		Stdout: stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return &ReadlineInput{rl: rl}, nil
}

func (ri *ReadlineInput) ReadValue() (int64, error) {
	line, err := ri.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return 0, fmt.Errorf("input interrupted: %w", err)
	}
	if err != nil {
		return 0, err
	}
	return vm.ParseValue(line)
}

func (ri *ReadlineInput) Close() error {
	return ri.rl.Close()
}

func noClose() error { return nil }

// openInput picks the source for the input opcode: the --input file if set,
// a readline prompt if the app reads from a terminal, and a plain line reader otherwise.
func openInput(ctx *cli.Context) (vm.InputProvider, func() error, error) {
	if path := ctx.Path(RunInputFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input %q: %w", path, err)
		}
		return vm.NewLineInput(f), f.Close, nil
	}
	if f, ok := ctx.App.Reader.(*os.File); ok && readline.IsTerminal(int(f.Fd())) {
		ri, err := NewReadlineInput("input> ", ctx.App.ErrWriter)
		if err != nil {
			return nil, nil, err
		}
		return ri, ri.Close, nil
	}
	return vm.NewLineInput(ctx.App.Reader), noClose, nil
}
