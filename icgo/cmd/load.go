package cmd

import (
	"fmt"

	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/vm"
)

func loadProgram(ctx *cli.Context) (vm.Memory, error) {
	path := ctx.Path(ProgramFlag.Name)
	if path == "" {
		return nil, fmt.Errorf("missing --%s", ProgramFlag.Name)
	}
	return vm.LoadProgramFile(path)
}

func Load(ctx *cli.Context) error {
	mem, err := loadProgram(ctx)
	if err != nil {
		return err
	}
	state := vm.NewVMState(mem)
	if err := cannon.WriteJSON(ctx.Path(LoadOutputFlag.Name), state); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

var LoadCommand = &cli.Command{
	Name:        "load",
	Usage:       "Load an intcode program into a JSON VM state",
	Description: "Parse a comma-separated intcode program and write it as a fresh JSON VM state, ready to run.",
	Action:      Load,
	Flags: []cli.Flag{
		ProgramFlag,
		LoadOutputFlag,
	},
}
