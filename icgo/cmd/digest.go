package cmd

import (
	"fmt"

	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/vm"
)

type DigestOutput struct {
	Status     vm.Status   `json:"status"`
	PC         uint64      `json:"pc"`
	Step       uint64      `json:"step"`
	MemorySize int         `json:"memorySize"`
	MemoryHash common.Hash `json:"memoryHash"`
}

func Digest(ctx *cli.Context) error {
	input := ctx.Path(DigestInputFlag.Name)
	state, err := cannon.LoadJSON[vm.VMState](input)
	if err != nil {
		return fmt.Errorf("invalid input state (%v): %w", input, err)
	}
	out := &DigestOutput{
		Status:     state.Status,
		PC:         state.PC,
		Step:       state.Step,
		MemorySize: len(state.Memory),
		MemoryHash: state.Memory.Hash(),
	}
	if output := ctx.Path(DigestOutputFlag.Name); output != "" {
		if err := cannon.WriteJSON(output, out); err != nil {
			return fmt.Errorf("failed to write digest output: %w", err)
		}
	}
	fmt.Fprintln(ctx.App.Writer, out.MemoryHash.Hex())
	return nil
}

var DigestCommand = &cli.Command{
	Name:        "digest",
	Usage:       "Hash the memory of a JSON VM state",
	Description: "Compute the keccak256 digest of the memory of a JSON VM state. The digest is written to stdout.",
	Action:      Digest,
	Flags: []cli.Flag{
		DigestInputFlag,
		DigestOutputFlag,
	},
}
