package cmd

import (
	"fmt"

	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/search"
)

func Search(ctx *cli.Context) error {
	if ctx.Bool(PProfCPUFlag.Name) {
		defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
	}
	l, err := appLogger(ctx)
	if err != nil {
		return err
	}
	base, err := loadProgram(ctx)
	if err != nil {
		return err
	}

	cfg := search.DefaultConfig(ctx.Int64(SearchTargetFlag.Name))
	cfg.Noun = search.Range{Min: ctx.Int64(SearchNounMinFlag.Name), Max: ctx.Int64(SearchNounMaxFlag.Name)}
	cfg.Verb = search.Range{Min: ctx.Int64(SearchVerbMinFlag.Name), Max: ctx.Int64(SearchVerbMaxFlag.Name)}
	cfg.Workers = ctx.Int(SearchWorkersFlag.Name)
	cfg.SkipFaults = ctx.Bool(SearchSkipFaultsFlag.Name)
	cfg.StepLimit = ctx.Uint64(StepLimitFlag.Name)

	res, err := search.NewSearcher(cfg, l).Search(ctx.Context, base)
	if err != nil {
		return fmt.Errorf("search for target %d failed: %w", cfg.Target, err)
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "Noun = %d\n", res.Noun)
	fmt.Fprintf(w, "Verb = %d\n", res.Verb)
	fmt.Fprintf(w, "100 * Noun + Verb = %d\n", res.Answer)

	if outPath := ctx.Path(SearchOutputFlag.Name); outPath != "" {
		if err := cannon.WriteJSON(outPath, res); err != nil {
			return fmt.Errorf("failed to write search result: %w", err)
		}
	}
	return nil
}

var SearchCommand = &cli.Command{
	Name:        "search",
	Usage:       "Find the noun and verb that make a program produce a target",
	Description: "Patch addresses 1 (noun) and 2 (verb) of a fresh copy of the program for every pair in the configured ranges, nouns outer and verbs inner, and report the first pair that leaves the target at address 0.",
	Action:      Search,
	Flags: []cli.Flag{
		ProgramFlag,
		SearchTargetFlag,
		SearchNounMinFlag,
		SearchNounMaxFlag,
		SearchVerbMinFlag,
		SearchVerbMaxFlag,
		SearchWorkersFlag,
		SearchSkipFaultsFlag,
		SearchOutputFlag,
		StepLimitFlag,
		PProfCPUFlag,
	},
}
