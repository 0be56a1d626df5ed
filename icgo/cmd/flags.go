package cmd

import (
	cannon "github.com/ethereum-optimism/optimism/cannon/cmd"
	"github.com/urfave/cli/v2"

	"github.com/protolambda/intcode/icgo/intcode"
)

const envPrefix = "INTCODE_"

const patternHelp = "'never' (default), 'always', '=123' at exactly step 123, '%123' for every 123 steps"

func prefixEnvVars(name string) []string {
	return []string{envPrefix + name}
}

var (
	LogLevelFlag = &cli.StringFlag{
		Name:    "log.level",
		Usage:   "Log level: trace, debug, info, warn or error",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
	}
	ProgramFlag = &cli.PathFlag{
		Name:      "program",
		Usage:     "Path of the comma-separated intcode program",
		TakesFile: true,
		EnvVars:   prefixEnvVars("PROGRAM"),
	}
	LoadOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Output path of the JSON VM state",
		Value:     "state.json",
		TakesFile: true,
	}
	RunStateFlag = &cli.PathFlag{
		Name:      "state",
		Usage:     "Path of a JSON VM state to resume, instead of --program",
		TakesFile: true,
	}
	RunInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "File with one integer per line for the input opcode. Defaults to stdin.",
		TakesFile: true,
		EnvVars:   prefixEnvVars("INPUT"),
	}
	RunOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Path to write the final JSON VM state to. Nothing is written if empty.",
		TakesFile: true,
	}
	RunNounFlag = &cli.Int64Flag{
		Name:  "noun",
		Usage: "Patch address 1 with this value before running",
	}
	RunVerbFlag = &cli.Int64Flag{
		Name:  "verb",
		Usage: "Patch address 2 with this value before running",
	}
	RunStopAtFlag = &cli.GenericFlag{
		Name:  "stop-at",
		Usage: "Step pattern to stop at: " + patternHelp,
		Value: new(cannon.StepMatcherFlag),
	}
	RunInfoAtFlag = &cli.GenericFlag{
		Name:  "info-at",
		Usage: "Step pattern to log progress at: " + patternHelp,
		Value: new(cannon.StepMatcherFlag),
	}
	RunSnapshotAtFlag = &cli.GenericFlag{
		Name:  "snapshot-at",
		Usage: "Step pattern to write a state snapshot at: " + patternHelp,
		Value: new(cannon.StepMatcherFlag),
	}
	RunSnapshotFmtFlag = &cli.StringFlag{
		Name:  "snapshot-fmt",
		Usage: "Format of snapshot output paths, taking the step number",
		Value: "state-%d.json",
	}
	RunLogOutputFlag = &cli.BoolFlag{
		Name:  "output.log",
		Usage: "Also log every value the program outputs",
	}
	StepLimitFlag = &cli.Uint64Flag{
		Name:  "step-limit",
		Usage: "Fail once a VM has executed this many steps. 0 means no limit.",
	}
	PProfCPUFlag = &cli.BoolFlag{
		Name:  "pprof.cpu",
		Usage: "Enable CPU profiling, written to the working directory",
	}
	SearchTargetFlag = &cli.Int64Flag{
		Name:    "target",
		Usage:   "Value the program must leave at address 0",
		Value:   intcode.GravityAssistTarget,
		EnvVars: prefixEnvVars("TARGET"),
	}
	SearchNounMinFlag = &cli.Int64Flag{
		Name:  "noun.min",
		Usage: "Smallest noun to try",
		Value: 0,
	}
	SearchNounMaxFlag = &cli.Int64Flag{
		Name:  "noun.max",
		Usage: "Exclusive upper bound of the nouns to try",
		Value: 99,
	}
	SearchVerbMinFlag = &cli.Int64Flag{
		Name:  "verb.min",
		Usage: "Smallest verb to try",
		Value: 0,
	}
	SearchVerbMaxFlag = &cli.Int64Flag{
		Name:  "verb.max",
		Usage: "Exclusive upper bound of the verbs to try",
		Value: 99,
	}
	SearchWorkersFlag = &cli.IntFlag{
		Name:    "workers",
		Usage:   "Number of concurrent probes",
		Value:   1,
		EnvVars: prefixEnvVars("WORKERS"),
	}
	SearchSkipFaultsFlag = &cli.BoolFlag{
		Name:  "skip-faults",
		Usage: "Log and skip probes that fault instead of aborting the search",
	}
	SearchOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Path to write the JSON search result to. Nothing is written if empty.",
		TakesFile: true,
	}
	DigestInputFlag = &cli.PathFlag{
		Name:      "input",
		Usage:     "Path of the JSON VM state",
		TakesFile: true,
		Required:  true,
	}
	DigestOutputFlag = &cli.PathFlag{
		Name:      "output",
		Usage:     "Path to write the JSON digest to. Nothing is written if empty.",
		TakesFile: true,
	}
)
