package cmd

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "intcode"
	app.Usage = "Intcode VM tool"
	app.Description = "Run intcode programs and search their noun/verb inputs"
	app.Flags = []cli.Flag{
		LogLevelFlag,
	}
	app.Commands = []*cli.Command{
		LoadCommand,
		RunCommand,
		SearchCommand,
		DigestCommand,
	}
	return app
}

func appLogger(ctx *cli.Context) (log.Logger, error) {
	lvl, err := ParseLevel(ctx.String(LogLevelFlag.Name))
	if err != nil {
		return nil, err
	}
	return Logger(ctx.App.ErrWriter, lvl), nil
}
