package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gempost/cmd/gempost/commands"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("gempost"),
		kong.Description("Build a gemlog capsule from gemtext posts and YAML metadata."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := parser.Run(&commands.Global{Ctx: ctx, Logger: slog.Default()}, &cli)
	if err != nil {
		stop()
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
