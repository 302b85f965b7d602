package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/gempost/internal/config"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
)

// Global carries state shared by every command.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

func (g *Global) context() context.Context {
	if g == nil || g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"./gempost.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the capsule into the public directory"`
	New     NewCmd     `cmd:"" help:"Create a new draft post"`
	NewPage NewPageCmd `cmd:"" name:"new-page" help:"Create a new draft standalone page"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild the capsule whenever its inputs change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration file and classifies failures as
// configuration errors.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	msg := "failed reading the gempost config file"
	if errors.Is(err, config.ErrNotFound) {
		msg = "no gempost config file found"
	}
	return nil, ferrors.WrapError(err, ferrors.CategoryConfig, msg).
		WithContext("config", path).
		Build()
}
