package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/gempost/internal/build"
	"git.home.luguber.info/inful/gempost/internal/config"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/metrics"
	"git.home.luguber.info/inful/gempost/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before a rebuild starts" default:"300ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	svc := build.NewBuildService().WithRecorder(metrics.NoopRecorder{})
	rebuild := func(ctx context.Context) error {
		// Reload so edits to the config file apply to the next build.
		current, err := loadConfig(root.Config)
		if err != nil {
			return err
		}
		result, err := svc.Run(ctx, build.BuildRequest{Config: current})
		if err != nil {
			return err
		}
		slog.Info("Rebuilt capsule", slog.String("summary", result.Report.Summary()))
		return nil
	}

	watcher, err := watch.New(rebuild, watchOptions(cfg, w.Debounce))
	if err != nil {
		return ferrors.InternalError("cannot start watcher").WithCause(err).Build()
	}
	if err := watcher.Run(g.context()); err != nil {
		return ferrors.RuntimeError("watching failed").WithCause(err).Build()
	}
	return nil
}

// watchOptions lists every input of cfg once, ignoring the public directory.
func watchOptions(cfg *config.Config, debounce time.Duration) watch.Options {
	var dirs []string
	seen := make(map[string]bool)
	for _, d := range []string{
		cfg.PostsDir,
		cfg.PagesDir,
		cfg.StaticDir,
		filepath.Dir(cfg.IndexTemplateFile),
		filepath.Dir(cfg.PostTemplateFile),
		filepath.Dir(cfg.PageTemplateFile),
	} {
		d = filepath.Clean(d)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return watch.Options{
		Dirs:     dirs,
		Files:    []string{cfg.File},
		Ignore:   []string{cfg.PublicDir},
		Debounce: debounce,
	}
}
