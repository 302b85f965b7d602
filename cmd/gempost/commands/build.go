package commands

import (
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/gempost/internal/build"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/logfields"
	"git.home.luguber.info/inful/gempost/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics for the build to this file" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	svc := build.NewBuildService().WithRecorder(metrics.NewPrometheusRecorder(reg))
	result, buildErr := svc.Run(g.context(), build.BuildRequest{Config: cfg})

	if b.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, b.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics file", logfields.File(b.MetricsFile), logfields.Error(err))
			if buildErr == nil {
				return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed writing the metrics file").Build()
			}
		}
	}
	if buildErr != nil {
		return buildErr
	}

	fmt.Printf("Built %s (%s)\n", result.OutputPath, result.Report.Summary())
	return nil
}
