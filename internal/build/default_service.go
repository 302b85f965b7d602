package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/gempost/internal/content"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/logfields"
	"git.home.luguber.info/inful/gempost/internal/metrics"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	recorder metrics.Recorder
	warn     content.WarnFunc
	clock    func() time.Time
	stages   []namedStage
}

// NewBuildService creates a DefaultBuildService that logs warnings and
// records no metrics.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		recorder: metrics.NoopRecorder{},
		clock:    time.Now,
		stages:   defaultStages(),
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// WithWarnFunc adds a sink that receives every discovery warning in
// addition to the log.
func (s *DefaultBuildService) WithWarnFunc(fn content.WarnFunc) *DefaultBuildService {
	s.warn = fn
	return s
}

// WithClock overrides the time source used for the empty-feed timestamp
// and report times.
func (s *DefaultBuildService) WithClock(now func() time.Time) *DefaultBuildService {
	s.clock = now
	return s
}

// Run executes the build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := s.clock()
	report := newBuildReport(start)
	result := &BuildResult{StartTime: start, Report: report}

	if req.Config == nil {
		report.Errors = append(report.Errors, ferrors.ConfigError("config required").Build())
		return s.finish(result, report.Errors[0])
	}
	result.OutputPath = req.Config.PublicDir
	report.ConfigSnapshot = req.Config.Snapshot()

	bs := &BuildState{
		Config: req.Config,
		Report: report,
		Now:    start,
		Warn: func(msg string) {
			w := ferrors.DiscoveryWarning(msg).Build()
			report.addWarning(w.Message())
			slog.Warn(w.Message(), logfields.Category(string(w.Category())), logfields.Severity(string(w.Severity())))
			if s.warn != nil {
				s.warn(msg)
			}
		},
	}

	slog.Info("Building capsule",
		logfields.Path(req.Config.PostsDir),
		slog.String("public_dir", req.Config.PublicDir))

	if err := runStages(ctx, bs, s.recorder, s.stages); err != nil {
		return s.finish(result, classify(err))
	}
	return s.finish(result, nil)
}

func (s *DefaultBuildService) finish(result *BuildResult, err error) (*BuildResult, error) {
	report := result.Report
	result.EndTime = s.clock()
	result.Duration = result.EndTime.Sub(result.StartTime)
	report.finish(result.EndTime)

	switch report.Outcome {
	case OutcomeSuccess, OutcomeWarning:
		result.Status = BuildStatusSuccess
	case OutcomeCanceled:
		result.Status = BuildStatusCancelled
	default:
		result.Status = BuildStatusFailed
	}

	s.recorder.SetEntryCounts(report.Entries, report.Drafts)
	s.recorder.AddWarnings(len(report.Warnings))
	s.recorder.SetStaticCounts(report.Static.Files, report.Static.Dirs, report.Static.Symlinks)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
	s.recorder.ObserveBuildDuration(result.Duration)

	attrs := []any{
		logfields.Outcome(string(report.Outcome)),
		logfields.Entries(report.Entries),
		logfields.Drafts(report.Drafts),
		logfields.Warnings(len(report.Warnings)),
		logfields.DurationMS(float64(result.Duration.Microseconds()) / 1000),
	}
	if err != nil {
		slog.Debug("Build failed", append(attrs, logfields.Error(err))...)
		return result, err
	}
	slog.Info("Build complete", attrs...)
	return result, nil
}
