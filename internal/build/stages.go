package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/gempost/internal/config"
	"git.home.luguber.info/inful/gempost/internal/content"
	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/feed"
	"git.home.luguber.info/inful/gempost/internal/logfields"
	"git.home.luguber.info/inful/gempost/internal/metrics"
	"git.home.luguber.info/inful/gempost/internal/render"
)

// StageName identifies a pipeline stage in reports, logs and metrics.
type StageName string

const (
	StageLoadTemplates StageName = "load_templates"
	StagePrepareOutput StageName = "prepare_output"
	StageReconcile     StageName = "reconcile"
	StageLoadEntries   StageName = "load_entries"
	StageAggregate     StageName = "aggregate"
	StageRender        StageName = "render"
	StageStaticMerge   StageName = "static_merge"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError is a stage failure carrying its category and cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// BuildState carries data between stages of one build.
type BuildState struct {
	Config   *config.Config
	Report   *BuildReport
	Now      time.Time
	Warn     content.WarnFunc
	Renderer *render.Renderer
	Pairs    []content.Pair
	Loaded   entry.Result
	Feed     feed.Feed
	// PagePairs and Pages hold the standalone pages, which are rendered but
	// never aggregated into the feed.
	PagePairs []content.Pair
	Pages     []entry.Entry
}

type namedStage struct {
	name StageName
	fn   Stage
}

func defaultStages() []namedStage {
	return []namedStage{
		{StageLoadTemplates, stageLoadTemplates},
		{StagePrepareOutput, stagePrepareOutput},
		{StageReconcile, stageReconcile},
		{StageLoadEntries, stageLoadEntries},
		{StageAggregate, stageAggregate},
		{StageRender, stageRender},
		{StageStaticMerge, stageStaticMerge},
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first error. Cancellation is checked between stages only.
func runStages(ctx context.Context, bs *BuildState, recorder metrics.Recorder, stages []namedStage) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := &StageError{Kind: StageErrorCanceled, Stage: st.name, Err: err}
			bs.Report.recordStage(st.name, 0, se)
			recorder.IncStageResult(string(st.name), metrics.ResultCanceled)
			return se
		}

		start := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(start)
		recorder.ObserveStageDuration(string(st.name), dur)

		if err != nil {
			se := &StageError{Kind: StageErrorFatal, Stage: st.name, Err: err}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				se.Kind = StageErrorCanceled
			}
			bs.Report.recordStage(st.name, dur, se)
			recorder.IncStageResult(string(st.name), resultLabel(se.Kind))
			return se
		}

		bs.Report.recordStage(st.name, dur, nil)
		recorder.IncStageResult(string(st.name), metrics.ResultSuccess)
		slog.Debug("Stage complete", logfields.Stage(string(st.name)), logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}

func resultLabel(kind StageErrorKind) metrics.ResultLabel {
	if kind == StageErrorCanceled {
		return metrics.ResultCanceled
	}
	return metrics.ResultFatal
}
