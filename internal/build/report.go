package build

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/gempost/internal/render"
	"git.home.luguber.info/inful/gempost/internal/staticmerge"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageCount aggregates outcomes for a stage.
type StageCount struct {
	Success  int
	Fatal    int
	Canceled int
}

// BuildReport captures what one build did.
type BuildReport struct {
	Start          time.Time
	End            time.Time
	Pairs          int
	Entries        int
	Drafts         int
	Rendered       render.Result
	Static         staticmerge.Stats
	Warnings       []string
	Errors         []error
	StageDurations map[StageName]time.Duration
	StageCounts    map[StageName]StageCount
	Outcome        BuildOutcome
	// ConfigSnapshot is the hash of the configuration the build ran with.
	ConfigSnapshot string
}

func newBuildReport(start time.Time) *BuildReport {
	return &BuildReport{
		Start:          start,
		StageDurations: make(map[StageName]time.Duration),
		StageCounts:    make(map[StageName]StageCount),
	}
}

func (r *BuildReport) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *BuildReport) recordStage(name StageName, d time.Duration, se *StageError) {
	r.StageDurations[name] = d
	sc := r.StageCounts[name]
	switch {
	case se == nil:
		sc.Success++
	case se.Kind == StageErrorCanceled:
		sc.Canceled++
		r.Errors = append(r.Errors, se)
	default:
		sc.Fatal++
		r.Errors = append(r.Errors, se)
	}
	r.StageCounts[name] = sc
}

func (r *BuildReport) finish(end time.Time) {
	r.End = end
	r.deriveOutcome()
}

// deriveOutcome sets Outcome from recorded errors and warnings.
func (r *BuildReport) deriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			if se, ok := e.(*StageError); ok && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("entries=%d drafts=%d posts=%d pages=%d static_files=%d warnings=%d errors=%d duration=%s outcome=%s",
		r.Entries, r.Drafts, len(r.Rendered.Posts), len(r.Rendered.Pages), r.Static.Files, len(r.Warnings), len(r.Errors), dur.Truncate(time.Millisecond), r.Outcome)
}
