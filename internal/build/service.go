package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/gempost/internal/config"
)

// BuildService is the interface the CLI and the watcher run builds through.
type BuildService interface {
	// Run executes the full pipeline once. A non-nil error is a classified
	// error; the result is always returned and carries the report.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded and validated configuration.
	Config *config.Config
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	Status BuildStatus
	Report *BuildReport

	// OutputPath is the public directory that was written.
	OutputPath string

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
