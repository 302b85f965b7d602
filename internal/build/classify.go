package build

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/gempost/internal/entry"
	ferrors "git.home.luguber.info/inful/gempost/internal/foundation/errors"
	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/metadata"
	"git.home.luguber.info/inful/gempost/internal/render"
	"git.home.luguber.info/inful/gempost/internal/staticmerge"
)

// classify maps a stage failure onto the error taxonomy the CLI reports.
func classify(err error) error {
	var se *StageError
	stage := ""
	if errors.As(err, &se) {
		stage = string(se.Stage)
		err = se.Err
	}

	var b *ferrors.ErrorBuilder
	var tErr *render.TemplateError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		b = ferrors.RuntimeError("build canceled")
	case errors.As(err, &tErr) && tErr.Kind == render.KindFeed:
		b = ferrors.InternalError("the built-in feed template failed").WithContext("template", tErr.Path)
	case errors.As(err, &tErr):
		b = ferrors.ConfigError("invalid "+string(tErr.Kind)+" template").WithContext("template", tErr.Path)
	case errors.Is(err, location.ErrTemplate), errors.Is(err, ErrUnsafePublicDir), errors.Is(err, staticmerge.ErrInvalidPolicy):
		b = ferrors.ConfigError("invalid configuration")
	case errors.Is(err, metadata.ErrInvalidMetadata),
		errors.Is(err, entry.ErrInvalidUTF8),
		errors.Is(err, entry.ErrDuplicateLocation),
		errors.Is(err, location.ErrInvalidLocation):
		b = ferrors.ContentError("a post or page needs fixing")
	case errors.Is(err, staticmerge.ErrConflict):
		b = ferrors.FileSystemError("static asset conflict")
	case errors.Is(err, staticmerge.ErrSymlinkUnsupported), errors.Is(err, staticmerge.ErrUnsupportedFileType):
		b = ferrors.FileSystemError("cannot publish static asset")
	default:
		b = ferrors.FileSystemError("build failed")
	}

	b = b.WithCause(err)
	if stage != "" {
		b = b.WithContext("stage", stage)
	}
	return b.Build()
}
