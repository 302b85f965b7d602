package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMetadata is the root of every sidecar validation failure.
	ErrInvalidMetadata = errors.New("invalid post metadata")

	// ErrMissingField indicates a required key is absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidTimestamp indicates `updated` or `published` is not RFC 3339.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// ExampleTimestamp is quoted in timestamp errors to show the expected format.
const ExampleTimestamp = "2024-03-05T09:30:00+01:00"

// Error describes a problem with one sidecar file.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("there is a problem with the post metadata file at `%s`: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidMetadata}
	}
	return []error{ErrInvalidMetadata, e.Err}
}
