package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation error", err: ValidationError("bad flag").Build(), expected: 2},
		{name: "content error", err: ContentError("bad timestamp").Build(), expected: 3},
		{name: "already exists", err: AlreadyExistsError("post exists").Build(), expected: 4},
		{name: "config error", err: ConfigError("bad config").Build(), expected: 7},
		{name: "internal error", err: InternalError("feed template").Build(), expected: 10},
		{name: "filesystem error", err: FileSystemError("copy failed").Build(), expected: 11},
		{name: "wrapped config error", err: fmt.Errorf("build: %w", ConfigError("bad config").Build()), expected: 7},
		{name: "unclassified error", err: &customError{msg: "unknown error"}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name: "content error names the file",
			err: ContentError("invalid post metadata").
				WithCause(errors.New("`updated` must be RFC 3339")).
				WithContext("path", "posts/hello.yaml").
				Build(),
			contains: []string{"Error: invalid post metadata", "RFC 3339", "path: posts/hello.yaml"},
		},
		{
			name:     "internal error is flagged as a bug",
			err:      InternalError("feed template failed").Build(),
			contains: []string{"feed template failed", "bug"},
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: []string{"Error: unknown error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatError() = %q, want to contain %q", got, want)
				}
			}
		})
	}

	if got := adapter.FormatError(nil); got != "" {
		t.Errorf("FormatError(nil) = %q, want empty string", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&out, nil)))
	adapter.out = &out

	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ContentError("missing title").WithContext("path", "posts/a.yaml").Build())

	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(out.String(), "missing title") {
		t.Errorf("expected message on output, got %q", out.String())
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
