// Package errors provides the classified error primitives used across gempost.
//
// Every fatal build failure is reported as a ClassifiedError so the CLI can
// pick an exit code and the user sees which artifact (config file, sidecar,
// template, static asset) needs fixing.
//
// Key features:
//   - ErrorCategory: what kind of input is at fault (config, content, filesystem, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.ContentError("invalid post metadata").
//		WithContext("path", metadataPath).
//		WithCause(parseErr).
//		Build()
package errors
