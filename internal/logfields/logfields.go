package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeySlug       = "slug"
	KeyURL        = "url"
	KeyTemplate   = "template"
	KeyEntries    = "entries"
	KeyDrafts     = "drafts"
	KeyWarnings   = "warnings"
	KeyOutcome    = "outcome"
	KeyPolicy     = "policy"
	KeyEvent      = "event"
	KeyError      = "error"
	KeyCategory   = "category"
	KeySeverity   = "severity"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Entries(n int) slog.Attr         { return slog.Int(KeyEntries, n) }
func Drafts(n int) slog.Attr          { return slog.Int(KeyDrafts, n) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Policy(p string) slog.Attr       { return slog.String(KeyPolicy, p) }
func Event(e string) slog.Attr        { return slog.String(KeyEvent, e) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Severity(s string) slog.Attr     { return slog.String(KeySeverity, s) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
