// Package location turns the configured post path template into the URL and
// output path of each entry.
package location

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

var (
	// ErrTemplate marks a post path template that does not parse or render.
	// It is shared by every entry, so it is a configuration problem.
	ErrTemplate = errors.New("invalid post path template")

	// ErrInvalidLocation marks a rendered path that cannot be used for one entry.
	ErrInvalidLocation = errors.New("invalid entry location")
)

// Placeholder names available to path templates.
const (
	KeySlug  = "slug"
	KeyYear  = "year"
	KeyMonth = "month"
	KeyDay   = "day"
)

// Location is where an entry is published: its absolute URL and its path
// relative to the public directory.
type Location struct {
	URL        *url.URL
	OutputPath string
}

// Segments returns the URL path segments added below the capsule URL.
func (l Location) Segments() []string {
	return splitSegments(filepath.ToSlash(l.OutputPath))
}

// Expander renders a path template for individual entries.
type Expander struct {
	base *url.URL
	text string
	tpl  *template.Template
}

// NewExpander parses tmpl once. Both `{{ .slug }}` and `{{ slug }}` forms are
// accepted for every placeholder.
func NewExpander(base *url.URL, tmpl string) (*Expander, error) {
	if base == nil {
		return nil, errors.New("capsule URL is required")
	}
	tpl, err := template.New("post_path").
		Funcs(placeholderFuncs(values("", nil))).
		Option("missingkey=error").
		Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrTemplate, tmpl, err)
	}

	e := &Expander{base: base, text: tmpl, tpl: tpl}

	// Surface unknown placeholders before any entry is processed.
	sample := time.Date(2006, time.January, 2, 0, 0, 0, 0, time.UTC)
	if _, err := e.render("sample", &sample); err != nil {
		return nil, err
	}
	return e, nil
}

// Template returns the template text the expander was built from.
func (e *Expander) Template() string { return e.text }

// Locate computes the location of the entry with the given slug and optional
// publish date.
func (e *Expander) Locate(slug string, published *time.Time) (Location, error) {
	if slug == "" {
		return Location{}, fmt.Errorf("%w: empty slug", ErrInvalidLocation)
	}
	rendered, err := e.render(slug, published)
	if err != nil {
		return Location{}, err
	}

	segments := splitSegments(rendered)
	if len(segments) == 0 {
		return Location{}, fmt.Errorf("%w: template %q renders to an empty path for %q", ErrInvalidLocation, e.text, slug)
	}
	for _, s := range segments {
		if s == "." || s == ".." {
			return Location{}, fmt.Errorf("%w: path %q leaves the public directory", ErrInvalidLocation, rendered)
		}
	}

	return Location{
		URL:        AppendPath(e.base, segments...),
		OutputPath: filepath.Join(segments...),
	}, nil
}

func (e *Expander) render(slug string, published *time.Time) (string, error) {
	vals := values(slug, published)
	tpl, err := e.tpl.Clone()
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrTemplate, e.text, err)
	}
	// Clone does not carry options over.
	tpl.Funcs(placeholderFuncs(vals)).Option("missingkey=error")

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vals); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrTemplate, e.text, err)
	}
	return buf.String(), nil
}

func values(slug string, published *time.Time) map[string]string {
	vals := map[string]string{KeySlug: slug, KeyYear: "", KeyMonth: "", KeyDay: ""}
	if published != nil {
		vals[KeyYear] = fmt.Sprintf("%04d", published.Year())
		vals[KeyMonth] = fmt.Sprintf("%02d", int(published.Month()))
		vals[KeyDay] = fmt.Sprintf("%02d", published.Day())
	}
	return vals
}

func placeholderFuncs(vals map[string]string) template.FuncMap {
	funcs := template.FuncMap{}
	for _, key := range []string{KeySlug, KeyYear, KeyMonth, KeyDay} {
		v := vals[key]
		funcs[key] = func() string { return v }
	}
	return funcs
}

func splitSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AppendPath returns a copy of base with segments appended to its path.
// Segments are escaped when the URL is serialized.
func AppendPath(base *url.URL, segments ...string) *url.URL {
	u := *base
	u.RawPath = ""
	u.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.Join(segments, "/")
	return &u
}

// WithPath returns a copy of base whose path is replaced by p.
func WithPath(base *url.URL, p string) *url.URL {
	return AppendPath(&url.URL{Scheme: base.Scheme, User: base.User, Host: base.Host}, splitSegments(p)...)
}
