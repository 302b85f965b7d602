// Package render writes the index page, the Atom feed, every post page and
// any standalone pages into the public directory.
//
// Index, post and page templates are user-supplied text/template files. The Atom
// feed uses a built-in template that escapes every text field for XML.
package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/feed"
)

//go:embed atom.xml.tmpl
var atomTemplate string

// ErrUnsafePath indicates an output path that is empty or leaves the public directory.
var ErrUnsafePath = errors.New("unsafe output path")

// Renderer holds the parsed templates for one build.
type Renderer struct {
	publicDir string
	indexFile string
	postFile  string
	pageFile  string
	index     *template.Template
	post      *template.Template
	page      *template.Template
	atom      *template.Template
}

// Result lists the files written, relative to the public directory.
type Result struct {
	Index string
	Feed  string
	Posts []string
	Pages []string
}

// New parses the index and post template files. Parse failures are
// reported as *TemplateError.
func New(publicDir, indexTemplateFile, postTemplateFile string) (*Renderer, error) {
	index, err := parseFile(KindIndex, indexTemplateFile)
	if err != nil {
		return nil, err
	}
	post, err := parseFile(KindPost, postTemplateFile)
	if err != nil {
		return nil, err
	}
	atom, err := template.New("atom.xml").Funcs(Funcs()).Option("missingkey=error").Parse(atomTemplate)
	if err != nil {
		return nil, &TemplateError{Kind: KindFeed, Path: "atom.xml.tmpl", Err: err}
	}
	return &Renderer{
		publicDir: publicDir,
		indexFile: indexTemplateFile,
		postFile:  postTemplateFile,
		index:     index,
		post:      post,
		atom:      atom,
	}, nil
}

// LoadPageTemplate parses the template used for standalone pages. A
// Renderer without one fails RenderPages for any non-empty page list.
func (r *Renderer) LoadPageTemplate(path string) error {
	page, err := parseFile(KindPage, path)
	if err != nil {
		return err
	}
	r.page, r.pageFile = page, path
	return nil
}

func parseFile(kind TemplateKind, path string) (*template.Template, error) {
	// #nosec G304 -- template paths come from the capsule configuration.
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &TemplateError{Kind: kind, Path: path, Err: err}
	}
	tpl, err := template.New(filepath.Base(path)).Funcs(Funcs()).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, &TemplateError{Kind: kind, Path: path, Err: err}
	}
	return tpl, nil
}

// Render writes the index, the feed and one page per entry of f, in that
// order. Existing files are overwritten.
func (r *Renderer) Render(f feed.Feed) (Result, error) {
	data := NewFeedData(f)

	indexPath, err := OutputPathForURL(f.IndexURL)
	if err != nil {
		return Result{}, fmt.Errorf("index: %w", err)
	}
	if err := r.RenderIndex(data, indexPath); err != nil {
		return Result{}, err
	}

	feedPath, err := OutputPathForURL(f.FeedURL)
	if err != nil {
		return Result{}, fmt.Errorf("feed: %w", err)
	}
	if err := r.RenderFeed(data, feedPath); err != nil {
		return Result{}, err
	}

	res := Result{Index: indexPath, Feed: feedPath, Posts: make([]string, 0, len(data.Entries))}
	for _, e := range data.Entries {
		if err := r.RenderPost(PostData{Entry: e, Feed: data}, e.Path); err != nil {
			return Result{}, err
		}
		res.Posts = append(res.Posts, e.Path)
	}
	return res, nil
}

// RenderPages renders one file per page with the page template. Pages see
// the capsule through Feed but are not part of it.
func (r *Renderer) RenderPages(pages []entry.Entry, f feed.Feed) ([]string, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	if r.page == nil {
		return nil, &TemplateError{Kind: KindPage, Path: r.pageFile, Err: errors.New("no page template is loaded")}
	}

	data := NewFeedData(f)
	written := make([]string, 0, len(pages))
	for _, p := range pages {
		e := NewEntryData(p)
		if err := r.execute(r.page, KindPage, r.pageFile, PostData{Entry: e, Feed: data}, e.Path); err != nil {
			return nil, err
		}
		written = append(written, e.Path)
	}
	return written, nil
}

// RenderIndex renders the index template to rel.
func (r *Renderer) RenderIndex(data FeedData, rel string) error {
	return r.execute(r.index, KindIndex, r.indexFile, data, rel)
}

// RenderFeed renders the built-in Atom template to rel.
func (r *Renderer) RenderFeed(data FeedData, rel string) error {
	return r.execute(r.atom, KindFeed, rel, data, rel)
}

// RenderPost renders the post template to rel.
func (r *Renderer) RenderPost(data PostData, rel string) error {
	return r.execute(r.post, KindPost, r.postFile, data, rel)
}

func (r *Renderer) execute(tpl *template.Template, kind TemplateKind, source string, data any, rel string) error {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return &TemplateError{Kind: kind, Path: source, Err: err}
	}
	return WriteOutput(r.publicDir, rel, buf.Bytes())
}

// OutputPathForURL maps the path of a capsule URL to a path relative to the
// public directory.
func OutputPathForURL(u *url.URL) (string, error) {
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: %s has no file path", ErrUnsafePath, u)
	}
	return filepath.Join(segments...), nil
}

// WriteOutput writes content to rel under publicDir, creating parent
// directories and replacing any existing file.
func WriteOutput(publicDir, rel string, content []byte) error {
	cleanRel := filepath.Clean(rel)
	if rel == "" || cleanRel == "." || filepath.IsAbs(cleanRel) || cleanRel == ".." ||
		strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}

	fullPath := filepath.Join(publicDir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", fullPath, err)
	}
	// #nosec G306 -- published capsule files are meant to be world-readable.
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return fmt.Errorf("write output file %s: %w", fullPath, err)
	}
	return nil
}
