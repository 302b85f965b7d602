package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/gempost/internal/content"
	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/feed"
	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/logfields"
	"git.home.luguber.info/inful/gempost/internal/render"
	"git.home.luguber.info/inful/gempost/internal/staticmerge"
)

// ErrUnsafePublicDir indicates a public directory that cannot be cleaned
// without destroying inputs.
var ErrUnsafePublicDir = errors.New("refusing to clean public directory")

func stageLoadTemplates(_ context.Context, bs *BuildState) error {
	r, err := render.New(bs.Config.PublicDir, bs.Config.IndexTemplateFile, bs.Config.PostTemplateFile)
	if err != nil {
		return err
	}
	if exists(bs.Config.PageTemplateFile) {
		if err := r.LoadPageTemplate(bs.Config.PageTemplateFile); err != nil {
			return err
		}
	}
	bs.Renderer = r
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	public := bs.Config.PublicDir
	if bs.Config.CleanPublicDir() {
		cfg := bs.Config
		if err := checkCleanable(public, cfg.PostsDir, cfg.PagesDir, cfg.StaticDir,
			filepath.Dir(cfg.IndexTemplateFile), filepath.Dir(cfg.PostTemplateFile), filepath.Dir(cfg.PageTemplateFile)); err != nil {
			return err
		}
		slog.Debug("Cleaning public directory", logfields.Path(public))
		if err := os.RemoveAll(public); err != nil {
			return fmt.Errorf("clean public directory %s: %w", public, err)
		}
	}
	if err := os.MkdirAll(public, 0o755); err != nil {
		return fmt.Errorf("create public directory %s: %w", public, err)
	}
	return nil
}

// checkCleanable rejects a public directory that holds any of the inputs.
func checkCleanable(public string, inputs ...string) error {
	absPublic, err := filepath.Abs(public)
	if err != nil {
		return fmt.Errorf("resolve public directory %s: %w", public, err)
	}
	for _, in := range inputs {
		absIn, err := filepath.Abs(in)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", in, err)
		}
		rel, err := filepath.Rel(absPublic, absIn)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return fmt.Errorf("%w %s: it contains %s", ErrUnsafePublicDir, public, in)
		}
	}
	return nil
}

func stageReconcile(_ context.Context, bs *BuildState) error {
	pairs, err := content.Reconcile(bs.Config.PostsDir, bs.Warn)
	if err != nil {
		return err
	}
	bs.Pairs = pairs
	bs.Report.Pairs = len(pairs)

	if !exists(bs.Config.PagesDir) {
		slog.Debug("No pages directory", logfields.Path(bs.Config.PagesDir))
		return nil
	}
	pagePairs, err := content.Reconcile(bs.Config.PagesDir, bs.Warn)
	if err != nil {
		return err
	}
	bs.PagePairs = pagePairs
	bs.Report.Pairs += len(pagePairs)
	return nil
}

func stageLoadEntries(_ context.Context, bs *BuildState) error {
	expander, err := location.NewExpander(bs.Config.BaseURL, bs.Config.PostPath)
	if err != nil {
		return err
	}
	locator := entry.NewUniqueLocator(expander)
	for _, page := range []struct{ owner, path string }{
		{"index page", bs.Config.IndexPath},
		{"feed", bs.Config.FeedPath},
	} {
		rel, err := render.OutputPathForURL(location.WithPath(bs.Config.BaseURL, page.path))
		if err != nil {
			return fmt.Errorf("%s: %w", page.owner, err)
		}
		locator.Reserve(rel, page.owner)
	}
	res, err := entry.Load(bs.Pairs, locator)
	if err != nil {
		return err
	}
	for _, slug := range res.Drafts {
		slog.Debug("Skipping draft", logfields.Slug(slug))
	}
	bs.Loaded = res
	bs.Report.Entries = len(res.Entries)
	bs.Report.Drafts = len(res.Drafts)

	if len(bs.PagePairs) == 0 {
		return nil
	}
	pageExpander, err := location.NewExpander(bs.Config.BaseURL, bs.Config.PagePath)
	if err != nil {
		return err
	}
	pages, err := entry.Load(bs.PagePairs, locator.With(pageExpander))
	if err != nil {
		return fmt.Errorf("pages: %w", err)
	}
	for _, slug := range pages.Drafts {
		slog.Debug("Skipping draft page", logfields.Slug(slug))
	}
	bs.Pages = pages.Entries
	return nil
}

func stageAggregate(_ context.Context, bs *BuildState) error {
	cfg := bs.Config
	bs.Feed = feed.Build(feed.Options{
		CapsuleURL: cfg.BaseURL,
		FeedPath:   cfg.FeedPath,
		IndexPath:  cfg.IndexPath,
		Title:      cfg.Title,
		Subtitle:   cfg.Subtitle,
		Rights:     cfg.Rights,
		Author:     cfg.Author,
	}, bs.Loaded.Entries, bs.Now)
	return nil
}

func stageRender(_ context.Context, bs *BuildState) error {
	res, err := bs.Renderer.Render(bs.Feed)
	if err != nil {
		return err
	}
	res.Pages, err = bs.Renderer.RenderPages(bs.Pages, bs.Feed)
	if err != nil {
		return err
	}
	bs.Report.Rendered = res
	return nil
}

func stageStaticMerge(_ context.Context, bs *BuildState) error {
	policy, err := staticmerge.ParsePolicy(bs.Config.StaticConflict)
	if err != nil {
		return err
	}
	stats, err := staticmerge.Merge(bs.Config.StaticDir, bs.Config.PublicDir, policy)
	if err != nil {
		return err
	}
	if stats.SourceMissing {
		slog.Debug("No static directory", logfields.Path(bs.Config.StaticDir))
	}
	bs.Report.Static = stats
	return nil
}
