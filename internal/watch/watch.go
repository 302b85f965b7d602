// Package watch rebuilds the capsule whenever one of its inputs changes.
//
// Events are debounced and builds run one at a time on the loop goroutine.
// Changes made while a build runs are seen once it returns and lead to a
// single follow-up build.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/gempost/internal/logfields"
)

// DefaultDebounce is the quiet window used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc runs one full build.
type BuildFunc func(ctx context.Context) error

// Options select what is watched.
type Options struct {
	// Dirs are watched recursively. A directory that does not exist yet is
	// watched for through its nearest existing ancestor.
	Dirs []string
	// Files are watched through their parent directory.
	Files []string
	// Ignore lists directories whose events never trigger a build, such as
	// the public directory.
	Ignore   []string
	Debounce time.Duration
}

// Watcher drives rebuilds from filesystem events.
type Watcher struct {
	opts  Options
	build BuildFunc
	files map[string]struct{}
	// pending holds watched directories that did not exist yet. Only the
	// goroutine running Run touches it.
	pending map[string]struct{}
}

// dirAdder is the part of *fsnotify.Watcher used to register directories.
type dirAdder interface {
	Add(name string) error
}

// New returns a Watcher that calls build after changes settle.
func New(build BuildFunc, opts Options) (*Watcher, error) {
	if build == nil {
		return nil, errors.New("watch: build func is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w := &Watcher{opts: opts, build: build, files: make(map[string]struct{}), pending: make(map[string]struct{})}
	for _, f := range opts.Files {
		w.files[absPath(f)] = struct{}{}
	}
	return w, nil
}

// Run builds once, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()

	for _, dir := range w.opts.Dirs {
		w.watchDir(fw, dir)
	}
	for _, f := range w.opts.Files {
		if err := fw.Add(filepath.Dir(absPath(f))); err != nil {
			slog.Warn("Cannot watch file", logfields.File(f), logfields.Error(err))
		}
	}

	w.runBuild(ctx)
	slog.Info("Watching for changes", slog.Int("dirs", len(fw.WatchList())))
	return w.loop(ctx, fw.Events, fw.Errors, func(ev fsnotify.Event) { w.handleCreate(fw, ev) })
}

// watchDir adds dir recursively, or its nearest existing ancestor when dir
// is missing so that its creation is seen.
func (w *Watcher) watchDir(fw dirAdder, dir string) {
	abs := absPath(dir)
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		addDirsRecursive(fw, abs)
		return
	}
	parent := existingAncestor(abs)
	if parent == "" {
		slog.Warn("Not watching directory without an existing parent", logfields.Path(dir))
		return
	}
	if err := fw.Add(parent); err != nil {
		slog.Warn("Cannot watch directory", logfields.Path(parent), logfields.Error(err))
		return
	}
	w.pending[abs] = struct{}{}
	slog.Info("Directory does not exist yet; watching for it", logfields.Path(dir), slog.String("parent", parent))
}

// handleCreate starts watching directories created under a watched tree or
// on the way to a pending directory.
func (w *Watcher) handleCreate(fw dirAdder, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	fi, err := os.Stat(ev.Name)
	if err != nil || !fi.IsDir() {
		return
	}
	addDirsRecursive(fw, ev.Name)
	for dir := range w.pending {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			delete(w.pending, dir)
			addDirsRecursive(fw, dir)
		}
	}
}

func existingAncestor(path string) string {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
		if next := filepath.Dir(dir); next == dir {
			return ""
		}
	}
}

// loop consumes events until ctx is done or the event channel closes.
// onEvent sees every relevant event before the debounce timer is reset.
func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, onEvent func(fsnotify.Event)) error {
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
			if onEvent != nil {
				onEvent(ev)
			}
			timer.Reset(w.opts.Debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		case <-timer.C:
			slog.Info("Change detected; rebuilding capsule")
			w.runBuild(ctx)
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context) {
	if err := w.build(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("Rebuild failed", logfields.Error(err))
	}
}

// relevant filters editor noise, ignored trees and siblings of watched files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || shouldIgnoreName(ev.Name) {
		return false
	}
	name := absPath(ev.Name)
	for _, dir := range w.opts.Ignore {
		if within(absPath(dir), name) {
			return false
		}
	}
	for _, dir := range w.opts.Dirs {
		if within(absPath(dir), name) {
			return true
		}
	}
	for dir := range w.pending {
		if within(name, dir) {
			return true
		}
	}
	_, ok := w.files[name]
	return ok
}

func addDirsRecursive(fw dirAdder, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				slog.Warn("Cannot watch directory", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreName reports hidden files and editor temporaries.
func shouldIgnoreName(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	return false
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
