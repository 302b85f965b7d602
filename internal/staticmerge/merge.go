// Package staticmerge overlays the static asset tree onto the public
// directory after all generated files have been written.
package staticmerge

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrConflict indicates a static asset collides with an existing file.
	ErrConflict = errors.New("static asset conflicts with an existing file")

	// ErrUnsupportedFileType indicates a static entry that is not a regular
	// file, directory or symlink.
	ErrUnsupportedFileType = errors.New("unsupported static file type")

	// ErrSymlinkUnsupported indicates symlinks cannot be recreated on this platform.
	ErrSymlinkUnsupported = errors.New("symlinks in the static directory are not supported on this platform")

	// ErrInvalidPolicy indicates an unknown conflict policy name.
	ErrInvalidPolicy = errors.New("invalid static conflict policy")
)

// Policy decides what happens when a static file lands on an existing file.
type Policy string

const (
	// PolicyFail aborts the merge on the first conflicting file.
	PolicyFail Policy = "fail"
	// PolicyOverwrite replaces the existing file with the static one.
	PolicyOverwrite Policy = "overwrite"
)

// ParsePolicy validates a policy name. An empty name selects PolicyFail.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyOverwrite:
		return PolicyOverwrite, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidPolicy, s, PolicyFail, PolicyOverwrite)
	}
}

// Stats counts what a merge copied.
type Stats struct {
	Files    int
	Dirs     int
	Symlinks int
	// SourceMissing is set when the static directory does not exist.
	SourceMissing bool
}

// Merge copies every entry under src into dst, keeping relative structure.
// A missing src is not an error.
func Merge(src, dst string, policy Policy) (Stats, error) {
	var stats Stats

	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		stats.SourceMissing = true
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("stat static directory %s: %w", src, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("static path %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return stats, fmt.Errorf("create public directory %s: %w", dst, err)
	}

	m := merger{src: src, dst: dst, policy: policy, stats: &stats}
	err = filepath.WalkDir(src, m.visit)
	return stats, err
}

type merger struct {
	src    string
	dst    string
	policy Policy
	stats  *Stats
}

func (m merger) visit(path string, d fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return fmt.Errorf("read static entry %s: %w", path, walkErr)
	}
	rel, err := filepath.Rel(m.src, path)
	if err != nil {
		return fmt.Errorf("resolve static entry %s: %w", path, err)
	}
	if rel == "." {
		return nil
	}
	target := filepath.Join(m.dst, rel)

	switch mode := d.Type(); {
	case mode.IsDir():
		if err := m.mergeDir(rel, target); err != nil {
			return err
		}
		m.stats.Dirs++
	case mode.IsRegular():
		if err := m.copyFile(rel, path, target); err != nil {
			return err
		}
		m.stats.Files++
	case mode&fs.ModeSymlink != 0:
		if err := m.copySymlink(rel, path, target); err != nil {
			return err
		}
		m.stats.Symlinks++
	default:
		return fmt.Errorf("%w: %s (%s)", ErrUnsupportedFileType, rel, mode.Type())
	}
	return nil
}

func (m merger) mergeDir(rel, target string) error {
	existing, err := os.Lstat(target)
	switch {
	case err == nil && existing.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("%w: directory %s would replace a file", ErrConflict, rel)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", target, err)
	}
	if err := os.Mkdir(target, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", target, err)
	}
	return nil
}

// clearTarget applies the conflict policy to whatever exists at target. It
// returns nil when target is free to be written.
func (m merger) clearTarget(rel, target string) error {
	existing, err := os.Lstat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}
	if existing.IsDir() {
		return fmt.Errorf("%w: %s would replace a directory", ErrConflict, rel)
	}
	if m.policy != PolicyOverwrite {
		return fmt.Errorf("%w: %s already exists in the public directory", ErrConflict, rel)
	}
	if err := os.Remove(target); err != nil {
		return fmt.Errorf("remove %s: %w", target, err)
	}
	return nil
}

func (m merger) copyFile(rel, src, target string) error {
	if err := m.clearTarget(rel, target); err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	// #nosec G304 -- src is inside the configured static directory.
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- target is inside the public directory.
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", rel, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	// Undo the umask so the published mode matches the source.
	if err := os.Chmod(target, info.Mode().Perm()); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	return nil
}
