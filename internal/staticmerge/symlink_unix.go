//go:build unix

package staticmerge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

func (m merger) copySymlink(rel, src, target string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("read symlink %s: %w", src, err)
	}

	existing, err := os.Lstat(target)
	switch {
	case err == nil && existing.Mode()&fs.ModeSymlink != 0:
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("remove %s: %w", target, err)
		}
	case err == nil:
		if err := m.clearTarget(rel, target); err != nil {
			return err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat %s: %w", target, err)
	}

	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("create symlink %s: %w", target, err)
	}
	return nil
}
