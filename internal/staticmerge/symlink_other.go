//go:build !unix

package staticmerge

import "fmt"

func (m merger) copySymlink(rel, _, _ string) error {
	return fmt.Errorf("%w: %s", ErrSymlinkUnsupported, rel)
}
