package entry

import (
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/gempost/internal/location"
)

// UniqueLocator wraps a Locator and rejects any entry whose output path was
// already claimed by an earlier entry in the same build.
type UniqueLocator struct {
	next    Locator
	claimed map[string]string
}

// NewUniqueLocator returns a UniqueLocator delegating to next.
func NewUniqueLocator(next Locator) *UniqueLocator {
	return &UniqueLocator{next: next, claimed: make(map[string]string)}
}

// With returns a UniqueLocator delegating to next that shares the paths
// claimed through u.
func (u *UniqueLocator) With(next Locator) *UniqueLocator {
	return &UniqueLocator{next: next, claimed: u.claimed}
}

// Reserve claims path for a generated page so that no entry can be located
// on top of it. owner names the page in duplicate errors.
func (u *UniqueLocator) Reserve(path, owner string) {
	u.claimed[filepath.Clean(path)] = owner
}

// Locate implements Locator.
func (u *UniqueLocator) Locate(slug string, published *time.Time) (location.Location, error) {
	loc, err := u.next.Locate(slug, published)
	if err != nil {
		return location.Location{}, err
	}

	key := filepath.Clean(loc.OutputPath)
	if owner, ok := u.claimed[key]; ok {
		return location.Location{}, fmt.Errorf("%w: %q and %q both resolve to %s", ErrDuplicateLocation, owner, slug, key)
	}
	u.claimed[key] = slug
	return loc, nil
}
