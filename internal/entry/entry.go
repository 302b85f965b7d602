// Package entry loads reconciled content pairs into validated, located
// entries ready for aggregation.
package entry

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"git.home.luguber.info/inful/gempost/internal/content"
	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/metadata"
)

var (
	// ErrInvalidUTF8 indicates a body file is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("post body is not valid UTF-8")

	// ErrDuplicateLocation indicates two entries resolve to the same output path.
	ErrDuplicateLocation = errors.New("duplicate entry location")
)

// Entry is one published post. Entries are never modified after Load.
type Entry struct {
	Metadata metadata.EntryMetadata
	Body     string
	Slug     string
	Location location.Location
}

// Locator computes where an entry is published.
type Locator interface {
	Locate(slug string, published *time.Time) (location.Location, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(slug string, published *time.Time) (location.Location, error)

// Locate calls f.
func (f LocatorFunc) Locate(slug string, published *time.Time) (location.Location, error) {
	return f(slug, published)
}

// Result is the outcome of loading a set of pairs.
type Result struct {
	Entries []Entry
	// Drafts lists the slugs skipped because they are marked as drafts.
	Drafts []string
}

// Load validates every pair in order and computes the location of each
// published entry. Drafts are dropped before their location is computed.
// The first failure aborts the load.
func Load(pairs []content.Pair, locator Locator) (Result, error) {
	var res Result
	for _, pair := range pairs {
		e, draft, err := loadOne(pair, locator)
		if err != nil {
			return Result{}, err
		}
		if draft {
			res.Drafts = append(res.Drafts, pair.Slug())
			continue
		}
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func loadOne(pair content.Pair, locator Locator) (Entry, bool, error) {
	// #nosec G304 -- path comes from the reconciled posts directory.
	raw, err := os.ReadFile(pair.Body)
	if err != nil {
		return Entry{}, false, fmt.Errorf("read post body %s: %w", pair.Body, err)
	}
	if !utf8.Valid(raw) {
		return Entry{}, false, fmt.Errorf("%w: %s", ErrInvalidUTF8, pair.Body)
	}

	meta, err := metadata.Read(pair.Metadata)
	if err != nil {
		return Entry{}, false, err
	}
	if meta.Draft {
		return Entry{}, true, nil
	}

	slug := pair.Slug()
	loc, err := locator.Locate(slug, meta.Published)
	if err != nil {
		return Entry{}, false, fmt.Errorf("locate post %s: %w", pair.Body, err)
	}

	return Entry{
		Metadata: meta,
		Body:     string(raw),
		Slug:     slug,
		Location: loc,
	}, false, nil
}
