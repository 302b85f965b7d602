// Package feed aggregates loaded entries into the capsule-wide model that
// the index, the Atom feed and every post page are rendered from.
package feed

import (
	"net/url"
	"slices"
	"time"

	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/metadata"
)

// Options is the capsule-level identity taken from configuration.
type Options struct {
	CapsuleURL *url.URL
	FeedPath   string
	IndexPath  string
	Title      string
	Subtitle   *string
	Rights     *string
	Author     *metadata.Author
}

// Feed is built once per build and never modified afterwards.
type Feed struct {
	CapsuleURL *url.URL
	FeedURL    *url.URL
	IndexURL   *url.URL
	Title      string
	Subtitle   *string
	Rights     *string
	Author     *metadata.Author
	Updated    time.Time
	// Entries are newest first by publish date, falling back to the update
	// date. Equal dates keep the order entries were given in.
	Entries []entry.Entry
}

// Build sorts entries and derives the feed URLs and update time. now is used
// as the update time of a feed without entries.
func Build(opts Options, entries []entry.Entry, now time.Time) Feed {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b entry.Entry) int {
		return b.Metadata.SortTime().Compare(a.Metadata.SortTime())
	})

	updated := now
	for i, e := range sorted {
		if i == 0 || e.Metadata.Updated.After(updated) {
			updated = e.Metadata.Updated
		}
	}

	return Feed{
		CapsuleURL: opts.CapsuleURL,
		FeedURL:    location.WithPath(opts.CapsuleURL, opts.FeedPath),
		IndexURL:   location.WithPath(opts.CapsuleURL, opts.IndexPath),
		Title:      opts.Title,
		Subtitle:   opts.Subtitle,
		Rights:     opts.Rights,
		Author:     opts.Author,
		Updated:    updated,
		Entries:    sorted,
	}
}
