package render

import (
	"time"

	"git.home.luguber.info/inful/gempost/internal/entry"
	"git.home.luguber.info/inful/gempost/internal/feed"
	"git.home.luguber.info/inful/gempost/internal/metadata"
)

// AuthorData is the template view of an author. Absent optional fields are
// empty strings.
type AuthorData struct {
	Name  string
	Email string
	URI   string
}

// EntryData is the template view of one entry. Timestamps are RFC 3339
// strings; absent optional fields are empty.
type EntryData struct {
	ID         string
	URL        string
	Path       string
	Slug       string
	Title      string
	Body       string
	Updated    string
	Published  string
	Summary    string
	Author     *AuthorData
	Rights     string
	Lang       string
	Categories []string
	// Extra holds sidecar keys outside the fixed schema.
	Extra map[string]any
}

// FeedData is the template view of the whole capsule. Index and feed
// templates receive it directly.
type FeedData struct {
	CapsuleURL string
	FeedURL    string
	IndexURL   string
	Title      string
	Subtitle   string
	Rights     string
	Author     *AuthorData
	Updated    string
	Entries    []EntryData
}

// PostData is what a post template receives.
type PostData struct {
	Entry EntryData
	Feed  FeedData
}

// NewFeedData projects f for templates.
func NewFeedData(f feed.Feed) FeedData {
	entries := make([]EntryData, len(f.Entries))
	for i, e := range f.Entries {
		entries[i] = NewEntryData(e)
	}
	return FeedData{
		CapsuleURL: f.CapsuleURL.String(),
		FeedURL:    f.FeedURL.String(),
		IndexURL:   f.IndexURL.String(),
		Title:      f.Title,
		Subtitle:   deref(f.Subtitle),
		Rights:     deref(f.Rights),
		Author:     newAuthorData(f.Author),
		Updated:    formatTime(f.Updated),
		Entries:    entries,
	}
}

// NewEntryData projects e for templates.
func NewEntryData(e entry.Entry) EntryData {
	m := e.Metadata
	published := ""
	if m.Published != nil {
		published = formatTime(*m.Published)
	}
	data := EntryData{
		ID:         m.ID,
		Path:       e.Location.OutputPath,
		Slug:       e.Slug,
		Title:      m.Title,
		Body:       e.Body,
		Updated:    formatTime(m.Updated),
		Published:  published,
		Summary:    deref(m.Summary),
		Author:     newAuthorData(m.Author),
		Rights:     deref(m.Rights),
		Lang:       deref(m.Lang),
		Categories: m.Categories,
		Extra:      m.Extra.Map(),
	}
	if e.Location.URL != nil {
		data.URL = e.Location.URL.String()
	}
	return data
}

func newAuthorData(a *metadata.Author) *AuthorData {
	if a == nil {
		return nil
	}
	return &AuthorData{Name: a.Name, Email: deref(a.Email), URI: deref(a.URI)}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
