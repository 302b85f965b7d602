// Package scaffold creates the file pair for a new post or standalone page.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

var (
	// ErrAlreadyExists indicates that a post with the requested slug exists.
	ErrAlreadyExists = errors.New("post already exists")
	// ErrInvalidSlug indicates a slug that cannot name a file pair.
	ErrInvalidSlug = errors.New("invalid slug")
)

// Options describe the post to create. At least one of Slug and Title must
// be set.
type Options struct {
	Slug  string
	Title string
	Now   time.Time
}

// Post is the pair written by New.
type Post struct {
	Slug         string
	ID           string
	BodyPath     string
	MetadataPath string
}

type newMetadata struct {
	ID      string `yaml:"id"`
	Title   string `yaml:"title"`
	Updated string `yaml:"updated"`
	Draft   bool   `yaml:"draft"`
}

// New writes <slug>.gmi and <slug>.yaml into dir. The metadata file is
// a draft with a fresh urn:uuid id. Neither file is overwritten when one of
// them already exists.
func New(dir string, opts Options) (Post, error) {
	slug := opts.Slug
	if slug == "" {
		slug = Slugify(opts.Title)
	}
	if err := validateSlug(slug); err != nil {
		return Post{}, err
	}
	title := opts.Title
	if title == "" {
		title = slug
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	post := Post{
		Slug:         slug,
		ID:           "urn:uuid:" + uuid.NewString(),
		BodyPath:     filepath.Join(dir, slug+".gmi"),
		MetadataPath: filepath.Join(dir, slug+".yaml"),
	}

	meta, err := yaml.Marshal(newMetadata{
		ID:      post.ID,
		Title:   title,
		Updated: now.Truncate(time.Second).Format(time.RFC3339),
		Draft:   true,
	})
	if err != nil {
		return Post{}, fmt.Errorf("encode metadata for %s: %w", slug, err)
	}

	for _, p := range []string{post.BodyPath, post.MetadataPath} {
		if _, err := os.Lstat(p); err == nil {
			return Post{}, fmt.Errorf("%w: %s", ErrAlreadyExists, slug)
		}
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Post{}, fmt.Errorf("create directory %s: %w", dir, err)
	}
	if err := createNew(post.BodyPath, nil, slug); err != nil {
		return Post{}, err
	}
	if err := createNew(post.MetadataPath, meta, slug); err != nil {
		_ = os.Remove(post.BodyPath)
		return Post{}, err
	}
	return post, nil
}

func createNew(path string, data []byte, slug string) error {
	// #nosec G304 -- path is built from the content directory and a validated slug.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, slug)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func validateSlug(slug string) error {
	switch {
	case slug == "":
		return fmt.Errorf("%w: a slug or a title is required", ErrInvalidSlug)
	case slug == "." || slug == "..", strings.ContainsAny(slug, `/\`):
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	return nil
}

// Slugify derives a slug from a title: accents are stripped, letters are
// lowercased and every run of other characters becomes a single hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
