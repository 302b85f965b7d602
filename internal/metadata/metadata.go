// Package metadata parses and validates the YAML sidecar that accompanies
// each post.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Author identifies the author of a post or of the whole capsule.
type Author struct {
	Name  string  `yaml:"name"`
	Email *string `yaml:"email,omitempty"`
	URI   *string `yaml:"uri,omitempty"`
}

// EntryMetadata is the validated content of a sidecar file.
type EntryMetadata struct {
	ID         string
	Title      string
	Updated    time.Time
	Published  *time.Time
	Summary    *string
	Author     *Author
	Rights     *string
	Lang       *string
	Categories []string
	Draft      bool
	// Extra holds every key outside the fixed schema, in document order.
	Extra Fields
}

// SortTime is the instant used to order entries: published if set, else updated.
func (m EntryMetadata) SortTime() time.Time {
	if m.Published != nil {
		return *m.Published
	}
	return m.Updated
}

type rawMetadata struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Updated    string   `yaml:"updated"`
	Summary    *string  `yaml:"summary"`
	Published  *string  `yaml:"published"`
	Author     *Author  `yaml:"author"`
	Rights     *string  `yaml:"rights"`
	Lang       *string  `yaml:"lang"`
	Categories []string `yaml:"categories"`
	Draft      *bool    `yaml:"draft"`
}

// reservedKeys never pass through to Extra.
var reservedKeys = []string{
	"id",
	"title",
	"updated",
	"summary",
	"published",
	"author",
	"rights",
	"lang",
	"categories",
	"draft",
	"extra_variables",
}

func isReserved(key string) bool {
	return slices.Contains(reservedKeys, key)
}

// Read loads and validates the sidecar at path.
func Read(path string) (EntryMetadata, error) {
	// #nosec G304 -- path comes from the reconciled posts directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return EntryMetadata{}, fmt.Errorf("read metadata file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse validates sidecar bytes. path is only used in error messages.
func Parse(data []byte, path string) (EntryMetadata, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return EntryMetadata{}, &Error{Path: path, Reason: err.Error(), Err: err}
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return EntryMetadata{}, &Error{Path: path, Reason: "the metadata file must be a YAML mapping of keys to values", Err: ErrMissingField}
	}

	var raw rawMetadata
	if err := root.Decode(&raw); err != nil {
		return EntryMetadata{}, &Error{Path: path, Reason: err.Error(), Err: err}
	}

	for _, field := range []struct{ key, value string }{
		{"id", raw.ID},
		{"title", raw.Title},
		{"updated", raw.Updated},
	} {
		if strings.TrimSpace(field.value) == "" {
			return EntryMetadata{}, &Error{
				Path:   path,
				Reason: fmt.Sprintf("the post `%s` is required", field.key),
				Err:    ErrMissingField,
			}
		}
	}
	if raw.Author != nil && strings.TrimSpace(raw.Author.Name) == "" {
		return EntryMetadata{}, &Error{Path: path, Reason: "the post `author` must have a `name`", Err: ErrMissingField}
	}

	updated, err := parseTimestamp(path, "updated", raw.Updated)
	if err != nil {
		return EntryMetadata{}, err
	}

	var published *time.Time
	if raw.Published != nil {
		t, err := parseTimestamp(path, "published", *raw.Published)
		if err != nil {
			return EntryMetadata{}, err
		}
		published = &t
	}

	extra, err := FieldsFromNode(root, isReserved)
	if err != nil {
		return EntryMetadata{}, &Error{Path: path, Reason: err.Error(), Err: err}
	}

	categories := raw.Categories
	if categories == nil {
		categories = []string{}
	}

	return EntryMetadata{
		ID:         raw.ID,
		Title:      raw.Title,
		Updated:    updated,
		Published:  published,
		Summary:    raw.Summary,
		Author:     raw.Author,
		Rights:     raw.Rights,
		Lang:       raw.Lang,
		Categories: categories,
		Draft:      raw.Draft != nil && *raw.Draft,
		Extra:      extra,
	}, nil
}

func parseTimestamp(path, key, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &Error{
			Path:   path,
			Reason: fmt.Sprintf("the post `%s` time must be in RFC 3339 format (e.g. %s), got %q", key, ExampleTimestamp, value),
			Err:    ErrInvalidTimestamp,
		}
	}
	return t, nil
}
