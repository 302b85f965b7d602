package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Snapshot computes a stable hash of the fields that affect build output.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }
	w("title", c.Title)
	w("url", c.URL)
	w("subtitle", deref(c.Subtitle))
	w("rights", deref(c.Rights))
	if c.Author != nil {
		w("author.name", c.Author.Name)
		w("author.email", deref(c.Author.Email))
		w("author.uri", deref(c.Author.URI))
	}
	w("public_dir", c.PublicDir)
	w("static_dir", c.StaticDir)
	w("posts_dir", c.PostsDir)
	w("index_template_file", c.IndexTemplateFile)
	w("post_template_file", c.PostTemplateFile)
	w("pages_dir", c.PagesDir)
	w("page_template_file", c.PageTemplateFile)
	w("post_path", c.PostPath)
	w("page_path", c.PagePath)
	w("index_path", c.IndexPath)
	w("feed_path", c.FeedPath)
	w("static_conflict", c.StaticConflict)
	if c.CleanPublicDir() {
		w("clean", "true")
	} else {
		w("clean", "false")
	}
	return hex.EncodeToString(h.Sum(nil))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
