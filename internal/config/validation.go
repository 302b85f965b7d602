package config

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/gempost/internal/location"
	"git.home.luguber.info/inful/gempost/internal/staticmerge"
)

// ValidateConfig checks a defaulted configuration and fills BaseURL.
func ValidateConfig(cfg *Config) error {
	cv := &configurationValidator{config: cfg}
	return cv.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateIdentity(); err != nil {
		return err
	}
	if err := cv.validateURL(); err != nil {
		return err
	}
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if _, err := staticmerge.ParsePolicy(cv.config.StaticConflict); err != nil {
		return fmt.Errorf("%w: static_conflict: %w", ErrInvalid, err)
	}
	return nil
}

func (cv *configurationValidator) validateIdentity() error {
	if strings.TrimSpace(cv.config.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if a := cv.config.Author; a != nil && strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: author.name is required when author is set", ErrInvalid)
	}
	return nil
}

func (cv *configurationValidator) validateURL() error {
	raw := strings.TrimSpace(cv.config.URL)
	if raw == "" {
		return fmt.Errorf("%w: url is required", ErrInvalid)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: url %q: %w", ErrInvalid, raw, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Opaque != "" {
		return fmt.Errorf("%w: url %q must be absolute, e.g. gemini://example.org/", ErrInvalid, raw)
	}
	cv.config.BaseURL = u
	return nil
}

func (cv *configurationValidator) validatePaths() error {
	for _, p := range []struct{ key, value string }{
		{"index_path", cv.config.IndexPath},
		{"feed_path", cv.config.FeedPath},
	} {
		if strings.Trim(p.value, "/") == "" {
			return fmt.Errorf("%w: %s must name a file, got %q", ErrInvalid, p.key, p.value)
		}
	}
	if cleanURLPath(cv.config.IndexPath) == cleanURLPath(cv.config.FeedPath) {
		return fmt.Errorf("%w: index_path %q and feed_path %q name the same file", ErrInvalid, cv.config.IndexPath, cv.config.FeedPath)
	}
	for _, p := range []struct{ key, value string }{
		{"post_path", cv.config.PostPath},
		{"page_path", cv.config.PagePath},
	} {
		if _, err := location.NewExpander(cv.config.BaseURL, p.value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, p.key, err)
		}
	}
	return nil
}

// cleanURLPath normalizes a capsule-relative path for comparison.
func cleanURLPath(p string) string {
	return path.Clean("/" + p)
}
