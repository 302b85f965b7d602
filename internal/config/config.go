// Package config loads and validates the capsule configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/gempost/internal/metadata"
)

// DefaultPath is where the CLI looks for the configuration file.
const DefaultPath = "./gempost.yaml"

var (
	// ErrNotFound indicates the configuration file does not exist.
	ErrNotFound = errors.New("configuration file not found")

	// ErrInvalid indicates the configuration file parsed but failed validation.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the capsule configuration.
type Config struct {
	Title    string           `yaml:"title"`
	URL      string           `yaml:"url"`
	Subtitle *string          `yaml:"subtitle,omitempty"`
	Rights   *string          `yaml:"rights,omitempty"`
	Author   *metadata.Author `yaml:"author,omitempty"`

	PublicDir         string `yaml:"public_dir"`
	StaticDir         string `yaml:"static_dir"`
	PostsDir          string `yaml:"posts_dir"`
	IndexTemplateFile string `yaml:"index_template_file"`
	PostTemplateFile  string `yaml:"post_template_file"`
	PagesDir          string `yaml:"pages_dir"`
	PageTemplateFile  string `yaml:"page_template_file"`

	PostPath  string `yaml:"post_path"`
	PagePath  string `yaml:"page_path"`
	IndexPath string `yaml:"index_path"`
	FeedPath  string `yaml:"feed_path"`

	StaticConflict string `yaml:"static_conflict"`
	Clean          *bool  `yaml:"clean,omitempty"`

	// BaseURL is URL parsed during validation.
	BaseURL *url.URL `yaml:"-"`
	// File is the path the configuration was loaded from.
	File string `yaml:"-"`
}

// CleanPublicDir reports whether the public directory is removed before a build.
func (c *Config) CleanPublicDir() bool {
	return c.Clean == nil || *c.Clean
}

// Load reads the configuration at configPath, expands environment variables,
// applies defaults and validates the result. Relative directories are
// resolved against the directory containing the file.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	// #nosec G304 -- the config path is chosen by the user.
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse([]byte(expandEnv(string(data))))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	cfg.File = configPath
	cfg.resolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

// Parse decodes, defaults and validates configuration bytes. Paths are left
// as written.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	applyDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(baseDir string) {
	for _, p := range []*string{
		&c.PublicDir,
		&c.StaticDir,
		&c.PostsDir,
		&c.IndexTemplateFile,
		&c.PostTemplateFile,
		&c.PagesDir,
		&c.PageTemplateFile,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
}
