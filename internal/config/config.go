// Package config loads the CLI configuration file.
//
//	cache_dir: /var/cache/opendisplay
//	cache_duration: 48h
//	source:
//	  api_url: https://api.github.com/repos/OpenEPaperLink/OpenEPaperLink/contents/resources/tagtypes
//	  timeout: 30s
//	log:
//	  level: info
//	  format: text
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/flavioheleno/opendisplay/internal/log"
	"github.com/flavioheleno/opendisplay/tagtype"
)

// Config is the CLI configuration.
type Config struct {
	CacheDir      string        `yaml:"cache_dir"`
	CacheDuration time.Duration `yaml:"cache_duration"`
	Source        Source        `yaml:"source"`
	Log           log.Config    `yaml:"log"`
}

// Source configures where tag type definitions are fetched from.
type Source struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return &Config{
		CacheDir:      filepath.Join(dir, "opendisplay"),
		CacheDuration: tagtype.CacheDuration,
		Source: Source{
			APIURL:  tagtype.GitHubAPIURL,
			Timeout: 30 * time.Second,
		},
		Log: log.Config{Level: "info", Format: "text"},
	}
}

// Load reads the file at URL over the defaults. URL may be a plain path or
// any scheme fs supports. An empty URL returns the defaults.
func Load(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	cfg := Default()
	if URL == "" {
		return cfg, nil
	}
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("config: %s: %w", URL, os.ErrNotExist)
	}
	b, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", URL, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", URL, err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("config: %s: %w", URL, errors.Join(errs...))
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() []error {
	var errs []error

	if c.CacheDir == "" {
		errs = append(errs, fmt.Errorf("'cache_dir' must not be empty"))
	}
	if c.CacheDuration <= 0 {
		errs = append(errs, fmt.Errorf("'cache_duration' must be positive"))
	}
	if u, err := url.Parse(c.Source.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("'source.api_url' must be an absolute URL"))
	}
	if c.Source.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("'source.timeout' must be positive"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("'log.level': %w", err))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("'log.format' must be text or json"))
	}

	return errs
}
