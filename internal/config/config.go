// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Source records where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultBackend    = "json"
	DefaultJSONFile   = "tada.json"
	DefaultSQLiteFile = "tada.db"
	DefaultQuoteURL   = "https://api.quotable.io/random"
	DefaultTheme      = "classic"
	DefaultLogLevel   = "warn"

	UserConfigDir     = ".tada"
	UserConfigFile    = "config.toml"
	ProjectConfigFile = ".tada.toml"
)

// Config holds the full configuration for tada.
type Config struct {
	// Storage
	DataFile string `toml:"data_file"`
	Backend  string `toml:"backend"` // json | sqlite

	// Quote panel
	QuoteURL     string `toml:"quote_url"`
	QuoteTimeout int    `toml:"quote_timeout"` // seconds, 0 = none
	NoQuote      bool   `toml:"no_quote"`

	// Output
	Theme string `toml:"theme"`
	Group bool   `toml:"group"`

	// Logging
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	sources map[string]Source
}

func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.QuoteURL = DefaultQuoteURL
	cfg.Theme = DefaultTheme
	cfg.LogLevel = DefaultLogLevel
	cfg.sources = map[string]Source{}
	for _, f := range fields {
		cfg.sources[f] = SourceDefault
	}
}

// fields lists the configurable keys, as spelled in TOML.
var fields = []string{
	"data_file",
	"backend",
	"quote_url",
	"quote_timeout",
	"no_quote",
	"theme",
	"group",
	"log_level",
	"log_file",
}

// Timeout returns the quote request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	if c.QuoteTimeout <= 0 {
		return 0
	}
	return time.Duration(c.QuoteTimeout) * time.Second
}

// Source returns where field was last set.
func (c *Config) Source(field string) Source {
	if s, ok := c.sources[field]; ok {
		return s
	}
	return SourceDefault
}

func (c *Config) set(field string, src Source) {
	if c.sources == nil {
		c.sources = map[string]Source{}
	}
	c.sources[field] = src
}

func (c *Config) validate() error {
	switch c.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("backend %q: want json or sqlite", c.Backend)
	}
	switch c.Theme {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("theme %q: want classic, neon or mono", c.Theme)
	}
	if c.QuoteTimeout < 0 {
		return fmt.Errorf("quote_timeout must be >= 0, got %d", c.QuoteTimeout)
	}
	return nil
}

// Describe renders "key = value  (source)" lines for every field.
func (c *Config) Describe() []string {
	values := map[string]string{
		"data_file":     c.DataFile,
		"backend":       c.Backend,
		"quote_url":     c.QuoteURL,
		"quote_timeout": fmt.Sprint(c.QuoteTimeout),
		"no_quote":      fmt.Sprint(c.NoQuote),
		"theme":         c.Theme,
		"group":         fmt.Sprint(c.Group),
		"log_level":     c.LogLevel,
		"log_file":      c.LogFile,
	}
	keys := append([]string(nil), fields...)
	sort.Strings(keys)
	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s%s = %q  (%s)", k, strings.Repeat(" ", width-len(k)), values[k], c.Source(k)))
	}
	return out
}
