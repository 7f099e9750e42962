package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tada/config.toml)
// 3. Project config file (.tada.toml in the current directory)
// 4. Environment variables (TADA_*)
// 5. CLI flags registered on fs
//
// The root flags are registered on fs here; the remaining positional
// arguments are available from fs.Args() afterwards.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if path := userConfigPath(); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}
	if err := loadConfigFile(cfg, ProjectConfigFile, SourceProjFile); err != nil {
		return nil, fmt.Errorf("loading project config file %s: %w", ProjectConfigFile, err)
	}

	if err := loadFromEnv(cfg, os.Getenv); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if fs != nil {
		if err := parseFlags(cfg, fs, args); err != nil {
			return nil, fmt.Errorf("parsing flags: %w", err)
		}
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// loadConfigFile decodes TOML from path over cfg. A missing file is not an error.
func loadConfigFile(cfg *Config, path string, src Source) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	for _, f := range fields {
		if md.IsDefined(f) {
			cfg.set(f, src)
		}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// loadFromEnv overrides config from TADA_* environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TADA_DATA"); v != "" {
		cfg.DataFile = v
		cfg.set("data_file", SourceEnv)
	}
	if v := getenv("TADA_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
		cfg.set("backend", SourceEnv)
	}
	if v := getenv("TADA_QUOTE_URL"); v != "" {
		cfg.QuoteURL = v
		cfg.set("quote_url", SourceEnv)
	}
	if v := getenv("TADA_QUOTE_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TADA_QUOTE_TIMEOUT: %w", err)
		}
		cfg.QuoteTimeout = n
		cfg.set("quote_timeout", SourceEnv)
	}
	if v := getenv("TADA_NO_QUOTE"); v != "" {
		cfg.NoQuote = boolFromString(v)
		cfg.set("no_quote", SourceEnv)
	}
	if v := getenv("TADA_THEME"); v != "" {
		cfg.Theme = strings.ToLower(v)
		cfg.set("theme", SourceEnv)
	}
	if v := getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		cfg.set("log_level", SourceEnv)
	}
	if v := getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
		cfg.set("log_file", SourceEnv)
	}
	return nil
}

func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// flagNames maps flag names to config fields.
var flagNames = map[string]string{
	"data":          "data_file",
	"backend":       "backend",
	"quote-url":     "quote_url",
	"quote-timeout": "quote_timeout",
	"no-quote":      "no_quote",
	"theme":         "theme",
	"group":         "group",
	"log-level":     "log_level",
	"log-file":      "log_file",
}

// flagValues holds the flag targets registered on a FlagSet.
type flagValues struct {
	data, backend, quoteURL, theme, logLevel, logFile *string
	quoteTimeout                                      *int
	noQuote, group                                    *bool
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	return &flagValues{
		data:         fs.String("data", "", "path of the data file"),
		backend:      fs.String("backend", "", "storage backend: json or sqlite"),
		quoteURL:     fs.String("quote-url", "", "quote endpoint"),
		quoteTimeout: fs.Int("quote-timeout", 0, "quote request timeout in seconds (0 = none)"),
		noQuote:      fs.Bool("no-quote", false, "do not fetch a quote"),
		theme:        fs.String("theme", "", "output theme: classic, neon or mono"),
		group:        fs.Bool("group", false, "group output by pending/done"),
		logLevel:     fs.String("log-level", "", "log level: debug, info, warn, error, off"),
		logFile:      fs.String("log-file", "", "write logs to this file"),
	}
}

// parseFlags registers the root flags on fs, parses args and copies the
// flags that were set explicitly into cfg.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	v := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		field, ok := flagNames[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "data":
			cfg.DataFile = *v.data
		case "backend":
			cfg.Backend = strings.ToLower(*v.backend)
		case "quote-url":
			cfg.QuoteURL = *v.quoteURL
		case "quote-timeout":
			cfg.QuoteTimeout = *v.quoteTimeout
		case "no-quote":
			cfg.NoQuote = *v.noQuote
		case "theme":
			cfg.Theme = strings.ToLower(*v.theme)
		case "group":
			cfg.Group = *v.group
		case "log-level":
			cfg.LogLevel = *v.logLevel
		case "log-file":
			cfg.LogFile = *v.logFile
		}
		cfg.set(field, SourceFlag)
	})
	return nil
}

// finalizeConfig validates values and resolves the data file path.
func finalizeConfig(cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultJSONFile
		if cfg.Backend == "sqlite" {
			cfg.DataFile = DefaultSQLiteFile
		}
	}
	cfg.DataFile = expandPath(cfg.DataFile)
	cfg.LogFile = expandPath(cfg.LogFile)
	if !filepath.IsAbs(cfg.DataFile) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.DataFile = filepath.Join(wd, cfg.DataFile)
	}
	return nil
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
