// Package config loads CLI settings from defaults, a config file,
// environment variables and command-line flags.
//
// Precedence (highest to lowest): changed flags > OBJTOK_* env vars >
// config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/roach88/objtok/internal/engine"
)

// EnvPrefix prefixes environment variables, e.g. OBJTOK_MAX_PASSES.
const EnvPrefix = "OBJTOK_"

// DefaultFiles are searched in the working directory when no config file is
// given explicitly.
var DefaultFiles = []string{".objtok.yaml", ".objtok.yml"}

// Config holds the resolved settings.
type Config struct {
	// Strict fails runs on unresolved tokens instead of blanking them.
	Strict bool `koanf:"strict"`

	// MaxPasses bounds fixpoint passes per document.
	MaxPasses int `koanf:"max_passes"`

	// Database is the run journal path. Empty disables journaling.
	Database string `koanf:"database"`

	// Format is the output format, "text" or "json".
	Format string `koanf:"format"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"db": "database",
}

// Load builds a Config. cfgFile may be empty to search DefaultFiles.
// flags may be nil; only flags that were explicitly set are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"strict":     false,
		"max_passes": engine.DefaultMaxPasses,
		"database":   "",
		"format":     "text",
		"verbose":    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// OBJTOK_MAX_PASSES -> max_passes
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 {
		return fmt.Errorf("max_passes must be at least 1, got %d", c.MaxPasses)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json", c.Format)
	}
	return nil
}

// EngineOptions translates the settings into engine options.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithThrowOnUnresolved(c.Strict),
		engine.WithMaxPasses(c.MaxPasses),
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}
