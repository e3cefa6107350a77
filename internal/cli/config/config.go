// Package config loads specd CLI configuration.
//
// Values come from, lowest to highest precedence: built-in defaults, a YAML
// config file (specd.yaml in the working directory, or --config), SPECD_
// environment variables, and explicitly set command-line flags.
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

	"github.com/shapestone/shape-specd/pkg/specd"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Defaults.
const (
	DefaultConfigFile = "specd.yaml"
	DefaultOutput     = OutputText
	EnvPrefix         = "SPECD_"
)

// Config is the resolved CLI configuration.
type Config struct {
	// DataFile is the CSV name inside each catalog.
	DataFile string `koanf:"data_file"`
	// Quick skips the full row pass of validate.
	Quick bool `koanf:"quick"`
	// Verbose raises the log level to info.
	Verbose bool `koanf:"verbose"`
	// LogLevel sets the log level explicitly, overriding Verbose.
	LogLevel string `koanf:"log_level"`
	// Output is text, json or yaml.
	Output string `koanf:"output"`
	// Table is the SQLite table used by export and import.
	Table string `koanf:"table"`
	// Database is the SQLite database path. Empty means in-memory.
	Database string `koanf:"database"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// Catalog returns the catalog rooted at root using the configured data file.
func (c *Config) Catalog(root string) *specd.Catalog {
	cat := specd.NewCatalog(root)
	if c.DataFile != "" {
		cat.DataFile = c.DataFile
	}
	return cat
}

// Load resolves the configuration. cfgFile is an explicit config path, or
// "" to look for specd.yaml in the working directory. flags may be nil;
// only flags that were explicitly set are applied.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_file": specd.DataFileName,
		"quick":     false,
		"verbose":   false,
		"log_level": "",
		"output":    DefaultOutput,
		"table":     "",
		"database":  "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: SPECD_DATA_FILE -> data_file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output)
	}
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	return nil
}

// findConfigFile returns the explicit path, or the default file if it
// exists in the working directory, or "".
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}
