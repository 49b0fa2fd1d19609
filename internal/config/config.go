package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/chunkgrep/pkg/types"
)

// EnvConfigPath overrides the default config file location
const EnvConfigPath = "CHUNKGREP_CONFIG"

// Output actions
const (
	ActionPrint   = "print"
	ActionFile    = "file"
	ActionBoolean = "boolean"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents chunkgrep configuration options
type Config struct {
	// ChunkSize is the number of lines handed to a worker at once
	ChunkSize int `yaml:"chunk_size"`

	// Parallelism is the number of matching workers
	Parallelism int `yaml:"parallelism"`

	// QueueCapacity bounds the work queue (0 = parallelism)
	QueueCapacity int `yaml:"queue_capacity"`

	// IgnoreCase enables case-insensitive matching
	IgnoreCase bool `yaml:"ignore_case"`

	// Action selects the output form (print, file, boolean)
	Action string `yaml:"action"`

	// Color controls match highlighting (auto, always, never)
	Color string `yaml:"color"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log encoding (text, json)
	LogFormat string `yaml:"log_format"`

	// SkipHidden skips dot files and directories below the root
	SkipHidden bool `yaml:"skip_hidden"`

	// ExcludeDirs lists directory names that are never entered
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:   types.DefaultChunkSize,
		Parallelism: types.DefaultParallelism,
		Action:      ActionPrint,
		Color:       ColorAuto,
		LogLevel:    "warn",
		LogFormat:   "text",
	}
}

// DefaultPath returns $CHUNKGREP_CONFIG, or config.yaml in the user's
// configuration directory
func DefaultPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chunkgrep", "config.yaml")
}

// LoadConfig loads configuration from a YAML file. A missing file (or an
// empty path) yields the defaults; values present in the file override them.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointers tell an explicit false or zero apart from an absent key
	type yamlConfig struct {
		ChunkSize     *int     `yaml:"chunk_size"`
		Parallelism   *int     `yaml:"parallelism"`
		QueueCapacity *int     `yaml:"queue_capacity"`
		IgnoreCase    *bool    `yaml:"ignore_case"`
		Action        string   `yaml:"action"`
		Color         string   `yaml:"color"`
		LogLevel      string   `yaml:"log_level"`
		LogFormat     string   `yaml:"log_format"`
		SkipHidden    *bool    `yaml:"skip_hidden"`
		ExcludeDirs   []string `yaml:"exclude_dirs"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.ChunkSize != nil {
		cfg.ChunkSize = *yamlCfg.ChunkSize
	}
	if yamlCfg.Parallelism != nil {
		cfg.Parallelism = *yamlCfg.Parallelism
	}
	if yamlCfg.QueueCapacity != nil {
		cfg.QueueCapacity = *yamlCfg.QueueCapacity
	}
	if yamlCfg.IgnoreCase != nil {
		cfg.IgnoreCase = *yamlCfg.IgnoreCase
	}
	if yamlCfg.Action != "" {
		cfg.Action = yamlCfg.Action
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogFormat != "" {
		cfg.LogFormat = yamlCfg.LogFormat
	}
	if yamlCfg.SkipHidden != nil {
		cfg.SkipHidden = *yamlCfg.SkipHidden
	}
	if yamlCfg.ExcludeDirs != nil {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}

	return cfg, nil
}

// Validate checks the options that are not part of the search itself.
// Search limits are checked by types.SearchConfig.Validate.
func (c *Config) Validate() error {
	switch c.Action {
	case ActionPrint, ActionFile, ActionBoolean:
	default:
		return types.NewError(types.KindConfig, "",
			fmt.Errorf("invalid action %q, must be one of: print, file, boolean", c.Action))
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return types.NewError(types.KindConfig, "",
			fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color))
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return types.NewError(types.KindConfig, "",
			fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel))
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return types.NewError(types.KindConfig, "",
			fmt.Errorf("invalid log_format %q, must be text or json", c.LogFormat))
	}

	return nil
}

// SearchConfig builds the core search configuration for one run
func (c *Config) SearchConfig(pattern, root string) types.SearchConfig {
	return types.SearchConfig{
		Pattern:       pattern,
		Root:          root,
		IgnoreCase:    c.IgnoreCase,
		Parallelism:   c.Parallelism,
		ChunkSize:     c.ChunkSize,
		QueueCapacity: c.QueueCapacity,
	}
}
