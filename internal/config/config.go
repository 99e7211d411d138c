package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".difftest.yaml"

// Diff provider names.
const (
	ProviderExternal = "external"
	ProviderBuiltin  = "builtin"
)

// Builtin diff output formats.
const (
	FormatNormal  = "normal"
	FormatUnified = "unified"
)

// DefaultHint is printed after the failure list.
const DefaultHint = "=== use 'task utestdiff N=<n>' to see the diff"

// DiffConfig selects and tunes the diff provider
type DiffConfig struct {
	// Provider is "external" (run Command) or "builtin" (in-process)
	Provider string `yaml:"provider"`

	// Command is the external diff executable
	Command string `yaml:"command"`

	// Args are passed to Command before the two file names
	Args []string `yaml:"args"`

	// Format is the builtin output format (normal, unified)
	Format string `yaml:"format"`

	// Context is the number of context lines in unified output
	Context int `yaml:"context"`

	// Timeout bounds the external diff run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`
}

// Config represents difftest configuration options
type Config struct {
	// LogFile is the test log to scan; it is also the scratch file base name
	LogFile string `yaml:"log_file"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Color controls colored output (auto, always, never)
	Color string `yaml:"color"`

	// Hint is the line printed after the failure list
	Hint string `yaml:"hint"`

	// Diff contains diff provider configuration
	Diff DiffConfig `yaml:"diff"`
}

// DefaultConfig returns a Config that reproduces the plain script behavior
func DefaultConfig() *Config {
	return &Config{
		LogFile:  "_difftest",
		LogLevel: "warn",
		Color:    "auto",
		Hint:     DefaultHint,
		Diff: DiffConfig{
			Provider: ProviderExternal,
			Command:  "diff",
			Args:     nil,
			Format:   FormatNormal,
			Context:  3,
			Timeout:  0,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Timeout is read as a string so "30s" style values parse
	type yamlDiffConfig struct {
		Provider string   `yaml:"provider"`
		Command  string   `yaml:"command"`
		Args     []string `yaml:"args"`
		Format   string   `yaml:"format"`
		Context  int      `yaml:"context"`
		Timeout  string   `yaml:"timeout"`
	}
	type yamlConfig struct {
		LogFile  string         `yaml:"log_file"`
		LogLevel string         `yaml:"log_level"`
		Color    string         `yaml:"color"`
		Hint     string         `yaml:"hint"`
		Diff     yamlDiffConfig `yaml:"diff"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogFile != "" {
		cfg.LogFile = yamlCfg.LogFile
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.Hint != "" {
		cfg.Hint = yamlCfg.Hint
	}

	// Only keys present in the diff section override defaults, so an
	// explicit "context: 0" is honored
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if diffSection, exists := rawMap["diff"]; exists && diffSection != nil {
			diffMap, _ := diffSection.(map[string]interface{})
			d := yamlCfg.Diff

			if _, exists := diffMap["provider"]; exists {
				cfg.Diff.Provider = d.Provider
			}
			if _, exists := diffMap["command"]; exists {
				cfg.Diff.Command = d.Command
			}
			if _, exists := diffMap["args"]; exists {
				cfg.Diff.Args = d.Args
			}
			if _, exists := diffMap["format"]; exists {
				cfg.Diff.Format = d.Format
			}
			if _, exists := diffMap["context"]; exists {
				cfg.Diff.Context = d.Context
			}
			if _, exists := diffMap["timeout"]; exists && d.Timeout != "" {
				timeout, err := time.ParseDuration(d.Timeout)
				if err != nil {
					return nil, fmt.Errorf("invalid diff.timeout format %q: %w", d.Timeout, err)
				}
				cfg.Diff.Timeout = timeout
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .difftest.yaml in the specified directory
// If the file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, FileName))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logFile, logLevel, color, provider, format *string) {
	if logFile != nil {
		c.LogFile = *logFile
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if color != nil {
		c.Color = *color
	}
	if provider != nil {
		c.Diff.Provider = *provider
	}
	if format != nil {
		c.Diff.Format = *format
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.LogFile == "" {
		return fmt.Errorf("log_file cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	switch c.Diff.Provider {
	case ProviderExternal:
		if c.Diff.Command == "" {
			return fmt.Errorf("diff.command cannot be empty when diff.provider is %q", ProviderExternal)
		}
	case ProviderBuiltin:
	default:
		return fmt.Errorf("invalid diff.provider %q, must be one of: %s, %s", c.Diff.Provider, ProviderExternal, ProviderBuiltin)
	}

	switch c.Diff.Format {
	case FormatNormal, FormatUnified:
	default:
		return fmt.Errorf("invalid diff.format %q, must be one of: %s, %s", c.Diff.Format, FormatNormal, FormatUnified)
	}

	if c.Diff.Context < 0 {
		return fmt.Errorf("diff.context must be >= 0, got %d", c.Diff.Context)
	}
	if c.Diff.Timeout < 0 {
		return fmt.Errorf("diff.timeout must be >= 0, got %v", c.Diff.Timeout)
	}

	return nil
}
