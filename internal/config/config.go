// Package config provides the unified modAtlas configuration.
// Config lives at .modatlas/config.yaml in the workspace; environment
// variables override file values at load time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all modAtlas configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Input document paths
	Paths PathsConfig `yaml:"paths"`

	// Identifier resolution settings
	Resolver ResolverConfig `yaml:"resolver"`

	// Fold-radius / token budget settings
	Atlas AtlasConfig `yaml:"atlas"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig locates the policy and alias documents and the record database.
type PathsConfig struct {
	PolicyFile   string `yaml:"policy_file"`
	AliasFile    string `yaml:"alias_file"`
	DatabasePath string `yaml:"database_path"`
}

// ResolverConfig configures the identifier resolution cascade.
type ResolverConfig struct {
	// Strict converts ambiguity/no-match into errors instead of
	// zero-confidence results (CI mode).
	Strict bool `yaml:"strict"`

	// Minimum input length for substring matching
	MinSubstringLength int `yaml:"min_substring_length"`

	// Maximum candidates listed before truncating an ambiguity report
	MaxAmbiguousMatches int `yaml:"max_ambiguous_matches"`
}

// AtlasConfig configures neighborhood extraction.
type AtlasConfig struct {
	// Default BFS hop limit around seed modules
	DefaultRadius int `yaml:"default_radius"`

	// Token budget for serialized neighborhoods
	MaxTokens int `yaml:"max_tokens"`
}

// LoggingConfig configures the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "modAtlas",
		Version: "1.0.0",

		Paths: PathsConfig{
			PolicyFile:   ".modatlas/policy.json",
			AliasFile:    ".modatlas/aliases.json",
			DatabasePath: ".modatlas/records.db",
		},

		Resolver: ResolverConfig{
			Strict:              false,
			MinSubstringLength:  3,
			MaxAmbiguousMatches: 5,
		},

		Atlas: AtlasConfig{
			DefaultRadius: 2,
			MaxTokens:     4000,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads config from the given path, applying env overrides.
// A missing file yields the defaults (with env overrides still applied).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to the given path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MODATLAS_POLICY"); v != "" {
		c.Paths.PolicyFile = v
	}
	if v := os.Getenv("MODATLAS_ALIASES"); v != "" {
		c.Paths.AliasFile = v
	}
	if v := os.Getenv("MODATLAS_DB"); v != "" {
		c.Paths.DatabasePath = v
	}
	if v := os.Getenv("MODATLAS_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Atlas.MaxTokens = n
		}
	}
	if v := os.Getenv("MODATLAS_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Resolver.Strict = b
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Paths.PolicyFile == "" {
		return fmt.Errorf("paths.policy_file is required")
	}
	if c.Resolver.MinSubstringLength < 1 {
		return fmt.Errorf("resolver.min_substring_length must be >= 1, got %d", c.Resolver.MinSubstringLength)
	}
	if c.Resolver.MaxAmbiguousMatches < 1 {
		return fmt.Errorf("resolver.max_ambiguous_matches must be >= 1, got %d", c.Resolver.MaxAmbiguousMatches)
	}
	if c.Atlas.DefaultRadius < 0 {
		return fmt.Errorf("atlas.default_radius must be >= 0, got %d", c.Atlas.DefaultRadius)
	}
	if c.Atlas.MaxTokens < 1 {
		return fmt.Errorf("atlas.max_tokens must be >= 1, got %d", c.Atlas.MaxTokens)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug/info/warn/error, got %q", c.Logging.Level)
	}
	return nil
}
