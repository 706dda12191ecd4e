package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how analysis results are rendered.
type OutputFormat string

const (
	FormatMermaid OutputFormat = "mermaid"
	FormatJSONL   OutputFormat = "jsonl"
	FormatJSON    OutputFormat = "json"
)

// Config holds all configuration for cfglens
type Config struct {
	// Format is the default output format for analysis commands
	Format OutputFormat `yaml:"format" env:"CFGLENS_FORMAT"`

	// Language overrides extension-based language detection
	Language string `yaml:"language" env:"CFGLENS_LANGUAGE"`

	// Concurrency bounds parallel function analysis
	Concurrency int `yaml:"concurrency" env:"CFGLENS_CONCURRENCY"`

	// Cache settings
	CacheEnabled    bool   `yaml:"cache_enabled" env:"CFGLENS_CACHE_ENABLED"`
	CachePath       string `yaml:"cache_path" env:"CFGLENS_CACHE_PATH"`
	CacheMaxEntries int    `yaml:"cache_max_entries" env:"CFGLENS_CACHE_MAX_ENTRIES"`
	CacheMaxBytes   int64  `yaml:"cache_max_bytes" env:"CFGLENS_CACHE_MAX_BYTES"`

	// Logging
	Verbose  bool `yaml:"verbose" env:"CFGLENS_VERBOSE"`
	JSONLogs bool `yaml:"json_logs" env:"CFGLENS_JSON_LOGS"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format:          FormatMermaid,
		Language:        "",
		Concurrency:     10,
		CacheEnabled:    true,
		CachePath:       "", // resolved to .cfglens/analysis.cache
		CacheMaxEntries: 10000,
		CacheMaxBytes:   64 << 20,
		Verbose:         false,
		JSONLogs:        false,
	}
}

// globalConfigFilePath returns the global config file path (~/.cfglens/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cfglens/config.yaml"
	}
	return filepath.Join(home, ".cfglens", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.cfglens/config.yaml)
func projectConfigFilePath() string {
	return ".cfglens/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Project-level config (./.cfglens/config.yaml)
// 2. Environment variables
// 3. Global config (~/.cfglens/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file, applying
// defaults for fields the file omits.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CFGLENS_FORMAT"); v != "" {
		cfg.Format = OutputFormat(v)
	}
	if v := os.Getenv("CFGLENS_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("CFGLENS_CONCURRENCY"); v != "" {
		cfg.Concurrency = parseInt(v, cfg.Concurrency)
	}
	if v := os.Getenv("CFGLENS_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = parseBool(v, cfg.CacheEnabled)
	}
	if v := os.Getenv("CFGLENS_CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("CFGLENS_CACHE_MAX_ENTRIES"); v != "" {
		cfg.CacheMaxEntries = parseInt(v, cfg.CacheMaxEntries)
	}
	if v := os.Getenv("CFGLENS_CACHE_MAX_BYTES"); v != "" {
		cfg.CacheMaxBytes = parseInt64(v, cfg.CacheMaxBytes)
	}
	if v := os.Getenv("CFGLENS_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v, cfg.Verbose)
	}
	if v := os.Getenv("CFGLENS_JSON_LOGS"); v != "" {
		cfg.JSONLogs = parseBool(v, cfg.JSONLogs)
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatMermaid, FormatJSONL, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (valid: mermaid, jsonl, json)", c.Format)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must not be negative, got %d", c.CacheMaxEntries)
	}
	if c.CacheMaxBytes < 0 {
		return fmt.Errorf("cache_max_bytes must not be negative, got %d", c.CacheMaxBytes)
	}
	return nil
}

// EffectiveCachePath resolves the cache file location, defaulting to the
// project-local .cfglens directory.
func (c *Config) EffectiveCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(".cfglens", "analysis.cache")
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseInt64(s string, fallback int64) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
