package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Format", cfg.Format, FormatMermaid},
		{"Language", cfg.Language, ""},
		{"Concurrency", cfg.Concurrency, 10},
		{"CacheEnabled", cfg.CacheEnabled, true},
		{"CachePath", cfg.CachePath, ""},
		{"CacheMaxEntries", cfg.CacheMaxEntries, 10000},
		{"CacheMaxBytes", cfg.CacheMaxBytes, int64(64 << 20)},
		{"Verbose", cfg.Verbose, false},
		{"JSONLogs", cfg.JSONLogs, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("DefaultConfig().%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown format", func(c *Config) { c.Format = "dot" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"negative max entries", func(c *Config) { c.CacheMaxEntries = -1 }},
		{"negative max bytes", func(c *Config) { c.CacheMaxBytes = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cfglens", "config.yaml")

	cfg := DefaultConfig()
	cfg.Format = FormatJSONL
	cfg.Concurrency = 4
	cfg.Verbose = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Format != FormatJSONL {
		t.Errorf("Format = %q, want jsonl", loaded.Format)
	}
	if loaded.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", loaded.Concurrency)
	}
	if !loaded.Verbose {
		t.Error("Verbose not restored")
	}
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want default 10", cfg.Concurrency)
	}
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("format: dot\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CFGLENS_FORMAT", "jsonl")
	t.Setenv("CFGLENS_CONCURRENCY", "3")
	t.Setenv("CFGLENS_CACHE_ENABLED", "false")
	t.Setenv("CFGLENS_VERBOSE", "true")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Format != FormatJSONL {
		t.Errorf("Format = %q, want jsonl", cfg.Format)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if cfg.CacheEnabled {
		t.Error("CacheEnabled must be overridden to false")
	}
	if !cfg.Verbose {
		t.Error("Verbose must be overridden to true")
	}
}

func TestEnvOverridesIgnoreMalformed(t *testing.T) {
	t.Setenv("CFGLENS_CONCURRENCY", "lots")
	t.Setenv("CFGLENS_CACHE_ENABLED", "maybe")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Concurrency != 10 {
		t.Errorf("malformed int must keep default, got %d", cfg.Concurrency)
	}
	if !cfg.CacheEnabled {
		t.Error("malformed bool must keep default")
	}
}

func TestEffectiveCachePath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EffectiveCachePath(); got != filepath.Join(".cfglens", "analysis.cache") {
		t.Errorf("default cache path = %q", got)
	}

	cfg.CachePath = "/tmp/custom.cache"
	if got := cfg.EffectiveCachePath(); got != "/tmp/custom.cache" {
		t.Errorf("explicit cache path = %q", got)
	}
}
