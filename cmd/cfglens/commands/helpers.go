package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cfglens/internal/config"
	"cfglens/internal/log"
	"cfglens/internal/scanner"
	"cfglens/pkg/analyze"
	"cfglens/pkg/cache"
)

// resolveLanguage picks the language tag for a source file. Precedence is
// the --language flag, then the configured language, then the file
// extension.
func resolveLanguage(cmd *cobra.Command, cfg *config.Config, path string) (string, error) {
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		return lang, nil
	}
	if cfg.Language != "" {
		return cfg.Language, nil
	}
	lang := scanner.DetectLanguage(filepath.Ext(path))
	if lang == "" {
		return "", fmt.Errorf("cannot detect language of %s; pass --language", path)
	}
	return lang, nil
}

// resolveFormat picks the output format, flag over config.
func resolveFormat(cmd *cobra.Command, cfg *config.Config) (config.OutputFormat, error) {
	format := string(cfg.Format)
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	switch of := config.OutputFormat(format); of {
	case config.FormatMermaid, config.FormatJSONL, config.FormatJSON:
		return of, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// openCache loads the persisted analysis cache when caching is enabled.
// A missing cache file starts an empty cache.
func openCache(cfg *config.Config) (*cache.Cache, error) {
	if !cfg.CacheEnabled {
		return nil, nil
	}
	c := cache.New(cache.Options{
		MaxEntries: cfg.CacheMaxEntries,
		MaxBytes:   cfg.CacheMaxBytes,
	})
	if err := c.LoadFromFile(cfg.EffectiveCachePath()); err != nil {
		log.Default().Warn("discarding unreadable cache", "path", cfg.EffectiveCachePath(), "error", err)
		c.Clear()
	}
	return c, nil
}

// persistCache writes the cache back to disk, logging rather than failing
// on error.
func persistCache(cfg *config.Config, c *cache.Cache) {
	if c == nil {
		return
	}
	if err := c.PersistToFile(cfg.EffectiveCachePath()); err != nil {
		log.Default().Warn("persisting cache failed", "path", cfg.EffectiveCachePath(), "error", err)
	}
}

// newAnalyzer builds an Analyzer from the configuration plus an optional
// cache.
func newAnalyzer(cfg *config.Config, c *cache.Cache) *analyze.Analyzer {
	return analyze.New(analyze.Options{
		Concurrency: cfg.Concurrency,
		Cache:       c,
	})
}

// readSource reads a source file, with a stat first for a clearer error
// on directories.
func readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, expected a source file", path)
	}
	return os.ReadFile(path)
}
