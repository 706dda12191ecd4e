// Package analyze orchestrates per-file analysis: it parses source,
// discovers functions, and produces the control-flow graph, basic-block
// graph, and complexity metrics for each one. Functions are analyzed
// concurrently; results always come back in source order.
package analyze

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"cfglens/internal/log"
	"cfglens/internal/scanner"
	"cfglens/pkg/ast"
	"cfglens/pkg/basicblock"
	"cfglens/pkg/cache"
	"cfglens/pkg/cfg"
	"cfglens/pkg/complexity"
)

// FunctionAnalysis bundles everything derived from one function body.
type FunctionAnalysis struct {
	Function   string                `json:"function"`
	Span       string                `json:"span"`
	Graph      *cfg.ControlFlowGraph `json:"graph"`
	Blocks     *basicblock.Graph     `json:"blocks"`
	Complexity complexity.Result     `json:"complexity"`
}

// FileAnalysis is the analysis of every function in one source file.
type FileAnalysis struct {
	Path      string             `json:"path"`
	Language  string             `json:"language"`
	Functions []FunctionAnalysis `json:"functions"`
}

// Options configures an Analyzer.
type Options struct {
	// Concurrency bounds the number of functions analyzed in parallel.
	Concurrency int

	// Cache, when non-nil, short-circuits re-analysis of unchanged
	// content.
	Cache *cache.Cache
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Concurrency: 10}
}

// Analyzer runs the analysis pipeline.
type Analyzer struct {
	opts   Options
	logger log.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultOptions().Concurrency
	}
	return &Analyzer{opts: opts, logger: log.Default()}
}

// Source analyzes every function in a source buffer. Functions are
// processed concurrently but the result slice follows declaration order.
func (a *Analyzer) Source(ctx context.Context, content []byte, language string) ([]FunctionAnalysis, error) {
	tree, err := ast.Parse(content, language)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	fns := ast.ListFunctions(tree.RootNode(), content, language)
	if len(fns) == 0 {
		return nil, nil
	}

	results := make([]FunctionAnalysis, len(fns))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.opts.Concurrency)

	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn ast.Function) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			results[i] = a.analyzeFunction(fn, content, language)
		}(i, fn)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyzer) analyzeFunction(fn ast.Function, content []byte, language string) FunctionAnalysis {
	body := ast.Body(fn.Node)
	graph := cfg.Build(fn.Name, body, content, language)
	blocks := basicblock.Build(fn.Name, body, content, language)
	result := complexity.Analyze(graph)

	for _, d := range graph.Diagnostics {
		a.logger.Warn("builder diagnostic", "function", fn.Name, "message", d.Message, "span", d.Span)
	}

	return FunctionAnalysis{
		Function:   fn.Name,
		Span:       ast.Span(fn.Node),
		Graph:      graph,
		Blocks:     blocks,
		Complexity: result,
	}
}

// File analyzes one source file, detecting the language from its
// extension. With a cache configured, unchanged content is served from
// the cache instead of re-parsed.
func (a *Analyzer) File(ctx context.Context, path string) (*FileAnalysis, error) {
	language := scanner.DetectLanguage(filepath.Ext(path))
	if language == "" {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	key := cacheKey(content, language)
	if a.opts.Cache != nil {
		if payload, ok := a.opts.Cache.Get(key); ok {
			var fa FileAnalysis
			if err := json.Unmarshal(payload, &fa); err == nil {
				fa.Path = path
				a.logger.Debug("cache hit", "path", path)
				return &fa, nil
			}
			// Corrupt payload: drop it and re-analyze.
			a.opts.Cache.Delete(key)
		}
	}

	fns, err := a.Source(ctx, content, language)
	if err != nil {
		return nil, err
	}

	fa := &FileAnalysis{Path: path, Language: language, Functions: fns}
	if a.opts.Cache != nil {
		if payload, err := json.Marshal(fa); err == nil {
			a.opts.Cache.Set(key, payload)
		}
	}
	return fa, nil
}

// Directory analyzes every supported source file under root, in the
// scanner's traversal order.
func (a *Analyzer) Directory(ctx context.Context, root string) ([]FileAnalysis, error) {
	files, err := scanner.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	var out []FileAnalysis
	for _, f := range files {
		if f.Language == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fa, err := a.File(ctx, f.FullPath)
		if err != nil {
			a.logger.Warn("skipping file", "path", f.Path, "error", err)
			continue
		}
		out = append(out, *fa)
	}
	return out, nil
}

// cacheKey derives a content-addressed cache key.
func cacheKey(content []byte, language string) string {
	sum := sha256.Sum256(content)
	return language + ":" + hex.EncodeToString(sum[:])
}
