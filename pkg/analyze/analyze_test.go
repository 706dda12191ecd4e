package analyze

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cfglens/pkg/cache"
)

const rustSource = `
fn alpha(x: i32) -> i32 {
    if x > 0 {
        return x;
    }
    -x
}

fn beta() {
    let mut i = 0;
    while i < 10 {
        i += 1;
    }
}

fn gamma() {
    noop();
}
`

func TestSourceOrderAndResults(t *testing.T) {
	a := New(Options{Concurrency: 2})

	results, err := a.Source(context.Background(), []byte(rustSource), "rust")
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("%d results, want 3", len(results))
	}

	// Declaration order regardless of goroutine scheduling.
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if results[i].Function != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Function, want)
		}
	}

	if cc := results[0].Complexity.Cyclomatic; cc != 2 {
		t.Errorf("alpha cyclomatic = %d, want 2", cc)
	}
	if cc := results[1].Complexity.Cyclomatic; cc != 2 {
		t.Errorf("beta cyclomatic = %d, want 2", cc)
	}
	if cc := results[2].Complexity.Cyclomatic; cc != 1 {
		t.Errorf("gamma cyclomatic = %d, want 1", cc)
	}

	for _, r := range results {
		if r.Graph == nil || r.Blocks == nil {
			t.Errorf("%s missing graphs", r.Function)
		}
	}
}

func TestSourceUnsupportedLanguage(t *testing.T) {
	a := New(Options{})
	if _, err := a.Source(context.Background(), []byte("x"), "cobol"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	if err := os.WriteFile(path, []byte(rustSource), 0o644); err != nil {
		t.Fatal(err)
	}

	c := cache.New(cache.Options{})
	a := New(Options{Cache: c})

	first, err := a.File(context.Background(), path)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("cache holds %d entries after analysis, want 1", c.Len())
	}

	second, err := a.File(context.Background(), path)
	if err != nil {
		t.Fatalf("cached File failed: %v", err)
	}
	if len(second.Functions) != len(first.Functions) {
		t.Errorf("cached result has %d functions, want %d",
			len(second.Functions), len(first.Functions))
	}
	if second.Functions[0].Complexity.Cyclomatic != first.Functions[0].Complexity.Cyclomatic {
		t.Error("cached result differs from fresh analysis")
	}
}

func TestFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := New(Options{})
	if _, err := a.File(context.Background(), path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"src/lib.rs": "fn one() { work(); }",
		"util.py":    "def two():\n    pass\n",
		"README.md":  "# docs",
	}
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	a := New(Options{})
	results, err := a.Directory(context.Background(), dir)
	if err != nil {
		t.Fatalf("Directory failed: %v", err)
	}

	byPath := map[string]FileAnalysis{}
	for _, r := range results {
		byPath[filepath.Base(r.Path)] = r
	}
	if len(byPath) != 2 {
		t.Fatalf("analyzed %d files, want 2 (markdown skipped)", len(byPath))
	}
	if fa := byPath["lib.rs"]; fa.Language != "rust" || len(fa.Functions) != 1 {
		t.Errorf("lib.rs analysis = %+v", fa)
	}
	if fa := byPath["util.py"]; fa.Language != "python" || len(fa.Functions) != 1 {
		t.Errorf("util.py analysis = %+v", fa)
	}
}

func TestSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(Options{})
	if _, err := a.Source(ctx, []byte(rustSource), "rust"); err == nil {
		t.Error("expected context error")
	}
}
