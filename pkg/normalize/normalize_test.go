package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/ir"
)

// findKind returns the first node of any of the given kinds, depth-first.
func findKind(t *testing.T, src, language string, kinds ...string) (*sitter.Node, []byte) {
	t.Helper()
	content := []byte(src)
	tree, err := ast.Parse(content, language)
	if err != nil {
		t.Fatalf("parse %s: %v", language, err)
	}
	t.Cleanup(tree.Close)

	want := map[string]bool{}
	for _, k := range kinds {
		want[k] = true
	}

	var found *sitter.Node
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil || found != nil {
			return
		}
		if want[node.Type()] {
			found = node
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(tree.RootNode())
	if found == nil {
		t.Fatalf("no %v node in %s source", kinds, language)
	}
	return found, content
}

func TestRustForLoopIsIterator(t *testing.T) {
	node, content := findKind(t, `
fn f(items: Vec<i32>) {
    for item in items {
        use_it(item);
    }
}
`, "rust", "for_expression")

	got := ForLanguage("rust").ForLoop(node, content, "L1")
	if got == nil {
		t.Fatal("expected a normalized loop")
	}
	if got.Kind != ir.ForIterator {
		t.Fatalf("kind = %q, want %q", got.Kind, ir.ForIterator)
	}
	if got.Pattern != "item" || got.IterExpr != "items" {
		t.Errorf("pattern/iter = %q/%q, want item/items", got.Pattern, got.IterExpr)
	}
	if got.Init != "" || got.Condition != "" || got.Update != "" {
		t.Error("iterator loop must leave counter fields empty")
	}
}

func TestGoForClauseIsCounter(t *testing.T) {
	node, content := findKind(t, `
package p

func f(n int) {
	for i := 0; i < n; i++ {
		work(i)
	}
}
`, "go", "for_statement")

	got := ForLanguage("go").ForLoop(node, content, "L1")
	if got == nil {
		t.Fatal("expected a normalized loop")
	}
	if got.Kind != ir.ForCounter {
		t.Fatalf("kind = %q, want %q", got.Kind, ir.ForCounter)
	}
	if got.Init != "i := 0" || got.Condition != "i < n" || got.Update != "i++" {
		t.Errorf("init/cond/update = %q/%q/%q", got.Init, got.Condition, got.Update)
	}
	if got.Pattern != "" || got.IterExpr != "" {
		t.Error("counter loop must leave iterator fields empty")
	}
}

func TestGoRangeIsIterator(t *testing.T) {
	node, content := findKind(t, `
package p

func f(xs []int) {
	for _, x := range xs {
		work(x)
	}
}
`, "go", "for_statement")

	got := ForLanguage("go").ForLoop(node, content, "L2")
	if got == nil {
		t.Fatal("expected a normalized loop")
	}
	if got.Kind != ir.ForIterator {
		t.Fatalf("kind = %q, want %q", got.Kind, ir.ForIterator)
	}
	if got.IterExpr != "xs" {
		t.Errorf("iter_expr = %q, want xs", got.IterExpr)
	}
}

func TestPythonForIsIterator(t *testing.T) {
	node, content := findKind(t, `
def f(items):
    for item in items:
        use_it(item)
`, "python", "for_statement")

	got := ForLanguage("python").ForLoop(node, content, "L1")
	if got == nil || got.Kind != ir.ForIterator {
		t.Fatalf("got %+v, want iterator loop", got)
	}
	if got.Pattern != "item" || got.IterExpr != "items" {
		t.Errorf("pattern/iter = %q/%q", got.Pattern, got.IterExpr)
	}
}

func TestJavaScriptForIsCounter(t *testing.T) {
	node, content := findKind(t, `
function f(n) {
    for (let i = 0; i < n; i++) {
        work(i);
    }
}
`, "javascript", "for_statement")

	got := ForLanguage("javascript").ForLoop(node, content, "L1")
	if got == nil || got.Kind != ir.ForCounter {
		t.Fatalf("got %+v, want counter loop", got)
	}
	if got.Condition != "i < n" {
		t.Errorf("condition = %q, want i < n", got.Condition)
	}
}

func TestLoopVariantFieldsAreExclusiveInJSON(t *testing.T) {
	counter := ir.NewCounterLoop("L1", "i := 0", "i < n", "i++")
	iterator := ir.NewIteratorLoop("L2", "item", "items")

	counterJSON, err := json.Marshal(counter)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"pattern", "iter_expr"} {
		if strings.Contains(string(counterJSON), field) {
			t.Errorf("counter JSON leaks %q: %s", field, counterJSON)
		}
	}

	iteratorJSON, err := json.Marshal(iterator)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"init", "condition", "update"} {
		if strings.Contains(string(iteratorJSON), `"`+field+`"`) {
			t.Errorf("iterator JSON leaks %q: %s", field, iteratorJSON)
		}
	}
}

func TestEarlyExitKinds(t *testing.T) {
	cases := []struct {
		name     string
		language string
		src      string
		kinds    []string
		want     ir.ExitKind
	}{
		{
			name:     "rust panic",
			language: "rust",
			src:      "fn f() { panic!(\"boom\"); }",
			kinds:    []string{"expression_statement"},
			want:     ir.ExitPanic,
		},
		{
			name:     "python raise",
			language: "python",
			src:      "def f():\n    raise ValueError(\"bad\")\n",
			kinds:    []string{"raise_statement"},
			want:     ir.ExitRaise,
		},
		{
			name:     "python sys exit",
			language: "python",
			src:      "def f():\n    sys.exit(1)\n",
			kinds:    []string{"expression_statement"},
			want:     ir.ExitProcessExit,
		},
		{
			name:     "javascript throw",
			language: "javascript",
			src:      "function f() { throw new Error(\"bad\"); }",
			kinds:    []string{"throw_statement"},
			want:     ir.ExitThrow,
		},
		{
			name:     "go panic",
			language: "go",
			src:      "package p\n\nfunc f() { panic(\"boom\") }\n",
			kinds:    []string{"expression_statement", "call_expression"},
			want:     ir.ExitPanic,
		},
		{
			name:     "java system exit",
			language: "java",
			src:      "class C { void f() { System.exit(1); } }",
			kinds:    []string{"expression_statement"},
			want:     ir.ExitProcessExit,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node, content := findKind(t, tc.src, tc.language, tc.kinds...)
			got := ForLanguage(tc.language).EarlyExit(node, content, "E1")
			if got == nil {
				t.Fatal("expected an early exit")
			}
			if got.Kind != tc.want {
				t.Errorf("kind = %q, want %q", got.Kind, tc.want)
			}
			if got.Type != "EarlyExit" || got.ExitID != "E1" {
				t.Errorf("record tags wrong: %+v", got)
			}
		})
	}
}

func TestOrdinaryStatementIsOpaque(t *testing.T) {
	node, content := findKind(t, "fn f() { let x = compute(); }", "rust", "let_declaration")
	if got := ForLanguage("rust").EarlyExit(node, content, "E1"); got != nil {
		t.Errorf("ordinary statement normalized as exit: %+v", got)
	}
}

func TestUnknownLanguageIsNoop(t *testing.T) {
	norm := ForLanguage("fortran")
	if norm.ForLoop(nil, nil, "L1") != nil || norm.EarlyExit(nil, nil, "E1") != nil {
		t.Error("unknown language must normalize nothing")
	}
}
