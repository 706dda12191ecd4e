// Package ast wraps tree-sitter parsing and function discovery for the
// languages cfglens can analyze. It is the only package that knows which
// grammar belongs to which language tag.
package ast

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarFor returns the tree-sitter grammar for a language tag.
func grammarFor(language string) *sitter.Language {
	switch language {
	case "rust":
		return rust.GetLanguage()
	case "python":
		return python.GetLanguage()
	case "javascript":
		return javascript.GetLanguage()
	case "typescript":
		return typescript.GetLanguage()
	case "java":
		return java.GetLanguage()
	case "c":
		return c.GetLanguage()
	case "cpp":
		return cpp.GetLanguage()
	case "go":
		return golang.GetLanguage()
	default:
		return nil
	}
}

// functionKinds maps a language tag to the node kinds that declare a function.
var functionKinds = map[string][]string{
	"rust":       {"function_item"},
	"python":     {"function_definition"},
	"javascript": {"function_declaration", "method_definition", "generator_function_declaration"},
	"typescript": {"function_declaration", "method_definition"},
	"java":       {"method_declaration", "constructor_declaration"},
	"c":          {"function_definition"},
	"cpp":        {"function_definition"},
	"go":         {"function_declaration", "method_declaration"},
}

// bodyKinds are the node kinds that hold a function body, across languages.
var bodyKinds = map[string]bool{
	"block":              true,
	"statement_block":    true,
	"compound_statement": true,
}

// Parse parses source content with the grammar for the given language tag.
// The returned tree must be closed by the caller.
func Parse(content []byte, language string) (*sitter.Tree, error) {
	grammar := grammarFor(language)
	if grammar == nil {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil, fmt.Errorf("parsing %s source failed", language)
	}
	return tree, nil
}

// Function pairs a function's name with its declaration node.
type Function struct {
	Name string
	Node *sitter.Node
}

// FindFunction locates a function by name anywhere under root.
// Returns nil if no function with that name exists.
func FindFunction(root *sitter.Node, content []byte, language, name string) *sitter.Node {
	for _, fn := range ListFunctions(root, content, language) {
		if fn.Name == name {
			return fn.Node
		}
	}
	return nil
}

// ListFunctions collects every function declared under root, in source order.
func ListFunctions(root *sitter.Node, content []byte, language string) []Function {
	kinds := functionKinds[language]
	if len(kinds) == 0 {
		return nil
	}

	var fns []Function
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		for _, kind := range kinds {
			if node.Type() == kind {
				if name := functionName(node, content); name != "" {
					fns = append(fns, Function{Name: name, Node: node})
				}
				break
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return fns
}

// functionName extracts the declared name from a function node.
func functionName(fn *sitter.Node, content []byte) string {
	if name := fn.ChildByFieldName("name"); name != nil {
		return Text(name, content)
	}
	// Grammars without a name field: first identifier child.
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier", "field_identifier", "property_identifier":
			return Text(child, content)
		}
	}
	return ""
}

// Body returns the block node holding a function's statements,
// or nil when the function has no body (declarations, abstract methods).
func Body(fn *sitter.Node) *sitter.Node {
	if fn == nil {
		return nil
	}
	if body := fn.ChildByFieldName("body"); body != nil {
		return body
	}
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child != nil && bodyKinds[child.Type()] {
			return child
		}
	}
	return nil
}

// Text extracts the raw source text of a node, trimmed of surrounding
// whitespace. Out-of-range spans yield "".
func Text(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(start) >= len(content) || int(end) > len(content) || start > end {
		return ""
	}
	return strings.TrimSpace(string(content[start:end]))
}

// FlatText extracts a node's text with every line trimmed and internal
// newlines collapsed to single spaces, for use as a graph label.
func FlatText(node *sitter.Node, content []byte) string {
	text := Text(node, content)
	if !strings.ContainsAny(text, "\n\r") {
		return text
	}
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// Span renders a node's source extent as "row:col-row:col", 1-based.
func Span(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	start, end := node.StartPoint(), node.EndPoint()
	return fmt.Sprintf("%d:%d-%d:%d",
		start.Row+1, start.Column+1, end.Row+1, end.Column+1)
}

// NamedChildren returns the named children of a node in order.
func NamedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	n := int(node.NamedChildCount())
	children := make([]*sitter.Node, 0, n)
	for i := 0; i < n; i++ {
		if child := node.NamedChild(i); child != nil {
			children = append(children, child)
		}
	}
	return children
}

// ChildOfKind returns the first direct child with the given kind, or nil.
func ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == kind {
			return child
		}
	}
	return nil
}
