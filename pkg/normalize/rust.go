package normalize

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/ir"
)

// rustNormalizer handles Rust loops and early exits. Rust only has
// iterator-style for loops (for pattern in iterable); early exits are
// panic-family macros and std::process::exit.
type rustNormalizer struct{}

func (rustNormalizer) ForLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	if node == nil || node.Type() != "for_expression" {
		return nil
	}

	pattern := ast.FlatText(node.ChildByFieldName("pattern"), content)
	iterExpr := ast.FlatText(node.ChildByFieldName("value"), content)

	if pattern == "" || iterExpr == "" {
		// Older grammar revisions expose no fields; fall back to
		// positional children: pattern before "in", iterable after.
		var seenIn bool
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch {
			case child.Type() == "in":
				seenIn = true
			case child.Type() == "block":
			case !seenIn && pattern == "" && child.IsNamed():
				pattern = ast.FlatText(child, content)
			case seenIn && iterExpr == "" && child.IsNamed():
				iterExpr = ast.FlatText(child, content)
			}
		}
	}

	if pattern == "" || iterExpr == "" {
		return nil
	}
	return ir.NewIteratorLoop(loopID, pattern, iterExpr)
}

// panicMacros are the macro names treated as unconditional exits.
var panicMacros = []string{"panic!", "unreachable!", "todo!", "unimplemented!"}

func (rustNormalizer) EarlyExit(node *sitter.Node, content []byte, exitID string) *ir.EarlyExitIR {
	text := ast.FlatText(node, content)
	if text == "" {
		return nil
	}

	for _, macro := range panicMacros {
		if strings.HasPrefix(text, macro) {
			return ir.NewEarlyExit(exitID, ir.ExitPanic, text, macroPayload(text))
		}
	}
	if strings.HasPrefix(text, "std::process::exit(") || strings.HasPrefix(text, "process::exit(") {
		return ir.NewEarlyExit(exitID, ir.ExitProcessExit, text, callPayload(text))
	}
	return nil
}

// macroPayload returns the argument text of a macro invocation, without
// the surrounding parentheses, or "" when there is none.
func macroPayload(text string) string {
	open := strings.IndexByte(text, '(')
	end := strings.LastIndexByte(text, ')')
	if open < 0 || end <= open {
		return ""
	}
	return strings.TrimSpace(text[open+1 : end])
}

func callPayload(text string) string {
	return macroPayload(text)
}
