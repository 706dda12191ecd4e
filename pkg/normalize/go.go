package normalize

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/ir"
)

// goNormalizer handles Go for statements, which come in both shapes:
// three-clause loops normalize to counter IR, range loops to iterator IR.
// panic and os.Exit are the early exits.
type goNormalizer struct{}

func (goNormalizer) ForLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	if node == nil || node.Type() != "for_statement" {
		return nil
	}

	if clause := ast.ChildOfKind(node, "range_clause"); clause != nil {
		pattern := ast.FlatText(clause.ChildByFieldName("left"), content)
		iterExpr := ast.FlatText(clause.ChildByFieldName("right"), content)
		if iterExpr == "" {
			return nil
		}
		if pattern == "" {
			pattern = "_"
		}
		return ir.NewIteratorLoop(loopID, pattern, iterExpr)
	}

	if clause := ast.ChildOfKind(node, "for_clause"); clause != nil {
		return ir.NewCounterLoop(loopID,
			ast.FlatText(clause.ChildByFieldName("initializer"), content),
			ast.FlatText(clause.ChildByFieldName("condition"), content),
			ast.FlatText(clause.ChildByFieldName("update"), content))
	}

	// Condition-only loop: for cond { ... }
	for _, child := range ast.NamedChildren(node) {
		if child.Type() != "block" {
			return ir.NewCounterLoop(loopID, "", ast.FlatText(child, content), "")
		}
	}

	// Bare infinite loop: for { ... }
	return ir.NewCounterLoop(loopID, "", "true", "")
}

func (goNormalizer) EarlyExit(node *sitter.Node, content []byte, exitID string) *ir.EarlyExitIR {
	text := ast.FlatText(node, content)
	switch {
	case strings.HasPrefix(text, "panic("):
		return ir.NewEarlyExit(exitID, ir.ExitPanic, text, callPayload(text))
	case strings.HasPrefix(text, "os.Exit("):
		return ir.NewEarlyExit(exitID, ir.ExitProcessExit, text, callPayload(text))
	default:
		return nil
	}
}
