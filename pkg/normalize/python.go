package normalize

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/ir"
)

// pythonNormalizer handles Python for statements (always iterator style)
// and raise/sys.exit early exits.
type pythonNormalizer struct{}

func (pythonNormalizer) ForLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	if node == nil || node.Type() != "for_statement" {
		return nil
	}

	pattern := ast.FlatText(node.ChildByFieldName("left"), content)
	iterExpr := ast.FlatText(node.ChildByFieldName("right"), content)
	if pattern == "" || iterExpr == "" {
		return nil
	}
	return ir.NewIteratorLoop(loopID, pattern, iterExpr)
}

func (pythonNormalizer) EarlyExit(node *sitter.Node, content []byte, exitID string) *ir.EarlyExitIR {
	if node == nil {
		return nil
	}

	if node.Type() == "raise_statement" {
		trigger := ast.FlatText(node, content)
		value := strings.TrimSpace(strings.TrimPrefix(trigger, "raise"))
		return ir.NewEarlyExit(exitID, ir.ExitRaise, trigger, value)
	}

	text := ast.FlatText(node, content)
	if strings.HasPrefix(text, "sys.exit(") || strings.HasPrefix(text, "os._exit(") {
		return ir.NewEarlyExit(exitID, ir.ExitProcessExit, text, callPayload(text))
	}
	return nil
}
