package normalize

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/ir"
)

// cStyleNormalizer covers the C-family languages (javascript, typescript,
// java, c, cpp): three-clause counter loops plus each language's
// iterator sugar (for-in/for-of, enhanced for, range-based for), and
// throw/exit early exits.
type cStyleNormalizer struct {
	language string
}

// iteratorLoopKinds are the node kinds of iterator-style loops across the
// C family.
var iteratorLoopKinds = map[string]bool{
	"for_in_statement":          true, // javascript/typescript for..in, for..of
	"enhanced_for_statement":    true, // java for (T x : xs)
	"for_range_loop":            true, // cpp for (auto x : xs)
	"range_based_for_statement": true,
}

func (n cStyleNormalizer) ForLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	if node == nil {
		return nil
	}

	if iteratorLoopKinds[node.Type()] {
		return n.iteratorLoop(node, content, loopID)
	}
	if node.Type() == "for_statement" {
		return n.counterLoop(node, content, loopID)
	}
	return nil
}

func (cStyleNormalizer) iteratorLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	pattern := ast.FlatText(node.ChildByFieldName("left"), content)
	iterExpr := ast.FlatText(node.ChildByFieldName("right"), content)

	if pattern == "" {
		// Java enhanced for uses name/value fields; C++ range for uses
		// declarator/right.
		pattern = ast.FlatText(node.ChildByFieldName("name"), content)
		if pattern == "" {
			pattern = ast.FlatText(node.ChildByFieldName("declarator"), content)
		}
	}
	if iterExpr == "" {
		iterExpr = ast.FlatText(node.ChildByFieldName("value"), content)
	}

	if pattern == "" || iterExpr == "" {
		return nil
	}
	return ir.NewIteratorLoop(loopID, pattern, iterExpr)
}

func (cStyleNormalizer) counterLoop(node *sitter.Node, content []byte, loopID string) *ir.ForLoopIR {
	init := ast.FlatText(node.ChildByFieldName("initializer"), content)
	if init == "" {
		init = ast.FlatText(node.ChildByFieldName("init"), content)
	}
	condition := ast.FlatText(node.ChildByFieldName("condition"), content)
	update := ast.FlatText(node.ChildByFieldName("update"), content)
	if update == "" {
		update = ast.FlatText(node.ChildByFieldName("increment"), content)
	}

	if init == "" && condition == "" && update == "" {
		return nil
	}
	return ir.NewCounterLoop(loopID,
		strings.TrimSuffix(init, ";"),
		strings.TrimSuffix(condition, ";"),
		update)
}

func (n cStyleNormalizer) EarlyExit(node *sitter.Node, content []byte, exitID string) *ir.EarlyExitIR {
	if node == nil {
		return nil
	}

	if node.Type() == "throw_statement" || node.Type() == "throw_expression" {
		trigger := ast.FlatText(node, content)
		value := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(trigger, "throw")), ";")
		return ir.NewEarlyExit(exitID, ir.ExitThrow, trigger, value)
	}

	text := ast.FlatText(node, content)
	switch {
	case strings.HasPrefix(text, "throw "):
		return ir.NewEarlyExit(exitID, ir.ExitThrow, text,
			strings.TrimSuffix(strings.TrimPrefix(text, "throw "), ";"))
	case strings.HasPrefix(text, "exit("), strings.HasPrefix(text, "System.exit("),
		strings.HasPrefix(text, "process.exit("), strings.HasPrefix(text, "abort("):
		return ir.NewEarlyExit(exitID, ir.ExitProcessExit, text, callPayload(text))
	default:
		return nil
	}
}
