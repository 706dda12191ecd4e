package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
)

// processIf builds the sub-graph for an if/elif/else chain and returns
// its exit points. A missing condition or then-branch degrades the
// construct to a pass-through (the entry point is returned unchanged).
func (b *builder) processIf(ifNode *sitter.Node, st flowState) []int {
	condition, thenBranch := ifHead(ifNode)
	return b.processIfChain(ifNode, condition, thenBranch, ifAlternatives(ifNode), st)
}

// processIfChain emits one condition node and its then-branch, then
// threads the condition's false edge into the remaining alternatives.
// Python repeats the alternative field, so this is a list: each elif
// clause consumes one entry and the resolved else branch, when present,
// is last.
func (b *builder) processIfChain(origin, condition, thenBranch *sitter.Node, rest []*sitter.Node, st flowState) []int {
	if condition == nil || thenBranch == nil {
		return []int{st.pred}
	}

	condID := b.ctx.allocID()
	b.addNode(condID, fmt.Sprintf("if (%s)", ast.FlatText(condition, b.content)), ast.Span(origin))
	b.addEdge(st.pred, condID, st.kind)

	exits := b.processBlock(thenBranch, flowState{pred: condID, kind: KindTrue})

	if len(rest) == 0 {
		// No alternative: the condition's false edge itself is an exit
		// point.
		return append(exits, condID)
	}

	falseState := flowState{pred: condID, kind: KindFalse}
	next := rest[0]
	switch {
	case next.Type() == "elif_clause":
		elifCond, elifThen := ifHead(next)
		exits = append(exits, b.processIfChain(next, elifCond, elifThen, rest[1:], falseState)...)
	case isIfKind(next.Type()):
		// else-if chains recurse with the false edge as entry.
		exits = append(exits, b.processIf(next, falseState)...)
	default:
		exits = append(exits, b.processBlock(next, falseState)...)
	}

	return exits
}

// ifHead extracts the condition and then-branch of an if or elif node.
// The positional fallback covers grammars without field names: the
// first non-block named child is the condition, the first block the
// branch.
func ifHead(ifNode *sitter.Node) (condition, thenBranch *sitter.Node) {
	condition = ifNode.ChildByFieldName("condition")
	thenBranch = ifNode.ChildByFieldName("consequence")
	if condition != nil && thenBranch != nil {
		return condition, thenBranch
	}

	for _, child := range ast.NamedChildren(ifNode) {
		switch {
		case child.Type() == "elif_clause" || child.Type() == "else_clause":
		case isBlockKind(child.Type()):
			if thenBranch == nil {
				thenBranch = child
			}
		case condition == nil:
			condition = child
		}
	}
	return condition, thenBranch
}

// ifAlternatives collects an if node's alternatives in source order.
// Python repeats the field (elif clauses, then an optional else
// clause); the other grammars carry at most one alternative, either an
// else_clause wrapper or a bare block/if statement.
func ifAlternatives(ifNode *sitter.Node) []*sitter.Node {
	var alts []*sitter.Node
	for _, child := range ast.NamedChildren(ifNode) {
		switch child.Type() {
		case "elif_clause":
			alts = append(alts, child)
		case "else_clause":
			if resolved := resolveElse(child); resolved != nil {
				alts = append(alts, resolved)
			}
		}
	}
	if len(alts) > 0 {
		return alts
	}

	if alt := ifNode.ChildByFieldName("alternative"); alt != nil {
		return []*sitter.Node{alt}
	}

	// Positional fallback: a second block child is the else branch.
	thenSeen := false
	for _, child := range ast.NamedChildren(ifNode) {
		if isBlockKind(child.Type()) {
			if thenSeen {
				return []*sitter.Node{child}
			}
			thenSeen = true
		}
	}
	return nil
}

// resolveElse unwraps an else_clause down to the block or if node it
// holds.
func resolveElse(clause *sitter.Node) *sitter.Node {
	for _, child := range ast.NamedChildren(clause) {
		if isBlockKind(child.Type()) || isIfKind(child.Type()) {
			return child
		}
	}
	return nil
}
