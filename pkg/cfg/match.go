package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
)

// processMatch builds the sub-graph for a match/switch: a dispatch node
// fanning out to one entry node per arm, with the arm's literal pattern
// text as the edge kind, and a join node collecting every arm's exits.
// The join is always the construct's single exit point, even when every
// arm terminates (it is then simply unreachable).
func (b *builder) processMatch(matchNode *sitter.Node, st flowState) []int {
	subject, arms := matchParts(matchNode)
	if subject == nil || len(arms) == 0 {
		return []int{st.pred}
	}

	dispatchID := b.ctx.allocID()
	b.addNode(dispatchID, fmt.Sprintf("match %s", ast.FlatText(subject, b.content)), ast.Span(matchNode))
	b.addEdge(st.pred, dispatchID, st.kind)

	joinID := b.ctx.allocID()
	b.addNode(joinID, "match_join", "")

	var armExits []int
	for _, arm := range arms {
		armExits = append(armExits, b.processArm(arm, dispatchID)...)
	}

	for _, exit := range armExits {
		if exit != joinID {
			b.addEdge(exit, joinID, KindNext)
		}
	}

	return []int{joinID}
}

// processArm builds one arm: entry node, dispatch edge keyed by the
// pattern text, then the arm body.
func (b *builder) processArm(arm *sitter.Node, dispatchID int) []int {
	pattern, body := armParts(arm)
	patternText := "default"
	if pattern != nil {
		patternText = ast.FlatText(pattern, b.content)
	}

	armID := b.ctx.allocID()
	b.addNode(armID, fmt.Sprintf("arm: %s", patternText), ast.Span(arm))
	b.addEdge(dispatchID, armID, ArmKind(patternText))

	entry := flowState{pred: armID, kind: KindNext}
	switch {
	case body == nil:
		// Arms that hold statements directly (switch cases): fold over
		// the arm's children, excluding the pattern itself.
		var stmts []*sitter.Node
		for _, child := range ast.NamedChildren(arm) {
			if pattern != nil && child.StartByte() == pattern.StartByte() && child.EndByte() == pattern.EndByte() {
				continue
			}
			stmts = append(stmts, child)
		}
		return b.processStatements(stmts, entry)
	case isBlockKind(body.Type()):
		return b.processBlock(body, entry)
	default:
		// Expression-bodied arm: a single-statement run.
		st := b.processStatement(body, entry)
		if st.terminated {
			return nil
		}
		return []int{st.pred}
	}
}

// matchParts extracts the dispatched subject and the arm nodes.
func matchParts(matchNode *sitter.Node) (subject *sitter.Node, arms []*sitter.Node) {
	for _, field := range []string{"value", "subject", "condition"} {
		if subject = matchNode.ChildByFieldName(field); subject != nil {
			break
		}
	}

	container := matchNode.ChildByFieldName("body")
	if container == nil {
		for _, child := range ast.NamedChildren(matchNode) {
			if isBlockKind(child.Type()) {
				container = child
			} else if subject == nil {
				subject = child
			}
		}
	}
	// Go's switch holds its cases directly.
	if container == nil {
		container = matchNode
	}

	for _, child := range ast.NamedChildren(container) {
		if isArmKind(child.Type()) {
			arms = append(arms, child)
		}
	}
	return subject, arms
}

// armParts extracts an arm's pattern and body. A nil body means the arm
// holds its statements directly; a nil pattern means a default arm.
func armParts(arm *sitter.Node) (pattern, body *sitter.Node) {
	switch arm.Type() {
	case "match_arm":
		return arm.ChildByFieldName("pattern"), arm.ChildByFieldName("value")
	case "case_clause":
		for _, child := range ast.NamedChildren(arm) {
			if child.Type() == "case_pattern" && pattern == nil {
				pattern = child
			}
		}
		return pattern, arm.ChildByFieldName("consequence")
	case "switch_rule":
		return arm.ChildByFieldName("pattern"), arm.ChildByFieldName("body")
	case "expression_case":
		return ast.ChildOfKind(arm, "expression_list"), nil
	case "switch_case":
		return arm.ChildByFieldName("value"), nil
	default: // switch_default, default_case
		return nil, nil
	}
}
