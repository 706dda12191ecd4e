package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
)

// processWhile builds the sub-graph for a while loop: condition node,
// after node (the loop's natural exit and break target), body entered on
// the true edge, body exits looping back to the condition. A missing
// condition or body degrades to a pass-through.
func (b *builder) processWhile(whileNode *sitter.Node, st flowState) []int {
	condition, body := whileParts(whileNode)
	if body == nil {
		return []int{st.pred}
	}

	condText := "true" // bare loop { } has no condition
	if condition != nil {
		condText = ast.FlatText(condition, b.content)
	} else if whileNode.Type() != "loop_expression" {
		return []int{st.pred}
	}

	condID := b.ctx.allocID()
	b.addNode(condID, fmt.Sprintf("while %s", condText), ast.Span(whileNode))
	b.addEdge(st.pred, condID, st.kind)

	afterID := b.ctx.allocID()
	b.addNode(afterID, "after_while", "")

	b.ctx.pushLoop(condID, afterID)

	bodyStartID := b.ctx.allocID()
	b.addNode(bodyStartID, "while_body", "")
	b.addEdge(condID, bodyStartID, KindTrue)

	bodyExits := b.processBlock(body, flowState{pred: bodyStartID, kind: KindNext})

	b.ctx.popLoop()

	for _, exit := range bodyExits {
		if exit != afterID {
			b.addEdge(exit, condID, KindBack)
		}
	}
	b.addEdge(condID, afterID, KindFalse)

	return []int{afterID}
}

// processFor builds the sub-graph for a for loop. The loop's shape is
// obtained from the language normalizer; when normalization misses (or
// the loop has no body) the whole construct is a pass-through.
func (b *builder) processFor(forNode *sitter.Node, st flowState) []int {
	loopID := fmt.Sprintf("L%d", b.ctx.nextID)
	forIR := b.norm.ForLoop(forNode, b.content, loopID)
	body := loopBody(forNode)
	if forIR == nil || body == nil {
		return []int{st.pred}
	}

	condID := b.ctx.allocID()
	b.addNode(condID, forIR.Label(), ast.Span(forNode))
	b.addEdge(st.pred, condID, st.kind)

	afterID := b.ctx.allocID()
	b.addNode(afterID, "after_for_loop", "")

	b.ctx.pushLoop(condID, afterID)

	bodyStartID := b.ctx.allocID()
	b.addNode(bodyStartID, "for_loop_body", "")
	b.addEdge(condID, bodyStartID, KindTrue)

	bodyExits := b.processBlock(body, flowState{pred: bodyStartID, kind: KindNext})

	b.ctx.popLoop()

	for _, exit := range bodyExits {
		if exit != afterID {
			b.addEdge(exit, condID, KindBack)
		}
	}
	b.addEdge(condID, afterID, KindFalse)

	return []int{afterID}
}

// whileParts extracts a while loop's condition and body. Rust's bare
// loop_expression has a body but no condition.
func whileParts(whileNode *sitter.Node) (condition, body *sitter.Node) {
	condition = whileNode.ChildByFieldName("condition")
	body = whileNode.ChildByFieldName("body")
	if body == nil {
		for _, child := range ast.NamedChildren(whileNode) {
			if isBlockKind(child.Type()) {
				body = child
			} else if condition == nil {
				condition = child
			}
		}
	}
	return condition, body
}

// loopBody finds a for loop's body block.
func loopBody(forNode *sitter.Node) *sitter.Node {
	if body := forNode.ChildByFieldName("body"); body != nil {
		return body
	}
	for _, child := range ast.NamedChildren(forNode) {
		if isBlockKind(child.Type()) {
			return child
		}
	}
	return nil
}
