package basicblock

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
)

var terminatorKinds = map[string]bool{
	"if_expression":               true,
	"if_statement":                true,
	"while_expression":            true,
	"while_statement":             true,
	"loop_expression":             true,
	"for_expression":              true,
	"for_statement":               true,
	"for_in_statement":            true,
	"enhanced_for_statement":      true,
	"for_range_loop":              true,
	"range_based_for_statement":   true,
	"match_expression":            true,
	"match_statement":             true,
	"switch_statement":            true,
	"switch_expression":           true,
	"expression_switch_statement": true,
	"break_expression":            true,
	"break_statement":             true,
	"continue_expression":         true,
	"continue_statement":          true,
	"return_expression":           true,
	"return_statement":            true,
}

func isTerminator(kind string) bool { return terminatorKinds[kind] }

func isIfTerm(kind string) bool {
	return kind == "if_expression" || kind == "if_statement" || kind == "elif_clause"
}

func isWhileTerm(kind string) bool {
	return kind == "while_expression" || kind == "while_statement" || kind == "loop_expression"
}

func isForTerm(kind string) bool {
	switch kind {
	case "for_expression", "for_statement", "for_in_statement",
		"enhanced_for_statement", "for_range_loop", "range_based_for_statement":
		return true
	}
	return false
}

func isMatchTerm(kind string) bool {
	switch kind {
	case "match_expression", "match_statement", "switch_statement",
		"switch_expression", "expression_switch_statement":
		return true
	}
	return false
}

func isBodyKind(kind string) bool {
	switch kind {
	case "block", "compound_statement", "statement_block", "consequence", "body":
		return true
	}
	return false
}

// unwrapStatement peels an expression_statement wrapper so that control
// constructs nested in one are classified by their own kind.
func unwrapStatement(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	inner := stmt.NamedChild(0)
	if inner != nil && isTerminator(inner.Type()) {
		return inner
	}
	return nil
}

// joinSpans widens a block span to cover an additional statement span.
// Spans are "startRow:startCol-endRow:endCol", 1-based.
func joinSpans(a, b string) string {
	aStart, _, okA := cutSpan(a)
	_, bEnd, okB := cutSpan(b)
	if !okA || !okB {
		return a
	}
	return aStart + "-" + bEnd
}

func cutSpan(span string) (start, end string, ok bool) {
	i := strings.LastIndexByte(span, '-')
	if i < 0 {
		return "", "", false
	}
	return span[:i], span[i+1:], true
}

// ifHead extracts the condition and then-branch of an if or elif node,
// with a positional fallback for grammars without field names.
func ifHead(ifNode *sitter.Node) (condition, thenBranch *sitter.Node) {
	condition = ifNode.ChildByFieldName("condition")
	thenBranch = ifNode.ChildByFieldName("consequence")
	if condition != nil && thenBranch != nil {
		return condition, thenBranch
	}

	for _, child := range ast.NamedChildren(ifNode) {
		switch {
		case child.Type() == "elif_clause" || child.Type() == "else_clause":
		case isBodyKind(child.Type()):
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
// Python's alternative field repeats (elif clauses then an optional
// else clause); other grammars carry at most one alternative.
func ifAlternatives(ifNode *sitter.Node) []*sitter.Node {
	var alts []*sitter.Node
	for _, child := range ast.NamedChildren(ifNode) {
		switch child.Type() {
		case "elif_clause":
			alts = append(alts, child)
		case "else_clause":
			for _, inner := range ast.NamedChildren(child) {
				if isBodyKind(inner.Type()) || isIfTerm(inner.Type()) {
					alts = append(alts, inner)
					break
				}
			}
		}
	}
	if len(alts) > 0 {
		return alts
	}

	if alt := ifNode.ChildByFieldName("alternative"); alt != nil {
		return []*sitter.Node{alt}
	}

	// Positional fallback: a second body child is the else branch.
	thenSeen := false
	for _, child := range ast.NamedChildren(ifNode) {
		if isBodyKind(child.Type()) {
			if thenSeen {
				return []*sitter.Node{child}
			}
			thenSeen = true
		}
	}
	return nil
}

func matchParts(matchNode *sitter.Node) (subject *sitter.Node, arms []*sitter.Node) {
	for _, field := range []string{"value", "subject", "condition"} {
		if subject = matchNode.ChildByFieldName(field); subject != nil {
			break
		}
	}
	container := matchNode.ChildByFieldName("body")
	if container == nil {
		for _, child := range ast.NamedChildren(matchNode) {
			if child.Type() == "block" || child.Type() == "switch_block" {
				container = child
				break
			}
		}
	}
	if container == nil {
		container = matchNode
	}
	for _, child := range ast.NamedChildren(container) {
		switch child.Type() {
		case "match_arm", "case_clause", "switch_case", "switch_default",
			"expression_case", "default_case", "switch_rule":
			arms = append(arms, child)
		}
	}
	return subject, arms
}

// armParts extracts the pattern text and the body container of a match
// arm. A nil body means the arm holds its statements directly, minus the
// pattern node.
func armParts(arm *sitter.Node, content []byte) (pattern string, patternNode, body *sitter.Node) {
	pattern = "default"
	switch arm.Type() {
	case "match_arm":
		patternNode = arm.ChildByFieldName("pattern")
		body = arm.ChildByFieldName("value")
	case "case_clause":
		patternNode = ast.ChildOfKind(arm, "case_pattern")
		body = arm.ChildByFieldName("consequence")
	case "switch_rule":
		patternNode = arm.ChildByFieldName("pattern")
		body = arm.ChildByFieldName("body")
	case "expression_case":
		patternNode = ast.ChildOfKind(arm, "expression_list")
	case "switch_case":
		patternNode = arm.ChildByFieldName("value")
	}
	if patternNode != nil {
		pattern = ast.FlatText(patternNode, content)
	}
	return pattern, patternNode, body
}
