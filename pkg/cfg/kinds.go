package cfg

// Node-kind classification shared by the builder across the supported
// grammars. Statement dispatch works on kinds so the walk itself stays
// language-generic; only the normalizers know per-language grammar
// details.

// skippedKinds are named block children that never become nodes.
var skippedKinds = map[string]bool{
	"comment":         true,
	"line_comment":    true,
	"block_comment":   true,
	"empty_statement": true,
}

func isSkipped(kind string) bool { return skippedKinds[kind] }

func isIfKind(kind string) bool {
	switch kind {
	case "if_expression", "if_statement", "elif_clause":
		return true
	}
	return false
}

func isWhileKind(kind string) bool {
	switch kind {
	case "while_expression", "while_statement", "loop_expression":
		return true
	}
	return false
}

func isForKind(kind string) bool {
	switch kind {
	case "for_expression", "for_statement", "for_in_statement",
		"enhanced_for_statement", "for_range_loop", "range_based_for_statement":
		return true
	}
	return false
}

func isMatchKind(kind string) bool {
	switch kind {
	case "match_expression", "match_statement", "switch_statement",
		"switch_expression", "expression_switch_statement":
		return true
	}
	return false
}

func isBreakKind(kind string) bool {
	return kind == "break_expression" || kind == "break_statement"
}

func isContinueKind(kind string) bool {
	return kind == "continue_expression" || kind == "continue_statement"
}

func isReturnKind(kind string) bool {
	return kind == "return_expression" || kind == "return_statement"
}

// isControlKind reports whether a kind gets structural treatment rather
// than an opaque statement node.
func isControlKind(kind string) bool {
	return isIfKind(kind) || isWhileKind(kind) || isForKind(kind) ||
		isMatchKind(kind) || isBreakKind(kind) || isContinueKind(kind) ||
		isReturnKind(kind)
}

// blockKinds hold statements across the supported grammars.
var blockKinds = map[string]bool{
	"block":              true,
	"statement_block":    true,
	"compound_statement": true,
	"match_block":        true,
	"switch_body":        true,
	"switch_block":       true,
}

func isBlockKind(kind string) bool { return blockKinds[kind] }

// armKinds are the per-language match/case arm node kinds.
var armKinds = map[string]bool{
	"match_arm":       true, // rust
	"case_clause":     true, // python
	"switch_case":     true, // javascript/typescript, c/cpp
	"switch_default":  true,
	"expression_case": true, // go
	"default_case":    true,
	"switch_rule":     true, // java arrow switch
}

func isArmKind(kind string) bool { return armKinds[kind] }
