// Package export renders control-flow and basic-block graphs to
// Mermaid diagrams and JSONL streams.
package export

import (
	"fmt"
	"strings"

	"cfglens/pkg/basicblock"
	"cfglens/pkg/cfg"
)

// EscapeMermaidLabel escapes a node label for embedding in a Mermaid
// diagram. Ampersands are replaced first so entity replacements do not
// double-escape, then quotes, angle brackets, backslashes, and newlines.
func EscapeMermaidLabel(label string) string {
	escaped := strings.ReplaceAll(label, "&", "&amp;")
	escaped = strings.ReplaceAll(escaped, `"`, "&quot;")
	escaped = strings.ReplaceAll(escaped, "'", "&apos;")
	escaped = strings.ReplaceAll(escaped, "<", "&lt;")
	escaped = strings.ReplaceAll(escaped, ">", "&gt;")
	escaped = strings.ReplaceAll(escaped, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, "\n", " ")
	return escaped
}

// Mermaid renders a control-flow graph as a top-down Mermaid diagram.
// Condition nodes get diamonds, ENTRY/EXIT get stadiums, join nodes get
// small circles, everything else a rectangle.
func Mermaid(graph *cfg.ControlFlowGraph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range graph.Nodes {
		label := node.Label
		switch {
		case strings.HasPrefix(label, "if ("):
			condition := strings.TrimSuffix(strings.TrimPrefix(label, "if ("), ")")
			fmt.Fprintf(&sb, "    %d{\"%s\"}\n", node.ID, EscapeMermaidLabel(condition))
		case label == "ENTRY" || label == "EXIT":
			fmt.Fprintf(&sb, "    %d([%s])\n", node.ID, label)
		case label == "join" || label == "match_join":
			fmt.Fprintf(&sb, "    %d(( ))\n", node.ID)
		default:
			fmt.Fprintf(&sb, "    %d[\"%s\"]\n", node.ID, EscapeMermaidLabel(label))
		}
	}

	for _, edge := range graph.Edges {
		switch edge.Kind {
		case cfg.KindTrue:
			fmt.Fprintf(&sb, "    %d -->|T| %d\n", edge.From, edge.To)
		case cfg.KindFalse:
			fmt.Fprintf(&sb, "    %d -->|F| %d\n", edge.From, edge.To)
		case cfg.KindExit:
			fmt.Fprintf(&sb, "    %d -.-> %d\n", edge.From, edge.To)
		default:
			fmt.Fprintf(&sb, "    %d --> %d\n", edge.From, edge.To)
		}
	}

	return sb.String()
}

// MermaidValidated renders and validates in one step.
func MermaidValidated(graph *cfg.ControlFlowGraph) (string, error) {
	diagram := Mermaid(graph)
	if err := ValidateMermaid(diagram); err != nil {
		return "", err
	}
	return diagram, nil
}

// BlockMermaid renders a basic-block graph. Blocks list their
// statements joined with line breaks inside a single rectangle.
func BlockMermaid(graph *basicblock.Graph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, block := range graph.Blocks {
		label := EscapeMermaidLabel(strings.Join(block.Stmts, "\n"))
		if block.ID == graph.Entry || block.ID == graph.Exit {
			fmt.Fprintf(&sb, "    %d([%s])\n", block.ID, label)
		} else {
			fmt.Fprintf(&sb, "    %d[\"%s\"]\n", block.ID, label)
		}
	}

	for _, edge := range graph.Edges {
		switch edge.Kind {
		case "true":
			fmt.Fprintf(&sb, "    %d -->|T| %d\n", edge.From, edge.To)
		case "false":
			fmt.Fprintf(&sb, "    %d -->|F| %d\n", edge.From, edge.To)
		case "exit":
			fmt.Fprintf(&sb, "    %d -.-> %d\n", edge.From, edge.To)
		default:
			fmt.Fprintf(&sb, "    %d --> %d\n", edge.From, edge.To)
		}
	}

	return sb.String()
}

// ValidateMermaid checks a rendered diagram for the failure modes that
// break downstream renderers: empty output, a missing graph header, and
// unescaped quotes inside bracketed labels. Errors name the offending
// 1-based line.
func ValidateMermaid(diagram string) error {
	lines := strings.Split(strings.TrimRight(diagram, "\n"), "\n")
	if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
		return fmt.Errorf("empty diagram")
	}
	if !strings.HasPrefix(lines[0], "graph") {
		return fmt.Errorf("diagram must start with 'graph'")
	}

	for i, line := range lines {
		start := strings.IndexByte(line, '[')
		end := strings.LastIndexByte(line, ']')
		if start < 0 || end < 0 || end <= start {
			continue
		}
		label := line[start+1 : end]
		// Rectangle labels are wrapped in quotes; the delimiters are
		// not label content.
		if len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`) {
			label = label[1 : len(label)-1]
		}
		// Any quote left after removing the escaped entities is raw.
		if strings.Contains(strings.ReplaceAll(label, "&apos;", ""), "'") {
			return fmt.Errorf("line %d: unescaped single quote in label", i+1)
		}
		if strings.Contains(strings.ReplaceAll(label, "&quot;", ""), `"`) {
			return fmt.Errorf("line %d: unescaped double quote in label", i+1)
		}
	}

	return nil
}
