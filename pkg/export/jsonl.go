package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"cfglens/pkg/basicblock"
	"cfglens/pkg/cfg"
	"cfglens/pkg/ir"
)

// JSONL serializes a control-flow graph one object per line: every node
// first, then every edge wrapped in a cfg_edge envelope.
func JSONL(graph *cfg.ControlFlowGraph) (string, error) {
	var sb strings.Builder

	for i := range graph.Nodes {
		line, err := json.Marshal(&graph.Nodes[i])
		if err != nil {
			return "", fmt.Errorf("marshaling node %d: %w", graph.Nodes[i].ID, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}

	for _, edge := range graph.Edges {
		wrapper := struct {
			CfgEdge cfg.Edge `json:"cfg_edge"`
		}{CfgEdge: edge}
		line, err := json.Marshal(&wrapper)
		if err != nil {
			return "", fmt.Errorf("marshaling edge %d->%d: %w", edge.From, edge.To, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// BlockJSONL serializes a basic-block graph one object per line: blocks
// first, then edges wrapped in an edge envelope.
func BlockJSONL(graph *basicblock.Graph) (string, error) {
	var sb strings.Builder

	for i := range graph.Blocks {
		line, err := json.Marshal(&graph.Blocks[i])
		if err != nil {
			return "", fmt.Errorf("marshaling block %d: %w", graph.Blocks[i].ID, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}

	for _, edge := range graph.Edges {
		wrapper := struct {
			Edge basicblock.Edge `json:"edge"`
		}{Edge: edge}
		line, err := json.Marshal(&wrapper)
		if err != nil {
			return "", fmt.Errorf("marshaling edge %d->%d: %w", edge.From, edge.To, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// ToIR projects a control-flow graph into its exportable IR form. Node
// ids become "N<id>" strings and every edge carries the builder's
// default provenance.
func ToIR(graph *cfg.ControlFlowGraph, sourceFile string) *ir.FunctionCFG {
	out := &ir.FunctionCFG{
		FunctionName: graph.Function,
		SourceFile:   sourceFile,
	}
	for _, node := range graph.Nodes {
		out.Nodes = append(out.Nodes, ir.NewCFGNode(
			graph.Function, fmt.Sprintf("N%d", node.ID), node.Label, node.Span))
	}
	for _, edge := range graph.Edges {
		out.Edges = append(out.Edges, ir.NewCFGEdge(
			graph.Function,
			fmt.Sprintf("N%d", edge.From),
			fmt.Sprintf("N%d", edge.To),
			edge.Kind.String()))
	}
	return out
}
