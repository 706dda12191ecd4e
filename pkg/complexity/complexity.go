// Package complexity computes structural metrics over control-flow
// graphs: cyclomatic complexity and the set of nodes unreachable from
// the entry node.
package complexity

import (
	"sort"

	"cfglens/pkg/cfg"
)

// Result holds the metrics for one function's graph.
type Result struct {
	Function    string `json:"function"`
	Cyclomatic  int    `json:"cyclomatic"`
	Unreachable []int  `json:"unreachable,omitempty"`
}

// Analyze computes cyclomatic complexity (E - N + 2 over a single
// connected component) and unreachable node ids, sorted ascending.
func Analyze(graph *cfg.ControlFlowGraph) Result {
	nodes := len(graph.Nodes)
	edges := len(graph.Edges)

	cyclomatic := edges - nodes + 2
	if edges < nodes {
		// Disconnected or degenerate graphs floor at the minimum.
		cyclomatic = 1
	}

	return Result{
		Function:    graph.Function,
		Cyclomatic:  cyclomatic,
		Unreachable: unreachable(graph),
	}
}

// unreachable returns the ids of nodes with no path from the entry
// node, following every edge kind including back edges.
func unreachable(graph *cfg.ControlFlowGraph) []int {
	succs := make(map[int][]int, len(graph.Nodes))
	for _, edge := range graph.Edges {
		succs[edge.From] = append(succs[edge.From], edge.To)
	}

	seen := map[int]bool{graph.Entry: true}
	stack := []int{graph.Entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range succs[id] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}

	var missed []int
	for _, node := range graph.Nodes {
		if !seen[node.ID] {
			missed = append(missed, node.ID)
		}
	}
	sort.Ints(missed)
	return missed
}
