package complexity

import (
	"reflect"
	"testing"

	"cfglens/pkg/cfg"
)

func graph(function string, nodes []int, entry int, edges ...[2]int) *cfg.ControlFlowGraph {
	g := &cfg.ControlFlowGraph{Function: function, Entry: entry}
	for _, id := range nodes {
		g.Nodes = append(g.Nodes, cfg.Node{ID: id, Label: "n"})
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, cfg.Edge{From: e[0], To: e[1], Kind: cfg.KindNext})
	}
	return g
}

func TestStraightLineComplexityIsOne(t *testing.T) {
	// ENTRY -> a -> b -> EXIT: 4 nodes, 3 edges.
	g := graph("linear", []int{0, 1, 2, 3}, 0, [2]int{0, 2}, [2]int{2, 3}, [2]int{3, 1})

	r := Analyze(g)
	if r.Cyclomatic != 1 {
		t.Errorf("cyclomatic = %d, want 1", r.Cyclomatic)
	}
	if len(r.Unreachable) != 0 {
		t.Errorf("unreachable = %v, want none", r.Unreachable)
	}
}

func TestBranchAddsOne(t *testing.T) {
	// ENTRY -> cond -> {then, else} -> join -> EXIT: 6 nodes, 6 edges.
	g := graph("branchy", []int{0, 1, 2, 3, 4, 5}, 0,
		[2]int{0, 2}, [2]int{2, 3}, [2]int{2, 4}, [2]int{3, 5}, [2]int{4, 5}, [2]int{5, 1})

	if r := Analyze(g); r.Cyclomatic != 2 {
		t.Errorf("cyclomatic = %d, want 2", r.Cyclomatic)
	}
}

func TestLoopAddsOne(t *testing.T) {
	// ENTRY -> cond -> body -> cond (back), cond -> after -> EXIT.
	g := graph("loopy", []int{0, 1, 2, 3, 4}, 0,
		[2]int{0, 2}, [2]int{2, 3}, [2]int{3, 2}, [2]int{2, 4}, [2]int{4, 1})

	if r := Analyze(g); r.Cyclomatic != 2 {
		t.Errorf("cyclomatic = %d, want 2", r.Cyclomatic)
	}
}

func TestDegenerateGraphFloorsAtOne(t *testing.T) {
	// More nodes than edges, as after heavy dead-code elimination.
	g := graph("degenerate", []int{0, 1, 2}, 0, [2]int{0, 1})

	if r := Analyze(g); r.Cyclomatic != 1 {
		t.Errorf("cyclomatic = %d, want 1", r.Cyclomatic)
	}
}

func TestUnreachableSortedAscending(t *testing.T) {
	// Nodes 7, 3 and 5 have no path from entry.
	g := graph("islands", []int{0, 1, 7, 3, 5}, 0,
		[2]int{0, 1}, [2]int{7, 3}, [2]int{3, 5})

	r := Analyze(g)
	if want := []int{3, 5, 7}; !reflect.DeepEqual(r.Unreachable, want) {
		t.Errorf("unreachable = %v, want %v", r.Unreachable, want)
	}
}

func TestBackEdgesFollowedForReachability(t *testing.T) {
	// The only path to node 4 runs over a back edge.
	g := &cfg.ControlFlowGraph{Function: "back", Entry: 0}
	for _, id := range []int{0, 1, 2, 3, 4} {
		g.Nodes = append(g.Nodes, cfg.Node{ID: id, Label: "n"})
	}
	g.Edges = append(g.Edges,
		cfg.Edge{From: 0, To: 2, Kind: cfg.KindNext},
		cfg.Edge{From: 2, To: 3, Kind: cfg.KindTrue},
		cfg.Edge{From: 3, To: 4, Kind: cfg.KindBack},
		cfg.Edge{From: 2, To: 1, Kind: cfg.KindFalse},
	)

	if r := Analyze(g); len(r.Unreachable) != 0 {
		t.Errorf("unreachable = %v, back edges must count for reachability", r.Unreachable)
	}
}
