// Package cfg builds control-flow graphs from parsed function bodies.
// The builder walks a tree-sitter block node and emits a directed graph
// of statement and structural nodes; it is total over any syntactically
// valid input and degrades malformed constructs to no-ops instead of
// failing.
package cfg

import "encoding/json"

// Node is a single CFG node: a statement rendering or a structural
// marker (ENTRY, EXIT, join, while_body, ...). IDs are unique within a
// function.
type Node struct {
	ID    int    `json:"cfg_node"`
	Label string `json:"label"`
	Span  string `json:"span,omitempty"`
}

// EdgeKind is a tagged sum: either a member of the fixed structural
// vocabulary (next, true, false, back, break, continue, exit) or the
// literal pattern text of a match arm. The zero value is not a valid
// kind.
type EdgeKind struct {
	structural string
	arm        string
}

// Structural edge kinds.
var (
	KindNext     = EdgeKind{structural: "next"}
	KindTrue     = EdgeKind{structural: "true"}
	KindFalse    = EdgeKind{structural: "false"}
	KindBack     = EdgeKind{structural: "back"}
	KindBreak    = EdgeKind{structural: "break"}
	KindContinue = EdgeKind{structural: "continue"}
	KindExit     = EdgeKind{structural: "exit"}
)

// ArmKind builds the edge kind for a match-arm dispatch edge, carrying
// the arm's pattern text.
func ArmKind(pattern string) EdgeKind {
	return EdgeKind{arm: pattern}
}

// IsArm reports whether the kind is an arm-selector rather than a member
// of the structural vocabulary.
func (k EdgeKind) IsArm() bool { return k.arm != "" }

func (k EdgeKind) String() string {
	if k.arm != "" {
		return k.arm
	}
	return k.structural
}

// MarshalJSON renders the kind as its string form, so exported edges
// carry "next"/"true"/... or the arm pattern text.
func (k EdgeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON reads a kind back from its string form. Strings outside
// the structural vocabulary become arm-selector kinds.
func (k *EdgeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "next", "true", "false", "back", "break", "continue", "exit":
		*k = EdgeKind{structural: s}
	default:
		*k = EdgeKind{arm: s}
	}
	return nil
}

// Edge is a directed control-flow transition between two nodes.
type Edge struct {
	From int      `json:"from"`
	To   int      `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// Diagnostic records a structural oddity the builder absorbed rather
// than failed on, such as a break with no enclosing loop.
type Diagnostic struct {
	Span    string `json:"span,omitempty"`
	Message string `json:"message"`
}

// ControlFlowGraph is the finished graph for one function: an
// insertion-ordered node list and edge list, immutable once returned by
// the builder. Entry and Exit identify the sentinel nodes.
type ControlFlowGraph struct {
	Function    string       `json:"function"`
	Nodes       []Node       `json:"nodes"`
	Edges       []Edge       `json:"edges"`
	Entry       int          `json:"entry"`
	Exit        int          `json:"exit"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NodeByID returns the node with the given id, or nil.
func (g *ControlFlowGraph) NodeByID(id int) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}
