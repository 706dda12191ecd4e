// Package ir defines the language-neutral intermediate representations
// produced by the normalizers and the CFG projection: normalized loop and
// early-exit records, and exportable node/edge records carrying provenance.
package ir

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
)

// LoopKind discriminates the two for-loop shapes.
type LoopKind string

const (
	// ForCounter is the C/Java/JS style for(init; condition; update).
	ForCounter LoopKind = "for_counter"
	// ForIterator is the Rust/Python style for pattern in iterable.
	ForIterator LoopKind = "for_iterator"
)

// ForLoopIR is the normalized form of a for loop. Exactly one variant's
// fields are populated: Init/Condition/Update for counter loops,
// Pattern/IterExpr for iterator loops. The other variant's fields are
// absent from serialized output, never present-but-empty.
type ForLoopIR struct {
	Type   string   `json:"type"`
	LoopID string   `json:"loop_id"`
	Kind   LoopKind `json:"kind"`

	Init      string `json:"init,omitempty"`
	Condition string `json:"condition,omitempty"`
	Update    string `json:"update,omitempty"`

	Pattern  string `json:"pattern,omitempty"`
	IterExpr string `json:"iter_expr,omitempty"`
}

// NewCounterLoop builds a counter-style ForLoopIR.
func NewCounterLoop(loopID, init, condition, update string) *ForLoopIR {
	return &ForLoopIR{
		Type:      "Loop",
		LoopID:    loopID,
		Kind:      ForCounter,
		Init:      init,
		Condition: condition,
		Update:    update,
	}
}

// NewIteratorLoop builds an iterator-style ForLoopIR.
func NewIteratorLoop(loopID, pattern, iterExpr string) *ForLoopIR {
	return &ForLoopIR{
		Type:     "Loop",
		LoopID:   loopID,
		Kind:     ForIterator,
		Pattern:  pattern,
		IterExpr: iterExpr,
	}
}

// Label renders the normalized condition-node label for this loop.
func (l *ForLoopIR) Label() string {
	if l.Kind == ForIterator {
		pattern := l.Pattern
		if pattern == "" {
			pattern = "item"
		}
		iter := l.IterExpr
		if iter == "" {
			iter = "iterator"
		}
		return fmt.Sprintf("for_loop(cond: %s.has_next, pattern: %s)", iter, pattern)
	}

	init, cond, update := l.Init, l.Condition, l.Update
	if init == "" {
		init = "init"
	}
	if cond == "" {
		cond = "condition"
	}
	if update == "" {
		update = "update"
	}
	return fmt.Sprintf("for_loop(init: %s, cond: %s, update: %s)", init, cond, update)
}

// ExitKind tags the construct an early exit was normalized from.
type ExitKind string

const (
	ExitReturn      ExitKind = "return"
	ExitPanic       ExitKind = "panic"
	ExitThrow       ExitKind = "throw"
	ExitRaise       ExitKind = "raise"
	ExitProcessExit ExitKind = "process_exit"
)

// EarlyExitIR is the normalized form of a return/throw/panic/exit
// construct. Absence of an EarlyExitIR means "opaque statement", not an
// error.
type EarlyExitIR struct {
	Type        string   `json:"type"`
	ExitID      string   `json:"exit_id"`
	Kind        ExitKind `json:"kind"`
	TriggerExpr string   `json:"trigger_expr"`
	ErrorValue  string   `json:"error_value,omitempty"`
}

// NewEarlyExit builds an EarlyExitIR for an unconditional exit construct.
func NewEarlyExit(exitID string, kind ExitKind, trigger, errorValue string) *EarlyExitIR {
	return &EarlyExitIR{
		Type:        "EarlyExit",
		ExitID:      exitID,
		Kind:        kind,
		TriggerExpr: trigger,
		ErrorValue:  errorValue,
	}
}

// Default provenance for records produced by the syntactic builder itself.
const (
	SourceTreeSitter = "tree-sitter"

	ConfidenceExact     = "exact"
	ConfidenceInferred  = "inferred"
	ConfidenceUncertain = "uncertain"
)

// CFGNodeIR is the exportable projection of a CFG node.
type CFGNodeIR struct {
	Type  string `json:"type"`
	Func  string `json:"func"`
	ID    string `json:"id"`
	Label string `json:"label"`
	Span  string `json:"span"`
}

// NewCFGNode builds a CFGNodeIR.
func NewCFGNode(fn, id, label, span string) CFGNodeIR {
	return CFGNodeIR{Type: "CFGNode", Func: fn, ID: id, Label: label, Span: span}
}

// CFGEdgeIR is the exportable projection of a CFG edge. Source names the
// technique that asserted the edge; Confidence is "exact", "inferred" or
// "uncertain". Records produced by this core carry tree-sitter/exact;
// tags supplied by outside collaborators pass through unchanged.
type CFGEdgeIR struct {
	Type       string `json:"type"`
	Func       string `json:"func"`
	From       string `json:"from"`
	To         string `json:"to"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	Confidence string `json:"confidence"`
}

// NewCFGEdge builds a CFGEdgeIR with default provenance.
func NewCFGEdge(fn, from, to, kind string) CFGEdgeIR {
	return CFGEdgeIR{
		Type:       "CFGEdge",
		Func:       fn,
		From:       from,
		To:         to,
		Kind:       kind,
		Source:     SourceTreeSitter,
		Confidence: ConfidenceExact,
	}
}

// WithProvenance overrides the edge's provenance tags. Empty values keep
// the defaults, so partial tags from collaborators are merged, not lost.
func (e CFGEdgeIR) WithProvenance(source, confidence string) CFGEdgeIR {
	if source != "" {
		e.Source = source
	}
	if confidence != "" {
		e.Confidence = confidence
	}
	return e
}

// FunctionCFG is the complete exportable CFG for one function.
type FunctionCFG struct {
	FunctionName string      `json:"function_name"`
	SourceFile   string      `json:"source_file,omitempty"`
	Nodes        []CFGNodeIR `json:"nodes"`
	Edges        []CFGEdgeIR `json:"edges"`
}

// ToJSONL serializes nodes then edges, one JSON object per line, in
// emission order.
func (f *FunctionCFG) ToJSONL() (string, error) {
	var sb strings.Builder
	for i := range f.Nodes {
		line, err := json.Marshal(&f.Nodes[i])
		if err != nil {
			return "", fmt.Errorf("marshaling node %s: %w", f.Nodes[i].ID, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	for i := range f.Edges {
		line, err := json.Marshal(&f.Edges[i])
		if err != nil {
			return "", fmt.Errorf("marshaling edge %s->%s: %w", f.Edges[i].From, f.Edges[i].To, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// ParseJSONL reads JSONL produced by ToJSONL back into per-function CFGs,
// grouped by the func field in record order.
func ParseJSONL(jsonl string) ([]FunctionCFG, error) {
	var (
		order []string
		byFn  = map[string]*FunctionCFG{}
	)
	lookup := func(fn string) *FunctionCFG {
		if f, ok := byFn[fn]; ok {
			return f
		}
		f := &FunctionCFG{FunctionName: fn}
		byFn[fn] = f
		order = append(order, fn)
		return f
	}

	scanner := bufio.NewScanner(strings.NewReader(jsonl))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(line), &probe); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		switch probe.Type {
		case "CFGNode":
			var node CFGNodeIR
			if err := json.Unmarshal([]byte(line), &node); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			f := lookup(node.Func)
			f.Nodes = append(f.Nodes, node)
		case "CFGEdge":
			var edge CFGEdgeIR
			if err := json.Unmarshal([]byte(line), &edge); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			f := lookup(edge.Func)
			f.Edges = append(f.Edges, edge)
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", lineNo, probe.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]FunctionCFG, 0, len(order))
	for _, fn := range order {
		out = append(out, *byFn[fn])
	}
	return out, nil
}
