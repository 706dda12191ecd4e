package ir

import (
	"testing"
)

func TestWithProvenanceOverrides(t *testing.T) {
	edge := NewCFGEdge("f", "N0", "N1", "next")
	if edge.Source != SourceTreeSitter || edge.Confidence != ConfidenceExact {
		t.Fatalf("default provenance = %s/%s, want %s/%s",
			edge.Source, edge.Confidence, SourceTreeSitter, ConfidenceExact)
	}

	tagged := edge.WithProvenance("dataflow", ConfidenceInferred)
	if tagged.Source != "dataflow" || tagged.Confidence != ConfidenceInferred {
		t.Errorf("tagged provenance = %s/%s, want dataflow/%s",
			tagged.Source, tagged.Confidence, ConfidenceInferred)
	}

	// Empty values merge with, not clobber, the existing tags.
	partial := tagged.WithProvenance("", ConfidenceUncertain)
	if partial.Source != "dataflow" {
		t.Errorf("empty source overwrote %q", tagged.Source)
	}
	if partial.Confidence != ConfidenceUncertain {
		t.Errorf("confidence = %q, want %q", partial.Confidence, ConfidenceUncertain)
	}
}

func TestProvenanceTagsSurviveJSONLRoundTrip(t *testing.T) {
	cfg := FunctionCFG{
		FunctionName: "f",
		Nodes: []CFGNodeIR{
			NewCFGNode("f", "N0", "ENTRY", ""),
			NewCFGNode("f", "N1", "EXIT", ""),
		},
		Edges: []CFGEdgeIR{
			NewCFGEdge("f", "N0", "N1", "next"),
			NewCFGEdge("f", "N1", "N0", "back").WithProvenance("dataflow", ConfidenceInferred),
		},
	}

	jsonl, err := cfg.ToJSONL()
	if err != nil {
		t.Fatalf("ToJSONL: %v", err)
	}
	parsed, err := ParseJSONL(jsonl)
	if err != nil {
		t.Fatalf("ParseJSONL: %v", err)
	}
	if len(parsed) != 1 || len(parsed[0].Edges) != 2 {
		t.Fatalf("parsed %d functions, want 1 with 2 edges", len(parsed))
	}

	def := parsed[0].Edges[0]
	if def.Source != SourceTreeSitter || def.Confidence != ConfidenceExact {
		t.Errorf("default edge provenance = %s/%s, want %s/%s",
			def.Source, def.Confidence, SourceTreeSitter, ConfidenceExact)
	}
	tagged := parsed[0].Edges[1]
	if tagged.Source != "dataflow" || tagged.Confidence != ConfidenceInferred {
		t.Errorf("tagged edge provenance = %s/%s, want dataflow/%s",
			tagged.Source, tagged.Confidence, ConfidenceInferred)
	}
}
