package cfg

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/normalize"
)

// flowState is the fold state threaded through statement processing: the
// current predecessor node, the edge kind connecting the next node to it,
// and whether the path has already terminated.
type flowState struct {
	pred       int
	kind       EdgeKind
	terminated bool
}

// terminate marks the path dead; no further statements materialize.
func (s flowState) terminate() flowState {
	s.terminated = true
	return s
}

// advance moves the fold onto a freshly created node; subsequent
// connections are plain next edges.
func (s flowState) advance(pred int) flowState {
	return flowState{pred: pred, kind: KindNext}
}

type builder struct {
	graph   *ControlFlowGraph
	ctx     *buildContext
	content []byte
	norm    normalize.Normalizer
}

// Build constructs the control-flow graph for one function body. It
// never fails: malformed sub-constructs degrade to pass-throughs, and a
// nil body yields the minimal ENTRY -> EXIT graph. The same body always
// produces the same node and edge sequences.
func Build(function string, body *sitter.Node, content []byte, language string) *ControlFlowGraph {
	ctx, entryID := newBuildContext()
	b := &builder{
		graph:   &ControlFlowGraph{Function: function, Entry: entryID, Exit: ctx.exitID},
		ctx:     ctx,
		content: content,
		norm:    normalize.ForLanguage(language),
	}

	b.addNode(entryID, "ENTRY", "")

	exits := b.processBlock(body, flowState{pred: entryID, kind: KindNext})

	b.addNode(ctx.exitID, "EXIT", "")
	for _, exit := range exits {
		if exit != ctx.exitID {
			b.addEdge(exit, ctx.exitID, KindNext)
		}
	}

	b.graph.Diagnostics = ctx.diags
	return b.graph
}

func (b *builder) addNode(id int, label, span string) {
	b.graph.Nodes = append(b.graph.Nodes, Node{ID: id, Label: label, Span: span})
}

func (b *builder) addEdge(from, to int, kind EdgeKind) {
	b.graph.Edges = append(b.graph.Edges, Edge{From: from, To: to, Kind: kind})
}

// processBlock folds left-to-right over a block's statements and returns
// the exit points of the surviving path: one element normally, empty
// when every path through the block terminated.
func (b *builder) processBlock(block *sitter.Node, st flowState) []int {
	if block == nil {
		return []int{st.pred}
	}
	return b.processStatements(ast.NamedChildren(block), st)
}

func (b *builder) processStatements(stmts []*sitter.Node, st flowState) []int {
	for _, stmt := range stmts {
		if isSkipped(stmt.Type()) {
			continue
		}
		if st.terminated {
			// Dead code after break/continue/return is never
			// materialized.
			break
		}
		st = b.processStatement(stmt, st)
	}

	if st.terminated {
		return nil
	}
	return []int{st.pred}
}

// processStatement dispatches one statement and returns the next fold
// state.
func (b *builder) processStatement(stmt *sitter.Node, st flowState) flowState {
	stmt = unwrapExpressionStatement(stmt)
	kind := stmt.Type()

	switch {
	case isIfKind(kind):
		return b.continueFrom(b.processIf(stmt, st), st)
	case isWhileKind(kind):
		return b.continueFrom(b.processWhile(stmt, st), st)
	case isForKind(kind):
		return b.continueFrom(b.processFor(stmt, st), st)
	case isMatchKind(kind):
		return b.continueFrom(b.processMatch(stmt, st), st)
	case isBreakKind(kind):
		return b.processLoopJump(stmt, st, true)
	case isContinueKind(kind):
		return b.processLoopJump(stmt, st, false)
	case isReturnKind(kind):
		return b.processReturn(stmt, st)
	default:
		return b.processOpaque(stmt, st)
	}
}

// continueFrom folds a construct's exit points back into linear flow:
// no exits means the path terminated; a single exit continues directly;
// multiple exits reconverge through a synthesized join node.
func (b *builder) continueFrom(exits []int, st flowState) flowState {
	switch len(exits) {
	case 0:
		return st.terminate()
	case 1:
		return st.advance(exits[0])
	default:
		joinID := b.ctx.allocID()
		b.addNode(joinID, "join", "")
		for _, exit := range exits {
			if exit != joinID {
				b.addEdge(exit, joinID, KindNext)
			}
		}
		return st.advance(joinID)
	}
}

// processOpaque handles statements with no structural meaning to the
// graph. Early-exit sugar (panic/throw/raise/exit) recognized by the
// language's normalizer still terminates the path with an exit edge.
func (b *builder) processOpaque(stmt *sitter.Node, st flowState) flowState {
	exitIRID := fmt.Sprintf("E%d", b.ctx.nextID)
	if exitIR := b.norm.EarlyExit(stmt, b.content, exitIRID); exitIR != nil {
		id := b.ctx.allocID()
		b.addNode(id, exitIR.TriggerExpr, ast.Span(stmt))
		b.addEdge(st.pred, id, st.kind)
		b.addEdge(id, b.ctx.exitID, KindExit)
		return st.terminate()
	}

	id := b.ctx.allocID()
	b.addNode(id, ast.FlatText(stmt, b.content), ast.Span(stmt))
	b.addEdge(st.pred, id, st.kind)
	return st.advance(id)
}

func (b *builder) processReturn(stmt *sitter.Node, st flowState) flowState {
	id := b.ctx.allocID()
	b.addNode(id, ast.FlatText(stmt, b.content), ast.Span(stmt))
	b.addEdge(st.pred, id, st.kind)
	b.addEdge(id, b.ctx.exitID, KindExit)
	return st.terminate()
}

// processLoopJump handles break (jump=true) and continue (jump=false).
// The marker node is always emitted; the resolving edge is omitted when
// no loop context exists, which is recorded as a diagnostic.
func (b *builder) processLoopJump(stmt *sitter.Node, st flowState, isBreak bool) flowState {
	label := "continue_stmt"
	if isBreak {
		label = "break_stmt"
	}

	id := b.ctx.allocID()
	b.addNode(id, label, ast.Span(stmt))
	b.addEdge(st.pred, id, st.kind)

	if loop, ok := b.ctx.currentLoop(); ok {
		if isBreak {
			b.addEdge(id, loop.afterID, KindBreak)
		} else {
			b.addEdge(id, loop.conditionID, KindContinue)
		}
	} else {
		stmtKind := "continue"
		if isBreak {
			stmtKind = "break"
		}
		b.ctx.diagnose(ast.Span(stmt), stmtKind+" outside any loop")
	}

	return st.terminate()
}

// unwrapExpressionStatement peels an expression_statement wrapper off a
// control-flow expression (Rust allows if/match/loop as statement-level
// expressions).
func unwrapExpressionStatement(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != "expression_statement" {
		return stmt
	}
	for _, child := range ast.NamedChildren(stmt) {
		if isControlKind(child.Type()) {
			return child
		}
	}
	return stmt
}
