// Package basicblock partitions a function body into maximal
// straight-line statement runs. It walks the same AST as the CFG builder
// but coalesces consecutive plain statements into coarse blocks,
// splitting only at control-flow terminators (if/while/for/match, break,
// continue, return/early-exit). The two representations differ in
// granularity but agree on where terminators fall and on reachability.
package basicblock

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"cfglens/pkg/ast"
	"cfglens/pkg/normalize"
)

// Block is one basic block: an ordered run of statement texts and the
// source span it covers.
type Block struct {
	ID    int      `json:"bb"`
	Stmts []string `json:"stmts"`
	Span  string   `json:"span"`
}

// Edge is a control transition between blocks.
type Edge struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	Kind string `json:"kind"`
}

// Graph is the block-level graph for one function.
type Graph struct {
	Function string  `json:"function"`
	Blocks   []Block `json:"blocks"`
	Edges    []Edge  `json:"edges"`
	Entry    int     `json:"entry"`
	Exit     int     `json:"exit"`
}

// BlockByID returns the block with the given id, or nil.
func (g *Graph) BlockByID(id int) *Block {
	for i := range g.Blocks {
		if g.Blocks[i].ID == id {
			return &g.Blocks[i]
		}
	}
	return nil
}

type loopFrame struct {
	condID  int
	afterID int
}

type builder struct {
	graph   *Graph
	content []byte
	norm    normalize.Normalizer
	nextID  int
	loops   []loopFrame

	// open is the block currently accumulating plain statements, with
	// the edge that will connect it once the first statement arrives.
	open     *Block
	openFrom int
	openKind string
}

// state is the fold state at block granularity.
type state struct {
	pred       int
	kind       string
	terminated bool
}

// Build partitions one function body into basic blocks. Like the CFG
// builder it is total: nil bodies and malformed constructs degrade
// rather than fail.
func Build(function string, body *sitter.Node, content []byte, language string) *Graph {
	b := &builder{
		graph:   &Graph{Function: function},
		content: content,
		norm:    normalize.ForLanguage(language),
	}

	entryID := b.allocID()
	exitID := b.allocID()
	b.graph.Entry, b.graph.Exit = entryID, exitID
	b.addBlock(Block{ID: entryID, Stmts: []string{"ENTRY"}, Span: "entry"})

	exits := b.processBlock(body, state{pred: entryID, kind: "next"})

	b.addBlock(Block{ID: exitID, Stmts: []string{"EXIT"}, Span: "exit"})
	for _, exit := range exits {
		if exit != exitID {
			b.addEdge(exit, exitID, "next")
		}
	}

	return b.graph
}

func (b *builder) allocID() int {
	id := b.nextID
	b.nextID++
	return id
}

func (b *builder) addBlock(block Block) {
	b.graph.Blocks = append(b.graph.Blocks, block)
}

func (b *builder) addEdge(from, to int, kind string) {
	b.graph.Edges = append(b.graph.Edges, Edge{From: from, To: to, Kind: kind})
}

// appendStmt adds a plain statement to the open block, opening one if
// needed.
func (b *builder) appendStmt(stmt *sitter.Node, st state) state {
	if b.open == nil {
		b.open = &Block{ID: b.allocID()}
		b.openFrom, b.openKind = st.pred, st.kind
	}
	b.open.Stmts = append(b.open.Stmts, ast.FlatText(stmt, b.content))
	if b.open.Span == "" {
		b.open.Span = ast.Span(stmt)
	} else {
		b.open.Span = joinSpans(b.open.Span, ast.Span(stmt))
	}
	return state{pred: b.open.ID, kind: "next"}
}

// closeOpen finishes the accumulating block, if any, emitting its block
// record and incoming edge.
func (b *builder) closeOpen() {
	if b.open == nil {
		return
	}
	b.addBlock(*b.open)
	b.addEdge(b.openFrom, b.open.ID, b.openKind)
	b.open = nil
}

func (b *builder) processBlock(block *sitter.Node, st state) []int {
	if block == nil {
		return []int{st.pred}
	}
	return b.processStatements(ast.NamedChildren(block), st)
}

func (b *builder) processStatements(stmts []*sitter.Node, st state) []int {
	for _, stmt := range stmts {
		if stmt.Type() == "comment" || stmt.Type() == "line_comment" ||
			stmt.Type() == "block_comment" || stmt.Type() == "empty_statement" {
			continue
		}
		if st.terminated {
			break
		}
		st = b.processStatement(stmt, st)
	}
	b.closeOpen()
	if st.terminated {
		return nil
	}
	return []int{st.pred}
}

func (b *builder) processStatement(stmt *sitter.Node, st state) state {
	if inner := unwrapStatement(stmt); inner != nil {
		stmt = inner
	}
	kind := stmt.Type()
	if !isTerminator(kind) {
		exitIRID := fmt.Sprintf("E%d", b.nextID)
		if exitIR := b.norm.EarlyExit(stmt, b.content, exitIRID); exitIR != nil {
			return b.closeAndExit(stmt, st)
		}
		return b.appendStmt(stmt, st)
	}

	// A terminator finishes the open run before becoming structure.
	b.closeOpen()

	switch {
	case isIfTerm(kind):
		return b.fold(b.processIf(stmt, st), st)
	case isWhileTerm(kind):
		return b.fold(b.processLoop(stmt, st, false), st)
	case isForTerm(kind):
		return b.fold(b.processLoop(stmt, st, true), st)
	case isMatchTerm(kind):
		return b.fold(b.processMatch(stmt, st), st)
	case kind == "break_expression" || kind == "break_statement":
		return b.processJump(stmt, st, true)
	case kind == "continue_expression" || kind == "continue_statement":
		return b.processJump(stmt, st, false)
	default: // return
		return b.closeAndExit(stmt, st)
	}
}

// fold resumes linear flow after a structured construct.
func (b *builder) fold(exits []int, st state) state {
	switch len(exits) {
	case 0:
		st.terminated = true
		return st
	case 1:
		return state{pred: exits[0], kind: "next"}
	default:
		joinID := b.allocID()
		b.addBlock(Block{ID: joinID, Stmts: []string{"join"}, Span: ""})
		for _, exit := range exits {
			if exit != joinID {
				b.addEdge(exit, joinID, "next")
			}
		}
		return state{pred: joinID, kind: "next"}
	}
}

func (b *builder) processIf(ifNode *sitter.Node, st state) []int {
	condition, thenBranch := ifHead(ifNode)
	return b.processIfChain(ifNode, condition, thenBranch, ifAlternatives(ifNode), st)
}

// processIfChain emits one condition block and its then-branch, then
// threads the false edge into the remaining alternatives. Each elif
// clause consumes one list entry; the resolved else branch is last.
func (b *builder) processIfChain(origin, condition, thenBranch *sitter.Node, rest []*sitter.Node, st state) []int {
	if condition == nil || thenBranch == nil {
		return []int{st.pred}
	}

	condID := b.allocID()
	b.addBlock(Block{
		ID:    condID,
		Stmts: []string{fmt.Sprintf("if %s", ast.FlatText(condition, b.content))},
		Span:  ast.Span(origin),
	})
	b.addEdge(st.pred, condID, st.kind)

	exits := b.processBlock(thenBranch, state{pred: condID, kind: "true"})

	if len(rest) == 0 {
		return append(exits, condID)
	}

	falseState := state{pred: condID, kind: "false"}
	next := rest[0]
	switch {
	case next.Type() == "elif_clause":
		elifCond, elifThen := ifHead(next)
		exits = append(exits, b.processIfChain(next, elifCond, elifThen, rest[1:], falseState)...)
	case isIfTerm(next.Type()):
		exits = append(exits, b.processIf(next, falseState)...)
	default:
		exits = append(exits, b.processBlock(next, falseState)...)
	}
	return exits
}

func (b *builder) processLoop(loopNode *sitter.Node, st state, isFor bool) []int {
	var label string
	body := loopNode.ChildByFieldName("body")
	if body == nil {
		for _, child := range ast.NamedChildren(loopNode) {
			if isBodyKind(child.Type()) {
				body = child
			}
		}
	}

	if isFor {
		loopID := fmt.Sprintf("L%d", b.nextID)
		forIR := b.norm.ForLoop(loopNode, b.content, loopID)
		if forIR == nil || body == nil {
			return []int{st.pred}
		}
		label = forIR.Label()
	} else {
		condition := loopNode.ChildByFieldName("condition")
		if condition == nil && loopNode.Type() != "loop_expression" {
			for _, child := range ast.NamedChildren(loopNode) {
				if !isBodyKind(child.Type()) {
					condition = child
					break
				}
			}
		}
		if body == nil || (condition == nil && loopNode.Type() != "loop_expression") {
			return []int{st.pred}
		}
		condText := "true"
		if condition != nil {
			condText = ast.FlatText(condition, b.content)
		}
		label = fmt.Sprintf("while %s", condText)
	}

	condID := b.allocID()
	b.addBlock(Block{ID: condID, Stmts: []string{label}, Span: ast.Span(loopNode)})
	b.addEdge(st.pred, condID, st.kind)

	afterID := b.allocID()
	b.addBlock(Block{ID: afterID, Stmts: []string{"after_loop"}, Span: ""})

	b.loops = append(b.loops, loopFrame{condID: condID, afterID: afterID})
	bodyExits := b.processBlock(body, state{pred: condID, kind: "true"})
	b.loops = b.loops[:len(b.loops)-1]

	for _, exit := range bodyExits {
		if exit != afterID {
			b.addEdge(exit, condID, "back")
		}
	}
	b.addEdge(condID, afterID, "false")

	return []int{afterID}
}

func (b *builder) processMatch(matchNode *sitter.Node, st state) []int {
	subject, arms := matchParts(matchNode)
	if subject == nil || len(arms) == 0 {
		return []int{st.pred}
	}

	dispatchID := b.allocID()
	b.addBlock(Block{
		ID:    dispatchID,
		Stmts: []string{fmt.Sprintf("match %s", ast.FlatText(subject, b.content))},
		Span:  ast.Span(matchNode),
	})
	b.addEdge(st.pred, dispatchID, st.kind)

	joinID := b.allocID()
	b.addBlock(Block{ID: joinID, Stmts: []string{"match_join"}, Span: ""})

	var exits []int
	for _, arm := range arms {
		pattern, patternNode, body := armParts(arm, b.content)
		armID := b.allocID()
		b.addBlock(Block{ID: armID, Stmts: []string{"arm: " + pattern}, Span: ast.Span(arm)})
		b.addEdge(dispatchID, armID, pattern)
		entry := state{pred: armID, kind: "next"}
		if body != nil {
			exits = append(exits, b.processBlock(body, entry)...)
			continue
		}
		// Go and Python arms hold their statements directly.
		var stmts []*sitter.Node
		for _, child := range ast.NamedChildren(arm) {
			if patternNode != nil && child.StartByte() == patternNode.StartByte() &&
				child.EndByte() == patternNode.EndByte() {
				continue
			}
			stmts = append(stmts, child)
		}
		exits = append(exits, b.processStatements(stmts, entry)...)
	}

	for _, exit := range exits {
		if exit != joinID {
			b.addEdge(exit, joinID, "next")
		}
	}
	return []int{joinID}
}

func (b *builder) processJump(stmt *sitter.Node, st state, isBreak bool) state {
	label := "continue"
	if isBreak {
		label = "break"
	}
	id := b.allocID()
	b.addBlock(Block{ID: id, Stmts: []string{ast.FlatText(stmt, b.content)}, Span: ast.Span(stmt)})
	b.addEdge(st.pred, id, st.kind)

	if len(b.loops) > 0 {
		frame := b.loops[len(b.loops)-1]
		if isBreak {
			b.addEdge(id, frame.afterID, label)
		} else {
			b.addEdge(id, frame.condID, label)
		}
	}

	st.terminated = true
	return st
}

// closeAndExit emits a single-statement block wired to the EXIT sentinel,
// for returns and early-exit constructs.
func (b *builder) closeAndExit(stmt *sitter.Node, st state) state {
	b.closeOpen()
	id := b.allocID()
	b.addBlock(Block{ID: id, Stmts: []string{ast.FlatText(stmt, b.content)}, Span: ast.Span(stmt)})
	b.addEdge(st.pred, id, st.kind)
	b.addEdge(id, b.graph.Exit, "exit")
	st.terminated = true
	return st
}
