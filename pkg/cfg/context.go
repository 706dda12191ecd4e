package cfg

// loopContext identifies the nearest enclosing loop for break/continue
// resolution: break targets afterID, continue targets conditionID.
type loopContext struct {
	conditionID int
	afterID     int
}

// buildContext is the per-function build state: a monotonic id
// allocator, the reserved EXIT sentinel id, and the loop-control stack.
// It is exclusively owned by one builder invocation and discarded when
// the function's graph is finalized.
type buildContext struct {
	nextID int
	exitID int
	loops  []loopContext
	diags  []Diagnostic
}

// newBuildContext allocates the ENTRY id (always 0) and reserves the
// EXIT sentinel id from the same allocator, so the sentinel can never
// collide with a statement node id.
func newBuildContext() (ctx *buildContext, entryID int) {
	ctx = &buildContext{}
	entryID = ctx.allocID()
	ctx.exitID = ctx.allocID()
	return ctx, entryID
}

func (c *buildContext) allocID() int {
	id := c.nextID
	c.nextID++
	return id
}

func (c *buildContext) pushLoop(conditionID, afterID int) {
	c.loops = append(c.loops, loopContext{conditionID: conditionID, afterID: afterID})
}

func (c *buildContext) popLoop() {
	if len(c.loops) > 0 {
		c.loops = c.loops[:len(c.loops)-1]
	}
}

// currentLoop returns the innermost loop context, if any.
func (c *buildContext) currentLoop() (loopContext, bool) {
	if len(c.loops) == 0 {
		return loopContext{}, false
	}
	return c.loops[len(c.loops)-1], true
}

func (c *buildContext) diagnose(span, message string) {
	c.diags = append(c.diags, Diagnostic{Span: span, Message: message})
}
