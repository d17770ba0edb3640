package core

// RunContext is the request-scoped record threaded through one orchestrator
// run. It is owned by a single run and must not be shared across concurrent
// requests; the invocation log is append-only.
type RunContext struct {
	RunID string
	sags  []string
}

// NewRunContext creates a context for one run.
func NewRunContext(runID string) *RunContext {
	return &RunContext{RunID: runID}
}

// Record appends a worker name to the invocation log.
func (c *RunContext) Record(name string) {
	c.sags = append(c.sags, name)
}

// Invoked returns a snapshot of the invocation log, in call order.
// Always non-nil so the wire field serializes as [] rather than null.
func (c *RunContext) Invoked() []string {
	out := make([]string, len(c.sags))
	copy(out, c.sags)
	return out
}
