package core

import (
	"github.com/hupe1980/researchmesh/logging"
)

// StateView exposes a read-only excerpt of shared state restricted to the
// fields an agent declared under Reads. Values are defensive copies; mutating
// them never affects the shared state.
type StateView interface {
	// Get returns the value of a visible field and whether it is set.
	Get(field string) (any, bool)
	// Has reports whether the field is visible and set.
	Has(field string) bool
	// Fields lists the visible fields that are currently set, sorted.
	Fields() []string
}

// RunContext carries the read-only inputs for a single agent invocation. The
// orchestrator builds a fresh RunContext per invocation; agents must not
// retain it beyond the call.
type RunContext struct {
	// RunID identifies the run the invocation belongs to.
	RunID string
	// Subject is the company under investigation.
	Subject Subject
	// Iteration is the 1-based round number the invocation runs in.
	Iteration int
	// Gaps lists the fields the quality gate reported missing after the
	// previous round. Empty in the first round.
	Gaps []string
	// State is the agent's view of shared state, restricted to its declared
	// reads.
	State StateView
	// Logger is the run-scoped logger.
	Logger logging.Logger
}
