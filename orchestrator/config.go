package orchestrator

import (
	"time"

	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/quality"
	"github.com/hupe1980/researchmesh/state"
)

// Config defines tuning parameters for runs executed by an Orchestrator.
type Config struct {
	// MaxIterations bounds the number of research rounds per run, the first
	// round included. When the gate is still unsatisfied after the last
	// round, the run finishes with Terminal and Incomplete set. Must be at
	// least 1.
	MaxIterations int
	// AgentTimeout bounds each agent invocation through its context. An
	// invocation exceeding it is recorded as a timeout failure; siblings are
	// unaffected. Zero disables the per-agent timeout.
	AgentTimeout time.Duration
	// RunDeadline bounds the whole run. The round in flight when the
	// deadline passes still completes and is evaluated; no further round
	// starts. Zero disables the deadline.
	RunDeadline time.Duration
	// MaxConcurrency caps how many agents of one tier run at once. Zero
	// means no cap beyond the tier size.
	MaxConcurrency int
}

// DefaultConfig provides sensible defaults for research runs.
var DefaultConfig = Config{
	MaxIterations:  3,
	AgentTimeout:   60 * time.Second,
	RunDeadline:    0,
	MaxConcurrency: 0,
}

// Options configures an Orchestrator instance.
type Options struct {
	// Config holds the run tuning parameters.
	Config Config
	// Gate decides when a run is complete. Defaults to a coverage gate with
	// no required fields, which is satisfied after the first round.
	Gate quality.Gate
	// Sink receives the terminal outcome of every run. Optional; delivery
	// errors fail the run and are never retried.
	Sink Sink
	// Reducers is the field reducer registry used for state merging.
	// Register a reducer for every field more than one agent writes.
	Reducers *state.Reducers
	// Logger receives run progress. Defaults to a no-op logger.
	Logger logging.Logger
}
