package orchestrator

import (
	"context"
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// Outcome is the terminal product of a run: the final state snapshot plus the
// quality report that ended it.
type Outcome struct {
	RunID      string         `json:"run_id"`
	Subject    core.Subject   `json:"subject"`
	State      map[string]any `json:"state"`
	Report     core.Report    `json:"report"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Sink receives the outcome of a finished run exactly once. A delivery error
// propagates to the Run caller; the orchestrator never retries delivery.
type Sink interface {
	Deliver(ctx context.Context, outcome Outcome) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, outcome Outcome) error

// Deliver implements Sink.
func (f SinkFunc) Deliver(ctx context.Context, outcome Outcome) error {
	return f(ctx, outcome)
}
