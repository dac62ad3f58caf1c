package sink

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/researchmesh/orchestrator"
)

// ErrNotFound is returned when no outcome for the given run id has been
// delivered to the store.
var ErrNotFound = fmt.Errorf("outcome not found")

// Memory is a trivial in-process sink useful for tests, examples and
// single-process prototypes. It keeps every delivered outcome in a map guarded
// by an RWMutex and remembers delivery order. The top-level state map is
// copied on delivery and retrieval to avoid accidental external mutation.
//
// This implementation is intentionally minimal; it does not enforce retention
// limits or eviction. For production, prefer a durable target (database,
// object store, queue) that survives process restarts.
type Memory struct {
	mu       sync.RWMutex
	outcomes map[string]orchestrator.Outcome // runID -> outcome
	order    []string
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{outcomes: make(map[string]orchestrator.Outcome)}
}

var _ orchestrator.Sink = (*Memory)(nil)

// Deliver stores (or overwrites) the outcome under its run id.
func (m *Memory) Deliver(_ context.Context, outcome orchestrator.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.outcomes[outcome.RunID]; !exists {
		m.order = append(m.order, outcome.RunID)
	}
	outcome.State = copyState(outcome.State)
	m.outcomes[outcome.RunID] = outcome
	return nil
}

// Get returns the stored outcome for the run id or ErrNotFound.
func (m *Memory) Get(runID string) (orchestrator.Outcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	outcome, ok := m.outcomes[runID]
	if !ok {
		return orchestrator.Outcome{}, ErrNotFound
	}
	outcome.State = copyState(outcome.State)
	return outcome, nil
}

// Outcomes returns all stored outcomes in delivery order. The slice is a
// snapshot and safe for caller mutation.
func (m *Memory) Outcomes() []orchestrator.Outcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]orchestrator.Outcome, 0, len(m.order))
	for _, runID := range m.order {
		outcome := m.outcomes[runID]
		outcome.State = copyState(outcome.State)
		out = append(out, outcome)
	}
	return out
}

// Len returns the number of stored outcomes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func copyState(state map[string]any) map[string]any {
	if state == nil {
		return nil
	}
	cp := make(map[string]any, len(state))
	for k, v := range state {
		cp[k] = v
	}
	return cp
}
