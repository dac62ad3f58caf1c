// Package state implements the shared research state for a run: a field map
// merged through pure reducers plus the reserved run.* accumulators. All
// mutation goes through a single mutex, so concurrent agents of one tier can
// merge results without ordering effects as long as their reducers are
// commutative.
package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// Reserved accumulator fields maintained by the engine. Agents may read them
// but never write them; the orchestrator rejects descriptors that declare
// writes under the run. prefix.
const (
	// KeyCost accumulates external spend across all agents (Sum).
	KeyCost = "run.cost"
	// KeyCalls accumulates external API call counts (Count).
	KeyCalls = "run.calls"
	// KeyIteration counts rounds started (Count).
	KeyIteration = "run.iteration"
	// KeyFailures records per-agent failures as a keyed map.
	KeyFailures = "run.failures"
	// KeyNotApplicable collects fields reported nonexistent for the subject
	// (Union).
	KeyNotApplicable = "run.not_applicable"
)

// ReservedPrefix marks fields owned by the engine.
const ReservedPrefix = "run."

// IsReserved reports whether the field belongs to the engine.
func IsReserved(field string) bool {
	return strings.HasPrefix(field, ReservedPrefix)
}

// State is the shared research state for one run. It is safe for concurrent
// use; each Apply commits atomically, so a reducer error leaves the state
// untouched.
type State struct {
	mu       sync.RWMutex
	fields   map[string]any
	reducers *Reducers
}

// New creates an empty state backed by the given reducer registry. A nil
// registry is replaced by NewReducers().
func New(reducers *Reducers) *State {
	if reducers == nil {
		reducers = NewReducers()
	}
	return &State{fields: map[string]any{}, reducers: reducers}
}

// Apply merges one agent result into the state: Found fields go through
// their registered reducer (or overwrite, for single-writer fields),
// NotApplicable fields are unioned into run.not_applicable, Failed fields are
// recorded in run.failures, and the result's usage is folded into run.cost
// and run.calls. The whole result commits under one lock acquisition or not
// at all.
func (s *State) Apply(agent string, res core.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := map[string]any{}
	round := s.iterationLocked()
	for field, fv := range res.Fields {
		switch fv.Status {
		case core.StatusFound:
			if IsReserved(field) {
				return fmt.Errorf("merge %s from %s: field is reserved", field, agent)
			}
			merged, err := s.mergeStaged(staged, field, fv.Value)
			if err != nil {
				return fmt.Errorf("merge %s from %s: %w", field, agent, err)
			}
			staged[field] = merged
		case core.StatusNotApplicable:
			merged, err := s.mergeStaged(staged, KeyNotApplicable, field)
			if err != nil {
				return fmt.Errorf("record not applicable %s from %s: %w", field, agent, err)
			}
			staged[KeyNotApplicable] = merged
		case core.StatusFailed:
			key := fmt.Sprintf("%s/%s@%d", agent, field, round)
			merged, err := s.mergeStaged(staged, KeyFailures, map[string]any{key: fv.Reason})
			if err != nil {
				return fmt.Errorf("record failure %s from %s: %w", field, agent, err)
			}
			staged[KeyFailures] = merged
		default:
			return fmt.Errorf("merge %s from %s: unknown field status %d", field, agent, int(fv.Status))
		}
	}
	if res.Usage.Cost != 0 {
		merged, err := s.mergeStaged(staged, KeyCost, res.Usage.Cost)
		if err != nil {
			return fmt.Errorf("accumulate cost from %s: %w", agent, err)
		}
		staged[KeyCost] = merged
	}
	if res.Usage.Calls != 0 {
		merged, err := s.mergeStaged(staged, KeyCalls, res.Usage.Calls)
		if err != nil {
			return fmt.Errorf("accumulate calls from %s: %w", agent, err)
		}
		staged[KeyCalls] = merged
	}

	for k, v := range staged {
		s.fields[k] = v
	}
	return nil
}

// mergeStaged merges incoming into the staged (or committed) value of field.
// Caller holds the write lock.
func (s *State) mergeStaged(staged map[string]any, field string, incoming any) (any, error) {
	old, ok := staged[field]
	if !ok {
		old, ok = s.fields[field]
	}
	if red, found := s.reducers.Lookup(field); found {
		if !ok {
			old = nil
		}
		return red(old, incoming)
	}
	// Single-writer field: a later round may legitimately refresh the value.
	return incoming, nil
}

// RecordFailure notes that an invocation contributed nothing and why. The
// entry is keyed by agent and round so repeated failures across rounds stay
// distinguishable.
func (s *State) RecordFailure(agent string, kind core.FailureKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s@%d", agent, s.iterationLocked())
	red, _ := s.reducers.Lookup(KeyFailures)
	merged, err := red(s.fields[KeyFailures], map[string]any{key: string(kind)})
	if err != nil {
		// Duplicate key within one round cannot happen; keep state intact.
		return
	}
	s.fields[KeyFailures] = merged
}

// AdvanceIteration bumps the run.iteration counter and returns its new value.
func (s *State) AdvanceIteration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	red, _ := s.reducers.Lookup(KeyIteration)
	merged, err := red(s.fields[KeyIteration], 1)
	if err != nil {
		return s.iterationLocked()
	}
	s.fields[KeyIteration] = merged
	return merged.(int)
}

func (s *State) iterationLocked() int {
	if n, ok := s.fields[KeyIteration].(int); ok {
		return n
	}
	return 0
}

// Get returns a defensive copy of one field's value.
func (s *State) Get(field string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[field]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Has reports whether the field is set.
func (s *State) Has(field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[field]
	return ok
}

// Keys returns the sorted names of all set fields, run.* accumulators
// included.
func (s *State) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a defensive copy of every field including the run.*
// accumulators.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		snap[k] = copyValue(v)
	}
	return snap
}

// View returns an immutable point-in-time view restricted to the named
// fields. Agents receive views scoped to their declared reads.
func (s *State) View(fields ...string) core.StateView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visible := map[string]any{}
	for _, f := range fields {
		if v, ok := s.fields[f]; ok {
			visible[f] = copyValue(v)
		}
	}
	return &view{fields: visible}
}

// Iteration returns the number of rounds started so far.
func (s *State) Iteration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iterationLocked()
}

// Cost returns the accumulated external spend.
func (s *State) Cost() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.fields[KeyCost].(float64); ok {
		return c
	}
	return 0
}

// Calls returns the accumulated external call count.
func (s *State) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.fields[KeyCalls].(int); ok {
		return c
	}
	return 0
}

// Failures returns a copy of the recorded failures, keyed by "agent@round"
// or "agent/field@round".
func (s *State) Failures() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]string{}
	if m, ok := s.fields[KeyFailures].(map[string]any); ok {
		for k, v := range m {
			if sv, ok := v.(string); ok {
				out[k] = sv
			}
		}
	}
	return out
}

// NotApplicable returns the sorted set of fields reported nonexistent for
// the subject.
func (s *State) NotApplicable() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.fields[KeyNotApplicable].([]string); ok {
		out := make([]string, len(v))
		copy(out, v)
		return out
	}
	return nil
}

// copyValue copies the container shapes reducers and agents commonly store so
// callers cannot mutate shared state through returned values.
func copyValue(v any) any {
	switch tv := v.(type) {
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = copyValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = copyValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(tv))
		for k, e := range tv {
			out[k] = e
		}
		return out
	default:
		return v
	}
}

// view is the immutable StateView implementation handed to agents.
type view struct {
	fields map[string]any
}

func (v *view) Get(field string) (any, bool) {
	val, ok := v.fields[field]
	return val, ok
}

func (v *view) Has(field string) bool {
	_, ok := v.fields[field]
	return ok
}

func (v *view) Fields() []string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
