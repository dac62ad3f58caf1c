package testutil

import (
	"fmt"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/state"
)

// StateBuilder helps construct pre-populated shared state with fluent
// chaining for tests. Example:
//
//	s := NewStateBuilder().
//	    Found("company.profile", "maker of anvils").
//	    NotApplicable("company.ticker").
//	    Build()
//
// All fields are applied as one synthetic result authored by "test". Build
// panics on invalid configuration; in a test helper such a failure is a
// programming error, not a condition to handle.
type StateBuilder struct {
	reducers   map[string]state.Reducer
	fields     map[string]core.FieldValue
	iterations int
}

// NewStateBuilder creates a builder producing state that has completed one
// iteration.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{
		reducers:   map[string]state.Reducer{},
		fields:     map[string]core.FieldValue{},
		iterations: 1,
	}
}

// Reducer registers a field reducer on the resulting state (chainable).
func (b *StateBuilder) Reducer(field string, fn state.Reducer) *StateBuilder {
	b.reducers[field] = fn
	return b
}

// Found sets a found value for the field (chainable).
func (b *StateBuilder) Found(field string, v any) *StateBuilder {
	b.fields[field] = core.Found(v)
	return b
}

// NotApplicable marks the field as not applicable to the subject (chainable).
func (b *StateBuilder) NotApplicable(field string) *StateBuilder {
	b.fields[field] = core.NotApplicable()
	return b
}

// Failed marks the field as failed with the given reason (chainable).
func (b *StateBuilder) Failed(field, reason string) *StateBuilder {
	b.fields[field] = core.Failed(reason)
	return b
}

// Iterations sets how many iterations the state has completed (chainable).
func (b *StateBuilder) Iterations(n int) *StateBuilder {
	b.iterations = n
	return b
}

// Build constructs the *state.State.
func (b *StateBuilder) Build() *state.State {
	reducers := state.NewReducers()
	for field, fn := range b.reducers {
		if err := reducers.Register(field, fn); err != nil {
			panic(fmt.Sprintf("testutil: register reducer for %s: %v", field, err))
		}
	}

	s := state.New(reducers)
	for i := 0; i < b.iterations; i++ {
		s.AdvanceIteration()
	}

	if err := s.Apply("test", core.Result{Fields: b.fields}); err != nil {
		panic(fmt.Sprintf("testutil: apply seed result: %v", err))
	}
	return s
}
