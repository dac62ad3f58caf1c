// Package quality evaluates shared research state into the report that drives
// run termination. The orchestrator calls the configured Gate after every
// round; the gate decides whether coverage suffices and which fields remain
// as gaps for follow-up rounds.
package quality

import (
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/state"
)

// Gate scores the current shared state and decides whether the run is
// complete. Implementations must be pure: no state mutation, no I/O.
type Gate interface {
	Evaluate(s *state.State) core.Report
}

// GateFunc adapts a plain function to the Gate interface.
type GateFunc func(s *state.State) core.Report

// Evaluate implements Gate.
func (f GateFunc) Evaluate(s *state.State) core.Report { return f(s) }

// RequiredField names a field the gate expects and its weight in the
// coverage score.
type RequiredField struct {
	Name   string
	Weight float64
}

// Require declares a required field with weight 1.
func Require(name string) RequiredField {
	return RequiredField{Name: name, Weight: 1}
}

// RequireWeighted declares a required field with an explicit weight.
// Non-positive weights are treated as 1.
func RequireWeighted(name string, weight float64) RequiredField {
	return RequiredField{Name: name, Weight: weight}
}
