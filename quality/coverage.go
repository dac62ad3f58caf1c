package quality

import (
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/state"
)

// CoverageGate scores state by the weighted fraction of required fields that
// are present. Fields recorded as not applicable for the subject are excluded
// from both the score denominator and the gap list, so a run is never
// re-targeted at data that cannot exist.
type CoverageGate struct {
	threshold float64
	required  []RequiredField
}

// NewCoverageGate builds a gate that is satisfied once the weighted coverage
// of the required fields reaches threshold (clamped to [0, 1]). With no
// required fields the gate is satisfied immediately.
func NewCoverageGate(threshold float64, required ...RequiredField) *CoverageGate {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	fields := make([]RequiredField, len(required))
	copy(fields, required)
	return &CoverageGate{threshold: threshold, required: fields}
}

// Evaluate implements Gate.
func (g *CoverageGate) Evaluate(s *state.State) core.Report {
	na := map[string]bool{}
	for _, f := range s.NotApplicable() {
		na[f] = true
	}

	var total, covered float64
	var gaps []string
	for _, rf := range g.required {
		if na[rf.Name] {
			continue
		}
		w := rf.Weight
		if w <= 0 {
			w = 1
		}
		total += w
		if s.Has(rf.Name) {
			covered += w
		} else {
			gaps = append(gaps, rf.Name)
		}
	}

	score := 1.0
	if total > 0 {
		score = covered / total
	}
	// A sub-threshold score with no addressable gaps cannot improve, so the
	// run stops either way.
	terminal := score >= g.threshold || len(gaps) == 0
	return core.Report{
		Score:    score,
		Gaps:     gaps,
		Terminal: terminal,
		Round:    s.Iteration(),
	}
}
