package core

import "time"

// Usage aggregates the external resource consumption of one agent invocation.
// The orchestrator folds it into the run.cost and run.calls accumulators.
type Usage struct {
	// Elapsed is the wall-clock duration of the invocation.
	Elapsed time.Duration `json:"elapsed"`
	// Cost is the external spend in the caller's currency unit.
	Cost float64 `json:"cost"`
	// Calls counts external API calls the invocation performed.
	Calls int `json:"calls"`
}

// Add returns the sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		Elapsed: u.Elapsed + other.Elapsed,
		Cost:    u.Cost + other.Cost,
		Calls:   u.Calls + other.Calls,
	}
}

// Result is the complete outcome of one agent invocation: per-field values
// keyed by field name, an optional free-form insight, and usage accounting.
// Only fields named in the agent's Writes declaration may appear in Fields.
type Result struct {
	Fields  map[string]FieldValue `json:"fields"`
	Insight string                `json:"insight,omitempty"`
	Usage   Usage                 `json:"usage"`
}

// NewResult returns an empty result ready for field assignment.
func NewResult() Result {
	return Result{Fields: map[string]FieldValue{}}
}

// Set assigns the outcome for one field, allocating the field map if needed.
func (r *Result) Set(field string, v FieldValue) {
	if r.Fields == nil {
		r.Fields = map[string]FieldValue{}
	}
	r.Fields[field] = v
}
