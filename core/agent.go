package core

import (
	"context"
	"strings"
)

// Kind classifies when the orchestrator schedules an agent.
type Kind int

const (
	// KindCore agents run in the first round of every run.
	KindCore Kind = iota
	// KindGapFill agents run in follow-up rounds, selected when their
	// declared writes overlap the quality gate's reported gaps.
	KindGapFill
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCore:
		return "core"
	case KindGapFill:
		return "gap_fill"
	default:
		return "unknown"
	}
}

// Descriptor declares an agent's identity and data dependencies. Reads and
// Writes drive scheduling: an agent is dispatched only once every field it
// reads is available, and only fields it declares under Writes may appear in
// its results.
type Descriptor struct {
	// Name uniquely identifies the agent within a run.
	Name string
	// Kind determines which rounds the agent participates in.
	Kind Kind
	// Reads lists the state fields the agent needs before it can run.
	// Reserved run.* accumulators are always considered available.
	Reads []string
	// Writes lists the state fields the agent may produce.
	Writes []string
}

// Validate checks structural soundness of the descriptor.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewConfigError("agent descriptor requires a name")
	}
	if d.Kind != KindCore && d.Kind != KindGapFill {
		return NewConfigError("agent %s has unknown kind %d", d.Name, int(d.Kind))
	}
	for _, f := range d.Reads {
		if strings.TrimSpace(f) == "" {
			return NewConfigError("agent %s declares an empty read field", d.Name)
		}
	}
	for _, f := range d.Writes {
		if strings.TrimSpace(f) == "" {
			return NewConfigError("agent %s declares an empty write field", d.Name)
		}
	}
	return nil
}

// WritesField reports whether the descriptor declares the given write field.
func (d Descriptor) WritesField(field string) bool {
	for _, w := range d.Writes {
		if w == field {
			return true
		}
	}
	return false
}

// Agent is the unit of research work the orchestrator schedules. Run must be
// safe to call from the orchestrator's worker goroutines and must honor
// cancellation of the supplied context; the orchestrator enforces a per-agent
// timeout through it. A returned error (or a panic, which the orchestrator
// contains) voids the invocation without affecting sibling agents.
type Agent interface {
	// Descriptor returns the agent's scheduling declaration. It must be
	// stable across calls.
	Descriptor() Descriptor
	// Run performs the research work for one round and returns the produced
	// field values plus usage accounting.
	Run(ctx context.Context, rc RunContext) (Result, error)
}
