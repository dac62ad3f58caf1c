package agent

import (
	"context"

	"github.com/hupe1980/researchmesh/core"
)

// Func is a generic adapter that exposes a plain Go function as a ResearchMesh
// agent. Useful for one-off agents in examples and tests where a full type
// would be ceremony.
//
// Concurrency:
//
//	A Func has no internal mutable state after construction and is safe for
//	concurrent use by multiple goroutines, provided the wrapped function is.
type Func struct {
	desc core.Descriptor
	fn   func(ctx context.Context, rc core.RunContext) (core.Result, error)
}

var _ core.Agent = (*Func)(nil)

// NewFunc constructs a Func from an explicit descriptor and function.
//
// Example:
//
//	hq := agent.NewFunc(
//	    core.Descriptor{Name: "hq", Kind: core.KindCore, Writes: []string{"company.hq"}},
//	    func(ctx context.Context, rc core.RunContext) (core.Result, error) {
//	        res := core.NewResult()
//	        res.Set("company.hq", core.Found("Berlin"))
//	        return res, nil
//	    },
//	)
func NewFunc(desc core.Descriptor, fn func(ctx context.Context, rc core.RunContext) (core.Result, error)) *Func {
	return &Func{desc: desc, fn: fn}
}

// Descriptor implements core.Agent.
func (a *Func) Descriptor() core.Descriptor { return a.desc }

// Run implements core.Agent.
func (a *Func) Run(ctx context.Context, rc core.RunContext) (core.Result, error) {
	return a.fn(ctx, rc)
}
