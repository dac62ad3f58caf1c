// Package orchestrator implements the run coordination layer for ResearchMesh.
//
// The Orchestrator manages the complete lifecycle of a research run: it
// validates the agent roster, schedules agents into dependency tiers, fans
// tiers out concurrently, merges results into shared state through pure
// reducers, and iterates until the quality gate is satisfied or the budget
// runs out.
//
// # Core Responsibilities
//
// Validation:
//   - Subject and descriptor soundness before any agent work starts
//   - Reducer coverage for every multi-writer field
//   - Schedulability: no agent may read a field nothing can produce
//
// Scheduling:
//   - Dependency tiers computed from declared reads and writes
//   - Fan-out / fan-in per tier with a configurable concurrency cap
//   - Gap-driven selection of follow-up agents in later rounds
//
// Failure Containment:
//   - Errors, timeouts and panics void a single invocation, never the run
//   - Undeclared writes discard the offending result entirely
//   - Every voided invocation is recorded in the run.failures accumulator
//
// Termination:
//   - Quality gate satisfaction (Terminal report)
//   - Iteration budget exhaustion (Terminal plus Incomplete)
//   - Run deadline expiry after the round in flight completes
//
// # Run Pipeline
//
//	round:  select agents ──> compute tiers ──> dispatch tier 1..n ──> merge
//	                                                                     │
//	        next round with gap-fill agents <── gaps <── quality gate <──┘
//
// # Usage
//
//	orch := orchestrator.New(func(o *orchestrator.Options) {
//	    o.Config.MaxIterations = 3
//	    o.Gate = quality.NewCoverageGate(0.8, quality.Require("company.profile"))
//	    o.Sink = sink.NewMemory()
//	})
//	st, report, err := orch.Run(ctx, core.Subject{Name: "Acme Corp"}, agents)
//
// The orchestrator deliberately owns no provider, cache or model concerns;
// agents bring their own collaborators. This keeps the scheduling core small
// and every external integration swappable.
package orchestrator
