package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/quality"
	"github.com/hupe1980/researchmesh/state"
)

// Orchestrator coordinates multi-agent research runs within the ResearchMesh
// framework.
//
// A run proceeds in rounds. Each round partitions the participating agents
// into dependency tiers derived from their declared reads and writes, fans
// each tier out concurrently, merges agent results into shared state through
// pure reducers, and finally asks the quality gate whether coverage suffices.
// Follow-up rounds dispatch only gap-fill agents whose writes overlap the
// gate's reported gaps.
//
// Core Responsibilities:
//   - Start-time validation: subjects, descriptors, reducer coverage and
//     schedulability are checked before any agent work begins
//   - Tier scheduling: agents run as early as their reads allow, concurrently
//     where independent
//   - Failure isolation: an agent error, timeout or panic voids only that
//     invocation; siblings and later tiers proceed
//   - Bounded iteration: runs stop at gate satisfaction, the iteration
//     budget, or the run deadline, whichever comes first
//   - Outcome delivery: the final state snapshot and report go to the
//     configured sink exactly once
//
// Concurrency Model:
//   - One errgroup per tier; MaxConcurrency caps parallel invocations
//   - All state mutation is serialized through the state mutex; reducers are
//     commutative, so merge order within a tier cannot change the outcome
//   - The Orchestrator itself is immutable after construction and safe for
//     concurrent Run calls, each run owning its own state
//
// Example:
//
//	orch := orchestrator.New(func(o *orchestrator.Options) {
//	    o.Config.MaxIterations = 3
//	    o.Gate = quality.NewCoverageGate(0.8,
//	        quality.Require("company.profile"),
//	        quality.Require("company.news"),
//	    )
//	})
//	st, report, err := orch.Run(ctx, subject, agents)
type Orchestrator struct {
	config   Config
	gate     quality.Gate
	sink     Sink
	reducers *state.Reducers
	logger   logging.Logger
}

// New creates a new Orchestrator with sensible defaults and optional
// configuration.
//
// Default behavior:
//   - Config: DefaultConfig (3 iterations, 60s agent timeout, no deadline)
//   - Gate: a coverage gate with no required fields, satisfied after the
//     first round
//   - Reducers: a fresh registry carrying only the reserved run.* reducers
//   - Logger: no-op
//
// The returned Orchestrator is immutable and safe for concurrent use.
// Configuration problems surface as ConfigError from Run, not from New, so
// construction never fails.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Config:   DefaultConfig,
		Gate:     quality.NewCoverageGate(1.0),
		Reducers: state.NewReducers(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Gate == nil {
		opts.Gate = quality.NewCoverageGate(1.0)
	}
	if opts.Reducers == nil {
		opts.Reducers = state.NewReducers()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Orchestrator{
		config:   opts.Config,
		gate:     opts.Gate,
		sink:     opts.Sink,
		reducers: opts.Reducers,
		logger:   opts.Logger,
	}
}

// Run executes one research run for the subject over the given agents and
// returns the final shared state and the report that ended the run.
//
// Round structure:
//  1. Select participants: every KindCore agent in round one; in later
//     rounds only KindGapFill agents whose writes overlap the current gaps
//  2. Partition the selection into dependency tiers and dispatch each tier
//     concurrently, merging results into shared state as they arrive
//  3. Evaluate the quality gate; stop when it reports Terminal, when the
//     iteration budget is spent, or when the run deadline has passed
//
// Agent failures (errors, timeouts, panics, undeclared writes) are recorded
// in the run.failures accumulator and never abort the run. A non-nil error
// return means the run itself could not proceed: invalid configuration,
// context cancellation, or a sink delivery failure.
func (o *Orchestrator) Run(ctx context.Context, subject core.Subject, agents []core.Agent) (*state.State, core.Report, error) {
	if err := o.validate(subject, agents); err != nil {
		return nil, core.Report{}, err
	}

	runID := core.NewID()
	s := state.New(o.reducers)
	startedAt := time.Now()
	var deadline time.Time
	if o.config.RunDeadline > 0 {
		deadline = startedAt.Add(o.config.RunDeadline)
	}

	o.logger.Info("run started",
		"run_id", runID,
		"subject", subject.String(),
		"agents", len(agents),
		"max_iterations", o.config.MaxIterations,
	)

	var report core.Report
	var gaps []string
	for round := 1; ; round++ {
		selected := o.selectAgents(agents, round, gaps)
		if round > 1 && len(selected) == 0 {
			// No gap-fill agent writes any of the remaining gaps, so further
			// rounds cannot make progress.
			report.Terminal = true
			report.Incomplete = true
			o.logger.Info("no agent addresses remaining gaps", "run_id", runID, "gaps", strings.Join(gaps, ","))
			break
		}

		iteration := s.AdvanceIteration()
		rc := core.RunContext{
			RunID:     runID,
			Subject:   subject,
			Iteration: iteration,
			Gaps:      gaps,
			Logger:    o.logger,
		}

		available := map[string]bool{}
		for _, k := range s.Keys() {
			available[k] = true
		}
		tiers, stuck := computeTiers(selected, available)
		for _, ag := range stuck {
			// A producer the agent depends on failed in an earlier round.
			name := ag.Descriptor().Name
			s.RecordFailure(name, core.FailureUnsatisfiedReads)
			o.logger.Warn("agent skipped, reads unsatisfied", "run_id", runID, "agent", name, "round", iteration)
		}

		for ti, tier := range tiers {
			o.runTier(ctx, s, tier, rc)
			o.logger.Debug("tier complete", "run_id", runID, "round", iteration, "tier", ti, "agents", len(tier))
		}

		report = o.gate.Evaluate(s)
		report.Round = iteration
		o.logger.Info("round evaluated",
			"run_id", runID,
			"round", iteration,
			"score", report.Score,
			"gaps", len(report.Gaps),
			"terminal", report.Terminal,
		)

		if report.Terminal {
			break
		}
		if iteration >= o.config.MaxIterations {
			// Iteration budget exhausted before the gate was satisfied.
			report.Terminal = true
			report.Incomplete = true
			break
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			report.Terminal = true
			report.Incomplete = true
			o.logger.Warn("run deadline passed", "run_id", runID, "round", iteration)
			break
		}
		if err := ctx.Err(); err != nil {
			return s, report, err
		}
		gaps = report.Gaps
	}

	if o.sink != nil {
		outcome := Outcome{
			RunID:      runID,
			Subject:    subject,
			State:      s.Snapshot(),
			Report:     report,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		}
		if err := o.sink.Deliver(ctx, outcome); err != nil {
			return s, report, fmt.Errorf("sink delivery: %w", err)
		}
	}

	o.logger.Info("run finished",
		"run_id", runID,
		"rounds", report.Round,
		"score", report.Score,
		"incomplete", report.Incomplete,
		"cost", s.Cost(),
		"calls", s.Calls(),
		"elapsed", time.Since(startedAt),
	)
	return s, report, nil
}

// validate fails fast on configurations that could only degrade at runtime.
func (o *Orchestrator) validate(subject core.Subject, agents []core.Agent) error {
	if o.config.MaxIterations < 1 {
		return core.NewConfigError("max iterations must be at least 1, got %d", o.config.MaxIterations)
	}
	if err := subject.Validate(); err != nil {
		return err
	}
	if len(agents) == 0 {
		return core.NewConfigError("no agents supplied")
	}

	descs := make([]core.Descriptor, 0, len(agents))
	seen := map[string]bool{}
	for _, ag := range agents {
		d := ag.Descriptor()
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return core.NewConfigError("duplicate agent name %s", d.Name)
		}
		seen[d.Name] = true
		for _, w := range d.Writes {
			if state.IsReserved(w) {
				return core.NewConfigError("agent %s declares a write to reserved field %s", d.Name, w)
			}
		}
		descs = append(descs, d)
	}

	if err := o.reducers.Validate(descs); err != nil {
		return err
	}

	// Every read must be producible by some agent. Agents left over after
	// layering the full set can never run in any round.
	if _, stuck := computeTiers(agents, nil); len(stuck) > 0 {
		names := make([]string, len(stuck))
		for i, ag := range stuck {
			names[i] = ag.Descriptor().Name
		}
		sort.Strings(names)
		return core.NewConfigError("agents can never run (unsatisfiable reads or dependency cycle): %s", strings.Join(names, ", "))
	}
	return nil
}

// selectAgents returns the participants for a round: all core agents in
// round one, and in later rounds the gap-fill agents whose declared writes
// overlap the open gaps.
func (o *Orchestrator) selectAgents(agents []core.Agent, round int, gaps []string) []core.Agent {
	if round == 1 {
		var selected []core.Agent
		for _, ag := range agents {
			if ag.Descriptor().Kind == core.KindCore {
				selected = append(selected, ag)
			}
		}
		return selected
	}

	gapSet := make(map[string]bool, len(gaps))
	for _, g := range gaps {
		gapSet[g] = true
	}
	var selected []core.Agent
	for _, ag := range agents {
		d := ag.Descriptor()
		if d.Kind != core.KindGapFill {
			continue
		}
		for _, w := range d.Writes {
			if gapSet[w] {
				selected = append(selected, ag)
				break
			}
		}
	}
	return selected
}

// runTier dispatches one tier concurrently and blocks until every member has
// finished. Tier layering is optimistic (it assumes producers succeed), so
// reads are re-checked against actual state here: an agent whose producer
// failed is skipped and recorded, not run with missing inputs. State views
// are built before dispatch so tier members observe identical state
// regardless of merge timing.
func (o *Orchestrator) runTier(ctx context.Context, s *state.State, tier []core.Agent, rc core.RunContext) {
	g := new(errgroup.Group)
	if o.config.MaxConcurrency > 0 {
		g.SetLimit(o.config.MaxConcurrency)
	}
	for _, ag := range tier {
		desc := ag.Descriptor()
		if missing := missingReads(s, desc); len(missing) > 0 {
			s.RecordFailure(desc.Name, core.FailureUnsatisfiedReads)
			o.logger.Warn("agent skipped, producer did not deliver",
				"run_id", rc.RunID,
				"agent", desc.Name,
				"round", rc.Iteration,
				"missing", strings.Join(missing, ","),
			)
			continue
		}
		agentRC := rc
		agentRC.State = s.View(desc.Reads...)
		g.Go(func() error {
			o.runAgent(ctx, s, ag, agentRC)
			// Failures are absorbed into state so sibling agents keep running.
			return nil
		})
	}
	_ = g.Wait()
}

func missingReads(s *state.State, d core.Descriptor) []string {
	var missing []string
	for _, f := range d.Reads {
		if state.IsReserved(f) {
			continue
		}
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	sort.Strings(missing)
	return missing
}

// runAgent executes a single invocation: timeout enforcement, panic
// containment, undeclared-write rejection and result merging.
func (o *Orchestrator) runAgent(ctx context.Context, s *state.State, ag core.Agent, rc core.RunContext) {
	desc := ag.Descriptor()

	actx := ctx
	if o.config.AgentTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, o.config.AgentTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := invokeAgent(actx, ag, rc)
	elapsed := time.Since(start)

	if err != nil {
		kind := core.FailureError
		var pe *panicError
		switch {
		case errors.As(err, &pe):
			kind = core.FailurePanic
		case errors.Is(err, context.DeadlineExceeded):
			kind = core.FailureTimeout
		}
		s.RecordFailure(desc.Name, kind)
		o.logger.Error("agent failed",
			"run_id", rc.RunID,
			"agent", desc.Name,
			"round", rc.Iteration,
			"kind", string(kind),
			"elapsed", elapsed,
			"error", err,
		)
		return
	}

	if bad := undeclaredWrites(desc, res); len(bad) > 0 {
		// The whole result is discarded; partial trust is worse than none.
		s.RecordFailure(desc.Name, core.FailureUndeclaredWrite)
		o.logger.Error("agent wrote undeclared fields",
			"run_id", rc.RunID,
			"agent", desc.Name,
			"round", rc.Iteration,
			"fields", strings.Join(bad, ","),
		)
		return
	}

	if err := s.Apply(desc.Name, res); err != nil {
		s.RecordFailure(desc.Name, core.FailureError)
		o.logger.Error("agent result rejected", "run_id", rc.RunID, "agent", desc.Name, "round", rc.Iteration, "error", err)
		return
	}

	o.logger.Debug("agent complete",
		"run_id", rc.RunID,
		"agent", desc.Name,
		"round", rc.Iteration,
		"fields", len(res.Fields),
		"elapsed", elapsed,
	)
}

// invokeAgent shields the scheduler from agent panics so one misbehaving
// agent cannot take down the run.
func invokeAgent(ctx context.Context, ag core.Agent, rc core.RunContext) (res core.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{agent: ag.Descriptor().Name, value: r}
		}
	}()
	return ag.Run(ctx, rc)
}

type panicError struct {
	agent string
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("agent %s panicked: %v", e.agent, e.value)
}

func undeclaredWrites(d core.Descriptor, res core.Result) []string {
	var bad []string
	for field := range res.Fields {
		if !d.WritesField(field) {
			bad = append(bad, field)
		}
	}
	sort.Strings(bad)
	return bad
}
