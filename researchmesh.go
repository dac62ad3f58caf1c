// Package researchmesh provides a high-level façade over the orchestrator and
// its service abstractions (providers, cache, quality gates, sinks & logging)
// enabling rapid construction of multi-agent company research pipelines. Most
// applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding the default gate, sink or reducers)
//  2. Registering one or more agents (profile, news, financials, gap-fill, custom)
//  3. Running research per subject (Research)
//
// The façade delegates orchestration to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// sink and a structured logger.
package researchmesh

import (
	"context"
	"sync"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/orchestrator"
	"github.com/hupe1980/researchmesh/quality"
	"github.com/hupe1980/researchmesh/state"
)

// Options configures the Mesh instance.
type Options struct {
	// Config tunes orchestration: iteration budget, per-agent timeout, run
	// deadline and tier concurrency.
	Config orchestrator.Config

	// Gate decides when a run is complete. Defaults to a coverage gate with
	// no required fields, satisfied after the first round.
	Gate quality.Gate

	// Sink receives the outcome of every finished run. Nil keeps outcomes
	// only in the state returned by Research.
	Sink orchestrator.Sink

	// Reducers merge concurrent writes to shared fields. Defaults to a
	// registry carrying only the reserved run.* reducers.
	Reducers *state.Reducers

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the orchestrator and the
// registered agent roster.
type Mesh struct {
	opts Options
	orch *orchestrator.Orchestrator

	mu     sync.Mutex
	agents []core.Agent
}

// New creates a new Mesh instance with optional overrides. Any unset service
// is initialized with a safe default.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Config:   orchestrator.DefaultConfig,
		Gate:     quality.NewCoverageGate(1.0),
		Reducers: state.NewReducers(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Reducers == nil {
		opts.Reducers = state.NewReducers()
	}

	orch := orchestrator.New(func(o *orchestrator.Options) {
		o.Config = opts.Config
		o.Gate = opts.Gate
		o.Sink = opts.Sink
		o.Reducers = opts.Reducers
		o.Logger = opts.Logger
	})

	return &Mesh{opts: opts, orch: orch}
}

// RegisterAgent adds an agent to the roster used by subsequent Research
// calls. Registration order is preserved; execution order is decided by the
// orchestrator's dependency tiers.
func (m *Mesh) RegisterAgent(a core.Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents = append(m.agents, a)
}

// RegisterReducer binds a reducer to a shared field so multiple agents may
// write it concurrently.
func (m *Mesh) RegisterReducer(field string, fn state.Reducer) error {
	return m.opts.Reducers.Register(field, fn)
}

// Agents returns a snapshot of the registered roster in registration order.
func (m *Mesh) Agents() []core.Agent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Agent(nil), m.agents...)
}

// Research runs one research pass for the subject over the registered roster
// and returns the final shared state and the report that ended the run.
// Concurrent Research calls are independent; each run owns its own state.
func (m *Mesh) Research(ctx context.Context, subject core.Subject) (*state.State, core.Report, error) {
	return m.orch.Run(ctx, subject, m.Agents())
}
