package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/researchmesh/logging"
)

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// Logger is passed to chains built through Register.
	Logger logging.Logger
}

// Registry maps capability names ("search", "filings", ...) to their
// fallback chains. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	chains map[string]*Chain
	logger logging.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{chains: map[string]*Chain{}, logger: opts.Logger}
}

// Register builds a chain from providers and adds it under the capability
// name. An existing chain for the capability is replaced.
func (r *Registry) Register(capability string, providers []Provider, optFns ...func(o *ChainOptions)) *Chain {
	fns := append([]func(o *ChainOptions){func(o *ChainOptions) { o.Logger = r.logger }}, optFns...)
	chain := NewChain(capability, providers, fns...)
	r.RegisterChain(chain)
	return chain
}

// RegisterChain adds a pre-built chain under its capability. An existing
// chain for the capability is replaced.
func (r *Registry) RegisterChain(chain *Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[chain.Capability()] = chain
}

// Chain returns the chain registered for a capability.
func (r *Registry) Chain(capability string) (*Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain, ok := r.chains[capability]
	return chain, ok
}

// Capabilities lists the registered capability names, sorted.
func (r *Registry) Capabilities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke routes the call to the capability's chain.
func (r *Registry) Invoke(ctx context.Context, capability string, args Args) (any, error) {
	chain, ok := r.Chain(capability)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, capability)
	}
	return chain.Invoke(ctx, args)
}
