package provider

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/logging"
	"github.com/hupe1980/researchmesh/retry"
)

// ChainOptions configure fallback behavior for one capability chain.
type ChainOptions struct {
	// Cooldown is how long a failed provider is deprioritized. It is moved
	// to the back of the order, never removed. Zero disables cooldown.
	Cooldown time.Duration
	// Retry customizes the per-provider retry policy on top of the chain
	// defaults (2 attempts, 100ms base delay, transient errors only).
	Retry []func(o *retry.Options)
	// IsEmpty decides whether a successful response carries no usable data,
	// in which case the chain advances to the next provider. Defaults to
	// DefaultIsEmpty.
	IsEmpty func(v any) bool
	// Clock supplies the current time for cooldown bookkeeping.
	Clock func() time.Time
	// Logger receives per-provider outcomes.
	Logger logging.Logger
}

// Chain tries providers in priority order until one returns a usable result.
// It is safe for concurrent use.
type Chain struct {
	capability string
	providers  []Provider
	cooldown   time.Duration
	retryOpts  []func(o *retry.Options)
	isEmpty    func(v any) bool
	now        func() time.Time
	logger     logging.Logger

	mu          sync.Mutex
	failedUntil map[string]time.Time
}

// NewChain builds a chain for one capability. The provider slice order is the
// priority order.
func NewChain(capability string, providers []Provider, optFns ...func(o *ChainOptions)) *Chain {
	opts := ChainOptions{
		Cooldown: 30 * time.Second,
		IsEmpty:  DefaultIsEmpty,
		Clock:    time.Now,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	ps := make([]Provider, len(providers))
	copy(ps, providers)
	return &Chain{
		capability:  capability,
		providers:   ps,
		cooldown:    opts.Cooldown,
		retryOpts:   append([]func(o *retry.Options){chainRetryDefaults}, opts.Retry...),
		isEmpty:     opts.IsEmpty,
		now:         opts.Clock,
		logger:      opts.Logger,
		failedUntil: map[string]time.Time{},
	}
}

func chainRetryDefaults(o *retry.Options) {
	o.MaxAttempts = 2
	o.BaseDelay = 100 * time.Millisecond
	o.RetryIf = core.IsTransient
}

// DefaultIsEmpty treats nil, empty strings, and empty slices or maps as
// carrying no data.
func DefaultIsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Capability returns the capability name this chain serves.
func (c *Chain) Capability() string { return c.capability }

// Providers returns the chain's providers in configured priority order.
func (c *Chain) Providers() []Provider {
	ps := make([]Provider, len(c.providers))
	copy(ps, c.providers)
	return ps
}

// Invoke tries each provider in cooldown-adjusted priority order. Provider
// errors set a cooldown and the chain advances; empty results advance the
// chain without a cooldown. When no provider produces data, the returned
// error wraps ErrAllProvidersExhausted plus one AttemptError per provider.
func (c *Chain) Invoke(ctx context.Context, args Args) (any, error) {
	var attempts []*AttemptError
	for _, p := range c.ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		v, err := retry.DoValue(ctx, func(ctx context.Context) (any, error) {
			return p.Invoke(ctx, args)
		}, c.retryOpts...)
		elapsed := time.Since(start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.markFailed(p.Name())
			attempts = append(attempts, &AttemptError{Provider: p.Name(), Err: err})
			c.logger.Warn("provider failed", "capability", c.capability, "provider", p.Name(), "elapsed", elapsed, "error", err)
			continue
		}
		if c.isEmpty != nil && c.isEmpty(v) {
			// No data is not a health signal; the provider keeps its rank.
			attempts = append(attempts, &AttemptError{Provider: p.Name(), Err: ErrEmptyResult})
			c.logger.Debug("provider returned no data", "capability", c.capability, "provider", p.Name(), "elapsed", elapsed)
			continue
		}
		c.logger.Debug("provider succeeded", "capability", c.capability, "provider", p.Name(), "elapsed", elapsed)
		return v, nil
	}
	return nil, &ExhaustedError{Capability: c.capability, Attempts: attempts}
}

// ordered returns providers with cooled-down ones moved to the back, each
// group keeping its configured order.
func (c *Chain) ordered() []Provider {
	now := c.now()
	cooled := map[string]bool{}
	c.mu.Lock()
	for name, until := range c.failedUntil {
		if now.Before(until) {
			cooled[name] = true
		} else {
			delete(c.failedUntil, name)
		}
	}
	c.mu.Unlock()

	if len(cooled) == 0 {
		return c.Providers()
	}
	healthy := make([]Provider, 0, len(c.providers))
	var parked []Provider
	for _, p := range c.providers {
		if cooled[p.Name()] {
			parked = append(parked, p)
		} else {
			healthy = append(healthy, p)
		}
	}
	return append(healthy, parked...)
}

func (c *Chain) markFailed(name string) {
	if c.cooldown <= 0 {
		return
	}
	c.mu.Lock()
	c.failedUntil[name] = c.now().Add(c.cooldown)
	c.mu.Unlock()
}
