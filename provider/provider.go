// Package provider implements capability registries and ordered fallback
// chains over interchangeable external data providers. A chain tries its
// providers in priority order, retries transient failures per provider, and
// deprioritizes recently failed providers for a cooldown window without ever
// removing them.
package provider

import (
	"context"
)

// Args carries the named arguments of one capability invocation.
type Args map[string]any

// String returns the named argument as a string, or "" when absent or not a
// string.
func (a Args) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the named argument as an int, or 0 when absent. Float values
// are truncated so JSON-decoded arguments work unmodified.
func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Provider is one interchangeable source behind a capability.
type Provider interface {
	// Name identifies the provider in logs, errors and cooldown bookkeeping.
	Name() string
	// Invoke performs one lookup. Errors wrapped with core.Transient are
	// retried by the chain's per-provider retry policy.
	Invoke(ctx context.Context, args Args) (any, error)
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	name string
	fn   func(ctx context.Context, args Args) (any, error)
}

// NewFunc wraps fn as a named provider.
func NewFunc(name string, fn func(ctx context.Context, args Args) (any, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Provider.
func (f *Func) Name() string { return f.name }

// Invoke implements Provider.
func (f *Func) Invoke(ctx context.Context, args Args) (any, error) {
	return f.fn(ctx, args)
}
