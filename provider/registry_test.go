package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndInvoke(t *testing.T) {
	r := NewRegistry()
	r.Register("search", []Provider{
		NewFunc("stub", func(ctx context.Context, args Args) (any, error) {
			return "results for " + args.String("query"), nil
		}),
	})

	v, err := r.Invoke(context.Background(), "search", Args{"query": "acme"})

	require.NoError(t, err)
	assert.Equal(t, "results for acme", v)
}

func TestRegistry_UnknownCapability(t *testing.T) {
	r := NewRegistry()

	_, err := r.Invoke(context.Background(), "filings", Args{})

	assert.ErrorIs(t, err, ErrUnknownCapability)
	assert.Contains(t, err.Error(), "filings")
}

func TestRegistry_RegisterChainReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("search", []Provider{
		NewFunc("old", func(ctx context.Context, args Args) (any, error) { return "old", nil }),
	})
	r.RegisterChain(NewChain("search", []Provider{
		NewFunc("new", func(ctx context.Context, args Args) (any, error) { return "new", nil }),
	}))

	v, err := r.Invoke(context.Background(), "search", Args{})
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	chain, ok := r.Chain("search")
	require.True(t, ok)
	assert.Equal(t, "search", chain.Capability())
	require.Len(t, chain.Providers(), 1)
	assert.Equal(t, "new", chain.Providers()[0].Name())
}

func TestRegistry_Capabilities(t *testing.T) {
	r := NewRegistry()
	stub := func(ctx context.Context, args Args) (any, error) { return "x", nil }
	r.Register("search", []Provider{NewFunc("s", stub)})
	r.Register("filings", []Provider{NewFunc("f", stub)})

	assert.Equal(t, []string{"filings", "search"}, r.Capabilities())
}

func TestRegistry_ChainErrorsPropagate(t *testing.T) {
	r := NewRegistry()
	r.Register("search", []Provider{
		NewFunc("down", func(ctx context.Context, args Args) (any, error) {
			return nil, errors.New("offline")
		}),
	})

	_, err := r.Invoke(context.Background(), "search", Args{})
	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
}
