package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/retry"
)

// callRecorder tracks the order providers were invoked in across a chain.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *callRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// scripted returns a provider that consumes errs one call at a time, then
// serves value forever.
func scripted(rec *callRecorder, name string, value any, errs ...error) Provider {
	var mu sync.Mutex
	return NewFunc(name, func(ctx context.Context, args Args) (any, error) {
		rec.record(name)
		mu.Lock()
		defer mu.Unlock()
		if len(errs) > 0 {
			err := errs[0]
			errs = errs[1:]
			if err != nil {
				return nil, err
			}
		}
		return value, nil
	})
}

func noDelay(o *ChainOptions) {
	o.Retry = append(o.Retry, func(ro *retry.Options) { ro.BaseDelay = 0 })
}

func TestChain_FirstProviderWins(t *testing.T) {
	rec := &callRecorder{}
	chain := NewChain("search", []Provider{
		scripted(rec, "primary", "primary-data"),
		scripted(rec, "secondary", "secondary-data"),
	}, noDelay)

	v, err := chain.Invoke(context.Background(), Args{"query": "acme"})

	require.NoError(t, err)
	assert.Equal(t, "primary-data", v)
	assert.Equal(t, []string{"primary"}, rec.names())
}

func TestChain_FallsBackInOrder(t *testing.T) {
	rec := &callRecorder{}
	chain := NewChain("search", []Provider{
		scripted(rec, "a", nil, errors.New("a down")),
		scripted(rec, "b", nil, errors.New("b down")),
		scripted(rec, "c", "c-data"),
	}, noDelay)

	v, err := chain.Invoke(context.Background(), Args{})

	require.NoError(t, err)
	assert.Equal(t, "c-data", v)
	assert.Equal(t, []string{"a", "b", "c"}, rec.names())
}

func TestChain_TransientErrorsRetriedPerProvider(t *testing.T) {
	rec := &callRecorder{}
	chain := NewChain("search", []Provider{
		scripted(rec, "flaky", "recovered", core.Transient(errors.New("429"))),
	}, noDelay)

	v, err := chain.Invoke(context.Background(), Args{})

	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, []string{"flaky", "flaky"}, rec.names(), "chain default allows a second attempt")
}

func TestChain_NonTransientNotRetried(t *testing.T) {
	rec := &callRecorder{}
	chain := NewChain("search", []Provider{
		scripted(rec, "a", nil, errors.New("bad api key")),
		scripted(rec, "b", "b-data"),
	}, noDelay)

	v, err := chain.Invoke(context.Background(), Args{})

	require.NoError(t, err)
	assert.Equal(t, "b-data", v)
	assert.Equal(t, []string{"a", "b"}, rec.names(), "permanent errors get exactly one attempt")
}

func TestChain_CooldownDeprioritizesFailedProvider(t *testing.T) {
	rec := &callRecorder{}
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	now := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(d)
	}

	chain := NewChain("search", []Provider{
		scripted(rec, "a", "a-data", errors.New("down")),
		scripted(rec, "b", "b-data"),
	}, noDelay, func(o *ChainOptions) {
		o.Cooldown = time.Minute
		o.Clock = now
	})

	// First call: a fails and goes on cooldown, b serves.
	v, err := chain.Invoke(context.Background(), Args{})
	require.NoError(t, err)
	assert.Equal(t, "b-data", v)

	// While cooled down, a is tried last, so b serves directly.
	v, err = chain.Invoke(context.Background(), Args{})
	require.NoError(t, err)
	assert.Equal(t, "b-data", v)
	assert.Equal(t, []string{"a", "b", "b"}, rec.names())

	// After the cooldown expires, a regains its rank and now succeeds.
	advance(2 * time.Minute)
	v, err = chain.Invoke(context.Background(), Args{})
	require.NoError(t, err)
	assert.Equal(t, "a-data", v)
	assert.Equal(t, []string{"a", "b", "b", "a"}, rec.names())
}

func TestChain_EmptyResultAdvancesWithoutCooldown(t *testing.T) {
	rec := &callRecorder{}
	chain := NewChain("search", []Provider{
		scripted(rec, "thin", []string{}),
		scripted(rec, "full", []string{"hit"}),
	}, noDelay)

	for i := 0; i < 2; i++ {
		v, err := chain.Invoke(context.Background(), Args{})
		require.NoError(t, err)
		assert.Equal(t, []string{"hit"}, v)
	}
	// thin keeps its first-priority rank on the second call: no cooldown.
	assert.Equal(t, []string{"thin", "full", "thin", "full"}, rec.names())
}

func TestChain_Exhausted(t *testing.T) {
	rec := &callRecorder{}
	aErr := errors.New("a down")
	chain := NewChain("search", []Provider{
		scripted(rec, "a", nil, aErr),
		scripted(rec, "empty", ""),
	}, noDelay)

	_, err := chain.Invoke(context.Background(), Args{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersExhausted)
	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.ErrorIs(t, err, aErr)

	var ee *ExhaustedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "search", ee.Capability)
	require.Len(t, ee.Attempts, 2)
	assert.Equal(t, "a", ee.Attempts[0].Provider)
	assert.Equal(t, "empty", ee.Attempts[1].Provider)
}

func TestChain_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	chain := NewChain("search", []Provider{
		NewFunc("blocking", func(ctx context.Context, args Args) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}),
		NewFunc("never", func(ctx context.Context, args Args) (any, error) {
			t.Error("second provider must not run after cancellation")
			return nil, nil
		}),
	}, noDelay)

	go func() {
		<-started
		cancel()
	}()

	_, err := chain.Invoke(ctx, Args{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultIsEmpty(t *testing.T) {
	assert.True(t, DefaultIsEmpty(nil))
	assert.True(t, DefaultIsEmpty(""))
	assert.True(t, DefaultIsEmpty([]string{}))
	assert.True(t, DefaultIsEmpty(map[string]any{}))
	assert.False(t, DefaultIsEmpty("x"))
	assert.False(t, DefaultIsEmpty([]string{"x"}))
	assert.False(t, DefaultIsEmpty(42))
	assert.False(t, DefaultIsEmpty(0))
}

func TestArgs_Helpers(t *testing.T) {
	args := Args{"query": "acme", "limit": 5, "ratio": 2.9, "big": int64(7)}
	assert.Equal(t, "acme", args.String("query"))
	assert.Equal(t, "", args.String("missing"))
	assert.Equal(t, "", args.String("limit"))
	assert.Equal(t, 5, args.Int("limit"))
	assert.Equal(t, 2, args.Int("ratio"))
	assert.Equal(t, 7, args.Int("big"))
	assert.Equal(t, 0, args.Int("missing"))
}
