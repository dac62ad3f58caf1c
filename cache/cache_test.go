package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(clock *fakeClock, optFns ...func(o *Options)) *Cache {
	fns := append([]func(o *Options){func(o *Options) {
		o.Clock = clock.Now
		o.DefaultTTL = time.Hour
		o.CategoryTTL = map[string]time.Duration{"news": 10 * time.Minute}
	}}, optFns...)
	return New(fns...)
}

func TestCache_GetOrComputeComputesOnce(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	computes := 0

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute(context.Background(), "k", "profile", func(ctx context.Context) (any, error) {
			computes++
			return "value", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	}

	assert.Equal(t, 1, computes)
	assert.Equal(t, 1, c.Len())
}

func TestCache_CategoryTTLExpiry(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	computes := 0
	compute := func(ctx context.Context) (any, error) {
		computes++
		return computes, nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", "news", compute)
	require.NoError(t, err)

	// Within the news TTL the entry is served from cache.
	clock.Advance(9 * time.Minute)
	v, err := c.GetOrCompute(context.Background(), "k", "news", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Past the news TTL it is recomputed.
	clock.Advance(2 * time.Minute)
	v, err = c.GetOrCompute(context.Background(), "k", "news", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, computes)
}

func TestCache_DefaultTTLForUnknownCategory(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	_, err := c.GetOrCompute(context.Background(), "k", "filings", func(ctx context.Context) (any, error) {
		return "x", nil
	})
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, ok := c.Get("k")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestCache_PerCallTTLOverride(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)

	_, err := c.GetOrCompute(context.Background(), "k", "profile", func(ctx context.Context) (any, error) {
		return "x", nil
	}, func(o *EntryOptions) { o.TTL = time.Minute })
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok, "override TTL must win over the category TTL")
}

func TestCache_ErrorsNotCached(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	boom := errors.New("upstream down")
	computes := 0

	_, err := c.GetOrCompute(context.Background(), "k", "profile", func(ctx context.Context) (any, error) {
		computes++
		return nil, boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrCompute(context.Background(), "k", "profile", func(ctx context.Context) (any, error) {
		computes++
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, 2, computes)
}

func TestCache_ConcurrentCallersShareOneFlight(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	var computes atomic.Int32
	gate := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "k", "profile", func(ctx context.Context) (any, error) {
				computes.Add(1)
				<-gate
				return "shared", nil
			})
			assert.NoError(t, err)
			results[n] = v
		}(i)
	}

	// Give every goroutine time to join the flight, then release it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), computes.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestCache_CanceledWaiterDoesNotPoisonFlight(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	gate := make(chan struct{})
	var computes atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.GetOrCompute(ctx, "k", "profile", func(inner context.Context) (any, error) {
			computes.Add(1)
			<-gate
			// The flight context must survive the waiter's cancellation.
			assert.NoError(t, inner.Err())
			return "late", nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	wg.Wait()
	close(gate)

	// The detached flight still completes and stores the value.
	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), computes.Load())
}

func TestCache_Invalidate(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	computes := 0
	compute := func(ctx context.Context) (any, error) {
		computes++
		return computes, nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", "profile", compute)
	require.NoError(t, err)
	c.Invalidate("k")

	v, err := c.GetOrCompute(context.Background(), "k", "profile", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_ClearCategoryAndSweep(t *testing.T) {
	clock := newFakeClock()
	c := newTestCache(clock)
	store := func(key, category string) {
		_, err := c.GetOrCompute(context.Background(), key, category, func(ctx context.Context) (any, error) {
			return key, nil
		})
		require.NoError(t, err)
	}
	store("n1", "news")
	store("n2", "news")
	store("p1", "profile")

	assert.Equal(t, 2, c.ClearCategory("news"))
	assert.Equal(t, 1, c.Len())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, c.SweepExpired())
	assert.Equal(t, 0, c.Len())
}

func TestKey_NormalizesParts(t *testing.T) {
	assert.Equal(t, Key("search", "Acme Corp"), Key("search", "acme  corp"))
	assert.Equal(t, Key("search", " ACME\tCORP "), Key("search", "acme corp"))
	assert.NotEqual(t, Key("search", "acme corp"), Key("news", "acme corp"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"), "part boundaries must matter")
	assert.Len(t, Key("x"), 64)
}
