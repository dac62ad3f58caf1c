package state

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/core"
)

func TestSum(t *testing.T) {
	v, err := Sum(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Sum(v, 4.5)
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	v, err = Sum(v, int64(2))
	require.NoError(t, err)
	assert.Equal(t, 9.5, v)

	_, err = Sum(nil, "nope")
	assert.Error(t, err)
}

func TestSum_Commutative(t *testing.T) {
	writes := []any{1, 2.5, 3, int64(4), float32(0.5)}
	want := 11.0

	for perm := 0; perm < 50; perm++ {
		shuffled := make([]any, len(writes))
		copy(shuffled, writes)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		var acc any
		for _, w := range shuffled {
			var err error
			acc, err = Sum(acc, w)
			require.NoError(t, err)
		}
		assert.InDelta(t, want, acc.(float64), 1e-9)
	}
}

func TestCount(t *testing.T) {
	v, err := Count(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = Count(v, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = Count(nil, 1.5)
	assert.Error(t, err)
}

func TestUnion(t *testing.T) {
	v, err := Union(nil, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, v)

	v, err = Union(v, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, v)

	_, err = Union(nil, 42)
	assert.Error(t, err)
}

func TestUnion_Commutative(t *testing.T) {
	writes := []any{"beta", []string{"alpha", "gamma"}, "alpha", []string{"delta"}}
	want := []string{"alpha", "beta", "delta", "gamma"}

	for perm := 0; perm < 50; perm++ {
		shuffled := make([]any, len(writes))
		copy(shuffled, writes)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		var acc any
		for _, w := range shuffled {
			var err error
			acc, err = Union(acc, w)
			require.NoError(t, err)
		}
		assert.Equal(t, want, acc)
	}
}

func TestKeyedMap(t *testing.T) {
	v, err := KeyedMap(nil, map[string]any{"a": 1})
	require.NoError(t, err)

	v, err = KeyedMap(v, map[string]any{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, v)

	// Same key, same value is tolerated.
	_, err = KeyedMap(v, map[string]any{"a": 1})
	assert.NoError(t, err)

	// Same key, different value must fail loudly.
	_, err = KeyedMap(v, map[string]any{"a": 99})
	assert.Error(t, err)

	_, err = KeyedMap(nil, "nope")
	assert.Error(t, err)
}

func TestReducers_Register(t *testing.T) {
	r := NewReducers()

	require.NoError(t, r.Register("company.news", Union))
	_, ok := r.Lookup("company.news")
	assert.True(t, ok)

	assert.Error(t, r.Register("run.cost", Sum), "reserved fields cannot be rebound")
	assert.Error(t, r.Register("", Sum))
	assert.Error(t, r.Register("x", nil))
}

func TestReducers_ReservedDefaults(t *testing.T) {
	r := NewReducers()
	for _, key := range []string{KeyCost, KeyCalls, KeyIteration, KeyFailures, KeyNotApplicable} {
		_, ok := r.Lookup(key)
		assert.True(t, ok, "reserved key %s must have a reducer", key)
	}
}

func TestReducers_Validate(t *testing.T) {
	r := NewReducers()
	descs := []core.Descriptor{
		{Name: "a", Kind: core.KindCore, Writes: []string{"x", "solo"}},
		{Name: "b", Kind: core.KindCore, Writes: []string{"x"}},
	}

	err := r.Validate(descs)
	require.Error(t, err, "multi-writer field without reducer must fail")
	var ce *core.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Reason, "x")
	assert.Contains(t, ce.Reason, "a, b")

	require.NoError(t, r.Register("x", Sum))
	assert.NoError(t, r.Validate(descs))
}
