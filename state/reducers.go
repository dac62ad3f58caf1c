package state

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/hupe1980/researchmesh/core"
)

// Reducer merges a newly written field value into the previously merged one.
// old is nil for the first write. Implementations must be pure, associative
// and commutative so that merge order within a tier never changes the
// outcome.
type Reducer func(old, incoming any) (any, error)

// Sum adds numeric writes. Values are normalized to float64, so int and
// float writes may be mixed freely.
func Sum(old, incoming any) (any, error) {
	in, err := toFloat64(incoming)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return in, nil
	}
	prev, err := toFloat64(old)
	if err != nil {
		return nil, err
	}
	return prev + in, nil
}

// Count adds integer writes, keeping the running value an int. Useful for
// counters like run.iteration and run.calls.
func Count(old, incoming any) (any, error) {
	in, ok := incoming.(int)
	if !ok {
		return nil, fmt.Errorf("count reducer: expected int, got %T", incoming)
	}
	if old == nil {
		return in, nil
	}
	prev, ok := old.(int)
	if !ok {
		return nil, fmt.Errorf("count reducer: accumulated value is %T, not int", old)
	}
	return prev + in, nil
}

// Union merges string writes into a sorted, deduplicated string set. Incoming
// may be a single string or a []string.
func Union(old, incoming any) (any, error) {
	set := map[string]struct{}{}
	if old != nil {
		prev, ok := old.([]string)
		if !ok {
			return nil, fmt.Errorf("union reducer: accumulated value is %T, not []string", old)
		}
		for _, s := range prev {
			set[s] = struct{}{}
		}
	}
	switch v := incoming.(type) {
	case string:
		set[v] = struct{}{}
	case []string:
		for _, s := range v {
			set[s] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("union reducer: expected string or []string, got %T", incoming)
	}
	merged := make([]string, 0, len(set))
	for s := range set {
		merged = append(merged, s)
	}
	sort.Strings(merged)
	return merged, nil
}

// KeyedMap merges map writes by key union. Writers must use disjoint keys,
// conventionally their own agent name; writing an existing key with a
// different value is an error so silent last-write-wins cannot occur.
func KeyedMap(old, incoming any) (any, error) {
	in, ok := incoming.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("keyed map reducer: expected map[string]any, got %T", incoming)
	}
	merged := map[string]any{}
	if old != nil {
		prev, ok := old.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("keyed map reducer: accumulated value is %T, not map[string]any", old)
		}
		for k, v := range prev {
			merged[k] = v
		}
	}
	for k, v := range in {
		if existing, dup := merged[k]; dup && !reflect.DeepEqual(existing, v) {
			return nil, fmt.Errorf("keyed map reducer: conflicting values for key %q", k)
		}
		merged[k] = v
	}
	return merged, nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("sum reducer: expected numeric value, got %T", v)
	}
}

// Reducers maps field names to the reducer that merges concurrent writes to
// that field. It is safe for concurrent use.
type Reducers struct {
	mu      sync.RWMutex
	byField map[string]Reducer
}

// NewReducers returns a registry pre-populated with the reducers owning the
// reserved run.* accumulator fields.
func NewReducers() *Reducers {
	return &Reducers{byField: map[string]Reducer{
		KeyCost:          Sum,
		KeyCalls:         Count,
		KeyIteration:     Count,
		KeyFailures:      KeyedMap,
		KeyNotApplicable: Union,
	}}
}

// Register binds a reducer to a field. Reserved run.* fields cannot be
// rebound. Registering a field twice replaces the previous reducer.
func (r *Reducers) Register(field string, fn Reducer) error {
	if strings.TrimSpace(field) == "" {
		return core.NewConfigError("reducer field name must not be empty")
	}
	if fn == nil {
		return core.NewConfigError("nil reducer for field %s", field)
	}
	if IsReserved(field) {
		return core.NewConfigError("field %s is reserved", field)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byField[field] = fn
	return nil
}

// Lookup returns the reducer registered for a field.
func (r *Reducers) Lookup(field string) (Reducer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.byField[field]
	return fn, ok
}

// Validate fails when any field written by more than one agent has no
// registered reducer. Such fields would otherwise degrade to silent
// last-write-wins under concurrent merging.
func (r *Reducers) Validate(descriptors []core.Descriptor) error {
	writers := map[string][]string{}
	for _, d := range descriptors {
		for _, f := range d.Writes {
			writers[f] = append(writers[f], d.Name)
		}
	}
	fields := make([]string, 0, len(writers))
	for f := range writers {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		names := writers[f]
		if len(names) < 2 {
			continue
		}
		if _, ok := r.Lookup(f); !ok {
			sort.Strings(names)
			return core.NewConfigError("field %s is written by %s but has no reducer", f, strings.Join(names, ", "))
		}
	}
	return nil
}
