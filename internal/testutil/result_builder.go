package testutil

import (
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// ResultBuilder provides a fluent helper for constructing agent results in
// tests. Example:
//
//	res := NewResultBuilder().Found("company.profile", "maker of anvils").Cost(0.02).Build()
//
// Chain only the parts you need; an empty builder produces an empty result.
type ResultBuilder struct {
	fields  map[string]core.FieldValue
	insight string
	usage   core.Usage
}

// NewResultBuilder creates an empty result builder.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{fields: map[string]core.FieldValue{}}
}

// Found sets a found value for the field (chainable).
func (b *ResultBuilder) Found(field string, v any) *ResultBuilder {
	b.fields[field] = core.Found(v)
	return b
}

// NotApplicable marks the field as not applicable to the subject (chainable).
func (b *ResultBuilder) NotApplicable(field string) *ResultBuilder {
	b.fields[field] = core.NotApplicable()
	return b
}

// Failed marks the field as failed with the given reason (chainable).
func (b *ResultBuilder) Failed(field, reason string) *ResultBuilder {
	b.fields[field] = core.Failed(reason)
	return b
}

// Insight sets the free-form insight text (chainable).
func (b *ResultBuilder) Insight(insight string) *ResultBuilder {
	b.insight = insight
	return b
}

// Cost sets the external spend of the invocation (chainable).
func (b *ResultBuilder) Cost(cost float64) *ResultBuilder {
	b.usage.Cost = cost
	return b
}

// Calls sets the external call count of the invocation (chainable).
func (b *ResultBuilder) Calls(n int) *ResultBuilder {
	b.usage.Calls = n
	return b
}

// Elapsed sets the wall-clock duration of the invocation (chainable).
func (b *ResultBuilder) Elapsed(d time.Duration) *ResultBuilder {
	b.usage.Elapsed = d
	return b
}

// Build constructs the core.Result value.
func (b *ResultBuilder) Build() core.Result {
	res := core.NewResult()
	for field, fv := range b.fields {
		res.Set(field, fv)
	}
	res.Insight = b.insight
	res.Usage = b.usage
	return res
}
