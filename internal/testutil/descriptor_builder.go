package testutil

import (
	"github.com/hupe1980/researchmesh/core"
)

// DescriptorBuilder helps construct agent descriptors with fluent chaining
// for tests. Example:
//
//	desc := NewDescriptorBuilder("news").Writes("company.news").Build()
//
// The kind defaults to KindCore; chain GapFill for follow-up agents.
type DescriptorBuilder struct {
	desc core.Descriptor
}

// NewDescriptorBuilder creates a builder for a core-kind descriptor with the
// given agent name.
func NewDescriptorBuilder(name string) *DescriptorBuilder {
	return &DescriptorBuilder{desc: core.Descriptor{Name: name, Kind: core.KindCore}}
}

// GapFill switches the descriptor to the gap-fill kind (chainable).
func (b *DescriptorBuilder) GapFill() *DescriptorBuilder {
	b.desc.Kind = core.KindGapFill
	return b
}

// Reads appends declared read fields (chainable).
func (b *DescriptorBuilder) Reads(fields ...string) *DescriptorBuilder {
	b.desc.Reads = append(b.desc.Reads, fields...)
	return b
}

// Writes appends declared write fields (chainable).
func (b *DescriptorBuilder) Writes(fields ...string) *DescriptorBuilder {
	b.desc.Writes = append(b.desc.Writes, fields...)
	return b
}

// Build returns the core.Descriptor value.
func (b *DescriptorBuilder) Build() core.Descriptor {
	return b.desc
}
