package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/search"
)

// GapSearchOptions configure a gap-fill search agent.
type GapSearchOptions struct {
	// Query builds the search query for the subject. Defaults to
	// "<subject name> <last field segment>".
	Query func(subject core.Subject) string
	// Parse converts search results into the field value. Returning false
	// marks the attempt failed and keeps the gap open for another round.
	// The default joins snippets into a text summary.
	Parse func(results []search.Result) (core.FieldValue, bool)
	// MaxResults caps how many search results one attempt requests.
	MaxResults int
}

// GapSearch is a generic gap-fill agent targeting one field. The quality
// gate's follow-up rounds dispatch it only while its field is an open gap, so
// a mesh typically registers one GapSearch per required field.
type GapSearch struct {
	field      string
	deps       Deps
	queryFn    func(subject core.Subject) string
	parseFn    func(results []search.Result) (core.FieldValue, bool)
	maxResults int
}

var _ core.Agent = (*GapSearch)(nil)

// NewGapSearch creates a gap-fill agent for the given field.
func NewGapSearch(field string, deps Deps, optFns ...func(o *GapSearchOptions)) *GapSearch {
	opts := GapSearchOptions{MaxResults: search.DefaultMaxResults}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Query == nil {
		opts.Query = func(subject core.Subject) string {
			return fmt.Sprintf("%s %s", subject.Name, fieldTopic(field))
		}
	}
	if opts.Parse == nil {
		maxResults := opts.MaxResults
		opts.Parse = func(results []search.Result) (core.FieldValue, bool) {
			text := joinSnippets(results, maxResults)
			if text == "" {
				return core.FieldValue{}, false
			}
			return core.Found(text), true
		}
	}
	return &GapSearch{
		field:      field,
		deps:       deps,
		queryFn:    opts.Query,
		parseFn:    opts.Parse,
		maxResults: opts.MaxResults,
	}
}

// Descriptor implements core.Agent.
func (a *GapSearch) Descriptor() core.Descriptor {
	return core.Descriptor{
		Name:   "gapfill-" + a.field,
		Kind:   core.KindGapFill,
		Writes: []string{a.field},
	}
}

// Run implements core.Agent.
func (a *GapSearch) Run(ctx context.Context, rc core.RunContext) (core.Result, error) {
	start := time.Now()
	res := core.NewResult()

	results, calls, err := a.deps.search(ctx, rc.Subject, a.queryFn(rc.Subject), a.maxResults)
	res.Usage.Calls += calls
	if err != nil {
		return res, err
	}

	if fv, ok := a.parseFn(results); ok {
		res.Set(a.field, fv)
	} else {
		res.Set(a.field, core.Failed("gap query returned no usable results"))
	}

	res.Usage.Elapsed = time.Since(start)
	return res, nil
}

// fieldTopic returns the last dot segment of a field name for query building,
// e.g. "company.competitors" becomes "competitors".
func fieldTopic(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 && i < len(field)-1 {
		return field[i+1:]
	}
	return field
}
