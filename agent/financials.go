package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/internal/util"
)

// FinancialsOptions configure the financials agent.
type FinancialsOptions struct {
	// MaxResults caps how many search results feed the summary.
	MaxResults int
}

// Financials researches public financial data for the subject. It reads the
// company profile first: privately held companies have no public financials,
// so the field is reported not applicable instead of failing round after
// round. The same applies when the caller passes an "ownership: private"
// subject hint.
type Financials struct {
	deps Deps
	opts FinancialsOptions
}

var _ core.Agent = (*Financials)(nil)

// NewFinancials creates the financials agent.
func NewFinancials(deps Deps, optFns ...func(o *FinancialsOptions)) *Financials {
	opts := FinancialsOptions{MaxResults: 5}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Financials{deps: deps, opts: opts}
}

// Descriptor implements core.Agent.
func (a *Financials) Descriptor() core.Descriptor {
	return core.Descriptor{
		Name:   "financials",
		Kind:   core.KindCore,
		Reads:  []string{FieldProfile},
		Writes: []string{FieldFinancials},
	}
}

// Run implements core.Agent.
func (a *Financials) Run(ctx context.Context, rc core.RunContext) (core.Result, error) {
	start := time.Now()
	res := core.NewResult()

	if strings.EqualFold(rc.Subject.Hint("ownership"), "private") || a.profileSaysPrivate(rc) {
		res.Set(FieldFinancials, core.NotApplicable())
		res.Usage.Elapsed = time.Since(start)
		return res, nil
	}

	query := fmt.Sprintf("%s revenue annual report", rc.Subject.Name)
	results, calls, err := a.deps.search(ctx, rc.Subject, query, a.opts.MaxResults)
	res.Usage.Calls += calls
	if err != nil {
		return res, err
	}

	summary := joinSnippets(results, a.opts.MaxResults)
	if summary == "" {
		res.Set(FieldFinancials, core.Failed("no financial data found"))
		res.Usage.Elapsed = time.Since(start)
		return res, nil
	}

	res.Set(FieldFinancials, core.Found(map[string]any{
		"summary": summary,
		"sources": sourceURLs(results, a.opts.MaxResults),
	}))
	res.Usage.Elapsed = time.Since(start)
	return res, nil
}

// profileSaysPrivate inspects the profile produced by the upstream tier for
// private-ownership wording.
func (a *Financials) profileSaysPrivate(rc core.RunContext) bool {
	v, ok := rc.State.Get(FieldProfile)
	if !ok {
		return false
	}
	profile, ok := v.(string)
	if !ok {
		return false
	}
	normalized := util.Normalize(profile)
	return strings.Contains(normalized, "privately held") ||
		strings.Contains(normalized, "private company") ||
		strings.Contains(normalized, "family owned")
}
