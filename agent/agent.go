package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/researchmesh/cache"
	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/internal/util"
	"github.com/hupe1980/researchmesh/model"
	"github.com/hupe1980/researchmesh/provider"
	"github.com/hupe1980/researchmesh/search"
)

// Field names written by the built-in research agents.
const (
	FieldProfile     = "company.profile"
	FieldIndustry    = "company.industry"
	FieldNews        = "company.news"
	FieldFinancials  = "company.financials"
	FieldCompetitors = "company.competitors"
)

// Deps bundles the external services research agents share. Optional fields
// degrade gracefully: without a Cache every search hits the registry, without
// a Model synthesis falls back to raw extracts, without a Limiter spend is
// unbounded.
type Deps struct {
	// Providers resolves capabilities like "search" to fallback chains.
	Providers *provider.Registry
	// Cache deduplicates identical lookups within their TTL.
	Cache *cache.Cache
	// Model synthesizes prose from raw search extracts when set.
	Model model.Model
	// Limiter caps the number of upstream calls for the whole run.
	Limiter *core.CallLimiter
}

// search runs one web search through the cache. The returned count is the
// number of upstream invocations this call actually caused; a cache hit or a
// joined in-flight lookup reports zero, so shared work is never billed twice.
func (d Deps) search(ctx context.Context, subject core.Subject, query string, count int) ([]search.Result, int, error) {
	if d.Providers == nil {
		return nil, 0, errors.New("agent: no provider registry configured")
	}

	var upstream atomic.Int32
	compute := func(ctx context.Context) (any, error) {
		if d.Limiter != nil {
			if err := d.Limiter.Increment(); err != nil {
				return nil, err
			}
		}
		upstream.Add(1)
		return d.Providers.Invoke(ctx, search.Capability, provider.Args{
			search.ArgQuery: query,
			search.ArgCount: count,
		})
	}

	var v any
	var err error
	if d.Cache != nil {
		key := cache.Key(subject.Name, search.Capability, query)
		v, err = d.Cache.GetOrCompute(ctx, key, search.Capability, compute)
	} else {
		v, err = compute(ctx)
	}
	if err != nil {
		return nil, int(upstream.Load()), err
	}

	results, err := search.Results(v)
	if err != nil {
		return nil, int(upstream.Load()), err
	}
	return results, int(upstream.Load()), nil
}

// joinSnippets concatenates up to max non-empty snippets into one extract.
func joinSnippets(results []search.Result, max int) string {
	var parts []string
	for _, r := range results {
		if len(parts) >= max {
			break
		}
		if s := strings.TrimSpace(r.Snippet); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// sourceURLs collects up to max distinct result URLs.
func sourceURLs(results []search.Result, max int) []string {
	seen := map[string]bool{}
	var urls []string
	for _, r := range results {
		if len(urls) >= max {
			break
		}
		u := strings.TrimSpace(r.URL)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// industryKeywords maps snippet keywords to industry labels. Order matters:
// the first match wins, so more specific terms come first.
var industryKeywords = []struct{ keyword, industry string }{
	{"semiconductor", "semiconductors"},
	{"robot", "robotics"},
	{"fintech", "financial services"},
	{"bank", "financial services"},
	{"insur", "financial services"},
	{"pharma", "healthcare"},
	{"biotech", "healthcare"},
	{"health", "healthcare"},
	{"e-commerce", "retail"},
	{"retail", "retail"},
	{"solar", "energy"},
	{"energy", "energy"},
	{"logistics", "logistics"},
	{"manufactur", "manufacturing"},
	{"saas", "software"},
	{"software", "software"},
}

// guessIndustry derives an industry label from search extracts. Returns the
// empty string when no keyword matches.
func guessIndustry(text string) string {
	normalized := util.Normalize(text)
	for _, e := range industryKeywords {
		if strings.Contains(normalized, e.keyword) {
			return e.industry
		}
	}
	return ""
}
