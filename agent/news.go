package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
)

// NewsOptions configure the news agent.
type NewsOptions struct {
	// MaxHeadlines caps the number of headlines written to company.news.
	MaxHeadlines int
	// QuerySuffix refines the news query ("latest news" by default).
	QuerySuffix string
}

// News collects recent headlines about the subject. It writes company.news
// as a list of headline strings; register a Union reducer for the field when
// several agents contribute headlines.
type News struct {
	deps Deps
	opts NewsOptions
}

var _ core.Agent = (*News)(nil)

// NewNews creates the news agent.
func NewNews(deps Deps, optFns ...func(o *NewsOptions)) *News {
	opts := NewsOptions{
		MaxHeadlines: 5,
		QuerySuffix:  "latest news",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &News{deps: deps, opts: opts}
}

// Descriptor implements core.Agent.
func (a *News) Descriptor() core.Descriptor {
	return core.Descriptor{
		Name:   "news",
		Kind:   core.KindCore,
		Writes: []string{FieldNews},
	}
}

// Run implements core.Agent.
func (a *News) Run(ctx context.Context, rc core.RunContext) (core.Result, error) {
	start := time.Now()
	res := core.NewResult()

	query := fmt.Sprintf("%s %s", rc.Subject.Name, a.opts.QuerySuffix)
	results, calls, err := a.deps.search(ctx, rc.Subject, query, a.opts.MaxHeadlines)
	res.Usage.Calls += calls
	if err != nil {
		return res, err
	}

	headlines := make([]string, 0, len(results))
	for _, r := range results {
		if len(headlines) >= a.opts.MaxHeadlines {
			break
		}
		if t := strings.TrimSpace(r.Title); t != "" {
			headlines = append(headlines, t)
		}
	}

	if len(headlines) == 0 {
		res.Set(FieldNews, core.Failed("no recent news found"))
	} else {
		res.Set(FieldNews, core.Found(headlines))
	}

	res.Usage.Elapsed = time.Since(start)
	return res, nil
}
