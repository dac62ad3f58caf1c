package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/model"
)

const defaultProfilePrompt = "You are a company research analyst. " +
	"Write a concise, factual company profile from the provided search extracts. " +
	"Two to four sentences, no speculation beyond the extracts."

// ProfileOptions configure the profile agent.
type ProfileOptions struct {
	// MaxResults caps how many search results feed the profile.
	MaxResults int
	// SystemPrompt frames the synthesis request sent to the model.
	SystemPrompt string
}

// Profile researches who the subject company is. It writes company.profile
// (prose, model-synthesized when a model is configured) and company.industry
// (a keyword-derived classification, overridable via the "industry" subject
// hint). When the model call fails the agent degrades to raw search extracts
// instead of failing the field.
type Profile struct {
	deps Deps
	opts ProfileOptions
}

var _ core.Agent = (*Profile)(nil)

// NewProfile creates the profile agent.
func NewProfile(deps Deps, optFns ...func(o *ProfileOptions)) *Profile {
	opts := ProfileOptions{
		MaxResults:   5,
		SystemPrompt: defaultProfilePrompt,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Profile{deps: deps, opts: opts}
}

// Descriptor implements core.Agent.
func (a *Profile) Descriptor() core.Descriptor {
	return core.Descriptor{
		Name:   "profile",
		Kind:   core.KindCore,
		Writes: []string{FieldProfile, FieldIndustry},
	}
}

// Run implements core.Agent.
func (a *Profile) Run(ctx context.Context, rc core.RunContext) (core.Result, error) {
	start := time.Now()
	res := core.NewResult()

	query := fmt.Sprintf("%s company overview", rc.Subject.Name)
	if rc.Subject.Domain != "" {
		query = fmt.Sprintf("%s %s company overview", rc.Subject.Name, rc.Subject.Domain)
	}

	results, calls, err := a.deps.search(ctx, rc.Subject, query, a.opts.MaxResults)
	res.Usage.Calls += calls
	if err != nil {
		return res, err
	}

	extract := joinSnippets(results, a.opts.MaxResults)
	if extract == "" {
		res.Set(FieldProfile, core.Failed("no search results for profile query"))
		res.Set(FieldIndustry, core.Failed("no search results for profile query"))
		res.Usage.Elapsed = time.Since(start)
		return res, nil
	}

	profile := extract
	if a.deps.Model != nil {
		resp, merr := a.deps.Model.Generate(ctx, model.Request{
			System: a.opts.SystemPrompt,
			Prompt: fmt.Sprintf("Company: %s\nExtracts: %s", rc.Subject.String(), extract),
		})
		if merr != nil {
			// A flaky model must not void the search work; ship the extracts.
			rc.Logger.Warn("profile synthesis failed, falling back to extracts",
				"agent", "profile", "error", merr)
		} else if text := strings.TrimSpace(resp.Text); text != "" {
			profile = text
			res.Usage.Cost += resp.Usage.Cost
			res.Usage.Calls++
		}
	}
	res.Set(FieldProfile, core.Found(profile))

	if hint := rc.Subject.Hint("industry"); hint != "" {
		res.Set(FieldIndustry, core.Found(hint))
	} else if industry := guessIndustry(extract); industry != "" {
		res.Set(FieldIndustry, core.Found(industry))
	} else {
		res.Set(FieldIndustry, core.Failed("no industry signal in search results"))
	}

	res.Insight = fmt.Sprintf("profile built from %d sources", len(results))
	res.Usage.Elapsed = time.Since(start)
	return res, nil
}
