// Package agent provides the built-in research agents of ResearchMesh and the
// dependency bundle they share.
//
// Agent Types:
//   - Profile: core agent producing the company profile and industry
//     classification, optionally synthesized by a language model
//   - News: core agent collecting recent headlines
//   - Financials: core agent reading the profile to decide whether public
//     financials exist for the subject
//   - GapSearch: generic gap-fill agent that targets one open field with a
//     custom query
//   - Func: adapter exposing a plain Go function as a core.Agent
//
// All agents resolve external lookups through a provider registry, share a
// result cache and account their spend, so the orchestrator can enforce
// budgets across the whole run:
//
//	deps := agent.Deps{
//	    Providers: registry,
//	    Cache:     cache.New(),
//	    Model:     openai.NewModel(),
//	    Limiter:   core.NewCallLimiter(50),
//	}
//	agents := []core.Agent{
//	    agent.NewProfile(deps),
//	    agent.NewNews(deps),
//	    agent.NewFinancials(deps),
//	}
package agent
