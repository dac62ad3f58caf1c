// Package search provides web search providers for ResearchMesh fallback
// chains.
//
// Available providers:
//
//   - Brave: Requires API key via X-Subscription-Token header, paced to the
//     1 req/s rate limit through a shared per-key gate
//   - Tavily: Requires API key, supports basic/advanced depth modes
//   - DuckDuckGo: Free, no API key required (Instant Answer API); thin
//     coverage, best used as the last provider in a chain
//
// All providers implement provider.Provider, return []Result and mark rate
// limits and server-side failures as transient, so a provider.Chain can
// retry and fall back between them:
//
//	chain := registry.Register(search.Capability,
//	    search.NewBrave(os.Getenv("BRAVE_API_KEY")),
//	    search.NewTavily(os.Getenv("TAVILY_API_KEY")),
//	    search.NewDuckDuckGo(),
//	)
//	v, err := chain.Invoke(ctx, provider.Args{
//	    search.ArgQuery: "Acme Robotics funding",
//	    search.ArgCount: 5,
//	})
//	results, err := search.Results(v)
package search
