package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/provider"
)

// TavilyOptions configure the Tavily provider.
type TavilyOptions struct {
	// Endpoint overrides the production API URL, mainly for tests.
	Endpoint string
	// HTTPClient overrides the default 10s-timeout client.
	HTTPClient *http.Client
	// Depth controls Tavily's depth parameter (basic or advanced).
	Depth string
	// MaxResults caps result lists when the invocation carries no count.
	MaxResults int
}

// Tavily calls the Tavily search API.
type Tavily struct {
	apiKey     string
	endpoint   string
	client     *http.Client
	depth      string
	maxResults int
}

var _ provider.Provider = (*Tavily)(nil)

// NewTavily constructs a Tavily search provider.
func NewTavily(apiKey string, optFns ...func(o *TavilyOptions)) *Tavily {
	opts := TavilyOptions{
		Endpoint:   "https://api.tavily.com/search",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Depth:      "basic",
		MaxResults: DefaultMaxResults,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Depth == "" {
		opts.Depth = "basic"
	}
	return &Tavily{
		apiKey:     apiKey,
		endpoint:   opts.Endpoint,
		client:     opts.HTTPClient,
		depth:      opts.Depth,
		maxResults: opts.MaxResults,
	}
}

// Name implements provider.Provider.
func (t *Tavily) Name() string { return "tavily" }

// Invoke posts one query to Tavily.
func (t *Tavily) Invoke(ctx context.Context, args provider.Args) (any, error) {
	query, err := queryFrom(args)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, errors.New("tavily: API key is missing")
	}
	limit := countFrom(args, t.maxResults)

	body := map[string]any{
		"query":       query,
		"api_key":     t.apiKey,
		"depth":       t.depth,
		"max_results": limit,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("tavily", resp.StatusCode)
	}

	var response struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]Result, 0, len(response.Results))
	for _, r := range response.Results {
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
