package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/provider"
)

// ddgRateLimit enforces a global rate limit of 1 query per second across all
// DuckDuckGo instances and goroutines.
var ddgRateLimit struct {
	mu   sync.Mutex
	last time.Time
}

// DuckDuckGoOptions configure the DuckDuckGo provider.
type DuckDuckGoOptions struct {
	// Endpoint overrides the production API URL, mainly for tests.
	Endpoint string
	// HTTPClient overrides the default 15s-timeout client.
	HTTPClient *http.Client
	// MaxResults caps result lists when the invocation carries no count.
	MaxResults int
}

// DuckDuckGo queries DuckDuckGo's Instant Answer API. No API key is required,
// which makes it a useful last resort in a search fallback chain. Coverage is
// thinner than the paid providers: many queries return an empty result set.
type DuckDuckGo struct {
	endpoint   string
	client     *http.Client
	maxResults int
}

var _ provider.Provider = (*DuckDuckGo)(nil)

// NewDuckDuckGo creates a DuckDuckGo searcher with a modest timeout.
func NewDuckDuckGo(optFns ...func(o *DuckDuckGoOptions)) *DuckDuckGo {
	opts := DuckDuckGoOptions{
		Endpoint:   "https://api.duckduckgo.com/",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		MaxResults: DefaultMaxResults,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DuckDuckGo{
		endpoint:   opts.Endpoint,
		client:     opts.HTTPClient,
		maxResults: opts.MaxResults,
	}
}

// Name implements provider.Provider.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Invoke executes one Instant Answer lookup under the global 1 QPS gate.
func (d *DuckDuckGo) Invoke(ctx context.Context, args provider.Args) (any, error) {
	query, err := queryFrom(args)
	if err != nil {
		return nil, err
	}
	limit := countFrom(args, d.maxResults)

	// Enforce global 1 QPS rate limit.
	ddgRateLimit.mu.Lock()
	if wait := time.Until(ddgRateLimit.last.Add(time.Second)); wait > 0 {
		ddgRateLimit.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		ddgRateLimit.mu.Lock()
	}
	ddgRateLimit.last = time.Now()
	ddgRateLimit.mu.Unlock()

	values := url.Values{}
	values.Set("q", query)
	values.Set("format", "json")
	values.Set("no_html", "1")
	values.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, core.Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("duckduckgo", resp.StatusCode)
	}

	var payload struct {
		Heading       string `json:"Heading"`
		AbstractText  string `json:"AbstractText"`
		AbstractURL   string `json:"AbstractURL"`
		RelatedTopics []struct {
			Text     string `json:"Text"`
			FirstURL string `json:"FirstURL"`
			Topics   []struct {
				Text     string `json:"Text"`
				FirstURL string `json:"FirstURL"`
			} `json:"Topics"`
		} `json:"RelatedTopics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("duckduckgo: decode response: %w", err)
	}

	var results []Result
	if payload.AbstractText != "" {
		results = append(results, Result{
			Title:   payload.Heading,
			URL:     payload.AbstractURL,
			Snippet: payload.AbstractText,
		})
	}
	for _, topic := range payload.RelatedTopics {
		if len(results) >= limit {
			break
		}
		if topic.Text != "" {
			results = append(results, topicResult(topic.Text, topic.FirstURL))
			continue
		}
		// Disambiguation groups nest their entries one level down.
		for _, sub := range topic.Topics {
			if len(results) >= limit {
				break
			}
			if sub.Text != "" {
				results = append(results, topicResult(sub.Text, sub.FirstURL))
			}
		}
	}
	return results, nil
}

// topicResult splits DuckDuckGo's "Title - description" topic text into a
// search result.
func topicResult(text, firstURL string) Result {
	title, snippet, found := strings.Cut(text, " - ")
	if !found {
		title, snippet = text, ""
	}
	return Result{Title: title, URL: firstURL, Snippet: snippet}
}
