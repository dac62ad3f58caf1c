package search

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hupe1980/researchmesh/core"
	"github.com/hupe1980/researchmesh/provider"
)

// Capability is the registry capability name all web search providers serve.
const Capability = "search"

// ArgQuery and ArgCount are the invocation argument keys understood by every
// provider in this package.
const (
	ArgQuery = "query"
	ArgCount = "count"
)

// DefaultMaxResults caps result lists when the caller does not ask for a
// specific count.
const DefaultMaxResults = 5

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Results type-asserts a chain invocation value back to []Result.
func Results(v any) ([]Result, error) {
	results, ok := v.([]Result)
	if !ok {
		return nil, fmt.Errorf("search: expected []Result, got %T", v)
	}
	return results, nil
}

// queryFrom extracts and validates the query argument.
func queryFrom(args provider.Args) (string, error) {
	query := strings.TrimSpace(args.String(ArgQuery))
	if query == "" {
		return "", errors.New("search: query argument is empty")
	}
	return query, nil
}

// countFrom returns the requested result count, falling back to max.
func countFrom(args provider.Args, max int) int {
	if n := args.Int(ArgCount); n > 0 {
		return n
	}
	return max
}

// statusError converts an HTTP status into an error, marking rate limits and
// server-side failures transient so fallback chains retry them.
func statusError(name string, code int) error {
	err := fmt.Errorf("%s http %d", name, code)
	if code == http.StatusTooManyRequests || code >= 500 {
		return core.Transient(err)
	}
	return err
}
