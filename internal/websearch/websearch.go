// Package websearch provides the web-search client consumed by the
// strategy and guide steps. An empty result list is a valid response;
// callers must not treat it as an error.
package websearch

import (
	"context"
	"strings"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link"`
}

// Client performs a web search and returns up to maxResults ordered hits.
type Client interface {
	Results(ctx context.Context, query string, maxResults int) ([]Result, error)
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func clampCount(n int) int {
	if n <= 0 {
		return 5
	}
	if n > 10 {
		return 10
	}
	return n
}
