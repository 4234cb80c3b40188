package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	braveDefaultEndpoint = "https://api.search.brave.com/res/v1/web/search"
	braveMaxBodyBytes    = 2 << 20 // 2 MiB (defensive)
)

// Brave is a Brave Search API client implementing Client.
type Brave struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

type BraveOption func(*Brave)

// WithEndpoint overrides the API endpoint. Used by tests.
func WithEndpoint(endpoint string) BraveOption {
	return func(b *Brave) { b.endpoint = strings.TrimSpace(endpoint) }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) BraveOption {
	return func(b *Brave) {
		if c != nil {
			b.http = c
		}
	}
}

func NewBrave(apiKey string, opts ...BraveOption) (*Brave, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("missing web search api key")
	}
	b := &Brave{
		apiKey:   apiKey,
		endpoint: braveDefaultEndpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

func (b *Brave) Results(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if b == nil {
		return nil, errors.New("nil client")
	}
	query = normalizeQuery(query)
	if query == "" {
		return nil, errors.New("missing query")
	}

	endpoint, err := url.Parse(b.endpoint)
	if err != nil || endpoint == nil {
		return nil, errors.New("invalid brave search endpoint")
	}
	q := endpoint.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(clampCount(maxResults)))
	endpoint.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, braveMaxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("brave web search failed (status %d)", resp.StatusCode)
		}
		return nil, errors.New(msg)
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.New("invalid brave web search response")
	}

	results := make([]Result, 0, len(decoded.Web.Results))
	for _, item := range decoded.Web.Results {
		link := strings.TrimSpace(item.URL)
		if link == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = link
		}
		results = append(results, Result{
			Title:   title,
			Snippet: strings.TrimSpace(item.Description),
			Link:    link,
		})
	}
	return results, nil
}
