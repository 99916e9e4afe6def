// Package websearch provides a client for the Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Client talks to the Tavily HTTP API. A semaphore caps concurrent searches
// so a burst of knowledge-agent turns cannot exhaust the provider quota.
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
	sem        *semaphore.Weighted
}

// NewClient creates a search client. maxConcurrent bounds in-flight searches.
func NewClient(baseURL, apiKey string, maxResults int, maxConcurrent int64) *Client {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Search runs one web search and returns the top results.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("search slot: %w", err)
	}
	defer c.sem.Release(1)

	body, err := json.Marshal(map[string]any{
		"query":       query,
		"max_results": c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode, data)
	}

	var parsed struct {
		Results []Result `json:"results"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}
	return parsed.Results, nil
}

// FormatResults renders results as a plain-text block for the model.
func FormatResults(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return strings.TrimSpace(b.String())
}
