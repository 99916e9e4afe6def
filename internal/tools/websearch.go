package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/websearch"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// compile-time interface check
var _ toolbox.Tool = (*WebSearchTool)(nil)

// WebSearchTool searches the public web through the search API client.
type WebSearchTool struct {
	client Searcher
}

// NewWebSearchTool creates the tool.
func NewWebSearchTool(client Searcher) *WebSearchTool {
	return &WebSearchTool{client: client}
}

func (t *WebSearchTool) Name() string { return "web_search_tool" }

func (t *WebSearchTool) Description() string {
	return "Web search tool using the Tavily Search API. Returns a list of results with title, url and content."
}

func (t *WebSearchTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Search query"}
		},
		"required": ["query"]
	}`)
}

func (t *WebSearchTool) Execute(ctx context.Context, args json.RawMessage, _ toolbox.Context) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("web search args: %w", err)
	}

	results, err := t.client.Search(ctx, in.Query)
	if err != nil {
		return fmt.Sprintf("Web search failed: %v", err), nil
	}
	return websearch.FormatResults(results), nil
}
