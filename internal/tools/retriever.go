package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/cache"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// DocumentSearcher is the persistence surface the tool needs.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, query string, limit int) ([]crm.Document, error)
}

// compile-time interface check
var _ toolbox.Tool = (*RetrieverTool)(nil)

// RetrieverTool searches the ingested knowledge base.
type RetrieverTool struct {
	store DocumentSearcher
	cache cache.Cache
	limit int
	ttl   time.Duration
}

// NewRetrieverTool creates the tool. cache may be nil.
func NewRetrieverTool(store DocumentSearcher, c cache.Cache, limit int, ttl time.Duration) *RetrieverTool {
	if limit <= 0 {
		limit = 5
	}
	return &RetrieverTool{store: store, cache: c, limit: limit, ttl: ttl}
}

func (t *RetrieverTool) Name() string { return "retriever_tool" }

func (t *RetrieverTool) Description() string {
	return "Use this tool to retrieve relevant documents from the knowledge base based on the user's input."
}

func (t *RetrieverTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "Search query against the knowledge base"}
		},
		"required": ["query"]
	}`)
}

func (t *RetrieverTool) Execute(ctx context.Context, args json.RawMessage, _ toolbox.Context) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("retriever args: %w", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return "No documents found.", nil
	}

	key := "retriever:" + in.Query
	if t.cache != nil {
		if data, ok := t.cache.Get(key); ok {
			return string(data), nil
		}
	}

	docs, err := t.store.SearchDocuments(ctx, in.Query, t.limit)
	if err != nil {
		return "", fmt.Errorf("search documents: %w", err)
	}
	if len(docs) == 0 {
		return "No documents found.", nil
	}

	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, d.Source, d.Content)
	}
	result := strings.TrimSpace(b.String())

	if t.cache != nil {
		t.cache.Set(key, []byte(result), t.ttl)
	}
	return result, nil
}
