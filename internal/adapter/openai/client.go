// Package openai implements the model gateway port against an
// OpenAI-compatible chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/resilience"
)

// compile-time interface check
var _ gateway.Gateway = (*Client)(nil)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates a gateway client. model and maxTokens are the defaults
// applied when a request does not set its own.
func NewClient(baseURL, apiKey, model string, maxTokens int, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// wire types for the chat completions API

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type completionRequest struct {
	Model             string        `json:"model"`
	Messages          []wireMessage `json:"messages"`
	Tools             []wireTool    `json:"tools,omitempty"`
	ToolChoice        string        `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool         `json:"parallel_tool_calls,omitempty"`
	MaxTokens         int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete performs one chat completion.
func (c *Client) Complete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return gateway.Response{}, fmt.Errorf("marshal completion request: %w", err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	raw, err := c.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return gateway.Response{}, fmt.Errorf("completion: %w", err)
	}

	var resp completionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return gateway.Response{}, fmt.Errorf("unmarshal completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return gateway.Response{}, fmt.Errorf("completion: empty choices")
	}

	msg := turn.NewMessage(turn.RoleAssistant, "", resp.Choices[0].Message.Content)
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, turn.ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: json.RawMessage(tc.Function.Arguments),
		})
	}

	return gateway.Response{
		Message:   msg,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// buildRequest translates the neutral request into the provider wire format.
// Parallel tool calls are always disabled: the orchestrator handles exactly
// one tool call per assistant message.
func (c *Client) buildRequest(req gateway.Request) completionRequest {
	out := completionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
	}
	if req.Model != "" {
		out.Model = req.Model
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = req.MaxTokens
	}

	if req.System != "" {
		out.Messages = append(out.Messages, wireMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, toWire(m))
	}

	for _, t := range req.Tools {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = t.Name
		wt.Function.Description = t.Description
		wt.Function.Parameters = t.Parameters
		out.Tools = append(out.Tools, wt)
	}

	if len(out.Tools) > 0 {
		out.ToolChoice = req.ToolChoice
		parallel := false
		out.ParallelToolCalls = &parallel
	}
	return out
}

func toWire(m turn.Message) wireMessage {
	w := wireMessage{Content: m.Content}
	switch m.Role {
	case turn.RoleHuman:
		w.Role = "user"
	case turn.RoleTool:
		w.Role = "tool"
		w.ToolCallID = m.ToolCallID
	default:
		w.Role = "assistant"
		for _, tc := range m.ToolCalls {
			var wtc wireToolCall
			wtc.ID = tc.ID
			wtc.Type = "function"
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = string(tc.Args)
			w.ToolCalls = append(w.ToolCalls, wtc)
		}
	}
	return w
}

func (c *Client) doRequest(ctx context.Context, path string, body []byte) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("status %d: %s", resp.StatusCode, data)
		}
		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}
