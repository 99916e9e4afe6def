// Package gateway defines the model-inference port. Adapters translate the
// neutral request into a concrete provider wire format.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
)

// Tool-choice modes. Required forces the model to call a tool; Auto lets it
// answer in free text.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceRequired = "required"
)

// ToolSchema advertises one callable tool to the model.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema object
}

// Request is a single model invocation.
type Request struct {
	System     string
	Messages   []turn.Message
	Tools      []ToolSchema
	ToolChoice string
	// Model overrides the adapter's default model when set. Summarization
	// runs on a lighter model than the agent calls.
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Response is the model's answer: either free text or one tool call,
// carried on a regular assistant message.
type Response struct {
	Message   turn.Message
	TokensIn  int
	TokensOut int
}

// Gateway performs chat completions. Implementations are expected to be
// safe for concurrent use; rate admission happens in the caller, not here.
type Gateway interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
