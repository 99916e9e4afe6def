package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// SupportCallStore is the persistence surface the tool needs.
type SupportCallStore interface {
	CreateSupportCall(ctx context.Context, c *crm.SupportCall) (*crm.SupportCall, error)
}

// compile-time interface check
var _ toolbox.Tool = (*SupportCallTool)(nil)

// SupportCallTool opens an escalation ticket for the human support team.
type SupportCallTool struct {
	store SupportCallStore
}

// NewSupportCallTool creates the tool.
func NewSupportCallTool(store SupportCallStore) *SupportCallTool {
	return &SupportCallTool{store: store}
}

func (t *SupportCallTool) Name() string { return "new_support_call" }

func (t *SupportCallTool) Description() string {
	return "Register a new customer service call for human team assessment."
}

func (t *SupportCallTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"user_id": {"type": "string", "description": "ID of the user (uuid retrieved from database)"},
			"issue_description": {"type": "string", "description": "Description of the issue"}
		},
		"required": ["user_id", "issue_description"]
	}`)
}

func (t *SupportCallTool) Execute(ctx context.Context, args json.RawMessage, tc toolbox.Context) (string, error) {
	var in struct {
		UserID           string `json:"user_id"`
		IssueDescription string `json:"issue_description"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return fmt.Sprintf("An error occurred while opening the call: %v", err), nil
	}

	call := &crm.SupportCall{
		Nickname: tc.Nickname,
		Subject:  in.IssueDescription,
		Details:  fmt.Sprintf("user_id: %s", in.UserID),
	}
	if _, err := t.store.CreateSupportCall(ctx, call); err != nil {
		return fmt.Sprintf("An error occurred while opening the call: %v", err), nil
	}
	return "Successfully opened support call! Tell the user to wait for responsible team to get back to them...", nil
}
