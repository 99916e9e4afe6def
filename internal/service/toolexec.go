package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// toolResult builds the tool-result message closing a tool call cycle.
func toolResult(call turn.ToolCall, content string) turn.Message {
	m := turn.NewMessage(turn.RoleTool, call.Name, content)
	m.ToolCallID = call.ID
	return m
}

// executeTool runs one tool call and folds the outcome into a tool-result
// message. An ApprovalError is returned unchanged so the caller can suspend
// the turn; every other failure becomes recoverable content the model sees
// on the next step.
func executeTool(ctx context.Context, registry toolbox.Registry, call turn.ToolCall, tc toolbox.Context) (turn.Message, error) {
	tool, ok := registry.Lookup(call.Name)
	if !ok {
		return toolResult(call, fmt.Sprintf("Unknown tool %q. Pick one of the available tools.", call.Name)), nil
	}

	out, err := tool.Execute(ctx, call.Args, tc)
	if err != nil {
		var approval *toolbox.ApprovalError
		if errors.As(err, &approval) {
			return turn.Message{}, err
		}
		return toolResult(call, fmt.Sprintf("Error executing tool %s: %v", call.Name, err)), nil
	}
	return toolResult(call, out), nil
}
