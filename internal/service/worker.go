package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/broadcast"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// runWorker performs one worker step: a model call followed by at most one
// tool execution. A tool call loops back into the same worker; free text
// hands control back to the supervisor.
func (o *Orchestrator) runWorker(ctx context.Context, name string, st *turn.State, rt *runtime) (string, error) {
	def, ok := o.team.ByName(name)
	if !ok {
		return "", fmt.Errorf("unknown agent %q", name)
	}

	o.emit(ctx, broadcast.Event{Type: broadcast.EventAgentActivated, ThreadID: rt.threadID, Agent: name})

	resp, err := o.gw.Complete(ctx, gateway.Request{
		System:     o.systemPrompt(def),
		Messages:   st.Messages,
		Tools:      o.workerSchemas(def.Tools),
		ToolChoice: gateway.ToolChoiceAuto,
		MaxTokens:  o.maxTokens,
		Timeout:    o.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("%s completion: %w", name, err)
	}

	msg := resp.Message
	msg.Author = name
	st.Append(msg)

	if !msg.HasToolCall() {
		return nodeSupervisor, nil
	}

	call := msg.ToolCalls[0]
	return o.invokeWorkerTool(ctx, name, call, "", st, rt)
}

// resumePending re-invokes the suspended tool with the human decision and
// routes control back to the worker that issued the call.
func (o *Orchestrator) resumePending(ctx context.Context, decision string, st *turn.State, rt *runtime) (string, error) {
	pending := st.Pending
	st.Pending = nil

	o.emit(ctx, broadcast.Event{
		Type:     broadcast.EventApprovalResolved,
		ThreadID: rt.threadID,
		Agent:    pending.Agent,
		Detail:   decision,
	})
	o.log.Info("resuming suspended tool call",
		"thread_id", rt.threadID, "agent", pending.Agent, "tool", pending.Call.Name)

	return o.invokeWorkerTool(ctx, pending.Agent, pending.Call, decision, st, rt)
}

// invokeWorkerTool executes one tool call on behalf of a worker. An
// ApprovalError parks the turn with the call recorded for later resumption.
func (o *Orchestrator) invokeWorkerTool(ctx context.Context, agentName string, call turn.ToolCall, decision string, st *turn.State, rt *runtime) (string, error) {
	tc := toolbox.Context{
		ThreadID: rt.threadID,
		Nickname: rt.nickname,
		Decision: decision,
	}

	result, err := executeTool(ctx, o.registry, call, tc)
	if err != nil {
		var approval *toolbox.ApprovalError
		if errors.As(err, &approval) {
			st.Pending = &turn.PendingCall{
				Agent:  agentName,
				Call:   call,
				Prompt: approval.Prompt,
			}
			return nodeSuspend, nil
		}
		return "", fmt.Errorf("tool %s: %w", call.Name, err)
	}

	st.Append(result)
	if o.metrics != nil {
		o.metrics.ToolCalls.Add(ctx, 1)
	}
	o.emit(ctx, broadcast.Event{
		Type:     broadcast.EventToolExecuted,
		ThreadID: rt.threadID,
		Agent:    agentName,
		Detail:   call.Name,
	})

	return agentName, nil
}

// workerSchemas resolves the agent's tool names against the registry.
func (o *Orchestrator) workerSchemas(names []string) []gateway.ToolSchema {
	schemas := make([]gateway.ToolSchema, 0, len(names))
	for _, name := range names {
		t, ok := o.registry.Lookup(name)
		if !ok {
			o.log.Warn("tool not registered", "tool", name)
			continue
		}
		schemas = append(schemas, gateway.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return schemas
}
