package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
)

// Guard messages folded back to the supervisor when a routing rule is
// violated. They are recoverable: the supervisor sees them as tool results
// and picks again.
const (
	guardRepeatHandoff = "You can't transfer to the same agent twice in a row! Use finish_execution tool to hand back to user or pick another agent!"
	guardEarlyFinish   = "You must transfer to at least one agent before finishing the execution! Analyze the conversation and transfer to the most suitable agent!"
)

// runSupervisor performs one routing decision. The model is forced to call a
// tool; free text is a contract violation that loops the supervisor instead
// of terminating the turn.
func (o *Orchestrator) runSupervisor(ctx context.Context, st *turn.State, rt *runtime) (string, error) {
	def, _ := o.team.ByName(agent.Supervisor)

	resp, err := o.gw.Complete(ctx, gateway.Request{
		System:     o.systemPrompt(def),
		Messages:   st.Messages,
		Tools:      supervisorSchemas(),
		ToolChoice: gateway.ToolChoiceRequired,
		MaxTokens:  o.maxTokens,
		Timeout:    o.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("supervisor completion: %w", err)
	}

	msg := resp.Message
	msg.Author = turn.AuthorSupervisor
	st.Append(msg)

	if !msg.HasToolCall() {
		rt.retries++
		if rt.retries > o.turnCfg.MaxRetries {
			return "", fmt.Errorf("supervisor produced free text %d times in a row", rt.retries)
		}
		o.log.Warn("supervisor answered in free text, retrying",
			"thread_id", rt.threadID, "retry", rt.retries)
		return nodeSupervisor, nil
	}
	rt.retries = 0

	call := msg.ToolCalls[0]
	if call.Name == agent.ToolFinishExecution {
		return o.finishExecution(st, call)
	}
	return o.handoff(st, call, rt)
}

// handoff validates and applies a transfer to a worker agent.
func (o *Orchestrator) handoff(st *turn.State, call turn.ToolCall, rt *runtime) (string, error) {
	target, ok := agent.HandoffTargets[call.Name]
	if !ok {
		st.Append(toolResult(call, fmt.Sprintf("Unknown tool %q. Pick one of the available tools.", call.Name)))
		return nodeSupervisor, nil
	}

	if st.LastActiveAgent == target {
		st.Append(toolResult(call, guardRepeatHandoff))
		return nodeSupervisor, nil
	}

	var args struct {
		TaskDescription string `json:"task_description"`
	}
	_ = json.Unmarshal(call.Args, &args)

	st.Append(toolResult(call, fmt.Sprintf("Transfering to %s with instructions", target)))
	// The task description enters the history as a human message authored by
	// the supervisor so the worker sees it as its instruction.
	st.Append(turn.NewMessage(turn.RoleHuman, turn.AuthorSupervisor, args.TaskDescription))
	st.LastActiveAgent = target

	o.log.Info("handoff", "thread_id", rt.threadID, "agent", target)
	return target, nil
}

// finishExecution validates the finish precondition and clears the routing
// marker, which re-arms the anti-repeat guard for the next turn.
func (o *Orchestrator) finishExecution(st *turn.State, call turn.ToolCall) (string, error) {
	if st.LastActiveAgent == "" {
		st.Append(toolResult(call, guardEarlyFinish))
		return nodeSupervisor, nil
	}

	st.LastActiveAgent = ""
	st.Append(toolResult(call, "Finishing agents work and proceeding to personality node..."))
	return nodeFinalizer, nil
}

// supervisorSchemas advertises the routing tools: one transfer per worker
// plus finish_execution.
func supervisorSchemas() []gateway.ToolSchema {
	taskParams := json.RawMessage(`{
		"type": "object",
		"properties": {
			"task_description": {"type": "string", "description": "Brief description of what the next agent should do"}
		},
		"required": ["task_description"]
	}`)

	return []gateway.ToolSchema{
		{
			Name:        agent.ToolTransferToKnowledge,
			Description: "Transfer to knowledge_agent",
			Parameters:  taskParams,
		},
		{
			Name:        agent.ToolTransferToCustomerService,
			Description: "Transfer to customer_service_agent",
			Parameters:  taskParams,
		},
		{
			Name:        agent.ToolTransferToSecretary,
			Description: "Transfer to secretary_agent",
			Parameters:  taskParams,
		},
		{
			Name:        agent.ToolFinishExecution,
			Description: "Finish the execution and hand back answer to user",
			Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		},
	}
}
