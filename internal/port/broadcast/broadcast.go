// Package broadcast defines the fan-out port for live turn events.
package broadcast

import "context"

// Event is a single broadcast payload.
type Event struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	Agent    string `json:"agent,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Event types published by the orchestrator.
const (
	EventTurnStarted       = "turn.started"
	EventTurnCompleted     = "turn.completed"
	EventTurnFailed        = "turn.failed"
	EventTurnSuspended     = "turn.suspended"
	EventAgentActivated    = "agent.activated"
	EventToolExecuted      = "tool.executed"
	EventHistoryCompacted  = "history.compacted"
	EventApprovalRequested = "approval.requested"
	EventApprovalResolved  = "approval.resolved"
)

// Broadcaster delivers events to all connected observers. Delivery is best
// effort; slow consumers must not block the orchestrator.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev Event)
}
