// Package messagequeue defines the durable event-stream port.
package messagequeue

import "context"

// Subjects for turn lifecycle and approval events.
const (
	SubjectTurnStarted   = "turns.started"
	SubjectTurnCompleted = "turns.completed"
	SubjectTurnFailed    = "turns.failed"
	SubjectTurnSuspended = "turns.suspended"

	SubjectApprovalRequested = "approvals.requested"
	SubjectApprovalResolved  = "approvals.resolved"

	// Wildcards for consumers.
	SubjectTurnsAll     = "turns.>"
	SubjectApprovalsAll = "approvals.>"
)

// Handler processes one delivered message. Returning an error leaves the
// message unacknowledged for redelivery.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is a durable publish/subscribe stream.
type Queue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler Handler) error
	Drain() error
	Close()
	IsConnected() bool
}
