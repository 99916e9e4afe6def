// Package checkpoint defines the durable turn-state persistence port.
package checkpoint

import (
	"context"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
)

// Store persists the canonical conversation state per thread. Save is called
// after every node transition, so an implementation must make the write
// atomic per thread: a reader sees either the previous or the new state,
// never a partial one.
type Store interface {
	// Load returns the state for the thread, or domain.ErrNotFound when the
	// thread has no checkpoint yet.
	Load(ctx context.Context, threadID string) (*turn.State, error)
	// Save replaces the thread's checkpoint with the given state.
	Save(ctx context.Context, threadID string, state *turn.State) error
}
