// Package memory provides an in-memory checkpoint store for tests and
// single-process development.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/checkpoint"
)

// compile-time interface check
var _ checkpoint.Store = (*CheckpointStore)(nil)

// CheckpointStore keeps thread states in a map. States are deep-copied
// through JSON on both paths so callers never share memory with the store.
type CheckpointStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewCheckpointStore creates an empty store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{states: make(map[string][]byte)}
}

// Load returns a copy of the thread's state.
func (s *CheckpointStore) Load(_ context.Context, threadID string) (*turn.State, error) {
	s.mu.RLock()
	raw, ok := s.states[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, domain.ErrNotFound)
	}

	var st turn.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &st, nil
}

// Save stores a copy of the state.
func (s *CheckpointStore) Save(_ context.Context, threadID string, state *turn.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", threadID, err)
	}

	s.mu.Lock()
	s.states[threadID] = raw
	s.mu.Unlock()
	return nil
}
