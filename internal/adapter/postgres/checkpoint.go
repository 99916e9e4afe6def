package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/checkpoint"
)

// compile-time interface check
var _ checkpoint.Store = (*Store)(nil)

// Load returns the latest checkpoint for the thread. The whole state travels
// as one JSONB document, so a read always sees a single atomic write.
func (s *Store) Load(ctx context.Context, threadID string) (*turn.State, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM checkpoints WHERE thread_id = $1`,
		threadID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load checkpoint %s: %w", threadID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}

	var st turn.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", threadID, err)
	}
	return &st, nil
}

// Save upserts the thread's checkpoint in one statement.
func (s *Store) Save(ctx context.Context, threadID string, state *turn.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", threadID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO checkpoints (thread_id, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (thread_id) DO UPDATE
		 SET state = EXCLUDED.state, updated_at = now()`,
		threadID, raw,
	)
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", threadID, err)
	}
	return nil
}
