package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
)

// GetUserInfo looks up a customer profile by nickname.
func (s *Store) GetUserInfo(ctx context.Context, nickname string) (*crm.UserInfo, error) {
	var u crm.UserInfo
	err := s.pool.QueryRow(ctx,
		`SELECT id, nickname, full_name, email, phone, plan, notes, created_at
		 FROM user_info WHERE nickname = $1`,
		nickname,
	).Scan(&u.ID, &u.Nickname, &u.FullName, &u.Email, &u.Phone, &u.Plan, &u.Notes, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user info %s: %w", nickname, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user info %s: %w", nickname, err)
	}
	return &u, nil
}

// CreateSupportCall opens a new support call for the user.
func (s *Store) CreateSupportCall(ctx context.Context, c *crm.SupportCall) (*crm.SupportCall, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var created crm.SupportCall
	err := s.pool.QueryRow(ctx,
		`INSERT INTO support_calls (nickname, subject, details, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, nickname, subject, details, status, created_at`,
		c.Nickname, c.Subject, c.Details, crm.CallOpen,
	).Scan(&created.ID, &created.Nickname, &created.Subject, &created.Details, &created.Status, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create support call: %w", err)
	}
	return &created, nil
}

// ListSupportCalls returns the user's calls, newest first.
func (s *Store) ListSupportCalls(ctx context.Context, nickname string) ([]crm.SupportCall, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, nickname, subject, details, status, created_at
		 FROM support_calls WHERE nickname = $1 ORDER BY created_at DESC`,
		nickname,
	)
	if err != nil {
		return nil, fmt.Errorf("list support calls: %w", err)
	}
	defer rows.Close()

	var result []crm.SupportCall
	for rows.Next() {
		var c crm.SupportCall
		if err := rows.Scan(&c.ID, &c.Nickname, &c.Subject, &c.Details, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan support call: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
