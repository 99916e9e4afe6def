package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
)

// ListAppointments returns booked slots overlapping [from, to), ordered by
// start time.
func (s *Store) ListAppointments(ctx context.Context, from, to time.Time) ([]crm.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, nickname, title, starts_at, ends_at, created_at
		 FROM appointments
		 WHERE starts_at < $2 AND ends_at > $1
		 ORDER BY starts_at`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var result []crm.Appointment
	for rows.Next() {
		var a crm.Appointment
		if err := rows.Scan(&a.ID, &a.Nickname, &a.Title, &a.StartsAt, &a.EndsAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// CreateAppointment books a slot. The exclusion constraint on the table
// rejects overlapping bookings at the database level.
func (s *Store) CreateAppointment(ctx context.Context, a *crm.Appointment) (*crm.Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	var created crm.Appointment
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (nickname, title, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, nickname, title, starts_at, ends_at, created_at`,
		a.Nickname, a.Title, a.StartsAt, a.EndsAt,
	).Scan(&created.ID, &created.Nickname, &created.Title, &created.StartsAt, &created.EndsAt, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return &created, nil
}
