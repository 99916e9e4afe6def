// Package crm holds the customer-facing records the worker tools operate on:
// user profiles, support calls, appointments, and knowledge documents.
package crm

import (
	"errors"
	"strings"
	"time"
)

// UserInfo is the customer profile looked up by nickname.
type UserInfo struct {
	ID        string
	Nickname  string
	FullName  string
	Email     string
	Phone     string
	Plan      string
	Notes     string
	CreatedAt time.Time
}

// SupportCall is an escalation ticket opened on behalf of a user.
type SupportCall struct {
	ID        string
	Nickname  string
	Subject   string
	Details   string
	Status    string
	CreatedAt time.Time
}

// Support call statuses.
const (
	CallOpen   = "open"
	CallClosed = "closed"
)

// Validate checks the fields required to open a call.
func (c SupportCall) Validate() error {
	if strings.TrimSpace(c.Nickname) == "" {
		return errors.New("support call: nickname is required")
	}
	if strings.TrimSpace(c.Subject) == "" {
		return errors.New("support call: subject is required")
	}
	return nil
}

// Appointment is a booked calendar slot. StartsAt is stored in UTC; booking
// rules are evaluated in the business timezone.
type Appointment struct {
	ID        string
	Nickname  string
	Title     string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}

// Validate checks the fields required to book a slot.
func (a Appointment) Validate() error {
	if strings.TrimSpace(a.Nickname) == "" {
		return errors.New("appointment: nickname is required")
	}
	if a.StartsAt.IsZero() {
		return errors.New("appointment: start time is required")
	}
	if !a.EndsAt.After(a.StartsAt) {
		return errors.New("appointment: end must be after start")
	}
	return nil
}

// Document is one chunk of ingested knowledge-base content.
type Document struct {
	ID        string
	Source    string
	Content   string
	CreatedAt time.Time
}
