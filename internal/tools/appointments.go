package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/config"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// AppointmentStore is the persistence surface the scheduling tools need.
type AppointmentStore interface {
	ListAppointments(ctx context.Context, from, to time.Time) ([]crm.Appointment, error)
	CreateAppointment(ctx context.Context, a *crm.Appointment) (*crm.Appointment, error)
}

const dateLayout = "01/02/2006"

// compile-time interface checks
var (
	_ toolbox.Tool = (*GetAppointmentsTool)(nil)
	_ toolbox.Tool = (*AddAppointmentTool)(nil)
)

// GetAppointmentsTool returns a single-day availability map in the business
// timezone: discretized busy start times plus the booking rules the model
// must respect.
type GetAppointmentsTool struct {
	store AppointmentStore
	cfg   config.Booking
	loc   *time.Location
	now   func() time.Time // for testing
}

// NewGetAppointmentsTool creates the tool. Falls back to UTC when the
// configured timezone cannot be loaded.
func NewGetAppointmentsTool(store AppointmentStore, cfg config.Booking) *GetAppointmentsTool {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &GetAppointmentsTool{store: store, cfg: cfg, loc: loc, now: time.Now}
}

func (t *GetAppointmentsTool) Name() string { return "get_appointments" }

func (t *GetAppointmentsTool) Description() string {
	return "Query appointments and return a structured JSON with availabilities/unavailabilities of the specified day."
}

func (t *GetAppointmentsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"date_str": {"type": "string", "description": "Date in the format 'MM/DD/YYYY' (business timezone). Defaults to today."}
		},
		"required": []
	}`)
}

func (t *GetAppointmentsTool) Execute(ctx context.Context, args json.RawMessage, _ toolbox.Context) (string, error) {
	var in struct {
		DateStr string `json:"date_str"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("get_appointments args: %w", err)
		}
	}

	now := t.now().In(t.loc)
	today := truncateToDay(now)
	maxDay := today.AddDate(0, 0, t.cfg.MaxDaysAhead)

	target := today
	if in.DateStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, in.DateStr, t.loc)
		if err != nil {
			return errJSON("INVALID_DATE", fmt.Sprintf("Use the format MM/DD/YYYY. Only dates between %s and %s are allowed.",
				today.Format(dateLayout), maxDay.Format(dateLayout))), nil
		}
		target = parsed
	}

	if target.Before(today) {
		return errJSON("DATE_IN_PAST", fmt.Sprintf("The given date is in the past. Today is %s.", today.Format(dateLayout))), nil
	}
	if target.After(maxDay) {
		return errJSON("DATE_OUT_OF_RANGE", fmt.Sprintf("The date is beyond the %d-day booking limit. Allowed until %s.",
			t.cfg.MaxDaysAhead, maxDay.Format(dateLayout))), nil
	}

	dayStart := target.Add(time.Duration(t.cfg.OpenHour) * time.Hour)
	dayEnd := target.Add(time.Duration(t.cfg.CloseHour) * time.Hour)

	booked, err := t.store.ListAppointments(ctx, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return "", fmt.Errorf("list appointments: %w", err)
	}

	busy := busySlots(booked, dayStart, dayEnd, t.cfg.SlotMinutes, t.loc)

	payload := map[string]any{
		"busy": map[string]any{
			"duration_minutes": t.cfg.SlotMinutes,
			"step_minutes":     t.cfg.SlotMinutes,
			"queried_days":     []string{target.Format(dateLayout)},
			"busy_times_by_day": map[string][]string{
				target.Format(dateLayout): busy,
			},
		},
		"context": map[string]any{
			"workday_start":         fmt.Sprintf("%02d:00", t.cfg.OpenHour),
			"workday_end":           fmt.Sprintf("%02d:00", t.cfg.CloseHour),
			"book_ahead_limit_days": t.cfg.MaxDaysAhead,
			"date_requested":        target.Format(dateLayout),
		},
		"rules": []string{
			fmt.Sprintf("Business hours: %02d:00 - %02d:00 (%s time).", t.cfg.OpenHour, t.cfg.CloseHour, t.cfg.Timezone),
			fmt.Sprintf("Appointments only up to %d days in advance.", t.cfg.MaxDaysAhead),
			fmt.Sprintf("Interval between options: %d minutes.", t.cfg.SlotMinutes),
			"Respect already busy times.",
			"It is FORBIDDEN to suggest any option in the past, even if it is not listed as busy.",
			"Always check the current time before suggesting an option!",
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode availability: %w", err)
	}
	return string(data), nil
}

// busySlots discretizes booked intervals into slot start times ("HH:MM")
// within the business window. A slot is busy when it overlaps any booking.
func busySlots(booked []crm.Appointment, dayStart, dayEnd time.Time, slotMinutes int, loc *time.Location) []string {
	step := time.Duration(slotMinutes) * time.Minute
	busy := []string{}
	for slot := dayStart; slot.Add(step).Before(dayEnd) || slot.Add(step).Equal(dayEnd); slot = slot.Add(step) {
		slotEnd := slot.Add(step)
		for _, a := range booked {
			if a.StartsAt.In(loc).Before(slotEnd) && a.EndsAt.In(loc).After(slot) {
				busy = append(busy, slot.Format("15:04"))
				break
			}
		}
	}
	return busy
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func errJSON(code, message string) string {
	data, _ := json.Marshal(map[string]string{
		"error":   code,
		"message": message,
	})
	return string(data)
}

// AddAppointmentTool books a slot, gated behind human approval. The first
// invocation always suspends with an ApprovalError; the re-invocation
// carries the human decision and either books or reports the rejection.
type AddAppointmentTool struct {
	store AppointmentStore
}

// NewAddAppointmentTool creates the tool.
func NewAddAppointmentTool(store AppointmentStore) *AddAppointmentTool {
	return &AddAppointmentTool{store: store}
}

func (t *AddAppointmentTool) Name() string { return "add_appointment" }

func (t *AddAppointmentTool) Description() string {
	return "Tool used to add a new appointment (online meetings) with identity checking purposes."
}

func (t *AddAppointmentTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"user_id": {"type": "string", "description": "User ID retrieved by customer_service_agent"},
			"start_time": {"type": "string", "description": "Start date and time of the appointment (UTC timezone timestamp format)"},
			"end_time": {"type": "string", "description": "End date and time of the appointment (UTC timezone timestamp format)"}
		},
		"required": ["user_id", "start_time", "end_time"]
	}`)
}

func (t *AddAppointmentTool) Execute(ctx context.Context, args json.RawMessage, tc toolbox.Context) (string, error) {
	var in struct {
		UserID    string    `json:"user_id"`
		StartTime time.Time `json:"start_time"`
		EndTime   time.Time `json:"end_time"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return fmt.Sprintf("Unknown error: %v", err), nil
	}

	if tc.Decision == "" {
		return "", &toolbox.ApprovalError{
			Prompt: fmt.Sprintf(
				"Trying to call `add_appointment` with args {'user_id': %s, 'start_time': %s, 'end_time': %s}. "+
					"Do you approve this appointment? \nPlease answer with 'YES' or 'NO'.",
				in.UserID, in.StartTime.Format(time.RFC3339), in.EndTime.Format(time.RFC3339),
			),
		}
	}

	if !strings.EqualFold(strings.TrimSpace(tc.Decision), "YES") {
		return "Human intervention rejected the appointment. " +
			"Please, tell the user a customer success specialist will reach out soon in person. " +
			"When it happens, both will find the best time to schedule the appointment.", nil
	}

	appt := &crm.Appointment{
		Nickname: tc.Nickname,
		Title:    fmt.Sprintf("Meeting for user %s", in.UserID),
		StartsAt: in.StartTime.UTC(),
		EndsAt:   in.EndTime.UTC(),
	}
	if _, err := t.store.CreateAppointment(ctx, appt); err != nil {
		return fmt.Sprintf("Unknown error: %v", err), nil
	}
	return "Appointment added successfully!", nil
}
