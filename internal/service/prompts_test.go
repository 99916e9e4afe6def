package service

import (
	"strings"
	"testing"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/config"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
)

func TestDatePreambleFormat(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 4, 0, 0, time.UTC)
	got := DatePreamble(now, time.UTC)

	want := "<current_date>\nMonday, 03/02/2026, Time: 03:04 PM\n</current_date>"
	if got != want {
		t.Errorf("unexpected preamble:\nwant %q\ngot  %q", want, got)
	}
}

func TestDatePreambleConvertsTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	got := DatePreamble(now, loc)
	if !strings.Contains(got, "12:00 PM") {
		t.Errorf("expected the time rendered in the business timezone, got %q", got)
	}
}

func TestPersonaPromptsCoverAllRoles(t *testing.T) {
	prompts := PersonaPrompts(config.Defaults().Booking)

	for _, role := range []string{agent.Supervisor, agent.Knowledge, agent.CustomerService, agent.Secretary} {
		if prompts[role] == "" {
			t.Errorf("missing persona for %s", role)
		}
	}
	if !strings.Contains(prompts[agent.Supervisor], "finish_execution") {
		t.Error("supervisor persona must reference finish_execution")
	}
	if !strings.Contains(prompts[agent.Secretary], "09:00") {
		t.Error("secretary persona must carry the business hours")
	}
}
