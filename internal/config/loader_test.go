package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Compaction.Threshold != 30 || cfg.Compaction.KeepLast != 4 {
		t.Errorf("unexpected compaction defaults: %+v", cfg.Compaction)
	}
	if cfg.Turn.MaxNodeVisits != 25 || cfg.Turn.MaxRetries != 8 {
		t.Errorf("unexpected turn defaults: %+v", cfg.Turn)
	}
	if cfg.Booking.OpenHour != 9 || cfg.Booking.CloseHour != 18 {
		t.Errorf("unexpected booking defaults: %+v", cfg.Booking)
	}
	if cfg.Rate.RequestsPerSecond != 1 || cfg.Rate.Burst != 1 {
		t.Errorf("unexpected rate defaults: %+v", cfg.Rate)
	}
}

func TestLoadFromYAMLOverride(t *testing.T) {
	yaml := `
server:
  port: "9999"
compaction:
  threshold: 50
  keep_last: 6
rate:
  requests_per_second: 2.5
  burst: 3
`
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("expected yaml port 9999, got %s", cfg.Server.Port)
	}
	if cfg.Compaction.Threshold != 50 || cfg.Compaction.KeepLast != 6 {
		t.Errorf("unexpected compaction: %+v", cfg.Compaction)
	}
	if cfg.Rate.RequestsPerSecond != 2.5 || cfg.Rate.Burst != 3 {
		t.Errorf("unexpected rate: %+v", cfg.Rate)
	}
	// Untouched sections keep their defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default nats url, got %s", cfg.NATS.URL)
	}
}

func TestLoadFromEnvOverridesYAML(t *testing.T) {
	yaml := "server:\n  port: \"9999\"\n"
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("SWARM_PORT", "7777")
	t.Setenv("SWARM_RATE_RPS", "4")
	t.Setenv("SWARM_GATEWAY_TIMEOUT", "90s")
	t.Setenv("SWARM_TELEMETRY_ENABLED", "true")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("expected env port to win, got %s", cfg.Server.Port)
	}
	if cfg.Rate.RequestsPerSecond != 4 {
		t.Errorf("expected rps 4, got %v", cfg.Rate.RequestsPerSecond)
	}
	if cfg.Gateway.RequestTimeout != 90*time.Second {
		t.Errorf("expected 90s gateway timeout, got %v", cfg.Gateway.RequestTimeout)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled")
	}
}

func TestLoadFromRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "empty port",
			yaml: "server:\n  port: \"\"\n",
			want: "server.port",
		},
		{
			name: "zero burst",
			yaml: "rate:\n  burst: 0\n",
			want: "rate.burst",
		},
		{
			name: "zero http rate",
			yaml: "server:\n  rate_limit_rps: 0\n",
			want: "server.rate_limit_rps",
		},
		{
			name: "zero http burst",
			yaml: "server:\n  rate_limit_burst: 0\n",
			want: "server.rate_limit_burst",
		},
		{
			name: "threshold below keep_last",
			yaml: "compaction:\n  threshold: 3\n  keep_last: 4\n",
			want: "compaction.threshold",
		},
		{
			name: "inverted business hours",
			yaml: "booking:\n  open_hour: 18\n  close_hour: 9\n",
			want: "booking.open_hour",
		},
		{
			name: "zero breaker threshold",
			yaml: "breaker:\n  max_failures: 0\n",
			want: "breaker.max_failures",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "swarm.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o600); err != nil {
				t.Fatalf("write yaml: %v", err)
			}
			_, err := LoadFrom(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadFromRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}
