package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for range 3 {
		_ = b.Execute(func() error { return errUpstream })
	}

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	for range 10 {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	_ = b.Execute(func() error { return errUpstream })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errUpstream })

	// Only one consecutive failure: circuit must still admit calls.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errUpstream })
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}

	// After the cooldown one probe is admitted; success closes the circuit.
	now = now.Add(2 * time.Minute)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected probe to succeed, got %v", err)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed circuit after probe, got %v", err)
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errUpstream })
	now = now.Add(2 * time.Minute)
	_ = b.Execute(func() error { return errUpstream })

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}
