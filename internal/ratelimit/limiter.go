// Package ratelimit provides blocking admission control for model calls.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a process-wide leaky bucket. Unlike an HTTP limiter it never
// rejects: Wait blocks the caller until capacity is available, so every
// model call eventually proceeds in arrival order of lock acquisition.
type Limiter struct {
	mu        sync.Mutex
	tokens    float64
	rate      float64 // tokens per second
	burst     float64 // max tokens
	interval  time.Duration
	updatedAt time.Time
	now       func() time.Time // for testing
	sleep     func(context.Context, time.Duration) error
}

// New creates a limiter with the given sustained rate (requests per second),
// burst size, and polling interval used while blocked. Non-positive values
// fall back to 1 rps, burst 1, interval 1s.
func New(rate float64, burst int, interval time.Duration) *Limiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	l := &Limiter{
		tokens:   float64(burst),
		rate:     rate,
		burst:    float64(burst),
		interval: interval,
		now:      time.Now,
	}
	l.updatedAt = l.now()
	l.sleep = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
	return l
}

// Wait blocks until one unit of capacity is available, then consumes it.
// Returns early only when the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.tryAcquire() {
			return nil
		}
		if err := l.sleep(ctx, l.interval); err != nil {
			return err
		}
	}
}

// tryAcquire refills based on elapsed time and consumes a token if one is
// available.
func (l *Limiter) tryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.updatedAt).Seconds()
	l.tokens += elapsed * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.updatedAt = now

	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// Tokens returns the current token count (for metrics and testing).
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	elapsed := now.Sub(l.updatedAt).Seconds()
	t := l.tokens + elapsed*l.rate
	if t > l.burst {
		t = l.burst
	}
	return t
}
