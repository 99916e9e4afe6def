package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/memory"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/middleware"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/service"
)

func testRouter(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()

	store := memory.NewCheckpointStore()
	st := &turn.State{Pending: &turn.PendingCall{
		Agent:  agent.Secretary,
		Call:   turn.ToolCall{ID: "c1", Name: "add_appointment"},
		Prompt: "Do you approve this appointment?",
	}}
	if err := store.Save(context.Background(), "t1", st); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	team := service.NewTeam(nil, store, nil, nil, nil, log)
	ingestor := service.NewIngestor(nil, log)
	h := NewHandlers(team, ingestor, log)
	return NewRouter(h, nil, time.Minute, limiter)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesHealth(t *testing.T) {
	router := testRouter(t, nil)

	if rec := get(t, router, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRoutesThreadCheckpoint(t *testing.T) {
	router := testRouter(t, nil)

	if rec := get(t, router, "/api/v1/threads/t1"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for an existing thread, got %d", rec.Code)
	}
	if rec := get(t, router, "/api/v1/threads/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing thread, got %d", rec.Code)
	}
}

func TestRoutesPendingApproval(t *testing.T) {
	router := testRouter(t, nil)

	rec := get(t, router, "/api/v1/turns/t1/pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "add_appointment") {
		t.Errorf("expected the pending call in the body, got %s", rec.Body.String())
	}
}

func TestRoutesDocumentsRequiresURLs(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(`{"urls":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an empty url list, got %d", rec.Code)
	}
}

func TestRoutesRateLimited(t *testing.T) {
	router := testRouter(t, middleware.NewRateLimiter(1, 1))

	if rec := get(t, router, "/api/v1/turns/t1/pending"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := get(t, router, "/api/v1/turns/t1/pending"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 past burst, got %d", rec.Code)
	}
	// Liveness probes sit outside the limited group.
	if rec := get(t, router, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on health, got %d", rec.Code)
	}
}
