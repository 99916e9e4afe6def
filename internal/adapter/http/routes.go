package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/middleware"
)

// NewRouter builds the API router with the standard middleware stack. The
// health endpoint stays outside the rate limiter so probes never get a 429.
func NewRouter(h *Handlers, wsHandler http.HandlerFunc, requestTimeout time.Duration, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/healthz", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Handler)
		}
		r.Method(http.MethodPost, "/turns", otelhttp.NewHandler(http.HandlerFunc(h.HandleTurn), "turns"))
		r.Get("/threads/{id}", h.GetThread)
		r.Get("/turns/{thread}/pending", h.GetPendingApproval)
		r.Post("/documents", h.HandleIngest)
	})

	if wsHandler != nil {
		r.Get("/ws", wsHandler)
	}

	return r
}
