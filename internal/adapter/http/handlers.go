// Package http exposes the caller-facing REST API of the swarm service.
package http

import (
	"log/slog"
	"net/http"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/service"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Handlers carries the services the HTTP layer dispatches into.
type Handlers struct {
	team     *service.Team
	ingestor *service.Ingestor
	log      *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(team *service.Team, ingestor *service.Ingestor, log *slog.Logger) *Handlers {
	return &Handlers{team: team, ingestor: ingestor, log: log}
}

// HandleTurn runs one conversational turn. A suspended turn answers with the
// approval prompt instead of a reply; the caller resumes by sending the same
// thread_id with resume_decision set.
func (h *Handlers) HandleTurn(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[turn.Request](w, r, maxBodyBytes)
	if !ok {
		return
	}

	resp, err := h.team.HandleTurn(r.Context(), req)
	if err != nil {
		h.log.Error("turn request failed", "thread_id", req.ThreadID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if resp.Suspended() {
		writeJSON(w, http.StatusAccepted, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetThread returns the full checkpoint of a thread.
func (h *Handlers) GetThread(w http.ResponseWriter, r *http.Request) {
	threadID := urlParam(r, "id")

	st, err := h.team.ThreadState(r.Context(), threadID)
	if err != nil {
		writeDomainError(w, err, "thread not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// GetPendingApproval returns the suspended call of a thread, if any.
func (h *Handlers) GetPendingApproval(w http.ResponseWriter, r *http.Request) {
	threadID := urlParam(r, "thread")

	pending, err := h.team.PendingApproval(r.Context(), threadID)
	if err != nil {
		writeDomainError(w, err, "thread not found")
		return
	}
	if pending == nil {
		writeError(w, http.StatusNotFound, "no pending approval")
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

type ingestRequest struct {
	URLs []string `json:"urls"`
}

// HandleIngest fetches, chunks, and stores the given URLs in the knowledge
// base.
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[ingestRequest](w, r, maxBodyBytes)
	if !ok {
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls is required")
		return
	}

	results := h.ingestor.IngestURLs(r.Context(), req.URLs)
	writeJSON(w, http.StatusCreated, map[string]any{"results": results})
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
