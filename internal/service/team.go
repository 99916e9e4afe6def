package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/otel"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/broadcast"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/checkpoint"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/messagequeue"
)

// Team is the caller-facing turn API. It serializes invocations per thread,
// loads and initializes checkpoints, and publishes lifecycle events to both
// the queue and the live broadcast hub.
type Team struct {
	orch        *Orchestrator
	store       checkpoint.Store
	queue       messagequeue.Queue
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
	log         *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTeam creates the turn service. queue, broadcaster, and metrics may be nil.
func NewTeam(orch *Orchestrator, store checkpoint.Store, queue messagequeue.Queue, broadcaster broadcast.Broadcaster, metrics *otel.Metrics, log *slog.Logger) *Team {
	return &Team{
		orch:        orch,
		store:       store,
		queue:       queue,
		broadcaster: broadcaster,
		metrics:     metrics,
		log:         log,
		locks:       make(map[string]*sync.Mutex),
	}
}

// TurnEvent is the payload published on the turn lifecycle subjects.
type TurnEvent struct {
	ThreadID string `json:"thread_id"`
	Nickname string `json:"nickname,omitempty"`
	Detail   string `json:"detail,omitempty"`
	At       string `json:"at"`
}

// HandleTurn runs one turn for the thread. Invocations on the same thread
// are serialized; concurrent callers block until the running turn finishes.
func (s *Team) HandleTurn(ctx context.Context, req turn.Request) (turn.Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return turn.Response{}, errors.New("message is required")
	}
	if req.ThreadID == "" {
		if req.Nickname == "" {
			return turn.Response{}, errors.New("thread_id or nickname is required")
		}
		req.ThreadID = "chat_history_" + req.Nickname
	}

	lock := s.threadLock(req.ThreadID)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.store.Load(ctx, req.ThreadID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return turn.Response{}, fmt.Errorf("load thread %s: %w", req.ThreadID, err)
		}
		st = &turn.State{}
	}

	start := time.Now()
	s.publish(ctx, messagequeue.SubjectTurnStarted, req, "")
	s.announce(ctx, broadcast.EventTurnStarted, req.ThreadID, "")
	if s.metrics != nil {
		s.metrics.TurnsStarted.Add(ctx, 1)
	}

	resp, err := s.orch.RunTurn(ctx, req, st)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.TurnDuration.Record(ctx, elapsed.Seconds())
	}

	switch {
	case err != nil:
		s.log.Error("turn failed", "thread_id", req.ThreadID, "error", err)
		s.publish(ctx, messagequeue.SubjectTurnFailed, req, err.Error())
		s.announce(ctx, broadcast.EventTurnFailed, req.ThreadID, err.Error())
		if s.metrics != nil {
			s.metrics.TurnsFailed.Add(ctx, 1)
		}
		return turn.Response{}, err

	case resp.Suspended():
		s.log.Info("turn suspended", "thread_id", req.ThreadID, "duration", elapsed)
		s.publish(ctx, messagequeue.SubjectTurnSuspended, req, resp.AwaitingDecision)
		s.publish(ctx, messagequeue.SubjectApprovalRequested, req, resp.AwaitingDecision)
		s.announce(ctx, broadcast.EventTurnSuspended, req.ThreadID, resp.AwaitingDecision)
		if s.metrics != nil {
			s.metrics.TurnsSuspended.Add(ctx, 1)
		}
		return resp, nil

	default:
		s.log.Info("turn completed", "thread_id", req.ThreadID, "duration", elapsed)
		s.publish(ctx, messagequeue.SubjectTurnCompleted, req, "")
		s.announce(ctx, broadcast.EventTurnCompleted, req.ThreadID, "")
		if req.ResumeDecision != "" {
			s.publish(ctx, messagequeue.SubjectApprovalResolved, req, req.ResumeDecision)
		}
		if s.metrics != nil {
			s.metrics.TurnsCompleted.Add(ctx, 1)
		}
		return resp, nil
	}
}

// ThreadState returns the current checkpoint of a thread.
func (s *Team) ThreadState(ctx context.Context, threadID string) (*turn.State, error) {
	return s.store.Load(ctx, threadID)
}

// PendingApproval returns the suspended call of a thread, or nil when the
// thread is not awaiting a decision.
func (s *Team) PendingApproval(ctx context.Context, threadID string) (*turn.PendingCall, error) {
	st, err := s.store.Load(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return st.Pending, nil
}

func (s *Team) threadLock(threadID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[threadID] = lock
	}
	return lock
}

// announce mirrors a lifecycle transition to connected observers. The
// orchestrator broadcasts the inner transitions; the turn boundary events
// originate here.
func (s *Team) announce(ctx context.Context, eventType, threadID, detail string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(ctx, broadcast.Event{
		Type:     eventType,
		ThreadID: threadID,
		Detail:   detail,
	})
}

// publish emits a lifecycle event; delivery failures are logged, never
// surfaced to the caller.
func (s *Team) publish(ctx context.Context, subject string, req turn.Request, detail string) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(TurnEvent{
		ThreadID: req.ThreadID,
		Nickname: req.Nickname,
		Detail:   detail,
		At:       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		s.log.Warn("event publish failed", "subject", subject, "error", err)
	}
}
