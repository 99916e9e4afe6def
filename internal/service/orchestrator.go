// Package service implements the turn orchestration core: the node graph
// that routes one user message through compaction, the supervisor, the
// worker agents, and the final personality reply.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/otel"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/config"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/broadcast"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/checkpoint"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// Node names of the turn graph. The empty string terminates the turn;
// nodeSuspend parks it awaiting a human decision.
const (
	nodeCompactor  = "compactor"
	nodeSupervisor = "supervisor"
	nodeFinalizer  = "finalizer"
	nodeSuspend    = "suspend"
	nodeEnd        = ""
)

// Orchestrator runs one conversational turn through the agent team. It owns
// no cross-turn state: everything durable lives in the checkpoint store, and
// a checkpoint is written after every node transition.
type Orchestrator struct {
	team        agent.Team
	gw          gateway.Gateway
	registry    toolbox.Registry
	compactor   *Compactor
	store       checkpoint.Store
	broadcaster broadcast.Broadcaster
	metrics     *otel.Metrics
	log         *slog.Logger

	turnCfg   config.Turn
	maxTokens int
	timeout   time.Duration
	loc       *time.Location
	now       func() time.Time // for testing
}

// NewOrchestrator wires the turn graph. broadcaster and metrics may be nil.
func NewOrchestrator(
	team agent.Team,
	gw gateway.Gateway,
	registry toolbox.Registry,
	compactor *Compactor,
	store checkpoint.Store,
	broadcaster broadcast.Broadcaster,
	metrics *otel.Metrics,
	log *slog.Logger,
	turnCfg config.Turn,
	gwCfg config.Gateway,
	timezone string,
) *Orchestrator {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Orchestrator{
		team:        team,
		gw:          gw,
		registry:    registry,
		compactor:   compactor,
		store:       store,
		broadcaster: broadcaster,
		metrics:     metrics,
		log:         log,
		turnCfg:     turnCfg,
		maxTokens:   gwCfg.MaxTokens,
		timeout:     gwCfg.RequestTimeout,
		loc:         loc,
		now:         time.Now,
	}
}

// runtime carries the per-invocation bookkeeping that is not part of the
// durable state.
type runtime struct {
	threadID    string
	nickname    string
	userRequest string
	visits      int
	retries     int
}

// RunTurn executes one turn against the given state. When the state carries
// a pending approval, the request must be a resume decision; otherwise the
// message enters the graph at the compactor.
func (o *Orchestrator) RunTurn(ctx context.Context, req turn.Request, st *turn.State) (turn.Response, error) {
	rt := &runtime{
		threadID:    req.ThreadID,
		nickname:    req.Nickname,
		userRequest: req.Message,
	}

	var node string
	if st.Pending != nil {
		if req.ResumeDecision == "" {
			// The turn is parked; re-surface the question instead of
			// processing new input.
			return turn.Response{AwaitingDecision: st.Pending.Prompt}, nil
		}
		next, err := o.resumePending(ctx, req.ResumeDecision, st, rt)
		if err != nil {
			return turn.Response{}, err
		}
		node = next
	} else {
		human := turn.NewMessage(turn.RoleHuman, req.Nickname, req.Message)
		st.Append(human)
		node = nodeCompactor
	}

	if err := o.persist(ctx, rt.threadID, st); err != nil {
		return turn.Response{}, err
	}

	for node != nodeEnd && node != nodeSuspend {
		rt.visits++
		if rt.visits > o.turnCfg.MaxNodeVisits {
			return turn.Response{}, fmt.Errorf("turn exceeded %d node visits", o.turnCfg.MaxNodeVisits)
		}

		next, err := o.runNode(ctx, node, st, rt)
		if err != nil {
			return turn.Response{}, err
		}
		if err := o.persist(ctx, rt.threadID, st); err != nil {
			return turn.Response{}, err
		}
		node = next
	}

	if node == nodeSuspend {
		o.emit(ctx, broadcast.Event{
			Type:     broadcast.EventApprovalRequested,
			ThreadID: rt.threadID,
			Agent:    st.Pending.Agent,
			Detail:   st.Pending.Prompt,
		})
		return turn.Response{AwaitingDecision: st.Pending.Prompt}, nil
	}
	return turn.Response{Reply: st.Last().Content}, nil
}

func (o *Orchestrator) runNode(ctx context.Context, node string, st *turn.State, rt *runtime) (string, error) {
	switch node {
	case nodeCompactor:
		return o.runCompactor(ctx, st, rt)
	case nodeSupervisor:
		return o.runSupervisor(ctx, st, rt)
	case nodeFinalizer:
		return o.runFinalizer(ctx, st, rt)
	default:
		if _, ok := o.team.ByName(node); ok {
			return o.runWorker(ctx, node, st, rt)
		}
		return "", fmt.Errorf("unknown graph node %q", node)
	}
}

func (o *Orchestrator) runCompactor(ctx context.Context, st *turn.State, rt *runtime) (string, error) {
	compacted, err := o.compactor.Compact(ctx, st)
	if err != nil {
		return "", err
	}
	if compacted {
		o.log.Info("history compacted", "thread_id", rt.threadID, "messages", len(st.Messages))
		if o.metrics != nil {
			o.metrics.Compactions.Add(ctx, 1)
		}
		o.emit(ctx, broadcast.Event{Type: broadcast.EventHistoryCompacted, ThreadID: rt.threadID})
	}
	return nodeSupervisor, nil
}

// persist checkpoints the state. Node execution is at-least-once: a crash
// between a node and its checkpoint replays the node on the next invocation.
func (o *Orchestrator) persist(ctx context.Context, threadID string, st *turn.State) error {
	if err := o.store.Save(ctx, threadID, st); err != nil {
		return fmt.Errorf("checkpoint thread %s: %w", threadID, err)
	}
	return nil
}

func (o *Orchestrator) emit(ctx context.Context, ev broadcast.Event) {
	if o.broadcaster != nil {
		o.broadcaster.Broadcast(ctx, ev)
	}
}

// systemPrompt composes the date preamble and the agent's persona.
func (o *Orchestrator) systemPrompt(def agent.Definition) string {
	return DatePreamble(o.now(), o.loc) + "\n\n" + def.Instructions
}
