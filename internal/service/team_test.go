package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/agent"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/broadcast"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/messagequeue"
)

// recordingQueue captures published subjects and payloads.
type recordingQueue struct {
	published []publishedEvent
}

type publishedEvent struct {
	subject string
	event   TurnEvent
}

var _ messagequeue.Queue = (*recordingQueue)(nil)

func (q *recordingQueue) Publish(_ context.Context, subject string, data []byte) error {
	var ev TurnEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	q.published = append(q.published, publishedEvent{subject: subject, event: ev})
	return nil
}

func (q *recordingQueue) Subscribe(context.Context, string, messagequeue.Handler) error { return nil }
func (q *recordingQueue) Drain() error                                                  { return nil }
func (q *recordingQueue) Close()                                                        {}
func (q *recordingQueue) IsConnected() bool                                             { return true }

func (q *recordingQueue) subjects() []string {
	out := make([]string, 0, len(q.published))
	for _, p := range q.published {
		out = append(out, p.subject)
	}
	return out
}

func newTeamFixture(t *testing.T, script []gateway.Response) (*Team, *orchFixture, *recordingQueue) {
	t.Helper()
	f := newOrchFixture(t, script, defaultTurnConfig())
	queue := &recordingQueue{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	team := NewTeam(f.orch, f.store, queue, f.hub, nil, log)
	return team, f, queue
}

func completedTurnScript(reply string) []gateway.Response {
	return []gateway.Response{
		toolCallResponse(agent.ToolTransferToKnowledge, `{"task_description":"answer it"}`),
		textResponse("Answered."),
		toolCallResponse(agent.ToolFinishExecution, `{}`),
		textResponse(reply),
	}
}

func TestHandleTurnRequiresMessage(t *testing.T) {
	team, _, _ := newTeamFixture(t, nil)

	_, err := team.HandleTurn(context.Background(), turn.Request{Message: "   ", ThreadID: "t1"})
	if err == nil {
		t.Fatal("expected error for blank message")
	}
}

func TestHandleTurnRequiresIdentity(t *testing.T) {
	team, _, _ := newTeamFixture(t, nil)

	_, err := team.HandleTurn(context.Background(), turn.Request{Message: "hi"})
	if err == nil {
		t.Fatal("expected error when both thread_id and nickname are missing")
	}
}

func TestHandleTurnDerivesThreadIDFromNickname(t *testing.T) {
	team, f, _ := newTeamFixture(t, completedTurnScript("done"))

	resp, err := team.HandleTurn(context.Background(), turn.Request{Message: "hi", Nickname: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reply != "done" {
		t.Errorf("unexpected reply: %q", resp.Reply)
	}

	if _, err := f.store.Load(context.Background(), "chat_history_alice"); err != nil {
		t.Errorf("expected checkpoint under the derived thread id: %v", err)
	}
}

func TestHandleTurnStartsFreshThread(t *testing.T) {
	team, _, queue := newTeamFixture(t, completedTurnScript("welcome"))

	// No checkpoint exists yet; the turn must start from an empty state.
	resp, err := team.HandleTurn(context.Background(), turn.Request{Message: "hello", ThreadID: "new-thread"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reply != "welcome" {
		t.Errorf("unexpected reply: %q", resp.Reply)
	}

	subjects := queue.subjects()
	if len(subjects) != 2 {
		t.Fatalf("expected started and completed events, got %v", subjects)
	}
	if subjects[0] != messagequeue.SubjectTurnStarted || subjects[1] != messagequeue.SubjectTurnCompleted {
		t.Errorf("unexpected event sequence: %v", subjects)
	}
}

func TestHandleTurnContinuesExistingThread(t *testing.T) {
	team, f, _ := newTeamFixture(t, completedTurnScript("second reply"))

	prior := &turn.State{Summary: "prior conversation"}
	prior.Append(turn.NewMessage(turn.RoleHuman, "bob", "first message"))
	if err := f.store.Save(context.Background(), "t1", prior); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	if _, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "second message", ThreadID: "t1", Nickname: "bob",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st, err := f.store.Load(context.Background(), "t1")
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if st.Summary != "prior conversation" {
		t.Errorf("expected the prior summary carried over, got %q", st.Summary)
	}
	if st.Messages[0].Content != "first message" {
		t.Errorf("expected the prior history preserved, got %q", st.Messages[0].Content)
	}
}

func TestHandleTurnPublishesSuspension(t *testing.T) {
	script := []gateway.Response{
		toolCallResponse(agent.ToolTransferToSecretary, `{"task_description":"book it"}`),
		toolCallResponse("add_appointment", `{"user_id":"u1"}`),
	}
	team, _, queue := newTeamFixture(t, script)

	resp, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "book me in", ThreadID: "t1", Nickname: "bob",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Suspended() {
		t.Fatal("expected suspension")
	}

	subjects := queue.subjects()
	var suspended, requested bool
	for _, s := range subjects {
		if s == messagequeue.SubjectTurnSuspended {
			suspended = true
		}
		if s == messagequeue.SubjectApprovalRequested {
			requested = true
		}
	}
	if !suspended || !requested {
		t.Errorf("expected suspended and approval events, got %v", subjects)
	}
}

func TestHandleTurnPublishesFailure(t *testing.T) {
	// An exhausted script makes the first supervisor call fail.
	team, _, queue := newTeamFixture(t, nil)

	_, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "hi", ThreadID: "t1", Nickname: "bob",
	})
	if err == nil {
		t.Fatal("expected turn failure")
	}

	subjects := queue.subjects()
	var failed bool
	for _, s := range subjects {
		if s == messagequeue.SubjectTurnFailed {
			failed = true
		}
	}
	if !failed {
		t.Errorf("expected a failure event, got %v", subjects)
	}
}

func TestHandleTurnResolvedApprovalEvent(t *testing.T) {
	script := []gateway.Response{
		textResponse("Booked."),
		toolCallResponse(agent.ToolFinishExecution, `{}`),
		textResponse("All set."),
	}
	team, f, queue := newTeamFixture(t, script)

	parked := &turn.State{
		LastActiveAgent: agent.Secretary,
		Pending: &turn.PendingCall{
			Agent:  agent.Secretary,
			Call:   turn.ToolCall{ID: "c1", Name: "add_appointment", Args: json.RawMessage(`{}`)},
			Prompt: "Do you approve this appointment?",
		},
	}
	if err := f.store.Save(context.Background(), "t1", parked); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	resp, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "YES", ThreadID: "t1", Nickname: "bob", ResumeDecision: "YES",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Suspended() {
		t.Fatal("expected completion after resume")
	}

	subjects := queue.subjects()
	var resolved bool
	for _, s := range subjects {
		if s == messagequeue.SubjectApprovalResolved {
			resolved = true
		}
	}
	if !resolved {
		t.Errorf("expected approval.resolved event, got %v", subjects)
	}
}

func TestPendingApproval(t *testing.T) {
	team, f, _ := newTeamFixture(t, nil)

	st := &turn.State{Pending: &turn.PendingCall{
		Agent:  agent.Secretary,
		Call:   turn.ToolCall{ID: "c1", Name: "add_appointment"},
		Prompt: "Do you approve this appointment?",
	}}
	if err := f.store.Save(context.Background(), "t1", st); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}

	pending, err := team.PendingApproval(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending == nil || pending.Call.Name != "add_appointment" {
		t.Errorf("unexpected pending call: %+v", pending)
	}

	if err := f.store.Save(context.Background(), "t2", &turn.State{}); err != nil {
		t.Fatalf("seed checkpoint: %v", err)
	}
	pending, err = team.PendingApproval(context.Background(), "t2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending != nil {
		t.Errorf("expected nil pending call, got %+v", pending)
	}
}

func TestHandleTurnBroadcastsLifecycle(t *testing.T) {
	team, f, _ := newTeamFixture(t, completedTurnScript("ok"))

	if _, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "hi", ThreadID: "t1", Nickname: "bob",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := f.hub.types()
	if len(types) == 0 || types[0] != broadcast.EventTurnStarted {
		t.Fatalf("expected turn.started first, got %v", types)
	}
	if types[len(types)-1] != broadcast.EventTurnCompleted {
		t.Errorf("expected turn.completed last, got %v", types)
	}
	for _, ev := range f.hub.events {
		if ev.ThreadID != "t1" {
			t.Errorf("event %s carries thread %q", ev.Type, ev.ThreadID)
		}
	}
}

func TestHandleTurnBroadcastsSuspension(t *testing.T) {
	script := []gateway.Response{
		toolCallResponse(agent.ToolTransferToSecretary, `{"task_description":"book it"}`),
		toolCallResponse("add_appointment", `{"user_id":"u1"}`),
	}
	team, f, _ := newTeamFixture(t, script)

	resp, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "book me in", ThreadID: "t1", Nickname: "bob",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Suspended() {
		t.Fatal("expected suspension")
	}

	var suspended bool
	for _, ev := range f.hub.events {
		if ev.Type == broadcast.EventTurnSuspended {
			suspended = true
			if ev.Detail != resp.AwaitingDecision {
				t.Errorf("expected the approval prompt on the event, got %q", ev.Detail)
			}
		}
	}
	if !suspended {
		t.Errorf("expected turn.suspended broadcast, got %v", f.hub.types())
	}
}

func TestHandleTurnBroadcastsFailure(t *testing.T) {
	team, f, _ := newTeamFixture(t, nil)

	if _, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "hi", ThreadID: "t1", Nickname: "bob",
	}); err == nil {
		t.Fatal("expected turn failure")
	}

	var failed bool
	for _, ev := range f.hub.events {
		if ev.Type == broadcast.EventTurnFailed && ev.Detail != "" {
			failed = true
		}
	}
	if !failed {
		t.Errorf("expected turn.failed broadcast with detail, got %v", f.hub.types())
	}
}

func TestHandleTurnEventTimestamps(t *testing.T) {
	team, _, queue := newTeamFixture(t, completedTurnScript("ok"))

	if _, err := team.HandleTurn(context.Background(), turn.Request{
		Message: "hi", ThreadID: "t1", Nickname: "bob",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range queue.published {
		if _, err := time.Parse(time.RFC3339, p.event.At); err != nil {
			t.Errorf("event %s carries a malformed timestamp %q", p.subject, p.event.At)
		}
		if p.event.ThreadID != "t1" {
			t.Errorf("event %s carries thread %q", p.subject, p.event.ThreadID)
		}
	}
}
