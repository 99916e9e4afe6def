package service

import (
	"context"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/config"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
)

// Compactor maintains a rolling summary and shrinks the history once it
// crosses the threshold. It never touches the routing marker: finish is the
// only transition that clears LastActiveAgent.
type Compactor struct {
	gw    gateway.Gateway
	cfg   config.Compaction
	model string
}

// NewCompactor creates a compactor running summaries through the gateway on
// the given model. Empty model falls back to the gateway default.
func NewCompactor(gw gateway.Gateway, cfg config.Compaction, model string) *Compactor {
	return &Compactor{gw: gw, cfg: cfg, model: model}
}

// Compact summarizes and rewrites the state's history when it has grown past
// the threshold. Below the threshold the state is left untouched, which also
// makes a crash-replay of this step idempotent.
func (c *Compactor) Compact(ctx context.Context, st *turn.State) (bool, error) {
	if len(st.Messages) < c.cfg.Threshold {
		return false, nil
	}

	filtered := filterForSummary(st.Messages)

	var prompt string
	context := filtered
	if st.Summary != "" {
		prompt = incrementalSummaryPrompt(st.Summary)
		if c.cfg.IncrementalOffset < len(filtered) {
			context = filtered[c.cfg.IncrementalOffset:]
		} else {
			context = nil
		}
	} else {
		prompt = freshSummaryPrompt
	}

	msgs := make([]turn.Message, 0, len(context)+1)
	msgs = append(msgs, context...)
	msgs = append(msgs, turn.NewMessage(turn.RoleHuman, "", prompt))

	resp, err := c.gw.Complete(ctx, gateway.Request{
		Messages:  msgs,
		Model:     c.model,
		MaxTokens: c.cfg.SummaryMaxTokens,
	})
	if err != nil {
		return false, fmt.Errorf("summarize history: %w", err)
	}
	summary := resp.Message.Content

	// Rebuild: the summary message first, then fresh clones of the most
	// recent narrative messages to preserve immediate context.
	rebuilt := []turn.Message{turn.NewMessage(turn.RoleAssistant, turn.AuthorSummary, summary)}
	keep := c.cfg.KeepLast
	if keep > len(filtered) {
		keep = len(filtered)
	}
	for _, m := range filtered[len(filtered)-keep:] {
		rebuilt = append(rebuilt, m.Clone())
	}

	st.Summary = summary
	st.Messages = rebuilt
	return true, nil
}

// filterForSummary keeps only the narrative: human and assistant messages
// that are not supervisor routing traffic. Assistant messages carrying tool
// calls and tool results are dropped; surviving messages keep content only.
func filterForSummary(msgs []turn.Message) []turn.Message {
	var filtered []turn.Message
	for _, m := range msgs {
		if m.Author == turn.AuthorSupervisor {
			continue
		}
		switch m.Role {
		case turn.RoleHuman:
			filtered = append(filtered, turn.Message{ID: m.ID, Role: turn.RoleHuman, Author: m.Author, Content: m.Content})
		case turn.RoleAssistant:
			if m.HasToolCall() {
				continue
			}
			filtered = append(filtered, turn.Message{ID: m.ID, Role: turn.RoleAssistant, Author: m.Author, Content: m.Content})
		}
	}
	return filtered
}
