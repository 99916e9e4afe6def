package service

import (
	"context"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
)

// runFinalizer composes the user-facing reply from everything the agents
// produced. No tools: this is a pure writing step.
func (o *Orchestrator) runFinalizer(ctx context.Context, st *turn.State, rt *runtime) (string, error) {
	system := DatePreamble(o.now(), o.loc) + "\n\n" + personalityPrompt(rt.userRequest)

	resp, err := o.gw.Complete(ctx, gateway.Request{
		System:    system,
		Messages:  st.Messages,
		MaxTokens: o.maxTokens,
		Timeout:   o.timeout,
	})
	if err != nil {
		return "", fmt.Errorf("personality completion: %w", err)
	}

	reply := resp.Message
	reply.Author = turn.AuthorPersonality
	st.Append(reply)
	return nodeEnd, nil
}
