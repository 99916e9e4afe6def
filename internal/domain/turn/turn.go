// Package turn provides the shared conversation state carried through one
// orchestrated turn: the message history, the rolling summary, and the
// supervisor's routing marker.
package turn

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Well-known message authors used by the orchestration core.
const (
	AuthorSupervisor  = "supervisor"
	AuthorSummary     = "summary"
	AuthorPersonality = "personality"
)

// ToolCall is a single tool invocation requested by the model.
// Parallel tool calls are disabled at the request level, so a message
// carries at most one.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Message is one entry in the conversation history. Immutable once
// appended; compaction replaces messages wholesale, never edits them.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Author     string     `json:"author,omitempty"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // set on tool-result messages
}

// NewMessage builds a message with a freshly generated id.
func NewMessage(role Role, author, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Role:    role,
		Author:  author,
		Content: content,
	}
}

// Clone returns a copy of m carrying the same role, author and content but a
// fresh id. Tool calls are not carried over: clones exist only to preserve
// narrative recency after compaction.
func (m Message) Clone() Message {
	return NewMessage(m.Role, m.Author, m.Content)
}

// HasToolCall reports whether the message requests a tool invocation.
func (m Message) HasToolCall() bool {
	return len(m.ToolCalls) > 0
}

// PendingCall is the persisted record of a tool call suspended for a human
// decision. While non-nil on a State, the turn is parked: the next
// invocation for the thread must carry a resume decision, which re-enters
// the state machine at exactly this call.
type PendingCall struct {
	Agent  string   `json:"agent"` // worker that issued the call
	Call   ToolCall `json:"call"`
	Prompt string   `json:"prompt"` // question shown to the human
}

// State is the canonical turn state for one conversation thread. It is
// owned by a single orchestrator invocation at a time; long-term truth
// lives in the checkpoint store, not in any process.
type State struct {
	Messages        []Message    `json:"messages"`
	Summary         string       `json:"summary,omitempty"`
	LastActiveAgent string       `json:"last_active_agent,omitempty"`
	Pending         *PendingCall `json:"pending,omitempty"`
}

// Append adds messages to the history in order.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Last returns the most recent message, or a zero Message when empty.
func (s *State) Last() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// Request is the caller-facing input for one turn.
type Request struct {
	Message        string `json:"message"`
	ThreadID       string `json:"thread_id"`
	Nickname       string `json:"nickname,omitempty"`
	ResumeDecision string `json:"resume_decision,omitempty"`
}

// Response is the caller-facing outcome of one turn: either a final reply
// or a request for a human decision.
type Response struct {
	Reply            string `json:"reply,omitempty"`
	AwaitingDecision string `json:"awaiting_decision,omitempty"`
}

// Suspended reports whether the turn parked awaiting a human decision.
func (r Response) Suspended() bool {
	return r.AwaitingDecision != ""
}
