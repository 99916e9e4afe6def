// Package toolbox defines the tool execution port shared by all worker
// agents.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Context carries per-invocation data that is not part of the tool's model
// facing arguments.
type Context struct {
	ThreadID string
	// Nickname identifies the user behind the thread, carried from the
	// request rather than the model arguments so it cannot be spoofed.
	Nickname string
	// Decision is the human's resume decision when re-invoking a tool that
	// previously suspended. Empty on first invocation.
	Decision string
}

// Tool is one callable capability. Parameters returns a JSON Schema object
// describing the arguments.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage, tc Context) (string, error)
}

// ApprovalError suspends the turn: the tool needs a human decision before it
// can complete. Prompt is shown to the human verbatim.
type ApprovalError struct {
	Prompt string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("tool requires human approval: %s", e.Prompt)
}

// Registry resolves tool names to implementations.
type Registry interface {
	Lookup(name string) (Tool, bool)
}
