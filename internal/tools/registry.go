// Package tools implements the built-in worker tools and their registry.
package tools

import (
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// compile-time interface check
var _ toolbox.Registry = (*Registry)(nil)

// Registry maps tool names to implementations. Registration happens once at
// startup; lookups are read-only afterwards.
type Registry struct {
	tools map[string]toolbox.Tool
}

// NewRegistry creates a registry with the given tools.
func NewRegistry(ts ...toolbox.Tool) *Registry {
	r := &Registry{tools: make(map[string]toolbox.Tool, len(ts))}
	for _, t := range ts {
		r.tools[t.Name()] = t
	}
	return r
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (toolbox.Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}
