// Package mcp exposes operational introspection of the swarm over the Model
// Context Protocol: thread state, pending approvals, and support calls.
package mcp

import (
	"context"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/turn"
)

// ThreadReader exposes the conversation state to MCP clients.
type ThreadReader interface {
	ThreadState(ctx context.Context, threadID string) (*turn.State, error)
	PendingApproval(ctx context.Context, threadID string) (*turn.PendingCall, error)
}

// SupportCallReader lists a user's support calls.
type SupportCallReader interface {
	ListSupportCalls(ctx context.Context, nickname string) ([]crm.SupportCall, error)
}

// Deps are the service surfaces the MCP tools dispatch into.
type Deps struct {
	Threads      ThreadReader
	SupportCalls SupportCallReader
}

// Server wraps the MCP server with streamable HTTP transport.
type Server struct {
	addr      string
	deps      Deps
	mcpServer *mcpserver.MCPServer
	httpSrv   *mcpserver.StreamableHTTPServer
	log       *slog.Logger
}

// NewServer creates the MCP server and registers all tools.
func NewServer(addr string, deps Deps, log *slog.Logger) *Server {
	s := &Server{
		addr: addr,
		deps: deps,
		log:  log,
	}
	s.mcpServer = mcpserver.NewMCPServer("swarm", "1.0.0",
		mcpserver.WithToolCapabilities(false),
	)
	s.registerTools()
	s.httpSrv = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	return s
}

// Start serves MCP over HTTP. Blocks until Stop or a listener error.
func (s *Server) Start() error {
	s.log.Info("mcp server listening", "addr", s.addr)
	return s.httpSrv.Start(s.addr)
}

// Stop shuts down the MCP transport.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
