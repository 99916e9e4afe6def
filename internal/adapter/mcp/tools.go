package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.getThreadStateTool(),
		s.getPendingApprovalTool(),
		s.listSupportCallsTool(),
	)
}

func (s *Server) getThreadStateTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_thread_state",
		mcplib.WithDescription("Get the full conversation state of a thread: messages, summary, routing marker, pending approval"),
		mcplib.WithString("thread_id",
			mcplib.Required(),
			mcplib.Description("The thread ID to look up"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetThreadState,
	}
}

func (s *Server) getPendingApprovalTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_pending_approval",
		mcplib.WithDescription("Get the suspended tool call of a thread awaiting a human decision, if any"),
		mcplib.WithString("thread_id",
			mcplib.Required(),
			mcplib.Description("The thread ID to check"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetPendingApproval,
	}
}

func (s *Server) listSupportCallsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_support_calls",
		mcplib.WithDescription("List the support calls opened for a user, newest first"),
		mcplib.WithString("nickname",
			mcplib.Required(),
			mcplib.Description("The user nickname"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleListSupportCalls,
	}
}

func (s *Server) handleGetThreadState(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Threads == nil {
		return mcplib.NewToolResultError("thread reader not configured"), nil
	}
	args := req.GetArguments()
	threadID, ok := args["thread_id"].(string)
	if !ok || threadID == "" {
		return mcplib.NewToolResultError("thread_id is required"), nil
	}
	st, err := s.deps.Threads.ThreadState(ctx, threadID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get thread %s", threadID), err,
		), nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal thread state", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetPendingApproval(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Threads == nil {
		return mcplib.NewToolResultError("thread reader not configured"), nil
	}
	args := req.GetArguments()
	threadID, ok := args["thread_id"].(string)
	if !ok || threadID == "" {
		return mcplib.NewToolResultError("thread_id is required"), nil
	}
	pending, err := s.deps.Threads.PendingApproval(ctx, threadID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get pending approval for %s", threadID), err,
		), nil
	}
	if pending == nil {
		return mcplib.NewToolResultText(`{"pending":null}`), nil
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal pending call", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func (s *Server) handleListSupportCalls(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.SupportCalls == nil {
		return mcplib.NewToolResultError("support call reader not configured"), nil
	}
	args := req.GetArguments()
	nickname, ok := args["nickname"].(string)
	if !ok || nickname == "" {
		return mcplib.NewToolResultError("nickname is required"), nil
	}
	calls, err := s.deps.SupportCalls.ListSupportCalls(ctx, nickname)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to list support calls for %s", nickname), err,
		), nil
	}
	data, err := json.Marshal(calls)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal support calls", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
