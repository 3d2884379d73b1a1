// Package mcpserver exposes the assistant as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zhouzirui/violet/backend/internal/model/chat"
	"github.com/zhouzirui/violet/backend/internal/model/reminder"
)

// Assistant answers one utterance.
type Assistant interface {
	Route(ctx context.Context, text string) string
}

// Session is the read side of the conversation state.
type Session interface {
	History(ctx context.Context) []chat.Turn
	Reminders(ctx context.Context) []reminder.Reminder
}

// New registers the ask, history and reminders tools.
func New(version string, assistant Assistant, session Session) *server.MCPServer {
	s := server.NewMCPServer("violet", version, server.WithToolCapabilities(false))
	h := &handlers{assistant: assistant, session: session}

	s.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Send a command or question to VIOLET and return its reply."),
		mcp.WithString("message", mcp.Required(), mcp.Description("What to say to the assistant")),
	), h.ask)

	s.AddTool(mcp.NewTool("history",
		mcp.WithDescription("List the recent conversation turns, oldest first."),
	), h.history)

	s.AddTool(mcp.NewTool("reminders",
		mcp.WithDescription("List the stored reminders."),
	), h.reminders)

	return s
}

// ServeStdio blocks serving s over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

type handlers struct {
	assistant Assistant
	session   Session
}

func (h *handlers) ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("Message cannot be empty"), nil
	}
	return mcp.NewToolResultText(h.assistant.Route(ctx, message)), nil
}

func (h *handlers) history(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	turns := h.session.History(ctx)
	if len(turns) == 0 {
		return mcp.NewToolResultText("No conversation yet."), nil
	}

	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Text)
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (h *handlers) reminders(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items := h.session.Reminders(ctx)
	if len(items) == 0 {
		return mcp.NewToolResultText("No reminders."), nil
	}

	var b strings.Builder
	for i, r := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, r.Task, r.DisplayTime())
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
