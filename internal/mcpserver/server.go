// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the vault to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/moxide/internal/preview"
	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/vault"
)

// Server wraps the MCP server with moxide tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
}

// New creates an MCP server with all moxide tools registered.
func New(sess *session.Session, version string) *Server {
	s := &Server{sess: sess}

	s.mcp = server.NewMCPServer(
		"moxide",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("echo",
		mcp.WithDescription("Echo a message back. Useful as a connectivity check."),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message to echo")),
	), s.echo)

	s.mcp.AddTool(mcp.NewTool("daily_context_range",
		mcp.WithDescription("Concatenated daily-note contents for a date window around today, in date order."),
		mcp.WithNumber("past_days", mcp.DefaultNumber(5), mcp.Description("Days before today to include")),
		mcp.WithNumber("future_days", mcp.DefaultNumber(5), mcp.Description("Days after today to include")),
	), s.dailyContextRange)

	s.mcp.AddTool(mcp.NewTool("entity_context",
		mcp.WithDescription("Preview of a referenceable (file, heading, block or tag) plus up to 100 backlinks."),
		mcp.WithString("ref_id", mcp.Required(), mcp.Description("Refname, e.g. folder/Note, Note#Heading, or #tag")),
	), s.entityContext)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

func (s *Server) echo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Echo: " + message), nil
}

func (s *Server) dailyContextRange(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pastDays := req.GetInt("past_days", 5)
	futureDays := req.GetInt("future_days", 5)
	if pastDays < 0 || futureDays < 0 {
		return mcp.NewToolResultError("past_days and future_days must be non-negative"), nil
	}

	var b strings.Builder
	s.sess.WithRead(func(v *vault.Vault) {
		now := time.Now()
		for off := -pastDays; off <= futureDays; off++ {
			day := now.AddDate(0, 0, off)
			rel := v.Daily().Path(day)
			f := v.File(rel)
			if f == nil {
				continue
			}
			fmt.Fprintf(&b, "# %s\n\n%s\n\n", v.Daily().Format(day), f.Text)
		}
	})
	if b.Len() == 0 {
		return mcp.NewToolResultText("no daily notes in range"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) entityContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refID, err := req.RequireString("ref_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var out string
	s.sess.WithRead(func(v *vault.Vault) {
		for _, res := range v.ResolveRefname(refID) {
			if !res.Resolved() {
				continue
			}
			out = preview.Render(v, res, preview.ContextLimits)
			break
		}
	})
	if out == "" {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", refID)), nil
	}
	return mcp.NewToolResultText(out), nil
}
