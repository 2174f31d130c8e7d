package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/testutil"
	"github.com/starford/moxide/internal/vault"
)

func newServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	root, store := testutil.TempVault(t, files)
	settings := config.NewDefaultSettings()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	v, err := vault.Build(context.Background(), store, root, settings, logger)
	if err != nil {
		t.Fatal(err)
	}
	return New(session.New(v, store, settings, logger), "test")
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestEcho(t *testing.T) {
	s := newServer(t, nil)
	res, err := s.echo(context.Background(), callReq(map[string]any{"message": "ping"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := textOf(t, res); got != "Echo: ping" {
		t.Errorf("echo = %q", got)
	}
}

func TestEcho_MissingArgument(t *testing.T) {
	s := newServer(t, nil)
	res, err := s.echo(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("missing argument should produce a tool error")
	}
}

func TestEntityContext(t *testing.T) {
	s := newServer(t, map[string]string{
		"A.md": "# Alpha\nthe body\n",
		"B.md": "points at [[A]]\n",
	})

	res, err := s.entityContext(context.Background(), callReq(map[string]any{"ref_id": "A"}))
	if err != nil {
		t.Fatal(err)
	}
	got := textOf(t, res)
	if !strings.Contains(got, "# Alpha") {
		t.Errorf("content missing:\n%s", got)
	}
	if !strings.Contains(got, "1 references:") {
		t.Errorf("backlinks missing:\n%s", got)
	}
}

func TestEntityContext_NotFound(t *testing.T) {
	s := newServer(t, map[string]string{"A.md": "x\n"})
	res, err := s.entityContext(context.Background(), callReq(map[string]any{"ref_id": "Nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("unknown ref_id should produce a tool error")
	}
}

func TestDailyContextRange(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	s := newServer(t, map[string]string{
		today + ".md":     "today's note\n",
		yesterday + ".md": "yesterday's note\n",
	})

	res, err := s.dailyContextRange(context.Background(), callReq(map[string]any{
		"past_days":   float64(1),
		"future_days": float64(0),
	}))
	if err != nil {
		t.Fatal(err)
	}
	got := textOf(t, res)
	if !strings.Contains(got, "yesterday's note") || !strings.Contains(got, "today's note") {
		t.Errorf("daily range incomplete:\n%s", got)
	}
	// Date order: yesterday before today.
	if strings.Index(got, "yesterday's note") > strings.Index(got, "today's note") {
		t.Errorf("daily notes out of order:\n%s", got)
	}
}

func TestDailyContextRange_NegativeRejected(t *testing.T) {
	s := newServer(t, nil)
	res, err := s.dailyContextRange(context.Background(), callReq(map[string]any{
		"past_days": float64(-1),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("negative range should produce a tool error")
	}
}
