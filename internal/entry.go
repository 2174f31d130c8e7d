// Package internal provides the main application initialization and runtime
// logic.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/starford/moxide/internal/config"
	"github.com/starford/moxide/internal/lspserver"
	"github.com/starford/moxide/internal/mcpserver"
	"github.com/starford/moxide/internal/session"
	"github.com/starford/moxide/internal/storage"
	"github.com/starford/moxide/internal/vault"
)

// Version is the released server version, reported to LSP and MCP clients.
const Version = "0.3.0"

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{logLevel: slog.LevelInfo}
	for _, opt := range opts {
		opt(app)
	}

	// Structured logs go to stderr; stdout carries the protocol stream.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.logLevel,
	}))
	slog.SetDefault(logger)

	switch app.mode {
	case ModeMCP:
		return runMCP(ctx, app, logger)
	default:
		return runLSP(app, logger)
	}
}

// runLSP serves LSP on stdio. The vault is built at initialize time, once
// the client announces its workspace root.
func runLSP(app *application, logger *slog.Logger) error {
	logger.Info("Starting LSP server", slog.String("version", Version))
	srv := lspserver.New(logger, Version)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}
	return nil
}

// runMCP builds the vault eagerly for the given root, then serves MCP on
// stdio with the filesystem watcher keeping the vault fresh.
func runMCP(ctx context.Context, app *application, logger *slog.Logger) error {
	if app.root == "" {
		return fmt.Errorf("mcp mode requires a vault directory")
	}

	settings, err := config.Load(app.root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := storage.NewFS(app.root, settings.IgnoreDirs)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	v, err := vault.Build(ctx, store, store.Root(), settings, logger)
	if err != nil {
		return fmt.Errorf("build vault: %w", err)
	}

	sess := session.New(v, store, settings, logger)
	srv := mcpserver.New(sess, Version)

	logger.Info("Starting MCP server",
		slog.String("vault", store.Root()),
		slog.String("version", Version))

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(serveCtx)
	g.Go(func() error {
		return sess.Watch(gCtx, store.Root())
	})
	g.Go(func() error {
		// Transport closed means shutdown; stop the watcher too.
		defer cancel()
		return srv.ServeStdio()
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
