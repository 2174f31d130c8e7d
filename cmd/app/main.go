package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/moxide/internal"
)

func runLSP(ctx context.Context, cmd *cli.Command) error {
	opts := []internal.Option{
		internal.WithMode(internal.ModeLSP),
		internal.WithLogLevel(logLevel(cmd)),
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts := []internal.Option{
		internal.WithMode(internal.ModeMCP),
		internal.WithRoot(cmd.String("full-dir-path")),
		internal.WithLogLevel(logLevel(cmd)),
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func logLevel(cmd *cli.Command) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func main() {
	cmd := &cli.Command{
		Name:   "moxide",
		Usage:  "Language server for Obsidian-flavored Markdown vaults",
		Action: runLSP,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("MOXIDE_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the Model Context Protocol for a vault",
				Action: runMCP,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "full-dir-path",
						Usage:    "Absolute path to the vault directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "log-level",
						Usage:   "Log level (debug, info, warn, error)",
						Value:   "info",
						Sources: cli.EnvVars("MOXIDE_LOG_LEVEL"),
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
