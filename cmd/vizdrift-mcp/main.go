// Command vizdrift-mcp exposes the vizdrift tools over MCP stdio, for
// agent-driven visual regression workflows.
//
// Usage:
//
//	vizdrift-mcp -config vizdrift.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/vizdrift/vizdrift/checker"
)

func main() {
	configPath := flag.String("config", "", "path to vizdrift.yaml config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	// Logs go to stderr; stdout carries the MCP protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &checker.Config{}
	if *configPath != "" {
		loaded, err := checker.LoadConfigFile(*configPath)
		if err != nil {
			logger.Error("vizdrift-mcp: config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ck, err := checker.New(cfg, logger)
	if err != nil {
		logger.Error("vizdrift-mcp: init", "error", err)
		os.Exit(1)
	}
	defer ck.Close()

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "vizdrift",
		Version: "1.0.0",
	}, nil)
	ck.RegisterMCP(srv)

	logger.Info("vizdrift-mcp: serving on stdio")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("vizdrift-mcp: fatal", "error", err)
		os.Exit(1)
	}
}
