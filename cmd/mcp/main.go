package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	mcpadapter "github.com/ekomarov/drafter/internal/adapters/mcp"
	"github.com/ekomarov/drafter/internal/bootstrap"
	"github.com/ekomarov/drafter/internal/config"
	"github.com/ekomarov/drafter/internal/observability/logging"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	// Stdout carries the MCP session; logs must stay on stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(app.Outlines, app.Content, app.Render, version)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
