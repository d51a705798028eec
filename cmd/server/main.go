// Package main runs the studykit HTTP server: the study service over JSON,
// a background worker pool for document summaries, and optional Postgres
// storage and Redis event notifications.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "studykit: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.Addr != "",
		"auto_summarize", cfg.LLM.AutoSummarize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	synth, err := newSynthesizer(ctx, cfg.LLM, log)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, log, synth)
	if err != nil {
		return err
	}
	defer app.cleanup()

	if err := app.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		return err
	}
	return nil
}
