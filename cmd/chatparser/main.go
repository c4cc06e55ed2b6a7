package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dhyanakaruna/chat-parser/internal/anthropic"
	"github.com/dhyanakaruna/chat-parser/internal/api"
	"github.com/dhyanakaruna/chat-parser/internal/config"
	"github.com/dhyanakaruna/chat-parser/internal/extractor"
	"github.com/dhyanakaruna/chat-parser/internal/hermes"
	"github.com/dhyanakaruna/chat-parser/internal/processor"
	"github.com/dhyanakaruna/chat-parser/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("chatparser starting", "port", cfg.Port, "env", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database. Missing configuration degrades the service instead of
	// killing it: the upload and read endpoints answer 500 per request.
	var db *store.Store
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set — persistence disabled")
	} else {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		slog.Info("database connected")
	}

	// Anthropic client + extraction pipeline.
	if cfg.AnthropicAPIKey == "" {
		slog.Warn("ANTHROPIC_API_KEY not set — uploads will fail with a configuration error")
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey)
	ext := extractor.New(
		llm,
		cfg.Models,
		time.Duration(cfg.AttemptTimeout)*time.Second,
		cfg.MaxContentChars,
		slog.Default(),
	)
	slog.Info("extractor ready", "models", cfg.Models, "attempt_timeout_secs", cfg.AttemptTimeout)

	// NATS (optional — chatparser works without it, just no processed events).
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		var err error
		hermesClient, err = hermes.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without processed events")
	}

	var proc *processor.Processor
	if db != nil {
		proc = processor.New(db, ext, hermesClient, slog.Default())
	}

	srv := api.NewServer(cfg, db, proc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	slog.Info("chatparser ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	cancel()
	slog.Info("chatparser stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
