// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitness-coach/config"
	"fitness-coach/internal/chat"
	"fitness-coach/internal/db"
	"fitness-coach/internal/email"
	"fitness-coach/internal/gpt"
	"fitness-coach/internal/server"
	"fitness-coach/internal/session"
	"fitness-coach/pkg/logger"
)

func main() {
	// Initialize logger
	l := logger.New()
	l.Info("Starting Fitness Coach...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	// Validate critical configuration
	if cfg.OpenAI.APIKey == "" {
		l.Fatal("OpenAI API key is not configured")
	}

	// Connect to the plan database with retry; fall back to a degraded
	// store when it stays unreachable, the chat flow works without it.
	var planStore *db.PostgresStore
	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		planStore, err = db.NewPostgresStore(db.Config(cfg.DB), l)
		if err == nil {
			break
		}
		l.Error("Failed to connect to database, retrying...", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if planStore == nil {
		l.Warn("Database unavailable, running without persistence")
		planStore = db.NewDegraded(l)
	}
	defer planStore.Close()

	// Initialize the narrative generator
	generator := gpt.NewClient(cfg.OpenAI.APIKey).WithModel(cfg.OpenAI.Model)

	// Initialize the email sender
	sender := email.NewSender(cfg.Email.SendGridKey, cfg.Email.From, cfg.Email.AppURL, l)

	// Session store with idle eviction
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewStore(cfg.Session.TTL, l)
	sessions.StartJanitor(ctx, cfg.Session.JanitorInterval)

	// Wire the turn orchestrator and the HTTP server
	orch := chat.NewOrchestrator(sessions, planStore, generator, sender, l)
	httpServer := server.NewServer(cfg.Server.Port, orch, planStore, l)

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Error("Error during HTTP server shutdown", err)
	}

	l.Info("Server stopped successfully")
}
