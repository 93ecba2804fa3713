// Package main implements the entry point for the Hindi SRS server, which
// schedules spaced-repetition reviews and grades learner answers.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/hindisrs/hindi-srs/internal/config"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, wires the application together, and serves until
// shutdown. Split from main so initialization failures surface as errors.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"fuzzy_judge_enabled", cfg.LLM.GeminiAPIKey != "")

	ctx := context.Background()

	db, err := setupDatabase(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
