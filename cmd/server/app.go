package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hindisrs/hindi-srs/internal/api"
	"github.com/hindisrs/hindi-srs/internal/api/middleware"
	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/config"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
	"github.com/hindisrs/hindi-srs/internal/events"
	"github.com/hindisrs/hindi-srs/internal/exercise"
	"github.com/hindisrs/hindi-srs/internal/platform/gemini"
	"github.com/hindisrs/hindi-srs/internal/platform/postgres"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
	"github.com/hindisrs/hindi-srs/internal/service/auth"
	"github.com/hindisrs/hindi-srs/internal/session"
	"github.com/hindisrs/hindi-srs/internal/store"
	"github.com/hindisrs/hindi-srs/migrations"
)

// reaperInterval is how often the session registry sweeps idle sessions.
const reaperInterval = time.Minute

// reviewLogHandler writes an audit line for every graded review.
type reviewLogHandler struct {
	logger *slog.Logger
}

// HandleEvent implements events.EventHandler.
func (h *reviewLogHandler) HandleEvent(_ context.Context, event *events.ReviewGradedEvent) error {
	h.logger.Info("review graded",
		"event_id", event.ID,
		"session_id", event.SessionID,
		"learner_id", event.LearnerID,
		"card_id", event.CardID,
		"exercise_type", event.ExerciseType,
		"rating", event.Rating,
		"correct", event.Correct,
		"next_due", event.NextDue)
	return nil
}

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	learnerStore store.LearnerStore
	cardStore    store.CardStore
	statsStore   store.StatsStore

	jwtService auth.JWTService
	sessions   session.Service
	registry   *session.Manager
}

// newApplication wires all dependencies. It accepts the core pieces that
// must exist before anything else: configuration, logger, and an open
// database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	hasher := auth.NewBcryptVerifier()

	app.learnerStore = postgres.NewPostgresLearnerStore(db, hasher)
	app.cardStore = postgres.NewPostgresCardStore(db)
	app.statsStore = postgres.NewPostgresStatsStore(db)
	exerciseStore := postgres.NewPostgresExerciseStore(db)
	eventStore := postgres.NewPostgresReviewEventStore(db)

	srsService := fsrs.NewServiceWithParams(fsrs.NewParams(fsrs.ParamsConfig{
		TargetRetention: cfg.SRS.TargetRetention,
	}))
	sched := scheduler.New(srsService)

	grader, err := setupGrader(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(&reviewLogHandler{logger: logger.With("component", "review_audit")})

	app.registry = session.NewManager(
		time.Duration(cfg.Session.TTLMinutes)*time.Minute,
		logger,
	)
	app.registry.StartReaper(ctx, reaperInterval)

	app.sessions = session.NewService(
		app.cardStore,
		session.NewTransactionalRecorder(db, app.cardStore, eventStore),
		grader,
		func() session.ExerciseSelector {
			return exercise.NewSelector(exerciseStore, logger)
		},
		srsService,
		sched,
		emitter,
		app.registry,
		session.Config{
			MaxTotal: cfg.SRS.MaxReviewsPerSession,
			MaxNew:   cfg.SRS.MaxNewCardsPerSession,
		},
		logger,
	)

	logger.Info("application initialized")
	return app, nil
}

// setupGrader builds the answer assessor, attaching the Gemini fuzzy judge
// only when an API key is configured. Without a key, near-miss free-text
// answers fall back to exact matching.
func setupGrader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Grader, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		logger.Info("no Gemini API key configured, fuzzy answer judging disabled")
		return assessment.NewAssessor(logger), nil
	}

	judge, err := gemini.NewJudge(ctx, logger.With("component", "fuzzy_judge"), cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fuzzy judge: %w", err)
	}
	logger.Info("Gemini fuzzy judge initialized", "model", cfg.LLM.ModelName)

	return assessment.NewAssessor(logger,
		assessment.WithFuzzyJudge(judge),
		assessment.WithThreshold(cfg.SRS.FuzzyMatchThreshold),
	), nil
}

// setupRouter assembles the HTTP routes over the application's handlers.
func (app *application) setupRouter() http.Handler {
	verifier := auth.NewBcryptVerifier()

	return api.NewRouter(api.RouterDeps{
		Auth:     api.NewAuthHandler(app.learnerStore, app.jwtService, verifier, app.logger),
		Sessions: api.NewSessionHandler(app.sessions, app.logger),
		Stats:    api.NewStatsHandler(app.statsStore, app.logger),
		AuthMW:   middleware.NewAuthMiddleware(app.jwtService),
		Logger:   app.logger,
	})
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startHTTPServer serves until a shutdown signal or context cancellation,
// then drains in-flight requests before cleanup.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: router,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutdown signal received")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup()
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}

// setupDatabase opens the connection pool and verifies connectivity.
func setupDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

// runMigrations applies the embedded schema migrations.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations applied")
	return nil
}
