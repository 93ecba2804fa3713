// Package main implements the srs command line client: a terminal front end
// over the same engine the server exposes, for single-learner local use.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/config"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
	"github.com/hindisrs/hindi-srs/internal/events"
	"github.com/hindisrs/hindi-srs/internal/exercise"
	"github.com/hindisrs/hindi-srs/internal/platform/gemini"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/platform/postgres"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
	"github.com/hindisrs/hindi-srs/internal/service/auth"
	"github.com/hindisrs/hindi-srs/internal/session"
	"github.com/hindisrs/hindi-srs/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "srs",
	Short: "srs - spaced repetition Hindi practice from the terminal",
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a learner account",
	RunE:  runRegister,
}

var addCmd = &cobra.Command{
	Use:   "add <term> <definition>",
	Short: "Add a content item with exercises and a card for the learner",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show cards due for review",
	RunE:  runDue,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning progress",
	RunE:  runStats,
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run an interactive review session",
	RunE:  runReview,
}

var levelCmd = &cobra.Command{
	Use:   "level <A1|A2|B1|B2|C1|C2>",
	Short: "Set the learner's self-assessed CEFR level",
	Args:  cobra.ExactArgs(1),
	RunE:  runLevel,
}

var (
	emailFlag        string
	nameFlag         string
	passwordFlag     string
	romanizationFlag string
	familiarityFlag  string
	optionsFlag      []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&emailFlag, "email", "e", "", "Learner email")

	registerCmd.Flags().StringVar(&nameFlag, "name", "", "Learner name")
	registerCmd.Flags().StringVar(&passwordFlag, "password", "", "Account password (min 12 characters)")

	addCmd.Flags().StringVar(&romanizationFlag, "romanization", "", "Latin-script rendering of the term")
	addCmd.Flags().
		StringVar(&familiarityFlag, "familiarity", "unknown", "Prior exposure hint: unknown, seen, or known")
	addCmd.Flags().
		StringSliceVar(&optionsFlag, "options", nil, "Distractor definitions for the multiple-choice exercise")

	rootCmd.AddCommand(registerCmd, addCmd, dueCmd, statsCmd, reviewCmd, levelCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env bundles the dependencies every command needs.
type env struct {
	cfg *config.Config
	db  *sql.DB

	learners  store.LearnerStore
	items     store.ContentItemStore
	exercises store.ExerciseStore
	cards     store.CardStore
	reviews   store.ReviewEventStore
	stats     store.StatsStore

	srs   fsrs.Service
	sched *scheduler.Scheduler
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	srsService := fsrs.NewServiceWithParams(fsrs.NewParams(fsrs.ParamsConfig{
		TargetRetention: cfg.SRS.TargetRetention,
	}))

	return &env{
		cfg:       cfg,
		db:        db,
		learners:  postgres.NewPostgresLearnerStore(db, auth.NewBcryptVerifier()),
		items:     postgres.NewPostgresContentItemStore(db),
		exercises: postgres.NewPostgresExerciseStore(db),
		cards:     postgres.NewPostgresCardStore(db),
		reviews:   postgres.NewPostgresReviewEventStore(db),
		stats:     postgres.NewPostgresStatsStore(db),
		srs:       srsService,
		sched:     scheduler.New(srsService),
	}, nil
}

func (e *env) close() {
	_ = e.db.Close()
}

// learner resolves the --email flag to a stored learner.
func (e *env) learner(ctx context.Context) (*domain.Learner, error) {
	if emailFlag == "" {
		return nil, errors.New("--email is required")
	}
	learner, err := e.learners.GetByEmail(ctx, emailFlag)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("no learner with email %s; run 'srs register' first", emailFlag)
		}
		return nil, err
	}
	return learner, nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	if emailFlag == "" || nameFlag == "" || passwordFlag == "" {
		return errors.New("--email, --name, and --password are required")
	}

	learner, err := domain.NewLearner(emailFlag, nameFlag, passwordFlag)
	if err != nil {
		return err
	}

	if err := env.learners.Create(cmd.Context(), learner); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fmt.Errorf("email %s is already registered", emailFlag)
		}
		return err
	}

	fmt.Printf("Registered %s (%s)\n", learner.Name, learner.Email)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	learner, err := env.learner(ctx)
	if err != nil {
		return err
	}

	term, definition := args[0], args[1]
	familiarity := domain.Familiarity(familiarityFlag)

	item, err := domain.NewContentItem(term, definition, familiarity)
	if err != nil {
		return err
	}
	item.Romanization = romanizationFlag

	if err := env.items.Create(ctx, item); err != nil {
		return fmt.Errorf("create content item: %w", err)
	}

	// An MCQ for recognition practice plus a translation for production.
	// The correct definition always rides along with the distractors.
	options := append([]string{definition}, optionsFlag...)
	mcq, err := domain.NewExercise(item.ID, domain.ExerciseTypeMCQ,
		fmt.Sprintf("What does %s mean?", term), definition, options)
	if err != nil {
		return err
	}
	translation, err := domain.NewExercise(item.ID, domain.ExerciseTypeTranslation,
		fmt.Sprintf("Translate: %s", term), definition, nil)
	if err != nil {
		return err
	}
	for _, ex := range []*domain.Exercise{mcq, translation} {
		if err := env.exercises.Create(ctx, ex); err != nil {
			return fmt.Errorf("create exercise: %w", err)
		}
	}

	card, err := domain.NewCard(learner.ID, item.ID, env.srs.InitialState(familiarity, time.Now().UTC()))
	if err != nil {
		return err
	}
	if err := env.cards.Create(ctx, card); err != nil {
		return fmt.Errorf("create card: %w", err)
	}

	fmt.Printf("Added %s = %s (%s, due %s)\n",
		term, definition, card.State, card.Due.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLevel(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	learner, err := env.learner(ctx)
	if err != nil {
		return err
	}

	level := strings.ToUpper(args[0])
	switch level {
	case "A1", "A2", "B1", "B2", "C1", "C2":
	default:
		return fmt.Errorf("invalid level %q: must be one of A1, A2, B1, B2, C1, C2", args[0])
	}

	if err := env.learners.UpdateLevel(ctx, learner.ID, level); err != nil {
		return err
	}

	fmt.Printf("Level for %s set to %s\n", learner.Email, level)
	return nil
}

func runDue(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	learner, err := env.learner(ctx)
	if err != nil {
		return err
	}

	cards, err := env.cards.GetByLearnerID(ctx, learner.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	var due, fresh int
	for _, card := range cards {
		switch {
		case card.IsDue(now):
			due++
		case card.IsNew():
			fresh++
		}
	}

	fmt.Printf("Due now: %d\nNew: %d\nTotal cards: %d\n", due, fresh, len(cards))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	learner, err := env.learner(ctx)
	if err != nil {
		return err
	}

	stats, err := env.stats.GetLearnerStats(ctx, learner.ID, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Total cards:      %d\n", stats.TotalCards)
	fmt.Printf("New:              %d\n", stats.NewCards)
	fmt.Printf("Due:              %d\n", stats.DueCards)
	fmt.Printf("Mature:           %d\n", stats.MatureCards)
	fmt.Printf("Total reviews:    %d\n", stats.TotalReviews)
	fmt.Printf("30-day retention: %.0f%%\n", stats.RecentRetention*100)
	return nil
}

func runReview(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	learner, err := env.learner(ctx)
	if err != nil {
		return err
	}

	log := logger.Setup("error")
	grader := assessment.NewAssessor(log)
	if env.cfg.LLM.GeminiAPIKey != "" {
		judge, err := gemini.NewJudge(ctx, log, env.cfg.LLM)
		if err != nil {
			return fmt.Errorf("initialize fuzzy judge: %w", err)
		}
		grader = assessment.NewAssessor(log,
			assessment.WithFuzzyJudge(judge),
			assessment.WithThreshold(env.cfg.SRS.FuzzyMatchThreshold))
	}

	registry := session.NewManager(time.Duration(env.cfg.Session.TTLMinutes)*time.Minute, log)
	svc := session.NewService(
		env.cards,
		session.NewTransactionalRecorder(env.db, env.cards, env.reviews),
		grader,
		func() session.ExerciseSelector {
			return exercise.NewSelector(env.exercises, log)
		},
		env.srs,
		env.sched,
		events.NewInMemoryEventEmitter(log),
		registry,
		session.Config{
			MaxTotal: env.cfg.SRS.MaxReviewsPerSession,
			MaxNew:   env.cfg.SRS.MaxNewCardsPerSession,
		},
		log,
	)

	summary, err := svc.Start(ctx, learner.ID)
	if err != nil {
		if errors.Is(err, session.ErrEmptyQueue) {
			fmt.Println("Nothing to review. आराम करो!")
			return nil
		}
		return err
	}

	fmt.Println("Review session started. Press Enter on an empty line to quit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		prompt, err := svc.Next(ctx, summary.SessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionDone) {
				break
			}
			return err
		}

		fmt.Printf("\n[%d left] %s\n", prompt.Remaining, prompt.Exercise.Prompt)
		for i, option := range prompt.Exercise.Options {
			fmt.Printf("  %d. %s\n", i+1, option)
		}
		fmt.Print("> ")

		if !scanner.Scan() {
			break
		}
		response := strings.TrimSpace(scanner.Text())
		if response == "" {
			break
		}

		// For MCQs the learner types the option number.
		if n := len(prompt.Exercise.Options); n > 0 {
			var idx int
			if _, err := fmt.Sscanf(response, "%d", &idx); err == nil && idx >= 1 && idx <= n {
				response = prompt.Exercise.Options[idx-1]
			}
		}

		// Leaving ElapsedMs zero lets the service time the answer from when
		// the prompt was presented.
		result, err := svc.Submit(ctx, summary.SessionID, session.Answer{Response: response})
		if err != nil {
			return err
		}

		if result.Assessment.Correct {
			fmt.Printf("Correct! Next review %s\n", result.NextDue.Local().Format("2006-01-02 15:04"))
		} else {
			fmt.Printf("Not quite. Expected: %s\n", prompt.Exercise.Answer)
			if result.Assessment.Feedback != "" {
				fmt.Println(result.Assessment.Feedback)
			}
		}
	}

	final, err := svc.End(ctx, summary.SessionID)
	if err != nil {
		return err
	}

	fmt.Printf("\nSession %s: %d reviewed, %d correct\n",
		final.Status, final.Presented, final.Correct)
	return nil
}
