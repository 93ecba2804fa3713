package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
	"github.com/hindisrs/hindi-srs/internal/events"
	"github.com/hindisrs/hindi-srs/internal/exercise"
	"github.com/hindisrs/hindi-srs/internal/platform/logger"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
)

// Verify interface compliance at compile time.
var _ Service = (*sessionServiceImpl)(nil)

// CardSource loads the learner's cards the queue is built from.
type CardSource interface {
	GetByLearnerID(ctx context.Context, learnerID uuid.UUID) ([]*domain.Card, error)
}

// SelectorFactory produces a fresh ExerciseSelector per session, so
// type-variety history never leaks across sessions.
type SelectorFactory func() ExerciseSelector

// Config carries the session limits.
type Config struct {
	MaxTotal int
	MaxNew   int
}

// sessionServiceImpl implements the Service interface.
type sessionServiceImpl struct {
	cards       CardSource
	recorder    ReviewRecorder
	grader      Grader
	newSelector SelectorFactory
	srs         fsrs.Service
	sched       *scheduler.Scheduler
	emitter     events.EventEmitter
	registry    *Manager
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a session Service. The emitter may be nil to disable
// review-graded events; everything else is required.
func NewService(
	cards CardSource,
	recorder ReviewRecorder,
	grader Grader,
	newSelector SelectorFactory,
	srsService fsrs.Service,
	sched *scheduler.Scheduler,
	emitter events.EventEmitter,
	registry *Manager,
	cfg Config,
	log *slog.Logger,
) Service {
	if cards == nil {
		panic("card source cannot be nil")
	}
	if recorder == nil {
		panic("review recorder cannot be nil")
	}
	if grader == nil {
		panic("grader cannot be nil")
	}
	if newSelector == nil {
		panic("selector factory cannot be nil")
	}
	if srsService == nil {
		panic("srs service cannot be nil")
	}
	if sched == nil {
		panic("scheduler cannot be nil")
	}
	if registry == nil {
		panic("session registry cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &sessionServiceImpl{
		cards:       cards,
		recorder:    recorder,
		grader:      grader,
		newSelector: newSelector,
		srs:         srsService,
		sched:       sched,
		emitter:     emitter,
		registry:    registry,
		cfg:         cfg,
		logger:      log.With(slog.String("component", "session_service")),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start implements Service.Start.
func (s *sessionServiceImpl) Start(ctx context.Context, learnerID uuid.UUID) (*Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	cards, err := s.cards.GetByLearnerID(ctx, learnerID)
	if err != nil {
		log.Error("failed to load cards for session",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, &ServiceError{Operation: "start_session", Message: "failed to load cards", Err: err}
	}

	queue := s.sched.BuildSessionQueue(cards, now, s.cfg.MaxTotal, s.cfg.MaxNew)
	if len(queue) == 0 {
		log.Debug("nothing to review", slog.String("learner_id", learnerID.String()))
		return nil, ErrEmptyQueue
	}

	sess := newSession(learnerID, queue, s.newSelector(), now)
	s.registry.Put(sess)

	log.Info("session started",
		slog.String("session_id", sess.id.String()),
		slog.String("learner_id", learnerID.String()),
		slog.Int("queue_length", len(queue)))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.summary(), nil
}

// Next implements Service.Next.
func (s *sessionServiceImpl) Next(ctx context.Context, sessionID uuid.UUID) (*Prompt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	sess.lastTouched = now

	if sess.finished() {
		return nil, ErrSessionDone
	}

	// Re-prompt the active exercise rather than burning a queue entry when
	// the client retries.
	if sess.active != nil {
		return s.prompt(sess, sess.active), nil
	}

	for sess.position < len(sess.queue) {
		entry := sess.queue[sess.position]
		sess.position++

		ex, err := sess.selector.Select(ctx, entry.Card)
		if errors.Is(err, exercise.ErrNoExercises) {
			log.Warn("skipping card with no exercises",
				slog.String("session_id", sess.id.String()),
				slog.String("card_id", entry.Card.ID.String()))
			continue
		}
		if err != nil {
			// Do not consume the entry on a transient failure.
			sess.position--
			return nil, &ServiceError{Operation: "next_prompt", Message: "failed to select exercise", Err: err}
		}

		sess.active = &presentation{entry: entry, exercise: ex, presentedAt: now}
		sess.presented++
		return s.prompt(sess, sess.active), nil
	}

	sess.end(now)
	log.Info("session completed",
		slog.String("session_id", sess.id.String()),
		slog.Int("presented", sess.presented))
	return nil, ErrSessionDone
}

// Submit implements Service.Submit.
func (s *sessionServiceImpl) Submit(ctx context.Context, sessionID uuid.UUID, answer Answer) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	result, notice, err := s.submitLocked(ctx, log, sess, answer)
	if err != nil {
		return nil, err
	}

	// Emitted after the session lock is released so handlers may call back
	// into the service without deadlocking.
	if s.emitter != nil {
		if err := s.emitter.EmitEvent(ctx, notice); err != nil {
			// Event consumers are advisory; the review is already committed.
			log.Warn("review graded event delivery failed",
				slog.String("error", err.Error()),
				slog.String("event_id", notice.ID.String()))
		}
	}

	return result, nil
}

// submitLocked grades and records the answer under the session lock and
// returns the result plus the event notice for the caller to emit.
func (s *sessionServiceImpl) submitLocked(
	ctx context.Context,
	log *slog.Logger,
	sess *Session,
	answer Answer,
) (*Result, *events.ReviewGradedEvent, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	sess.lastTouched = now

	if sess.finished() {
		return nil, nil, ErrSessionDone
	}
	if sess.active == nil {
		return nil, nil, ErrNoActiveExercise
	}

	active := sess.active
	graded := s.grader.Assess(ctx, active.exercise, answer.Response)

	rating := graded.SuggestedRating
	if answer.SelfRating != nil {
		if !answer.SelfRating.Valid() {
			return nil, nil, &ServiceError{
				Operation: "submit_answer",
				Message:   "invalid self rating",
				Err:       domain.ErrInvalidRating,
			}
		}
		rating = *answer.SelfRating
	}

	elapsedMs := answer.ElapsedMs
	if elapsedMs <= 0 {
		elapsedMs = int(now.Sub(active.presentedAt).Milliseconds())
	}

	updated, event, err := s.srs.ApplyReview(
		active.entry.Card, rating, active.exercise.Type, elapsedMs, now)
	if err != nil {
		log.Error("failed to apply review",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.id.String()),
			slog.String("card_id", active.entry.Card.ID.String()))
		return nil, nil, &ServiceError{Operation: "submit_answer", Message: "failed to apply review", Err: err}
	}

	if err := s.recorder.RecordReview(ctx, updated, event); err != nil {
		// The prompt stays active so the client can retry the submit.
		log.Error("failed to persist review",
			slog.String("error", err.Error()),
			slog.String("session_id", sess.id.String()),
			slog.String("card_id", updated.ID.String()))
		return nil, nil, &ServiceError{Operation: "submit_answer", Message: "failed to persist review", Err: err}
	}

	// The queue holds pointers into the card set; fold the committed state
	// back in so a rebuild within this session sees it.
	*active.entry.Card = *updated
	sess.active = nil

	if graded.Correct {
		sess.correct++
	}
	sess.ratingCounts[event.Rating]++

	if sess.exhausted() {
		sess.end(now)
	}

	result := &Result{
		Assessment: graded,
		Rating:     event.Rating,
		NextDue:    updated.Due,
		Stability:  updated.Stability,
		State:      updated.State,
	}
	return result, events.NewReviewGradedEvent(sess.id, event, graded.Correct), nil
}

// End implements Service.End.
func (s *sessionServiceImpl) End(ctx context.Context, sessionID uuid.UUID) (*Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	sess.lastTouched = now

	if !sess.finished() {
		sess.end(now)
		log.Info("session ended",
			slog.String("session_id", sess.id.String()),
			slog.String("status", string(sess.status)),
			slog.Int("presented", sess.presented),
			slog.Int("correct", sess.correct))
	}

	return sess.summary(), nil
}

// Stats implements Service.Stats.
func (s *sessionServiceImpl) Stats(_ context.Context, sessionID uuid.UUID) (*Summary, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.summary(), nil
}

// prompt builds the wire representation of the active presentation.
// Callers must hold sess.mu.
func (s *sessionServiceImpl) prompt(sess *Session, active *presentation) *Prompt {
	return &Prompt{
		SessionID:      sess.id,
		CardID:         active.entry.Card.ID,
		Exercise:       active.exercise,
		Classification: active.entry.Classification,
		Remaining:      len(sess.queue) - sess.position,
		PresentedAt:    active.presentedAt,
	}
}
