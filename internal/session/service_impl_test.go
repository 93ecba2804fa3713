package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/domain/fsrs"
	"github.com/hindisrs/hindi-srs/internal/events"
	"github.com/hindisrs/hindi-srs/internal/exercise"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeCardSource struct {
	cards []*domain.Card
	err   error
}

func (f *fakeCardSource) GetByLearnerID(_ context.Context, _ uuid.UUID) ([]*domain.Card, error) {
	return f.cards, f.err
}

type fakeRecorder struct {
	recorded []*domain.ReviewEvent
	err      error
}

func (f *fakeRecorder) RecordReview(_ context.Context, _ *domain.Card, event *domain.ReviewEvent) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, event)
	return nil
}

// fakeSelector maps content items to a fixed exercise.
type fakeSelector struct {
	byContentItem map[uuid.UUID]*domain.Exercise
}

func (f *fakeSelector) Select(_ context.Context, card *domain.Card) (*domain.Exercise, error) {
	ex, ok := f.byContentItem[card.ContentItemID]
	if !ok {
		return nil, exercise.ErrNoExercises
	}
	return ex, nil
}

type recordingHandler struct {
	received []*events.ReviewGradedEvent
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.ReviewGradedEvent) error {
	h.received = append(h.received, event)
	return nil
}

// fixture wires a session service over in-memory fakes.
type fixture struct {
	svc      *sessionServiceImpl
	source   *fakeCardSource
	recorder *fakeRecorder
	selector *fakeSelector
	handler  *recordingHandler
	emitter  *events.InMemoryEventEmitter
}

func newFixture(t *testing.T, cards []*domain.Card) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srsService := fsrs.NewDefaultService()

	source := &fakeCardSource{cards: cards}
	recorder := &fakeRecorder{}
	selector := &fakeSelector{byContentItem: make(map[uuid.UUID]*domain.Exercise)}
	handler := &recordingHandler{}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(handler)

	svc := NewService(
		source,
		recorder,
		assessment.NewAssessor(log),
		func() ExerciseSelector { return selector },
		srsService,
		scheduler.New(srsService),
		emitter,
		NewManager(time.Hour, log),
		Config{MaxTotal: 20, MaxNew: 10},
		log,
	).(*sessionServiceImpl)
	svc.now = func() time.Time { return testNow }

	return &fixture{
		svc:      svc,
		source:   source,
		recorder: recorder,
		selector: selector,
		handler:  handler,
		emitter:  emitter,
	}
}

// dueCard creates a review-state card due before testNow, with a
// translation exercise registered in the fixture's selector.
func (f *fixture) addExercise(t *testing.T, card *domain.Card, answer string) *domain.Exercise {
	t.Helper()

	ex, err := domain.NewExercise(card.ContentItemID, domain.ExerciseTypeTranslation,
		"Translate: "+answer, answer, nil)
	require.NoError(t, err)
	f.selector.byContentItem[card.ContentItemID] = ex
	return ex
}

func dueCard(t *testing.T, overdue time.Duration) *domain.Card {
	t.Helper()

	due := testNow.Add(-overdue)
	card, err := domain.NewCard(uuid.New(), uuid.New(), domain.MemoryState{
		Stability:  2.0,
		Difficulty: 5.0,
		Due:        due,
		Reps:       2,
		State:      domain.CardStateReview,
	})
	require.NoError(t, err)
	card.LastReviewedAt = due.Add(-48 * time.Hour)
	return card
}

func freshCard(t *testing.T) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), uuid.New(), domain.MemoryState{
		Stability:  fsrs.MinStability,
		Difficulty: 5.0,
		Due:        testNow,
		State:      domain.CardStateNew,
	})
	require.NoError(t, err)
	return card
}

func TestStartEmptyQueue(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.svc.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEmptyQueue)
}

func TestStartCardLoadFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.source.err = errors.New("connection refused")

	_, err := f.svc.Start(context.Background(), uuid.New())

	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "start_session", svcErr.Operation)
}

func TestFullSessionWalk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cards := []*domain.Card{dueCard(t, 48*time.Hour), dueCard(t, 24*time.Hour), freshCard(t)}
	f := newFixture(t, cards)
	answers := make(map[uuid.UUID]string, len(cards))
	for i, card := range cards {
		ex := f.addExercise(t, card, "उत्तर")
		if i == 1 {
			// One wrong answer in the middle.
			answers[card.ID] = "गलत"
		} else {
			answers[card.ID] = ex.Answer
		}
	}

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, summary.Status)

	seen := 0
	for {
		prompt, err := f.svc.Next(ctx, summary.SessionID)
		if errors.Is(err, ErrSessionDone) {
			break
		}
		require.NoError(t, err)
		seen++

		result, err := f.svc.Submit(ctx, summary.SessionID, Answer{
			Response:  answers[prompt.CardID],
			ElapsedMs: 1500,
		})
		require.NoError(t, err)
		assert.False(t, result.NextDue.IsZero())
	}

	assert.Equal(t, 3, seen)
	assert.Len(t, f.recorder.recorded, 3)
	assert.Len(t, f.handler.received, 3)

	final, err := f.svc.End(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Equal(t, 3, final.Presented)
	assert.Equal(t, 2, final.Correct)
	assert.Equal(t, 2, final.RatingCounts[domain.RatingEasy])
	assert.Equal(t, 1, final.RatingCounts[domain.RatingAgain])
}

func TestSubmitWithoutPrompt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	card := dueCard(t, time.Hour)
	f := newFixture(t, []*domain.Card{card})
	f.addExercise(t, card, "उत्तर")

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	assert.ErrorIs(t, err, ErrNoActiveExercise)
}

func TestNextRepromptsActiveExercise(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cards := []*domain.Card{dueCard(t, 2*time.Hour), dueCard(t, time.Hour)}
	f := newFixture(t, cards)
	for _, card := range cards {
		f.addExercise(t, card, "उत्तर")
	}

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)

	first, err := f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)
	second, err := f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)

	assert.Equal(t, first.CardID, second.CardID)

	stats, err := f.svc.Stats(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Presented, "re-prompting must not double count")
}

func TestSubmitRetryAfterRecorderFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	card := dueCard(t, time.Hour)
	f := newFixture(t, []*domain.Card{card})
	f.addExercise(t, card, "उत्तर")

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)

	f.recorder.err = errors.New("deadlock detected")
	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	require.Error(t, err)

	// The prompt is still active; retrying succeeds once the store recovers.
	f.recorder.err = nil
	result, err := f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	require.NoError(t, err)
	assert.True(t, result.Assessment.Correct)
	assert.Len(t, f.recorder.recorded, 1)
}

func TestAbortMidSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var cards []*domain.Card
	for i := 0; i < 8; i++ {
		cards = append(cards, dueCard(t, time.Duration(i+1)*time.Hour))
	}
	f := newFixture(t, cards)
	for _, card := range cards {
		f.addExercise(t, card, "उत्तर")
	}

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Next(ctx, summary.SessionID)
		require.NoError(t, err)
		_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
		require.NoError(t, err)
	}

	ended, err := f.svc.End(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusAborted, ended.Status)
	assert.Equal(t, 5, ended.Presented)
	assert.Len(t, f.recorder.recorded, 5, "all graded reviews persist despite the abort")

	// End is idempotent.
	again, err := f.svc.End(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, ended.Status, again.Status)
	assert.Equal(t, ended.EndedAt, again.EndedAt)

	// A finished session refuses further work.
	_, err = f.svc.Next(ctx, summary.SessionID)
	assert.ErrorIs(t, err, ErrSessionDone)
	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	assert.ErrorIs(t, err, ErrSessionDone)
}

func TestSubmitSelfRatingOverride(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	card := dueCard(t, time.Hour)
	f := newFixture(t, []*domain.Card{card})
	f.addExercise(t, card, "उत्तर")

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)

	// A correct answer would suggest Easy, but the learner knows it was a
	// struggle and downgrades to Hard.
	hard := domain.RatingHard
	result, err := f.svc.Submit(ctx, summary.SessionID, Answer{
		Response:   "उत्तर",
		SelfRating: &hard,
	})
	require.NoError(t, err)

	assert.True(t, result.Assessment.Correct)
	assert.Equal(t, domain.RatingEasy, result.Assessment.SuggestedRating)
	assert.Equal(t, domain.RatingHard, result.Rating, "applied rating follows the override")

	require.Len(t, f.recorder.recorded, 1)
	assert.Equal(t, domain.RatingHard, f.recorder.recorded[0].Rating)

	final, err := f.svc.End(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.RatingCounts[domain.RatingHard])
	assert.Zero(t, final.RatingCounts[domain.RatingEasy])
	assert.Equal(t, 1, final.Correct, "correctness still comes from the assessment")
}

func TestSubmitRejectsOutOfRangeSelfRating(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	card := dueCard(t, time.Hour)
	f := newFixture(t, []*domain.Card{card})
	f.addExercise(t, card, "उत्तर")

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)

	bogus := domain.Rating(7)
	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{
		Response:   "उत्तर",
		SelfRating: &bogus,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
	assert.Empty(t, f.recorder.recorded, "nothing persists on a rejected rating")

	// The prompt stays active; a clean resubmit succeeds.
	result, err := f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	require.NoError(t, err)
	assert.Equal(t, domain.RatingEasy, result.Rating)
}

// sessionReadbackHandler reads the session's stats while handling an event,
// the way a progress-tracking consumer would.
type sessionReadbackHandler struct {
	svc       *sessionServiceImpl
	summaries []*Summary
}

func (h *sessionReadbackHandler) HandleEvent(ctx context.Context, event *events.ReviewGradedEvent) error {
	summary, err := h.svc.Stats(ctx, event.SessionID)
	if err != nil {
		return err
	}
	h.summaries = append(h.summaries, summary)
	return nil
}

func TestEventHandlerMayReadSessionState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	card := dueCard(t, time.Hour)
	f := newFixture(t, []*domain.Card{card})
	f.addExercise(t, card, "उत्तर")

	readback := &sessionReadbackHandler{svc: f.svc}
	f.emitter.RegisterHandler(readback)

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	require.NoError(t, err)

	require.Len(t, readback.summaries, 1)
	assert.Equal(t, 1, readback.summaries[0].Presented,
		"handler sees the session state from after the submit")
}

func TestCardsWithoutExercisesAreSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	withExercise := dueCard(t, time.Hour)
	without := dueCard(t, 2*time.Hour)
	f := newFixture(t, []*domain.Card{withExercise, without})
	f.addExercise(t, withExercise, "उत्तर")

	summary, err := f.svc.Start(ctx, uuid.New())
	require.NoError(t, err)

	prompt, err := f.svc.Next(ctx, summary.SessionID)
	require.NoError(t, err)
	assert.Equal(t, withExercise.ID, prompt.CardID)

	_, err = f.svc.Submit(ctx, summary.SessionID, Answer{Response: "उत्तर"})
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, summary.SessionID)
	assert.ErrorIs(t, err, ErrSessionDone)
}

func TestUnknownSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.svc.Next(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.End(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
