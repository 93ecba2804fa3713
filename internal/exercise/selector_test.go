package exercise

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

	"github.com/hindisrs/hindi-srs/internal/domain"
)

type stubStore struct {
	exercises []*domain.Exercise
	err       error
}

func (s *stubStore) GetByContentItemID(_ context.Context, _ uuid.UUID) ([]*domain.Exercise, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.exercises, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func exerciseOfType(t *testing.T, contentItemID uuid.UUID, exType domain.ExerciseType) *domain.Exercise {
	t.Helper()

	var options []string
	if exType == domain.ExerciseTypeMCQ {
		options = []string{"नमस्ते", "अलविदा", "धन्यवाद"}
	}

	ex, err := domain.NewExercise(contentItemID, exType, "Translate: hello", "नमस्ते", options)
	require.NoError(t, err)
	return ex
}

func cardWithHistory(t *testing.T, contentItemID uuid.UUID, reps, lapses int) *domain.Card {
	t.Helper()

	state := domain.CardStateReview
	if reps == 0 {
		state = domain.CardStateNew
	}

	card, err := domain.NewCard(uuid.New(), contentItemID, domain.MemoryState{
		Stability:  1.0,
		Difficulty: 5.0,
		Due:        time.Now().UTC(),
		Reps:       reps,
		Lapses:     lapses,
		State:      state,
	})
	require.NoError(t, err)
	return card
}

func fullStore(t *testing.T, contentItemID uuid.UUID) *stubStore {
	t.Helper()

	return &stubStore{exercises: []*domain.Exercise{
		exerciseOfType(t, contentItemID, domain.ExerciseTypeMCQ),
		exerciseOfType(t, contentItemID, domain.ExerciseTypeCloze),
		exerciseOfType(t, contentItemID, domain.ExerciseTypeTranslation),
	}}
}

func TestSelectPreferredType(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	contentItemID := uuid.New()

	testCases := []struct {
		name     string
		reps     int
		lapses   int
		expected domain.ExerciseType
	}{
		{"struggling card gets recognition", 8, 4, domain.ExerciseTypeMCQ},
		{"young card gets recognition", 1, 0, domain.ExerciseTypeMCQ},
		{"mature clean card gets cloze", 6, 0, domain.ExerciseTypeCloze},
		{"fresh selector defaults to recognition", 3, 1, domain.ExerciseTypeMCQ},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			selector := NewSelector(fullStore(t, contentItemID), testLogger())

			chosen, err := selector.Select(ctx, cardWithHistory(t, contentItemID, tc.reps, tc.lapses))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, chosen.Type)
		})
	}
}

func TestSelectVariesAfterRepetition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	contentItemID := uuid.New()
	selector := NewSelector(fullStore(t, contentItemID), testLogger())

	// A mid-maturity card with a lapse has no strong type preference, so
	// after a recognition exercise the selector should move off it.
	midCard := cardWithHistory(t, contentItemID, 3, 1)

	first, err := selector.Select(ctx, midCard)
	require.NoError(t, err)
	require.Equal(t, domain.ExerciseTypeMCQ, first.Type)

	second, err := selector.Select(ctx, midCard)
	require.NoError(t, err)
	assert.NotEqual(t, first.Type, second.Type)
}

func TestSelectFallsBackAcrossTypes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	contentItemID := uuid.New()

	// Only translation exercises exist; a card preferring recognition must
	// still get something.
	store := &stubStore{exercises: []*domain.Exercise{
		exerciseOfType(t, contentItemID, domain.ExerciseTypeTranslation),
	}}
	selector := NewSelector(store, testLogger())

	chosen, err := selector.Select(ctx, cardWithHistory(t, contentItemID, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.ExerciseTypeTranslation, chosen.Type)
}

func TestSelectErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	contentItemID := uuid.New()

	t.Run("no exercises", func(t *testing.T) {
		selector := NewSelector(&stubStore{}, testLogger())

		_, err := selector.Select(ctx, cardWithHistory(t, contentItemID, 1, 0))
		assert.ErrorIs(t, err, ErrNoExercises)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		storeErr := errors.New("connection reset")
		selector := NewSelector(&stubStore{err: storeErr}, testLogger())

		_, err := selector.Select(ctx, cardWithHistory(t, contentItemID, 1, 0))
		assert.ErrorIs(t, err, storeErr)
	})
}
