package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validMemoryState(now time.Time) MemoryState {
	return MemoryState{
		Stability:  0.1,
		Difficulty: 5.0,
		Due:        now,
		Reps:       0,
		Lapses:     0,
		State:      CardStateNew,
	}
}

func TestNewCard(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	card, err := NewCard(uuid.New(), uuid.New(), validMemoryState(now))
	if err != nil {
		t.Fatalf("NewCard failed: %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected a generated card ID")
	}
	if !card.IsNew() {
		t.Error("Expected a freshly created card to be new")
	}
	if !card.LastReviewedAt.IsZero() {
		t.Error("Expected zero LastReviewedAt before the first review")
	}
}

func TestCardValidate(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	testCases := []struct {
		name        string
		mutate      func(*Card)
		expectedErr error
	}{
		{
			name:        "missing learner ID",
			mutate:      func(c *Card) { c.LearnerID = uuid.Nil },
			expectedErr: ErrCardLearnerIDEmpty,
		},
		{
			name:        "missing content item ID",
			mutate:      func(c *Card) { c.ContentItemID = uuid.Nil },
			expectedErr: ErrCardContentItemIDEmpty,
		},
		{
			name:        "zero stability",
			mutate:      func(c *Card) { c.Stability = 0 },
			expectedErr: ErrNonPositiveStability,
		},
		{
			name:        "negative stability",
			mutate:      func(c *Card) { c.Stability = -2 },
			expectedErr: ErrNonPositiveStability,
		},
		{
			name:        "difficulty below range",
			mutate:      func(c *Card) { c.Difficulty = 0.5 },
			expectedErr: ErrDifficultyOutOfRange,
		},
		{
			name:        "difficulty above range",
			mutate:      func(c *Card) { c.Difficulty = 10.5 },
			expectedErr: ErrDifficultyOutOfRange,
		},
		{
			name:        "negative lapses",
			mutate:      func(c *Card) { c.Lapses = -1 },
			expectedErr: ErrNegativeReps,
		},
		{
			name:        "unknown lifecycle state",
			mutate:      func(c *Card) { c.State = "suspended" },
			expectedErr: ErrInvalidCardState,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			card, err := NewCard(uuid.New(), uuid.New(), validMemoryState(now))
			if err != nil {
				t.Fatalf("NewCard failed: %v", err)
			}

			tc.mutate(card)

			if err := card.Validate(); !errors.Is(err, tc.expectedErr) {
				t.Errorf("Expected %v, got %v", tc.expectedErr, err)
			}
		})
	}
}

func TestCardIsDue(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	card, err := NewCard(uuid.New(), uuid.New(), validMemoryState(now))
	if err != nil {
		t.Fatalf("NewCard failed: %v", err)
	}

	// New cards are introduced through the new-card quota, never the due set.
	if card.IsDue(now.Add(time.Hour)) {
		t.Error("New card must not count as due")
	}

	card.State = CardStateReview
	card.Due = now

	if !card.IsDue(now) {
		t.Error("Card due exactly now should count as due")
	}
	if card.IsDue(now.Add(-time.Minute)) {
		t.Error("Card should not be due before its due time")
	}
}

func TestRatingValid(t *testing.T) {
	t.Parallel()

	for rating := Rating(-1); rating <= 6; rating++ {
		expected := rating >= RatingAgain && rating <= RatingEasy
		if rating.Valid() != expected {
			t.Errorf("rating %d: expected Valid()=%v", rating, expected)
		}
	}

	if RatingAgain.Success() {
		t.Error("Again must not count as success")
	}
	for _, r := range []Rating{RatingHard, RatingGood, RatingEasy} {
		if !r.Success() {
			t.Errorf("%s should count as success", r)
		}
	}
}
