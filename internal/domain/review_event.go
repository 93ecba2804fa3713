package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewEvent-specific validation errors
var (
	// ErrEventIDEmpty is returned when a review event ID is empty or nil.
	ErrEventIDEmpty = errors.New("review event ID cannot be empty")

	// ErrEventCardIDEmpty is returned when a review event's card ID is empty or nil.
	ErrEventCardIDEmpty = errors.New("review event card ID cannot be empty")

	// ErrEventLearnerIDEmpty is returned when a review event's learner ID is empty or nil.
	ErrEventLearnerIDEmpty = errors.New("review event learner ID cannot be empty")

	// ErrNegativeElapsed is returned when the answer time is negative.
	ErrNegativeElapsed = errors.New("elapsed milliseconds cannot be negative")
)

// ReviewEvent is an immutable, append-only record of one graded response.
// Exactly one event is written per graded answer and events are never
// mutated afterwards; together they form the audit log and the sole input
// for any future recalibration of the scheduling parameters.
type ReviewEvent struct {
	ID           uuid.UUID    `json:"id"`
	CardID       uuid.UUID    `json:"card_id"`
	LearnerID    uuid.UUID    `json:"learner_id"`
	ExerciseType ExerciseType `json:"exercise_type"`
	Rating       Rating       `json:"rating"`
	ElapsedMs    int          `json:"elapsed_ms"` // Time from prompt to answer
	Before       MemoryState  `json:"before"`     // Memory state snapshot before the update
	After        MemoryState  `json:"after"`      // Memory state snapshot after the update
	ReviewedAt   time.Time    `json:"reviewed_at"`
}

// NewReviewEvent creates a review event recording the transition a graded
// answer caused. The before snapshot is taken from the card as it was when
// the exercise was presented, the after snapshot from the updated card.
func NewReviewEvent(
	cardID, learnerID uuid.UUID,
	exerciseType ExerciseType,
	rating Rating,
	elapsedMs int,
	before, after MemoryState,
	reviewedAt time.Time,
) (*ReviewEvent, error) {
	event := &ReviewEvent{
		ID:           uuid.New(),
		CardID:       cardID,
		LearnerID:    learnerID,
		ExerciseType: exerciseType,
		Rating:       rating,
		ElapsedMs:    elapsedMs,
		Before:       before,
		After:        after,
		ReviewedAt:   reviewedAt,
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
// Returns an error if any field fails validation.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.CardID == uuid.Nil {
		return ErrEventCardIDEmpty
	}

	if e.LearnerID == uuid.Nil {
		return ErrEventLearnerIDEmpty
	}

	if !e.Rating.Valid() {
		return ErrInvalidRating
	}

	if e.ElapsedMs < 0 {
		return ErrNegativeElapsed
	}

	return nil
}
