package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// ReviewGradedEvent is published after a review has been graded and its
// card update and review log entry committed. Handlers run after the fact;
// they cannot affect the review outcome.
type ReviewGradedEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	SessionID uuid.UUID `json:"session_id"`
	LearnerID uuid.UUID `json:"learner_id"`
	CardID    uuid.UUID `json:"card_id"`

	ExerciseType domain.ExerciseType `json:"exercise_type"`
	Rating       domain.Rating       `json:"rating"`
	Correct      bool                `json:"correct"`

	// NextDue is when the card comes back around after this review.
	NextDue time.Time `json:"next_due"`

	CreatedAt time.Time `json:"created_at"`
}

// NewReviewGradedEvent creates a ReviewGradedEvent from a graded review.
func NewReviewGradedEvent(
	sessionID uuid.UUID,
	event *domain.ReviewEvent,
	correct bool,
) *ReviewGradedEvent {
	return &ReviewGradedEvent{
		ID:           uuid.New(),
		SessionID:    sessionID,
		LearnerID:    event.LearnerID,
		CardID:       event.CardID,
		ExerciseType: event.ExerciseType,
		Rating:       event.Rating,
		Correct:      correct,
		NextDue:      event.After.Due,
		CreatedAt:    time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers run synchronously on the emitting goroutine; slow handlers delay
// the caller.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ReviewGradedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ReviewGradedEvent) error
}
