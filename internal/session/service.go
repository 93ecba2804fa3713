// Package session orchestrates review sessions: building the queue,
// presenting exercises, grading answers, and recording the results. A
// session is driven by a single client; the package serializes operations
// per session but assumes no concurrent drivers race for the same answer.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
)

// Common error types for the session service.
var (
	// ErrEmptyQueue indicates the learner has nothing due and no new cards.
	ErrEmptyQueue = errors.New("no cards available for review")

	// ErrSessionNotFound indicates the session does not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionDone indicates the session has already completed or been aborted.
	ErrSessionDone = errors.New("session is finished")

	// ErrNoActiveExercise indicates an answer was submitted without a
	// preceding prompt.
	ErrNoActiveExercise = errors.New("no exercise awaiting an answer")
)

// Prompt is the next exercise to present to the learner.
type Prompt struct {
	SessionID      uuid.UUID                `json:"session_id"`
	CardID         uuid.UUID                `json:"card_id"`
	Exercise       *domain.Exercise         `json:"exercise"`
	Classification scheduler.Classification `json:"classification"`

	// Remaining counts the queue entries left after this one.
	Remaining   int       `json:"remaining"`
	PresentedAt time.Time `json:"presented_at"`
}

// Answer is the learner's response to the active prompt.
type Answer struct {
	Response  string `json:"response"`
	ElapsedMs int    `json:"elapsed_ms"`

	// SelfRating, when set, replaces the assessed rating for the schedule
	// update. Out-of-range values are rejected with domain.ErrInvalidRating,
	// never clamped.
	SelfRating *domain.Rating `json:"self_rating,omitempty"`
}

// Result is the graded outcome of an answer: how it was assessed and how
// the card's schedule moved. Rating is the rating actually applied, which
// is the learner's self-rating when one was given.
type Result struct {
	Assessment assessment.Assessment `json:"assessment"`
	Rating     domain.Rating         `json:"rating"`
	NextDue    time.Time             `json:"next_due"`
	Stability  float64               `json:"stability"`
	State      domain.CardState      `json:"state"`
}

// Summary describes a session after it ends, or its progress so far.
type Summary struct {
	SessionID    uuid.UUID             `json:"session_id"`
	LearnerID    uuid.UUID             `json:"learner_id"`
	Status       Status                `json:"status"`
	StartedAt    time.Time             `json:"started_at"`
	EndedAt      time.Time             `json:"ended_at"`
	Presented    int                   `json:"presented"`
	Correct      int                   `json:"correct"`
	RatingCounts map[domain.Rating]int `json:"rating_counts"`
}

// Service drives review sessions end to end.
type Service interface {
	// Start builds a queue for the learner and opens a session over it.
	// Returns ErrEmptyQueue if the learner has no due and no new cards.
	Start(ctx context.Context, learnerID uuid.UUID) (*Summary, error)

	// Next returns the prompt for the session's next card. Calling Next
	// again without submitting an answer returns the same prompt. When the
	// queue is exhausted the session completes and ErrSessionDone is
	// returned.
	Next(ctx context.Context, sessionID uuid.UUID) (*Prompt, error)

	// Submit grades the answer to the active prompt, applies the schedule
	// update, and persists the card and review event atomically.
	// Returns ErrNoActiveExercise if no prompt is awaiting an answer.
	Submit(ctx context.Context, sessionID uuid.UUID, answer Answer) (*Result, error)

	// End finishes the session: completed if the queue was exhausted,
	// aborted otherwise. Ending an already finished session is a no-op that
	// returns the same summary.
	End(ctx context.Context, sessionID uuid.UUID) (*Summary, error)

	// Stats returns the session's progress without ending it.
	Stats(ctx context.Context, sessionID uuid.UUID) (*Summary, error)
}

// ReviewRecorder persists a graded review. The card update and event insert
// must be atomic: either the review happened in full or not at all.
type ReviewRecorder interface {
	RecordReview(ctx context.Context, card *domain.Card, event *domain.ReviewEvent) error
}

// ExerciseSelector picks the exercise to present for a card.
type ExerciseSelector interface {
	Select(ctx context.Context, card *domain.Card) (*domain.Exercise, error)
}

// Grader assesses a learner's response to an exercise.
type Grader interface {
	Assess(ctx context.Context, exercise *domain.Exercise, response string) assessment.Assessment
}

// ServiceError wraps errors from the session service with additional
// context, so consumers can differentiate failures with errors.As instead
// of string matching.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
