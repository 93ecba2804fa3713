package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidRating is returned when a rating is outside {1,2,3,4}.
	// Ratings are rejected rather than clamped because an out-of-range
	// value indicates a caller bug, not learner input.
	ErrInvalidRating = errors.New("rating must be between 1 and 4")

	// ErrClockSkew is returned when a review timestamp precedes the card's
	// last review. Review history is monotonic per card and is never
	// silently reordered.
	ErrClockSkew = errors.New("review time precedes last review")

	// ErrInvalidCardState is returned when a card state value is not one of
	// the known lifecycle states.
	ErrInvalidCardState = errors.New("invalid card state")

	// ErrInvalidExerciseType is returned when an exercise type is unknown.
	ErrInvalidExerciseType = errors.New("invalid exercise type")
)
