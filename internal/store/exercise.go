package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// ExerciseStore defines the interface for exercise persistence.
type ExerciseStore interface {
	// Create saves a new exercise.
	Create(ctx context.Context, exercise *domain.Exercise) error

	// GetByID retrieves an exercise by ID.
	// Returns ErrExerciseNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Exercise, error)

	// GetByContentItemID returns all exercises for a content item, in
	// creation order. An item with no exercises yields an empty slice, not
	// an error.
	GetByContentItemID(ctx context.Context, contentItemID uuid.UUID) ([]*domain.Exercise, error)
}
