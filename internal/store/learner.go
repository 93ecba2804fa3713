package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// LearnerStore defines the interface for learner account persistence.
type LearnerStore interface {
	// Create saves a new learner. The learner's plaintext Password field is
	// hashed before storage and never persisted. Returns ErrEmailExists if
	// the email is already registered.
	Create(ctx context.Context, learner *domain.Learner) error

	// GetByID retrieves a learner by ID.
	// Returns ErrLearnerNotFound if the learner does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error)

	// GetByEmail retrieves a learner by email address.
	// Returns ErrLearnerNotFound if no learner has that email.
	GetByEmail(ctx context.Context, email string) (*domain.Learner, error)

	// UpdateLevel sets the learner's self-assessed CEFR level.
	// Returns ErrLearnerNotFound if the learner does not exist.
	UpdateLevel(ctx context.Context, id uuid.UUID, level string) error
}
