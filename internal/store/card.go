package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// CardStore defines the interface for card persistence. A card is the
// per-learner memory record for one content item; at most one exists per
// (learner, content item) pair.
type CardStore interface {
	// Create saves a new card. Returns ErrCardExists if the learner already
	// has a card for the content item.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByLearnerID returns all of a learner's cards. The scheduler
	// partitions and orders them; no ordering is guaranteed here.
	GetByLearnerID(ctx context.Context, learnerID uuid.UUID) ([]*domain.Card, error)

	// UpdateMemoryState persists a card's scheduling fields after a review.
	// This MUST run in the same transaction as the review event insert so a
	// graded review is either fully recorded or not at all; use WithTx
	// inside store.RunInTransaction.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateMemoryState(ctx context.Context, card *domain.Card) error

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
