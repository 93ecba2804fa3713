package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// ReviewEventStore defines the interface for the append-only review log.
// Events are never updated or deleted; the log is the raw material for
// statistics and future parameter fitting.
type ReviewEventStore interface {
	// Create appends a review event. Pair with CardStore.UpdateMemoryState
	// in one transaction via WithTx.
	Create(ctx context.Context, event *domain.ReviewEvent) error

	// ListByCardID returns a card's events, oldest first.
	ListByCardID(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewEvent, error)

	// ListByLearnerSince returns a learner's events reviewed at or after the
	// cutoff, oldest first.
	ListByLearnerSince(ctx context.Context, learnerID uuid.UUID, since time.Time) ([]*domain.ReviewEvent, error)

	// WithTx returns a ReviewEventStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewEventStore
}
