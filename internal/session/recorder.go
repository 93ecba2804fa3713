package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Verify interface compliance at compile time.
var _ ReviewRecorder = (*TransactionalRecorder)(nil)

// TransactionalRecorder persists graded reviews through the store layer,
// committing the card update and the review event in one transaction.
type TransactionalRecorder struct {
	db     *sql.DB
	cards  store.CardStore
	events store.ReviewEventStore
}

// NewTransactionalRecorder creates a recorder over the given database and stores.
func NewTransactionalRecorder(db *sql.DB, cards store.CardStore, events store.ReviewEventStore) *TransactionalRecorder {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("card store cannot be nil")
	}
	if events == nil {
		panic("review event store cannot be nil")
	}

	return &TransactionalRecorder{db: db, cards: cards, events: events}
}

// RecordReview implements ReviewRecorder.
func (r *TransactionalRecorder) RecordReview(ctx context.Context, card *domain.Card, event *domain.ReviewEvent) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := r.cards.WithTx(tx).UpdateMemoryState(ctx, card); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}
		if err := r.events.WithTx(tx).Create(ctx, event); err != nil {
			return fmt.Errorf("failed to append review event: %w", err)
		}
		return nil
	})
}
