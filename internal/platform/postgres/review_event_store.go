package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Ensure PostgresReviewEventStore implements store.ReviewEventStore interface
var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// PostgresReviewEventStore implements the store.ReviewEventStore interface
// using a PostgreSQL database. The table is append-only; memory state
// snapshots are stored as JSONB.
type PostgresReviewEventStore struct {
	db store.DBTX
}

// NewPostgresReviewEventStore creates a new PostgreSQL implementation of
// the ReviewEventStore interface.
func NewPostgresReviewEventStore(db store.DBTX) *PostgresReviewEventStore {
	return &PostgresReviewEventStore{db: db}
}

// WithTx implements store.ReviewEventStore.WithTx
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{db: tx}
}

// Create implements store.ReviewEventStore.Create
func (s *PostgresReviewEventStore) Create(ctx context.Context, event *domain.ReviewEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	before, err := json.Marshal(event.Before)
	if err != nil {
		return store.NewStoreError("review_event", "create", "failed to encode before state", err)
	}
	after, err := json.Marshal(event.After)
	if err != nil {
		return store.NewStoreError("review_event", "create", "failed to encode after state", err)
	}

	query := `
		INSERT INTO review_events (id, card_id, learner_id, exercise_type, rating,
			elapsed_ms, before_state, after_state, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.CardID,
		event.LearnerID,
		event.ExerciseType,
		event.Rating,
		event.ElapsedMs,
		before,
		after,
		event.ReviewedAt,
	)
	if err != nil {
		return store.NewStoreError("review_event", "create", "insert failed", MapError(err))
	}

	return nil
}

// ListByCardID implements store.ReviewEventStore.ListByCardID
func (s *PostgresReviewEventStore) ListByCardID(ctx context.Context, cardID uuid.UUID) ([]*domain.ReviewEvent, error) {
	query := reviewEventSelect + `
		WHERE card_id = $1
		ORDER BY reviewed_at, id`

	return s.list(ctx, query, cardID)
}

// ListByLearnerSince implements store.ReviewEventStore.ListByLearnerSince
func (s *PostgresReviewEventStore) ListByLearnerSince(
	ctx context.Context,
	learnerID uuid.UUID,
	since time.Time,
) ([]*domain.ReviewEvent, error) {
	query := reviewEventSelect + `
		WHERE learner_id = $1 AND reviewed_at >= $2
		ORDER BY reviewed_at, id`

	return s.list(ctx, query, learnerID, since)
}

const reviewEventSelect = `
	SELECT id, card_id, learner_id, exercise_type, rating, elapsed_ms,
		before_state, after_state, reviewed_at
	FROM review_events`

func (s *PostgresReviewEventStore) list(ctx context.Context, query string, args ...any) ([]*domain.ReviewEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("review_event", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var events []*domain.ReviewEvent
	for rows.Next() {
		var (
			event  domain.ReviewEvent
			before []byte
			after  []byte
		)
		if err := rows.Scan(
			&event.ID,
			&event.CardID,
			&event.LearnerID,
			&event.ExerciseType,
			&event.Rating,
			&event.ElapsedMs,
			&before,
			&after,
			&event.ReviewedAt,
		); err != nil {
			return nil, store.NewStoreError("review_event", "list", "scan failed", MapError(err))
		}

		if err := json.Unmarshal(before, &event.Before); err != nil {
			return nil, store.NewStoreError("review_event", "list", "failed to decode before state", err)
		}
		if err := json.Unmarshal(after, &event.After); err != nil {
			return nil, store.NewStoreError("review_event", "list", "failed to decode after state", err)
		}

		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("review_event", "list", "iteration failed", MapError(err))
	}

	return events, nil
}
