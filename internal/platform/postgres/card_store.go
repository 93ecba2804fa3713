package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// PostgresCardStore implements the store.CardStore interface using a
// PostgreSQL database. Memory state is stored in dedicated columns rather
// than JSONB so the due/state queries stay indexable.
type PostgresCardStore struct {
	db store.DBTX
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface.
func NewPostgresCardStore(db store.DBTX) *PostgresCardStore {
	return &PostgresCardStore{db: db}
}

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{db: tx}
}

// Create implements store.CardStore.Create
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, learner_id, content_item_id, stability, difficulty, due,
			reps, lapses, state, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.LearnerID,
		card.ContentItemID,
		card.Stability,
		card.Difficulty,
		card.Due,
		card.Reps,
		card.Lapses,
		card.State,
		nullableTime(card.LastReviewedAt),
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrCardExists
		}
		return store.NewStoreError("card", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := cardSelect + ` WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, store.NewStoreError("card", "get", "scan failed", MapError(err))
	}

	return card, nil
}

// GetByLearnerID implements store.CardStore.GetByLearnerID
func (s *PostgresCardStore) GetByLearnerID(ctx context.Context, learnerID uuid.UUID) ([]*domain.Card, error) {
	query := cardSelect + ` WHERE learner_id = $1`

	rows, err := s.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, store.NewStoreError("card", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", "list", "scan failed", MapError(err))
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", "list", "iteration failed", MapError(err))
	}

	return cards, nil
}

// UpdateMemoryState implements store.CardStore.UpdateMemoryState
func (s *PostgresCardStore) UpdateMemoryState(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET stability = $2, difficulty = $3, due = $4, reps = $5, lapses = $6,
			state = $7, last_reviewed_at = $8, updated_at = $9
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.Stability,
		card.Difficulty,
		card.Due,
		card.Reps,
		card.Lapses,
		card.State,
		nullableTime(card.LastReviewedAt),
		card.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("card", "update_memory_state", "update failed", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("card", "update_memory_state", "rows affected unavailable", err)
	}
	if rows == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

const cardSelect = `
	SELECT id, learner_id, content_item_id, stability, difficulty, due,
		reps, lapses, state, last_reviewed_at, created_at, updated_at
	FROM cards`

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card         domain.Card
		lastReviewed sql.NullTime
	)
	err := row.Scan(
		&card.ID,
		&card.LearnerID,
		&card.ContentItemID,
		&card.Stability,
		&card.Difficulty,
		&card.Due,
		&card.Reps,
		&card.Lapses,
		&card.State,
		&lastReviewed,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		card.LastReviewedAt = lastReviewed.Time
	}

	return &card, nil
}

// nullableTime maps the zero time to SQL NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
