package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Ensure PostgresContentItemStore implements store.ContentItemStore interface
var _ store.ContentItemStore = (*PostgresContentItemStore)(nil)

// PostgresContentItemStore implements the store.ContentItemStore interface
// using a PostgreSQL database.
type PostgresContentItemStore struct {
	db store.DBTX
}

// NewPostgresContentItemStore creates a new PostgreSQL implementation of the
// ContentItemStore interface.
func NewPostgresContentItemStore(db store.DBTX) *PostgresContentItemStore {
	return &PostgresContentItemStore{db: db}
}

// Create implements store.ContentItemStore.Create
func (s *PostgresContentItemStore) Create(ctx context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO content_items (id, term, definition, romanization, cefr_level, familiarity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Term,
		item.Definition,
		item.Romanization,
		item.CEFRLevel,
		item.Familiarity,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("content_item", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.ContentItemStore.GetByID
func (s *PostgresContentItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	query := `
		SELECT id, term, definition, romanization, cefr_level, familiarity, created_at, updated_at
		FROM content_items
		WHERE id = $1`

	var item domain.ContentItem
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Term,
		&item.Definition,
		&item.Romanization,
		&item.CEFRLevel,
		&item.Familiarity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrContentItemNotFound
		}
		return nil, store.NewStoreError("content_item", "get", "scan failed", MapError(err))
	}

	return &item, nil
}

// List implements store.ContentItemStore.List
func (s *PostgresContentItemStore) List(ctx context.Context) ([]*domain.ContentItem, error) {
	query := `
		SELECT id, term, definition, romanization, cefr_level, familiarity, created_at, updated_at
		FROM content_items
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("content_item", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var items []*domain.ContentItem
	for rows.Next() {
		var item domain.ContentItem
		if err := rows.Scan(
			&item.ID,
			&item.Term,
			&item.Definition,
			&item.Romanization,
			&item.CEFRLevel,
			&item.Familiarity,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, store.NewStoreError("content_item", "list", "scan failed", MapError(err))
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("content_item", "list", "iteration failed", MapError(err))
	}

	return items, nil
}
