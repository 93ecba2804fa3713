package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Ensure PostgresExerciseStore implements store.ExerciseStore interface
var _ store.ExerciseStore = (*PostgresExerciseStore)(nil)

// PostgresExerciseStore implements the store.ExerciseStore interface using a
// PostgreSQL database. Accepted answers and MCQ options are stored as JSONB.
type PostgresExerciseStore struct {
	db store.DBTX
}

// NewPostgresExerciseStore creates a new PostgreSQL implementation of the
// ExerciseStore interface.
func NewPostgresExerciseStore(db store.DBTX) *PostgresExerciseStore {
	return &PostgresExerciseStore{db: db}
}

// Create implements store.ExerciseStore.Create
func (s *PostgresExerciseStore) Create(ctx context.Context, exercise *domain.Exercise) error {
	if err := exercise.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	accepted, err := json.Marshal(exercise.AcceptedAnswers)
	if err != nil {
		return store.NewStoreError("exercise", "create", "failed to encode accepted answers", err)
	}
	options, err := json.Marshal(exercise.Options)
	if err != nil {
		return store.NewStoreError("exercise", "create", "failed to encode options", err)
	}

	query := `
		INSERT INTO exercises (id, content_item_id, type, prompt, answer, accepted_answers, options, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = s.db.ExecContext(ctx, query,
		exercise.ID,
		exercise.ContentItemID,
		exercise.Type,
		exercise.Prompt,
		exercise.Answer,
		accepted,
		options,
		exercise.CreatedAt,
		exercise.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("exercise", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.ExerciseStore.GetByID
func (s *PostgresExerciseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Exercise, error) {
	query := `
		SELECT id, content_item_id, type, prompt, answer, accepted_answers, options, created_at, updated_at
		FROM exercises
		WHERE id = $1`

	exercise, err := scanExercise(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExerciseNotFound
		}
		return nil, store.NewStoreError("exercise", "get", "scan failed", MapError(err))
	}

	return exercise, nil
}

// GetByContentItemID implements store.ExerciseStore.GetByContentItemID
func (s *PostgresExerciseStore) GetByContentItemID(ctx context.Context, contentItemID uuid.UUID) ([]*domain.Exercise, error) {
	query := `
		SELECT id, content_item_id, type, prompt, answer, accepted_answers, options, created_at, updated_at
		FROM exercises
		WHERE content_item_id = $1
		ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, contentItemID)
	if err != nil {
		return nil, store.NewStoreError("exercise", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var exercises []*domain.Exercise
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, store.NewStoreError("exercise", "list", "scan failed", MapError(err))
		}
		exercises = append(exercises, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("exercise", "list", "iteration failed", MapError(err))
	}

	return exercises, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*domain.Exercise, error) {
	var (
		exercise domain.Exercise
		accepted []byte
		options  []byte
	)
	err := row.Scan(
		&exercise.ID,
		&exercise.ContentItemID,
		&exercise.Type,
		&exercise.Prompt,
		&exercise.Answer,
		&accepted,
		&options,
		&exercise.CreatedAt,
		&exercise.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(accepted) > 0 {
		if err := json.Unmarshal(accepted, &exercise.AcceptedAnswers); err != nil {
			return nil, fmt.Errorf("failed to decode accepted answers: %w", err)
		}
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &exercise.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
	}

	return &exercise, nil
}
