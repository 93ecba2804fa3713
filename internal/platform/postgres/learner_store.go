package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/service/auth"
	"github.com/hindisrs/hindi-srs/internal/store"
)

// Ensure PostgresLearnerStore implements store.LearnerStore interface
var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// PostgresLearnerStore implements the store.LearnerStore interface using a
// PostgreSQL database. It hashes passwords on the way in so plaintext never
// reaches the database.
type PostgresLearnerStore struct {
	db     store.DBTX
	hasher auth.PasswordHasher
}

// NewPostgresLearnerStore creates a new PostgreSQL implementation of the
// LearnerStore interface. The database connection is initialized and managed
// by the caller.
func NewPostgresLearnerStore(db store.DBTX, hasher auth.PasswordHasher) *PostgresLearnerStore {
	if hasher == nil {
		panic("password hasher cannot be nil")
	}
	return &PostgresLearnerStore{db: db, hasher: hasher}
}

// Create implements store.LearnerStore.Create
func (s *PostgresLearnerStore) Create(ctx context.Context, learner *domain.Learner) error {
	if err := learner.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if learner.Password != "" {
		hashed, err := s.hasher.Hash(learner.Password)
		if err != nil {
			return store.NewStoreError("learner", "create", "failed to hash password", err)
		}
		learner.HashedPassword = hashed
		learner.Password = ""
	}
	if learner.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	query := `
		INSERT INTO learners (id, email, name, current_level, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		learner.ID,
		learner.Email,
		learner.Name,
		learner.CurrentLevel,
		learner.HashedPassword,
		learner.CreatedAt,
		learner.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return store.NewStoreError("learner", "create", "insert failed", MapError(err))
	}

	return nil
}

// GetByID implements store.LearnerStore.GetByID
func (s *PostgresLearnerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	query := `
		SELECT id, email, name, current_level, hashed_password, created_at, updated_at
		FROM learners
		WHERE id = $1`

	return s.scanLearner(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.LearnerStore.GetByEmail
func (s *PostgresLearnerStore) GetByEmail(ctx context.Context, email string) (*domain.Learner, error) {
	query := `
		SELECT id, email, name, current_level, hashed_password, created_at, updated_at
		FROM learners
		WHERE email = $1`

	return s.scanLearner(s.db.QueryRowContext(ctx, query, email))
}

// UpdateLevel implements store.LearnerStore.UpdateLevel
func (s *PostgresLearnerStore) UpdateLevel(ctx context.Context, id uuid.UUID, level string) error {
	query := `
		UPDATE learners
		SET current_level = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, level)
	if err != nil {
		return store.NewStoreError("learner", "update_level", "update failed", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("learner", "update_level", "rows affected unavailable", err)
	}
	if rows == 0 {
		return store.ErrLearnerNotFound
	}

	return nil
}

func (s *PostgresLearnerStore) scanLearner(row *sql.Row) (*domain.Learner, error) {
	var learner domain.Learner
	err := row.Scan(
		&learner.ID,
		&learner.Email,
		&learner.Name,
		&learner.CurrentLevel,
		&learner.HashedPassword,
		&learner.CreatedAt,
		&learner.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLearnerNotFound
		}
		return nil, store.NewStoreError("learner", "get", "scan failed", MapError(err))
	}

	return &learner, nil
}
