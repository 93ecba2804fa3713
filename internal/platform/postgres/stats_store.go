package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/store"
)

// matureStabilityDays is the stability above which a review-state card
// counts as mature.
const matureStabilityDays = 21.0

// retentionWindow is how far back recent retention looks.
const retentionWindow = 30 * 24 * time.Hour

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// PostgresStatsStore implements the store.StatsStore interface by
// aggregating over the cards and review_events tables.
type PostgresStatsStore struct {
	db store.DBTX
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the
// StatsStore interface.
func NewPostgresStatsStore(db store.DBTX) *PostgresStatsStore {
	return &PostgresStatsStore{db: db}
}

// GetLearnerStats implements store.StatsStore.GetLearnerStats
func (s *PostgresStatsStore) GetLearnerStats(
	ctx context.Context,
	learnerID uuid.UUID,
	now time.Time,
) (*store.LearnerStats, error) {
	stats := &store.LearnerStats{}

	cardQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE state = 'new'),
			COUNT(*) FILTER (WHERE state <> 'new' AND due <= $2),
			COUNT(*) FILTER (WHERE state = 'review' AND stability >= $3)
		FROM cards
		WHERE learner_id = $1`

	err := s.db.QueryRowContext(ctx, cardQuery, learnerID, now, matureStabilityDays).Scan(
		&stats.TotalCards,
		&stats.NewCards,
		&stats.DueCards,
		&stats.MatureCards,
	)
	if err != nil {
		return nil, store.NewStoreError("stats", "get", "card aggregate failed", MapError(err))
	}

	reviewQuery := `
		SELECT
			COUNT(*),
			COALESCE(AVG(CASE WHEN rating >= 3 THEN 1.0 ELSE 0.0 END)
				FILTER (WHERE reviewed_at >= $2), 0)
		FROM review_events
		WHERE learner_id = $1`

	err = s.db.QueryRowContext(ctx, reviewQuery, learnerID, now.Add(-retentionWindow)).Scan(
		&stats.TotalReviews,
		&stats.RecentRetention,
	)
	if err != nil {
		return nil, store.NewStoreError("stats", "get", "review aggregate failed", MapError(err))
	}

	return stats, nil
}
