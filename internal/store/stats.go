package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LearnerStats aggregates a learner's progress for the stats endpoints.
type LearnerStats struct {
	TotalCards   int `json:"total_cards"`
	NewCards     int `json:"new_cards"`
	DueCards     int `json:"due_cards"`
	MatureCards  int `json:"mature_cards"`
	TotalReviews int `json:"total_reviews"`

	// RecentRetention is the share of reviews in the last 30 days rated
	// Good or better, 0 when there were none.
	RecentRetention float64 `json:"recent_retention"`
}

// StatsStore computes learner statistics. Read-only; the aggregates are
// derived from cards and the review event log.
type StatsStore interface {
	// GetLearnerStats returns the learner's aggregate progress as of now.
	// A learner with no cards gets zero-valued stats, not an error.
	GetLearnerStats(ctx context.Context, learnerID uuid.UUID, now time.Time) (*LearnerStats, error)
}
