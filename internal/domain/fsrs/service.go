package fsrs

import (
	"errors"
	"time"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// Common errors
var (
	ErrNilCard = errors.New("card cannot be nil")
)

// Service defines the interface for the FSRS scheduling operations.
// Implementations are stateless and safe for concurrent use across
// learners.
type Service interface {
	// InitialState maps a familiarity hint to the memory state a new card
	// starts with. Unknown content is due immediately.
	InitialState(hint domain.Familiarity, now time.Time) domain.MemoryState

	// Retrievability estimates the card's current recall probability.
	Retrievability(card *domain.Card, now time.Time) float64

	// ApplyReview applies a graded rating to a card and returns the updated
	// card together with the single ReviewEvent recording the transition.
	// The input card is not mutated; the returned card's memory state,
	// counters, and timestamps are updated as one unit.
	//
	// Returns domain.ErrInvalidRating for ratings outside {1,2,3,4} and
	// domain.ErrClockSkew when now precedes the card's last review.
	ApplyReview(
		card *domain.Card,
		rating domain.Rating,
		exerciseType domain.ExerciseType,
		elapsedMs int,
		now time.Time,
	) (*domain.Card, *domain.ReviewEvent, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new FSRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new FSRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// InitialState implements Service.InitialState.
func (s *defaultService) InitialState(hint domain.Familiarity, now time.Time) domain.MemoryState {
	return initialMemoryState(hint, now, s.params)
}

// Retrievability implements Service.Retrievability.
func (s *defaultService) Retrievability(card *domain.Card, now time.Time) float64 {
	if card == nil || card.LastReviewedAt.IsZero() {
		return 1.0
	}
	return retrievability(daysBetween(card.LastReviewedAt, now), card.Stability)
}

// ApplyReview implements Service.ApplyReview.
func (s *defaultService) ApplyReview(
	card *domain.Card,
	rating domain.Rating,
	exerciseType domain.ExerciseType,
	elapsedMs int,
	now time.Time,
) (*domain.Card, *domain.ReviewEvent, error) {
	if card == nil {
		return nil, nil, ErrNilCard
	}

	if !rating.Valid() {
		return nil, nil, domain.ErrInvalidRating
	}

	if !card.LastReviewedAt.IsZero() && now.Before(card.LastReviewedAt) {
		return nil, nil, domain.ErrClockSkew
	}

	var elapsedDays float64
	if !card.LastReviewedAt.IsZero() {
		elapsedDays = daysBetween(card.LastReviewedAt, now)
	}

	before := card.MemoryState
	after := nextMemoryState(before, rating, elapsedDays, now, s.params)

	// Copy the card so partial updates are never observable.
	updated := *card
	updated.MemoryState = after
	updated.LastReviewedAt = now
	updated.UpdatedAt = now

	event, err := domain.NewReviewEvent(
		card.ID,
		card.LearnerID,
		exerciseType,
		rating,
		elapsedMs,
		before,
		after,
		now,
	)
	if err != nil {
		return nil, nil, err
	}

	return &updated, event, nil
}

// daysBetween returns the fractional days from a to b.
func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
