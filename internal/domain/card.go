package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardLearnerIDEmpty is returned when a card's learner ID is empty or nil.
	ErrCardLearnerIDEmpty = errors.New("card learner ID cannot be empty")

	// ErrCardContentItemIDEmpty is returned when a card's content item ID is empty or nil.
	ErrCardContentItemIDEmpty = errors.New("card content item ID cannot be empty")

	// ErrNonPositiveStability is returned when a card's stability is zero or negative.
	ErrNonPositiveStability = errors.New("stability must be positive")

	// ErrDifficultyOutOfRange is returned when difficulty falls outside [1,10].
	ErrDifficultyOutOfRange = errors.New("difficulty must be between 1 and 10")

	// ErrNegativeReps is returned when a rep or lapse counter is negative.
	ErrNegativeReps = errors.New("reps and lapses cannot be negative")
)

// MemoryState is the scheduler-owned portion of a card: the FSRS stability
// and difficulty estimates, the next due time, the rep and lapse counters,
// and the lifecycle state. It is a plain value and is only ever replaced as
// a unit when a review is applied.
type MemoryState struct {
	Stability  float64   `json:"stability"`  // Days until recall probability decays to the retention target
	Difficulty float64   `json:"difficulty"` // Item-inherent resistance to stability growth, in [1,10]
	Due        time.Time `json:"due"`        // When the card is next due for review
	Reps       int       `json:"reps"`       // Total successful reviews
	Lapses     int       `json:"lapses"`     // Reviews rated Again; accumulates, never resets
	State      CardState `json:"state"`
}

// Validate checks the memory state invariants: positive stability, bounded
// difficulty, non-negative counters, and a known lifecycle state.
func (m MemoryState) Validate() error {
	if m.Stability <= 0 {
		return ErrNonPositiveStability
	}
	if m.Difficulty < 1 || m.Difficulty > 10 {
		return ErrDifficultyOutOfRange
	}
	if m.Reps < 0 || m.Lapses < 0 {
		return ErrNegativeReps
	}
	if !m.State.Valid() {
		return ErrInvalidCardState
	}
	return nil
}

// Card is a flashcard for a single (learner, content item) pair, carrying
// the memory state that schedules its reviews. Cards are created at first
// exposure and never deleted; lapses accumulate over the card's lifetime.
type Card struct {
	ID            uuid.UUID `json:"id"`
	LearnerID     uuid.UUID `json:"learner_id"`
	ContentItemID uuid.UUID `json:"content_item_id"`
	MemoryState

	LastReviewedAt time.Time `json:"last_reviewed_at"` // Zero until the first review
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewCard creates a new Card for a learner and content item with the given
// initial memory state. The memory state is produced by the FSRS service
// from the content item's familiarity hint.
func NewCard(learnerID, contentItemID uuid.UUID, initial MemoryState) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:            uuid.New(),
		LearnerID:     learnerID,
		ContentItemID: contentItemID,
		MemoryState:   initial,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.LearnerID == uuid.Nil {
		return ErrCardLearnerIDEmpty
	}

	if c.ContentItemID == uuid.Nil {
		return ErrCardContentItemIDEmpty
	}

	return c.MemoryState.Validate()
}

// IsNew reports whether the card has never been reviewed.
func (c *Card) IsNew() bool {
	return c.State == CardStateNew
}

// IsDue reports whether the card's scheduled review time has passed.
// New cards are introduced through the new-card quota instead.
func (c *Card) IsDue(now time.Time) bool {
	return c.State != CardStateNew && !c.Due.After(now)
}
