// Package exercise selects which exercise to present for a card during a
// review session. Selection balances two goals: struggling cards get easier
// recognition exercises, and consecutive reviews vary in type so a session
// does not become monotonous.
package exercise

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// ErrNoExercises is returned when a content item has no exercises to present.
var ErrNoExercises = errors.New("no exercises available for content item")

// How many recently presented types to remember when avoiding repetition.
const defaultHistorySize = 5

// Store provides the exercises available for a content item.
type Store interface {
	GetByContentItemID(ctx context.Context, contentItemID uuid.UUID) ([]*domain.Exercise, error)
}

// Selector picks exercises for cards. Each session gets its own Selector so
// the repetition history tracks that session's presentations only.
type Selector struct {
	store  Store
	logger *slog.Logger

	mu     sync.Mutex
	recent []domain.ExerciseType
}

// NewSelector creates a Selector backed by the given exercise store.
func NewSelector(store Store, logger *slog.Logger) *Selector {
	if store == nil {
		panic("exercise store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &Selector{
		store:  store,
		logger: logger.With("component", "exercise_selector"),
	}
}

// Select picks the best exercise for the card: the type its state calls for,
// preferring exercises whose type has not appeared recently. Returns
// ErrNoExercises if the content item has none.
func (s *Selector) Select(ctx context.Context, card *domain.Card) (*domain.Exercise, error) {
	exercises, err := s.store.GetByContentItemID(ctx, card.ContentItemID)
	if err != nil {
		return nil, err
	}

	if len(exercises) == 0 {
		s.logger.WarnContext(ctx, "no exercises for content item",
			"content_item_id", card.ContentItemID)
		return nil, ErrNoExercises
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chosen := s.rankCandidates(exercises, s.preferredType(card))[0]

	s.recent = append(s.recent, chosen.Type)
	if len(s.recent) > defaultHistorySize {
		s.recent = s.recent[1:]
	}

	return chosen, nil
}

// preferredType maps card state to an exercise type. Struggling and young
// cards get recognition; mature clean cards get harder production forms.
// Callers must hold s.mu.
func (s *Selector) preferredType(card *domain.Card) domain.ExerciseType {
	if card.Lapses >= 3 {
		return domain.ExerciseTypeMCQ
	}

	if card.Reps <= 1 {
		return domain.ExerciseTypeMCQ
	}

	if card.Reps >= 5 && card.Lapses == 0 {
		return domain.ExerciseTypeCloze
	}

	// Mid-maturity cards alternate away from whatever came last.
	if len(s.recent) > 0 {
		if s.recent[len(s.recent)-1] == domain.ExerciseTypeMCQ {
			return domain.ExerciseTypeCloze
		}
		return domain.ExerciseTypeMCQ
	}

	return domain.ExerciseTypeMCQ
}

// rankCandidates orders exercises into four tiers: preferred type not
// recently shown, preferred type, other types not recently shown, the rest.
// Each tier is shuffled so equally ranked exercises vary across sessions.
// Callers must hold s.mu; the result is never empty when exercises is not.
func (s *Selector) rankCandidates(
	exercises []*domain.Exercise,
	preferred domain.ExerciseType,
) []*domain.Exercise {
	recentSet := make(map[domain.ExerciseType]struct{}, len(s.recent))
	for _, t := range s.recent {
		recentSet[t] = struct{}{}
	}

	var preferredFresh, preferredStale, otherFresh, otherStale []*domain.Exercise
	for _, ex := range exercises {
		_, stale := recentSet[ex.Type]
		switch {
		case ex.Type == preferred && !stale:
			preferredFresh = append(preferredFresh, ex)
		case ex.Type == preferred:
			preferredStale = append(preferredStale, ex)
		case !stale:
			otherFresh = append(otherFresh, ex)
		default:
			otherStale = append(otherStale, ex)
		}
	}

	ranked := make([]*domain.Exercise, 0, len(exercises))
	for _, tier := range [][]*domain.Exercise{preferredFresh, preferredStale, otherFresh, otherStale} {
		rand.Shuffle(len(tier), func(i, j int) {
			tier[i], tier[j] = tier[j], tier[i]
		})
		ranked = append(ranked, tier...)
	}

	return ranked
}
