package domain

// Rating represents learner-reported or assessed recall quality on the
// standard four-point spaced-repetition scale.
type Rating int

// Possible rating values, from complete failure to trivial recall.
const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// Valid reports whether the rating is within the accepted 1-4 range.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// Success reports whether the rating counts as a successful recall.
// Again is the only failing rating; it increments lapses instead of reps.
func (r Rating) Success() bool {
	return r >= RatingHard && r <= RatingEasy
}

// String returns the conventional name for the rating.
func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// CardState represents where a card is in its scheduling lifecycle.
type CardState string

// Card lifecycle states. A card is created New, moves to Learning on its
// first review, graduates to Review after repeated successes, and drops to
// Relearning when a Review card lapses.
const (
	CardStateNew        CardState = "new"
	CardStateLearning   CardState = "learning"
	CardStateReview     CardState = "review"
	CardStateRelearning CardState = "relearning"
)

// Valid reports whether the state is one of the known lifecycle states.
func (s CardState) Valid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelearning:
		return true
	default:
		return false
	}
}

// Familiarity is a coarse prior-exposure signal attached to content at
// ingestion time. It seeds the initial memory state of a card.
type Familiarity string

// Possible familiarity values.
const (
	FamiliarityUnknown Familiarity = "unknown"
	FamiliaritySeen    Familiarity = "seen"
	FamiliarityKnown   Familiarity = "known"
)
