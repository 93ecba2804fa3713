package fsrs

import (
	"math"
	"time"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// retrievability estimates the probability of recall after elapsedDays given
// the card's stability, using the power forgetting curve:
//
//	R = (1 + t / (9 * S))^-1
//
// At t = 0 recall is certain; at t = 9*S*(1/r - 1) it has decayed to r.
// Degenerate inputs (non-positive stability or elapsed time) return 1.0 so
// same-session re-reviews are treated as unsurprising successes.
func retrievability(elapsedDays, stability float64) float64 {
	if stability <= 0 || elapsedDays <= 0 {
		return 1.0
	}
	return 1 / (1 + elapsedDays/(9*stability))
}

// intervalFromStability converts stability to a review interval in days by
// solving the forgetting curve for the elapsed time at which retrievability
// drops to the retention target:
//
//	interval = 9 * S * (1/target - 1)
//
// The result is monotonically increasing in stability and monotonically
// decreasing in the target. At the default target of 0.9 the interval
// equals the stability.
func intervalFromStability(stability, targetRetention float64) float64 {
	return 9 * stability * (1/targetRetention - 1)
}

// initialDifficulty estimates difficulty from the first rating:
//
//	D0 = w4 - (rating - 3) * w5
//
// An Again first review lands near 6.8, Easy near 4.0. Clamped to [1,10].
func initialDifficulty(rating domain.Rating, params *Params) float64 {
	d := params.Weights[4] - float64(rating-domain.RatingGood)*params.Weights[5]
	return clampDifficulty(d)
}

// nextDifficulty updates difficulty for a review: a step of -w5 per rating
// point above Good (Easy eases the card, Hard and Again harden it), then
// mean reversion toward w4 so difficulty cannot drift to an extreme and
// stay there.
func nextDifficulty(current float64, rating domain.Rating, params *Params) float64 {
	delta := -float64(rating-domain.RatingGood) * params.Weights[5]
	d := current + delta
	mean := params.Weights[4]
	d = mean + meanReversionWeight*(d-mean)
	return clampDifficulty(d)
}

// stabilityAfterSuccess computes the new stability after a successful review
// (rating 2-4):
//
//	S' = S * (1 + e^w8 * (11 - D) * S^-w10 * (e^(w9*(1-R)) - 1) * m)
//
// where m is the per-rating growth factor. The gain shrinks as R grows: a
// recall while retrievability was still high proves little about
// durability, while a successful recall at low R earns a large gain. The
// growth term is non-negative for all valid inputs, so success never
// decreases stability.
func stabilityAfterSuccess(
	stability, difficulty, retriev float64,
	rating domain.Rating,
	params *Params,
) float64 {
	var growthFactor float64
	switch rating {
	case domain.RatingHard:
		growthFactor = params.HardGrowthFactor
	case domain.RatingEasy:
		growthFactor = params.EasyGrowthFactor
	default:
		growthFactor = params.GoodGrowthFactor
	}

	gain := math.Exp(params.Weights[8]) *
		(11 - difficulty) *
		math.Pow(stability, -params.Weights[10]) *
		(math.Exp(params.Weights[9]*(1-retriev)) - 1) *
		growthFactor

	return clampStability(stability * (1 + gain))
}

// stabilityAfterLapse computes the new stability after a rating of Again:
//
//	S' = w7 * (D/10)^-w6 * ((S+1)^w10 - 1)
//
// capped at half the previous stability so forgetting always shrinks it,
// and floored at MinStability.
func stabilityAfterLapse(stability, difficulty float64, params *Params) float64 {
	s := params.Weights[7] *
		math.Pow(difficulty/10, -params.Weights[6]) *
		(math.Pow(stability+1, params.Weights[10]) - 1)

	return clampStability(math.Min(s, stability*0.5))
}

// clampStability enforces the stability floor and maps non-finite values to
// the floor. Scheduling must always produce a valid interval, so numeric
// edge cases clamp instead of erroring.
func clampStability(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < MinStability {
		return MinStability
	}
	return s
}

// clampDifficulty bounds difficulty to [MinDifficulty, MaxDifficulty],
// mapping non-finite values to the midpoint.
func clampDifficulty(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return DefaultDifficulty
	}
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// initialMemoryState maps a familiarity hint to the memory state a card
// starts with. Known content begins with roughly a week of stability, seen
// content a couple of days; unknown content sits at the stability floor and
// is due immediately.
func initialMemoryState(hint domain.Familiarity, now time.Time, params *Params) domain.MemoryState {
	var stability float64
	due := now

	switch hint {
	case domain.FamiliarityKnown:
		stability = knownHintStability
		due = now.Add(daysToDuration(intervalFromStability(stability, params.TargetRetention)))
	case domain.FamiliaritySeen:
		stability = seenHintStability
		due = now.Add(daysToDuration(intervalFromStability(stability, params.TargetRetention)))
	default:
		stability = MinStability
	}

	return domain.MemoryState{
		Stability:  stability,
		Difficulty: DefaultDifficulty,
		Due:        due,
		Reps:       0,
		Lapses:     0,
		State:      domain.CardStateNew,
	}
}

// nextMemoryState is the core scheduling transition. Given the current
// memory state, a rating, and the days elapsed since the last review, it
// returns the complete next state. It is pure: no clock reads, no I/O.
//
// First reviews (state New) seed stability from w[rating-1] rather than
// growing the hint stability; a familiarity hint that exceeds the seed wins,
// so known content is not demoted by its first graded review.
//
// The returned state always satisfies domain.MemoryState.Validate and its
// due time is strictly after now.
func nextMemoryState(
	state domain.MemoryState,
	rating domain.Rating,
	elapsedDays float64,
	now time.Time,
	params *Params,
) domain.MemoryState {
	next := state
	retriev := retrievability(elapsedDays, state.Stability)
	firstReview := state.State == domain.CardStateNew

	if firstReview {
		next.Difficulty = initialDifficulty(rating, params)
	} else {
		next.Difficulty = nextDifficulty(state.Difficulty, rating, params)
	}

	if rating == domain.RatingAgain {
		next.Lapses = state.Lapses + 1

		if firstReview {
			next.Stability = clampStability(params.Weights[rating-1])
		} else {
			next.Stability = stabilityAfterLapse(state.Stability, next.Difficulty, params)
		}

		// A lapsed Review card drops to Relearning and comes back in
		// minutes; New and Learning cards retry within the session.
		minutes := params.LearningAgainMinutes
		switch state.State {
		case domain.CardStateReview:
			next.State = domain.CardStateRelearning
			minutes = params.RelearningMinutes
		case domain.CardStateRelearning:
			minutes = params.RelearningMinutes
		case domain.CardStateNew:
			next.State = domain.CardStateLearning
		}
		next.Due = now.Add(time.Duration(minutes) * time.Minute)
		return next
	}

	// Success path: rating 2-4.
	next.Reps = state.Reps + 1

	if firstReview {
		seed := params.Weights[rating-1]
		next.Stability = clampStability(math.Max(seed, state.Stability))
	} else {
		next.Stability = stabilityAfterSuccess(state.Stability, next.Difficulty, retriev, rating, params)
	}

	switch state.State {
	case domain.CardStateNew:
		next.State = domain.CardStateLearning
	case domain.CardStateLearning:
		if next.Reps >= graduationReps {
			next.State = domain.CardStateReview
		}
	case domain.CardStateRelearning:
		next.State = domain.CardStateReview
	}

	interval := intervalFromStability(next.Stability, params.TargetRetention)
	switch rating {
	case domain.RatingHard:
		interval *= params.HardIntervalFactor
	case domain.RatingEasy:
		interval *= params.EasyIntervalFactor
	}
	interval = math.Max(interval, minIntervalDays)

	next.Due = now.Add(daysToDuration(interval))
	return next
}

// daysToDuration converts fractional days to a time.Duration.
func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}
