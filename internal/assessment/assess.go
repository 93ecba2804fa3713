// Package assessment grades learner responses. Free-text answers go through
// a normalization pipeline and, when no exact match is found, an optional
// LLM-backed similarity judge. Multiple-choice answers are graded by which
// choice the learner picked.
package assessment

import (
	"context"
	"log/slog"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// Default similarity threshold above which a fuzzy-judged response counts
// as correct. Judged answers never earn better than Hard: the learner
// produced an approximation, not the target form.
const defaultFuzzyThreshold = 0.85

// Method identifies which grading path produced an assessment.
type Method string

// Grading methods.
const (
	MethodExact       Method = "exact"
	MethodRecognition Method = "recognition"
	MethodFuzzy       Method = "fuzzy"
)

// FuzzyJudge scores the semantic similarity of a response to the expected
// answer on [0, 1]. Implementations are expected to be remote and fallible;
// the assessor treats any error as "no judgment available".
type FuzzyJudge interface {
	Similarity(ctx context.Context, expected, response string) (float64, error)
}

// Assessment is the graded outcome of a single response.
type Assessment struct {
	Correct         bool          `json:"correct"`
	SuggestedRating domain.Rating `json:"suggested_rating"`
	Method          Method        `json:"method"`

	// Feedback carries the expected answer when the response was wrong, so
	// the learner sees the correction immediately.
	Feedback string `json:"feedback,omitempty"`
}

// Assessor grades responses against exercises. It holds no per-learner
// state and is safe for concurrent use.
type Assessor struct {
	judge        FuzzyJudge
	equivalences []EquivalencePair
	threshold    float64
	logger       *slog.Logger
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithFuzzyJudge enables LLM-backed grading of near-miss free-text answers.
func WithFuzzyJudge(judge FuzzyJudge) Option {
	return func(a *Assessor) { a.judge = judge }
}

// WithEquivalences replaces the default Hindi equivalence pairs.
func WithEquivalences(pairs []EquivalencePair) Option {
	return func(a *Assessor) { a.equivalences = pairs }
}

// WithThreshold overrides the similarity threshold for fuzzy-judged
// answers. Values outside (0, 1] are ignored.
func WithThreshold(threshold float64) Option {
	return func(a *Assessor) {
		if threshold > 0 && threshold <= 1 {
			a.threshold = threshold
		}
	}
}

// NewAssessor creates an Assessor. Without options it grades by exact
// match only, using the default Hindi equivalences.
func NewAssessor(logger *slog.Logger, opts ...Option) *Assessor {
	if logger == nil {
		panic("logger cannot be nil")
	}

	a := &Assessor{
		equivalences: DefaultHindiEquivalences,
		threshold:    defaultFuzzyThreshold,
		logger:       logger.With("component", "assessment"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess grades a response to an exercise. It never returns an error: a
// failing judge degrades to exact-match grading, and any unmatchable
// response is simply incorrect.
func (a *Assessor) Assess(ctx context.Context, exercise *domain.Exercise, response string) Assessment {
	if exercise.Type == domain.ExerciseTypeMCQ {
		return a.assessRecognition(exercise, response)
	}
	return a.assessRecall(ctx, exercise, response)
}

// assessRecognition grades a multiple-choice answer. Picking the primary
// answer earns Easy; picking a configured alternate still counts as correct
// but earns only Good, and any other choice is a miss.
func (a *Assessor) assessRecognition(exercise *domain.Exercise, response string) Assessment {
	chosen := Normalize(response)

	if chosen == Normalize(exercise.Answer) {
		return Assessment{
			Correct:         true,
			SuggestedRating: domain.RatingEasy,
			Method:          MethodRecognition,
		}
	}

	for _, alt := range exercise.AcceptedAnswers {
		if chosen == Normalize(alt) {
			return Assessment{
				Correct:         true,
				SuggestedRating: domain.RatingGood,
				Method:          MethodRecognition,
			}
		}
	}

	return Assessment{
		Correct:         false,
		SuggestedRating: domain.RatingAgain,
		Method:          MethodRecognition,
		Feedback:        exercise.Answer,
	}
}

// assessRecall grades a free-text answer: exact pipeline first, then the
// fuzzy judge if one is configured and the response was non-empty.
func (a *Assessor) assessRecall(ctx context.Context, exercise *domain.Exercise, response string) Assessment {
	normalized := Normalize(response)

	incorrect := Assessment{
		Correct:         false,
		SuggestedRating: domain.RatingAgain,
		Method:          MethodExact,
		Feedback:        exercise.Answer,
	}

	if normalized == "" {
		return incorrect
	}

	for _, expected := range exercise.ExpectedAnswers() {
		if equivalent(normalized, Normalize(expected), a.equivalences) {
			return Assessment{
				Correct:         true,
				SuggestedRating: domain.RatingEasy,
				Method:          MethodExact,
			}
		}
	}

	if a.judge == nil {
		return incorrect
	}

	score, err := a.judge.Similarity(ctx, exercise.Answer, response)
	if err != nil {
		a.logger.WarnContext(ctx, "fuzzy judge unavailable, falling back to exact grading",
			"exercise_id", exercise.ID,
			"error", err)
		return incorrect
	}

	if score >= a.threshold {
		return Assessment{
			Correct:         true,
			SuggestedRating: domain.RatingHard,
			Method:          MethodFuzzy,
		}
	}

	return Assessment{
		Correct:         false,
		SuggestedRating: domain.RatingAgain,
		Method:          MethodFuzzy,
		Feedback:        exercise.Answer,
	}
}
