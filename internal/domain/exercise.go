package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Exercise-specific validation errors
var (
	// ErrExerciseIDEmpty is returned when an exercise ID is empty or nil.
	ErrExerciseIDEmpty = errors.New("exercise ID cannot be empty")

	// ErrExerciseContentItemIDEmpty is returned when an exercise's content item ID is empty or nil.
	ErrExerciseContentItemIDEmpty = errors.New("exercise content item ID cannot be empty")

	// ErrExercisePromptEmpty is returned when an exercise has no prompt.
	ErrExercisePromptEmpty = errors.New("exercise prompt cannot be empty")

	// ErrExerciseAnswerEmpty is returned when an exercise has no expected answer.
	ErrExerciseAnswerEmpty = errors.New("exercise answer cannot be empty")

	// ErrMCQWithoutOptions is returned when a multiple-choice exercise has no options.
	ErrMCQWithoutOptions = errors.New("multiple-choice exercise requires options")
)

// ExerciseType identifies the kind of prompt an exercise presents.
type ExerciseType string

// Supported exercise types, from recognition (easiest) to full production.
const (
	ExerciseTypeMCQ         ExerciseType = "mcq"
	ExerciseTypeCloze       ExerciseType = "cloze"
	ExerciseTypeTranslation ExerciseType = "translation"
)

// Valid reports whether the exercise type is one of the supported kinds.
func (t ExerciseType) Valid() bool {
	switch t {
	case ExerciseTypeMCQ, ExerciseTypeCloze, ExerciseTypeTranslation:
		return true
	default:
		return false
	}
}

// Exercise is a single prompt/answer pair for a content item. A content
// item typically has several exercises of different types; the session
// selector picks among them per review.
type Exercise struct {
	ID            uuid.UUID    `json:"id"`
	ContentItemID uuid.UUID    `json:"content_item_id"`
	Type          ExerciseType `json:"type"`
	Prompt        string       `json:"prompt"`
	Answer        string       `json:"answer"`
	// AcceptedAnswers holds alternate valid forms of the answer; Answer is
	// always implicitly accepted.
	AcceptedAnswers []string `json:"accepted_answers,omitempty"`
	// Options holds the choices for multiple-choice exercises, in
	// presentation order. Options[0] is the expected first choice.
	Options   []string  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewExercise creates an exercise for a content item.
// Returns an error if validation fails.
func NewExercise(
	contentItemID uuid.UUID,
	exerciseType ExerciseType,
	prompt, answer string,
	options []string,
) (*Exercise, error) {
	now := time.Now().UTC()
	exercise := &Exercise{
		ID:            uuid.New(),
		ContentItemID: contentItemID,
		Type:          exerciseType,
		Prompt:        prompt,
		Answer:        answer,
		Options:       options,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := exercise.Validate(); err != nil {
		return nil, err
	}

	return exercise, nil
}

// Validate checks if the Exercise has valid data.
// Returns an error if any field fails validation.
func (e *Exercise) Validate() error {
	if e.ID == uuid.Nil {
		return ErrExerciseIDEmpty
	}

	if e.ContentItemID == uuid.Nil {
		return ErrExerciseContentItemIDEmpty
	}

	if !e.Type.Valid() {
		return ErrInvalidExerciseType
	}

	if e.Prompt == "" {
		return ErrExercisePromptEmpty
	}

	if e.Answer == "" {
		return ErrExerciseAnswerEmpty
	}

	if e.Type == ExerciseTypeMCQ && len(e.Options) == 0 {
		return ErrMCQWithoutOptions
	}

	return nil
}

// ExpectedAnswers returns the primary answer followed by any configured
// alternates.
func (e *Exercise) ExpectedAnswers() []string {
	answers := make([]string, 0, len(e.AcceptedAnswers)+1)
	answers = append(answers, e.Answer)
	answers = append(answers, e.AcceptedAnswers...)
	return answers
}
