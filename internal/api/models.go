// Package api implements the HTTP surface: request/response models,
// handlers, and the router that binds them together.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
	"github.com/hindisrs/hindi-srs/internal/scheduler"
	"github.com/hindisrs/hindi-srs/internal/session"
)

// RegisterRequest is the payload for creating a new learner account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for authenticating an existing learner.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued access token after registration or login.
type AuthResponse struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Token     string    `json:"token"`
}

// ExerciseView is the learner-facing shape of an exercise. The expected
// answer and accepted alternates are deliberately absent; they only come
// back inside the graded result.
type ExerciseView struct {
	ID      uuid.UUID           `json:"id"`
	Type    domain.ExerciseType `json:"type"`
	Prompt  string              `json:"prompt"`
	Options []string            `json:"options,omitempty"`
}

// PromptResponse is the next exercise to present in a session.
type PromptResponse struct {
	SessionID      uuid.UUID                `json:"session_id"`
	CardID         uuid.UUID                `json:"card_id"`
	Exercise       ExerciseView             `json:"exercise"`
	Classification scheduler.Classification `json:"classification"`
	Remaining      int                      `json:"remaining"`
	PresentedAt    time.Time                `json:"presented_at"`
}

// newPromptResponse maps a session prompt to its API shape.
func newPromptResponse(p *session.Prompt) PromptResponse {
	return PromptResponse{
		SessionID: p.SessionID,
		CardID:    p.CardID,
		Exercise: ExerciseView{
			ID:      p.Exercise.ID,
			Type:    p.Exercise.Type,
			Prompt:  p.Exercise.Prompt,
			Options: p.Exercise.Options,
		},
		Classification: p.Classification,
		Remaining:      p.Remaining,
		PresentedAt:    p.PresentedAt,
	}
}

// SubmitAnswerRequest is the learner's response to the active prompt.
// ElapsedMs may be zero; the server then falls back to wall-clock time
// since the prompt was presented. SelfRating, when present, overrides the
// assessed rating; out-of-range values are rejected.
type SubmitAnswerRequest struct {
	Response   string         `json:"response"`
	ElapsedMs  int            `json:"elapsed_ms" validate:"min=0"`
	SelfRating *domain.Rating `json:"self_rating,omitempty"`
}

// UpdateLevelRequest sets the learner's self-assessed CEFR level.
type UpdateLevelRequest struct {
	Level string `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
}
