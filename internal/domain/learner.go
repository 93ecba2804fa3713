package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Learner-specific validation errors
var (
	ErrEmptyLearnerID      = errors.New("learner ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// emailPattern is a pragmatic format check, not a full RFC 5322 parser.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Learner represents a registered learner of the application.
// It contains identity and authentication details; per-card scheduling
// state lives on the learner's cards.
type Learner struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	CurrentLevel   string    `json:"current_level,omitempty"` // CEFR: A1-C2
	Password       string    `json:"-"`                       // Plaintext, only populated during registration
	HashedPassword string    `json:"-"`                       // Never exposed in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewLearner creates a new Learner with the given email, name, and password.
//
// NOTE: This function only sets up the learner structure with the plaintext
// password. The caller is responsible for hashing the password before the
// learner is stored.
func NewLearner(email, name, password string) (*Learner, error) {
	now := time.Now().UTC()
	learner := &Learner{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := learner.Validate(); err != nil {
		return nil, err
	}

	return learner, nil
}

// Validate checks if the Learner has valid data.
// Returns an error if any field fails validation.
func (l *Learner) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLearnerID
	}

	if l.Email == "" {
		return ErrEmptyEmail
	}

	if !emailPattern.MatchString(l.Email) {
		return ErrInvalidEmail
	}

	// bcrypt rejects inputs longer than 72 bytes, so the upper bound is a
	// hard limit rather than a style choice.
	if l.Password != "" {
		if len(l.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(l.Password) > 72 {
			return ErrPasswordTooLong
		}
	}

	return nil
}
