package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ContentItem-specific validation errors
var (
	// ErrContentItemIDEmpty is returned when a content item ID is empty or nil.
	ErrContentItemIDEmpty = errors.New("content item ID cannot be empty")

	// ErrContentItemTermEmpty is returned when a content item has no term.
	ErrContentItemTermEmpty = errors.New("content item term cannot be empty")

	// ErrContentItemDefinitionEmpty is returned when a content item has no definition.
	ErrContentItemDefinitionEmpty = errors.New("content item definition cannot be empty")
)

// ContentItem is a unit of learnable content: a Hindi term with its English
// definition and optional romanization and level metadata. Content items are
// created by the ingestion pipeline, which lives outside this service.
type ContentItem struct {
	ID           uuid.UUID   `json:"id"`
	Term         string      `json:"term"`       // Hindi text, typically Devanagari
	Definition   string      `json:"definition"` // English translation
	Romanization string      `json:"romanization,omitempty"`
	CEFRLevel    string      `json:"cefr_level,omitempty"` // A1-C2
	Familiarity  Familiarity `json:"familiarity"`          // Prior-exposure hint from ingestion
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewContentItem creates a content item with the given term and definition.
// An empty familiarity defaults to unknown.
func NewContentItem(term, definition string, familiarity Familiarity) (*ContentItem, error) {
	if familiarity == "" {
		familiarity = FamiliarityUnknown
	}

	now := time.Now().UTC()
	item := &ContentItem{
		ID:          uuid.New(),
		Term:        term,
		Definition:  definition,
		Familiarity: familiarity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ContentItem has valid data.
// Returns an error if any field fails validation.
func (c *ContentItem) Validate() error {
	if c.ID == uuid.Nil {
		return ErrContentItemIDEmpty
	}

	if c.Term == "" {
		return ErrContentItemTermEmpty
	}

	if c.Definition == "" {
		return ErrContentItemDefinitionEmpty
	}

	return nil
}
