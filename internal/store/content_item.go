package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/hindisrs/hindi-srs/internal/domain"
)

// ContentItemStore defines the interface for vocabulary item persistence.
type ContentItemStore interface {
	// Create saves a new content item.
	Create(ctx context.Context, item *domain.ContentItem) error

	// GetByID retrieves a content item by ID.
	// Returns ErrContentItemNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)

	// List returns all content items in creation order.
	List(ctx context.Context) ([]*domain.ContentItem, error)
}
