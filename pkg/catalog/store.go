package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Store persists repositories.
type Store interface {
	// Create inserts a repository. Returns ErrAlreadyExists when the name
	// or URL is taken.
	Create(ctx context.Context, create CreateRepository) (*Repository, error)
	// FindAll returns repositories, optionally filtered by a substring
	// match on name or URL.
	FindAll(ctx context.Context, search string) ([]*Repository, error)
	// FindOne returns the repository or (nil, nil) when absent.
	FindOne(ctx context.Context, id uuid.UUID) (*Repository, error)
	// Delete removes a repository. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
