package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Persistence sentinels. Repository implementations wrap everything else.
var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Repository is the persistence port for accounts.
//
// Finder methods return (nil, nil) on absence so callers probing for
// existence don't have to treat a miss as a failure; FindByID returns
// ErrNotFound because its callers always expect the row.
type Repository interface {
	// Create persists a new user. Username or email collisions return
	// ErrAlreadyExists.
	Create(ctx context.Context, u *User) error

	// CreateOIDCUser persists a new user and its OIDC subject link in a
	// single transaction. Either both rows exist afterwards or neither.
	CreateOIDCUser(ctx context.Context, u *User, subject string) error

	// FindByID returns the user or ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail returns the user, or (nil, nil) when absent.
	FindByEmail(ctx context.Context, email Email) (*User, error)

	// FindByUsername returns the user, or (nil, nil) when absent.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByOIDCSubject returns the user linked to a federated subject,
	// or (nil, nil) when no link exists.
	FindByOIDCSubject(ctx context.Context, subject string) (*User, error)

	// FindAll returns every user.
	FindAll(ctx context.Context) ([]*User, error)

	// Update persists username, email, password hash and updated_at.
	// Collisions on username or email return ErrAlreadyExists.
	Update(ctx context.Context, u *User) error

	// Delete removes the user or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
