package user

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies how an account authenticates.
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderOIDC  Provider = "oidc"
)

// User is an account. Local users always carry a password hash; OIDC users
// may not.
type User struct {
	ID           uuid.UUID
	Username     Username
	Email        Email
	PasswordHash *PasswordHash
	Provider     Provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLocalUser creates a password-backed account.
func NewLocalUser(username Username, email Email, hash PasswordHash) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		Provider:     ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewOIDCUser creates a federated account with no local password.
func NewOIDCUser(username Username, email Email) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Provider:  ProviderOIDC,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasPassword reports whether the account can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil
}

// SetPasswordHash replaces the stored hash and bumps UpdatedAt.
func (u *User) SetPasswordHash(hash PasswordHash) {
	u.PasswordHash = &hash
	u.UpdatedAt = time.Now().UTC()
}

// SetProfile replaces username and email and bumps UpdatedAt.
func (u *User) SetProfile(username Username, email Email) {
	u.Username = username
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
}
