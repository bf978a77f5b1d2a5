package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kubestro/core/pkg/user"
)

// Authentication outcomes.
var (
	// ErrInvalidCredentials covers both unknown-email and wrong-password so
	// responses don't reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordAuthNotAvailable marks accounts with no stored hash
	// (federated users).
	ErrPasswordAuthNotAvailable = errors.New("password authentication not available for this account")
	// ErrPasswordEmpty rejects empty plaintext before any hashing.
	ErrPasswordEmpty = errors.New("password must not be empty")
)

// Service performs local credential authentication against the user
// repository.
type Service struct {
	repo      user.Repository
	hasher    Hasher
	validator PasswordValidator
	log       *logrus.Logger

	// dummyHash is verified against on unknown-email logins so the miss
	// path costs one full hash check, same as the hit path.
	dummyHash string
}

// NewService creates the local authentication service.
func NewService(repo user.Repository, hasher Hasher, validator PasswordValidator, log *logrus.Logger) (*Service, error) {
	if log == nil {
		log = logrus.New()
	}

	dummy, err := hasher.Hash("decoy-credential-for-timing-symmetry")
	if err != nil {
		return nil, fmt.Errorf("prepare decoy hash: %w", err)
	}

	return &Service{
		repo:      repo,
		hasher:    hasher,
		validator: validator,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Login authenticates an email/password pair and returns the account.
//
// Every failure path except the repository error runs exactly one hash
// verification before returning.
func (s *Service) Login(ctx context.Context, rawEmail, password string) (*user.User, error) {
	if password == "" {
		return nil, ErrPasswordEmpty
	}

	email, err := user.ParseEmail(rawEmail)
	if err != nil {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !u.HasPassword() {
		s.hasher.Verify(password, s.dummyHash)
		return nil, ErrPasswordAuthNotAvailable
	}

	if !s.hasher.Verify(password, u.PasswordHash.String()) {
		s.log.WithField("user_id", u.ID).Debug("password verification failed")
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Register creates a local account from raw input.
//
// Field parse errors come back unwrapped (user.ErrEmailInvalid etc.),
// policy violations as *PolicyError, and username/email collisions as
// user.ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, rawUsername, rawEmail, password string) (*user.User, error) {
	username, err := user.ParseUsername(rawUsername)
	if err != nil {
		return nil, err
	}
	email, err := user.ParseEmail(rawEmail)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrPasswordEmpty
	}
	if err := s.validator.Validate(password); err != nil {
		return nil, err
	}

	encoded, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hash, err := user.NewPasswordHash(encoded)
	if err != nil {
		return nil, fmt.Errorf("wrap password hash: %w", err)
	}

	u := user.NewLocalUser(username, email, hash)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"username": u.Username.String(),
	}).Info("registered local user")

	return u, nil
}

// UpdatePassword validates and stores a new password for the account. The
// caller is responsible for verifying the current password first.
func (s *Service) UpdatePassword(ctx context.Context, u *user.User, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordEmpty
	}
	if err := s.validator.Validate(newPassword); err != nil {
		return err
	}

	encoded, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	hash, err := user.NewPasswordHash(encoded)
	if err != nil {
		return fmt.Errorf("wrap password hash: %w", err)
	}

	u.SetPasswordHash(hash)
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("persist password change: %w", err)
	}

	s.log.WithField("user_id", u.ID).Info("password changed")
	return nil
}

// VerifyPassword checks a plaintext against a stored hash.
func (s *Service) VerifyPassword(password, storedHash string) bool {
	return s.hasher.Verify(password, storedHash)
}
