package oidc

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kubestro/core/pkg/user"
)

// ErrLoginFailed covers every verification failure in the callback path:
// missing id_token, bad signature, nonce mismatch. Specifics go to the
// debug log, never to the client.
var ErrLoginFailed = errors.New("OIDC login failed")

// TokenExchanger redeems an authorization code into verified claims.
// Satisfied by *Client.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (*Claims, error)
}

// Service logs users in from verified OIDC claims, creating the account on
// first contact.
type Service struct {
	repo      user.Repository
	exchanger TokenExchanger
	config    *Config
	log       *logrus.Logger
}

// NewService creates the federated login service.
func NewService(repo user.Repository, exchanger TokenExchanger, config *Config, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		repo:      repo,
		exchanger: exchanger,
		config:    config,
		log:       log,
	}
}

// LoginOrCreate redeems the authorization code and resolves it to a local
// account. nonce must be the value stored in the session when the flow
// started.
//
// The operation is idempotent per subject: a known subject returns its
// existing account untouched, even if the provider now reports a different
// email or name.
func (s *Service) LoginOrCreate(ctx context.Context, code, nonce string) (*user.User, error) {
	claims, err := s.exchanger.Exchange(ctx, code)
	if err != nil {
		s.log.WithError(err).Debug("OIDC code exchange failed")
		return nil, ErrLoginFailed
	}

	if nonce == "" || claims.Nonce != nonce {
		s.log.Debug("OIDC nonce mismatch")
		return nil, ErrLoginFailed
	}
	if claims.Subject == "" {
		s.log.Debug("OIDC token carries no subject")
		return nil, ErrLoginFailed
	}

	existing, err := s.repo.FindByOIDCSubject(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("find user by OIDC subject: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	// The email and profile scopes are always requested; a token without
	// these claims means the provider client is misconfigured, which the
	// operator needs to hear about.
	if claims.Email == "" {
		return nil, fmt.Errorf("ID token carries no email claim; check the provider's scope configuration")
	}
	rawName := claims.StringClaim(s.config.UsernameClaim())
	if rawName == "" {
		return nil, fmt.Errorf("ID token carries no %q claim; check the provider's scope configuration", s.config.UsernameClaim())
	}

	username, err := user.ParseUsername(s.config.ClaimNamePrefix + rawName)
	if err != nil {
		return nil, fmt.Errorf("provider name claim is not a usable username: %w", err)
	}
	email, err := user.ParseEmail(claims.Email)
	if err != nil {
		return nil, fmt.Errorf("provider email claim is not a usable address: %w", err)
	}

	u := user.NewOIDCUser(username, email)
	if err := s.repo.CreateOIDCUser(ctx, u, claims.Subject); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			// Either a concurrent first login for the same subject, or a
			// username/email collision with an unrelated account. Re-probe
			// the subject to tell them apart.
			if again, findErr := s.repo.FindByOIDCSubject(ctx, claims.Subject); findErr == nil && again != nil {
				return again, nil
			}
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"username": u.Username.String(),
	}).Info("created user from OIDC claims")

	return u, nil
}
