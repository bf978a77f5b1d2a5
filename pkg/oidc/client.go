package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// exchangeTimeout bounds the code-for-token round trip to the provider.
const exchangeTimeout = 10 * time.Second

// Claims is the subset of verified ID-token claims the service consumes,
// plus the raw claim map for configurable username claims.
type Claims struct {
	Subject string
	Email   string
	Nonce   string

	raw map[string]interface{}
}

// StringClaim returns a string claim from the raw token payload.
func (c *Claims) StringClaim(name string) string {
	if v, ok := c.raw[name].(string); ok {
		return v
	}
	return ""
}

// Client wraps OIDC provider discovery, the oauth2 code exchange, and
// ID-token verification.
type Client struct {
	provider     *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	config       *Config
}

// NewClient discovers the provider at cfg.ConfigURL and prepares the
// oauth2 configuration.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	provider, err := gooidc.NewProvider(ctx, cfg.ConfigURL)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&gooidc.Config{ClientID: cfg.ClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes(),
	}

	return &Client{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
		config:       cfg,
	}, nil
}

// AuthorizeURL builds the authorization redirect with fresh one-shot CSRF
// state and nonce values. Both must go into the caller's session scratch.
func (c *Client) AuthorizeURL() (url, state, nonce string, err error) {
	state, err = randomToken()
	if err != nil {
		return "", "", "", err
	}
	nonce, err = randomToken()
	if err != nil {
		return "", "", "", err
	}

	url = c.oauth2Config.AuthCodeURL(state, gooidc.Nonce(nonce))
	return url, state, nonce, nil
}

// Exchange redeems an authorization code, verifies the ID token's signature
// and audience, and returns its claims. The provider round trip is bounded
// by exchangeTimeout.
func (c *Client) Exchange(ctx context.Context, code string) (*Claims, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("token response carries no id_token")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify ID token: %w", err)
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("decode ID token claims: %w", err)
	}

	claims := &Claims{
		Subject: idToken.Subject,
		Nonce:   idToken.Nonce,
		raw:     raw,
	}
	if email, ok := raw["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}

// DisplayName returns the operator-facing provider name.
func (c *Client) DisplayName() string {
	return c.config.DisplayName
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
