package oidc

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds the OIDC provider settings.
type Config struct {
	// Required.
	ConfigURL    string
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Optional. ClaimName selects the claim used as the account username
	// (default "given_name"); ClaimNamePrefix is prepended to it.
	ClaimName       string
	ClaimNamePrefix string
	ExtraScopes     []string
	DisplayName     string
}

// LoadConfig reads the OIDC_* environment block.
//
// Returns nil when OIDC_CONFIG_URL is unset (feature off, no noise) and nil
// with one aggregated warning when the block is incomplete.
func LoadConfig(log *logrus.Logger) *Config {
	if log == nil {
		log = logrus.New()
	}

	configURL := os.Getenv("OIDC_CONFIG_URL")
	if configURL == "" {
		return nil
	}

	cfg := &Config{
		ConfigURL:    configURL,
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("OIDC_REDIRECT_URI"),
	}

	var missing []string
	if cfg.ClientID == "" {
		missing = append(missing, "OIDC_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "OIDC_CLIENT_SECRET")
	}
	if cfg.RedirectURI == "" {
		missing = append(missing, "OIDC_REDIRECT_URI")
	}
	if len(missing) > 0 {
		log.WithField("missing", strings.Join(missing, ", ")).
			Warn("OIDC is configured but incomplete; federated login disabled")
		return nil
	}

	cfg.ClaimName = os.Getenv("OIDC_CLAIM_NAME")
	cfg.ClaimNamePrefix = os.Getenv("OIDC_CLAIM_NAME_PREFIX")
	cfg.DisplayName = os.Getenv("OIDC_DISPLAY_NAME")
	if scopes := os.Getenv("OIDC_SCOPES"); scopes != "" {
		for _, s := range strings.Split(scopes, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.ExtraScopes = append(cfg.ExtraScopes, s)
			}
		}
	}

	return cfg
}

// Scopes returns the scopes for the authorization request. The base set is
// always present; extras never duplicate it.
func (c *Config) Scopes() []string {
	scopes := []string{"openid", "email", "profile"}
	seen := map[string]bool{"openid": true, "email": true, "profile": true}
	for _, s := range c.ExtraScopes {
		if !seen[s] {
			scopes = append(scopes, s)
			seen[s] = true
		}
	}
	return scopes
}

// UsernameClaim returns the claim holding the account username.
func (c *Config) UsernameClaim() string {
	if c.ClaimName != "" {
		return c.ClaimName
	}
	return "given_name"
}
