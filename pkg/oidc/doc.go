// Package oidc implements federated login via OpenID Connect.
//
// # Overview
//
// Configuration comes from OIDC_* environment variables. The feature is
// optional: without OIDC_CONFIG_URL the loader returns nil silently, and a
// partially-filled block disables the feature with a single warning that
// enumerates every missing field, so an operator fixes the whole block in
// one pass.
//
// The Client wraps provider discovery, the authorization-code exchange and
// ID-token verification. The Service turns verified claims into local
// accounts: a known subject logs straight in, an unknown one gets a user
// row and a subject link created in a single transaction, which makes
// LoginOrCreate idempotent per subject.
//
// # Login flow
//
//	url, state, nonce, _ := client.AuthorizeURL()
//	// state+nonce go into the session scratch, browser goes to url.
//	// On callback, after the CSRF state check:
//	u, err := svc.LoginOrCreate(ctx, code, nonce)
//
// All verification failures collapse into ErrLoginFailed; details go to the
// debug log only.
package oidc
