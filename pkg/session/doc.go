// Package session stores browser sessions in Redis.
//
// A session is an opaque random identifier carried in an HttpOnly cookie
// and a Redis hash keyed by that identifier. The hash holds at most the
// authenticated user's UUID plus short-lived OIDC login scratch (CSRF state
// and nonce). It deliberately never holds a snapshot of the user record:
// handlers re-resolve the account from the repository on every request, so
// profile changes and deletions take effect immediately.
//
// Logging in rotates the session identifier. The OIDC scratch values are
// one-shot: TakeOIDCState returns and deletes them in one call.
package session
