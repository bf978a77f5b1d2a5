package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	// CookieName is the session cookie.
	CookieName = "kubestro_session"

	// SessionTTL bounds how long an authenticated session lives without
	// being recreated.
	SessionTTL = 7 * 24 * time.Hour

	// OIDCScratchTTL bounds how long a started OIDC login may take.
	OIDCScratchTTL = 10 * time.Minute

	keyPrefix = "session:"

	fieldUserID    = "user_id"
	fieldOIDCState = "oidc_state"
	fieldOIDCNonce = "oidc_nonce"
)

// ErrNoSession marks operations on a session id that does not exist (or
// has expired).
var ErrNoSession = errors.New("session not found")

// Store manages sessions in Redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a Redis-backed session store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// NewID generates a fresh opaque session identifier. Nothing is written to
// Redis until the session holds a value.
func NewID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// UserID returns the authenticated user id stored in the session, or
// uuid.Nil and false when the session is anonymous or absent.
func (s *Store) UserID(ctx context.Context, id string) (uuid.UUID, bool, error) {
	if id == "" {
		return uuid.Nil, false, nil
	}

	raw, err := s.client.HGet(ctx, keyPrefix+id, fieldUserID).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("read session: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		// A corrupt value is an anonymous session, not an outage.
		s.client.Del(ctx, keyPrefix+id)
		return uuid.Nil, false, nil
	}
	return userID, true, nil
}

// Login binds a user id to a brand-new session identifier and discards the
// old one. Rotating the id on privilege change blocks session fixation.
func (s *Store) Login(ctx context.Context, oldID string, userID uuid.UUID) (string, error) {
	newID, err := NewID()
	if err != nil {
		return "", err
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, keyPrefix+newID, fieldUserID, userID.String())
	pipe.Expire(ctx, keyPrefix+newID, SessionTTL)
	if oldID != "" {
		pipe.Del(ctx, keyPrefix+oldID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("write session: %w", err)
	}
	return newID, nil
}

// Destroy removes a session entirely.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SetOIDCState stores the CSRF state and nonce for an in-flight OIDC login
// under the session, with the short scratch TTL.
func (s *Store) SetOIDCState(ctx context.Context, id, state, nonce string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, keyPrefix+id, fieldOIDCState, state, fieldOIDCNonce, nonce)
	pipe.Expire(ctx, keyPrefix+id, OIDCScratchTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write oidc state: %w", err)
	}
	return nil
}

// TakeOIDCState returns the stored CSRF state and nonce and deletes both in
// the same call. A second Take for the same login always misses.
func (s *Store) TakeOIDCState(ctx context.Context, id string) (state, nonce string, err error) {
	if id == "" {
		return "", "", ErrNoSession
	}

	pipe := s.client.TxPipeline()
	get := pipe.HMGet(ctx, keyPrefix+id, fieldOIDCState, fieldOIDCNonce)
	pipe.HDel(ctx, keyPrefix+id, fieldOIDCState, fieldOIDCNonce)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", "", fmt.Errorf("take oidc state: %w", err)
	}

	vals := get.Val()
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return "", "", ErrNoSession
	}
	state, _ = vals[0].(string)
	nonce, _ = vals[1].(string)
	if state == "" || nonce == "" {
		return "", "", ErrNoSession
	}
	return state, nonce, nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ReadCookie extracts the session id from the request, or "".
func ReadCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WriteCookie sets the session cookie.
func WriteCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
