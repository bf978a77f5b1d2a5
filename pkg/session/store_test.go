package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(client), mr
}

// TestNewID verifies ids are opaque and unique
func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}

// TestStore_LoginStoresOnlyUserID verifies the session holds the id, not a
// user snapshot
func TestStore_LoginStoresOnlyUserID(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	id, err := store.Login(ctx, "", userID)
	require.NoError(t, err)

	got, ok, err := store.UserID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	fields, err := mr.HKeys(keyPrefix + id)
	require.NoError(t, err)
	assert.Equal(t, []string{fieldUserID}, fields)

	assert.Greater(t, mr.TTL(keyPrefix+id).Hours(), 24.0)
}

// TestStore_LoginRotatesSessionID verifies the pre-login id is dead after
// login
func TestStore_LoginRotatesSessionID(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	oldID, err := NewID()
	require.NoError(t, err)
	require.NoError(t, store.SetOIDCState(ctx, oldID, "state", "nonce"))

	newID, err := store.Login(ctx, oldID, uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, oldID, newID)

	_, ok, err := store.UserID(ctx, oldID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = store.TakeOIDCState(ctx, oldID)
	assert.ErrorIs(t, err, ErrNoSession)
}

// TestStore_UserID_Anonymous verifies unknown and empty ids read as
// anonymous, not as errors
func TestStore_UserID_Anonymous(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.UserID(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.UserID(ctx, "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestStore_UserID_CorruptValue verifies a non-UUID value reads as anonymous
// and the session is dropped
func TestStore_UserID_CorruptValue(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	mr.HSet(keyPrefix+"bad", fieldUserID, "not-a-uuid")

	_, ok, err := store.UserID(ctx, "bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(keyPrefix+"bad"))
}

// TestStore_Destroy verifies logout removes the session
func TestStore_Destroy(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	id, err := store.Login(ctx, "", uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, id))
	assert.False(t, mr.Exists(keyPrefix+id))

	// Destroying again (or never) is not an error.
	assert.NoError(t, store.Destroy(ctx, id))
	assert.NoError(t, store.Destroy(ctx, ""))
}

// TestStore_OIDCStateOneShot verifies Take returns the values exactly once
func TestStore_OIDCStateOneShot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	id, err := NewID()
	require.NoError(t, err)
	require.NoError(t, store.SetOIDCState(ctx, id, "csrf-token", "nonce-value"))

	state, nonce, err := store.TakeOIDCState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "csrf-token", state)
	assert.Equal(t, "nonce-value", nonce)

	_, _, err = store.TakeOIDCState(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

// TestStore_OIDCStateExpiry verifies the scratch TTL is short
func TestStore_OIDCStateExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	id, err := NewID()
	require.NoError(t, err)
	require.NoError(t, store.SetOIDCState(ctx, id, "csrf-token", "nonce-value"))

	assert.LessOrEqual(t, mr.TTL(keyPrefix+id), OIDCScratchTTL)

	mr.FastForward(OIDCScratchTTL * 2)

	_, _, err = store.TakeOIDCState(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

// TestCookieRoundTrip verifies write/read/clear of the session cookie
func TestCookieRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	WriteCookie(w, "session-id-value")

	resp := w.Result()
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookies[0])
	assert.Equal(t, "session-id-value", ReadCookie(r))

	assert.Equal(t, "", ReadCookie(httptest.NewRequest("GET", "/", nil)))

	w2 := httptest.NewRecorder()
	ClearCookie(w2)
	cleared := w2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}
