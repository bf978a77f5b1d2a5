package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/user"
)

// TestLogin verifies the happy path establishes a session
func TestLogin(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, "carol", "carol@example.com")

	rec := f.do(http.MethodPost, "/api/v1.0/authentication",
		`{"email":"carol@example.com","password":"`+testPassword+`"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"carol@example.com"`)

	cookie := sessionCookieValue(rec)
	require.NotEmpty(t, cookie)

	me := f.do(http.MethodGet, "/api/v1.0/authentication", "", cookie)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"username":"carol"`)
}

// TestLogin_BadCredentials verifies wrong password and unknown email give
// the same answer
func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t, true)
	f.register(t, "carol", "carol@example.com")

	wrongPassword := f.do(http.MethodPost, "/api/v1.0/authentication",
		`{"email":"carol@example.com","password":"Wrong-pass-1!"}`, "")
	unknownEmail := f.do(http.MethodPost, "/api/v1.0/authentication",
		`{"email":"nobody@example.com","password":"`+testPassword+`"}`, "")

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decodeProblem(t, wrongPassword), decodeProblem(t, unknownEmail))
	assert.Equal(t, httputil.CodeUnauthorized, decodeProblem(t, wrongPassword).Code)
}

// TestLogin_RequiresGuest verifies an authenticated session cannot log in
// again
func TestLogin_RequiresGuest(t *testing.T) {
	f := newFixture(t, true)
	u := f.register(t, "carol", "carol@example.com")
	cookie := f.sessionFor(t, u)

	rec := f.do(http.MethodPost, "/api/v1.0/authentication",
		`{"email":"carol@example.com","password":"`+testPassword+`"}`, cookie)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestLogin_NotInstalled verifies the setup gate
func TestLogin_NotInstalled(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodPost, "/api/v1.0/authentication",
		`{"email":"carol@example.com","password":"`+testPassword+`"}`, "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, httputil.CodeNotInstalled, decodeProblem(t, rec).Code)
}

// TestLogout verifies the session dies server side
func TestLogout(t *testing.T) {
	f := newFixture(t, true)
	u := f.register(t, "carol", "carol@example.com")
	cookie := f.sessionFor(t, u)

	rec := f.do(http.MethodDelete, "/api/v1.0/authentication", "", cookie)
	require.Equal(t, http.StatusNoContent, rec.Code)

	me := f.do(http.MethodGet, "/api/v1.0/authentication", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

// TestMe_Unauthorized verifies missing and dead sessions give one answer
func TestMe_Unauthorized(t *testing.T) {
	f := newFixture(t, true)

	noCookie := f.do(http.MethodGet, "/api/v1.0/authentication", "", "")
	deadCookie := f.do(http.MethodGet, "/api/v1.0/authentication", "", "not-a-live-session")

	require.Equal(t, http.StatusUnauthorized, noCookie.Code)
	require.Equal(t, http.StatusUnauthorized, deadCookie.Code)
	assert.Equal(t, decodeProblem(t, noCookie), decodeProblem(t, deadCookie))
}

// TestMe_DeletedUser verifies a session for a removed account is dead
func TestMe_DeletedUser(t *testing.T) {
	f := newFixture(t, true)
	u := f.register(t, "carol", "carol@example.com")
	cookie := f.sessionFor(t, u)

	require.NoError(t, f.users.Delete(context.Background(), u.ID))

	rec := f.do(http.MethodGet, "/api/v1.0/authentication", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// wrappingUsers decorates lookups with error wrapping, like a store that
// annotates its failures.
type wrappingUsers struct {
	*memoryUsers
}

func (r wrappingUsers) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := r.memoryUsers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

// TestMe_WrappedNotFound verifies a wrapped not-found from the repository
// still reads as a dead session, not a server error
func TestMe_WrappedNotFound(t *testing.T) {
	f := newFixture(t, true)
	u := f.register(t, "carol", "carol@example.com")
	cookie := f.sessionFor(t, u)
	f.server.users = wrappingUsers{f.users}

	require.NoError(t, f.users.Delete(context.Background(), u.ID))

	rec := f.do(http.MethodGet, "/api/v1.0/authentication", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestRegister verifies account creation and the error mapping
func TestRegister(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/v1.0/authentication/register",
		`{"username":"carol","email":"carol@example.com","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, sessionCookieValue(rec))

	// Same data again collides.
	dup := f.do(http.MethodPost, "/api/v1.0/authentication/register",
		`{"username":"carol","email":"carol@example.com","password":"`+testPassword+`"}`, "")
	require.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, httputil.CodeUserAlreadyExists, decodeProblem(t, dup).Code)
}

// TestRegister_Validation verifies field errors carry their codes
func TestRegister_Validation(t *testing.T) {
	f := newFixture(t, true)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"invalid email", `{"username":"carol","email":"not-an-email","password":"` + testPassword + `"}`, httputil.CodeInvalidEmail},
		{"short username", `{"username":"ca","email":"carol@example.com","password":"` + testPassword + `"}`, httputil.CodeInvalidUsername},
		{"weak password", `{"username":"carol","email":"carol@example.com","password":"short"}`, httputil.CodeInvalidPassword},
		{"broken json", `{"username":`, httputil.CodeValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/v1.0/authentication/register", tt.body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantCode, decodeProblem(t, rec).Code)
		})
	}
}

// TestRegister_PolicyViolations verifies every unmet rule is reported
func TestRegister_PolicyViolations(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/v1.0/authentication/register",
		`{"username":"carol","email":"carol@example.com","password":"alllower"}`, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	assert.Equal(t, httputil.CodeInvalidPassword, p.Code)
	assert.Contains(t, p.Fields, "PASSWORD_WITHOUT_UPPERCASE")
	assert.Contains(t, p.Fields, "PASSWORD_WITHOUT_NUMBER")
	assert.Contains(t, p.Fields, "PASSWORD_WITHOUT_SPECIAL_CHARACTER")
}

// TestNotFoundFallback verifies unknown paths answer in problem shape
func TestNotFoundFallback(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/v1.0/no-such-route", "", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.CodeNotFound, decodeProblem(t, rec).Code)
}
