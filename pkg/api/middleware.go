package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/session"
	"github.com/kubestro/core/pkg/setup"
	"github.com/kubestro/core/pkg/user"
)

type contextKey int

const userContextKey contextKey = iota

// CurrentUser returns the authenticated account resolved by requireAuth,
// or nil outside a protected route.
func CurrentUser(r *http.Request) *user.User {
	u, _ := r.Context().Value(userContextKey).(*user.User)
	return u
}

// resolveUser re-resolves the session's account from the repository. An
// anonymous or broken session returns (nil, "", nil); only infrastructure
// failures return an error.
func (s *Server) resolveUser(r *http.Request) (*user.User, string, error) {
	sessionID := session.ReadCookie(r)
	if sessionID == "" {
		return nil, "", nil
	}

	userID, ok, err := s.sessions.UserID(r.Context(), sessionID)
	if err != nil {
		return nil, sessionID, err
	}
	if !ok {
		return nil, sessionID, nil
	}

	u, err := s.users.FindByID(r.Context(), userID)
	if errors.Is(err, user.ErrNotFound) {
		// The account is gone, the session is dead weight.
		return nil, sessionID, nil
	}
	if err != nil {
		return nil, sessionID, err
	}
	return u, sessionID, nil
}

// requireAuth admits only requests with a resolvable account and puts it
// in the request context. A missing cookie, dead session, unknown id and
// deleted account all produce the same 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _, err := s.resolveUser(r)
		if err != nil {
			s.log.WithError(err).Error("identity resolution failed")
			httputil.WriteInternalError(w)
			return
		}
		if u == nil {
			httputil.WriteUnauthorized(w, "User is not authenticated")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next(w, r.WithContext(ctx))
	}
}

// requireGuest rejects requests that already carry a resolvable account,
// so a second login cannot silently replace the first.
func (s *Server) requireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _, err := s.resolveUser(r)
		if err != nil {
			s.log.WithError(err).Error("identity resolution failed")
			httputil.WriteInternalError(w)
			return
		}
		if u != nil {
			httputil.WriteUnauthorized(w, "already authenticated")
			return
		}
		next(w, r)
	}
}

// requireInstalled gates normal operation behind a completed setup.
func (s *Server) requireInstalled(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.setup.Status() != setup.StatusInstalled {
			httputil.WriteForbidden(w, httputil.CodeNotInstalled, "instance is not installed")
			return
		}
		next(w, r)
	}
}

// requireNotInstalled keeps the setup wizard closed once setup completed.
func (s *Server) requireNotInstalled(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.setup.Status() != setup.StatusNotInstalled {
			httputil.WriteForbidden(w, httputil.CodeAlreadyInstalled, "instance is already installed")
			return
		}
		next(w, r)
	}
}
