package api

import (
	"net/http"

	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/session"
)

// handleOIDCRedirect handles GET /api/v1.0/authentication/redirect
func (s *Server) handleOIDCRedirect(w http.ResponseWriter, r *http.Request) {
	if s.oidcStart == nil {
		httputil.WriteServiceUnavailable(w, "federated login is not configured")
		return
	}

	authorizeURL, state, nonce, err := s.oidcStart.AuthorizeURL()
	if err != nil {
		s.log.WithError(err).Error("building authorize URL failed")
		httputil.WriteInternalError(w)
		return
	}

	// The CSRF state and nonce must survive until the callback, tied to
	// this browser. Reuse the session cookie if one exists.
	sessionID := session.ReadCookie(r)
	if sessionID == "" {
		if sessionID, err = session.NewID(); err != nil {
			s.log.WithError(err).Error("session id generation failed")
			httputil.WriteInternalError(w)
			return
		}
	}
	if err := s.sessions.SetOIDCState(r.Context(), sessionID, state, nonce); err != nil {
		s.log.WithError(err).Error("storing OIDC state failed")
		httputil.WriteInternalError(w)
		return
	}
	session.WriteCookie(w, sessionID)

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// handleOIDCCallback handles GET /api/v1.0/authentication/callback
func (s *Server) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	if s.oidcAuth == nil {
		httputil.WriteServiceUnavailable(w, "federated login is not configured")
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		httputil.WriteValidationError(w, httputil.CodeValidationError, "code and state are required", "code", "state")
		return
	}

	sessionID := session.ReadCookie(r)
	if sessionID == "" {
		httputil.WriteUnauthorized(w, "no login in progress")
		return
	}

	// One-shot: state and nonce are consumed here whatever the outcome.
	storedState, nonce, err := s.sessions.TakeOIDCState(r.Context(), sessionID)
	if err == session.ErrNoSession {
		httputil.WriteUnauthorized(w, "no login in progress")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("reading OIDC state failed")
		httputil.WriteInternalError(w)
		return
	}

	// Fail closed before any token exchange.
	if state != storedState {
		httputil.WriteUnauthorized(w, "Invalid login/password")
		return
	}

	u, err := s.oidcAuth.LoginOrCreate(r.Context(), code, nonce)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !s.establishSession(w, r, u.ID) {
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"user": toUserDTO(u)})
}
