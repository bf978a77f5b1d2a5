package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/session"
)

// handleLogin handles POST /api/v1.0/authentication
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordLogin(false)
		}
		s.writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.RecordLogin(true)
	}

	if !s.establishSession(w, r, u.ID) {
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"user": toUserDTO(u)})
}

// handleLogout handles DELETE /api/v1.0/authentication
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := session.ReadCookie(r); id != "" {
		if err := s.sessions.Destroy(r.Context(), id); err != nil {
			s.log.WithError(err).Error("session destroy failed")
			httputil.WriteInternalError(w)
			return
		}
	}
	session.ClearCookie(w)
	httputil.WriteNoContent(w)
}

// handleMe handles GET /api/v1.0/authentication
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{"user": toUserDTO(CurrentUser(r))})
}

// handleRegister handles POST /api/v1.0/authentication/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	u, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !s.establishSession(w, r, u.ID) {
		return
	}
	httputil.WriteCreated(w, map[string]interface{}{"user": toUserDTO(u)})
}

// establishSession rotates the session id onto the authenticated user and
// sets the cookie. Reports false after writing a 500.
func (s *Server) establishSession(w http.ResponseWriter, r *http.Request, userID uuid.UUID) bool {
	newID, err := s.sessions.Login(r.Context(), session.ReadCookie(r), userID)
	if err != nil {
		s.log.WithError(err).Error("session establish failed")
		httputil.WriteInternalError(w)
		return false
	}
	session.WriteCookie(w, newID)
	return true
}
