package api

import (
	"net/http"

	"github.com/kubestro/core/pkg/httputil"
)

// handleSetupStatus handles GET /api/v1.0/setup
func (s *Server) handleSetupStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"status": s.setup.Status().String(),
	})
}

// handleSetupComplete handles POST /api/v1.0/setup
func (s *Server) handleSetupComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	u, err := s.setup.Complete(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !s.establishSession(w, r, u.ID) {
		return
	}
	httputil.WriteCreated(w, map[string]interface{}{"user": toUserDTO(u)})
}
