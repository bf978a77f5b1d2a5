package api

import (
	"net/http"

	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/user"
)

// handleUpdateProfile handles PUT /api/v1.0/settings/profile
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r)
	if u.Provider != user.ProviderLocal {
		httputil.WriteForbidden(w, httputil.CodeForbidden, "external users cannot update their profile")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	username, err := user.ParseUsername(req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	email, err := user.ParseEmail(req.Email)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Probe both collisions so the response names every conflicting
	// field at once.
	var conflicts []string
	if username.String() != u.Username.String() {
		other, err := s.users.FindByUsername(r.Context(), username.String())
		if err != nil {
			s.writeError(w, err)
			return
		}
		if other != nil {
			conflicts = append(conflicts, "username")
		}
	}
	if email.String() != u.Email.String() {
		other, err := s.users.FindByEmail(r.Context(), email)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if other != nil {
			conflicts = append(conflicts, "email")
		}
	}
	if len(conflicts) > 0 {
		httputil.WriteConflict(w, httputil.CodeUserDataAlreadyExist,
			"a user with the same data already exists", conflicts...)
		return
	}

	u.SetProfile(username, email)
	if err := s.users.Update(r.Context(), u); err != nil {
		// A racing update can still collide after the probes.
		s.writeError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"user": toUserDTO(u)})
}

// handleUpdatePassword handles PUT /api/v1.0/settings/password
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	u := CurrentUser(r)
	if u.Provider != user.ProviderLocal || !u.HasPassword() {
		httputil.WriteForbidden(w, httputil.CodeForbidden, "external users cannot change their password")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		httputil.WriteValidationError(w, httputil.CodeValidationError,
			"passwords do not match", "confirm_password")
		return
	}

	if !s.auth.VerifyPassword(req.CurrentPassword, u.PasswordHash.String()) {
		httputil.WriteUnauthorized(w, "Invalid login/password")
		return
	}

	if req.NewPassword == req.CurrentPassword {
		httputil.WriteConflict(w, httputil.CodeConflict,
			"new password must be different", "new_password")
		return
	}

	if err := s.auth.UpdatePassword(r.Context(), u, req.NewPassword); err != nil {
		s.writeError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"success": true})
}
