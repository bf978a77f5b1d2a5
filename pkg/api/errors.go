package api

import (
	"errors"
	"net/http"

	"github.com/kubestro/core/pkg/auth"
	"github.com/kubestro/core/pkg/catalog"
	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/oidc"
	"github.com/kubestro/core/pkg/setup"
	"github.com/kubestro/core/pkg/user"
)

// writeError maps domain errors onto problem-detail responses. Anything
// unmapped is logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var policyErr *auth.PolicyError

	switch {
	case errors.Is(err, user.ErrEmailEmpty), errors.Is(err, user.ErrEmailInvalid):
		httputil.WriteValidationError(w, httputil.CodeInvalidEmail, err.Error(), "email")

	case errors.Is(err, user.ErrUsernameEmpty), errors.Is(err, user.ErrUsernameLength):
		httputil.WriteValidationError(w, httputil.CodeInvalidUsername, err.Error(), "username")

	case errors.As(err, &policyErr):
		httputil.WriteValidationError(w, httputil.CodeInvalidPassword, policyErr.Error(), policyErr.Codes...)

	case errors.Is(err, auth.ErrPasswordEmpty):
		httputil.WriteValidationError(w, httputil.CodeInvalidPassword, err.Error(), "password")

	// Wrong password, unknown account and a password-less (federated)
	// account all answer identically.
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrPasswordAuthNotAvailable),
		errors.Is(err, oidc.ErrLoginFailed):
		httputil.WriteUnauthorized(w, "Invalid login/password")

	case errors.Is(err, user.ErrAlreadyExists):
		httputil.WriteConflict(w, httputil.CodeUserAlreadyExists, "a user with the same data already exists")

	case errors.Is(err, user.ErrNotFound):
		httputil.WriteNotFound(w, "user not found")

	case errors.Is(err, catalog.ErrNameTooShort):
		httputil.WriteValidationError(w, httputil.CodeValidationError, err.Error(), "name")

	case errors.Is(err, catalog.ErrURLInvalid):
		httputil.WriteValidationError(w, httputil.CodeValidationError, err.Error(), "url")

	case errors.Is(err, catalog.ErrAlreadyExists):
		httputil.WriteConflict(w, httputil.CodeConflict, "Repository already exists")

	case errors.Is(err, catalog.ErrNotFound):
		httputil.WriteNotFound(w, "repository not found")

	case errors.Is(err, setup.ErrAlreadyInstalled):
		httputil.WriteForbidden(w, httputil.CodeAlreadyInstalled, "instance is already installed")

	default:
		s.log.WithError(err).Error("request failed")
		httputil.WriteInternalError(w)
	}
}
