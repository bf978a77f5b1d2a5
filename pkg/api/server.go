package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kubestro/core/pkg/auth"
	"github.com/kubestro/core/pkg/catalog"
	"github.com/kubestro/core/pkg/httputil"
	"github.com/kubestro/core/pkg/observability"
	"github.com/kubestro/core/pkg/session"
	"github.com/kubestro/core/pkg/setup"
	"github.com/kubestro/core/pkg/user"
)

// maxBodyBytes caps request bodies; every payload here is a small JSON
// document.
const maxBodyBytes = 1 << 20

// OIDCStarter begins the authorization-code flow. Satisfied by
// *oidc.Client.
type OIDCStarter interface {
	AuthorizeURL() (url, state, nonce string, err error)
}

// OIDCAuthenticator finishes the authorization-code flow. Satisfied by
// *oidc.Service.
type OIDCAuthenticator interface {
	LoginOrCreate(ctx context.Context, code, nonce string) (*user.User, error)
}

// Dependencies carries everything the HTTP surface needs. OIDCStart and
// OIDCAuth are nil when federated login is not configured.
type Dependencies struct {
	Users    user.Repository
	Auth     *auth.Service
	Sessions *session.Store
	Setup    *setup.Manager
	Catalog  *catalog.Service

	OIDCStart OIDCStarter
	OIDCAuth  OIDCAuthenticator

	Metrics *observability.Metrics
	Log     *logrus.Logger
}

// Server is the HTTP API.
type Server struct {
	router *mux.Router

	users    user.Repository
	auth     *auth.Service
	sessions *session.Store
	setup    *setup.Manager
	catalog  *catalog.Service

	oidcStart OIDCStarter
	oidcAuth  OIDCAuthenticator

	metrics *observability.Metrics
	log     *logrus.Logger
}

// NewServer wires the route table.
func NewServer(deps Dependencies) *Server {
	log := deps.Log
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		router:    mux.NewRouter(),
		users:     deps.Users,
		auth:      deps.Auth,
		sessions:  deps.Sessions,
		setup:     deps.Setup,
		catalog:   deps.Catalog,
		oidcStart: deps.OIDCStart,
		oidcAuth:  deps.OIDCAuth,
		metrics:   deps.Metrics,
		log:       log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	middlewares := []mux.MiddlewareFunc{
		httputil.RecoveryMiddleware(s.log),
		httputil.LoggingMiddleware(s.log),
		httputil.MaxBytesMiddleware(maxBodyBytes),
	}
	if s.metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(s.metrics))
	}
	s.router.Use(middlewares...)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "resource not found")
	})
	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteProblem(w, httputil.Problem{
			Status: http.StatusMethodNotAllowed,
			Detail: "method not allowed",
			Code:   httputil.CodeValidationError,
		})
	})

	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1.0").Subrouter()

	// Setup wizard, reachable only while not installed.
	api.HandleFunc("/setup", s.requireNotInstalled(s.handleSetupStatus)).Methods(http.MethodGet)
	api.HandleFunc("/setup", s.requireNotInstalled(s.handleSetupComplete)).Methods(http.MethodPost)

	// Local authentication.
	api.HandleFunc("/authentication", s.requireInstalled(s.requireGuest(s.handleLogin))).Methods(http.MethodPost)
	api.HandleFunc("/authentication", s.requireAuth(s.handleLogout)).Methods(http.MethodDelete)
	api.HandleFunc("/authentication", s.requireAuth(s.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/authentication/register", s.requireInstalled(s.requireGuest(s.handleRegister))).Methods(http.MethodPost)

	// Federated authentication.
	api.HandleFunc("/authentication/redirect", s.requireInstalled(s.requireGuest(s.handleOIDCRedirect))).Methods(http.MethodGet)
	api.HandleFunc("/authentication/callback", s.requireInstalled(s.requireGuest(s.handleOIDCCallback))).Methods(http.MethodGet)

	// Account settings.
	api.HandleFunc("/settings/profile", s.requireAuth(s.handleUpdateProfile)).Methods(http.MethodPut)
	api.HandleFunc("/settings/password", s.requireAuth(s.handleUpdatePassword)).Methods(http.MethodPut)

	// Game-manager repositories and catalog.
	gm := api.PathPrefix("/game-managers").Subrouter()
	gm.HandleFunc("/repositories", s.requireInstalled(s.requireAuth(s.handleListRepositories))).Methods(http.MethodGet)
	gm.HandleFunc("/repositories", s.requireInstalled(s.requireAuth(s.handleAddRepository))).Methods(http.MethodPost)
	gm.HandleFunc("/repositories/refresh", s.requireInstalled(s.requireAuth(s.handleRefreshRepositories))).Methods(http.MethodPost)
	gm.HandleFunc("/repositories/{id}", s.requireInstalled(s.requireAuth(s.handleDeleteRepository))).Methods(http.MethodDelete)
	gm.HandleFunc("/catalog", s.requireInstalled(s.requireAuth(s.handleCatalog))).Methods(http.MethodGet)

	// Subrouters do not inherit the fallback handlers.
	for _, r := range []*mux.Router{s.router, api, gm} {
		r.NotFoundHandler = notFound
		r.MethodNotAllowedHandler = methodNotAllowed
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleStatus handles GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{
		"status": s.setup.Status().String(),
	})
}
