package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kubestro/core/pkg/catalog"
	"github.com/kubestro/core/pkg/httputil"
)

// handleListRepositories handles GET /api/v1.0/game-managers/repositories
func (s *Server) handleListRepositories(w http.ResponseWriter, r *http.Request) {
	search := httputil.ParseQueryString(r, "search", "")

	repos, err := s.catalog.List(r.Context(), search)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if repos == nil {
		repos = []*catalog.Repository{}
	}
	httputil.WriteSuccess(w, map[string]interface{}{"repositories": repos})
}

// handleAddRepository handles POST /api/v1.0/game-managers/repositories
func (s *Server) handleAddRepository(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	repo, err := s.catalog.Create(r.Context(), req.Name, req.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteCreated(w, map[string]interface{}{"repository": repo})
}

// handleDeleteRepository handles DELETE /api/v1.0/game-managers/repositories/{id}
func (s *Server) handleDeleteRepository(w http.ResponseWriter, r *http.Request) {
	raw, err := httputil.ParsePathString(r, "id")
	if err != nil {
		httputil.WriteValidationError(w, httputil.CodeValidationError, "repository id is required", "id")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteValidationError(w, httputil.CodeValidationError, "repository id is not a UUID", "id")
		return
	}

	if err := s.catalog.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleRefreshRepositories handles POST /api/v1.0/game-managers/repositories/refresh
func (s *Server) handleRefreshRepositories(w http.ResponseWriter, r *http.Request) {
	force := httputil.ParseQueryString(r, "force", "") == "true"

	if err := s.catalog.RefreshCache(r.Context(), force); err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// handleCatalog handles GET /api/v1.0/game-managers/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"catalog": entries})
}
