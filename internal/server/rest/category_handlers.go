package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/server/models"
)

type categoryResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Kind      models.CategoryKind `json:"kind"`
	IsDefault bool                `json:"isDefault"`
	CreatedAt time.Time           `json:"createdAt"`
}

// ListCategories handles GET /categories?kind=transaction|vault.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	var kind models.CategoryKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k, err := models.ParseCategoryKind(raw)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		kind = k
	}

	cats, err := s.categories.List(r.Context(), principal(r).UserID, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Kind: c.Kind, IsDefault: c.IsDefault, CreatedAt: c.CreatedAt})
	}
	respondData(w, http.StatusOK, out)
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CreateCategory handles POST /categories.
func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	name, err := requireText("name", req.Name, maxNameLength)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := models.ParseCategoryKind(req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.categories.Create(r.Context(), principal(r).UserID, name, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, categoryResponse{ID: c.ID, Name: c.Name, Kind: c.Kind, IsDefault: c.IsDefault, CreatedAt: c.CreatedAt})
}
