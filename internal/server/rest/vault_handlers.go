package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
	"github.com/dmitrijs2005/lifedesk/internal/server/models"
	"github.com/dmitrijs2005/lifedesk/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// vaultEntryResponse never carries the secret; Password is always the mask.
type vaultEntryResponse struct {
	ID         string    `json:"id"`
	Website    string    `json:"website"`
	Username   string    `json:"username"`
	Password   string    `json:"password"`
	CategoryID string    `json:"categoryId"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toVaultEntryResponse(e *models.VaultEntry) vaultEntryResponse {
	return vaultEntryResponse{
		ID:         e.ID,
		Website:    e.Website,
		Username:   e.Username,
		Password:   common.MaskedSecret,
		CategoryID: e.CategoryID,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

type vaultEntryRequest struct {
	Website    string  `json:"website"`
	Username   string  `json:"username"`
	Password   *string `json:"password"`
	CategoryID string  `json:"categoryId"`
	Notes      string  `json:"notes"`
}

type vaultFields struct {
	website, username, categoryID, notes string
}

func (req *vaultEntryRequest) validate() (vaultFields, error) {
	var (
		f   vaultFields
		err error
	)
	if f.website, err = requireText("website", req.Website, maxFieldLength); err != nil {
		return f, err
	}
	if f.username, err = requireText("username", req.Username, maxFieldLength); err != nil {
		return f, err
	}
	if f.categoryID, err = requireID("categoryId", req.CategoryID); err != nil {
		return f, err
	}
	if f.notes, err = optionalText("notes", req.Notes, maxNotesLength); err != nil {
		return f, err
	}
	if req.Password != nil && len(*req.Password) > maxFieldLength {
		return f, invalid("password must be at most %d bytes", maxFieldLength)
	}
	return f, nil
}

// entryID reads the {id} path parameter. Malformed ids cannot exist, so
// they are reported as not found.
func entryID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := requireID("id", id); err != nil {
		return "", common.ErrorNotFound
	}
	return id, nil
}

// CreateVaultEntry handles POST /vault.
func (s *Server) CreateVaultEntry(w http.ResponseWriter, r *http.Request) {
	var req vaultEntryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Password == nil || *req.Password == "" {
		s.writeError(w, r, invalid("password is required"))
		return
	}

	e, err := s.vault.Create(r.Context(), principal(r).UserID, services.VaultEntryInput{
		Website:    f.website,
		Username:   f.username,
		Password:   *req.Password,
		CategoryID: f.categoryID,
		Notes:      f.notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toVaultEntryResponse(e))
}

// ListVault handles GET /vault.
func (s *Server) ListVault(w http.ResponseWriter, r *http.Request) {
	entries, err := s.vault.List(r.Context(), principal(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]vaultEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toVaultEntryResponse(&entries[i]))
	}
	respondData(w, http.StatusOK, out)
}

// GetVaultEntry handles GET /vault/{id}.
func (s *Server) GetVaultEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.vault.Get(r.Context(), principal(r).UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVaultEntryResponse(e))
}

// UpdateVaultEntry handles PUT /vault/{id}. An omitted or empty password
// keeps the stored one.
func (s *Server) UpdateVaultEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req vaultEntryRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := req.validate()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	upd := services.VaultEntryUpdate{
		Website:    f.website,
		Username:   f.username,
		CategoryID: f.categoryID,
		Notes:      f.notes,
	}
	if req.Password != nil && *req.Password != "" {
		upd.Password = req.Password
	}

	e, err := s.vault.Update(r.Context(), principal(r).UserID, id, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toVaultEntryResponse(e))
}

// DeleteVaultEntry handles DELETE /vault/{id}.
func (s *Server) DeleteVaultEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.vault.Delete(r.Context(), principal(r).UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "entry deleted")
}

type revealResponse struct {
	Password string `json:"password"`
}

// RevealVaultEntry handles POST /vault/{id}/reveal.
func (s *Server) RevealVaultEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req passwordRequest
	if err := decodeJSON(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	password, err := requirePassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plaintext, err := s.vault.Reveal(r.Context(), principal(r).UserID, id, password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondData(w, http.StatusOK, revealResponse{Password: plaintext})
}

type exportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Entries   int       `json:"entries"`
}

// ExportVault handles POST /vault/export.
func (s *Server) ExportVault(w http.ResponseWriter, r *http.Request) {
	res, err := s.vault.Export(r.Context(), principal(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, exportResponse{Key: res.Key, URL: res.URL, ExpiresAt: res.ExpiresAt, Entries: res.Entries})
}
