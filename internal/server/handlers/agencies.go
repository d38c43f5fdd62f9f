package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/govguide/govguide/internal/errors"
	"github.com/govguide/govguide/internal/guide"
)

// AgenciesHandler serves the agency catalog.
type AgenciesHandler struct {
	catalog *guide.Catalog
}

// NewAgenciesHandler wraps a catalog.
func NewAgenciesHandler(catalog *guide.Catalog) *AgenciesHandler {
	return &AgenciesHandler{catalog: catalog}
}

type agenciesResponse struct {
	Agencies []guide.Agency `json:"agencies"`
}

// List handles GET /api/agencies.
func (h *AgenciesHandler) List(w http.ResponseWriter, _ *http.Request) {
	agencies := h.catalog.List()
	if agencies == nil {
		agencies = []guide.Agency{}
	}
	writeJSON(w, http.StatusOK, agenciesResponse{Agencies: agencies})
}

// Get handles GET /api/agencies/{agency}, matching by id or name.
func (h *AgenciesHandler) Get(w http.ResponseWriter, r *http.Request) {
	agency, ok := h.catalog.Lookup(chi.URLParam(r, "agency"))
	if !ok {
		respondWithError(w, r, apperrors.NewNotFoundError("Agency not found"))
		return
	}
	writeJSON(w, http.StatusOK, agency)
}
