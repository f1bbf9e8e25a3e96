package search

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/partdesk/backend/internal/model/part"
	"github.com/partdesk/backend/internal/service/knowledge"
	"github.com/partdesk/backend/pkg/utils"
)

// Handler exposes direct catalog lookups alongside the conversational
// endpoints.
type Handler struct {
	catalog *knowledge.Store
}

// New creates the catalog search handler.
func New(catalog *knowledge.Store) *Handler {
	return &Handler{catalog: catalog}
}

// RegisterRoutes mounts the catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/search", h.handleSearch)
	r.Get("/part/{id}", h.handlePart)
	r.Post("/symptom-search", h.handleSymptomSearch)
	r.Get("/compatibility", h.handleCompatibility)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
		Type  string `json:"type"`
		Limit int    `json:"limit"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Query == "" {
		utils.RespondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	if payload.Type == "" {
		payload.Type = "all"
	}
	if payload.Limit <= 0 {
		payload.Limit = 5
	}

	ctx := r.Context()
	results := make(map[string]any)
	formatted := make(map[string]string)

	if payload.Type == "all" || payload.Type == "parts" {
		parts := h.catalog.SearchParts(ctx, payload.Query, payload.Limit)
		results["parts"] = parts
		formatted["parts"] = part.FormatParts(parts)
	}
	if payload.Type == "all" || payload.Type == "repairs" {
		repairs := h.catalog.SearchRepairs(ctx, payload.Query, "", payload.Limit)
		results["repairs"] = repairs
		formatted["repairs"] = part.FormatRepairs(repairs)
	}
	if payload.Type == "all" || payload.Type == "blogs" {
		blogs := h.catalog.SearchBlogs(ctx, payload.Query, payload.Limit)
		results["blogs"] = blogs
		formatted["blogs"] = part.FormatBlogs(blogs)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"query":     payload.Query,
		"formatted": formatted,
		"results":   results,
	})
}

func (h *Handler) handlePart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record := h.catalog.FetchPart(r.Context(), id)
	if record == nil {
		utils.RespondError(w, http.StatusNotFound, "part not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"part":           record,
		"relatedRepairs": h.catalog.RelatedRepairs(r.Context(), id),
	})
}

func (h *Handler) handleSymptomSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Symptom string `json:"symptom"`
		Product string `json:"product"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Symptom == "" {
		utils.RespondError(w, http.StatusBadRequest, "symptom parameter is required")
		return
	}

	ctx := r.Context()
	repairs := h.catalog.SearchRepairs(ctx, payload.Symptom, payload.Product, 5)

	// Collect the parts the matched repairs reference.
	seen := make(map[string]struct{})
	var parts []part.Record
	for _, repair := range repairs {
		for _, id := range repair.PartIDs() {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			if record := h.catalog.FetchPart(ctx, id); record != nil {
				parts = append(parts, *record)
			}
		}
	}

	blogs := h.catalog.SearchBlogs(ctx, payload.Symptom, 3)

	product := payload.Product
	if product == "" {
		product = "any"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"symptom": payload.Symptom,
		"product": product,
		"repairs": map[string]any{"count": len(repairs), "formatted": part.FormatRepairs(repairs), "items": repairs},
		"parts":   map[string]any{"count": len(parts), "formatted": part.FormatParts(parts), "items": parts},
		"blogs":   map[string]any{"count": len(blogs), "formatted": part.FormatBlogs(blogs), "items": blogs},
	})
}

// handleCompatibility returns deterministic guidance. True compatibility
// determination needs fitment data the catalog does not carry, so the
// response always points at the verification checker instead of guessing.
func (h *Handler) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	partID := r.URL.Query().Get("partId")
	modelNumber := r.URL.Query().Get("modelNumber")

	if partID == "" || modelNumber == "" {
		utils.RespondError(w, http.StatusBadRequest, "both partId and modelNumber parameters are required")
		return
	}

	record := h.catalog.FetchPart(r.Context(), partID)
	if record == nil {
		utils.RespondError(w, http.StatusNotFound, "part not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"partId":          partID,
		"modelNumber":     modelNumber,
		"verified":        false,
		"message":         "Compatibility between part " + partID + " (" + record.Name + ") and model " + modelNumber + " cannot be confirmed automatically. Please verify with the compatibility checker on the product page.",
		"verificationUrl": record.CompatibilityURL(),
	})
}
