package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pigfarm-backend/internal/cache"
	"pigfarm-backend/internal/models"
	"pigfarm-backend/internal/services"
)

type TemplateHandler struct {
	Service *services.TemplateService
}

func NewTemplateHandler(service *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{Service: service}
}

// ListTemplates returns the immunization program ordered by days old.
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// AddTemplate appends one rule to the program.
func (h *TemplateHandler) AddTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.TemplateInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	template, err := h.Service.Add(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Adding by vaccine name may have added a vaccine.
	cache.InvalidateLookups(r.Context())
	writeJSON(w, http.StatusCreated, template)
}

// DeleteTemplate removes one rule from the program.
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template deleted successfully"})
}

// ReplaceTemplates swaps the entire program for the posted rule set.
func (h *TemplateHandler) ReplaceTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Templates []models.TemplateInput `json:"templates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.ReplaceAll(r.Context(), req.Templates); err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidateLookups(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Templates replaced successfully",
		"count":   len(req.Templates),
	})
}

// GetSuggestions returns reference-library doses missing from the
// program.
func (h *TemplateHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.Service.Suggestions(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}
