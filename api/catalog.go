package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// CatalogHandler manages manually entered marketplace postings that
// applications and ignores may reference.
type CatalogHandler struct {
	jobs repository.JobRepo
}

func NewCatalogHandler(jr repository.JobRepo) *CatalogHandler {
	return &CatalogHandler{jobs: jr}
}

type catalogJobRequest struct {
	PlatformID  *int64 `json:"platform_id,omitempty"`
	ExternalID  string `json:"external_id,omitempty"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	PostedAt    *int64 `json:"posted_at,omitempty"`
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalogJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	id, err := h.jobs.CreateJob(r.Context(), &models.Job{
		PlatformID:  req.PlatformID,
		ExternalID:  req.ExternalID,
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
		PostedAt:    req.PostedAt,
	})
	if err != nil {
		http.Error(w, "failed to create job", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	j, err := h.jobs.GetJob(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if j == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, j, http.StatusOK)
}
