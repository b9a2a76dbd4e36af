package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// PlatformsHandler serves the marketplace catalog. Reads are open to
// every signed-in user; writes are wired under the admin subrouter.
type PlatformsHandler struct {
	platforms repository.PlatformRepo
	profiles  repository.ProfileRepo
}

func NewPlatformsHandler(pr repository.PlatformRepo, prof repository.ProfileRepo) *PlatformsHandler {
	return &PlatformsHandler{platforms: pr, profiles: prof}
}

type platformRequest struct {
	Name       string  `json:"name"`
	ConnectUSD float64 `json:"connect_usd"`
	ConnectINR float64 `json:"connect_inr"`
}

func (h *PlatformsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.platforms.ListPlatforms(r.Context())
	if err != nil {
		http.Error(w, "failed to list platforms", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Platform{}
	}
	writeJSON(w, items, http.StatusOK)
}

func (h *PlatformsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	if req.ConnectUSD < 0 || req.ConnectINR < 0 {
		http.Error(w, "connect rates must not be negative", http.StatusBadRequest)
		return
	}

	id, err := h.platforms.CreatePlatform(r.Context(), &models.Platform{
		Name:       req.Name,
		ConnectUSD: req.ConnectUSD,
		ConnectINR: req.ConnectINR,
	})
	if err != nil {
		http.Error(w, "failed to create platform", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *PlatformsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	existing, err := h.platforms.GetPlatform(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load platform", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req platformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.ConnectUSD < 0 || req.ConnectINR < 0 {
		http.Error(w, "connect rates must not be negative", http.StatusBadRequest)
		return
	}
	existing.ConnectUSD = req.ConnectUSD
	existing.ConnectINR = req.ConnectINR

	if err := h.platforms.UpdatePlatform(r.Context(), existing); err != nil {
		http.Error(w, "failed to update platform", http.StatusInternalServerError)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

func (h *PlatformsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.platforms.DeletePlatform(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete platform", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type profileRequest struct {
	Name    string `json:"name"`
	OwnerID *int64 `json:"owner_id,omitempty"`
}

func (h *PlatformsHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	items, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		http.Error(w, "failed to list profiles", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Profile{}
	}
	writeJSON(w, items, http.StatusOK)
}

func (h *PlatformsHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}

	id, err := h.profiles.CreateProfile(r.Context(), &models.Profile{
		Name:    req.Name,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		http.Error(w, "failed to create profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *PlatformsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	existing, err := h.profiles.GetProfile(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	existing.OwnerID = req.OwnerID

	if err := h.profiles.UpdateProfile(r.Context(), existing); err != nil {
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

func (h *PlatformsHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.profiles.DeleteProfile(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete profile", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
