package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

type PortfoliosHandler struct {
	repo repository.PortfolioRepo
}

func NewPortfoliosHandler(pr repository.PortfolioRepo) *PortfoliosHandler {
	return &PortfoliosHandler{repo: pr}
}

type portfolioRequest struct {
	Title        string   `json:"title"`
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

func (h *PortfoliosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreatePortfolio(r.Context(), &models.Portfolio{
		UserID:       currentUserID(r),
		Title:        req.Title,
		URL:          req.URL,
		Description:  req.Description,
		Technologies: req.Technologies,
	})
	if err != nil {
		http.Error(w, "failed to create portfolio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *PortfoliosHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if s := r.URL.Query().Get("userId"); s != "" && currentRole(r) == models.RoleAdmin {
		ids, err := parseIDList(s)
		if err != nil || len(ids) != 1 {
			http.Error(w, "invalid userId", http.StatusBadRequest)
			return
		}
		userID = ids[0]
	}

	items, err := h.repo.ListPortfoliosByUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "failed to list portfolios", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Portfolio{}
	}

	writeJSON(w, items, http.StatusOK)
}

func (h *PortfoliosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	existing, err := h.repo.GetPortfolio(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load portfolio", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if existing.UserID != currentUserID(r) && currentRole(r) != models.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Title != "" {
		existing.Title = req.Title
	}
	existing.URL = req.URL
	existing.Description = req.Description
	existing.Technologies = req.Technologies

	if err := h.repo.UpdatePortfolio(r.Context(), existing); err != nil {
		http.Error(w, "failed to update portfolio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

func (h *PortfoliosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.DeletePortfolio(r.Context(), id, currentUserID(r)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete portfolio", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
