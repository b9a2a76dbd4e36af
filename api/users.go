package api

import (
	"encoding/json"
	"net/http"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// UsersHandler is admin-only account management.
type UsersHandler struct {
	users repository.UserRepo
}

func NewUsersHandler(ur repository.UserRepo) *UsersHandler {
	return &UsersHandler{users: ur}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.users.ListUsers(r.Context())
	if err != nil {
		http.Error(w, "failed to list users", http.StatusInternalServerError)
		return
	}
	for i := range items {
		items[i].PasswordHash = ""
	}
	if items == nil {
		items = []models.User{}
	}
	writeJSON(w, items, http.StatusOK)
}

type setBlockedRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UsersHandler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if id == currentUserID(r) {
		http.Error(w, "cannot block own account", http.StatusBadRequest)
		return
	}

	var req setBlockedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	u, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return
	}
	if u == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.users.SetUserBlocked(r.Context(), id, req.Blocked); err != nil {
		http.Error(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "blocked": req.Blocked}, http.StatusOK)
}
