package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

type NotificationsHandler struct {
	repo repository.NotificationRepo
}

func NewNotificationsHandler(nr repository.NotificationRepo) *NotificationsHandler {
	return &NotificationsHandler{repo: nr}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, offset := parseLimitOffset(r)

	items, err := h.repo.ListNotifications(r.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	total, err := h.repo.CountNotifications(r.Context(), userID, unreadOnly)
	if err != nil {
		http.Error(w, "failed to count notifications", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	writeJSON(w, map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	}, http.StatusOK)
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.MarkNotificationRead(r.Context(), id, currentUserID(r)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to mark notification read", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"status": "read"}, http.StatusOK)
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.MarkAllNotificationsRead(r.Context(), currentUserID(r)); err != nil {
		http.Error(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"status": "read"}, http.StatusOK)
}

func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.DeleteNotification(r.Context(), id, currentUserID(r)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
