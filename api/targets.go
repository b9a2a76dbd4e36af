package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/garnizeh/bidtrack/internal/target"
	"github.com/garnizeh/bidtrack/pkg/models"
)

type TargetsHandler struct {
	target *target.Service
}

func NewTargetsHandler(s *target.Service) *TargetsHandler {
	return &TargetsHandler{target: s}
}

type setTargetRequest struct {
	UserID         int64   `json:"user_id,omitempty"`
	WeekStart      int64   `json:"week_start"`
	WeekEnd        int64   `json:"week_end"`
	TargetAmount   float64 `json:"target_amount"`
	AchievedAmount float64 `json:"achieved_amount"`
}

func (h *TargetsHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req setTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	userID := req.UserID
	if currentRole(r) != models.RoleAdmin || userID == 0 {
		userID = currentUserID(r)
	}

	t, err := h.target.SetTarget(r.Context(), &models.WeeklyTarget{
		UserID:         userID,
		WeekStart:      req.WeekStart,
		WeekEnd:        req.WeekEnd,
		TargetAmount:   req.TargetAmount,
		AchievedAmount: req.AchievedAmount,
	})
	if err != nil {
		if errors.Is(err, target.ErrInvalidWindow) {
			http.Error(w, "invalid week window", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, t, http.StatusOK)
}

// GetTarget returns the caller's target for the week containing "at"
// (unix-milli, defaults to now). Admins may ask for any user.
func (h *TargetsHandler) GetTarget(w http.ResponseWriter, r *http.Request) {
	userID := currentUserID(r)
	if s := r.URL.Query().Get("userId"); s != "" {
		if currentRole(r) != models.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, "invalid userId", http.StatusBadRequest)
			return
		}
		userID = id
	}

	at := time.Now().UTC().UnixMilli()
	if s := r.URL.Query().Get("at"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid at", http.StatusBadRequest)
			return
		}
		at = v
	}

	t, err := h.target.GetTarget(r.Context(), userID, at)
	if err != nil {
		http.Error(w, "failed to load target", http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "no target for week", http.StatusNotFound)
		return
	}

	writeJSON(w, t, http.StatusOK)
}
