package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/garnizeh/bidtrack/internal/hire"
	"github.com/garnizeh/bidtrack/pkg/models"
)

type HiresHandler struct {
	hire *hire.Service
}

func NewHiresHandler(s *hire.Service) *HiresHandler {
	return &HiresHandler{hire: s}
}

type markHiredRequest struct {
	AppliedJobID int64   `json:"applied_job_id"`
	BidderID     int64   `json:"bidder_id,omitempty"`
	ClientName   string  `json:"client_name,omitempty"`
	BudgetType   string  `json:"budget_type"`
	BudgetAmount float64 `json:"budget_amount"`
	HiredAt      *int64  `json:"hired_at,omitempty"`
}

func (h *HiresHandler) MarkHired(w http.ResponseWriter, r *http.Request) {
	var req markHiredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.AppliedJobID <= 0 {
		http.Error(w, "applied_job_id required", http.StatusBadRequest)
		return
	}

	hj := &models.HiredJob{
		AppliedJobID: req.AppliedJobID,
		BidderID:     req.BidderID,
		ClientName:   req.ClientName,
		BudgetType:   req.BudgetType,
		BudgetAmount: req.BudgetAmount,
	}
	if req.HiredAt != nil {
		hj.HiredAt = *req.HiredAt
	}
	if currentRole(r) != models.RoleAdmin {
		// bidders only record their own hires
		hj.BidderID = currentUserID(r)
	}

	id, err := h.hire.MarkHired(r.Context(), hj)
	if err != nil {
		switch {
		case errors.Is(err, hire.ErrNotFound):
			http.Error(w, "applied job not found", http.StatusNotFound)
		case errors.Is(err, hire.ErrAlreadyHired):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *HiresHandler) ListByBidder(w http.ResponseWriter, r *http.Request) {
	bidderID, err := pathID(r, "bidderId")
	if err != nil {
		http.Error(w, "invalid bidder id", http.StatusBadRequest)
		return
	}

	if currentRole(r) != models.RoleAdmin && bidderID != currentUserID(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	hires, err := h.hire.ListByBidder(r.Context(), bidderID)
	if err != nil {
		http.Error(w, "failed to list hires", http.StatusInternalServerError)
		return
	}
	if hires == nil {
		hires = []models.HiredJob{}
	}

	writeJSON(w, hires, http.StatusOK)
}
