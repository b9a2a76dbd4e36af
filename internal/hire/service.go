// Package hire turns an applied job into a hire record.
package hire

import (
	"context"
	"errors"
	"fmt"

	"github.com/garnizeh/bidtrack/internal/apps"
	"github.com/garnizeh/bidtrack/internal/notify"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

var (
	ErrAlreadyHired = errors.New("applied job already has a hire record")
	ErrNotFound     = errors.New("applied job not found")
)

type Service struct {
	hired    repository.HiredJobRepo
	applied  repository.AppliedJobRepo
	notifier apps.Notifier
}

func New(hr repository.HiredJobRepo, ar repository.AppliedJobRepo, n apps.Notifier) *Service {
	return &Service{hired: hr, applied: ar, notifier: n}
}

// MarkHired creates exactly one hire record per applied job. The hire
// insert and the stage flip happen in one transaction inside the
// repository, so the two rows describing the hire cannot diverge.
func (s *Service) MarkHired(ctx context.Context, h *models.HiredJob) (int64, error) {
	if h.AppliedJobID <= 0 {
		return 0, fmt.Errorf("applied job id required")
	}
	if h.BudgetType != models.BudgetHourly && h.BudgetType != models.BudgetFixed {
		return 0, fmt.Errorf("budget type must be %s or %s", models.BudgetHourly, models.BudgetFixed)
	}
	if h.BudgetAmount < 0 {
		return 0, fmt.Errorf("budget amount must not be negative")
	}

	a, err := s.applied.GetAppliedJob(ctx, h.AppliedJobID)
	if err != nil {
		return 0, fmt.Errorf("load applied job: %w", err)
	}
	if a == nil {
		return 0, ErrNotFound
	}

	existing, err := s.hired.GetHireByAppliedJob(ctx, h.AppliedJobID)
	if err != nil {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return 0, ErrAlreadyHired
	}

	if h.BidderID == 0 {
		h.BidderID = a.UserID
	}

	id, err := s.hired.CreateHire(ctx, h)
	if err != nil {
		return 0, fmt.Errorf("create hire: %w", err)
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Type:     "job.hired",
		Title:    "Job hired",
		Body:     fmt.Sprintf("%s (%s %.2f)", h.ClientName, h.BudgetType, h.BudgetAmount),
		Priority: models.PriorityUrgent,
		ActorID:  h.BidderID,
		Metadata: map[string]any{"applied_job_id": h.AppliedJobID, "hired_job_id": id, "budget_amount": h.BudgetAmount},
	})
	return id, nil
}

func (s *Service) ListByBidder(ctx context.Context, bidderID int64) ([]models.HiredJob, error) {
	return s.hired.ListHiresByBidder(ctx, bidderID)
}
