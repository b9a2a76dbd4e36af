// Package target manages per-user weekly revenue targets.
package target

import (
	"context"
	"errors"
	"fmt"

	"github.com/garnizeh/bidtrack/internal/apps"
	"github.com/garnizeh/bidtrack/internal/notify"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

var ErrInvalidWindow = errors.New("week window is invalid")

type Service struct {
	targets  repository.WeeklyTargetRepo
	notifier apps.Notifier
}

func New(tr repository.WeeklyTargetRepo, n apps.Notifier) *Service {
	return &Service{targets: tr, notifier: n}
}

// SetTarget upserts the (user, week window) target. Crossing from below
// the target to at-or-above it fires a "target achieved" notification;
// any other update fires "target updated". Re-setting an already
// achieved amount does not re-fire.
func (s *Service) SetTarget(ctx context.Context, t *models.WeeklyTarget) (*models.WeeklyTarget, error) {
	if t.UserID <= 0 {
		return nil, fmt.Errorf("user id required")
	}
	if t.WeekStart <= 0 || t.WeekEnd <= t.WeekStart {
		return nil, ErrInvalidWindow
	}
	if t.TargetAmount < 0 || t.AchievedAmount < 0 {
		return nil, fmt.Errorf("amounts must not be negative")
	}

	existing, err := s.targets.GetTargetByWindow(ctx, t.UserID, t.WeekStart, t.WeekEnd)
	if err != nil {
		return nil, fmt.Errorf("load target: %w", err)
	}

	if existing == nil {
		id, err := s.targets.CreateTarget(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("create target: %w", err)
		}
		t.ID = id
		s.dispatch(ctx, t, "target.set", "Weekly target set", models.PriorityLow)
		return t, nil
	}

	achieved := existing.AchievedAmount < t.TargetAmount && t.AchievedAmount >= t.TargetAmount && t.TargetAmount > 0

	existing.TargetAmount = t.TargetAmount
	existing.AchievedAmount = t.AchievedAmount
	if err := s.targets.UpdateTarget(ctx, existing); err != nil {
		return nil, fmt.Errorf("update target: %w", err)
	}

	if achieved {
		s.dispatch(ctx, existing, "target.achieved", "Weekly target achieved", models.PriorityHigh)
	} else {
		s.dispatch(ctx, existing, "target.updated", "Weekly target updated", models.PriorityLow)
	}
	return existing, nil
}

// GetTarget returns the target for the window containing the instant.
func (s *Service) GetTarget(ctx context.Context, userID, at int64) (*models.WeeklyTarget, error) {
	return s.targets.GetTargetAt(ctx, userID, at)
}

func (s *Service) dispatch(ctx context.Context, t *models.WeeklyTarget, typ, title, priority string) {
	s.notifier.Dispatch(ctx, notify.Event{
		Type:     typ,
		Title:    title,
		Priority: priority,
		ActorID:  t.UserID,
		Metadata: map[string]any{
			"target_id": t.ID,
			"target":    t.TargetAmount,
			"achieved":  t.AchievedAmount,
		},
	})
}
