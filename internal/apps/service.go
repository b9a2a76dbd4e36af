// Package apps implements the applied-job lifecycle: applying,
// stage transitions, audited edits and ignoring postings.
package apps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garnizeh/bidtrack/internal/jobs"
	"github.com/garnizeh/bidtrack/internal/notify"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

var (
	ErrDuplicate    = errors.New("application already exists for this job and profile")
	ErrNotFound     = errors.New("applied job not found")
	ErrInvalidStage = errors.New("invalid stage")
)

// Notifier dispatches lifecycle events; failures never surface here.
type Notifier interface {
	Dispatch(ctx context.Context, ev notify.Event)
}

type Service struct {
	applied  repository.AppliedJobRepo
	ignored  repository.IgnoredJobRepo
	logs     repository.ChangeLogRepo
	notifier Notifier
	queue    notify.Enqueuer
}

func New(ar repository.AppliedJobRepo, ir repository.IgnoredJobRepo, lr repository.ChangeLogRepo, n Notifier, queue notify.Enqueuer) *Service {
	return &Service{applied: ar, ignored: ir, logs: lr, notifier: n, queue: queue}
}

// Apply records a new application. A second application for the same
// (user, job, profile) triple is rejected.
func (s *Service) Apply(ctx context.Context, a *models.AppliedJob) (int64, error) {
	if a.UserID <= 0 {
		return 0, fmt.Errorf("user id required")
	}
	if a.Connects < 0 {
		return 0, fmt.Errorf("connects must not be negative")
	}
	if a.Stage == "" {
		a.Stage = models.StageApplied
	}
	if !models.ValidStage(a.Stage) {
		return 0, ErrInvalidStage
	}

	existing, err := s.applied.FindApplication(ctx, a.UserID, a.JobID, a.ProfileID)
	if err != nil {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return 0, ErrDuplicate
	}

	id, err := s.applied.CreateAppliedJob(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("create applied job: %w", err)
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Type:     "job.applied",
		Title:    "New application",
		Priority: models.PriorityLow,
		ActorID:  a.UserID,
		Metadata: map[string]any{"applied_job_id": id, "connects": a.Connects},
	})
	return id, nil
}

// UpdateStage sets the stage and its companion timestamp. Any stage may
// be set directly; there is no enforced order.
func (s *Service) UpdateStage(ctx context.Context, id, actorID int64, stage string, at *int64, notes string) (*models.AppliedJob, error) {
	if !models.ValidStage(stage) {
		return nil, ErrInvalidStage
	}

	a, err := s.applied.GetAppliedJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load applied job: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}

	ts := time.Now().UTC().UnixMilli()
	if at != nil {
		ts = *at
	}

	a.Stage = stage
	switch stage {
	case models.StageReplied:
		a.RepliedAt = &ts
	case models.StageInterview:
		a.InterviewedAt = &ts
	case models.StageHired:
		a.HiredAt = &ts
	}
	if notes != "" {
		a.Notes = notes
	}

	if err := s.applied.UpdateAppliedJob(ctx, a); err != nil {
		return nil, fmt.Errorf("update applied job: %w", err)
	}

	s.notifier.Dispatch(ctx, notify.Event{
		Type:     "job." + stage,
		Title:    "Application " + stage,
		Priority: StagePriority(stage),
		ActorID:  actorID,
		Metadata: map[string]any{"applied_job_id": a.ID, "stage": stage},
	})
	return a, nil
}

// EditRequest carries the editable fields; nil pointers leave a field
// untouched, nil slices leave the list untouched.
type EditRequest struct {
	PlatformID   *int64
	ProfileID    *int64
	Connects     *int64
	Notes        *string
	Technologies []string
	Attachments  []string
}

// Edit applies field changes, records their old/new values in the audit
// log, and schedules removed attachments for deletion.
func (s *Service) Edit(ctx context.Context, id, actorID int64, req EditRequest) (*models.AppliedJob, error) {
	a, err := s.applied.GetAppliedJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load applied job: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}

	changes := map[string]models.FieldChange{}

	if req.PlatformID != nil && (a.PlatformID == nil || *a.PlatformID != *req.PlatformID) {
		changes["platform_id"] = models.FieldChange{Old: a.PlatformID, New: *req.PlatformID}
		a.PlatformID = req.PlatformID
	}
	if req.ProfileID != nil && (a.ProfileID == nil || *a.ProfileID != *req.ProfileID) {
		changes["profile_id"] = models.FieldChange{Old: a.ProfileID, New: *req.ProfileID}
		a.ProfileID = req.ProfileID
	}
	if req.Connects != nil && *req.Connects != a.Connects {
		if *req.Connects < 0 {
			return nil, fmt.Errorf("connects must not be negative")
		}
		changes["connects"] = models.FieldChange{Old: a.Connects, New: *req.Connects}
		a.Connects = *req.Connects
	}
	if req.Notes != nil && *req.Notes != a.Notes {
		changes["notes"] = models.FieldChange{Old: a.Notes, New: *req.Notes}
		a.Notes = *req.Notes
	}
	if req.Technologies != nil && !equalList(req.Technologies, a.Technologies) {
		changes["technologies"] = models.FieldChange{Old: a.Technologies, New: req.Technologies}
		a.Technologies = req.Technologies
	}

	var removed []string
	if req.Attachments != nil && !equalList(req.Attachments, a.Attachments) {
		removed = missingFrom(a.Attachments, req.Attachments)
		changes["attachments"] = models.FieldChange{Old: a.Attachments, New: req.Attachments}
		a.Attachments = req.Attachments
	}

	if len(changes) == 0 {
		return a, nil
	}

	if err := s.applied.UpdateAppliedJob(ctx, a); err != nil {
		return nil, fmt.Errorf("update applied job: %w", err)
	}

	b, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("marshal changes: %w", err)
	}
	log := &models.ChangeLog{Entity: "applied_job", EntityID: a.ID, UserID: actorID, Changes: b}
	if _, err := s.logs.CreateChangeLog(ctx, log); err != nil {
		return nil, fmt.Errorf("write change log: %w", err)
	}

	if len(removed) > 0 {
		// a failed enqueue leaves orphan files, never a failed edit
		if _, err := s.queue.Enqueue(ctx, jobs.TypeFilesCleanup, jobs.CleanupPayload{Files: removed}, 200, 3); err != nil {
			slog.Error("enqueue attachment cleanup", "applied_job_id", a.ID, "err", err)
		}
	}

	return a, nil
}

// Ignore records that a user passed on a posting.
func (s *Service) Ignore(ctx context.Context, ig *models.IgnoredJob) (int64, error) {
	existing, err := s.ignored.FindIgnoredJob(ctx, ig.UserID, ig.JobID)
	if err != nil {
		return 0, fmt.Errorf("ignored check: %w", err)
	}
	if existing != nil {
		return 0, ErrDuplicate
	}
	return s.ignored.CreateIgnoredJob(ctx, ig)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.AppliedJob, error) {
	a, err := s.applied.GetAppliedJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, q repository.AppliedJobQuery) ([]models.AppliedJob, int64, error) {
	items, err := s.applied.ListAppliedJobs(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.applied.CountAppliedJobs(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// StagePriority maps a stage transition to its notification tier.
func StagePriority(stage string) string {
	switch stage {
	case models.StageInterview:
		return models.PriorityHigh
	case models.StageHired:
		return models.PriorityUrgent
	case models.StageReplied, models.StageNotHired:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func equalList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// missingFrom returns the entries of old that are absent from new.
func missingFrom(old, new []string) []string {
	keep := make(map[string]bool, len(new))
	for _, v := range new {
		keep[v] = true
	}
	var out []string
	for _, v := range old {
		if !keep[v] {
			out = append(out, v)
		}
	}
	return out
}
