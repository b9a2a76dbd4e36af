// Package mock provides in-memory repository doubles for handler and
// service tests.
package mock

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

type Mocks struct {
	Users         *UserRepo
	Platforms     *PlatformRepo
	Profiles      *ProfileRepo
	Jobs          *JobRepo
	Applied       *AppliedJobRepo
	Hired         *HiredJobRepo
	Ignored       *IgnoredJobRepo
	Targets       *WeeklyTargetRepo
	Notifications *NotificationRepo
	Portfolios    *PortfolioRepo
	Logs          *ChangeLogRepo
	Queue         *Queue
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:         &UserRepo{},
		Platforms:     &PlatformRepo{},
		Profiles:      &ProfileRepo{},
		Jobs:          &JobRepo{},
		Applied:       &AppliedJobRepo{},
		Hired:         &HiredJobRepo{},
		Ignored:       &IgnoredJobRepo{},
		Targets:       &WeeklyTargetRepo{},
		Notifications: &NotificationRepo{},
		Portfolios:    &PortfolioRepo{},
		Logs:          &ChangeLogRepo{},
		Queue:         &Queue{},
	}
}

type UserRepo struct {
	Stored    []models.User
	CreateErr error
	nextID    int64
}

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	c := *u
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			u := m.Stored[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range m.Stored {
		if m.Stored[i].Email == email {
			u := m.Stored[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *UserRepo) ListAdmins(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range m.Stored {
		if u.Role == models.RoleAdmin && !u.Blocked {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *UserRepo) SetUserBlocked(ctx context.Context, id int64, blocked bool) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored[i].Blocked = blocked
			return nil
		}
	}
	return sql.ErrNoRows
}

type PlatformRepo struct {
	Stored []models.Platform
	nextID int64
}

func (m *PlatformRepo) CreatePlatform(ctx context.Context, p *models.Platform) (int64, error) {
	m.nextID++
	c := *p
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *PlatformRepo) GetPlatform(ctx context.Context, id int64) (*models.Platform, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			p := m.Stored[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *PlatformRepo) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	out := make([]models.Platform, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *PlatformRepo) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	for i := range m.Stored {
		if m.Stored[i].ID == p.ID {
			m.Stored[i] = *p
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *PlatformRepo) DeletePlatform(ctx context.Context, id int64) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type ProfileRepo struct {
	Stored []models.Profile
	nextID int64
}

func (m *ProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	m.nextID++
	c := *p
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *ProfileRepo) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			p := m.Stored[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *ProfileRepo) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	out := make([]models.Profile, len(m.Stored))
	copy(out, m.Stored)
	return out, nil
}

func (m *ProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	for i := range m.Stored {
		if m.Stored[i].ID == p.ID {
			m.Stored[i] = *p
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *ProfileRepo) DeleteProfile(ctx context.Context, id int64) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type JobRepo struct {
	Stored []models.Job
	nextID int64
}

func (m *JobRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	m.nextID++
	c := *j
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *JobRepo) GetJob(ctx context.Context, id int64) (*models.Job, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			j := m.Stored[i]
			return &j, nil
		}
	}
	return nil, nil
}

type AppliedJobRepo struct {
	Stored    []models.AppliedJob
	CreateErr error
	UpdateErr error
	nextID    int64
}

func (m *AppliedJobRepo) CreateAppliedJob(ctx context.Context, a *models.AppliedJob) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	c := *a
	c.ID = m.nextID
	if c.Stage == "" {
		c.Stage = models.StageApplied
	}
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *AppliedJobRepo) GetAppliedJob(ctx context.Context, id int64) (*models.AppliedJob, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			a := m.Stored[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (m *AppliedJobRepo) FindApplication(ctx context.Context, userID int64, jobID, profileID *int64) (*models.AppliedJob, error) {
	if jobID == nil {
		return nil, nil
	}
	for i := range m.Stored {
		a := m.Stored[i]
		if a.UserID != userID || a.JobID == nil || *a.JobID != *jobID {
			continue
		}
		if profileID == nil {
			if a.ProfileID == nil {
				return &a, nil
			}
			continue
		}
		if a.ProfileID != nil && *a.ProfileID == *profileID {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *AppliedJobRepo) UpdateAppliedJob(ctx context.Context, a *models.AppliedJob) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.Stored {
		if m.Stored[i].ID == a.ID {
			m.Stored[i] = *a
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *AppliedJobRepo) ListAppliedJobs(ctx context.Context, q repository.AppliedJobQuery) ([]models.AppliedJob, error) {
	var out []models.AppliedJob
	for _, a := range m.Stored {
		if m.matches(a, q) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *AppliedJobRepo) CountAppliedJobs(ctx context.Context, q repository.AppliedJobQuery) (int64, error) {
	var n int64
	for _, a := range m.Stored {
		if m.matches(a, q) {
			n++
		}
	}
	return n, nil
}

func (m *AppliedJobRepo) matches(a models.AppliedJob, q repository.AppliedJobQuery) bool {
	if q.UserID != nil && a.UserID != *q.UserID {
		return false
	}
	if q.PlatformID != nil && (a.PlatformID == nil || *a.PlatformID != *q.PlatformID) {
		return false
	}
	if q.Stage != "" && a.Stage != q.Stage {
		return false
	}
	return true
}

type HiredJobRepo struct {
	Stored    []models.HiredJob
	Applied   *AppliedJobRepo
	CreateErr error
	nextID    int64
}

func (m *HiredJobRepo) CreateHire(ctx context.Context, h *models.HiredJob) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	c := *h
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	if m.Applied != nil {
		for i := range m.Applied.Stored {
			if m.Applied.Stored[i].ID == h.AppliedJobID {
				m.Applied.Stored[i].Stage = models.StageHired
			}
		}
	}
	return c.ID, nil
}

func (m *HiredJobRepo) GetHireByAppliedJob(ctx context.Context, appliedJobID int64) (*models.HiredJob, error) {
	for i := range m.Stored {
		if m.Stored[i].AppliedJobID == appliedJobID {
			h := m.Stored[i]
			return &h, nil
		}
	}
	return nil, nil
}

func (m *HiredJobRepo) ListHiresByBidder(ctx context.Context, bidderID int64) ([]models.HiredJob, error) {
	var out []models.HiredJob
	for _, h := range m.Stored {
		if h.BidderID == bidderID {
			out = append(out, h)
		}
	}
	return out, nil
}

type IgnoredJobRepo struct {
	Stored []models.IgnoredJob
	nextID int64
}

func (m *IgnoredJobRepo) CreateIgnoredJob(ctx context.Context, ig *models.IgnoredJob) (int64, error) {
	m.nextID++
	c := *ig
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *IgnoredJobRepo) FindIgnoredJob(ctx context.Context, userID, jobID int64) (*models.IgnoredJob, error) {
	for i := range m.Stored {
		if m.Stored[i].UserID == userID && m.Stored[i].JobID == jobID {
			ig := m.Stored[i]
			return &ig, nil
		}
	}
	return nil, nil
}

type WeeklyTargetRepo struct {
	Stored []models.WeeklyTarget
	nextID int64
}

func (m *WeeklyTargetRepo) CreateTarget(ctx context.Context, t *models.WeeklyTarget) (int64, error) {
	m.nextID++
	c := *t
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *WeeklyTargetRepo) UpdateTarget(ctx context.Context, t *models.WeeklyTarget) error {
	for i := range m.Stored {
		if m.Stored[i].ID == t.ID {
			m.Stored[i] = *t
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *WeeklyTargetRepo) GetTargetByWindow(ctx context.Context, userID, weekStart, weekEnd int64) (*models.WeeklyTarget, error) {
	for i := range m.Stored {
		t := m.Stored[i]
		if t.UserID == userID && t.WeekStart == weekStart && t.WeekEnd == weekEnd {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *WeeklyTargetRepo) GetTargetAt(ctx context.Context, userID, at int64) (*models.WeeklyTarget, error) {
	for i := range m.Stored {
		t := m.Stored[i]
		if t.UserID == userID && t.WeekStart <= at && at <= t.WeekEnd {
			return &t, nil
		}
	}
	return nil, nil
}

func (m *WeeklyTargetRepo) ListTargetsContaining(ctx context.Context, userIDs []int64, start, end int64) ([]models.WeeklyTarget, error) {
	var out []models.WeeklyTarget
	for _, t := range m.Stored {
		if t.WeekStart > start || t.WeekEnd < end {
			continue
		}
		if len(userIDs) == 0 {
			out = append(out, t)
			continue
		}
		for _, id := range userIDs {
			if t.UserID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out, nil
}

type NotificationRepo struct {
	Stored    []models.Notification
	CreateErr error
	nextID    int64
}

func (m *NotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	c := *n
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *NotificationRepo) ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.Stored {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *NotificationRepo) CountNotifications(ctx context.Context, userID int64, unreadOnly bool) (int64, error) {
	var n int64
	for _, v := range m.Stored {
		if v.UserID == userID && (!unreadOnly || !v.Read) {
			n++
		}
	}
	return n, nil
}

func (m *NotificationRepo) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id && m.Stored[i].UserID == userID {
			m.Stored[i].Read = true
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *NotificationRepo) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	for i := range m.Stored {
		if m.Stored[i].UserID == userID {
			m.Stored[i].Read = true
		}
	}
	return nil
}

func (m *NotificationRepo) DeleteNotification(ctx context.Context, id, userID int64) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id && m.Stored[i].UserID == userID {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type PortfolioRepo struct {
	Stored []models.Portfolio
	nextID int64
}

func (m *PortfolioRepo) CreatePortfolio(ctx context.Context, p *models.Portfolio) (int64, error) {
	m.nextID++
	c := *p
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *PortfolioRepo) GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error) {
	for i := range m.Stored {
		if m.Stored[i].ID == id {
			p := m.Stored[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *PortfolioRepo) ListPortfoliosByUser(ctx context.Context, userID int64) ([]models.Portfolio, error) {
	var out []models.Portfolio
	for _, p := range m.Stored {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *PortfolioRepo) UpdatePortfolio(ctx context.Context, p *models.Portfolio) error {
	for i := range m.Stored {
		if m.Stored[i].ID == p.ID {
			m.Stored[i] = *p
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *PortfolioRepo) DeletePortfolio(ctx context.Context, id, userID int64) error {
	for i := range m.Stored {
		if m.Stored[i].ID == id && m.Stored[i].UserID == userID {
			m.Stored = append(m.Stored[:i], m.Stored[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type ChangeLogRepo struct {
	Stored []models.ChangeLog
	nextID int64
}

func (m *ChangeLogRepo) CreateChangeLog(ctx context.Context, l *models.ChangeLog) (int64, error) {
	m.nextID++
	c := *l
	c.ID = m.nextID
	m.Stored = append(m.Stored, c)
	return c.ID, nil
}

func (m *ChangeLogRepo) ListChangeLogs(ctx context.Context, entity string, entityID int64) ([]models.ChangeLog, error) {
	var out []models.ChangeLog
	for _, l := range m.Stored {
		if l.Entity == entity && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

// EnqueuedJob records one call to Queue.Enqueue.
type EnqueuedJob struct {
	Type        string
	Payload     json.RawMessage
	Priority    int
	MaxAttempts int
}

// Queue captures enqueued background jobs instead of running them.
type Queue struct {
	mu     sync.Mutex
	Jobs   []EnqueuedJob
	Err    error
	nextID int64
}

func (q *Queue) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	if q.Err != nil {
		return 0, q.Err
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.Jobs = append(q.Jobs, EnqueuedJob{Type: typ, Payload: b, Priority: priority, MaxAttempts: maxAttempts})
	return q.nextID, nil
}
