package repository

import (
	"context"

	"github.com/garnizeh/bidtrack/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
	SetUserBlocked(ctx context.Context, id int64, blocked bool) error
}

type PlatformRepo interface {
	CreatePlatform(ctx context.Context, p *models.Platform) (int64, error)
	GetPlatform(ctx context.Context, id int64) (*models.Platform, error)
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	UpdatePlatform(ctx context.Context, p *models.Platform) error
	DeletePlatform(ctx context.Context, id int64) error
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) (int64, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	DeleteProfile(ctx context.Context, id int64) error
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJob(ctx context.Context, id int64) (*models.Job, error)
}

// AppliedJobQuery filters and paginates applied-job listings.
type AppliedJobQuery struct {
	UserID     *int64
	PlatformID *int64
	Stage      string
	Limit      int
	Offset     int
}

type AppliedJobRepo interface {
	CreateAppliedJob(ctx context.Context, a *models.AppliedJob) (int64, error)
	GetAppliedJob(ctx context.Context, id int64) (*models.AppliedJob, error)
	// FindApplication locates the row for a (user, job, profile) triple.
	// Returns nil when no application exists.
	FindApplication(ctx context.Context, userID int64, jobID, profileID *int64) (*models.AppliedJob, error)
	UpdateAppliedJob(ctx context.Context, a *models.AppliedJob) error
	ListAppliedJobs(ctx context.Context, q AppliedJobQuery) ([]models.AppliedJob, error)
	CountAppliedJobs(ctx context.Context, q AppliedJobQuery) (int64, error)
}

type HiredJobRepo interface {
	// CreateHire inserts the HiredJob and flips the source AppliedJob to
	// the hired stage in a single transaction.
	CreateHire(ctx context.Context, h *models.HiredJob) (int64, error)
	GetHireByAppliedJob(ctx context.Context, appliedJobID int64) (*models.HiredJob, error)
	ListHiresByBidder(ctx context.Context, bidderID int64) ([]models.HiredJob, error)
}

type IgnoredJobRepo interface {
	CreateIgnoredJob(ctx context.Context, ig *models.IgnoredJob) (int64, error)
	FindIgnoredJob(ctx context.Context, userID, jobID int64) (*models.IgnoredJob, error)
}

type WeeklyTargetRepo interface {
	CreateTarget(ctx context.Context, t *models.WeeklyTarget) (int64, error)
	UpdateTarget(ctx context.Context, t *models.WeeklyTarget) error
	GetTargetByWindow(ctx context.Context, userID, weekStart, weekEnd int64) (*models.WeeklyTarget, error)
	// GetTargetAt returns the target whose window contains the given instant.
	GetTargetAt(ctx context.Context, userID, at int64) (*models.WeeklyTarget, error)
	// ListTargetsContaining returns targets whose window fully contains
	// [start, end]. An empty userIDs slice means all users.
	ListTargetsContaining(ctx context.Context, userIDs []int64, start, end int64) ([]models.WeeklyTarget, error)
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountNotifications(ctx context.Context, userID int64, unreadOnly bool) (int64, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, id, userID int64) error
}

type PortfolioRepo interface {
	CreatePortfolio(ctx context.Context, p *models.Portfolio) (int64, error)
	GetPortfolio(ctx context.Context, id int64) (*models.Portfolio, error)
	ListPortfoliosByUser(ctx context.Context, userID int64) ([]models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, p *models.Portfolio) error
	DeletePortfolio(ctx context.Context, id, userID int64) error
}

type ChangeLogRepo interface {
	CreateChangeLog(ctx context.Context, l *models.ChangeLog) (int64, error)
	ListChangeLogs(ctx context.Context, entity string, entityID int64) ([]models.ChangeLog, error)
}

// StatsFilter is the shared WHERE clause of all aggregation queries.
// Start/End are unix-milli instants; the date policy matches a row when
// any of applied_at, replied_at, interviewed_at falls in [Start, End].
type StatsFilter struct {
	PlatformIDs []int64
	ProfileID   *int64
	UserIDs     []int64
	Start       *int64
	End         *int64
}

// GroupedRow is one output row of a grouped aggregate query. Key is the
// dimension entity ID; rows whose dimension column is NULL are skipped.
type GroupedRow struct {
	Key         int64
	Applied     int64
	Connects    int64
	Hired       int64
	Replied     int64
	Interviewed int64
	NotHired    int64
}

// ConnectsRow carries connects grouped by (dimension, platform) so the
// caller can price them with the platform's per-connect rate.
type ConnectsRow struct {
	Key        int64
	PlatformID int64
	Connects   int64
}

type StatsRepo interface {
	StatsTotals(ctx context.Context, f StatsFilter) (*models.StatsTotals, error)
	GroupedByPlatform(ctx context.Context, f StatsFilter) ([]GroupedRow, error)
	GroupedByUser(ctx context.Context, f StatsFilter) ([]GroupedRow, error)
	GroupedByProfile(ctx context.Context, f StatsFilter) ([]GroupedRow, error)
	ConnectsByUserPlatform(ctx context.Context, f StatsFilter) ([]ConnectsRow, error)
	ConnectsByProfilePlatform(ctx context.Context, f StatsFilter) ([]ConnectsRow, error)
}
