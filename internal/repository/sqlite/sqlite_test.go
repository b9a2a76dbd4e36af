package sqlite_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	dbfs "github.com/garnizeh/bidtrack/db"
	dbpkg "github.com/garnizeh/bidtrack/internal/db"
	"github.com/garnizeh/bidtrack/internal/repository/sqlite"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

var dbSeq atomic.Int64

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", dbSeq.Add(1))
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlite.New(d)
}

func ptr[T any](v T) *T { return &v }

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nil user should error
	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error for nil user")
	}

	// non-existing id returns nil, nil
	got, err := repo.GetUserByID(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing user, got %+v", got)
	}

	id, err := repo.CreateUser(ctx, &models.User{
		Name: "Alice", Email: "alice@example.com", Role: models.RoleUser, PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != id || byEmail.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", byEmail)
	}

	// duplicate email violates the unique constraint
	if _, err := repo.CreateUser(ctx, &models.User{
		Name: "Other", Email: "alice@example.com", Role: models.RoleUser, PasswordHash: "h",
	}); err == nil {
		t.Fatalf("expected unique constraint error")
	}

	if err := repo.SetUserBlocked(ctx, id, true); err != nil {
		t.Fatalf("block: %v", err)
	}
	blocked, _ := repo.GetUserByID(ctx, id)
	if !blocked.Blocked {
		t.Fatalf("expected user blocked")
	}
}

func TestListAdmins(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, &models.User{Name: "U", Email: "u@example.com", Role: models.RoleUser, PasswordHash: "h"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	adminID, err := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleAdmin, PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	blockedID, err := repo.CreateUser(ctx, &models.User{Name: "B", Email: "b@example.com", Role: models.RoleAdmin, PasswordHash: "h"})
	if err != nil {
		t.Fatalf("create blocked admin: %v", err)
	}
	if err := repo.SetUserBlocked(ctx, blockedID, true); err != nil {
		t.Fatalf("block: %v", err)
	}

	admins, err := repo.ListAdmins(ctx)
	if err != nil {
		t.Fatalf("list admins: %v", err)
	}
	if len(admins) != 1 || admins[0].ID != adminID {
		t.Fatalf("expected only the active admin, got %+v", admins)
	}
}

func TestAppliedJobRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID, _ := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser, PasswordHash: "h"})

	id, err := repo.CreateAppliedJob(ctx, &models.AppliedJob{
		UserID:       userID,
		Connects:     12,
		Notes:        "good fit",
		Technologies: []string{"go", "sqlite"},
		Attachments:  []string{"/uploads/cv.pdf"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	a, err := repo.GetAppliedJob(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.Stage != models.StageApplied {
		t.Fatalf("expected default stage, got %q", a.Stage)
	}
	if a.AppliedAt == 0 {
		t.Fatalf("expected applied_at to default to now")
	}
	if len(a.Technologies) != 2 || a.Technologies[1] != "sqlite" {
		t.Fatalf("technologies lost in round trip: %v", a.Technologies)
	}
	if len(a.Attachments) != 1 {
		t.Fatalf("attachments lost in round trip: %v", a.Attachments)
	}

	a.Stage = models.StageReplied
	a.RepliedAt = ptr(int64(5000))
	if err := repo.UpdateAppliedJob(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.GetAppliedJob(ctx, id)
	if got.Stage != models.StageReplied || got.RepliedAt == nil || *got.RepliedAt != 5000 {
		t.Fatalf("update lost: %+v", got)
	}
}

func TestFindApplication(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID, _ := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser, PasswordHash: "h"})

	jobID, err := repo.CreateJob(ctx, &models.Job{Title: "Build API"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	profID, err := repo.CreateProfile(ctx, &models.Profile{Name: "Agency"})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if _, err := repo.CreateAppliedJob(ctx, &models.AppliedJob{UserID: userID, JobID: &jobID, ProfileID: &profID}); err != nil {
		t.Fatalf("create applied: %v", err)
	}

	found, err := repo.FindApplication(ctx, userID, &jobID, &profID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil {
		t.Fatalf("expected match for same triple")
	}

	other := int64(999)
	miss, err := repo.FindApplication(ctx, userID, &jobID, &other)
	if err != nil {
		t.Fatalf("find other profile: %v", err)
	}
	if miss != nil {
		t.Fatalf("different profile must not match")
	}

	// rows without a job reference never collide
	none, err := repo.FindApplication(ctx, userID, nil, nil)
	if err != nil {
		t.Fatalf("find nil job: %v", err)
	}
	if none != nil {
		t.Fatalf("nil job id must never match")
	}
}

func TestCreateHireFlipsStage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID, _ := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser, PasswordHash: "h"})
	appliedID, _ := repo.CreateAppliedJob(ctx, &models.AppliedJob{UserID: userID, Connects: 3})

	hireID, err := repo.CreateHire(ctx, &models.HiredJob{
		AppliedJobID: appliedID,
		BidderID:     userID,
		ClientName:   "Acme",
		BudgetType:   models.BudgetHourly,
		BudgetAmount: 40,
	})
	if err != nil {
		t.Fatalf("create hire: %v", err)
	}

	h, err := repo.GetHireByAppliedJob(ctx, appliedID)
	if err != nil {
		t.Fatalf("get hire: %v", err)
	}
	if h == nil || h.ID != hireID {
		t.Fatalf("unexpected hire: %+v", h)
	}
	if h.HiredAt == 0 {
		t.Fatalf("expected hired_at to default to now")
	}

	a, _ := repo.GetAppliedJob(ctx, appliedID)
	if a.Stage != models.StageHired {
		t.Fatalf("expected stage flipped to hired, got %q", a.Stage)
	}
	if a.HiredAt == nil {
		t.Fatalf("expected hired_at set on the applied row")
	}
}

func TestListAppliedJobsPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	userID, _ := repo.CreateUser(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser, PasswordHash: "h"})
	for i := 0; i < 5; i++ {
		if _, err := repo.CreateAppliedJob(ctx, &models.AppliedJob{
			UserID: userID, Connects: int64(i), AppliedAt: int64(1000 + i),
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	q := repository.AppliedJobQuery{UserID: &userID, Limit: 2, Offset: 0}
	page, err := repo.ListAppliedJobs(ctx, q)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}
	// newest first
	if page[0].AppliedAt < page[1].AppliedAt {
		t.Fatalf("expected descending applied_at order")
	}

	total, err := repo.CountAppliedJobs(ctx, q)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
}

func TestNotificationScoping(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreateNotification(ctx, &models.Notification{
		UserID: 1, Type: "job.applied", Title: "New application", Priority: models.PriorityLow,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// other user cannot touch the row
	if err := repo.MarkNotificationRead(ctx, id, 2); err == nil {
		t.Fatalf("expected error marking other user's notification")
	}
	if err := repo.DeleteNotification(ctx, id, 2); err == nil {
		t.Fatalf("expected error deleting other user's notification")
	}

	if err := repo.MarkNotificationRead(ctx, id, 1); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, err := repo.CountNotifications(ctx, 1, true)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread, got %d", unread)
	}

	if err := repo.DeleteNotification(ctx, id, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestWeeklyTargetWindows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTarget(ctx, &models.WeeklyTarget{
		UserID: 1, WeekStart: 1000, WeekEnd: 2000, TargetAmount: 500,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetTargetAt(ctx, 1, 1500)
	if err != nil {
		t.Fatalf("get at: %v", err)
	}
	if got == nil || got.TargetAmount != 500 {
		t.Fatalf("unexpected target: %+v", got)
	}

	miss, err := repo.GetTargetAt(ctx, 1, 5000)
	if err != nil {
		t.Fatalf("get outside: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected nil outside window")
	}

	containing, err := repo.ListTargetsContaining(ctx, nil, 1200, 1800)
	if err != nil {
		t.Fatalf("list containing: %v", err)
	}
	if len(containing) != 1 {
		t.Fatalf("expected 1 containing target, got %d", len(containing))
	}

	notContaining, err := repo.ListTargetsContaining(ctx, nil, 1200, 2500)
	if err != nil {
		t.Fatalf("list partial: %v", err)
	}
	if len(notContaining) != 0 {
		t.Fatalf("partially overlapping window must not count")
	}
}

func TestPortfolioOwnership(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.CreatePortfolio(ctx, &models.Portfolio{
		UserID: 1, Title: "Dashboard", Technologies: []string{"go"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.DeletePortfolio(ctx, id, 2); err == nil {
		t.Fatalf("expected error deleting other user's portfolio")
	}
	if err := repo.DeletePortfolio(ctx, id, 1); err != nil {
		t.Fatalf("delete own: %v", err)
	}
}
