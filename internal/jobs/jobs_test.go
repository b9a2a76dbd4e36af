package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	dbfs "github.com/garnizeh/bidtrack/db"
	dbpkg "github.com/garnizeh/bidtrack/internal/db"
	"github.com/garnizeh/bidtrack/internal/jobs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var dbSeq atomic.Int64

func setupQueue(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:jobstest%d?mode=memory&cache=shared", dbSeq.Add(1))
	d, err := dbpkg.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return jobs.NewRepository(d)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := setupQueue(t)

	handled := make(chan json.RawMessage, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *jobs.Job) error {
			handled <- j.Payload
			return nil
		},
	}

	pool := jobs.NewWorkerPool(repo, handlers, nil, 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case payload := <-handled:
		var m map[string]string
		if err := json.Unmarshal(payload, &m); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if m["foo"] != "bar" {
			t.Fatalf("unexpected payload %v", m)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestPriorityOrder(t *testing.T) {
	ctx := context.Background()
	repo := setupQueue(t)

	pool := jobs.NewWorkerPool(repo, nil, nil, 1)

	if _, err := pool.Enqueue(ctx, "low", nil, 200, 1); err != nil {
		t.Fatalf("enqueue low: %v", err)
	}
	if _, err := pool.Enqueue(ctx, "high", nil, 10, 1); err != nil {
		t.Fatalf("enqueue high: %v", err)
	}

	j, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if j == nil || j.Type != "high" {
		t.Fatalf("expected the lower priority number first, got %+v", j)
	}
}

func TestFetchNextClaims(t *testing.T) {
	ctx := context.Background()
	repo := setupQueue(t)

	pool := jobs.NewWorkerPool(repo, nil, nil, 1)
	if _, err := pool.Enqueue(ctx, "once", nil, 10, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	j, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if j == nil || j.Type != "once" {
		t.Fatalf("expected the queued job, got %+v", j)
	}
	if j.Status != "running" {
		t.Fatalf("fetched job must be claimed, got status %q", j.Status)
	}

	// the claimed job is invisible to a second fetcher
	j2, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if j2 != nil {
		t.Fatalf("claimed job fetched twice: %+v", j2)
	}

	// a retry makes it fetchable again
	j.Status = "retry"
	j.NextTryAt = nil
	if err := repo.UpdateJob(ctx, j); err != nil {
		t.Fatalf("update job: %v", err)
	}
	j3, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	if j3 == nil || j3.ID != j.ID {
		t.Fatalf("retry job not fetchable: %+v", j3)
	}
}

func TestFailedJobMovesToDeadLetter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := setupQueue(t)

	attempts := make(chan struct{}, 4)
	handlers := map[string]jobs.Handler{
		"boom": func(ctx context.Context, j *jobs.Job) error {
			attempts <- struct{}{}
			return errors.New("always fails")
		},
	}

	pool := jobs.NewWorkerPool(repo, handlers, nil, 1)
	pool.Start(ctx)
	defer pool.Stop()

	// single attempt, no retry window to wait for
	if _, err := pool.Enqueue(ctx, "boom", nil, 10, 1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case <-attempts:
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		j, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if j == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still queued after failure: %+v", j)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestUnknownTypeGoesToDeadLetter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := setupQueue(t)

	pool := jobs.NewWorkerPool(repo, map[string]jobs.Handler{}, nil, 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "nobody.handles.this", nil, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		j, err := repo.FetchNext(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if j == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("unhandled job still queued: %+v", j)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestBackoffDuration(t *testing.T) {
	if d := jobs.BackoffDuration(0); d != time.Second {
		t.Fatalf("expected 1s for attempt 0, got %v", d)
	}
	if d := jobs.BackoffDuration(1); d != 2*time.Second {
		t.Fatalf("expected 2s for attempt 1, got %v", d)
	}
	if d := jobs.BackoffDuration(3); d != 8*time.Second {
		t.Fatalf("expected 8s for attempt 3, got %v", d)
	}
	if d := jobs.BackoffDuration(30); d != 5*time.Minute {
		t.Fatalf("expected 5m cap, got %v", d)
	}
}
