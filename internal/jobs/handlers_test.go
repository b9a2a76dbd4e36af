package jobs_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garnizeh/bidtrack/internal/files"
	"github.com/garnizeh/bidtrack/internal/jobs"
	"github.com/garnizeh/bidtrack/pkg/push"
)

func TestPushHandlerDeliversToAllChannels(t *testing.T) {
	var channels []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev struct {
			Channel string `json:"channel"`
		}
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode: %v", err)
		}
		channels = append(channels, ev.Channel)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := push.NewClient(push.Config{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	h := jobs.NewPushHandler(client, nil)

	payload, _ := json.Marshal(jobs.PushPayload{
		Channels: []string{"user-1", "user-2", "admins"},
		Event:    "job.hired",
	})
	if err := h(context.Background(), &jobs.Job{ID: 1, Type: jobs.TypeNotifyPush, Payload: payload}); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(channels) != 3 {
		t.Fatalf("expected 3 deliveries, got %v", channels)
	}
}

func TestPushHandlerSwallowsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := push.NewClient(push.Config{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	h := jobs.NewPushHandler(client, nil)

	payload, _ := json.Marshal(jobs.PushPayload{Channels: []string{"user-1"}, Event: "job.applied"})
	// failures never bubble up, the job must not retry
	if err := h(context.Background(), &jobs.Job{ID: 1, Payload: payload}); err != nil {
		t.Fatalf("push handler must swallow delivery failures, got %v", err)
	}
}

func TestPushHandlerBadPayload(t *testing.T) {
	client, err := push.NewClient(push.Config{}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	h := jobs.NewPushHandler(client, nil)

	if err := h(context.Background(), &jobs.Job{ID: 1, Payload: []byte("{")}); err != nil {
		t.Fatalf("bad payload must not error, got %v", err)
	}
}

func TestCleanupHandlerRemovesFiles(t *testing.T) {
	store, err := files.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	url, err := store.Save("old.pdf", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	h := jobs.NewCleanupHandler(store, nil)
	payload, _ := json.Marshal(jobs.CleanupPayload{Files: []string{url, "/uploads/already-gone.pdf"}})

	if err := h(context.Background(), &jobs.Job{ID: 1, Type: jobs.TypeFilesCleanup, Payload: payload}); err != nil {
		t.Fatalf("handler: %v", err)
	}

	name := strings.TrimPrefix(url, files.URLPrefix)
	if _, err := os.Stat(filepath.Join(store.Dir(), name)); !os.IsNotExist(err) {
		t.Fatalf("file should be removed, stat err: %v", err)
	}
}
