package push_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garnizeh/bidtrack/pkg/push"
)

func TestTrigger(t *testing.T) {
	type received struct {
		Channel string          `json:"channel"`
		Event   string          `json:"event"`
		Data    json.RawMessage `json:"data"`
	}

	var got received
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := push.NewClient(push.Config{BaseURL: srv.URL, AppKey: "key123"}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := c.Trigger(context.Background(), "user-7", "job.applied", map[string]any{"applied_job_id": 7}); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	if got.Channel != "user-7" || got.Event != "job.applied" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if auth != "Bearer key123" {
		t.Fatalf("unexpected auth header %q", auth)
	}
}

func TestTriggerGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := push.NewClient(push.Config{BaseURL: srv.URL}, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := c.Trigger(context.Background(), "admins", "job.hired", nil); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestDisabledClientIsNoOp(t *testing.T) {
	c, err := push.NewClient(push.Config{}, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Enabled() {
		t.Fatalf("client with empty base url must be disabled")
	}
	if err := c.Trigger(context.Background(), "user-1", "noop", nil); err != nil {
		t.Fatalf("disabled trigger must not error: %v", err)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := push.NewClient(push.Config{BaseURL: "::not a url"}, nil); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}
