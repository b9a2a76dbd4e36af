package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garnizeh/bidtrack/internal/files"
	"github.com/garnizeh/bidtrack/pkg/push"
)

// PushPayload is the payload of a notify.push job.
type PushPayload struct {
	Channels []string        `json:"channels"`
	Event    string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// NewPushHandler delivers an event to each channel through the push
// gateway. Delivery is fire-and-forget: failures are logged and
// swallowed so the job never retries.
func NewPushHandler(client *push.Client, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *Job) error {
		var p PushPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			logger.Error("push: bad payload", "job", j.ID, "err", err)
			return nil
		}
		for _, ch := range p.Channels {
			if err := client.Trigger(ctx, ch, p.Event, p.Data); err != nil {
				logger.Error("push: delivery failed", "channel", ch, "event", p.Event, "err", err)
			}
		}
		return nil
	}
}

// CleanupPayload is the payload of a files.cleanup job.
type CleanupPayload struct {
	Files []string `json:"files"`
}

// NewCleanupHandler deletes attachment files that were dropped from an
// applied job during an edit. Errors propagate so the queue retries.
func NewCleanupHandler(store *files.Store, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *Job) error {
		var p CleanupPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			logger.Error("cleanup: bad payload", "job", j.ID, "err", err)
			return nil
		}
		var errs []error
		for _, f := range p.Files {
			if err := store.Remove(f); err != nil {
				errs = append(errs, fmt.Errorf("cleanup %s: %w", f, err))
			}
		}
		return errors.Join(errs...)
	}
}
