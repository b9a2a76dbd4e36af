// Package notify fans lifecycle events out as notification rows plus an
// asynchronous push-gateway broadcast.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garnizeh/bidtrack/internal/jobs"
	"github.com/garnizeh/bidtrack/pkg/models"
	"github.com/garnizeh/bidtrack/pkg/repository"
)

// AdminChannel receives high and urgent events in addition to the
// per-user channels.
const AdminChannel = "admins"

// Enqueuer hands the push delivery off to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

// Event is one lifecycle occurrence to fan out.
type Event struct {
	Type     string
	Title    string
	Body     string
	Priority string
	ActorID  int64
	Metadata any
}

type Dispatcher struct {
	notifications repository.NotificationRepo
	users         repository.UserRepo
	queue         Enqueuer
	logger        *slog.Logger
}

func NewDispatcher(nr repository.NotificationRepo, ur repository.UserRepo, queue Enqueuer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{notifications: nr, users: ur, queue: queue, logger: logger}
}

// Dispatch writes one notification row for the acting user and each
// admin account, then enqueues the push delivery. All failures are
// logged and swallowed: notification dispatch never fails the primary
// request it is attached to.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if !models.ValidPriority(ev.Priority) {
		ev.Priority = models.PriorityLow
	}

	var metadata json.RawMessage
	if ev.Metadata != nil {
		b, err := json.Marshal(ev.Metadata)
		if err != nil {
			d.logger.Error("notify: marshal metadata", "type", ev.Type, "err", err)
		} else {
			metadata = b
		}
	}

	recipients := map[int64]bool{ev.ActorID: true}
	admins, err := d.users.ListAdmins(ctx)
	if err != nil {
		d.logger.Error("notify: list admins", "type", ev.Type, "err", err)
	}
	for _, a := range admins {
		recipients[a.ID] = true
	}

	channels := make([]string, 0, len(recipients)+1)
	for userID := range recipients {
		n := &models.Notification{
			UserID:   userID,
			ActorID:  &ev.ActorID,
			Type:     ev.Type,
			Title:    ev.Title,
			Body:     ev.Body,
			Priority: ev.Priority,
			Metadata: metadata,
		}
		if _, err := d.notifications.CreateNotification(ctx, n); err != nil {
			d.logger.Error("notify: store notification", "type", ev.Type, "user", userID, "err", err)
			continue
		}
		channels = append(channels, UserChannel(userID))
	}

	if ev.Priority == models.PriorityHigh || ev.Priority == models.PriorityUrgent {
		channels = append(channels, AdminChannel)
	}

	payload := jobs.PushPayload{Channels: channels, Event: ev.Type, Data: metadata}
	// max_attempts 1: push delivery is never retried
	if _, err := d.queue.Enqueue(ctx, jobs.TypeNotifyPush, payload, 100, 1); err != nil {
		d.logger.Error("notify: enqueue push", "type", ev.Type, "err", err)
	}
}

// UserChannel names the per-user push channel.
func UserChannel(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}
