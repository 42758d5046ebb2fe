// Package notify delivers alert notifications through a pluggable
// collaborator, deduplicating by alert id within a session.
package notify

import (
	"context"

	"gitlab.com/htetaung/paisa-tracker/internal/logger"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// Notifier is the delivery collaborator.
type Notifier interface {
	RequestPermission(ctx context.Context) bool
	Send(ctx context.Context, title, body, dedupeTag string) error
}

// LogNotifier writes notifications to the structured log. Used when no
// real delivery channel is configured.
type LogNotifier struct{}

// RequestPermission always grants.
func (LogNotifier) RequestPermission(context.Context) bool { return true }

// Send logs the notification.
func (LogNotifier) Send(_ context.Context, title, body, dedupeTag string) error {
	logger.Log.Info().
		Str("title", title).
		Str("body", body).
		Str("dedupe_tag", dedupeTag).
		Msg("notification")
	return nil
}

// Dispatcher feeds alert engine output to a Notifier. The alert id is
// reused as the dedupe tag, and a session-local set keeps an alert from
// being delivered twice; a new day or month changes the id and the alert
// goes out again.
type Dispatcher struct {
	notifier  Notifier
	permitted bool
	sent      map[string]bool
}

// NewDispatcher creates a Dispatcher and requests delivery permission
// once up front.
func NewDispatcher(ctx context.Context, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		notifier:  notifier,
		permitted: notifier.RequestPermission(ctx),
		sent:      make(map[string]bool),
	}
}

// Dispatch sends each not-yet-seen alert. Delivery failures are logged
// and the alert stays eligible for the next pass.
func (d *Dispatcher) Dispatch(ctx context.Context, alerts []models.AlertItem) {
	if !d.permitted {
		return
	}

	for _, alert := range alerts {
		if d.sent[alert.ID] {
			continue
		}
		if err := d.notifier.Send(ctx, alert.Title, alert.Message, alert.ID); err != nil {
			logger.Log.Warn().Err(err).Str("alert_id", alert.ID).Msg("failed to send notification")
			continue
		}
		d.sent[alert.ID] = true
	}
}
