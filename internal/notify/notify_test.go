package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

type recordingNotifier struct {
	grant   bool
	sendErr error
	asked   int
	sent    []string
}

func (r *recordingNotifier) RequestPermission(context.Context) bool {
	r.asked++
	return r.grant
}

func (r *recordingNotifier) Send(_ context.Context, _, _, dedupeTag string) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.sent = append(r.sent, dedupeTag)
	return nil
}

func alert(id string) models.AlertItem {
	return models.AlertItem{ID: id, Type: models.AlertWarning, Title: "Budget Warning", Message: "nearly there"}
}

func TestDispatcherDeduplicatesByAlertID(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{grant: true}
	d := NewDispatcher(context.Background(), notifier)
	require.Equal(t, 1, notifier.asked, "permission requested once up front")

	d.Dispatch(context.Background(), []models.AlertItem{alert("weekly-warning-2026-08-29")})
	d.Dispatch(context.Background(), []models.AlertItem{alert("weekly-warning-2026-08-29")})

	require.Equal(t, []string{"weekly-warning-2026-08-29"}, notifier.sent)

	// A rolled-over id is a new alert.
	d.Dispatch(context.Background(), []models.AlertItem{
		alert("weekly-warning-2026-08-29"),
		alert("weekly-warning-2026-08-30"),
	})
	require.Equal(t, []string{"weekly-warning-2026-08-29", "weekly-warning-2026-08-30"}, notifier.sent)
	require.Equal(t, 1, notifier.asked)
}

func TestDispatcherPermissionDenied(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{grant: false}
	d := NewDispatcher(context.Background(), notifier)

	d.Dispatch(context.Background(), []models.AlertItem{alert("monthly-critical-2026-08")})
	require.Empty(t, notifier.sent)
}

func TestDispatcherRetriesAfterSendFailure(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{grant: true, sendErr: errors.New("delivery down")}
	d := NewDispatcher(context.Background(), notifier)

	d.Dispatch(context.Background(), []models.AlertItem{alert("monthly-critical-2026-08")})
	require.Empty(t, notifier.sent)

	// The alert stays eligible once delivery recovers.
	notifier.sendErr = nil
	d.Dispatch(context.Background(), []models.AlertItem{alert("monthly-critical-2026-08")})
	require.Equal(t, []string{"monthly-critical-2026-08"}, notifier.sent)
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	var n LogNotifier
	require.True(t, n.RequestPermission(context.Background()))
	require.NoError(t, n.Send(context.Background(), "Budget Alert", "over the line", "weekly-critical-2026-08-29"))
}
