package gateway

import (
	"context"
	"log/slog"

	"github.com/starford/dagaz/internal/models"
)

// Local is a Provider that records writes in the log only. It stands in when
// no calendar account is configured, so the pipeline stays runnable end to
// end in development.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) CreateEvent(_ context.Context, calendarID string, event *models.Event, _ []models.Reminder) (string, error) {
	slog.Info("local provider: event created",
		slog.String("calendarId", calendarID),
		slog.String("eventId", event.ID),
		slog.Time("start", event.StartDate))
	return "local-" + event.ID, nil
}

func (*Local) PatchEvent(_ context.Context, calendarID, providerID string, event *models.Event, _ []models.Reminder) error {
	slog.Info("local provider: event patched",
		slog.String("calendarId", calendarID),
		slog.String("providerId", providerID),
		slog.String("eventId", event.ID),
		slog.Time("start", event.StartDate))
	return nil
}

func (*Local) DeleteEvent(_ context.Context, calendarID, providerID string) error {
	slog.Info("local provider: event deleted",
		slog.String("calendarId", calendarID),
		slog.String("providerId", providerID))
	return nil
}

func (*Local) RefreshCredential(context.Context) error { return nil }
