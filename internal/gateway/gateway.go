// Package gateway is the calendar-provider boundary. The reconciler hands
// it fully-formed events and consumes only success/failure plus the
// provider-assigned id.
package gateway

import (
	"context"

	"github.com/starford/dagaz/internal/models"
)

// Provider is the external calendar collaborator, keyed by provider
// calendar id and event id. Auth expiry surfaces as apperr.ErrAuthExpired
// so callers can refresh and retry once.
type Provider interface {
	CreateEvent(ctx context.Context, calendarID string, event *models.Event, reminders []models.Reminder) (providerID string, err error)
	PatchEvent(ctx context.Context, calendarID, providerID string, event *models.Event, reminders []models.Reminder) error
	DeleteEvent(ctx context.Context, calendarID, providerID string) error
	RefreshCredential(ctx context.Context) error
}
