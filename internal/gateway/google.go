package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// GoogleCalendar implements Provider on the Google Calendar API with an
// OAuth2 token per host account.
type GoogleCalendar struct {
	cfg     *oauth2.Config
	token   *oauth2.Token
	service *calendar.Service
}

// NewGoogleCalendar builds an authenticated Google Calendar provider from a
// previously obtained OAuth2 token.
func NewGoogleCalendar(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*GoogleCalendar, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleCalendar{cfg: cfg, token: token, service: service}, nil
}

// CreateEvent pushes a new event and returns the provider-assigned id.
func (g *GoogleCalendar) CreateEvent(ctx context.Context, calendarID string, event *models.Event, reminders []models.Reminder) (string, error) {
	created, err := g.service.Events.Insert(calendarID, toGoogleEvent(event, reminders)).Context(ctx).Do()
	if err != nil {
		return "", wrapProviderError("create", event.ID, err)
	}
	return created.Id, nil
}

// PatchEvent updates an existing provider event in place.
func (g *GoogleCalendar) PatchEvent(ctx context.Context, calendarID, providerID string, event *models.Event, reminders []models.Reminder) error {
	_, err := g.service.Events.Patch(calendarID, providerID, toGoogleEvent(event, reminders)).Context(ctx).Do()
	if err != nil {
		return wrapProviderError("patch", event.ID, err)
	}
	return nil
}

// DeleteEvent removes a provider event.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, providerID string) error {
	if err := g.service.Events.Delete(calendarID, providerID).Context(ctx).Do(); err != nil {
		return wrapProviderError("delete", providerID, err)
	}
	return nil
}

// RefreshCredential forces a token refresh and rebuilds the service on the
// new credential.
func (g *GoogleCalendar) RefreshCredential(ctx context.Context) error {
	token, err := g.cfg.TokenSource(ctx, g.token).Token()
	if err != nil {
		return fmt.Errorf("refresh provider credential: %w", err)
	}
	service, err := calendar.NewService(ctx, option.WithHTTPClient(g.cfg.Client(ctx, token)))
	if err != nil {
		return fmt.Errorf("rebuild calendar service: %w", err)
	}
	g.token = token
	g.service = service
	slog.Info("provider credential refreshed", slog.Time("expiry", token.Expiry))
	return nil
}

// wrapProviderError maps provider auth failures onto apperr.ErrAuthExpired
// so the reconciler can refresh and retry once.
func wrapProviderError(op, id string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%s event %s: %w: %w", op, id, apperr.ErrAuthExpired, err)
	}
	return fmt.Errorf("%s event %s: %w", op, id, err)
}

// toGoogleEvent converts a stored event into the provider payload.
func toGoogleEvent(event *models.Event, reminders []models.Reminder) *calendar.Event {
	ge := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Notes,
		ColorId:     event.ColorID,
	}
	if event.AllDay {
		ge.Start = &calendar.EventDateTime{Date: event.StartDate.Format("2006-01-02"), TimeZone: event.Timezone}
		ge.End = &calendar.EventDateTime{Date: event.EndDate.Format("2006-01-02"), TimeZone: event.Timezone}
	} else {
		ge.Start = &calendar.EventDateTime{DateTime: event.StartDate.Format(time.RFC3339), TimeZone: event.Timezone}
		ge.End = &calendar.EventDateTime{DateTime: event.EndDate.Format(time.RFC3339), TimeZone: event.Timezone}
	}
	if event.RecurrenceRule != "" {
		ge.Recurrence = []string{event.RecurrenceRule}
	}
	if len(reminders) > 0 {
		overrides := make([]*calendar.EventReminder, 0, len(reminders))
		for _, r := range reminders {
			if r.Deleted {
				continue
			}
			overrides = append(overrides, &calendar.EventReminder{
				Method:  "popup",
				Minutes: int64(r.Minutes),
			})
		}
		ge.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		}
	}
	return ge
}
