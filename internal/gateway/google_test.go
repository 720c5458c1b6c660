package gateway

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

func TestToGoogleEvent(t *testing.T) {
	start := time.Date(2024, time.January, 1, 14, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:             "ev-1",
		Summary:        "Design review",
		Notes:          "agenda attached",
		Timezone:       "UTC",
		StartDate:      start,
		EndDate:        start.Add(30 * time.Minute),
		RecurrenceRule: "RRULE:FREQ=WEEKLY",
		ColorID:        "5",
	}
	reminders := []models.Reminder{
		{ID: "r-1", Minutes: 10},
		{ID: "r-2", Minutes: 30, Deleted: true},
	}

	ge := toGoogleEvent(event, reminders)

	if ge.Summary != "Design review" || ge.Description != "agenda attached" {
		t.Errorf("summary/description = %q/%q", ge.Summary, ge.Description)
	}
	if ge.Start.DateTime != "2024-01-01T14:00:00Z" || ge.Start.TimeZone != "UTC" {
		t.Errorf("start = %+v, want RFC3339 with timezone", ge.Start)
	}
	if len(ge.Recurrence) != 1 {
		t.Errorf("recurrence = %v, want the stored rule", ge.Recurrence)
	}
	if ge.Reminders == nil || len(ge.Reminders.Overrides) != 1 || ge.Reminders.Overrides[0].Minutes != 10 {
		t.Errorf("reminders = %+v, want one live override", ge.Reminders)
	}
}

func TestToGoogleEventAllDay(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	event := &models.Event{
		ID:        "ev-1",
		AllDay:    true,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
	}
	ge := toGoogleEvent(event, nil)
	if ge.Start.Date != "2024-01-01" || ge.Start.DateTime != "" {
		t.Errorf("all-day start = %+v, want a date without time", ge.Start)
	}
}

func TestWrapProviderError(t *testing.T) {
	authErr := wrapProviderError("patch", "ev-1", &googleapi.Error{Code: 401})
	if !errors.Is(authErr, apperr.ErrAuthExpired) {
		t.Errorf("401 must map to ErrAuthExpired, got %v", authErr)
	}
	otherErr := wrapProviderError("patch", "ev-1", &googleapi.Error{Code: 404})
	if errors.Is(otherErr, apperr.ErrAuthExpired) {
		t.Error("404 must not map to ErrAuthExpired")
	}
}
