package category

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/dagaz/internal/models"
)

type stubVectorizer struct {
	ranked []ScoredCategory
	err    error

	vectorized string
	searched   []string
}

func (s *stubVectorizer) Vectorize(_ context.Context, text string) ([]float64, error) {
	s.vectorized = text
	if s.err != nil {
		return nil, s.err
	}
	return []float64{0.1, 0.2}, nil
}

func (s *stubVectorizer) Search(_ context.Context, _ []float64, labels []string) ([]ScoredCategory, error) {
	s.searched = labels
	return s.ranked, s.err
}

// categories arrive in recency order, most recently used first.
func testCategories(t *testing.T) []models.Category {
	t.Helper()
	return []models.Category{
		{ID: "cat-standup", UserID: "user-1", Name: "Standup"},
		{ID: "cat-1on1", UserID: "user-1", Name: "1:1"},
		{ID: "cat-review", UserID: "user-1", Name: "Review"},
	}
}

func TestFindBestMatchCategory(t *testing.T) {
	vz := &stubVectorizer{ranked: []ScoredCategory{{Label: "Standup", Score: 0.9}}}
	event := &models.Event{ID: "ev-1", Summary: "daily standup"}

	ranked, err := FindBestMatchCategory(context.Background(), vz, event, []string{"Standup", "Review"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 1 || ranked[0].Label != "Standup" {
		t.Fatalf("ranked = %+v, want the stubbed match", ranked)
	}
	if vz.vectorized != "daily standup" {
		t.Errorf("vectorized %q, want the event text", vz.vectorized)
	}
	if len(vz.searched) != 2 {
		t.Errorf("searched %d labels, want 2", len(vz.searched))
	}
}

func TestFindBestMatchCategoryEmptyInputs(t *testing.T) {
	vz := &stubVectorizer{}
	if got, err := FindBestMatchCategory(context.Background(), vz, &models.Event{ID: "ev-1"}, []string{"A"}); err != nil || got != nil {
		t.Error("textless event must yield no match and no error")
	}
	if got, err := FindBestMatchCategory(context.Background(), vz, &models.Event{Summary: "x"}, nil); err != nil || got != nil {
		t.Error("no candidate labels must yield no match and no error")
	}
}

func TestFindBestMatchCategoryPropagatesError(t *testing.T) {
	vz := &stubVectorizer{err: errors.New("embedding service down")}
	_, err := FindBestMatchCategory(context.Background(), vz, &models.Event{ID: "ev-1", Summary: "x"}, []string{"A"})
	if err == nil {
		t.Fatal("want error from the collaborator")
	}
}

func TestProcessBestMatchCategories(t *testing.T) {
	cats := testCategories(t)

	got := ProcessBestMatchCategories([]ScoredCategory{
		{Label: "Review", Score: 0.7},
		{Label: "Standup", Score: 0.9},
	}, cats)
	if got == nil || got.Name != "Standup" {
		t.Fatalf("got %+v, want the top-scoring category", got)
	}

	if got := ProcessBestMatchCategories([]ScoredCategory{{Label: "Review", Score: 0.5}}, cats); got != nil {
		t.Errorf("got %+v for a below-threshold score, want no match", got)
	}
}

func TestProcessBestMatchCategoriesTieBreaksByRecency(t *testing.T) {
	cats := testCategories(t)
	got := ProcessBestMatchCategories([]ScoredCategory{
		{Label: "Review", Score: 0.8},
		{Label: "1:1", Score: 0.8},
	}, cats)
	if got == nil || got.Name != "1:1" {
		t.Fatalf("got %+v, want the more recently used of the tied categories", got)
	}
}

func TestProcessBestMatchCategoriesNoThreshold(t *testing.T) {
	cats := testCategories(t)
	got := ProcessBestMatchCategoriesNoThreshold([]ScoredCategory{{Label: "Review", Score: 0.2}}, cats)
	if got == nil || got.Name != "Review" {
		t.Fatalf("got %+v, want the best available regardless of score", got)
	}
}

func TestProcessEventForMeetingTypeCategories(t *testing.T) {
	cats := append(testCategories(t),
		models.Category{ID: "cat-meeting", Name: models.CategoryMeeting},
		models.Category{ID: "cat-external", Name: models.CategoryExternalMeeting},
	)
	event := &models.Event{ID: "ev-1", UserID: "user-1"}

	internalOnly := []models.Attendee{{ID: "a-1", UserID: "user-1"}, {ID: "a-2", UserID: "user-2"}}
	links := ProcessEventForMeetingTypeCategories(event, internalOnly, cats)
	if len(links) != 1 || links[0].CategoryID != "cat-meeting" {
		t.Fatalf("links = %+v, want only the Meeting tag", links)
	}

	withExternal := append(internalOnly, models.Attendee{ID: "a-3", ExternalAttendee: true})
	links = ProcessEventForMeetingTypeCategories(event, withExternal, cats)
	if len(links) != 2 {
		t.Fatalf("got %d links, want Meeting and External Meeting", len(links))
	}

	if links := ProcessEventForMeetingTypeCategories(event, internalOnly[:1], cats); links != nil {
		t.Error("a single attendee is not a meeting")
	}
}

func TestCopyOverCategoryDefaults(t *testing.T) {
	cat := &models.Category{
		ID:                   "cat-1",
		Color:                "#33b679",
		DefaultPriorityLevel: 5,
		DefaultTimeBlocking:  &models.BufferTime{BeforeEvent: 10, AfterEvent: 5},
		DefaultModifiable:    true,
		CopyPriorityLevel:    true,
		CopyTimeBlocking:     true,
		CopyModifiable:       true,
		CopyColor:            true,
	}
	event := &models.Event{ID: "ev-1"}

	applied := CopyOverCategoryDefaults(event, cat)

	if len(applied) != 4 {
		t.Fatalf("applied %v, want 4 fields", applied)
	}
	if event.Priority != 5 || !event.Modifiable || event.BackgroundColor != "#33b679" {
		t.Errorf("defaults not applied: %+v", event)
	}
	if event.TimeBlocking == nil || event.TimeBlocking.BeforeEvent != 10 {
		t.Errorf("time blocking = %+v, want the category default", event.TimeBlocking)
	}
}

func TestCopyOverCategoryDefaultsRespectsUserValues(t *testing.T) {
	cat := &models.Category{
		ID:                   "cat-1",
		DefaultPriorityLevel: 5,
		CopyPriorityLevel:    true,
		CopyIsBreak:          true,
		DefaultIsBreak:       true,
	}
	event := &models.Event{
		ID:                        "ev-1",
		Priority:                  3,
		UserModifiedPriorityLevel: true,
	}

	applied := CopyOverCategoryDefaults(event, cat)

	if event.Priority != 3 {
		t.Errorf("priority = %d, explicit user value must win", event.Priority)
	}
	if !event.IsBreak {
		t.Error("fields the user did not touch must still be copied")
	}
	if len(applied) != 1 || applied[0] != "isBreak" {
		t.Errorf("applied = %v, want only isBreak", applied)
	}
}

func TestCopyOverPreviousEventDefaults(t *testing.T) {
	previous := &models.Event{
		ID:                 "ev-prev",
		Priority:           4,
		Duration:           45,
		PreferredDayOfWeek: 2,
		PreferredTime:      "10:00:00",
		BackgroundColor:    "#d50000",
		CopyPriorityLevel:  true,
		CopyDuration:       true,
		CopyTimePreference: true,
		CopyColor:          true,
		CopyIsMeeting:      true,
		IsMeeting:          true,
	}
	event := &models.Event{ID: "ev-new", UserModifiedColor: true}

	applied := CopyOverPreviousEventDefaults(event, previous)

	if event.Priority != 4 || event.Duration != 45 || !event.IsMeeting {
		t.Errorf("previous-event defaults not applied: %+v", event)
	}
	if event.PreferredDayOfWeek != 2 || event.PreferredTime != "10:00:00" {
		t.Errorf("time preference not copied: %+v", event)
	}
	if event.BackgroundColor != "" {
		t.Error("user-modified color must not be overwritten")
	}
	if len(applied) != 4 {
		t.Errorf("applied = %v, want 4 fields", applied)
	}
}

func TestReminderDefaults(t *testing.T) {
	cat := &models.Category{ID: "cat-1", CopyReminders: true, DefaultReminders: []int{10, 30}}
	event := &models.Event{ID: "ev-1", UserID: "user-1"}

	minutes := ReminderDefaults(event, cat)
	if len(minutes) != 2 {
		t.Fatalf("got %v, want the category offsets", minutes)
	}

	reminders := CreateRemindersFromMinutesAndEvent(event, minutes, false, "UTC")
	if len(reminders) != 2 {
		t.Fatalf("got %d reminder rows, want 2", len(reminders))
	}
	for _, r := range reminders {
		if r.EventID != event.ID || r.UserID != event.UserID {
			t.Errorf("reminder %+v not keyed to the event", r)
		}
	}

	event.UserModifiedReminders = true
	if got := ReminderDefaults(event, cat); got != nil {
		t.Error("user-set reminders must not be replaced by defaults")
	}
}
