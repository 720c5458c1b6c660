package eventpart

import (
	"testing"
	"time"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/planner"
)

var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func eventOf(t *testing.T, id string, start time.Time, minutes int) models.Event {
	t.Helper()
	return models.Event{
		ID:         id,
		UserID:     "user-1",
		StartDate:  start,
		EndDate:    start.Add(time.Duration(minutes) * time.Minute),
		Modifiable: true,
	}
}

func TestGenerateEventParts(t *testing.T) {
	cases := []struct {
		name    string
		minutes int
		want    int
	}{
		{"single session", 15, 1},
		{"one hour", 60, 4},
		{"ragged duration rounds up", 20, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parts := GenerateEventParts(eventOf(t, "ev-1", monday.Add(9*time.Hour), tc.minutes))
			if len(parts) != tc.want {
				t.Fatalf("got %d parts, want %d", len(parts), tc.want)
			}
			for i, p := range parts {
				if p.Part != i {
					t.Errorf("part[%d].Part = %d, want %d (0-based contiguous)", i, p.Part, i)
				}
				if p.LastPart != tc.want-1 {
					t.Errorf("part[%d].LastPart = %d, want %d", i, p.LastPart, tc.want-1)
				}
				if p.GroupID != "ev-1" {
					t.Errorf("part[%d].GroupID = %q, want event id", i, p.GroupID)
				}
			}
		})
	}
}

func TestGenerateEventPartsExcludesAllDay(t *testing.T) {
	ev := eventOf(t, "ev-1", monday, 24*60)
	ev.AllDay = true
	if parts := GenerateEventParts(ev); parts != nil {
		t.Fatalf("got %d parts for an all-day event, want none", len(parts))
	}
}

func TestGenerateEventPartsLite(t *testing.T) {
	parts := GenerateEventPartsLite(eventOf(t, "ev-1", monday.Add(9*time.Hour), 60))
	if len(parts) != 2 {
		t.Fatalf("got %d lite parts for one hour, want 2", len(parts))
	}
}

func bufferedParts(t *testing.T) []EventPart {
	t.Helper()
	parent := eventOf(t, "ev-1", monday.Add(14*time.Hour), 30)
	pre := eventOf(t, "buf-pre", monday.Add(13*time.Hour+45*time.Minute), 15)
	pre.IsPreEvent = true
	pre.ForEventID = parent.ID
	post := eventOf(t, "buf-post", monday.Add(14*time.Hour+30*time.Minute), 15)
	post.IsPostEvent = true
	post.ForEventID = parent.ID

	var parts []EventPart
	parts = append(parts, GenerateEventParts(pre)...)
	parts = append(parts, GenerateEventParts(parent)...)
	parts = append(parts, GenerateEventParts(post)...)
	return parts
}

func TestModifyEventPartsForSingularPreBufferTime(t *testing.T) {
	parts := ModifyEventPartsForSingularPreBufferTime(bufferedParts(t), "ev-1")

	var group []EventPart
	for _, p := range parts {
		if p.Event.IsPreEvent || p.Event.ID == "ev-1" {
			group = append(group, p)
		}
	}
	if len(group) != 3 {
		t.Fatalf("got %d parts in the merged group, want 3", len(group))
	}
	groupID := group[0].GroupID
	if groupID == "ev-1" || groupID == "buf-pre" {
		t.Error("merged group must get a fresh group id")
	}
	for i, p := range group {
		if p.GroupID != groupID {
			t.Errorf("part %d has group %q, want %q", i, p.GroupID, groupID)
		}
		if p.Part != i || p.LastPart != 2 {
			t.Errorf("part %d numbered %d/%d, want %d/2", i, p.Part, p.LastPart, i)
		}
	}
	if !group[0].Event.IsPreEvent {
		t.Error("pre buffer must be the group's first part")
	}
}

func TestModifyEventPartsForMultiplePrePostBufferTime(t *testing.T) {
	parts := bufferedParts(t)
	parts = ModifyEventPartsForMultiplePreBufferTime(parts)
	parts = ModifyEventPartsForMultiplePostBufferTime(parts)

	groupID := ""
	byPart := make(map[int]EventPart)
	for _, p := range parts {
		byPart[p.Part] = p
		if groupID == "" {
			groupID = p.GroupID
		} else if p.GroupID != groupID {
			t.Fatalf("parts span groups %q and %q, want one group", groupID, p.GroupID)
		}
	}
	if len(byPart) != 4 {
		t.Fatalf("got %d distinct part numbers, want 4", len(byPart))
	}
	if !byPart[0].Event.IsPreEvent {
		t.Error("part 0 must be the pre buffer")
	}
	if !byPart[3].Event.IsPostEvent {
		t.Error("last part must be the post buffer")
	}
	for i := 0; i < 4; i++ {
		if byPart[i].LastPart != 3 {
			t.Errorf("part %d lastPart = %d, want 3", i, byPart[i].LastPart)
		}
	}
}

func TestSetPreferredTimeForUnmodifiableEvent(t *testing.T) {
	ev := eventOf(t, "ev-1", monday.AddDate(0, 0, 2).Add(14*time.Hour), 30) // Wednesday
	ev.Modifiable = false
	part := EventPart{Event: ev, GroupID: ev.ID, Part: 0, LastPart: 0}

	SetPreferredTimeForUnmodifiableEvent(&part, time.UTC)

	if part.Event.PreferredDayOfWeek != 3 {
		t.Errorf("preferred day = %d, want 3 (Wednesday)", part.Event.PreferredDayOfWeek)
	}
	if part.Event.PreferredTime != "14:00:00" {
		t.Errorf("preferred time = %q, want 14:00:00", part.Event.PreferredTime)
	}
	if !part.Event.Modifiable {
		t.Error("soft-pinned part must be handed to the solver as modifiable")
	}
}

func TestSetPreferredTimeLeavesModifiableEventsAlone(t *testing.T) {
	part := EventPart{Event: eventOf(t, "ev-1", monday.Add(14*time.Hour), 30)}
	SetPreferredTimeForUnmodifiableEvent(&part, time.UTC)
	if part.Event.PreferredTime != "" || part.Event.PreferredDayOfWeek != 0 {
		t.Error("modifiable event must not get a pinned preference")
	}
}

func TestTagEventsForDailyOrWeeklyTask(t *testing.T) {
	parent := eventOf(t, "ev-1", monday.Add(9*time.Hour), 30)
	parent.TaskID = "task-1"
	parent.DailyTaskList = true
	buffer := eventOf(t, "buf-1", monday.Add(8*time.Hour+45*time.Minute), 15)
	buffer.IsPreEvent = true
	buffer.ForEventID = parent.ID

	var parts []EventPart
	parts = append(parts, GenerateEventParts(buffer)...)
	parts = append(parts, GenerateEventParts(parent)...)
	parts = TagEventsForDailyOrWeeklyTask(parts)

	if parts[0].Event.TaskID != "task-1" || !parts[0].Event.DailyTaskList {
		t.Error("buffer part must inherit the parent's task tags")
	}
	if parts[0].Event.WeeklyTaskList {
		t.Error("buffer part must not gain tags the parent lacks")
	}
}

func TestFormatEventPartForPlanner(t *testing.T) {
	ev := eventOf(t, "ev-1", monday.Add(9*time.Hour), 30)
	part := GenerateEventParts(ev)[0]
	user := planner.NewUserRequest("user-1", "host-1", nil, nil)

	body := FormatEventPartForPlanner(part, "host-1", user, nil, 8, time.UTC)

	if body.StartDate != "2024-01-01T09:00:00" || body.EndDate != "2024-01-01T09:30:00" {
		t.Errorf("dates = %s/%s, want local datetimes without offset", body.StartDate, body.EndDate)
	}
	if body.Priority != 1 {
		t.Errorf("priority = %d, want default 1", body.Priority)
	}
	if body.PreferredTime != "" || body.PreferredDayOfWeek != "" {
		t.Error("freely modifiable event must not carry a preferred placement")
	}
	if body.TotalWorkingHours != 8 {
		t.Errorf("total working hours = %v, want 8", body.TotalWorkingHours)
	}
	if body.UserID != "user-1" || body.HostID != "host-1" {
		t.Errorf("ids = %s/%s, want user-1/host-1", body.UserID, body.HostID)
	}
}

func TestFormatEventPartCarriesPinnedPreference(t *testing.T) {
	ev := eventOf(t, "ev-1", monday.Add(14*time.Hour), 30)
	ev.Modifiable = false
	part := GenerateEventParts(ev)[0]
	SetPreferredTimeForUnmodifiableEvent(&part, time.UTC)

	user := planner.NewUserRequest("user-1", "host-1", nil, nil)
	body := FormatEventPartForPlanner(part, "host-1", user, nil, 8, time.UTC)

	if body.PreferredDayOfWeek != "MONDAY" || body.PreferredTime != "14:00:00" {
		t.Errorf("pinned preference = %s %s, want MONDAY 14:00:00",
			body.PreferredDayOfWeek, body.PreferredTime)
	}
	if !body.Modifiable {
		t.Error("soft-pinned part must stay modifiable on the wire")
	}
}

func TestFormatEventPartAttachesPreferredTimeRanges(t *testing.T) {
	ev := eventOf(t, "ev-1", monday.Add(9*time.Hour), 30)
	part := GenerateEventParts(ev)[0]
	user := planner.NewUserRequest("user-1", "host-1", nil, nil)
	ranges := []models.PreferredTimeRange{
		{ID: "ptr-1", EventID: "ev-1", UserID: "user-1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "12:00:00"},
		{ID: "ptr-2", EventID: "ev-other", UserID: "user-1", StartTime: "13:00:00", EndTime: "14:00:00"},
	}

	body := FormatEventPartForPlanner(part, "host-1", user, ranges, 8, time.UTC)

	if len(body.Event.PreferredTimeRanges) != 1 {
		t.Fatalf("got %d ranges, want only the event's own", len(body.Event.PreferredTimeRanges))
	}
	got := body.Event.PreferredTimeRanges[0]
	if got.DayOfWeek != "MONDAY" || got.StartTime != "09:00:00" {
		t.Errorf("range = %+v, want Monday 09:00:00", got)
	}
}
