package category

import (
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/models"
)

// categoryCopyRule is one row of the declarative copy table for category
// defaults: the field is copied only when the category offers it and the
// user has not set it explicitly.
type categoryCopyRule struct {
	name    string
	offered func(c *models.Category) bool
	userSet func(e *models.Event) bool
	apply   func(e *models.Event, c *models.Category)
}

var categoryCopyRules = []categoryCopyRule{
	{
		name:    "priorityLevel",
		offered: func(c *models.Category) bool { return c.CopyPriorityLevel && c.DefaultPriorityLevel > 0 },
		userSet: func(e *models.Event) bool { return e.UserModifiedPriorityLevel },
		apply:   func(e *models.Event, c *models.Category) { e.Priority = c.DefaultPriorityLevel },
	},
	{
		name:    "timeBlocking",
		offered: func(c *models.Category) bool { return c.CopyTimeBlocking && c.DefaultTimeBlocking != nil },
		userSet: func(e *models.Event) bool { return e.UserModifiedTimeBlocking },
		apply: func(e *models.Event, c *models.Category) {
			tb := *c.DefaultTimeBlocking
			e.TimeBlocking = &tb
		},
	},
	{
		name:    "modifiable",
		offered: func(c *models.Category) bool { return c.CopyModifiable },
		userSet: func(e *models.Event) bool { return e.UserModifiedModifiable },
		apply:   func(e *models.Event, c *models.Category) { e.Modifiable = c.DefaultModifiable },
	},
	{
		name:    "isBreak",
		offered: func(c *models.Category) bool { return c.CopyIsBreak },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsBreak },
		apply:   func(e *models.Event, c *models.Category) { e.IsBreak = c.DefaultIsBreak },
	},
	{
		name:    "isMeeting",
		offered: func(c *models.Category) bool { return c.CopyIsMeeting },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsMeeting },
		apply: func(e *models.Event, c *models.Category) {
			e.IsMeeting = c.DefaultIsMeeting
			e.IsMeetingModifiable = c.DefaultMeetingModifiable
		},
	},
	{
		name:    "isExternalMeeting",
		offered: func(c *models.Category) bool { return c.CopyIsExternalMeeting },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsExternalMeeting },
		apply: func(e *models.Event, c *models.Category) {
			e.IsExternalMeeting = c.DefaultIsExternalMeeting
			e.IsExternalMeetingModifiable = c.DefaultExternalMeetingModifiable
		},
	},
	{
		name:    "color",
		offered: func(c *models.Category) bool { return c.CopyColor && c.Color != "" },
		userSet: func(e *models.Event) bool { return e.UserModifiedColor },
		apply:   func(e *models.Event, c *models.Category) { e.BackgroundColor = c.Color },
	},
}

// CopyOverCategoryDefaults applies the matched category's flagged defaults
// onto the event. Explicit user values always win. Returns the names of the
// fields that were copied. Reminder defaults are satellite rows; callers
// create them via CreateRemindersFromMinutesAndEvent when the category
// offers reminders.
func CopyOverCategoryDefaults(event *models.Event, cat *models.Category) []string {
	var applied []string
	for _, rule := range categoryCopyRules {
		if !rule.offered(cat) || rule.userSet(event) {
			continue
		}
		rule.apply(event, cat)
		applied = append(applied, rule.name)
	}
	return applied
}

// ReminderDefaults returns the category's reminder offsets when it offers
// them and the user has not set reminders explicitly.
func ReminderDefaults(event *models.Event, cat *models.Category) []int {
	if !cat.CopyReminders || event.UserModifiedReminders || len(cat.DefaultReminders) == 0 {
		return nil
	}
	return cat.DefaultReminders
}

// eventCopyRule is the copy table for previous-event defaults: the previous
// event's copy flags decide what it hands down.
type eventCopyRule struct {
	name    string
	offered func(prev *models.Event) bool
	userSet func(e *models.Event) bool
	apply   func(e, prev *models.Event)
}

var previousEventCopyRules = []eventCopyRule{
	{
		name:    "timePreference",
		offered: func(p *models.Event) bool { return p.CopyTimePreference },
		userSet: func(e *models.Event) bool { return e.UserModifiedTimePreference },
		apply: func(e, p *models.Event) {
			e.PreferredDayOfWeek = p.PreferredDayOfWeek
			e.PreferredTime = p.PreferredTime
			e.PreferredStartTimeRange = p.PreferredStartTimeRange
			e.PreferredEndTimeRange = p.PreferredEndTimeRange
		},
	},
	{
		name:    "timeBlocking",
		offered: func(p *models.Event) bool { return p.CopyTimeBlocking && p.TimeBlocking != nil },
		userSet: func(e *models.Event) bool { return e.UserModifiedTimeBlocking },
		apply: func(e, p *models.Event) {
			tb := *p.TimeBlocking
			e.TimeBlocking = &tb
		},
	},
	{
		name:    "priorityLevel",
		offered: func(p *models.Event) bool { return p.CopyPriorityLevel && p.Priority > 0 },
		userSet: func(e *models.Event) bool { return e.UserModifiedPriorityLevel },
		apply:   func(e, p *models.Event) { e.Priority = p.Priority },
	},
	{
		name:    "modifiable",
		offered: func(p *models.Event) bool { return p.CopyModifiable },
		userSet: func(e *models.Event) bool { return e.UserModifiedModifiable },
		apply:   func(e, p *models.Event) { e.Modifiable = p.Modifiable },
	},
	{
		name:    "isBreak",
		offered: func(p *models.Event) bool { return p.CopyIsBreak },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsBreak },
		apply:   func(e, p *models.Event) { e.IsBreak = p.IsBreak },
	},
	{
		name:    "isMeeting",
		offered: func(p *models.Event) bool { return p.CopyIsMeeting },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsMeeting },
		apply:   func(e, p *models.Event) { e.IsMeeting = p.IsMeeting },
	},
	{
		name:    "isExternalMeeting",
		offered: func(p *models.Event) bool { return p.CopyIsExternalMeeting },
		userSet: func(e *models.Event) bool { return e.UserModifiedIsExternalMeeting },
		apply:   func(e, p *models.Event) { e.IsExternalMeeting = p.IsExternalMeeting },
	},
	{
		name:    "duration",
		offered: func(p *models.Event) bool { return p.CopyDuration && p.Duration > 0 },
		userSet: func(e *models.Event) bool { return e.UserModifiedDuration },
		apply:   func(e, p *models.Event) { e.Duration = p.Duration },
	},
	{
		name:    "color",
		offered: func(p *models.Event) bool { return p.CopyColor && p.BackgroundColor != "" },
		userSet: func(e *models.Event) bool { return e.UserModifiedColor },
		apply: func(e, p *models.Event) {
			e.BackgroundColor = p.BackgroundColor
			e.ColorID = p.ColorID
		},
	},
}

// CopyOverPreviousEventDefaults applies a similar previous event's flagged
// fields onto a new event, never overwriting explicit user values. Returns
// the names of the fields that were copied.
func CopyOverPreviousEventDefaults(event, previous *models.Event) []string {
	var applied []string
	for _, rule := range previousEventCopyRules {
		if !rule.offered(previous) || rule.userSet(event) {
			continue
		}
		rule.apply(event, previous)
		applied = append(applied, rule.name)
	}
	return applied
}

// CreateRemindersFromMinutesAndEvent materializes reminder rows for an
// event from default offsets.
func CreateRemindersFromMinutesAndEvent(event *models.Event, minutes []int, useDefault bool, timezone string) []models.Reminder {
	reminders := make([]models.Reminder, 0, len(minutes))
	for _, m := range minutes {
		reminders = append(reminders, models.Reminder{
			ID:         uuid.NewString(),
			UserID:     event.UserID,
			EventID:    event.ID,
			Minutes:    m,
			UseDefault: useDefault,
			Timezone:   timezone,
			CreatedAt:  time.Now(),
		})
	}
	return reminders
}
