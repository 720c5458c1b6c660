// Package models defines the domain types for dagaz.
package models

import "time"

// BufferTime is the pre/post padding, in minutes, reserved around an event.
type BufferTime struct {
	BeforeEvent int `json:"beforeEvent"`
	AfterEvent  int `json:"afterEvent"`
}

// Event is a calendar item. Satellite records (reminders, conferences,
// preferred time ranges, attendees) reference it by ID only; the event in
// turn holds foreign keys, never object references.
type Event struct {
	ID         string `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"index" json:"userId"`
	CalendarID string `gorm:"index" json:"calendarId"`
	// ProviderID is the id assigned by the external calendar provider once
	// the event has been pushed there.
	ProviderID string `json:"providerId,omitempty"`

	Summary  string `json:"summary,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	AllDay    bool      `json:"allDay"`
	// Duration in minutes; zero means derive from start/end.
	Duration int `json:"duration,omitempty"`

	Priority   int  `json:"priority"`
	Modifiable bool `json:"modifiable"`

	IsBreak                     bool `json:"isBreak"`
	IsMeeting                   bool `json:"isMeeting"`
	IsExternalMeeting           bool `json:"isExternalMeeting"`
	IsMeetingModifiable         bool `json:"isMeetingModifiable"`
	IsExternalMeetingModifiable bool `json:"isExternalMeetingModifiable"`

	// Buffer pseudo-event links. A pre/post event reserves time touching
	// its parent (ForEventID); buffers are regenerated with the parent and
	// never edited on their own.
	IsPreEvent  bool   `json:"isPreEvent"`
	IsPostEvent bool   `json:"isPostEvent"`
	ForEventID  string `gorm:"index" json:"forEventId,omitempty"`
	PreEventID  string `json:"preEventId,omitempty"`
	PostEventID string `json:"postEventId,omitempty"`

	TimeBlocking *BufferTime `gorm:"serializer:json" json:"timeBlocking,omitempty"`

	RecurrenceRule string `json:"recurrenceRule,omitempty"`

	ColorID         string `json:"colorId,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`

	ConferenceID string `json:"conferenceId,omitempty"`
	MeetingID    string `gorm:"index" json:"meetingId,omitempty"`
	TaskID       string `json:"taskId,omitempty"`
	TaskType     string `json:"taskType,omitempty"`

	DailyTaskList  bool `json:"dailyTaskList"`
	WeeklyTaskList bool `json:"weeklyTaskList"`

	PreferredDayOfWeek      int    `json:"preferredDayOfWeek,omitempty"` // ISO 1..7, 0 = unset
	PreferredTime           string `json:"preferredTime,omitempty"`      // "HH:mm:ss"
	PreferredStartTimeRange string `json:"preferredStartTimeRange,omitempty"`
	PreferredEndTimeRange   string `json:"preferredEndTimeRange,omitempty"`

	HardDeadline *time.Time `json:"hardDeadline,omitempty"`
	SoftDeadline *time.Time `json:"softDeadline,omitempty"`

	// Copy flags: which defaults this event is willing to inherit from a
	// matched category or a similar previous event.
	CopyAvailability      bool `json:"copyAvailability"`
	CopyTimeBlocking      bool `json:"copyTimeBlocking"`
	CopyTimePreference    bool `json:"copyTimePreference"`
	CopyReminders         bool `json:"copyReminders"`
	CopyPriorityLevel     bool `json:"copyPriorityLevel"`
	CopyModifiable        bool `json:"copyModifiable"`
	CopyCategories        bool `json:"copyCategories"`
	CopyIsBreak           bool `json:"copyIsBreak"`
	CopyIsMeeting         bool `json:"copyIsMeeting"`
	CopyIsExternalMeeting bool `json:"copyIsExternalMeeting"`
	CopyDuration          bool `json:"copyDuration"`
	CopyColor             bool `json:"copyColor"`

	// UserModified flags: fields the user set explicitly; defaults never
	// overwrite these.
	UserModifiedAvailability      bool `json:"userModifiedAvailability"`
	UserModifiedTimeBlocking      bool `json:"userModifiedTimeBlocking"`
	UserModifiedTimePreference    bool `json:"userModifiedTimePreference"`
	UserModifiedReminders         bool `json:"userModifiedReminders"`
	UserModifiedPriorityLevel     bool `json:"userModifiedPriorityLevel"`
	UserModifiedModifiable        bool `json:"userModifiedModifiable"`
	UserModifiedCategories        bool `json:"userModifiedCategories"`
	UserModifiedIsBreak           bool `json:"userModifiedIsBreak"`
	UserModifiedIsMeeting         bool `json:"userModifiedIsMeeting"`
	UserModifiedIsExternalMeeting bool `json:"userModifiedIsExternalMeeting"`
	UserModifiedDuration          bool `json:"userModifiedDuration"`
	UserModifiedColor             bool `json:"userModifiedColor"`

	// Method is the pending provider operation: "create" or "update".
	Method string `json:"method,omitempty"`

	Deleted   bool      `gorm:"index" json:"deleted"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DurationMinutes returns the explicit duration when set, otherwise the
// span between start and end.
func (e *Event) DurationMinutes() int {
	if e.Duration > 0 {
		return e.Duration
	}
	return int(e.EndDate.Sub(e.StartDate) / time.Minute)
}

// Reminder is a notification offset attached to an event, keyed by event id.
type Reminder struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"userId"`
	EventID    string    `gorm:"index" json:"eventId"`
	Minutes    int       `json:"minutes"`
	UseDefault bool      `json:"useDefault"`
	Timezone   string    `json:"timezone,omitempty"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Conference is a meeting-link record keyed by event id via Event.ConferenceID.
type Conference struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"userId"`
	CalendarID string    `json:"calendarId"`
	App        string    `json:"app"` // "zoom" or "google"
	Name       string    `json:"name,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	JoinURL    string    `json:"joinUrl,omitempty"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PreferredTimeRange is a soft placement preference for one event.
type PreferredTimeRange struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"index" json:"eventId"`
	UserID    string    `gorm:"index" json:"userId"`
	HostID    string    `json:"hostId"`
	DayOfWeek int       `json:"dayOfWeek,omitempty"` // ISO 1..7, 0 = any day
	StartTime string    `json:"startTime"`           // "HH:mm:ss"
	EndTime   string    `json:"endTime"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}
