package models

import "time"

// MeetingAssist is a pending multi-attendee scheduling request: the host's
// desired meeting plus the planning window to solve within.
type MeetingAssist struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index" json:"userId"` // host
	EventID string `json:"eventId,omitempty"`

	Summary  string `json:"summary,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	WindowStartDate time.Time `json:"windowStartDate"`
	WindowEndDate   time.Time `json:"windowEndDate"`

	Priority   int    `json:"priority"`
	Duration   int    `json:"duration"` // minutes
	CalendarID string `json:"calendarId"`

	BufferTime *BufferTime `gorm:"serializer:json" json:"bufferTime,omitempty"`

	EnableConference bool   `json:"enableConference"`
	ConferenceApp    string `json:"conferenceApp,omitempty"`

	UseDefaultAlarms bool  `json:"useDefaultAlarms"`
	Reminders        []int `gorm:"serializer:json" json:"reminders,omitempty"`

	AttendeeCount          int  `json:"attendeeCount"`
	AttendeeRespondedCount int  `json:"attendeeRespondedCount"`
	Cancelled              bool `json:"cancelled"`

	BackgroundColor string `json:"backgroundColor,omitempty"`

	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Attendee is a participant in a MeetingAssist. Internal attendees have a
// UserID with a stored preference record; external attendees are known only
// through their own busy events.
type Attendee struct {
	ID        string `gorm:"primaryKey" json:"id"`
	MeetingID string `gorm:"index" json:"meetingId"`
	HostID    string `gorm:"index" json:"hostId"`
	UserID    string `json:"userId"`

	Name         string `json:"name,omitempty"`
	PrimaryEmail string `json:"primaryEmail,omitempty"`
	Timezone     string `json:"timezone,omitempty"`

	ExternalAttendee bool `json:"externalAttendee"`

	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttendeeEvent is a busy event observed on an external attendee's own
// calendar; the only availability signal that exists for them.
type AttendeeEvent struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	AttendeeID string    `gorm:"index" json:"attendeeId"`
	MeetingID  string    `json:"meetingId,omitempty"`
	CalendarID string    `json:"calendarId,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Timezone   string    `json:"timezone,omitempty"`
	AllDay     bool      `json:"allDay"`
	ExternalUser bool    `json:"externalUser"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
