package models

import "time"

// Reserved category names attached from attendee composition rather than
// similarity matching.
const (
	CategoryMeeting         = "Meeting"
	CategoryExternalMeeting = "External Meeting"
)

// Category is a learned label with reusable defaults for matching events.
type Category struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index" json:"userId"`
	Name   string `json:"name"`

	Color                string      `json:"color,omitempty"`
	DefaultReminders     []int       `gorm:"serializer:json" json:"defaultReminders,omitempty"`
	DefaultTimeBlocking  *BufferTime `gorm:"serializer:json" json:"defaultTimeBlocking,omitempty"`
	DefaultPriorityLevel int         `json:"defaultPriorityLevel,omitempty"`
	DefaultModifiable    bool        `json:"defaultModifiable"`
	DefaultIsBreak       bool        `json:"defaultIsBreak"`
	DefaultIsMeeting     bool        `json:"defaultIsMeeting"`
	DefaultIsExternalMeeting bool    `json:"defaultIsExternalMeeting"`
	DefaultMeetingModifiable bool    `json:"defaultMeetingModifiable"`
	DefaultExternalMeetingModifiable bool `json:"defaultExternalMeetingModifiable"`

	// Copy flags: which defaults this category is willing to hand out.
	CopyAvailability      bool `json:"copyAvailability"`
	CopyTimeBlocking      bool `json:"copyTimeBlocking"`
	CopyTimePreference    bool `json:"copyTimePreference"`
	CopyReminders         bool `json:"copyReminders"`
	CopyPriorityLevel     bool `json:"copyPriorityLevel"`
	CopyModifiable        bool `json:"copyModifiable"`
	CopyIsBreak           bool `json:"copyIsBreak"`
	CopyIsMeeting         bool `json:"copyIsMeeting"`
	CopyIsExternalMeeting bool `json:"copyIsExternalMeeting"`
	CopyColor             bool `json:"copyColor"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`
}

// CategoryEvent links a category to an event with the similarity score the
// classifier assigned at match time.
type CategoryEvent struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	CategoryID string    `gorm:"index" json:"categoryId"`
	EventID    string    `gorm:"index" json:"eventId"`
	UserID     string    `json:"userId"`
	Score      float64   `json:"score"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"createdDate"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
