package models

import "time"

// DayTime is a wall-clock boundary for one ISO weekday (1=Monday..7=Sunday).
type DayTime struct {
	Day     int `json:"day"`
	Hour    int `json:"hour"`
	Minutes int `json:"minutes"`
}

// UserPreference stores a user's durable scheduling preferences. A weekday
// missing from StartTimes/EndTimes means the user is unavailable that day.
type UserPreference struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex" json:"userId"`

	StartTimes []DayTime `gorm:"serializer:json" json:"startTimes"`
	EndTimes   []DayTime `gorm:"serializer:json" json:"endTimes"`

	MaxWorkLoadPercent  int    `json:"maxWorkLoadPercent"`
	MinNumberOfBreaks   int    `json:"minNumberOfBreaks"`
	BreakLength         int    `json:"breakLength"` // minutes
	BreakColor          string `json:"breakColor,omitempty"`
	BackToBackMeetings  bool   `json:"backToBackMeetings"`
	MaxNumberOfMeetings int    `json:"maxNumberOfMeetings"`

	// Default reminder offsets, in minutes, inherited by new events.
	Reminders []int `gorm:"serializer:json" json:"reminders,omitempty"`

	// Copy-flag defaults inherited by new events for this user.
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
	CopyColor             bool `json:"copyColor"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"createdDate"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StartFor returns the configured start boundary for an ISO weekday.
func (p *UserPreference) StartFor(isoDay int) (DayTime, bool) {
	for _, dt := range p.StartTimes {
		if dt.Day == isoDay {
			return dt, true
		}
	}
	return DayTime{}, false
}

// EndFor returns the configured end boundary for an ISO weekday.
func (p *UserPreference) EndFor(isoDay int) (DayTime, bool) {
	for _, dt := range p.EndTimes {
		if dt.Day == isoDay {
			return dt, true
		}
	}
	return DayTime{}, false
}
