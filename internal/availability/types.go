// Package availability turns stored preferences (or, for external
// attendees, observed busy events) into solver-ready work-time windows and
// discretized time slots. All wire values are expressed in the host's
// timezone: the solver plans in the host frame.
package availability

import (
	"time"

	"github.com/starford/dagaz/internal/timeutil"
)

// SlotGranularity is the discretization step for time slots, in minutes.
// The lite variants use a coarser step for first-pass scheduling.
const (
	SlotGranularity     = 15
	SlotGranularityLite = 30
)

// WorkTime is a per-weekday availability window for one attendee, with
// clock boundaries already translated into the host's timezone.
type WorkTime struct {
	DayOfWeek timeutil.DayOfWeek `json:"dayOfWeek"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime"`
	UserID    string             `json:"userId"`
	HostID    string             `json:"hostId"`
}

// TimeSlot is a concrete, date-bound, conflict-free sub-interval of a
// WorkTime in the host's timezone.
type TimeSlot struct {
	DayOfWeek timeutil.DayOfWeek `json:"dayOfWeek"`
	StartTime string             `json:"startTime"`
	EndTime   string             `json:"endTime"`
	HostID    string             `json:"hostId"`
	MonthDay  string             `json:"monthDay"`
	Date      string             `json:"date"`
}

// Busy is a committed interval on an attendee's calendar. Break intervals
// do not block slots; they are themselves reschedulable.
type Busy struct {
	Start   time.Time
	End     time.Time
	IsBreak bool
}
