// Package timeutil provides timezone-aware day and clock arithmetic shared
// by the scheduling pipeline. Wire formats (clock strings, month-day keys)
// match the solver contract.
package timeutil

import (
	"fmt"
	"time"
)

// DayOfWeek is the solver wire representation of a weekday.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

var isoDayNames = [8]DayOfWeek{"", Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOfWeekFromISO converts an ISO weekday number (1=Monday..7=Sunday).
// Out-of-range values return the empty string.
func DayOfWeekFromISO(day int) DayOfWeek {
	if day < 1 || day > 7 {
		return ""
	}
	return isoDayNames[day]
}

// ISODay returns the ISO weekday number (1=Monday..7=Sunday) of t.
func ISODay(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ISODayOf returns the ISO weekday number for a DayOfWeek name, or 0 when
// the name is unknown.
func ISODayOf(d DayOfWeek) int {
	for i := 1; i <= 7; i++ {
		if isoDayNames[i] == d {
			return i
		}
	}
	return 0
}

// Clock is a wall-clock time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

// ClockOf extracts the wall-clock time of t.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// String renders the solver wire format "HH:mm:ss".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:00", c.Hour, c.Minute)
}

// Minutes returns the clock value as minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is strictly earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// ParseClock parses "HH:mm:ss" or "HH:mm".
func ParseClock(s string) (Clock, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err2 := fmt.Sscanf(s, "%d:%d", &h, &m); err2 != nil {
			return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("parse clock %q: out of range", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

// MonthDay renders the solver month-day key "--MM-DD" for t.
func MonthDay(t time.Time) string {
	return fmt.Sprintf("--%02d-%02d", int(t.Month()), t.Day())
}

// ParseMonthDay parses a "--MM-DD" key into month and day numbers.
func ParseMonthDay(s string) (time.Month, int, error) {
	var m, d int
	if _, err := fmt.Sscanf(s, "--%d-%d", &m, &d); err != nil {
		return 0, 0, fmt.Errorf("parse month-day %q: %w", s, err)
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return 0, 0, fmt.Errorf("parse month-day %q: out of range", s)
	}
	return time.Month(m), d, nil
}

// DateKey renders "YYYY-MM-DD" for t.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// LocalDateTime renders the solver local timestamp format
// "YYYY-MM-DDTHH:mm:ss" (no offset).
func LocalDateTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// ParseLocalDateTime parses "YYYY-MM-DDTHH:mm:ss" as a wall-clock time in loc.
func ParseLocalDateTime(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local datetime %q: %w", s, err)
	}
	return t, nil
}

// InZoneKeepWall reinterprets the wall-clock reading of t in loc, i.e. the
// same year/month/day/hour/minute but a different zone.
func InZoneKeepWall(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// AtClock returns t's date in its own location combined with the given clock.
func AtClock(t time.Time, c Clock) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CeilToGranularity rounds t up to the next multiple of gran minutes within
// the hour. A time already on a boundary is unchanged.
func CeilToGranularity(t time.Time, gran int) time.Time {
	if gran <= 0 {
		return t
	}
	rem := t.Minute() % gran
	if rem == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	add := gran - rem
	rounded := t.Add(time.Duration(add) * time.Minute)
	return time.Date(rounded.Year(), rounded.Month(), rounded.Day(), rounded.Hour(), rounded.Minute(), 0, 0, rounded.Location())
}

// SameDate reports whether a and b fall on the same calendar date when both
// are read in their own locations.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Overlaps reports whether [aStart,aEnd) intersects [bStart,bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// MinutesBetween returns the whole minutes from start to end.
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}
