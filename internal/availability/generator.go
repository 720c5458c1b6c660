package availability

import (
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/timeutil"
)

// GenerateWorkTimesForInternalAttendee produces one WorkTime per weekday
// the user is available, reading the preference boundaries in the user's
// local time and translating them into the host's timezone. A weekday with
// no configured start or end is excluded. week anchors the translation to a
// concrete date (DST-correct); pass the window start.
func GenerateWorkTimesForInternalAttendee(hostID, userID string, pref *models.UserPreference, hostLoc, userLoc *time.Location, week time.Time) []WorkTime {
	if pref == nil {
		slog.Info("no preference record, skipping work time generation",
			slog.String("userId", userID), slog.String("hostId", hostID))
		return nil
	}

	var workTimes []WorkTime
	for isoDay := 1; isoDay <= 7; isoDay++ {
		start, okStart := pref.StartFor(isoDay)
		end, okEnd := pref.EndFor(isoDay)
		if !okStart || !okEnd {
			continue // unavailable that weekday
		}

		day := dateOfISODay(week.In(userLoc), isoDay)
		startLocal := time.Date(day.Year(), day.Month(), day.Day(), start.Hour, start.Minutes, 0, 0, userLoc)
		endLocal := time.Date(day.Year(), day.Month(), day.Day(), end.Hour, end.Minutes, 0, 0, userLoc)
		if !startLocal.Before(endLocal) {
			slog.Warn("malformed preference window, skipping weekday",
				slog.String("userId", userID), slog.Int("isoDay", isoDay))
			continue
		}

		workTimes = append(workTimes, WorkTime{
			DayOfWeek: timeutil.DayOfWeekFromISO(isoDay),
			StartTime: timeutil.ClockOf(startLocal.In(hostLoc)).String(),
			EndTime:   timeutil.ClockOf(endLocal.In(hostLoc)).String(),
			UserID:    userID,
			HostID:    hostID,
		})
	}
	return workTimes
}

// GenerateWorkTimesForExternalAttendee derives per-weekday windows from the
// attendee's own busy events: for each weekday with at least one event, the
// window spans the earliest start to the latest end seen on that weekday,
// read in the host's timezone.
func GenerateWorkTimesForExternalAttendee(hostID, userID string, events []models.AttendeeEvent, hostLoc *time.Location) []WorkTime {
	if len(events) == 0 {
		slog.Info("external attendee has no observed events, skipping work time generation",
			slog.String("userId", userID), slog.String("hostId", hostID))
		return nil
	}

	type window struct{ start, end time.Time }
	byDay := make(map[int]window)
	for _, ev := range events {
		start := eventTimeInHost(ev.StartDate, hostLoc)
		end := eventTimeInHost(ev.EndDate, hostLoc)
		isoDay := timeutil.ISODay(start)
		w, ok := byDay[isoDay]
		if !ok {
			byDay[isoDay] = window{start: start, end: end}
			continue
		}
		if clockBefore(start, w.start) {
			w.start = start
		}
		if clockBefore(w.end, end) {
			w.end = end
		}
		byDay[isoDay] = w
	}

	var workTimes []WorkTime
	for isoDay := 1; isoDay <= 7; isoDay++ {
		w, ok := byDay[isoDay]
		if !ok {
			continue
		}
		workTimes = append(workTimes, WorkTime{
			DayOfWeek: timeutil.DayOfWeekFromISO(isoDay),
			StartTime: timeutil.ClockOf(w.start).String(),
			EndTime:   timeutil.ClockOf(w.end).String(),
			UserID:    userID,
			HostID:    hostID,
		})
	}
	return workTimes
}

// GenerateTimeSlotsForInternalAttendee discretizes the user's work window
// on the day of hostStart into fixed-granularity slots, pruning slots that
// overlap committed non-break events. When isFirstDay is set, slots before
// hostStart (the "now" edge of the planning window) are dropped.
func GenerateTimeSlotsForInternalAttendee(hostStart time.Time, hostID string, pref *models.UserPreference, hostLoc, userLoc *time.Location, isFirstDay bool, busy []Busy) []TimeSlot {
	return generateDaySlots(hostStart, hostID, pref, hostLoc, userLoc, isFirstDay, busy, SlotGranularity)
}

// GenerateTimeSlotsLiteForInternalAttendee is the coarse variant; it omits
// same-day conflict pruning, which first-day edge cases don't need.
func GenerateTimeSlotsLiteForInternalAttendee(hostStart time.Time, hostID string, pref *models.UserPreference, hostLoc, userLoc *time.Location, isFirstDay bool) []TimeSlot {
	return generateDaySlots(hostStart, hostID, pref, hostLoc, userLoc, isFirstDay, nil, SlotGranularityLite)
}

// GenerateTimeSlotsForExternalAttendee discretizes the attendee's derived
// day window (from their own events) into slots, pruning their busy events.
func GenerateTimeSlotsForExternalAttendee(hostStart time.Time, hostID string, events []models.AttendeeEvent, hostLoc *time.Location, isFirstDay bool) []TimeSlot {
	window, ok := externalDayWindow(hostStart, events, hostLoc)
	if !ok {
		return nil
	}
	busy := make([]Busy, 0, len(events))
	for _, ev := range events {
		busy = append(busy, Busy{
			Start: eventTimeInHost(ev.StartDate, hostLoc),
			End:   eventTimeInHost(ev.EndDate, hostLoc),
		})
	}
	return sliceWindow(window.start, window.end, hostStart, hostID, hostLoc, isFirstDay, busy, SlotGranularity)
}

// GenerateTimeSlotsLiteForExternalAttendee is the coarse external variant
// without conflict pruning.
func GenerateTimeSlotsLiteForExternalAttendee(hostStart time.Time, hostID string, events []models.AttendeeEvent, hostLoc *time.Location, isFirstDay bool) []TimeSlot {
	window, ok := externalDayWindow(hostStart, events, hostLoc)
	if !ok {
		return nil
	}
	return sliceWindow(window.start, window.end, hostStart, hostID, hostLoc, isFirstDay, nil, SlotGranularityLite)
}

// TotalWorkingHoursForInternalAttendee sums the preference window length
// for the weekday of day (read in the host's timezone).
func TotalWorkingHoursForInternalAttendee(pref *models.UserPreference, day time.Time) float64 {
	if pref == nil {
		return 0
	}
	isoDay := timeutil.ISODay(day)
	start, okStart := pref.StartFor(isoDay)
	end, okEnd := pref.EndFor(isoDay)
	if !okStart || !okEnd {
		return 0
	}
	minutes := (end.Hour*60 + end.Minutes) - (start.Hour*60 + start.Minutes)
	if minutes <= 0 {
		return 0
	}
	return float64(minutes) / 60
}

// TotalWorkingHoursForExternalAttendee spans the attendee's earliest start
// to latest end among events on the same weekday as day. Zero means the
// attendee has no capacity that day; callers must report the exclusion.
func TotalWorkingHoursForExternalAttendee(events []models.AttendeeEvent, day time.Time, hostLoc *time.Location) float64 {
	window, ok := externalDayWindow(day, events, hostLoc)
	if !ok {
		return 0
	}
	minutes := timeutil.MinutesBetween(window.start, window.end)
	if minutes <= 0 {
		return 0
	}
	return float64(minutes) / 60
}

type dayWindow struct{ start, end time.Time }

// generateDaySlots handles the internal-attendee variants.
func generateDaySlots(hostStart time.Time, hostID string, pref *models.UserPreference, hostLoc, userLoc *time.Location, isFirstDay bool, busy []Busy, gran int) []TimeSlot {
	if pref == nil {
		slog.Info("no preference record, skipping slot generation", slog.String("hostId", hostID))
		return nil
	}

	hostDay := hostStart.In(hostLoc)
	userDay := hostStart.In(userLoc)
	isoDay := timeutil.ISODay(userDay)
	start, okStart := pref.StartFor(isoDay)
	end, okEnd := pref.EndFor(isoDay)
	if !okStart || !okEnd {
		return nil // unavailable that weekday
	}

	startLocal := time.Date(userDay.Year(), userDay.Month(), userDay.Day(), start.Hour, start.Minutes, 0, 0, userLoc)
	endLocal := time.Date(userDay.Year(), userDay.Month(), userDay.Day(), end.Hour, end.Minutes, 0, 0, userLoc)
	if !startLocal.Before(endLocal) {
		return nil
	}

	winStart := startLocal.In(hostLoc)
	winEnd := endLocal.In(hostLoc)
	// Keep the window on the host's calendar date.
	if !timeutil.SameDate(winStart, hostDay) {
		winStart = timeutil.StartOfDay(hostDay)
	}
	if !timeutil.SameDate(winEnd, hostDay) {
		winEnd = timeutil.StartOfDay(hostDay).AddDate(0, 0, 1)
	}

	return sliceWindow(winStart, winEnd, hostStart, hostID, hostLoc, isFirstDay, busy, gran)
}

// sliceWindow cuts [winStart, winEnd) into granularity-sized slots, dropping
// slots before hostStart on the first day and slots overlapping busy
// non-break intervals.
func sliceWindow(winStart, winEnd, hostStart time.Time, hostID string, hostLoc *time.Location, isFirstDay bool, busy []Busy, gran int) []TimeSlot {
	cursor := winStart
	if isFirstDay && hostStart.After(cursor) {
		cursor = timeutil.CeilToGranularity(hostStart.In(hostLoc), gran)
	}

	step := time.Duration(gran) * time.Minute
	var slots []TimeSlot
	for !cursor.Add(step).After(winEnd) {
		slotEnd := cursor.Add(step)
		if !overlapsBusy(cursor, slotEnd, busy) {
			slots = append(slots, TimeSlot{
				DayOfWeek: timeutil.DayOfWeekFromISO(timeutil.ISODay(cursor)),
				StartTime: timeutil.ClockOf(cursor).String(),
				EndTime:   timeutil.ClockOf(slotEnd).String(),
				HostID:    hostID,
				MonthDay:  timeutil.MonthDay(cursor),
				Date:      timeutil.DateKey(cursor),
			})
		}
		cursor = slotEnd
	}
	return slots
}

func overlapsBusy(start, end time.Time, busy []Busy) bool {
	for _, b := range busy {
		if b.IsBreak {
			continue
		}
		if timeutil.Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// externalDayWindow derives the attendee's window on the weekday of day.
func externalDayWindow(day time.Time, events []models.AttendeeEvent, hostLoc *time.Location) (dayWindow, bool) {
	hostDay := day.In(hostLoc)
	isoDay := timeutil.ISODay(hostDay)

	var found bool
	var earliest, latest timeutil.Clock
	for _, ev := range events {
		start := eventTimeInHost(ev.StartDate, hostLoc)
		if timeutil.ISODay(start) != isoDay {
			continue
		}
		end := eventTimeInHost(ev.EndDate, hostLoc)
		sc, ec := timeutil.ClockOf(start), timeutil.ClockOf(end)
		if !found {
			earliest, latest = sc, ec
			found = true
			continue
		}
		if sc.Before(earliest) {
			earliest = sc
		}
		if latest.Before(ec) {
			latest = ec
		}
	}
	if !found {
		return dayWindow{}, false
	}
	return dayWindow{
		start: timeutil.AtClock(hostDay, earliest),
		end:   timeutil.AtClock(hostDay, latest),
	}, true
}

// eventTimeInHost converts a stored event instant into the host frame.
func eventTimeInHost(t time.Time, hostLoc *time.Location) time.Time {
	return t.In(hostLoc)
}

// dateOfISODay returns the date within ref's week (Monday-based) that falls
// on the given ISO weekday, keeping ref's location.
func dateOfISODay(ref time.Time, isoDay int) time.Time {
	delta := isoDay - timeutil.ISODay(ref)
	return timeutil.StartOfDay(ref).AddDate(0, 0, delta)
}

// clockBefore compares only the wall-clock reading of two instants.
func clockBefore(a, b time.Time) bool {
	return timeutil.ClockOf(a).Before(timeutil.ClockOf(b))
}
