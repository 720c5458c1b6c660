// Package breaks synthesizes break and buffer pseudo-events. Breaks reserve
// personal time so a day's meeting load stays under the user's workload
// limits; buffers reserve transition time immediately around a parent event.
package breaks

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/availability"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/timeutil"
)

// MinBreakLength is the floor for a synthesized break, in minutes.
const MinBreakLength = 15

// BreakSummary is the title given to synthesized break events.
const BreakSummary = "Break"

// BufferSummary is the title given to synthesized buffer events.
const BufferSummary = "Buffer time"

// BreakLengthFor returns the user's break length floored at MinBreakLength.
func BreakLengthFor(pref *models.UserPreference) int {
	if pref == nil || pref.BreakLength < MinBreakLength {
		return MinBreakLength
	}
	return pref.BreakLength
}

// RequiredBreakMinutes is the day's break quota: the larger of the minimum
// break count times break length, and the share of working hours the user
// wants kept free of meetings. A zero MaxWorkLoadPercent means no workload
// limit.
func RequiredBreakMinutes(workingHours float64, pref *models.UserPreference) int {
	if pref == nil {
		return 0
	}
	quota := pref.MinNumberOfBreaks * BreakLengthFor(pref)
	if pref.MaxWorkLoadPercent > 0 && pref.MaxWorkLoadPercent < 100 {
		free := int(workingHours * 60 * (1 - float64(pref.MaxWorkLoadPercent)/100))
		if free > quota {
			quota = free
		}
	}
	return quota
}

// ShouldGenerateBreakEventsForDay reports whether the day still needs break
// events: the existing break time does not cover the quota, or the meeting
// count has overflowed the user's maximum.
func ShouldGenerateBreakEventsForDay(workingHours float64, pref *models.UserPreference, dayEvents []models.Event) bool {
	if pref == nil || workingHours <= 0 {
		return false
	}
	if breakMinutes(dayEvents) < RequiredBreakMinutes(workingHours, pref) {
		return true
	}
	if pref.MaxNumberOfMeetings > 0 && meetingCount(dayEvents) > pref.MaxNumberOfMeetings {
		return true
	}
	return false
}

// GenerateBreaks creates n unplaced break skeletons inheriting the user's
// break color. Callers place them into concrete slots afterwards.
func GenerateBreaks(userID, calendarID string, pref *models.UserPreference, n int) []models.Event {
	events := make([]models.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, newBreakEvent(userID, calendarID, pref))
	}
	return events
}

// GenerateBreakEventsForDay places the day's missing breaks into the largest
// remaining free slots, first-fit by slot size with earliest start breaking
// ties. Days where no slot fits a break are skipped.
func GenerateBreakEventsForDay(userID, calendarID string, pref *models.UserPreference, day time.Time, slots []availability.TimeSlot, dayEvents []models.Event, hostLoc *time.Location) []models.Event {
	workingHours := availability.TotalWorkingHoursForInternalAttendee(pref, day)
	if !ShouldGenerateBreakEventsForDay(workingHours, pref, dayEvents) {
		return nil
	}

	remaining := pref.MinNumberOfBreaks - breakCount(dayEvents)
	if remaining <= 0 {
		return nil
	}

	breakLen := BreakLengthFor(pref)
	spans := coalesceSlots(slots)

	var placed []models.Event
	for len(placed) < remaining {
		idx := largestSpan(spans)
		if idx < 0 || spans[idx].length() < breakLen {
			break // nothing left that fits
		}
		ev := newBreakEvent(userID, calendarID, pref)
		ev.StartDate = timeutil.AtClock(day.In(hostLoc), clockFromMinutes(spans[idx].start))
		ev.EndDate = ev.StartDate.Add(time.Duration(breakLen) * time.Minute)
		ev.Timezone = hostLoc.String()
		placed = append(placed, ev)
		spans[idx].start += breakLen
	}

	if len(placed) < remaining {
		slog.Info("not enough free slot space for all breaks, day partially covered",
			slog.String("userId", userID),
			slog.String("date", timeutil.DateKey(day.In(hostLoc))),
			slog.Int("placed", len(placed)),
			slog.Int("wanted", remaining))
	}
	return placed
}

// GenerateBreakEventsForDate runs per-day break generation over a window,
// deriving each day's free slots from the user's preference and the events
// already committed that day.
func GenerateBreakEventsForDate(userID, calendarID string, pref *models.UserPreference, windowStart, windowEnd time.Time, events []models.Event, hostLoc *time.Location) []models.Event {
	if pref == nil {
		return nil
	}

	var generated []models.Event
	start := windowStart.In(hostLoc)
	for day := timeutil.StartOfDay(start); day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		dayEnd := day.AddDate(0, 0, 1)
		dayEvents := eventsInRange(events, day, dayEnd)

		isFirstDay := timeutil.SameDate(day, start)
		hostStart := day
		if isFirstDay {
			hostStart = start
		}
		slots := availability.GenerateTimeSlotsForInternalAttendee(
			hostStart, userID, pref, hostLoc, hostLoc, isFirstDay, busyFromEvents(dayEvents))

		generated = append(generated,
			GenerateBreakEventsForDay(userID, calendarID, pref, day, slots, dayEvents, hostLoc)...)
	}
	return generated
}

// BufferResult carries a parent event with its synthesized buffer
// pseudo-events. NewEvent is always the (possibly updated) parent.
type BufferResult struct {
	BeforeEvent *models.Event
	AfterEvent  *models.Event
	NewEvent    *models.Event
}

// CreateBufferTimeForNewMeetingEvent synthesizes pre/post pseudo-events
// touching the parent's start and end. Non-modifiable and external-meeting
// parents are left alone unless their per-kind modifiable flag is set.
func CreateBufferTimeForNewMeetingEvent(event *models.Event, spec models.BufferTime) BufferResult {
	result := BufferResult{NewEvent: event}
	if spec.BeforeEvent <= 0 && spec.AfterEvent <= 0 {
		return result
	}
	if !bufferEligible(event) {
		slog.Info("event not eligible for buffer time, skipping",
			slog.String("eventId", event.ID))
		return result
	}

	event.TimeBlocking = &models.BufferTime{BeforeEvent: spec.BeforeEvent, AfterEvent: spec.AfterEvent}

	if spec.BeforeEvent > 0 {
		pre := newBufferEvent(event)
		pre.IsPreEvent = true
		pre.EndDate = event.StartDate
		pre.StartDate = event.StartDate.Add(-time.Duration(spec.BeforeEvent) * time.Minute)
		pre.Duration = spec.BeforeEvent
		event.PreEventID = pre.ID
		result.BeforeEvent = &pre
	}
	if spec.AfterEvent > 0 {
		post := newBufferEvent(event)
		post.IsPostEvent = true
		post.StartDate = event.EndDate
		post.EndDate = event.EndDate.Add(time.Duration(spec.AfterEvent) * time.Minute)
		post.Duration = spec.AfterEvent
		event.PostEventID = post.ID
		result.AfterEvent = &post
	}
	return result
}

func bufferEligible(e *models.Event) bool {
	if e.IsExternalMeeting {
		return e.IsExternalMeetingModifiable
	}
	if !e.Modifiable {
		return e.IsMeetingModifiable
	}
	return true
}

func newBreakEvent(userID, calendarID string, pref *models.UserPreference) models.Event {
	ev := models.Event{
		ID:         uuid.NewString(),
		UserID:     userID,
		CalendarID: calendarID,
		Summary:    BreakSummary,
		Duration:   BreakLengthFor(pref),
		IsBreak:    true,
		Modifiable: true,
		Method:     "create",
	}
	if pref != nil {
		ev.BackgroundColor = pref.BreakColor
	}
	return ev
}

func newBufferEvent(parent *models.Event) models.Event {
	return models.Event{
		ID:         uuid.NewString(),
		UserID:     parent.UserID,
		CalendarID: parent.CalendarID,
		Summary:    BufferSummary,
		Timezone:   parent.Timezone,
		ForEventID: parent.ID,
		Modifiable: true,
		Method:     "create",
	}
}

// span is a free interval within one day, in minutes since midnight.
type span struct{ start, end int }

func (s span) length() int { return s.end - s.start }

// coalesceSlots merges adjacent slots into maximal free intervals.
func coalesceSlots(slots []availability.TimeSlot) []span {
	minutes := make([]span, 0, len(slots))
	for _, s := range slots {
		start, err := timeutil.ParseClock(s.StartTime)
		if err != nil {
			continue
		}
		end, err := timeutil.ParseClock(s.EndTime)
		if err != nil {
			continue
		}
		minutes = append(minutes, span{start: start.Minutes(), end: end.Minutes()})
	}
	sort.Slice(minutes, func(i, j int) bool { return minutes[i].start < minutes[j].start })

	var spans []span
	for _, m := range minutes {
		if n := len(spans); n > 0 && spans[n-1].end == m.start {
			spans[n-1].end = m.end
			continue
		}
		spans = append(spans, m)
	}
	return spans
}

// largestSpan picks the longest free interval, earliest start on ties.
func largestSpan(spans []span) int {
	best := -1
	for i, s := range spans {
		if s.length() <= 0 {
			continue
		}
		if best < 0 || s.length() > spans[best].length() ||
			(s.length() == spans[best].length() && s.start < spans[best].start) {
			best = i
		}
	}
	return best
}

func clockFromMinutes(m int) timeutil.Clock {
	return timeutil.Clock{Hour: m / 60, Minute: m % 60}
}

func breakMinutes(events []models.Event) int {
	total := 0
	for i := range events {
		if events[i].IsBreak && !events[i].Deleted {
			total += events[i].DurationMinutes()
		}
	}
	return total
}

func breakCount(events []models.Event) int {
	n := 0
	for i := range events {
		if events[i].IsBreak && !events[i].Deleted {
			n++
		}
	}
	return n
}

func meetingCount(events []models.Event) int {
	n := 0
	for i := range events {
		if events[i].Deleted || events[i].IsBreak {
			continue
		}
		if events[i].IsMeeting || events[i].IsExternalMeeting {
			n++
		}
	}
	return n
}

func eventsInRange(events []models.Event, start, end time.Time) []models.Event {
	var out []models.Event
	for i := range events {
		if timeutil.Overlaps(events[i].StartDate, events[i].EndDate, start, end) {
			out = append(out, events[i])
		}
	}
	return out
}

func busyFromEvents(events []models.Event) []availability.Busy {
	busy := make([]availability.Busy, 0, len(events))
	for i := range events {
		if events[i].Deleted || events[i].AllDay {
			continue
		}
		busy = append(busy, availability.Busy{
			Start:   events[i].StartDate,
			End:     events[i].EndDate,
			IsBreak: events[i].IsBreak,
		})
	}
	return busy
}
