// Package reconcile turns solver callbacks back into calendar state: it
// validates the response against the dispatched artifact, maps slots to
// absolute times, diffs against stored events and writes back only what
// changed.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/availability"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/timeutil"
)

// ValidateEventsFromPlanner checks that a callback's event parts round-trip
// to the originally submitted group/part/lastPart structure. Any mismatch
// means a corrupted or misdirected callback and surfaces as
// apperr.ErrIntegrity; nothing may be written afterwards.
func ValidateEventsFromPlanner(planned []planner.PlannedPart, submitted *planner.PlannerRequestBody) error {
	type key struct {
		groupID string
		part    int
	}
	want := make(map[key]planner.EventPartPlannerRequestBody, len(submitted.EventParts))
	for _, p := range submitted.EventParts {
		want[key{p.GroupID, p.Part}] = p
	}

	if len(planned) != len(submitted.EventParts) {
		return fmt.Errorf("callback carries %d parts, submitted %d: %w",
			len(planned), len(submitted.EventParts), apperr.ErrIntegrity)
	}

	seen := make(map[key]bool, len(planned))
	groupSize := make(map[string]int)
	groupLast := make(map[string]int)
	for _, p := range planned {
		k := key{p.GroupID, p.Part}
		sub, ok := want[k]
		if !ok {
			return fmt.Errorf("part %d of group %s was never submitted: %w",
				p.Part, p.GroupID, apperr.ErrIntegrity)
		}
		if seen[k] {
			return fmt.Errorf("part %d of group %s duplicated in callback: %w",
				p.Part, p.GroupID, apperr.ErrIntegrity)
		}
		seen[k] = true
		if sub.EventID != p.EventID || sub.LastPart != p.LastPart {
			return fmt.Errorf("part %d of group %s does not round-trip (event %s/%s, lastPart %d/%d): %w",
				p.Part, p.GroupID, p.EventID, sub.EventID, p.LastPart, sub.LastPart, apperr.ErrIntegrity)
		}
		groupSize[p.GroupID]++
		groupLast[p.GroupID] = p.LastPart
	}

	for groupID, size := range groupSize {
		if size != groupLast[groupID]+1 {
			return fmt.Errorf("group %s has %d parts for lastPart %d: %w",
				groupID, size, groupLast[groupID], apperr.ErrIntegrity)
		}
	}
	return nil
}

// MonthDayFromSlot resolves a slot's "--MM-DD" coordinate to a concrete
// date in the host's timezone. The year comes from the planning window; a
// month earlier than the window start means the window crossed a year end.
func MonthDayFromSlot(slot *availability.TimeSlot, windowStart time.Time, hostLoc *time.Location) (time.Time, error) {
	month, day, err := timeutil.ParseMonthDay(slot.MonthDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperr.ErrIntegrity, err)
	}
	start := windowStart.In(hostLoc)
	year := start.Year()
	if month < start.Month() {
		year++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, hostLoc), nil
}

// FormatPlannerEventsToEventAndAdjustTime merges the scheduled parts of
// each event back into one contiguous interval: start from the first part's
// slot, end from the last part's. Current holds the stored events by id;
// parts for unknown events are an integrity violation.
func FormatPlannerEventsToEventAndAdjustTime(
	scheduled []planner.PlannedPart,
	current map[string]models.Event,
	windowStart time.Time,
	hostLoc *time.Location,
) ([]models.Event, error) {
	byEvent := make(map[string][]planner.PlannedPart)
	for _, p := range scheduled {
		if p.Timeslot == nil {
			return nil, fmt.Errorf("part %d of group %s has no timeslot: %w",
				p.Part, p.GroupID, apperr.ErrIntegrity)
		}
		byEvent[p.EventID] = append(byEvent[p.EventID], p)
	}

	eventIDs := make([]string, 0, len(byEvent))
	for id := range byEvent {
		eventIDs = append(eventIDs, id)
	}
	sort.Strings(eventIDs)

	out := make([]models.Event, 0, len(eventIDs))
	for _, id := range eventIDs {
		parts := byEvent[id]
		sort.Slice(parts, func(i, j int) bool { return parts[i].Part < parts[j].Part })

		event, ok := current[id]
		if !ok {
			return nil, fmt.Errorf("planned event %s not found in store: %w", id, apperr.ErrIntegrity)
		}

		start, err := slotTime(parts[0].Timeslot, parts[0].Timeslot.StartTime, windowStart, hostLoc)
		if err != nil {
			return nil, fmt.Errorf("event %s start: %w", id, err)
		}
		end, err := slotTime(parts[len(parts)-1].Timeslot, parts[len(parts)-1].Timeslot.EndTime, windowStart, hostLoc)
		if err != nil {
			return nil, fmt.Errorf("event %s end: %w", id, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("event %s resolves to an empty interval %s..%s: %w",
				id, start, end, apperr.ErrIntegrity)
		}

		event.StartDate = start
		event.EndDate = end
		event.Method = "update"
		if event.ProviderID == "" {
			event.Method = "create"
		}
		out = append(out, event)
	}
	return out, nil
}

func slotTime(slot *availability.TimeSlot, clockStr string, windowStart time.Time, hostLoc *time.Location) (time.Time, error) {
	date, err := MonthDayFromSlot(slot, windowStart, hostLoc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := timeutil.ParseClock(clockStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperr.ErrIntegrity, err)
	}
	return timeutil.AtClock(date, clock), nil
}

// CompareEventsToFilterUnequalEvents reports whether a write-back is
// actually required: true only when a tracked field differs. Comparing an
// event to itself is always false, which is what keeps replays from
// producing redundant provider calls.
func CompareEventsToFilterUnequalEvents(newEvent, oldEvent *models.Event) bool {
	switch {
	case !newEvent.StartDate.Equal(oldEvent.StartDate),
		!newEvent.EndDate.Equal(oldEvent.EndDate),
		newEvent.Summary != oldEvent.Summary,
		newEvent.Notes != oldEvent.Notes,
		newEvent.ConferenceID != oldEvent.ConferenceID,
		newEvent.ColorID != oldEvent.ColorID,
		newEvent.BackgroundColor != oldEvent.BackgroundColor,
		newEvent.RecurrenceRule != oldEvent.RecurrenceRule,
		newEvent.Priority != oldEvent.Priority:
		return true
	}
	return false
}
