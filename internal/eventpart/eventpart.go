// Package eventpart decomposes events into solver-ready fragments. An event
// becomes an ordered group of fixed-length parts; buffers join their
// parent's group before dispatch so the solver keeps them adjacent.
package eventpart

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/starford/dagaz/internal/availability"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/timeutil"
)

// PartLength and PartLengthLite are the fragment sizes in minutes; they
// match the slot granularities of the availability generator.
const (
	PartLength     = availability.SlotGranularity
	PartLengthLite = availability.SlotGranularityLite
)

// EventPart is one schedulable fragment of an event. Parts of the same
// group share a GroupID and are numbered 0..LastPart contiguously.
type EventPart struct {
	Event    models.Event
	GroupID  string
	Part     int
	LastPart int
}

// GenerateEventParts splits an event into 15-minute parts. A single-session
// event yields one part (part=0, lastPart=0). All-day events are excluded
// from solving and yield no parts.
func GenerateEventParts(event models.Event) []EventPart {
	return generateParts(event, PartLength)
}

// GenerateEventPartsLite splits an event into coarse 30-minute parts.
func GenerateEventPartsLite(event models.Event) []EventPart {
	return generateParts(event, PartLengthLite)
}

func generateParts(event models.Event, partLen int) []EventPart {
	if event.AllDay {
		return nil
	}
	minutes := event.DurationMinutes()
	if minutes <= 0 {
		return nil
	}

	count := minutes / partLen
	if minutes%partLen != 0 {
		count++
	}
	if count < 1 {
		count = 1
	}

	parts := make([]EventPart, 0, count)
	for i := 0; i < count; i++ {
		parts = append(parts, EventPart{
			Event:    event,
			GroupID:  event.ID,
			Part:     i,
			LastPart: count - 1,
		})
	}
	return parts
}

// ModifyEventPartsForMultiplePreBufferTime joins every pre-buffer in the
// part list to its parent's group.
func ModifyEventPartsForMultiplePreBufferTime(parts []EventPart) []EventPart {
	for _, forEventID := range bufferParents(parts, true) {
		parts = ModifyEventPartsForSingularPreBufferTime(parts, forEventID)
	}
	return parts
}

// ModifyEventPartsForMultiplePostBufferTime joins every post-buffer in the
// part list to its parent's group.
func ModifyEventPartsForMultiplePostBufferTime(parts []EventPart) []EventPart {
	for _, forEventID := range bufferParents(parts, false) {
		parts = ModifyEventPartsForSingularPostBufferTime(parts, forEventID)
	}
	return parts
}

// ModifyEventPartsForSingularPreBufferTime merges the pre-buffer parts for
// one parent into the parent's group: buffer parts come first, the whole
// group gets a fresh group id and is renumbered 0..lastPart.
func ModifyEventPartsForSingularPreBufferTime(parts []EventPart, forEventID string) []EventPart {
	buffer := indexesOf(parts, func(p EventPart) bool {
		return p.Event.IsPreEvent && p.Event.ForEventID == forEventID
	})
	group := parentGroup(parts, forEventID, buffer)
	if len(buffer) == 0 || len(group) == 0 {
		return parts
	}
	renumberGroup(parts, append(buffer, group...))
	return parts
}

// ModifyEventPartsForSingularPostBufferTime merges the post-buffer parts
// for one parent into the parent's group, buffer parts last.
func ModifyEventPartsForSingularPostBufferTime(parts []EventPart, forEventID string) []EventPart {
	buffer := indexesOf(parts, func(p EventPart) bool {
		return p.Event.IsPostEvent && p.Event.ForEventID == forEventID
	})
	group := parentGroup(parts, forEventID, buffer)
	if len(buffer) == 0 || len(group) == 0 {
		return parts
	}
	renumberGroup(parts, append(group, buffer...))
	return parts
}

// parentGroup collects the indexes of every part currently sharing the
// parent's group, ordered by part number and excluding the joining buffer.
// A pre buffer that already joined stays in place when the post buffer joins.
func parentGroup(parts []EventPart, forEventID string, joining []int) []int {
	skip := make(map[int]bool, len(joining))
	for _, i := range joining {
		skip[i] = true
	}

	groupID := ""
	for i, p := range parts {
		if p.Event.ID == forEventID && !skip[i] {
			groupID = p.GroupID
			break
		}
	}
	if groupID == "" {
		return nil
	}

	group := indexesOf(parts, func(p EventPart) bool {
		return p.GroupID == groupID
	})
	out := group[:0]
	for _, i := range group {
		if !skip[i] {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return parts[out[a]].Part < parts[out[b]].Part })
	return out
}

// renumberGroup rewrites one group in the given order under a fresh id.
func renumberGroup(parts []EventPart, ordered []int) {
	groupID := uuid.NewString()
	last := len(ordered) - 1
	for n, idx := range ordered {
		parts[idx].GroupID = groupID
		parts[idx].Part = n
		parts[idx].LastPart = last
	}
}

func indexesOf(parts []EventPart, match func(EventPart) bool) []int {
	var out []int
	for i, p := range parts {
		if match(p) {
			out = append(out, i)
		}
	}
	return out
}

// bufferParents returns the distinct parent ids of the buffer parts present,
// in first-seen order.
func bufferParents(parts []EventPart, pre bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range parts {
		isBuffer := p.Event.IsPostEvent
		if pre {
			isBuffer = p.Event.IsPreEvent
		}
		if !isBuffer || p.Event.ForEventID == "" || seen[p.Event.ForEventID] {
			continue
		}
		seen[p.Event.ForEventID] = true
		out = append(out, p.Event.ForEventID)
	}
	return out
}

// SetPreferredTimeForUnmodifiableEvent soft-pins an event the user must not
// move: the part keeps its current local weekday and start time as a
// preference, so the solver plans around it without relocating it. The part
// itself is then marked modifiable so the solver may still place it at its
// pinned slot.
func SetPreferredTimeForUnmodifiableEvent(part *EventPart, hostLoc *time.Location) {
	if part.Event.Modifiable {
		return
	}
	start := part.Event.StartDate.In(hostLoc)
	if part.Event.PreferredDayOfWeek == 0 {
		part.Event.PreferredDayOfWeek = timeutil.ISODay(start)
	}
	if part.Event.PreferredTime == "" {
		part.Event.PreferredTime = timeutil.ClockOf(start).String()
	}
	part.Event.Modifiable = true
}

// TagEventsForDailyOrWeeklyTask copies task-list membership from each
// parent onto its buffer parts; untagged parts pass through unchanged.
func TagEventsForDailyOrWeeklyTask(parts []EventPart) []EventPart {
	byID := make(map[string]models.Event, len(parts))
	for _, p := range parts {
		byID[p.Event.ID] = p.Event
	}
	for i := range parts {
		forID := parts[i].Event.ForEventID
		if forID == "" {
			continue
		}
		parent, ok := byID[forID]
		if !ok {
			continue
		}
		parts[i].Event.TaskID = parent.TaskID
		parts[i].Event.DailyTaskList = parent.DailyTaskList
		parts[i].Event.WeeklyTaskList = parent.WeeklyTaskList
	}
	return parts
}

// FormatEventPartForPlanner projects one part of an internal attendee into
// the solver wire shape. Priority resolves explicit > inherited default > 1;
// preferred day/time are only carried for events that are not freely
// modifiable.
func FormatEventPartForPlanner(
	part EventPart,
	hostID string,
	user planner.UserPlannerRequestBody,
	ranges []models.PreferredTimeRange,
	totalWorkingHours float64,
	hostLoc *time.Location,
) planner.EventPartPlannerRequestBody {
	return formatPart(part, hostID, user, ranges, totalWorkingHours, hostLoc)
}

// FormatEventPartForPlannerExternal projects one part of an external
// attendee; their working hours come from their own observed events.
func FormatEventPartForPlannerExternal(
	part EventPart,
	hostID string,
	user planner.UserPlannerRequestBody,
	attendeeEvents []models.AttendeeEvent,
	hostLoc *time.Location,
) planner.EventPartPlannerRequestBody {
	hours := availability.TotalWorkingHoursForExternalAttendee(
		attendeeEvents, part.Event.StartDate.In(hostLoc), hostLoc)
	return formatPart(part, hostID, user, nil, hours, hostLoc)
}

func formatPart(
	part EventPart,
	hostID string,
	user planner.UserPlannerRequestBody,
	ranges []models.PreferredTimeRange,
	totalWorkingHours float64,
	hostLoc *time.Location,
) planner.EventPartPlannerRequestBody {
	ev := part.Event

	priority := ev.Priority
	if priority <= 0 {
		priority = 1
	}

	body := planner.EventPartPlannerRequestBody{
		GroupID:  part.GroupID,
		EventID:  ev.ID,
		Part:     part.Part,
		LastPart: part.LastPart,

		StartDate: timeutil.LocalDateTime(ev.StartDate.In(hostLoc)),
		EndDate:   timeutil.LocalDateTime(ev.EndDate.In(hostLoc)),

		UserID:    user.ID,
		HostID:    hostID,
		MeetingID: ev.MeetingID,

		TaskID:         ev.TaskID,
		DailyTaskList:  ev.DailyTaskList,
		WeeklyTaskList: ev.WeeklyTaskList,

		Gap: ev.IsBreak,

		Priority:   priority,
		Modifiable: ev.Modifiable,

		IsPreEvent:  ev.IsPreEvent,
		IsPostEvent: ev.IsPostEvent,
		ForEventID:  ev.ForEventID,

		TotalWorkingHours: totalWorkingHours,

		User: user,
		Event: planner.EventPlannerRequestBody{
			ID:     ev.ID,
			UserID: user.ID,
			HostID: hostID,
		},
	}

	if ev.HardDeadline != nil {
		body.HardDeadline = timeutil.LocalDateTime(ev.HardDeadline.In(hostLoc))
	}
	if ev.SoftDeadline != nil {
		body.SoftDeadline = timeutil.LocalDateTime(ev.SoftDeadline.In(hostLoc))
	}

	// A freely modifiable event gives the solver the whole search space;
	// preferences only constrain events the user positioned deliberately.
	if !ev.Modifiable || ev.PreferredTime != "" || ev.PreferredDayOfWeek != 0 {
		body.PreferredDayOfWeek = string(timeutil.DayOfWeekFromISO(ev.PreferredDayOfWeek))
		body.PreferredTime = ev.PreferredTime
		body.PreferredStartTimeRange = ev.PreferredStartTimeRange
		body.PreferredEndTimeRange = ev.PreferredEndTimeRange
	}

	for _, r := range ranges {
		if r.EventID != ev.ID {
			continue
		}
		body.Event.PreferredTimeRanges = append(body.Event.PreferredTimeRanges,
			planner.PreferredTimeRangeRequest{
				DayOfWeek: string(timeutil.DayOfWeekFromISO(r.DayOfWeek)),
				StartTime: r.StartTime,
				EndTime:   r.EndTime,
				EventID:   r.EventID,
				UserID:    r.UserID,
				HostID:    hostID,
			})
	}
	return body
}
