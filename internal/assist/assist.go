// Package assist orchestrates one scheduling run per pending meeting
// assist: gather attendees, prepare availability and event parts in
// parallel, assemble the solver request, persist the artifact and dispatch.
package assist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/availability"
	"github.com/starford/dagaz/internal/breaks"
	"github.com/starford/dagaz/internal/category"
	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/eventpart"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/repository"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/timeutil"
)

// DefaultMeetingDuration is used when an assist doesn't carry one.
const DefaultMeetingDuration = 30

// SolverClient dispatches an assembled request to the external solver.
type SolverClient interface {
	SolveDay(ctx context.Context, req *planner.PlannerRequestBody) error
}

// Deps collects the orchestrator's collaborators. Vectorizer is optional;
// without one the provisional meeting event skips category classification.
type Deps struct {
	Meetings    *repository.MeetingRepository
	Events      *repository.EventRepository
	Prefs       *repository.PreferenceRepository
	Ranges      *repository.PreferredTimeRangeRepository
	Reminders   *repository.ReminderRepository
	Conferences *repository.ConferenceRepository
	Categories  *repository.CategoryRepository
	Runs        *repository.RunRepository
	Artifacts   storage.Provider
	Solver      SolverClient
	Broker      *sse.Broker
	Vectorizer  category.Vectorizer

	CallbackURL string
	Delay       int64
}

// Orchestrator prepares and dispatches solver runs for pending meeting
// assists. One assist becomes one PlannerRun; a failed assist never aborts
// the others.
type Orchestrator struct {
	deps Deps
}

func New(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// ProcessPendingMeetingAssists dispatches every uncancelled assist whose
// window is still open. Per-assist failures are logged and skipped.
func (o *Orchestrator) ProcessPendingMeetingAssists(ctx context.Context, now time.Time) (int, error) {
	assists, err := o.deps.Meetings.ListPending(ctx, now)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for i := range assists {
		singletonID, err := o.Dispatch(ctx, &assists[i])
		if err != nil {
			slog.Error("meeting assist dispatch failed",
				slog.String("meetingId", assists[i].ID),
				slog.String("hostId", assists[i].UserID),
				slog.String("error", err.Error()))
			continue
		}
		slog.Info("meeting assist dispatched",
			slog.String("meetingId", assists[i].ID),
			slog.String("hostId", assists[i].UserID),
			slog.String("singletonId", singletonID))
		dispatched++
	}
	return dispatched, nil
}

// Dispatch prepares one assist end to end and hands it to the solver. It
// returns the run's correlation id.
func (o *Orchestrator) Dispatch(ctx context.Context, ma *models.MeetingAssist) (string, error) {
	hostLoc, err := loadLocation(ma.Timezone)
	if err != nil {
		return "", fmt.Errorf("meeting %s host timezone: %w", ma.ID, err)
	}

	attendees, err := o.deps.Meetings.ListAttendees(ctx, ma.ID)
	if err != nil {
		return "", err
	}
	if len(attendees) == 0 {
		return "", fmt.Errorf("meeting %s has no attendees: %w", ma.ID, apperr.ErrUnplannable)
	}

	singletonID := uuid.NewString()
	fileKey := "runs/" + singletonID

	conferenceID, err := o.ensureConference(ctx, ma)
	if err != nil {
		return "", err
	}

	results := make([]*prepared, len(attendees))
	g, gctx := errgroup.WithContext(ctx)
	for i := range attendees {
		g.Go(func() error {
			p, err := o.prepare(gctx, ma, &attendees[i], attendees, hostLoc, conferenceID)
			if err != nil {
				return fmt.Errorf("prepare attendee %s: %w", attendees[i].UserID, err)
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var contributions []planner.Contribution
	var rows []models.Event
	var reminders []models.Reminder
	var links []models.CategoryEvent
	for _, p := range results {
		if p.skipped {
			continue
		}
		contributions = append(contributions, p.contribution)
		rows = append(rows, p.events...)
		reminders = append(reminders, p.reminders...)
		links = append(links, p.links...)
	}
	if len(contributions) == 0 {
		return "", fmt.Errorf("meeting %s: no attendee has availability in the window: %w",
			ma.ID, apperr.ErrNoAvailability)
	}

	req, err := planner.Assemble(singletonID, ma.UserID, fileKey, o.deps.CallbackURL, o.deps.Delay, contributions)
	if err != nil {
		return "", err
	}

	if err := o.deps.Events.UpsertAll(ctx, rows); err != nil {
		return "", err
	}
	for i := range reminders {
		if err := o.deps.Reminders.Upsert(ctx, &reminders[i]); err != nil {
			return "", err
		}
	}
	if len(links) > 0 {
		if err := o.deps.Categories.CreateCategoryEvents(ctx, links); err != nil {
			slog.Warn("category links not stored",
				slog.String("meetingId", ma.ID), slog.String("error", err.Error()))
		}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal run artifact %s: %w", singletonID, err)
	}
	if err := o.deps.Artifacts.Put(fileKey, payload); err != nil {
		return "", err
	}

	run := &models.PlannerRun{
		SingletonID:      singletonID,
		HostID:           ma.UserID,
		MeetingID:        ma.ID,
		FileKey:          fileKey,
		ArtifactChecksum: checksum.Sum(payload),
		Status:           models.RunDispatched,
		WindowStartDate:  ma.WindowStartDate,
		WindowEndDate:    ma.WindowEndDate,
		HostTimezone:     hostLoc.String(),
		DispatchedAt:     time.Now(),
	}
	if err := o.deps.Runs.Create(ctx, run); err != nil {
		return "", err
	}
	o.publish(run, models.RunDispatched)

	if err := o.deps.Solver.SolveDay(ctx, req); err != nil {
		if failErr := o.deps.Runs.Fail(ctx, singletonID, err.Error()); failErr != nil {
			slog.Error("mark run failed", slog.String("singletonId", singletonID),
				slog.String("error", failErr.Error()))
		}
		o.publish(run, models.RunFailed)
		return "", err
	}

	if err := o.deps.Runs.Transition(ctx, singletonID, models.RunDispatched, models.RunAwaitingCallback); err != nil {
		// The callback may have already claimed the run; that is not a
		// dispatch failure.
		if !errors.Is(err, apperr.ErrConflict) {
			return "", err
		}
	}
	o.publish(run, models.RunAwaitingCallback)
	return singletonID, nil
}

// prepared is one attendee's contribution plus the rows it created.
type prepared struct {
	contribution planner.Contribution
	events       []models.Event
	reminders    []models.Reminder
	links        []models.CategoryEvent
	skipped      bool
}

func (o *Orchestrator) prepare(ctx context.Context, ma *models.MeetingAssist, att *models.Attendee, attendees []models.Attendee, hostLoc *time.Location, conferenceID string) (*prepared, error) {
	if att.ExternalAttendee {
		return o.prepareExternal(ctx, ma, att, hostLoc, conferenceID)
	}
	return o.prepareInternal(ctx, ma, att, attendees, hostLoc, conferenceID)
}

func (o *Orchestrator) prepareInternal(ctx context.Context, ma *models.MeetingAssist, att *models.Attendee, attendees []models.Attendee, hostLoc *time.Location, conferenceID string) (*prepared, error) {
	pref, err := o.deps.Prefs.GetForUser(ctx, att.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			slog.Info("attendee has no preference record, excluded from run",
				slog.String("meetingId", ma.ID), slog.String("userId", att.UserID))
			return &prepared{skipped: true}, nil
		}
		return nil, err
	}

	userLoc := hostLoc
	if att.Timezone != "" {
		loc, err := loadLocation(att.Timezone)
		if err != nil {
			slog.Warn("bad attendee timezone, falling back to host frame",
				slog.String("userId", att.UserID), slog.String("timezone", att.Timezone))
		} else {
			userLoc = loc
		}
	}

	workTimes := availability.GenerateWorkTimesForInternalAttendee(
		ma.UserID, att.UserID, pref, hostLoc, userLoc, ma.WindowStartDate)
	if len(workTimes) == 0 {
		slog.Info("attendee has no work times, excluded from run",
			slog.String("meetingId", ma.ID), slog.String("userId", att.UserID))
		return &prepared{skipped: true}, nil
	}

	userEvents, err := o.deps.Events.ListForUserGivenDates(ctx, att.UserID, ma.WindowStartDate, ma.WindowEndDate)
	if err != nil {
		return nil, err
	}
	busy := busyFromEvents(userEvents)

	var slots []availability.TimeSlot
	for i, day := range daysInWindow(ma.WindowStartDate, ma.WindowEndDate, hostLoc) {
		slots = append(slots, availability.GenerateTimeSlotsForInternalAttendee(
			day, ma.UserID, pref, hostLoc, userLoc, i == 0, busy)...)
	}
	if len(slots) == 0 {
		slog.Info("attendee has no free slots in the window, excluded from run",
			slog.String("meetingId", ma.ID), slog.String("userId", att.UserID))
		return &prepared{skipped: true}, nil
	}

	provisional := meetingEvent(ma, att, conferenceID)
	p := &prepared{}

	if att.UserID == ma.UserID {
		p.links = o.classify(ctx, ma, &provisional, attendees, &p.reminders)
	}
	if len(p.reminders) == 0 && (len(ma.Reminders) > 0 || ma.UseDefaultAlarms) {
		p.reminders = category.CreateRemindersFromMinutesAndEvent(
			&provisional, ma.Reminders, ma.UseDefaultAlarms, ma.Timezone)
	}

	newEvents := []models.Event{provisional}
	if provisional.TimeBlocking != nil {
		res := breaks.CreateBufferTimeForNewMeetingEvent(&provisional, *provisional.TimeBlocking)
		newEvents[0] = *res.NewEvent
		if res.BeforeEvent != nil {
			newEvents = append(newEvents, *res.BeforeEvent)
		}
		if res.AfterEvent != nil {
			newEvents = append(newEvents, *res.AfterEvent)
		}
	}
	newEvents = append(newEvents, breaks.GenerateBreakEventsForDate(
		att.UserID, ma.CalendarID, pref, ma.WindowStartDate, ma.WindowEndDate, userEvents, hostLoc)...)
	p.events = newEvents

	var parts []eventpart.EventPart
	for _, ev := range newEvents {
		parts = append(parts, eventpart.GenerateEventParts(ev)...)
	}
	for _, ev := range userEvents {
		parts = append(parts, eventpart.GenerateEventParts(ev)...)
	}
	parts = eventpart.ModifyEventPartsForMultiplePreBufferTime(parts)
	parts = eventpart.ModifyEventPartsForMultiplePostBufferTime(parts)
	parts = eventpart.TagEventsForDailyOrWeeklyTask(parts)
	for i := range parts {
		eventpart.SetPreferredTimeForUnmodifiableEvent(&parts[i], hostLoc)
	}

	user := planner.NewUserRequest(att.UserID, ma.UserID, pref, workTimes)
	bodies := make([]planner.EventPartPlannerRequestBody, 0, len(parts))
	for _, part := range parts {
		ranges, err := o.deps.Ranges.ListForEvent(ctx, part.Event.ID)
		if err != nil {
			slog.Warn("preferred time ranges unavailable",
				slog.String("eventId", part.Event.ID), slog.String("error", err.Error()))
			ranges = nil
		}
		hours := availability.TotalWorkingHoursForInternalAttendee(pref, part.Event.StartDate.In(hostLoc))
		bodies = append(bodies, eventpart.FormatEventPartForPlanner(part, ma.UserID, user, ranges, hours, hostLoc))
	}

	p.contribution = planner.Contribution{
		UserID:     att.UserID,
		User:       user,
		Timeslots:  slots,
		EventParts: bodies,
	}
	return p, nil
}

func (o *Orchestrator) prepareExternal(ctx context.Context, ma *models.MeetingAssist, att *models.Attendee, hostLoc *time.Location, conferenceID string) (*prepared, error) {
	attEvents, err := o.deps.Meetings.ListAttendeeEventsGivenDates(ctx, att.ID, ma.WindowStartDate, ma.WindowEndDate)
	if err != nil {
		return nil, err
	}

	workTimes := availability.GenerateWorkTimesForExternalAttendee(ma.UserID, att.UserID, attEvents, hostLoc)
	if len(workTimes) == 0 {
		slog.Info("external attendee has no observed availability, excluded from run",
			slog.String("meetingId", ma.ID), slog.String("userId", att.UserID))
		return &prepared{skipped: true}, nil
	}

	var slots []availability.TimeSlot
	for i, day := range daysInWindow(ma.WindowStartDate, ma.WindowEndDate, hostLoc) {
		slots = append(slots, availability.GenerateTimeSlotsForExternalAttendee(
			day, ma.UserID, attEvents, hostLoc, i == 0)...)
	}
	if len(slots) == 0 {
		slog.Info("external attendee has no free slots in the window, excluded from run",
			slog.String("meetingId", ma.ID), slog.String("userId", att.UserID))
		return &prepared{skipped: true}, nil
	}

	provisional := meetingEvent(ma, att, conferenceID)
	user := planner.NewExternalUserRequest(att.UserID, ma.UserID, workTimes)

	var bodies []planner.EventPartPlannerRequestBody
	for _, part := range eventpart.GenerateEventParts(provisional) {
		bodies = append(bodies, eventpart.FormatEventPartForPlannerExternal(part, ma.UserID, user, attEvents, hostLoc))
	}

	return &prepared{
		contribution: planner.Contribution{
			UserID:     att.UserID,
			User:       user,
			Timeslots:  slots,
			EventParts: bodies,
		},
		events: []models.Event{provisional},
	}, nil
}

// classify matches the host's provisional event against their learned
// categories, copies the winning category's defaults onto it and attaches
// meeting-type links from the attendee composition.
func (o *Orchestrator) classify(ctx context.Context, ma *models.MeetingAssist, event *models.Event, attendees []models.Attendee, reminders *[]models.Reminder) []models.CategoryEvent {
	cats, err := o.deps.Categories.ListForUser(ctx, ma.UserID)
	if err != nil {
		slog.Warn("categories unavailable, skipping classification",
			slog.String("meetingId", ma.ID), slog.String("error", err.Error()))
		return nil
	}
	if len(cats) == 0 {
		return nil
	}

	var links []models.CategoryEvent
	if o.deps.Vectorizer != nil {
		labels := make([]string, 0, len(cats))
		for _, c := range cats {
			labels = append(labels, c.Name)
		}
		ranked, err := category.FindBestMatchCategory(ctx, o.deps.Vectorizer, event, labels)
		if err != nil {
			slog.Warn("category matching failed, event left unclassified",
				slog.String("eventId", event.ID), slog.String("error", err.Error()))
		} else if best := category.ProcessBestMatchCategories(ranked, cats); best != nil {
			category.CopyOverCategoryDefaults(event, best)
			if minutes := category.ReminderDefaults(event, best); len(minutes) > 0 {
				*reminders = category.CreateRemindersFromMinutesAndEvent(event, minutes, false, ma.Timezone)
			}
			links = append(links, models.CategoryEvent{
				ID:         uuid.NewString(),
				CategoryID: best.ID,
				EventID:    event.ID,
				UserID:     event.UserID,
				Score:      scoreFor(ranked, best.Name),
			})
		}
	}

	links = append(links, category.ProcessEventForMeetingTypeCategories(event, attendees, cats)...)
	return links
}

// ensureConference creates the conference record once per assist when the
// host asked for one.
func (o *Orchestrator) ensureConference(ctx context.Context, ma *models.MeetingAssist) (string, error) {
	if !ma.EnableConference {
		return "", nil
	}
	app := ma.ConferenceApp
	if app == "" {
		app = "google"
	}
	conf := &models.Conference{
		ID:         uuid.NewString(),
		UserID:     ma.UserID,
		CalendarID: ma.CalendarID,
		App:        app,
		Name:       ma.Summary,
	}
	if err := o.deps.Conferences.Upsert(ctx, conf); err != nil {
		return "", err
	}
	return conf.ID, nil
}

func (o *Orchestrator) publish(run *models.PlannerRun, status string) {
	if o.deps.Broker != nil {
		o.deps.Broker.PublishRunEvent(run.SingletonID, run.HostID, status)
	}
}

// meetingEvent is the attendee's own copy of the provisional meeting: the
// solver places one per attendee and the reconciler writes back each copy to
// its owner's calendar.
func meetingEvent(ma *models.MeetingAssist, att *models.Attendee, conferenceID string) models.Event {
	duration := ma.Duration
	if duration <= 0 {
		duration = DefaultMeetingDuration
	}
	priority := ma.Priority
	if priority <= 0 {
		priority = 1
	}
	return models.Event{
		ID:              uuid.NewString(),
		UserID:          att.UserID,
		CalendarID:      ma.CalendarID,
		Summary:         ma.Summary,
		Notes:           ma.Notes,
		Timezone:        ma.Timezone,
		StartDate:       ma.WindowStartDate,
		EndDate:         ma.WindowStartDate.Add(time.Duration(duration) * time.Minute),
		Duration:        duration,
		Priority:        priority,
		Modifiable:      true,
		IsMeeting:       true,
		MeetingID:       ma.ID,
		TimeBlocking:    ma.BufferTime,
		BackgroundColor: ma.BackgroundColor,
		ConferenceID:    conferenceID,
		Method:          "create",
	}
}

// daysInWindow yields one anchor instant per host-frame calendar day in
// [start, end). The first anchor keeps the window's start time so first-day
// slots begin at the window edge, not at midnight.
func daysInWindow(start, end time.Time, hostLoc *time.Location) []time.Time {
	var days []time.Time
	cursor := start.In(hostLoc)
	for cursor.Before(end.In(hostLoc)) {
		days = append(days, cursor)
		cursor = timeutil.StartOfDay(cursor).AddDate(0, 0, 1)
	}
	return days
}

func busyFromEvents(events []models.Event) []availability.Busy {
	busy := make([]availability.Busy, 0, len(events))
	for _, ev := range events {
		busy = append(busy, availability.Busy{
			Start:   ev.StartDate,
			End:     ev.EndDate,
			IsBreak: ev.IsBreak,
		})
	}
	return busy
}

func scoreFor(ranked []category.ScoredCategory, label string) float64 {
	for _, r := range ranked {
		if r.Label == label {
			return r.Score
		}
	}
	return 0
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
