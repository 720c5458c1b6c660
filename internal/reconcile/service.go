package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/checksum"
	"github.com/starford/dagaz/internal/gateway"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/planner"
	"github.com/starford/dagaz/internal/repository"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
)

// Summary reports what one callback actually changed. Entity-level failures
// are reported here rather than rolled back; there is no cross-entity
// transaction.
type Summary struct {
	Updated      []string `json:"updated"`
	Unchanged    int      `json:"unchanged"`
	Unscheduled  []string `json:"unscheduled"`
	EntityErrors []string `json:"entityErrors,omitempty"`
}

// Reconciler applies solver callbacks. Callbacks are idempotent per
// singletonId: the run state machine serializes concurrent callbacks and
// turns replays against a reconciled run into no-ops.
type Reconciler struct {
	runs      *repository.RunRepository
	events    *repository.EventRepository
	reminders *repository.ReminderRepository
	artifacts storage.Provider
	provider  gateway.Provider
	broker    *sse.Broker
}

func New(
	runs *repository.RunRepository,
	events *repository.EventRepository,
	reminders *repository.ReminderRepository,
	artifacts storage.Provider,
	provider gateway.Provider,
	broker *sse.Broker,
) *Reconciler {
	return &Reconciler{
		runs:      runs,
		events:    events,
		reminders: reminders,
		artifacts: artifacts,
		provider:  provider,
		broker:    broker,
	}
}

// Process handles one solver callback end to end.
func (r *Reconciler) Process(ctx context.Context, cb *planner.PlannerCallbackBody) (*Summary, error) {
	run, err := r.runs.Get(ctx, cb.SingletonID)
	if err != nil {
		if errors.Is(err, apperr.ErrRunNotFound) {
			return nil, fmt.Errorf("callback for unknown run %s: %w", cb.SingletonID, apperr.ErrIntegrity)
		}
		return nil, err
	}

	if run.Status == models.RunReconciled {
		slog.Info("duplicate callback for reconciled run ignored",
			slog.String("singletonId", cb.SingletonID))
		return &Summary{}, nil
	}

	if err := r.claim(ctx, cb.SingletonID); err != nil {
		return nil, err
	}
	if err := r.runs.MarkCallback(ctx, cb.SingletonID, time.Now()); err != nil {
		slog.Warn("mark callback failed", slog.String("singletonId", cb.SingletonID),
			slog.String("error", err.Error()))
	}
	r.publish(run, models.RunReconciling)

	submitted, err := r.loadArtifact(run)
	if err != nil {
		return nil, r.fail(ctx, run, err)
	}
	if err := ValidateEventsFromPlanner(cb.EventPartList, submitted); err != nil {
		return nil, r.fail(ctx, run, err)
	}
	if cb.Status == planner.SolveInfeasible {
		return nil, r.fail(ctx, run, fmt.Errorf("solver found no feasible schedule: %w", apperr.ErrNoAvailability))
	}

	hostLoc, err := time.LoadLocation(run.HostTimezone)
	if err != nil {
		return nil, r.fail(ctx, run, fmt.Errorf("host timezone %q: %w", run.HostTimezone, err))
	}

	summary := &Summary{}
	var scheduled []planner.PlannedPart
	for _, part := range cb.EventPartList {
		if part.Timeslot == nil {
			summary.Unscheduled = append(summary.Unscheduled,
				fmt.Sprintf("%s/%d", part.GroupID, part.Part))
			continue
		}
		scheduled = append(scheduled, part)
	}
	for _, miss := range summary.Unscheduled {
		slog.Warn("part left unscheduled by solver, source event untouched",
			slog.String("singletonId", cb.SingletonID), slog.String("part", miss))
	}

	current, err := r.currentEvents(ctx, scheduled)
	if err != nil {
		return nil, r.fail(ctx, run, err)
	}
	updated, err := FormatPlannerEventsToEventAndAdjustTime(scheduled, current, run.WindowStartDate, hostLoc)
	if err != nil {
		return nil, r.fail(ctx, run, err)
	}

	for i := range updated {
		old := current[updated[i].ID]
		if !CompareEventsToFilterUnequalEvents(&updated[i], &old) {
			summary.Unchanged++
			continue
		}
		if err := r.UpdateAllCalendarEventsPostPlanner(ctx, &updated[i]); err != nil {
			summary.EntityErrors = append(summary.EntityErrors,
				fmt.Sprintf("event %s: %v", updated[i].ID, err))
			continue
		}
		summary.Updated = append(summary.Updated, updated[i].ID)
	}

	if err := r.runs.Transition(ctx, cb.SingletonID, models.RunReconciling, models.RunReconciled); err != nil {
		return nil, err
	}
	r.publish(run, models.RunReconciled)

	slog.Info("run reconciled",
		slog.String("singletonId", cb.SingletonID),
		slog.String("hostId", run.HostID),
		slog.Int("updated", len(summary.Updated)),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("unscheduled", len(summary.Unscheduled)),
		slog.Int("entityErrors", len(summary.EntityErrors)))
	return summary, nil
}

// claim moves the run into reconciling, whichever pre-callback state it is
// in. Losing the compare-and-swap means another callback got there first.
func (r *Reconciler) claim(ctx context.Context, singletonID string) error {
	err := r.runs.Transition(ctx, singletonID, models.RunAwaitingCallback, models.RunReconciling)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrConflict) {
		return err
	}
	// The solver can call back before the dispatcher records the handoff.
	err = r.runs.Transition(ctx, singletonID, models.RunDispatched, models.RunReconciling)
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrConflict) {
		return fmt.Errorf("run %s already being reconciled: %w", singletonID, apperr.ErrConflict)
	}
	return err
}

// UpdateAllCalendarEventsPostPlanner persists one changed event and pushes
// it to the provider, refreshing the credential once on auth expiry. A
// second auth failure is surfaced, not retried again.
func (r *Reconciler) UpdateAllCalendarEventsPostPlanner(ctx context.Context, event *models.Event) error {
	if err := r.events.Upsert(ctx, event); err != nil {
		return err
	}

	reminders, err := r.reminders.ListForEvent(ctx, event.ID)
	if err != nil {
		return err
	}

	if err := r.push(ctx, event, reminders); err != nil {
		if !errors.Is(err, apperr.ErrAuthExpired) {
			return err
		}
		if refreshErr := r.provider.RefreshCredential(ctx); refreshErr != nil {
			return errors.Join(err, refreshErr)
		}
		if err := r.push(ctx, event, reminders); err != nil {
			return fmt.Errorf("provider write failed after credential refresh: %w", err)
		}
	}
	return nil
}

func (r *Reconciler) push(ctx context.Context, event *models.Event, reminders []models.Reminder) error {
	if event.ProviderID == "" {
		providerID, err := r.provider.CreateEvent(ctx, event.CalendarID, event, reminders)
		if err != nil {
			return err
		}
		event.ProviderID = providerID
		event.Method = ""
		return r.events.Upsert(ctx, event)
	}
	if err := r.provider.PatchEvent(ctx, event.CalendarID, event.ProviderID, event, reminders); err != nil {
		return err
	}
	event.Method = ""
	return r.events.Upsert(ctx, event)
}

func (r *Reconciler) loadArtifact(run *models.PlannerRun) (*planner.PlannerRequestBody, error) {
	raw, err := r.artifacts.Get(run.FileKey)
	if err != nil {
		return nil, fmt.Errorf("load dispatched request %s: %w: %w", run.FileKey, apperr.ErrIntegrity, err)
	}
	if run.ArtifactChecksum != "" && checksum.Sum(raw) != run.ArtifactChecksum {
		return nil, fmt.Errorf("dispatched request %s drifted since dispatch: %w", run.FileKey, apperr.ErrIntegrity)
	}
	var submitted planner.PlannerRequestBody
	if err := json.Unmarshal(raw, &submitted); err != nil {
		return nil, fmt.Errorf("decode dispatched request %s: %w: %w", run.FileKey, apperr.ErrIntegrity, err)
	}
	return &submitted, nil
}

func (r *Reconciler) currentEvents(ctx context.Context, scheduled []planner.PlannedPart) (map[string]models.Event, error) {
	ids := make([]string, 0, len(scheduled))
	seen := make(map[string]bool, len(scheduled))
	for _, p := range scheduled {
		if !seen[p.EventID] {
			seen[p.EventID] = true
			ids = append(ids, p.EventID)
		}
	}
	events, err := r.events.ListWithIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	current := make(map[string]models.Event, len(events))
	for _, ev := range events {
		current[ev.ID] = ev
	}
	return current, nil
}

// fail marks the run failed and reports the cause.
func (r *Reconciler) fail(ctx context.Context, run *models.PlannerRun, cause error) error {
	if err := r.runs.Fail(ctx, run.SingletonID, cause.Error()); err != nil {
		slog.Error("mark run failed", slog.String("singletonId", run.SingletonID),
			slog.String("error", err.Error()))
	}
	r.publish(run, models.RunFailed)
	return fmt.Errorf("run %s: %w", run.SingletonID, cause)
}

func (r *Reconciler) publish(run *models.PlannerRun, status string) {
	if r.broker != nil {
		r.broker.PublishRunEvent(run.SingletonID, run.HostID, status)
	}
}
