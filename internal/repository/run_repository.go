package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// RunRepository persists the per-correlation-id state machine that makes
// callback handling idempotent. Transitions are compare-and-swap updates on
// the status column so two callbacks for the same run cannot both win.
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *models.PlannerRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("create planner run %s: %w", run.SingletonID, err)
	}
	return nil
}

func (r *RunRepository) Get(ctx context.Context, singletonID string) (*models.PlannerRun, error) {
	var run models.PlannerRun
	if err := r.db.WithContext(ctx).Where("singleton_id = ?", singletonID).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrRunNotFound
		}
		return nil, fmt.Errorf("get planner run %s: %w", singletonID, err)
	}
	return &run, nil
}

// Transition moves a run from one status to another. It returns
// apperr.ErrConflict when the run is not in the expected status, which is
// how duplicate callbacks and concurrent reconciliations are serialized.
func (r *RunRepository) Transition(ctx context.Context, singletonID, from, to string) error {
	res := r.db.WithContext(ctx).Model(&models.PlannerRun{}).
		Where("singleton_id = ? AND status = ?", singletonID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("transition run %s %s->%s: %w", singletonID, from, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	return nil
}

// MarkCallback records the callback arrival time.
func (r *RunRepository) MarkCallback(ctx context.Context, singletonID string, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.PlannerRun{}).
		Where("singleton_id = ?", singletonID).
		Update("callback_at", at).Error; err != nil {
		return fmt.Errorf("mark callback for run %s: %w", singletonID, err)
	}
	return nil
}

// Fail marks a run failed with a reason, from any non-terminal status.
func (r *RunRepository) Fail(ctx context.Context, singletonID, reason string) error {
	if err := r.db.WithContext(ctx).Model(&models.PlannerRun{}).
		Where("singleton_id = ? AND status NOT IN ?", singletonID,
			[]string{models.RunReconciled, models.RunFailed, models.RunTimedOut}).
		Updates(map[string]any{"status": models.RunFailed, "failure_reason": reason}).Error; err != nil {
		return fmt.Errorf("fail run %s: %w", singletonID, err)
	}
	return nil
}

// SweepTimeouts marks runs stuck awaiting a callback longer than maxWait as
// timed out and returns how many were swept.
func (r *RunRepository) SweepTimeouts(ctx context.Context, now time.Time, maxWait time.Duration) (int64, error) {
	cutoff := now.Add(-maxWait)
	res := r.db.WithContext(ctx).Model(&models.PlannerRun{}).
		Where("status = ? AND dispatched_at < ?", models.RunAwaitingCallback, cutoff).
		Updates(map[string]any{
			"status":         models.RunTimedOut,
			"failure_reason": "no schedule produced: solver never called back",
		})
	if res.Error != nil {
		return 0, fmt.Errorf("sweep run timeouts: %w", res.Error)
	}
	return res.RowsAffected, nil
}
