package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// EventRepository handles reads and upserts for calendar events.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &ev, nil
}

// ListWithIDs returns the non-deleted events matching ids, in no particular
// order; missing ids are silently absent.
func (r *EventRepository) ListWithIDs(ctx context.Context, ids []string) ([]models.Event, error) {
	var events []models.Event
	if len(ids) == 0 {
		return events, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ? AND deleted = ?", ids, false).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events by ids: %w", err)
	}
	return events, nil
}

// ListForUserGivenDates returns the user's non-deleted events intersecting
// [windowStart, windowEnd).
func (r *EventRepository) ListForUserGivenDates(ctx context.Context, userID string, windowStart, windowEnd time.Time) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ? AND start_date < ? AND end_date > ?",
			userID, false, windowEnd, windowStart).
		Order("start_date").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events for user %s: %w", userID, err)
	}
	return events, nil
}

// Upsert creates or replaces an event by primary key.
func (r *EventRepository) Upsert(ctx context.Context, ev *models.Event) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(ev).Error; err != nil {
		return fmt.Errorf("upsert event %s: %w", ev.ID, err)
	}
	return nil
}

// UpsertAll upserts events one at a time, collecting per-entity failures
// instead of aborting on the first (no cross-entity transaction).
func (r *EventRepository) UpsertAll(ctx context.Context, events []models.Event) error {
	var errs []error
	for i := range events {
		if err := r.Upsert(ctx, &events[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SoftDelete marks an event deleted; rows are never hard-deleted.
func (r *EventRepository) SoftDelete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", id).Update("deleted", true).Error; err != nil {
		return fmt.Errorf("soft delete event %s: %w", id, err)
	}
	return nil
}
