package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/models"
)

// ReminderRepository handles reminder rows keyed by event id.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) ListForEvent(ctx context.Context, eventID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := r.db.WithContext(ctx).Where("event_id = ? AND deleted = ?", eventID, false).
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("list reminders for event %s: %w", eventID, err)
	}
	return reminders, nil
}

func (r *ReminderRepository) Upsert(ctx context.Context, rem *models.Reminder) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(rem).Error; err != nil {
		return fmt.Errorf("upsert reminder %s: %w", rem.ID, err)
	}
	return nil
}

// ReplaceForEvent soft-deletes existing reminders for the event and upserts
// the new set. Duplicate replays are no-ops because reminder ids are stable.
func (r *ReminderRepository) ReplaceForEvent(ctx context.Context, eventID string, reminders []models.Reminder) error {
	if err := r.db.WithContext(ctx).Model(&models.Reminder{}).
		Where("event_id = ?", eventID).Update("deleted", true).Error; err != nil {
		return fmt.Errorf("clear reminders for event %s: %w", eventID, err)
	}
	var errs []error
	for i := range reminders {
		reminders[i].Deleted = false
		if err := r.Upsert(ctx, &reminders[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConferenceRepository handles conference rows.
type ConferenceRepository struct {
	db *gorm.DB
}

func NewConferenceRepository(db *gorm.DB) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

func (r *ConferenceRepository) GetByID(ctx context.Context, id string) (*models.Conference, error) {
	var conf models.Conference
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get conference %s: %w", id, err)
	}
	return &conf, nil
}

func (r *ConferenceRepository) Upsert(ctx context.Context, conf *models.Conference) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(conf).Error; err != nil {
		return fmt.Errorf("upsert conference %s: %w", conf.ID, err)
	}
	return nil
}

// PreferredTimeRangeRepository handles preferred-time rows keyed by event id.
type PreferredTimeRangeRepository struct {
	db *gorm.DB
}

func NewPreferredTimeRangeRepository(db *gorm.DB) *PreferredTimeRangeRepository {
	return &PreferredTimeRangeRepository{db: db}
}

func (r *PreferredTimeRangeRepository) ListForEvent(ctx context.Context, eventID string) ([]models.PreferredTimeRange, error) {
	var ranges []models.PreferredTimeRange
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).
		Find(&ranges).Error; err != nil {
		return nil, fmt.Errorf("list preferred time ranges for event %s: %w", eventID, err)
	}
	return ranges, nil
}

func (r *PreferredTimeRangeRepository) Upsert(ctx context.Context, pr *models.PreferredTimeRange) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(pr).Error; err != nil {
		return fmt.Errorf("upsert preferred time range %s: %w", pr.ID, err)
	}
	return nil
}

// DeleteForEvent removes preferred-time rows when their owning event part
// set is removed.
func (r *PreferredTimeRangeRepository) DeleteForEvent(ctx context.Context, eventID string) error {
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).
		Delete(&models.PreferredTimeRange{}).Error; err != nil {
		return fmt.Errorf("delete preferred time ranges for event %s: %w", eventID, err)
	}
	return nil
}
