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

// PreferenceRepository handles durable user preference records.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetForUser returns the user's preference record. External attendees have
// none; callers treat apperr.ErrNotFound as "derive availability from their
// own events instead".
func (r *PreferenceRepository) GetForUser(ctx context.Context, userID string) (*models.UserPreference, error) {
	var pref models.UserPreference
	if err := r.db.WithContext(ctx).Where("user_id = ? AND deleted = ?", userID, false).
		First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get preference for user %s: %w", userID, err)
	}
	return &pref, nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.UserPreference) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(pref).Error; err != nil {
		return fmt.Errorf("upsert preference %s: %w", pref.ID, err)
	}
	return nil
}
