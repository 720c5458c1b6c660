package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/starford/dagaz/internal/models"
)

// CategoryRepository handles categories and their event links.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) ListForUser(ctx context.Context, userID string) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.WithContext(ctx).Where("user_id = ? AND deleted = ?", userID, false).
		Order("updated_at DESC").
		Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories for user %s: %w", userID, err)
	}
	return cats, nil
}

// ListForEvent returns the categories linked to an event.
func (r *CategoryRepository) ListForEvent(ctx context.Context, eventID string) ([]models.Category, error) {
	var cats []models.Category
	if err := r.db.WithContext(ctx).
		Joins("JOIN category_events ON category_events.category_id = categories.id").
		Where("category_events.event_id = ? AND category_events.deleted = ? AND categories.deleted = ?",
			eventID, false, false).
		Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories for event %s: %w", eventID, err)
	}
	return cats, nil
}

// CreateCategoryEvents links categories to events, skipping links that exist.
func (r *CategoryRepository) CreateCategoryEvents(ctx context.Context, links []models.CategoryEvent) error {
	var errs []error
	for i := range links {
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&links[i]).Error; err != nil {
			errs = append(errs, fmt.Errorf("link category %s to event %s: %w",
				links[i].CategoryID, links[i].EventID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *CategoryRepository) Upsert(ctx context.Context, cat *models.Category) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(cat).Error; err != nil {
		return fmt.Errorf("upsert category %s: %w", cat.ID, err)
	}
	return nil
}
