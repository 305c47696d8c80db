package repositories

import (
	"fmt"

	"greentrack/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMActivityRepository is a GORM implementation of ActivityRepository.
type GORMActivityRepository struct {
	db *gorm.DB
}

// NewGORMActivityRepository creates a new instance of GORMActivityRepository.
func NewGORMActivityRepository(db *gorm.DB) *GORMActivityRepository {
	return &GORMActivityRepository{
		db: db,
	}
}

// Create inserts a new activity, assigning an ID when none is set.
func (r *GORMActivityRepository) Create(activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if err := r.db.Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// ListByOwner retrieves the owner's activities, most recent date first.
func (r *GORMActivityRepository) ListByOwner(ownerID string) ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.db.Where("user_id = ?", ownerID).Order("date DESC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities for user %s: %w", ownerID, err)
	}
	return activities, nil
}

// DeleteByIDAndOwner deletes the activity matching both id and owner.
func (r *GORMActivityRepository) DeleteByIDAndOwner(id, ownerID string) error {
	res := r.db.Delete(&models.Activity{}, "id = ? AND user_id = ?", id, ownerID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete activity %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TotalsByOwner sums the stored footprints per user across all activities.
// This is a single read-only pass; concurrent writes may or may not be
// included, which is acceptable for a best-effort ranking.
func (r *GORMActivityRepository) TotalsByOwner() ([]OwnerTotal, error) {
	var totals []OwnerTotal
	err := r.db.Model(&models.Activity{}).
		Select("user_id, SUM(carbon_footprint) AS total").
		Group("user_id").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate footprint totals: %w", err)
	}
	return totals, nil
}

// TotalsByCategory sums one owner's stored footprints per category.
func (r *GORMActivityRepository) TotalsByCategory(ownerID string) (map[string]float64, error) {
	var rows []struct {
		Category string
		Total    float64
	}
	err := r.db.Model(&models.Activity{}).
		Select("category, SUM(carbon_footprint) AS total").
		Where("user_id = ?", ownerID).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate category totals for user %s: %w", ownerID, err)
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.Category] = row.Total
	}
	return totals, nil
}
