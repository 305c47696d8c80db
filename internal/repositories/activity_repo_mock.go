package repositories

import (
	"sort"
	"sync"

	"greentrack/internal/models"

	"github.com/google/uuid"
)

// MockActivityRepository is an in-memory implementation of ActivityRepository.
type MockActivityRepository struct {
	activities map[string]models.Activity
	mu         sync.RWMutex
}

// NewMockActivityRepository creates a new instance of MockActivityRepository.
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{
		activities: make(map[string]models.Activity),
	}
}

// Create adds a new activity.
func (r *MockActivityRepository) Create(activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	r.activities[activity.ID] = *activity
	return nil
}

// ListByOwner returns the owner's activities, most recent date first.
func (r *MockActivityRepository) ListByOwner(ownerID string) ([]models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]models.Activity, 0)
	for _, a := range r.activities {
		if a.UserID == ownerID {
			owned = append(owned, a)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].Date.After(owned[j].Date)
	})
	return owned, nil
}

// DeleteByIDAndOwner removes the activity matching both id and owner.
func (r *MockActivityRepository) DeleteByIDAndOwner(id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[id]
	if !ok || activity.UserID != ownerID {
		return ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

// TotalsByOwner sums the stored footprints per user.
func (r *MockActivityRepository) TotalsByOwner() ([]OwnerTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sums := make(map[string]float64)
	for _, a := range r.activities {
		sums[a.UserID] += a.CarbonFootprint
	}
	totals := make([]OwnerTotal, 0, len(sums))
	for userID, total := range sums {
		totals = append(totals, OwnerTotal{UserID: userID, Total: total})
	}
	return totals, nil
}

// TotalsByCategory sums one owner's stored footprints per category.
func (r *MockActivityRepository) TotalsByCategory(ownerID string) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := make(map[string]float64)
	for _, a := range r.activities {
		if a.UserID == ownerID {
			totals[a.Category] += a.CarbonFootprint
		}
	}
	return totals, nil
}
