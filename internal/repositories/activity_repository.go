package repositories

import "greentrack/internal/models"

// OwnerTotal is one user's lifetime footprint sum, produced by the
// leaderboard aggregation query.
type OwnerTotal struct {
	UserID string
	Total  float64
}

// ActivityRepository defines the interface for activity data access.
// All read and delete operations are owner-scoped; an activity is never
// visible or mutable through another user's identity.
type ActivityRepository interface {
	Create(activity *models.Activity) error
	ListByOwner(ownerID string) ([]models.Activity, error)
	// DeleteByIDAndOwner removes the activity matching both id and owner in
	// a single check, returning ErrNotFound when no row matches. A miss on a
	// foreign-owned activity is indistinguishable from a missing id.
	DeleteByIDAndOwner(id, ownerID string) error
	TotalsByOwner() ([]OwnerTotal, error)
	TotalsByCategory(ownerID string) (map[string]float64, error)
}
