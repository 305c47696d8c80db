package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"greentrack/internal/emissions"
	"greentrack/internal/models"
	"greentrack/internal/repositories"
	"greentrack/pkg/rabbitmq"
)

var (
	// ErrInvalidCategory is returned when the category is outside the
	// closed set.
	ErrInvalidCategory = errors.New("invalid activity category")
	// ErrActivityNotFound is returned when an owner-scoped lookup matches
	// nothing. Deliberately ambiguous: a foreign-owned activity and a
	// nonexistent one are indistinguishable to the caller.
	ErrActivityNotFound = errors.New("activity not found or unauthorized")
)

// ActivityService is the ledger over user activities. The owner identity is
// always the one resolved from the bearer token, never a payload value.
type ActivityService struct {
	activityRepo repositories.ActivityRepository
	calculator   *emissions.Calculator
	mqClient     *rabbitmq.Client
}

// NewActivityService creates a new ActivityService. mqClient may be nil;
// event publication is best-effort.
func NewActivityService(activityRepo repositories.ActivityRepository, calculator *emissions.Calculator, mqClient *rabbitmq.Client) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		calculator:   calculator,
		mqClient:     mqClient,
	}
}

// Log computes the footprint for a new activity and persists it bound to
// ownerID. Nothing is written when validation or the footprint computation
// fails.
func (s *ActivityService) Log(ownerID string, date time.Time, category, activityType string, value float64, unit string) (*models.Activity, error) {
	if !models.ValidCategories[category] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	footprint, err := s.calculator.Compute(activityType, value)
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		UserID:          ownerID,
		Date:            date,
		Category:        category,
		Type:            activityType,
		Value:           value,
		Unit:            unit,
		CarbonFootprint: footprint,
	}
	if err := s.activityRepo.Create(activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.publish(rabbitmq.EventActivityLogged, activity)

	return activity, nil
}

// List returns the owner's activities, most recent date first.
func (s *ActivityService) List(ownerID string) ([]models.Activity, error) {
	return s.activityRepo.ListByOwner(ownerID)
}

// Delete removes the owner's activity by id. Returns ErrActivityNotFound
// when the id does not exist or belongs to someone else.
func (s *ActivityService) Delete(ownerID, activityID string) error {
	err := s.activityRepo.DeleteByIDAndOwner(activityID, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	s.publish(rabbitmq.EventActivityDeleted, &models.Activity{ID: activityID, UserID: ownerID})

	return nil
}

// Summary returns the owner's footprint totals grouped by category.
func (s *ActivityService) Summary(ownerID string) (map[string]float64, error) {
	return s.activityRepo.TotalsByCategory(ownerID)
}

// publish emits an activity event. Failures are logged, never surfaced; the
// ledger write has already committed.
func (s *ActivityService) publish(event string, activity *models.Activity) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishEvent(event, map[string]interface{}{
		"activityId": activity.ID,
		"userId":     activity.UserID,
		"category":   activity.Category,
		"type":       activity.Type,
		"footprint":  activity.CarbonFootprint,
	})
	if err != nil {
		log.Printf("Warning: Failed to publish %s event for activity %s: %v", event, activity.ID, err)
	}
}
