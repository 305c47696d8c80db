package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"greentrack/internal/models"
	"greentrack/internal/repositories"
)

// DefaultLeaderboardLimit bounds the ranking size when no limit is given.
const DefaultLeaderboardLimit = 100

// LeaderboardService computes the cross-user ranking by lifetime footprint.
// Lower totals rank better: the board rewards low-impact users.
type LeaderboardService struct {
	activityRepo repositories.ActivityRepository
	userRepo     repositories.UserRepository
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(activityRepo repositories.ActivityRepository, userRepo repositories.UserRepository) *LeaderboardService {
	return &LeaderboardService{
		activityRepo: activityRepo,
		userRepo:     userRepo,
	}
}

// Ranking aggregates every user's lifetime footprint, sorts ascending,
// truncates to limit, and joins usernames. Totals are rounded to two
// decimals here and only here; stored footprints stay unrounded. Users that
// no longer resolve are dropped rather than failing the whole computation.
func (s *LeaderboardService) Ranking(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	totals, err := s.activityRepo.TotalsByOwner()
	if err != nil {
		return nil, fmt.Errorf("failed to compute ranking: %w", err)
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Total < totals[j].Total
	})
	if len(totals) > limit {
		totals = totals[:limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		user, err := s.userRepo.GetByID(t.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve user %s: %w", t.UserID, err)
		}
		entries = append(entries, models.LeaderboardEntry{
			Username:       user.Username,
			TotalFootprint: math.Round(t.Total*100) / 100,
		})
	}
	return entries, nil
}
