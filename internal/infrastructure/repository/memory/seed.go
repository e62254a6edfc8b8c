package memory

import (
	"time"

	"github.com/riskibarqy/league-night/internal/domain/night"
)

const (
	DemoLeagueID = "demo-league"
	DemoNightID  = "demo-night"
)

// SeedNights returns the nights loaded when running on the memory driver.
func SeedNights(now time.Time) []night.Night {
	return []night.Night{
		{
			ID:              DemoNightID,
			LeagueID:        DemoLeagueID,
			Date:            now.Truncate(24 * time.Hour),
			Status:          night.StatusScheduled,
			CourtsAvailable: 4,
			CourtLabels:     []string{"Center", "North", "South"},
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}

// Seed loads nights into the store, replacing any with the same id.
func (s *Store) Seed(nights []night.Night) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range nights {
		s.nights[n.ID] = cloneNight(n)
	}
}
