package postgres

import (
	"time"

	"github.com/lib/pq"
)

type nightTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	LeagueID        string         `db:"league_id"`
	NightDate       time.Time      `db:"night_date"`
	Status          string         `db:"status"`
	CourtsAvailable int            `db:"courts_available"`
	CourtLabels     pq.StringArray `db:"court_labels"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type nightInsertModel struct {
	PublicID        string         `db:"public_id"`
	LeagueID        string         `db:"league_id"`
	NightDate       time.Time      `db:"night_date"`
	Status          string         `db:"status"`
	CourtsAvailable int            `db:"courts_available"`
	CourtLabels     pq.StringArray `db:"court_labels"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type nightSummaryModel struct {
	CheckedInCount        int `db:"checked_in_count"`
	PartnershipsCount     int `db:"partnerships_count"`
	PendingRequestsCount  int `db:"pending_requests_count"`
	ActiveMatchesCount    int `db:"active_matches_count"`
	CompletedMatchesCount int `db:"completed_matches_count"`
}
