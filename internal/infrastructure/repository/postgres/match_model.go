package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID                 int64         `db:"id"`
	PublicID           string        `db:"public_id"`
	NightID            string        `db:"night_id"`
	Partnership1ID     string        `db:"partnership1_id"`
	Partnership2ID     string        `db:"partnership2_id"`
	CourtLabel         string        `db:"court_label"`
	Status             string        `db:"status"`
	ScoreStatus        string        `db:"score_status"`
	Team1Score         sql.NullInt64 `db:"team1_score"`
	Team2Score         sql.NullInt64 `db:"team2_score"`
	PendingTeam1Score  sql.NullInt64 `db:"pending_team1_score"`
	PendingTeam2Score  sql.NullInt64 `db:"pending_team2_score"`
	PendingSubmittedBy string        `db:"pending_submitted_by"`
	Version            int64         `db:"version"`
	CreatedAt          time.Time     `db:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at"`
}
