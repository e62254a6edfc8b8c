package match

import (
	"errors"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDisputed  Status = "disputed"
	StatusCancelled Status = "cancelled"
)

type ScoreStatus string

const (
	ScoreNone      ScoreStatus = "none"
	ScorePending   ScoreStatus = "pending"
	ScoreConfirmed ScoreStatus = "confirmed"
	ScoreDisputed  ScoreStatus = "disputed"
)

var (
	ErrVersionConflict = errors.New("match was modified concurrently")
	ErrPartnershipBusy = errors.New("partnership is already on an open match")
	ErrCourtBusy       = errors.New("court already hosts an open match")
)

type Match struct {
	ID                 string
	NightID            string
	Partnership1ID     string
	Partnership2ID     string
	CourtLabel         string
	Status             Status
	ScoreStatus        ScoreStatus
	Team1Score         *int
	Team2Score         *int
	PendingTeam1Score  *int
	PendingTeam2Score  *int
	PendingSubmittedBy string
	Version            int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOpen reports whether the match still occupies its court and partnerships.
func (m Match) IsOpen() bool {
	return m.Status == StatusActive || m.Status == StatusDisputed
}

func (m Match) Has(partnershipID string) bool {
	return partnershipID != "" && (m.Partnership1ID == partnershipID || m.Partnership2ID == partnershipID)
}

func (m Match) clearPending() Match {
	m.PendingTeam1Score = nil
	m.PendingTeam2Score = nil
	m.PendingSubmittedBy = ""
	return m
}
