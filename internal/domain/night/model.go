package night

import (
	"errors"
	"strconv"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var ErrStatusChanged = errors.New("night status changed concurrently")

type Night struct {
	ID              string
	LeagueID        string
	Date            time.Time
	Status          Status
	CourtsAvailable int
	CourtLabels     []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CourtLabel returns the display label of the zero-based court slot.
func (n Night) CourtLabel(slot int) string {
	if slot >= 0 && slot < len(n.CourtLabels) && n.CourtLabels[slot] != "" {
		return n.CourtLabels[slot]
	}
	return "Court " + strconv.Itoa(slot+1)
}

// DuplicateCourt returns the first label shared by two court slots, counting
// the generated labels of unlabeled slots.
func (n Night) DuplicateCourt() (string, bool) {
	seen := make(map[string]struct{}, n.CourtsAvailable)
	for slot := 0; slot < n.CourtsAvailable; slot++ {
		label := n.CourtLabel(slot)
		if _, dup := seen[label]; dup {
			return label, true
		}
		seen[label] = struct{}{}
	}
	return "", false
}

func (n Night) IsOpen() bool {
	return n.Status != StatusCompleted
}

// CanTransition reports whether from -> to is a forward step of the lifecycle.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusScheduled:
		return to == StatusActive
	case StatusActive:
		return to == StatusCompleted
	default:
		return false
	}
}

// Summary is derived from ledger rows on every read and never stored.
type Summary struct {
	CheckedInCount        int
	PartnershipsCount     int
	PendingRequestsCount  int
	ActiveMatchesCount    int
	CompletedMatchesCount int
}
