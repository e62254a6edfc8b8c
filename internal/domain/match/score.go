package match

import (
	"errors"
	"time"
)

var (
	ErrNotParticipant     = errors.New("partnership is not playing this match")
	ErrSubmitterResponded = errors.New("submitting partnership cannot respond to its own score")
	ErrNotSubmitter       = errors.New("only the submitting partnership can withdraw the score")
	ErrScorePending       = errors.New("a score submission is already pending")
	ErrNoPendingScore     = errors.New("no score submission is pending")
	ErrNotOpen            = errors.New("match is not open for scoring")
	ErrInvalidScore       = errors.New("scores must be non-negative and produce a winner")
	ErrCancelled          = errors.New("match is cancelled")
)

// ValidateScore rejects negative scores and ties.
func ValidateScore(team1, team2 int) error {
	if team1 < 0 || team2 < 0 || team1 == team2 {
		return ErrInvalidScore
	}
	return nil
}

// Submit places a score in the pending slot on behalf of one of the two partnerships.
func Submit(m Match, partnershipID string, team1, team2 int, at time.Time) (Match, error) {
	if !m.Has(partnershipID) {
		return Match{}, ErrNotParticipant
	}
	if m.ScoreStatus == ScorePending {
		return Match{}, ErrScorePending
	}
	if m.Status != StatusActive || m.ScoreStatus != ScoreNone {
		return Match{}, ErrNotOpen
	}
	if err := ValidateScore(team1, team2); err != nil {
		return Match{}, err
	}

	m.PendingTeam1Score = intPtr(team1)
	m.PendingTeam2Score = intPtr(team2)
	m.PendingSubmittedBy = partnershipID
	m.ScoreStatus = ScorePending
	m.UpdatedAt = at
	return m, nil
}

// Confirm copies the pending score into the final score; only the opponent of the submitter may confirm.
func Confirm(m Match, partnershipID string, at time.Time) (Match, error) {
	if err := checkResponder(m, partnershipID); err != nil {
		return Match{}, err
	}

	m.Team1Score = m.PendingTeam1Score
	m.Team2Score = m.PendingTeam2Score
	m = m.clearPending()
	m.ScoreStatus = ScoreConfirmed
	m.Status = StatusCompleted
	m.UpdatedAt = at
	return m, nil
}

// Dispute rejects the pending score; the match waits for an admin override.
func Dispute(m Match, partnershipID string, at time.Time) (Match, error) {
	if err := checkResponder(m, partnershipID); err != nil {
		return Match{}, err
	}

	m = m.clearPending()
	m.ScoreStatus = ScoreDisputed
	m.Status = StatusDisputed
	m.UpdatedAt = at
	return m, nil
}

// Cancel withdraws the pending score; only the submitter may do it.
func Cancel(m Match, partnershipID string, at time.Time) (Match, error) {
	if !m.Has(partnershipID) {
		return Match{}, ErrNotParticipant
	}
	if m.ScoreStatus != ScorePending {
		return Match{}, ErrNoPendingScore
	}
	if m.PendingSubmittedBy != partnershipID {
		return Match{}, ErrNotSubmitter
	}

	m = m.clearPending()
	m.ScoreStatus = ScoreNone
	m.Status = StatusActive
	m.UpdatedAt = at
	return m, nil
}

// Override records a final score without the player handshake.
func Override(m Match, team1, team2 int, at time.Time) (Match, error) {
	if m.Status == StatusCancelled {
		return Match{}, ErrCancelled
	}
	if err := ValidateScore(team1, team2); err != nil {
		return Match{}, err
	}

	m = m.clearPending()
	m.Team1Score = intPtr(team1)
	m.Team2Score = intPtr(team2)
	m.ScoreStatus = ScoreConfirmed
	m.Status = StatusCompleted
	m.UpdatedAt = at
	return m, nil
}

// Abandon cancels an open match and frees both partnerships.
func Abandon(m Match, at time.Time) (Match, error) {
	if m.Status == StatusCancelled {
		return Match{}, ErrCancelled
	}
	if !m.IsOpen() {
		return Match{}, ErrNotOpen
	}

	m = m.clearPending()
	m.Status = StatusCancelled
	m.UpdatedAt = at
	return m, nil
}

func checkResponder(m Match, partnershipID string) error {
	if !m.Has(partnershipID) {
		return ErrNotParticipant
	}
	if m.ScoreStatus != ScorePending {
		return ErrNoPendingScore
	}
	if m.PendingSubmittedBy == partnershipID {
		return ErrSubmitterResponded
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}
