package night

import (
	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

// Ledger is the night and every row that belongs to it, read in one store unit.
type Ledger struct {
	Night        Night
	CheckIns     []checkin.CheckIn
	Requests     []partnership.Request
	Partnerships []partnership.Partnership
	Matches      []match.Match
}

// Summary derives the counters from the rows of the same read.
func (l Ledger) Summary() Summary {
	out := Summary{CheckedInCount: len(l.CheckIns)}
	for _, p := range l.Partnerships {
		if p.IsActive {
			out.PartnershipsCount++
		}
	}
	for _, r := range l.Requests {
		if r.Status == partnership.RequestPending {
			out.PendingRequestsCount++
		}
	}
	for _, m := range l.Matches {
		switch {
		case m.IsOpen():
			out.ActiveMatchesCount++
		case m.Status == match.StatusCompleted:
			out.CompletedMatchesCount++
		}
	}
	return out
}
