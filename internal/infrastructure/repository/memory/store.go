package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/match"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

// Store keeps every league night table in process. Each repository method runs
// under the single store mutex, so multi-row units are atomic and the
// uniqueness indexes below behave like their relational counterparts.
type Store struct {
	mu sync.RWMutex

	nights   map[string]night.Night
	checkIns map[string]checkin.CheckIn

	requests     map[string]partnership.Request
	requestOrder []string

	partnerships     map[string]partnership.Partnership
	partnershipOrder []string
	// activeByPlayer is the "one active partnership per player per night" index.
	activeByPlayer map[string]string

	matches    map[string]match.Match
	matchOrder []string
	// openByPartnership is the "one open match per partnership" index.
	openByPartnership map[string]string
	// openByCourt is the "one open match per court per night" index.
	openByCourt map[string]string
}

func NewStore() *Store {
	return &Store{
		nights:            make(map[string]night.Night),
		checkIns:          make(map[string]checkin.CheckIn),
		requests:          make(map[string]partnership.Request),
		partnerships:      make(map[string]partnership.Partnership),
		activeByPlayer:    make(map[string]string),
		matches:           make(map[string]match.Match),
		openByPartnership: make(map[string]string),
		openByCourt:       make(map[string]string),
	}
}

func (s *Store) Nights() *NightRepository {
	return &NightRepository{store: s}
}

func (s *Store) CheckIns() *CheckInRepository {
	return &CheckInRepository{store: s}
}

func (s *Store) Partnerships() *PartnershipRepository {
	return &PartnershipRepository{store: s}
}

func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{store: s}
}

func playerKey(nightID, playerID string) string {
	return nightID + "::" + playerID
}

func courtKey(nightID, label string) string {
	return nightID + "::court::" + label
}

// declinePendingLocked declines every pending request of the night accepted by sel.
// Callers hold s.mu for writing.
func (s *Store) declinePendingLocked(nightID string, sel func(partnership.Request) bool, at time.Time) []partnership.Request {
	declined := make([]partnership.Request, 0)
	for _, id := range s.requestOrder {
		req := s.requests[id]
		if req.NightID != nightID || req.Status != partnership.RequestPending || !sel(req) {
			continue
		}
		req.Status = partnership.RequestDeclined
		req.UpdatedAt = at
		s.requests[id] = req
		declined = append(declined, req)
	}
	return declined
}

// The *Locked readers expect s.mu to be held.

func (s *Store) checkInsLocked(nightID string) []checkin.CheckIn {
	out := make([]checkin.CheckIn, 0)
	for _, item := range s.checkIns {
		if item.NightID == nightID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CheckedInAt.Equal(out[j].CheckedInAt) {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].CheckedInAt.Before(out[j].CheckedInAt)
	})
	return out
}

func (s *Store) requestsLocked(nightID string) []partnership.Request {
	out := make([]partnership.Request, 0)
	for _, id := range s.requestOrder {
		if item := s.requests[id]; item.NightID == nightID {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) partnershipsLocked(nightID string) []partnership.Partnership {
	out := make([]partnership.Partnership, 0)
	for _, id := range s.partnershipOrder {
		if item := s.partnerships[id]; item.NightID == nightID {
			out = append(out, item)
		}
	}
	return out
}

func (s *Store) matchesLocked(nightID string) []match.Match {
	out := make([]match.Match, 0)
	for _, id := range s.matchOrder {
		if item := s.matches[id]; item.NightID == nightID {
			out = append(out, cloneMatch(item))
		}
	}
	return out
}
