package client

import (
	"fmt"
	"sort"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-night/pkg/wire"
)

// StateContainer is the local copy of one night. It changes only through
// Replace with a snapshot and Apply with realtime frames.
type StateContainer struct {
	nightID string

	mu           sync.RWMutex
	night        wire.Night
	hasNight     bool
	checkIns     map[string]wire.CheckIn
	requests     map[string]wire.PartnershipRequest
	partnerships map[string]wire.Partnership
	matches      map[string]wire.Match
}

func NewStateContainer(nightID string) *StateContainer {
	s := &StateContainer{nightID: nightID}
	s.reset()
	return s
}

func (s *StateContainer) NightID() string {
	return s.nightID
}

// Replace swaps the whole state for the snapshot.
func (s *StateContainer) Replace(snapshot wire.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.night = snapshot.Night
	s.hasNight = true
	for _, item := range snapshot.CheckIns {
		s.checkIns[item.PlayerID] = item
	}
	for _, item := range snapshot.Requests {
		s.requests[item.ID] = item
	}
	for _, item := range snapshot.Partnerships {
		s.partnerships[item.ID] = item
	}
	for _, item := range snapshot.Matches {
		s.matches[item.ID] = item
	}
}

// Apply upserts or deletes the row carried by msg. Applying the same frame
// twice leaves the state unchanged, and frames older than the held row are
// ignored.
func (s *StateContainer) Apply(msg wire.Message) error {
	switch msg.Event {
	case wire.EventCheckIn:
		var item wire.CheckIn
		if err := decodePayload(msg, &item); err != nil {
			return err
		}
		if item.NightID != s.nightID {
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if msg.Type == wire.TypeDelete {
			delete(s.checkIns, item.PlayerID)
			return nil
		}
		s.checkIns[item.PlayerID] = item

	case wire.EventPartnershipRequest:
		var item wire.PartnershipRequest
		if err := decodePayload(msg, &item); err != nil {
			return err
		}
		if item.NightID != s.nightID {
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if msg.Type == wire.TypeDelete {
			delete(s.requests, item.ID)
			return nil
		}
		if held, ok := s.requests[item.ID]; ok && held.Status != "pending" && item.Status == "pending" {
			return nil
		}
		s.requests[item.ID] = item

	case wire.EventPartnership:
		var item wire.Partnership
		if err := decodePayload(msg, &item); err != nil {
			return err
		}
		if item.NightID != s.nightID {
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if msg.Type == wire.TypeDelete {
			delete(s.partnerships, item.ID)
			return nil
		}
		if held, ok := s.partnerships[item.ID]; ok && !held.IsActive && item.IsActive {
			return nil
		}
		s.partnerships[item.ID] = item

	case wire.EventMatch:
		var item wire.Match
		if err := decodePayload(msg, &item); err != nil {
			return err
		}
		if item.NightID != s.nightID {
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if msg.Type == wire.TypeDelete {
			delete(s.matches, item.ID)
			return nil
		}
		if held, ok := s.matches[item.ID]; ok && held.Version > item.Version {
			return nil
		}
		s.matches[item.ID] = item

	case wire.EventNight:
		var item wire.Night
		if err := decodePayload(msg, &item); err != nil {
			return err
		}
		if item.ID != s.nightID {
			return nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.hasNight && nightStatusRank(item.Status) < nightStatusRank(s.night.Status) {
			return nil
		}
		s.night = item
		s.hasNight = true

	default:
		return fmt.Errorf("unknown realtime event %q", msg.Event)
	}
	return nil
}

func (s *StateContainer) Night() (wire.Night, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.night, s.hasNight
}

func (s *StateContainer) CheckIns() []wire.CheckIn {
	s.mu.RLock()
	out := make([]wire.CheckIn, 0, len(s.checkIns))
	for _, item := range s.checkIns {
		out = append(out, item)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckedInAt.Equal(out[j].CheckedInAt) {
			return out[i].CheckedInAt.Before(out[j].CheckedInAt)
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

func (s *StateContainer) Requests() []wire.PartnershipRequest {
	s.mu.RLock()
	out := make([]wire.PartnershipRequest, 0, len(s.requests))
	for _, item := range s.requests {
		out = append(out, item)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *StateContainer) Partnerships() []wire.Partnership {
	s.mu.RLock()
	out := make([]wire.Partnership, 0, len(s.partnerships))
	for _, item := range s.partnerships {
		out = append(out, item)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *StateContainer) Matches() []wire.Match {
	s.mu.RLock()
	out := make([]wire.Match, 0, len(s.matches))
	for _, item := range s.matches {
		out = append(out, item)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Summary derives the night counters from the held rows.
func (s *StateContainer) Summary() wire.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := wire.Summary{CheckedInCount: len(s.checkIns)}
	for _, p := range s.partnerships {
		if p.IsActive {
			out.PartnershipsCount++
		}
	}
	for _, r := range s.requests {
		if r.Status == "pending" {
			out.PendingRequestsCount++
		}
	}
	for _, m := range s.matches {
		switch m.Status {
		case "active", "disputed":
			out.ActiveMatchesCount++
		case "completed":
			out.CompletedMatchesCount++
		}
	}
	return out
}

func (s *StateContainer) reset() {
	s.night = wire.Night{}
	s.hasNight = false
	s.checkIns = make(map[string]wire.CheckIn)
	s.requests = make(map[string]wire.PartnershipRequest)
	s.partnerships = make(map[string]wire.Partnership)
	s.matches = make(map[string]wire.Match)
}

func decodePayload(msg wire.Message, dst any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("realtime %s frame has no payload", msg.Event)
	}
	if err := sonic.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("decode realtime %s payload: %w", msg.Event, err)
	}
	return nil
}

func nightStatusRank(status string) int {
	switch status {
	case "scheduled":
		return 0
	case "active":
		return 1
	case "completed":
		return 2
	default:
		return -1
	}
}
