package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-night/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func (r *MatchRepository) CreateBatch(_ context.Context, items []match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	seen := make(map[string]struct{}, len(items)*2)
	courts := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, exists := r.store.matches[item.ID]; exists {
			return fmt.Errorf("match %s already exists", item.ID)
		}
		for _, pid := range []string{item.Partnership1ID, item.Partnership2ID} {
			if _, busy := r.store.openByPartnership[pid]; busy {
				return match.ErrPartnershipBusy
			}
			if _, dup := seen[pid]; dup {
				return match.ErrPartnershipBusy
			}
			seen[pid] = struct{}{}
		}
		if item.IsOpen() {
			court := courtKey(item.NightID, item.CourtLabel)
			if _, busy := r.store.openByCourt[court]; busy {
				return match.ErrCourtBusy
			}
			if _, dup := courts[court]; dup {
				return match.ErrCourtBusy
			}
			courts[court] = struct{}{}
		}
	}

	for _, item := range items {
		r.store.matches[item.ID] = cloneMatch(item)
		r.store.matchOrder = append(r.store.matchOrder, item.ID)
		if item.IsOpen() {
			r.store.openByPartnership[item.Partnership1ID] = item.ID
			r.store.openByPartnership[item.Partnership2ID] = item.ID
			r.store.openByCourt[courtKey(item.NightID, item.CourtLabel)] = item.ID
		}
	}
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) ListByNight(_ context.Context, nightID string) ([]match.Match, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.matchesLocked(nightID), nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) (match.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.matches[item.ID]
	if !ok || current.Version != item.Version {
		return match.Match{}, match.ErrVersionConflict
	}

	item.Version++
	r.store.matches[item.ID] = cloneMatch(item)
	if !item.IsOpen() {
		delete(r.store.openByPartnership, item.Partnership1ID)
		delete(r.store.openByPartnership, item.Partnership2ID)
		delete(r.store.openByCourt, courtKey(item.NightID, item.CourtLabel))
	}
	return cloneMatch(item), nil
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	copied.Team1Score = cloneInt(m.Team1Score)
	copied.Team2Score = cloneInt(m.Team2Score)
	copied.PendingTeam1Score = cloneInt(m.PendingTeam1Score)
	copied.PendingTeam2Score = cloneInt(m.PendingTeam2Score)
	return copied
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
