package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type CheckInRepository struct {
	store *Store
}

func (r *CheckInRepository) Insert(_ context.Context, item checkin.CheckIn) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := playerKey(item.NightID, item.PlayerID)
	if _, exists := r.store.checkIns[key]; exists {
		return checkin.ErrDuplicate
	}
	r.store.checkIns[key] = item
	return nil
}

func (r *CheckInRepository) Get(_ context.Context, nightID, playerID string) (checkin.CheckIn, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.checkIns[playerKey(nightID, playerID)]
	return item, ok, nil
}

func (r *CheckInRepository) ListByNight(_ context.Context, nightID string) ([]checkin.CheckIn, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.checkInsLocked(nightID), nil
}

func (r *CheckInRepository) Delete(_ context.Context, nightID, playerID string, at time.Time) ([]partnership.Request, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := playerKey(nightID, playerID)
	if _, exists := r.store.checkIns[key]; !exists {
		return nil, false, nil
	}
	if _, partnered := r.store.activeByPlayer[key]; partnered {
		return nil, true, checkin.ErrHeldByPartnership
	}

	declined := r.store.declinePendingLocked(nightID, func(req partnership.Request) bool {
		return req.Involves(playerID)
	}, at)
	delete(r.store.checkIns, key)
	return declined, true, nil
}
