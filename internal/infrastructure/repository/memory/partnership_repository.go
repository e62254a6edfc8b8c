package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type PartnershipRepository struct {
	store *Store
}

func (r *PartnershipRepository) CreateRequest(_ context.Context, item partnership.Request) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.requests[item.ID]; exists {
		return fmt.Errorf("request %s already exists", item.ID)
	}
	for _, id := range r.store.requestOrder {
		existing := r.store.requests[id]
		if existing.Status == partnership.RequestPending && existing.SamePair(item) {
			return partnership.ErrDuplicatePending
		}
	}

	r.store.requests[item.ID] = item
	r.store.requestOrder = append(r.store.requestOrder, item.ID)
	return nil
}

func (r *PartnershipRepository) GetRequest(_ context.Context, requestID string) (partnership.Request, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.requests[requestID]
	return item, ok, nil
}

func (r *PartnershipRepository) ListRequestsByNight(_ context.Context, nightID string) ([]partnership.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.requestsLocked(nightID), nil
}

func (r *PartnershipRepository) AcceptRequest(_ context.Context, requestID string, item partnership.Partnership, at time.Time) (partnership.Acceptance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[requestID]
	if !ok || req.Status == partnership.RequestAccepted {
		return partnership.Acceptance{}, partnership.ErrRequestResolved
	}

	// A request declined because one of its players partnered elsewhere reports the partnership.
	key1 := playerKey(item.NightID, item.Player1ID)
	key2 := playerKey(item.NightID, item.Player2ID)
	if _, partnered := r.store.activeByPlayer[key1]; partnered {
		return partnership.Acceptance{}, partnership.ErrPlayerPartnered
	}
	if _, partnered := r.store.activeByPlayer[key2]; partnered {
		return partnership.Acceptance{}, partnership.ErrPlayerPartnered
	}
	if req.Status != partnership.RequestPending {
		return partnership.Acceptance{}, partnership.ErrRequestResolved
	}
	if _, ok := r.store.checkIns[key1]; !ok {
		return partnership.Acceptance{}, partnership.ErrPlayerNotCheckedIn
	}
	if _, ok := r.store.checkIns[key2]; !ok {
		return partnership.Acceptance{}, partnership.ErrPlayerNotCheckedIn
	}

	req.Status = partnership.RequestAccepted
	req.UpdatedAt = at
	r.store.requests[requestID] = req

	item.IsActive = true
	r.store.partnerships[item.ID] = item
	r.store.partnershipOrder = append(r.store.partnershipOrder, item.ID)
	r.store.activeByPlayer[key1] = item.ID
	r.store.activeByPlayer[key2] = item.ID

	declined := r.store.declinePendingLocked(item.NightID, func(other partnership.Request) bool {
		return other.Involves(item.Player1ID) || other.Involves(item.Player2ID)
	}, at)

	return partnership.Acceptance{
		Request:     req,
		Partnership: item,
		Declined:    declined,
	}, nil
}

func (r *PartnershipRepository) DeclineRequest(_ context.Context, requestID string, at time.Time) (partnership.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[requestID]
	if !ok || req.Status != partnership.RequestPending {
		return partnership.Request{}, partnership.ErrRequestResolved
	}
	req.Status = partnership.RequestDeclined
	req.UpdatedAt = at
	r.store.requests[requestID] = req
	return req, nil
}

func (r *PartnershipRepository) GetActiveByPlayer(_ context.Context, nightID, playerID string) (partnership.Partnership, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.activeByPlayer[playerKey(nightID, playerID)]
	if !ok {
		return partnership.Partnership{}, false, nil
	}
	return r.store.partnerships[id], true, nil
}

func (r *PartnershipRepository) GetByID(_ context.Context, partnershipID string) (partnership.Partnership, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.partnerships[partnershipID]
	return item, ok, nil
}

func (r *PartnershipRepository) ListByNight(_ context.Context, nightID string) ([]partnership.Partnership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.partnershipsLocked(nightID), nil
}

func (r *PartnershipRepository) Deactivate(_ context.Context, partnershipID string, at time.Time) (partnership.Partnership, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.partnerships[partnershipID]
	if !ok || !item.IsActive {
		return partnership.Partnership{}, partnership.ErrNotActive
	}
	if _, busy := r.store.openByPartnership[partnershipID]; busy {
		return partnership.Partnership{}, partnership.ErrOnOpenMatch
	}

	item.IsActive = false
	item.UpdatedAt = at
	r.store.partnerships[partnershipID] = item
	delete(r.store.activeByPlayer, playerKey(item.NightID, item.Player1ID))
	delete(r.store.activeByPlayer, playerKey(item.NightID, item.Player2ID))
	return item, nil
}
