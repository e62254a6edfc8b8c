package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type NightRepository struct {
	store *Store
}

func (r *NightRepository) Create(_ context.Context, item night.Night) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.nights[item.ID]; exists {
		return fmt.Errorf("night %s already exists", item.ID)
	}
	r.store.nights[item.ID] = cloneNight(item)
	return nil
}

func (r *NightRepository) GetByID(_ context.Context, nightID string) (night.Night, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.nights[nightID]
	if !ok {
		return night.Night{}, false, nil
	}
	return cloneNight(item), true, nil
}

func (r *NightRepository) UpdateStatus(_ context.Context, nightID string, from, to night.Status, at time.Time) (night.Night, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.nights[nightID]
	if !ok || item.Status != from {
		return night.Night{}, night.ErrStatusChanged
	}
	item.Status = to
	item.UpdatedAt = at
	r.store.nights[nightID] = item
	return cloneNight(item), nil
}

// Complete ends the night and declines its pending requests under one lock.
func (r *NightRepository) Complete(_ context.Context, nightID string, at time.Time) (night.Night, []partnership.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.nights[nightID]
	if !ok || item.Status != night.StatusActive {
		return night.Night{}, nil, night.ErrStatusChanged
	}
	item.Status = night.StatusCompleted
	item.UpdatedAt = at
	r.store.nights[nightID] = item

	declined := r.store.declinePendingLocked(nightID, func(partnership.Request) bool { return true }, at)
	return cloneNight(item), declined, nil
}

func (r *NightRepository) Summarize(_ context.Context, nightID string) (night.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.ledgerLocked(night.Night{ID: nightID}).Summary(), nil
}

// ReadLedger copies the night and all of its rows under one read lock.
func (r *NightRepository) ReadLedger(_ context.Context, nightID string) (night.Ledger, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.nights[nightID]
	if !ok {
		return night.Ledger{}, false, nil
	}
	return r.ledgerLocked(cloneNight(item)), true, nil
}

func (r *NightRepository) ledgerLocked(item night.Night) night.Ledger {
	return night.Ledger{
		Night:        item,
		CheckIns:     r.store.checkInsLocked(item.ID),
		Requests:     r.store.requestsLocked(item.ID),
		Partnerships: r.store.partnershipsLocked(item.ID),
		Matches:      r.store.matchesLocked(item.ID),
	}
}

func cloneNight(n night.Night) night.Night {
	copied := n
	copied.CourtLabels = append([]string(nil), n.CourtLabels...)
	return copied
}
