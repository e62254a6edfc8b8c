package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	basecache "github.com/riskibarqy/league-night/internal/platform/cache"
)

// NightRepository caches night metadata. Summaries always go to the next repository.
type NightRepository struct {
	next  night.Repository
	cache *basecache.Store[cachedNightByID]
}

type cachedNightByID struct {
	value  night.Night
	exists bool
}

func NewNightRepository(next night.Repository, ttl time.Duration) *NightRepository {
	return &NightRepository{next: next, cache: basecache.NewStore[cachedNightByID](ttl)}
}

func (r *NightRepository) Create(ctx context.Context, item night.Night) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, nightKey(item.ID))
	return nil
}

func (r *NightRepository) GetByID(ctx context.Context, nightID string) (night.Night, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, nightKey(nightID), func(ctx context.Context) (cachedNightByID, error) {
		item, exists, err := r.next.GetByID(ctx, nightID)
		if err != nil {
			return cachedNightByID{}, err
		}
		return cachedNightByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return night.Night{}, false, err
	}

	out := cached.value
	out.CourtLabels = append([]string(nil), cached.value.CourtLabels...)
	return out, cached.exists, nil
}

func (r *NightRepository) UpdateStatus(ctx context.Context, nightID string, from, to night.Status, at time.Time) (night.Night, error) {
	defer r.cache.Invalidate(ctx, nightKey(nightID))
	return r.next.UpdateStatus(ctx, nightID, from, to, at)
}

func (r *NightRepository) Complete(ctx context.Context, nightID string, at time.Time) (night.Night, []partnership.Request, error) {
	defer r.cache.Invalidate(ctx, nightKey(nightID))
	return r.next.Complete(ctx, nightID, at)
}

func (r *NightRepository) Summarize(ctx context.Context, nightID string) (night.Summary, error) {
	return r.next.Summarize(ctx, nightID)
}

// ReadLedger always reads through so the night and its rows come from one unit.
func (r *NightRepository) ReadLedger(ctx context.Context, nightID string) (night.Ledger, bool, error) {
	return r.next.ReadLedger(ctx, nightID)
}

func nightKey(nightID string) string {
	return "night:id:" + nightID
}
