package match

import "context"

type Repository interface {
	// CreateBatch inserts all matches or none; ErrPartnershipBusy when a partnership
	// is already on an open match, ErrCourtBusy when its court is.
	CreateBatch(ctx context.Context, items []Match) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByNight(ctx context.Context, nightID string) ([]Match, error)
	// Update stores item when the stored version still equals item.Version and
	// returns the row with its bumped version; ErrVersionConflict otherwise.
	Update(ctx context.Context, item Match) (Match, error)
}
