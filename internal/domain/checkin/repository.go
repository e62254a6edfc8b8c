package checkin

import (
	"context"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type Repository interface {
	Insert(ctx context.Context, item CheckIn) error
	Get(ctx context.Context, nightID, playerID string) (CheckIn, bool, error)
	ListByNight(ctx context.Context, nightID string) ([]CheckIn, error)
	// Delete removes the check-in and declines the player's pending requests in one unit.
	// It reports false when no check-in exists.
	Delete(ctx context.Context, nightID, playerID string, at time.Time) ([]partnership.Request, bool, error)
}
