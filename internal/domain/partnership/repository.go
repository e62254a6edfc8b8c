package partnership

import (
	"context"
	"time"
)

type Repository interface {
	CreateRequest(ctx context.Context, item Request) error
	GetRequest(ctx context.Context, requestID string) (Request, bool, error)
	ListRequestsByNight(ctx context.Context, nightID string) ([]Request, error)
	// AcceptRequest accepts the pending request, creates the partnership and declines
	// every other pending request of both players as one atomic unit.
	AcceptRequest(ctx context.Context, requestID string, item Partnership, at time.Time) (Acceptance, error)
	DeclineRequest(ctx context.Context, requestID string, at time.Time) (Request, error)

	GetActiveByPlayer(ctx context.Context, nightID, playerID string) (Partnership, bool, error)
	GetByID(ctx context.Context, partnershipID string) (Partnership, bool, error)
	ListByNight(ctx context.Context, nightID string) ([]Partnership, error)
	Deactivate(ctx context.Context, partnershipID string, at time.Time) (Partnership, error)
}
