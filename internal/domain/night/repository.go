package night

import (
	"context"
	"time"

	"github.com/riskibarqy/league-night/internal/domain/partnership"
)

type Repository interface {
	Create(ctx context.Context, item Night) error
	GetByID(ctx context.Context, nightID string) (Night, bool, error)
	// UpdateStatus moves the night from -> to; ErrStatusChanged when the stored status is not from.
	UpdateStatus(ctx context.Context, nightID string, from, to Status, at time.Time) (Night, error)
	// Complete ends an active night and declines its pending requests in the
	// same unit. ErrStatusChanged when the night is not active.
	Complete(ctx context.Context, nightID string, at time.Time) (Night, []partnership.Request, error)
	Summarize(ctx context.Context, nightID string) (Summary, error)
	ReadLedger(ctx context.Context, nightID string) (Ledger, bool, error)
}
