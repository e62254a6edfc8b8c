package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/league-night/internal/domain/night"
)

// BootstrapSeed inserts nights that do not exist yet. Existing rows are left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, nights []night.Night) error {
	if len(nights) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, n := range nights {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO league_nights (public_id, league_id, night_date, status, courts_available, court_labels, created_at, updated_at)
VALUES (:public_id, :league_id, :night_date, :status, :courts_available, :court_labels, :created_at, :updated_at)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":        n.ID,
			"league_id":        n.LeagueID,
			"night_date":       n.Date,
			"status":           string(n.Status),
			"courts_available": n.CourtsAvailable,
			"court_labels":     pq.StringArray(append([]string{}, n.CourtLabels...)),
			"created_at":       n.CreatedAt,
			"updated_at":       n.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed night %s query: %w", n.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed night %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
