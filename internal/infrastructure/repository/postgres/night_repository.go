package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/league-night/internal/domain/night"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	qb "github.com/riskibarqy/league-night/internal/platform/querybuilder"
)

// summarizeNightQuery derives every counter from the ledger tables in one round trip.
const summarizeNightQuery = `SELECT
    (SELECT COUNT(*) FROM check_ins WHERE night_id = $1) AS checked_in_count,
    (SELECT COUNT(*) FROM partnerships WHERE night_id = $1 AND is_active) AS partnerships_count,
    (SELECT COUNT(*) FROM partnership_requests WHERE night_id = $1 AND status = 'pending') AS pending_requests_count,
    (SELECT COUNT(*) FROM matches WHERE night_id = $1 AND status IN ('active', 'disputed')) AS active_matches_count,
    (SELECT COUNT(*) FROM matches WHERE night_id = $1 AND status = 'completed') AS completed_matches_count`

type NightRepository struct {
	db *sqlx.DB
}

func NewNightRepository(db *sqlx.DB) *NightRepository {
	return &NightRepository{db: db}
}

func (r *NightRepository) Create(ctx context.Context, item night.Night) error {
	insertModel := nightInsertModel{
		PublicID:        item.ID,
		LeagueID:        item.LeagueID,
		NightDate:       item.Date,
		Status:          string(item.Status),
		CourtsAvailable: item.CourtsAvailable,
		CourtLabels:     pq.StringArray(append([]string{}, item.CourtLabels...)),
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}

	query, args, err := qb.InsertInto("league_nights").Model(insertModel).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert league night query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert league night: %w", err)
	}
	return nil
}

func (r *NightRepository) GetByID(ctx context.Context, nightID string) (night.Night, bool, error) {
	return getNight(ctx, r.db, nightID)
}

func getNight(ctx context.Context, q sqlx.QueryerContext, nightID string) (night.Night, bool, error) {
	query, args, err := qb.Select("*").From("league_nights").
		Where(qb.Eq("public_id", nightID)).
		ToSQL()
	if err != nil {
		return night.Night{}, false, fmt.Errorf("build get league night query: %w", err)
	}

	var row nightTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return night.Night{}, false, nil
		}
		return night.Night{}, false, fmt.Errorf("get league night: %w", err)
	}
	return nightFromRow(row), true, nil
}

func (r *NightRepository) UpdateStatus(ctx context.Context, nightID string, from, to night.Status, at time.Time) (night.Night, error) {
	return updateNightStatus(ctx, r.db, nightID, from, to, at)
}

func updateNightStatus(ctx context.Context, q sqlx.QueryerContext, nightID string, from, to night.Status, at time.Time) (night.Night, error) {
	query, args, err := qb.Update("league_nights").
		Set("status", string(to)).
		Set("updated_at", at).
		Where(
			qb.Eq("public_id", nightID),
			qb.Eq("status", string(from)),
		).
		Returning("*").
		ToSQL()
	if err != nil {
		return night.Night{}, fmt.Errorf("build update league night status query: %w", err)
	}

	var row nightTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return night.Night{}, night.ErrStatusChanged
		}
		return night.Night{}, fmt.Errorf("update league night status: %w", err)
	}
	return nightFromRow(row), nil
}

// Complete ends the night and declines its pending requests in one transaction.
// Accepts lock the request row, so each one either commits before the decline
// or finds the request declined.
func (r *NightRepository) Complete(ctx context.Context, nightID string, at time.Time) (night.Night, []partnership.Request, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return night.Night{}, nil, fmt.Errorf("begin tx complete league night: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, err := updateNightStatus(ctx, tx, nightID, night.StatusActive, night.StatusCompleted, at)
	if err != nil {
		return night.Night{}, nil, err
	}
	declined, err := declinePending(ctx, tx, at, qb.Eq("night_id", nightID))
	if err != nil {
		return night.Night{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return night.Night{}, nil, fmt.Errorf("commit complete league night tx: %w", err)
	}
	return item, declined, nil
}

func (r *NightRepository) Summarize(ctx context.Context, nightID string) (night.Summary, error) {
	var row nightSummaryModel
	if err := r.db.GetContext(ctx, &row, summarizeNightQuery, nightID); err != nil {
		return night.Summary{}, fmt.Errorf("summarize league night: %w", err)
	}
	return night.Summary{
		CheckedInCount:        row.CheckedInCount,
		PartnershipsCount:     row.PartnershipsCount,
		PendingRequestsCount:  row.PendingRequestsCount,
		ActiveMatchesCount:    row.ActiveMatchesCount,
		CompletedMatchesCount: row.CompletedMatchesCount,
	}, nil
}

// ReadLedger reads the night and its rows from one repeatable-read snapshot.
func (r *NightRepository) ReadLedger(ctx context.Context, nightID string) (night.Ledger, bool, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return night.Ledger{}, false, fmt.Errorf("begin tx read league night ledger: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, exists, err := getNight(ctx, tx, nightID)
	if err != nil || !exists {
		return night.Ledger{}, exists, err
	}
	out := night.Ledger{Night: item}
	if out.CheckIns, err = listCheckIns(ctx, tx, item.ID); err != nil {
		return night.Ledger{}, false, err
	}
	if out.Requests, err = listRequests(ctx, tx, item.ID); err != nil {
		return night.Ledger{}, false, err
	}
	if out.Partnerships, err = listPartnerships(ctx, tx, item.ID); err != nil {
		return night.Ledger{}, false, err
	}
	if out.Matches, err = listMatches(ctx, tx, item.ID); err != nil {
		return night.Ledger{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return night.Ledger{}, false, fmt.Errorf("commit read league night ledger tx: %w", err)
	}
	return out, true, nil
}

func nightFromRow(row nightTableModel) night.Night {
	return night.Night{
		ID:              row.PublicID,
		LeagueID:        row.LeagueID,
		Date:            row.NightDate,
		Status:          night.Status(row.Status),
		CourtsAvailable: row.CourtsAvailable,
		CourtLabels:     append([]string(nil), row.CourtLabels...),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
