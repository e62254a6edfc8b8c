package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-night/internal/domain/checkin"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	qb "github.com/riskibarqy/league-night/internal/platform/querybuilder"
)

type CheckInRepository struct {
	db *sqlx.DB
}

func NewCheckInRepository(db *sqlx.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

func (r *CheckInRepository) Insert(ctx context.Context, item checkin.CheckIn) error {
	query, args, err := qb.InsertInto("check_ins").Model(checkInInsertModel{
		NightID:     item.NightID,
		PlayerID:    item.PlayerID,
		CheckedInAt: item.CheckedInAt,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert check-in query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, constraintCheckInNightPlayer) {
			return checkin.ErrDuplicate
		}
		return fmt.Errorf("insert check-in: %w", err)
	}
	return nil
}

func (r *CheckInRepository) Get(ctx context.Context, nightID, playerID string) (checkin.CheckIn, bool, error) {
	query, args, err := qb.Select("*").From("check_ins").
		Where(
			qb.Eq("night_id", nightID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return checkin.CheckIn{}, false, fmt.Errorf("build get check-in query: %w", err)
	}

	var row checkInTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return checkin.CheckIn{}, false, nil
		}
		return checkin.CheckIn{}, false, fmt.Errorf("get check-in: %w", err)
	}
	return checkInFromRow(row), true, nil
}

func (r *CheckInRepository) ListByNight(ctx context.Context, nightID string) ([]checkin.CheckIn, error) {
	return listCheckIns(ctx, r.db, nightID)
}

func listCheckIns(ctx context.Context, q sqlx.QueryerContext, nightID string) ([]checkin.CheckIn, error) {
	query, args, err := qb.Select("*").From("check_ins").
		Where(qb.Eq("night_id", nightID)).
		OrderBy("checked_in_at", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list check-ins query: %w", err)
	}

	var rows []checkInTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}

	out := make([]checkin.CheckIn, 0, len(rows))
	for _, row := range rows {
		out = append(out, checkInFromRow(row))
	}
	return out, nil
}

func (r *CheckInRepository) Delete(ctx context.Context, nightID, playerID string, at time.Time) ([]partnership.Request, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx delete check-in: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("check_ins").
		Where(
			qb.Eq("night_id", nightID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("build delete check-in query: %w", err)
	}
	result, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...)
	if err != nil {
		if isForeignKeyViolation(err, constraintPartnershipPlayerCheck) {
			return nil, true, checkin.ErrHeldByPartnership
		}
		return nil, false, fmt.Errorf("delete check-in: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected delete check-in: %w", err)
	}
	if affected == 0 {
		return nil, false, nil
	}

	declined, err := declinePending(ctx, tx, at,
		qb.Eq("night_id", nightID),
		qb.Or(qb.Eq("requester_id", playerID), qb.Eq("requested_id", playerID)),
	)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit delete check-in tx: %w", err)
	}
	return declined, true, nil
}

func checkInFromRow(row checkInTableModel) checkin.CheckIn {
	return checkin.CheckIn{
		NightID:     row.NightID,
		PlayerID:    row.PlayerID,
		CheckedInAt: row.CheckedInAt,
	}
}
