package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-night/internal/domain/partnership"
	qb "github.com/riskibarqy/league-night/internal/platform/querybuilder"
)

type PartnershipRepository struct {
	db *sqlx.DB
}

func NewPartnershipRepository(db *sqlx.DB) *PartnershipRepository {
	return &PartnershipRepository{db: db}
}

func (r *PartnershipRepository) CreateRequest(ctx context.Context, item partnership.Request) error {
	query, args, err := qb.InsertInto("partnership_requests").Model(partnershipRequestInsertModel{
		PublicID:    item.ID,
		NightID:     item.NightID,
		RequesterID: item.RequesterID,
		RequestedID: item.RequestedID,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert partnership request query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, constraintRequestPendingPair) {
			return partnership.ErrDuplicatePending
		}
		return fmt.Errorf("insert partnership request: %w", err)
	}
	return nil
}

func (r *PartnershipRepository) GetRequest(ctx context.Context, requestID string) (partnership.Request, bool, error) {
	query, args, err := qb.Select("*").From("partnership_requests").
		Where(qb.Eq("public_id", requestID)).
		ToSQL()
	if err != nil {
		return partnership.Request{}, false, fmt.Errorf("build get partnership request query: %w", err)
	}

	var row partnershipRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return partnership.Request{}, false, nil
		}
		return partnership.Request{}, false, fmt.Errorf("get partnership request: %w", err)
	}
	return requestFromRow(row), true, nil
}

func (r *PartnershipRepository) ListRequestsByNight(ctx context.Context, nightID string) ([]partnership.Request, error) {
	return listRequests(ctx, r.db, nightID)
}

func listRequests(ctx context.Context, q sqlx.QueryerContext, nightID string) ([]partnership.Request, error) {
	query, args, err := qb.Select("*").From("partnership_requests").
		Where(qb.Eq("night_id", nightID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list partnership requests query: %w", err)
	}

	var rows []partnershipRequestTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list partnership requests: %w", err)
	}
	return requestsFromRows(rows), nil
}

func (r *PartnershipRepository) AcceptRequest(ctx context.Context, requestID string, item partnership.Partnership, at time.Time) (partnership.Acceptance, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("begin tx accept partnership request: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	players := []string{item.Player1ID, item.Player2ID}
	sort.Strings(players)

	// Competing accepts that share a player queue on the check-in row locks,
	// always taken in player order.
	lockQuery, lockArgs, err := qb.Select("player_id").From("check_ins").
		Where(
			qb.Eq("night_id", item.NightID),
			qb.In("player_id", stringSliceToAny(players)),
		).
		OrderBy("player_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build lock check-ins query: %w", err)
	}
	var checkedIn []string
	if err := tx.SelectContext(ctx, &checkedIn, lockQuery, lockArgs...); err != nil {
		return partnership.Acceptance{}, fmt.Errorf("lock check-ins: %w", err)
	}

	requestQuery, requestArgs, err := qb.Select("*").From("partnership_requests").
		Where(qb.Eq("public_id", requestID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build lock partnership request query: %w", err)
	}
	var requestRow partnershipRequestTableModel
	if err := tx.GetContext(ctx, &requestRow, requestQuery, requestArgs...); err != nil {
		if isNotFound(err) {
			return partnership.Acceptance{}, partnership.ErrRequestResolved
		}
		return partnership.Acceptance{}, fmt.Errorf("lock partnership request: %w", err)
	}
	if requestRow.Status == string(partnership.RequestAccepted) {
		return partnership.Acceptance{}, partnership.ErrRequestResolved
	}

	partneredQuery, partneredArgs, err := qb.Select("player_id").From("partnership_players").
		Where(
			qb.Eq("night_id", item.NightID),
			qb.In("player_id", stringSliceToAny(players)),
		).
		ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build partnered players query: %w", err)
	}
	var partnered []string
	if err := tx.SelectContext(ctx, &partnered, partneredQuery, partneredArgs...); err != nil {
		return partnership.Acceptance{}, fmt.Errorf("select partnered players: %w", err)
	}
	// A request declined because one of its players partnered elsewhere reports the partnership.
	if len(partnered) > 0 {
		return partnership.Acceptance{}, partnership.ErrPlayerPartnered
	}
	if requestRow.Status != string(partnership.RequestPending) {
		return partnership.Acceptance{}, partnership.ErrRequestResolved
	}
	if len(checkedIn) < len(players) {
		return partnership.Acceptance{}, partnership.ErrPlayerNotCheckedIn
	}

	acceptQuery, acceptArgs, err := qb.Update("partnership_requests").
		Set("status", string(partnership.RequestAccepted)).
		Set("updated_at", at).
		Where(qb.Eq("id", requestRow.ID)).
		Returning("*").
		ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build accept partnership request query: %w", err)
	}
	var acceptedRow partnershipRequestTableModel
	if err := tx.GetContext(ctx, &acceptedRow, acceptQuery, acceptArgs...); err != nil {
		return partnership.Acceptance{}, fmt.Errorf("accept partnership request: %w", err)
	}

	item.IsActive = true
	partnershipQuery, partnershipArgs, err := qb.InsertInto("partnerships").Model(partnershipInsertModel{
		PublicID:  item.ID,
		NightID:   item.NightID,
		Player1ID: item.Player1ID,
		Player2ID: item.Player2ID,
		IsActive:  item.IsActive,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build insert partnership query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, partnershipQuery, partnershipArgs...); err != nil {
		return partnership.Acceptance{}, fmt.Errorf("insert partnership: %w", err)
	}

	playersQuery, playersArgs, err := qb.InsertInto("partnership_players").
		Columns("night_id", "player_id", "partnership_id").
		Values(item.NightID, item.Player1ID, item.ID).
		Values(item.NightID, item.Player2ID, item.ID).
		ToSQL()
	if err != nil {
		return partnership.Acceptance{}, fmt.Errorf("build insert partnership players query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, playersQuery, playersArgs...); err != nil {
		switch {
		case isUniqueViolation(err, constraintPartnershipPlayer):
			return partnership.Acceptance{}, partnership.ErrPlayerPartnered
		case isForeignKeyViolation(err, constraintPartnershipPlayerCheck):
			return partnership.Acceptance{}, partnership.ErrPlayerNotCheckedIn
		}
		return partnership.Acceptance{}, fmt.Errorf("insert partnership players: %w", err)
	}

	declined, err := declinePending(ctx, tx, at,
		qb.Eq("night_id", item.NightID),
		qb.Or(
			qb.In("requester_id", []any{item.Player1ID, item.Player2ID}),
			qb.In("requested_id", []any{item.Player1ID, item.Player2ID}),
		),
	)
	if err != nil {
		return partnership.Acceptance{}, err
	}

	if err := tx.Commit(); err != nil {
		return partnership.Acceptance{}, fmt.Errorf("commit accept partnership request tx: %w", err)
	}

	return partnership.Acceptance{
		Request:     requestFromRow(acceptedRow),
		Partnership: item,
		Declined:    declined,
	}, nil
}

func (r *PartnershipRepository) DeclineRequest(ctx context.Context, requestID string, at time.Time) (partnership.Request, error) {
	query, args, err := qb.Update("partnership_requests").
		Set("status", string(partnership.RequestDeclined)).
		Set("updated_at", at).
		Where(
			qb.Eq("public_id", requestID),
			qb.Eq("status", string(partnership.RequestPending)),
		).
		Returning("*").
		ToSQL()
	if err != nil {
		return partnership.Request{}, fmt.Errorf("build decline partnership request query: %w", err)
	}

	var row partnershipRequestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return partnership.Request{}, partnership.ErrRequestResolved
		}
		return partnership.Request{}, fmt.Errorf("decline partnership request: %w", err)
	}
	return requestFromRow(row), nil
}

func (r *PartnershipRepository) GetActiveByPlayer(ctx context.Context, nightID, playerID string) (partnership.Partnership, bool, error) {
	query, args, err := qb.Select("p.*").
		From("partnerships p JOIN partnership_players pp ON pp.partnership_id = p.public_id").
		Where(
			qb.Eq("pp.night_id", nightID),
			qb.Eq("pp.player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, false, fmt.Errorf("build get active partnership query: %w", err)
	}

	var row partnershipTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return partnership.Partnership{}, false, nil
		}
		return partnership.Partnership{}, false, fmt.Errorf("get active partnership: %w", err)
	}
	return partnershipFromRow(row), true, nil
}

func (r *PartnershipRepository) GetByID(ctx context.Context, partnershipID string) (partnership.Partnership, bool, error) {
	query, args, err := qb.Select("*").From("partnerships").
		Where(qb.Eq("public_id", partnershipID)).
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, false, fmt.Errorf("build get partnership query: %w", err)
	}

	var row partnershipTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return partnership.Partnership{}, false, nil
		}
		return partnership.Partnership{}, false, fmt.Errorf("get partnership: %w", err)
	}
	return partnershipFromRow(row), true, nil
}

func (r *PartnershipRepository) ListByNight(ctx context.Context, nightID string) ([]partnership.Partnership, error) {
	return listPartnerships(ctx, r.db, nightID)
}

func listPartnerships(ctx context.Context, q sqlx.QueryerContext, nightID string) ([]partnership.Partnership, error) {
	query, args, err := qb.Select("*").From("partnerships").
		Where(qb.Eq("night_id", nightID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list partnerships query: %w", err)
	}

	var rows []partnershipTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list partnerships: %w", err)
	}

	out := make([]partnership.Partnership, 0, len(rows))
	for _, row := range rows {
		out = append(out, partnershipFromRow(row))
	}
	return out, nil
}

func (r *PartnershipRepository) Deactivate(ctx context.Context, partnershipID string, at time.Time) (partnership.Partnership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("begin tx deactivate partnership: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockQuery, lockArgs, err := qb.Select("*").From("partnerships").
		Where(qb.Eq("public_id", partnershipID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("build lock partnership query: %w", err)
	}
	var row partnershipTableModel
	if err := tx.GetContext(ctx, &row, lockQuery, lockArgs...); err != nil {
		if isNotFound(err) {
			return partnership.Partnership{}, partnership.ErrNotActive
		}
		return partnership.Partnership{}, fmt.Errorf("lock partnership: %w", err)
	}
	if !row.IsActive {
		return partnership.Partnership{}, partnership.ErrNotActive
	}

	busyQuery, busyArgs, err := qb.Select("match_id").From("match_participants").
		Where(qb.Eq("partnership_id", partnershipID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("build open match lookup query: %w", err)
	}
	var matchID string
	err = tx.GetContext(ctx, &matchID, busyQuery, busyArgs...)
	switch {
	case err == nil:
		return partnership.Partnership{}, partnership.ErrOnOpenMatch
	case !isNotFound(err):
		return partnership.Partnership{}, fmt.Errorf("lookup open match: %w", err)
	}

	updateQuery, updateArgs, err := qb.Update("partnerships").
		Set("is_active", false).
		Set("updated_at", at).
		Where(qb.Eq("id", row.ID)).
		Returning("*").
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("build deactivate partnership query: %w", err)
	}
	var updated partnershipTableModel
	if err := tx.GetContext(ctx, &updated, updateQuery, updateArgs...); err != nil {
		return partnership.Partnership{}, fmt.Errorf("deactivate partnership: %w", err)
	}

	releaseQuery, releaseArgs, err := qb.DeleteFrom("partnership_players").
		Where(qb.Eq("partnership_id", partnershipID)).
		ToSQL()
	if err != nil {
		return partnership.Partnership{}, fmt.Errorf("build release partnership players query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, releaseQuery, releaseArgs...); err != nil {
		return partnership.Partnership{}, fmt.Errorf("release partnership players: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return partnership.Partnership{}, fmt.Errorf("commit deactivate partnership tx: %w", err)
	}
	return partnershipFromRow(updated), nil
}

// declinePending declines every pending request matching conditions inside tx.
// Rows are locked in id order first so overlapping units cannot deadlock.
func declinePending(ctx context.Context, tx *sqlx.Tx, at time.Time, conditions ...qb.Condition) ([]partnership.Request, error) {
	where := append([]qb.Condition{qb.Eq("status", string(partnership.RequestPending))}, conditions...)

	lockQuery, lockArgs, err := qb.Select("id").From("partnership_requests").
		Where(where...).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build lock pending requests query: %w", err)
	}
	var ids []int64
	if err := tx.SelectContext(ctx, &ids, lockQuery, lockArgs...); err != nil {
		return nil, fmt.Errorf("lock pending requests: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	idArgs := make([]any, 0, len(ids))
	for _, id := range ids {
		idArgs = append(idArgs, id)
	}
	updateQuery, updateArgs, err := qb.Update("partnership_requests").
		Set("status", string(partnership.RequestDeclined)).
		Set("updated_at", at).
		Where(qb.In("id", idArgs)).
		Returning("*").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build decline pending requests query: %w", err)
	}
	var rows []partnershipRequestTableModel
	if err := tx.SelectContext(ctx, &rows, updateQuery, updateArgs...); err != nil {
		return nil, fmt.Errorf("decline pending requests: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return requestsFromRows(rows), nil
}

func requestFromRow(row partnershipRequestTableModel) partnership.Request {
	return partnership.Request{
		ID:          row.PublicID,
		NightID:     row.NightID,
		RequesterID: row.RequesterID,
		RequestedID: row.RequestedID,
		Status:      partnership.RequestStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func requestsFromRows(rows []partnershipRequestTableModel) []partnership.Request {
	out := make([]partnership.Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, requestFromRow(row))
	}
	return out
}

func partnershipFromRow(row partnershipTableModel) partnership.Partnership {
	return partnership.Partnership{
		ID:        row.PublicID,
		NightID:   row.NightID,
		Player1ID: row.Player1ID,
		Player2ID: row.Player2ID,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
