package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-night/internal/domain/match"
	qb "github.com/riskibarqy/league-night/internal/platform/querybuilder"
)

var matchInsertColumns = []string{
	"public_id",
	"night_id",
	"partnership1_id",
	"partnership2_id",
	"court_label",
	"status",
	"score_status",
	"team1_score",
	"team2_score",
	"pending_team1_score",
	"pending_team2_score",
	"pending_submitted_by",
	"version",
	"created_at",
	"updated_at",
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) CreateBatch(ctx context.Context, items []match.Match) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	partnershipIDs := make([]any, 0, len(items)*2)
	for _, item := range items {
		partnershipIDs = append(partnershipIDs, item.Partnership1ID, item.Partnership2ID)
	}

	// Locking the partnerships serializes scheduling against removal.
	lockQuery, lockArgs, err := qb.Select("public_id").From("partnerships").
		Where(
			qb.In("public_id", partnershipIDs),
			qb.IsTrue("is_active"),
		).
		OrderBy("public_id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock partnerships query: %w", err)
	}
	var active []string
	if err := tx.SelectContext(ctx, &active, lockQuery, lockArgs...); err != nil {
		return fmt.Errorf("lock partnerships: %w", err)
	}
	if len(active) != len(partnershipIDs) {
		return match.ErrPartnershipBusy
	}

	matchBuilder := qb.InsertInto("matches").Columns(matchInsertColumns...)
	participantBuilder := qb.InsertInto("match_participants").Columns("partnership_id", "match_id")
	openCount := 0
	for _, item := range items {
		matchBuilder.Values(
			item.ID,
			item.NightID,
			item.Partnership1ID,
			item.Partnership2ID,
			item.CourtLabel,
			string(item.Status),
			string(item.ScoreStatus),
			nullInt(item.Team1Score),
			nullInt(item.Team2Score),
			nullInt(item.PendingTeam1Score),
			nullInt(item.PendingTeam2Score),
			item.PendingSubmittedBy,
			item.Version,
			item.CreatedAt,
			item.UpdatedAt,
		)
		if item.IsOpen() {
			openCount++
			participantBuilder.Values(item.Partnership1ID, item.ID)
			participantBuilder.Values(item.Partnership2ID, item.ID)
		}
	}

	matchQuery, matchArgs, err := matchBuilder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert matches query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, matchQuery, matchArgs...); err != nil {
		if isUniqueViolation(err, constraintMatchOpenCourt) {
			return match.ErrCourtBusy
		}
		return fmt.Errorf("insert matches: %w", err)
	}

	if openCount > 0 {
		participantQuery, participantArgs, err := participantBuilder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert match participants query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, participantQuery, participantArgs...); err != nil {
			if isUniqueViolation(err, constraintMatchParticipant) {
				return match.ErrPartnershipBusy
			}
			return fmt.Errorf("insert match participants: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create matches tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByNight(ctx context.Context, nightID string) ([]match.Match, error) {
	return listMatches(ctx, r.db, nightID)
}

func listMatches(ctx context.Context, q sqlx.QueryerContext, nightID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("night_id", nightID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Update(ctx context.Context, item match.Match) (match.Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, fmt.Errorf("begin tx update match: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("matches").
		Set("status", string(item.Status)).
		Set("score_status", string(item.ScoreStatus)).
		Set("team1_score", nullInt(item.Team1Score)).
		Set("team2_score", nullInt(item.Team2Score)).
		Set("pending_team1_score", nullInt(item.PendingTeam1Score)).
		Set("pending_team2_score", nullInt(item.PendingTeam2Score)).
		Set("pending_submitted_by", item.PendingSubmittedBy).
		Set("updated_at", item.UpdatedAt).
		Increment("version").
		Where(
			qb.Eq("public_id", item.ID),
			qb.Eq("version", item.Version),
		).
		Returning("*").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build update match query: %w", err)
	}

	var row matchTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, match.ErrVersionConflict
		}
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}

	stored := matchFromRow(row)
	if !stored.IsOpen() {
		releaseQuery, releaseArgs, err := qb.DeleteFrom("match_participants").
			Where(qb.Eq("match_id", stored.ID)).
			ToSQL()
		if err != nil {
			return match.Match{}, fmt.Errorf("build release match participants query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, releaseQuery, releaseArgs...); err != nil {
			return match.Match{}, fmt.Errorf("release match participants: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, fmt.Errorf("commit update match tx: %w", err)
	}
	return stored, nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:                 row.PublicID,
		NightID:            row.NightID,
		Partnership1ID:     row.Partnership1ID,
		Partnership2ID:     row.Partnership2ID,
		CourtLabel:         row.CourtLabel,
		Status:             match.Status(row.Status),
		ScoreStatus:        match.ScoreStatus(row.ScoreStatus),
		Team1Score:         intPtr(row.Team1Score),
		Team2Score:         intPtr(row.Team2Score),
		PendingTeam1Score:  intPtr(row.PendingTeam1Score),
		PendingTeam2Score:  intPtr(row.PendingTeam2Score),
		PendingSubmittedBy: row.PendingSubmittedBy,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
