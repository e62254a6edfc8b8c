package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

const (
	constraintCheckInNightPlayer     = "uq_check_ins_night_player"
	constraintRequestPendingPair     = "uq_partnership_requests_pending_pair"
	constraintPartnershipPlayer      = "pk_partnership_players"
	constraintPartnershipPlayerCheck = "fk_partnership_players_check_in"
	constraintMatchParticipant       = "pk_match_participants"
	constraintMatchOpenCourt         = "uq_matches_open_court"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isConstraintViolation reports whether err is a pq error with the given code raised by constraint.
func isConstraintViolation(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == code && pqErr.Constraint == constraint
}

func isUniqueViolation(err error, constraint string) bool {
	return isConstraintViolation(err, codeUniqueViolation, constraint)
}

func isForeignKeyViolation(err error, constraint string) bool {
	return isConstraintViolation(err, codeForeignKeyViolation, constraint)
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}

func nullInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}
