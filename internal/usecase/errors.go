package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("someone else already did this")
	ErrForbidden             = errors.New("you can't do that")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Conflict reasons. Each one matches ErrConflict under errors.Is and no
// other reason.
var (
	ErrAlreadyCheckedIn  = conflict("player is already checked in")
	ErrPartnershipActive = conflict("player must leave the partnership first")
	ErrNotCheckedIn      = conflict("both players must be checked in")
	ErrAlreadyPartnered  = conflict("player is already partnered")
	ErrDuplicateRequest  = conflict("a request between these players is already pending")
	ErrNotPending        = conflict("request is no longer pending")
	ErrAlreadyPending    = conflict("a score is already waiting for confirmation")
	ErrScoreNotPending   = conflict("no score is waiting for confirmation")
	ErrNightNotActive    = conflict("league night is not running")
	ErrNightClosed       = conflict("league night is over")
	ErrMatchInProgress   = conflict("partnership is playing a match")
	ErrMatchClosed       = conflict("match is not open for scoring")
	ErrStaleWrite        = conflict("match changed while saving")
)

// ErrNotParticipant matches ErrForbidden under errors.Is.
var ErrNotParticipant error = &reasonError{msg: "not playing this match", category: ErrForbidden}

// reasonError is a specific failure inside a category. It is identified by
// pointer and by its message, and also matches its category.
type reasonError struct {
	msg      string
	category error
}

func (e *reasonError) Error() string { return e.msg }

func (e *reasonError) Is(target error) bool { return target == e.category }

func conflict(msg string) error {
	return &reasonError{msg: msg, category: ErrConflict}
}
