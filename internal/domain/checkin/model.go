package checkin

import (
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("player already checked in")
	// ErrHeldByPartnership is returned when the check-in backs an active partnership.
	ErrHeldByPartnership = errors.New("check-in is held by an active partnership")
)

type CheckIn struct {
	NightID     string
	PlayerID    string
	CheckedInAt time.Time
}
