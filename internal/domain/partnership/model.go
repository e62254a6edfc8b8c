package partnership

import (
	"errors"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

var (
	ErrDuplicatePending   = errors.New("pending request already exists for pair")
	ErrPlayerPartnered    = errors.New("player already holds an active partnership")
	ErrPlayerNotCheckedIn = errors.New("player is not checked in")
	ErrRequestResolved    = errors.New("request is no longer pending")
	ErrNotActive          = errors.New("partnership is not active")
	ErrOnOpenMatch        = errors.New("partnership is on an open match")
)

type Request struct {
	ID          string
	NightID     string
	RequesterID string
	RequestedID string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r Request) Involves(playerID string) bool {
	return r.RequesterID == playerID || r.RequestedID == playerID
}

// SamePair reports whether both requests are between the same two players, in either direction.
func (r Request) SamePair(other Request) bool {
	return r.NightID == other.NightID && r.Involves(other.RequesterID) && r.Involves(other.RequestedID)
}

type Partnership struct {
	ID        string
	NightID   string
	Player1ID string
	Player2ID string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Partnership) Has(playerID string) bool {
	return p.Player1ID == playerID || p.Player2ID == playerID
}

// Acceptance is the result of the accept unit: the accepted request, the new
// partnership and every request of either player that was declined alongside.
type Acceptance struct {
	Request     Request
	Partnership Partnership
	Declined    []Request
}
