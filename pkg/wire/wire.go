// Package wire holds the JSON shapes exchanged between the league night
// service and its clients, over HTTP and over the realtime channel.
package wire

import (
	"encoding/json"
	"time"
)

const DateLayout = "2006-01-02"

// Realtime event names.
const (
	EventCheckIn            = "CHECKIN"
	EventPartnershipRequest = "PARTNERSHIP_REQUEST"
	EventPartnership        = "PARTNERSHIP"
	EventMatch              = "MATCH"
	EventNight              = "NIGHT"
)

// Realtime change types.
const (
	TypeCreate = "create"
	TypeUpdate = "update"
	TypeDelete = "delete"
)

// Response is the envelope of every HTTP response.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Message is one realtime frame. Payload holds the entity named by Event.
type Message struct {
	Event   string          `json:"event"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type Night struct {
	ID              string    `json:"id"`
	LeagueID        string    `json:"leagueId"`
	Date            string    `json:"date"`
	Status          string    `json:"status"`
	CourtsAvailable int       `json:"courtsAvailable"`
	CourtLabels     []string  `json:"courtLabels"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Summary struct {
	CheckedInCount        int `json:"checkedInCount"`
	PartnershipsCount     int `json:"partnershipsCount"`
	PendingRequestsCount  int `json:"pendingRequestsCount"`
	ActiveMatchesCount    int `json:"activeMatchesCount"`
	CompletedMatchesCount int `json:"completedMatchesCount"`
}

type CheckIn struct {
	NightID     string    `json:"nightId"`
	PlayerID    string    `json:"playerId"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

type PartnershipRequest struct {
	ID          string    `json:"id"`
	NightID     string    `json:"nightId"`
	RequesterID string    `json:"requesterId"`
	RequestedID string    `json:"requestedId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Partnership struct {
	ID        string    `json:"id"`
	NightID   string    `json:"nightId"`
	Player1ID string    `json:"player1Id"`
	Player2ID string    `json:"player2Id"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Match struct {
	ID                 string    `json:"id"`
	NightID            string    `json:"nightId"`
	Partnership1ID     string    `json:"partnership1Id"`
	Partnership2ID     string    `json:"partnership2Id"`
	CourtLabel         string    `json:"courtLabel"`
	Status             string    `json:"status"`
	ScoreStatus        string    `json:"scoreStatus"`
	Team1Score         *int      `json:"team1Score"`
	Team2Score         *int      `json:"team2Score"`
	PendingTeam1Score  *int      `json:"pendingTeam1Score"`
	PendingTeam2Score  *int      `json:"pendingTeam2Score"`
	PendingSubmittedBy string    `json:"pendingSubmittedBy"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Snapshot is the full state of one night as returned by the snapshot read.
type Snapshot struct {
	Night        Night                `json:"night"`
	Summary      Summary              `json:"summary"`
	CheckIns     []CheckIn            `json:"checkIns"`
	Requests     []PartnershipRequest `json:"requests"`
	Partnerships []Partnership        `json:"partnerships"`
	Matches      []Match              `json:"matches"`
}

type CheckInResult struct {
	CheckIn CheckIn `json:"checkIn"`
	Summary Summary `json:"summary"`
}

type Acceptance struct {
	Request     PartnershipRequest   `json:"request"`
	Partnership Partnership          `json:"partnership"`
	Declined    []PartnershipRequest `json:"declined"`
}

// Health is the liveness payload, with the realtime hub's load.
type Health struct {
	Status              string `json:"status"`
	RealtimeRooms       int    `json:"realtimeRooms"`
	RealtimeSubscribers int    `json:"realtimeSubscribers"`
	RealtimeDropped     int64  `json:"realtimeDropped"`
}
