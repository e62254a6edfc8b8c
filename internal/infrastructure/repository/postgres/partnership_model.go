package postgres

import "time"

type partnershipRequestTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	NightID     string    `db:"night_id"`
	RequesterID string    `db:"requester_id"`
	RequestedID string    `db:"requested_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type partnershipRequestInsertModel struct {
	PublicID    string    `db:"public_id"`
	NightID     string    `db:"night_id"`
	RequesterID string    `db:"requester_id"`
	RequestedID string    `db:"requested_id"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type partnershipTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	NightID   string    `db:"night_id"`
	Player1ID string    `db:"player1_id"`
	Player2ID string    `db:"player2_id"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type partnershipInsertModel struct {
	PublicID  string    `db:"public_id"`
	NightID   string    `db:"night_id"`
	Player1ID string    `db:"player1_id"`
	Player2ID string    `db:"player2_id"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
