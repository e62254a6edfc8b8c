package postgres

import "time"

type checkInTableModel struct {
	ID          int64     `db:"id"`
	NightID     string    `db:"night_id"`
	PlayerID    string    `db:"player_id"`
	CheckedInAt time.Time `db:"checked_in_at"`
}

type checkInInsertModel struct {
	NightID     string    `db:"night_id"`
	PlayerID    string    `db:"player_id"`
	CheckedInAt time.Time `db:"checked_in_at"`
}
