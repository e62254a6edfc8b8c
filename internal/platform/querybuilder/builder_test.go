package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderer interface {
	ToSQL() (string, []any, error)
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name      string
		build     renderer
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select ordered with limit",
			build: Select("night_id", "player_id").
				From("check_ins").
				Where(Eq("night_id", "N101")).
				OrderBy("checked_in_at", "player_id").
				Limit(10),
			wantQuery: "SELECT night_id, player_id FROM check_ins WHERE night_id = $1 ORDER BY checked_in_at, player_id LIMIT 10",
			wantArgs:  []any{"N101"},
		},
		{
			name: "select for update",
			build: Select("public_id").
				From("partnerships").
				Where(In("public_id", []any{"P1", "P2"}), IsTrue("is_active")).
				OrderBy("public_id").
				ForUpdate(),
			wantQuery: "SELECT public_id FROM partnerships WHERE public_id IN ($1, $2) AND is_active ORDER BY public_id FOR UPDATE",
			wantArgs:  []any{"P1", "P2"},
		},
		{
			name: "or group keeps numbering",
			build: Select("*").
				From("partnership_requests").
				Where(
					Eq("night_id", "N1"),
					Or(Eq("requester_id", "A"), Eq("requested_id", "A")),
					Eq("status", "pending"),
				),
			wantQuery: "SELECT * FROM partnership_requests WHERE night_id = $1 AND (requester_id = $2 OR requested_id = $3) AND status = $4",
			wantArgs:  []any{"N1", "A", "A", "pending"},
		},
		{
			name:      "empty in matches nothing",
			build:     Select("*").From("matches").Where(In("public_id", nil)),
			wantQuery: "SELECT * FROM matches WHERE FALSE",
		},
		{
			name: "multi row insert returning",
			build: InsertInto("check_ins").
				Columns("night_id", "player_id").
				Values("N101", "A").
				Values("N101", "B").
				Returning("checked_in_at"),
			wantQuery: "INSERT INTO check_ins (night_id, player_id) VALUES ($1, $2), ($3, $4) RETURNING checked_in_at",
			wantArgs:  []any{"N101", "A", "N101", "B"},
		},
		{
			name: "update with version bump",
			build: Update("matches").
				Set("status", "completed").
				Increment("version").
				Where(Eq("public_id", "M1"), Eq("version", int64(3))).
				Returning("*"),
			wantQuery: "UPDATE matches SET status = $1, version = version + 1 WHERE public_id = $2 AND version = $3 RETURNING *",
			wantArgs:  []any{"completed", "M1", int64(3)},
		},
		{
			name:      "delete",
			build:     DeleteFrom("check_ins").Where(Eq("night_id", "N101"), Eq("player_id", "A")),
			wantQuery: "DELETE FROM check_ins WHERE night_id = $1 AND player_id = $2",
			wantArgs:  []any{"N101", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.build.ToSQL()
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		NightID  string `db:"night_id"`
		PlayerID string `db:"player_id,omitempty"`
		Skipped  string `db:"-"`
		Untagged string
		internal string
	}

	query, args, err := InsertInto("check_ins").
		Model(&row{NightID: "N101", PlayerID: "A", Untagged: "u", internal: "x"}).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO check_ins (night_id, player_id) VALUES ($1, $2)", query)
	assert.Equal(t, []any{"N101", "A"}, args)
}

func TestInvalidStatements(t *testing.T) {
	var nilRow *struct {
		ID string `db:"id"`
	}

	tests := map[string]renderer{
		"unconditional delete": DeleteFrom("check_ins"),
		"select without table": Select("id"),
		"update without sets":  Update("matches").Where(Eq("id", 1)),
		"insert row mismatch":  InsertInto("check_ins").Columns("a", "b").Values(1),
		"insert nil model":     InsertInto("check_ins").Model(nilRow),
		"insert non struct":    InsertInto("check_ins").Model(42),
		"insert untagged":      InsertInto("check_ins").Model(struct{ ID string }{ID: "x"}),
	}

	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := build.ToSQL()
			assert.Error(t, err)
		})
	}
}
