package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	maxTracedQueryLength = 512
	dbPingTimeout        = 5 * time.Second
	dbConnMaxIdleTime    = 5 * time.Minute
)

// openDB opens an instrumented lib/pq pool and checks it answers.
func openDB(ctx context.Context, dsn string, maxOpen int) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(1, maxOpen/2))
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// formatDBQueryForTrace collapses whitespace so multi-line statements read as
// one line in span attributes, and caps the length.
func formatDBQueryForTrace(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if len(compact) <= maxTracedQueryLength {
		return compact
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(compact[cut]) {
		cut--
	}
	return compact[:cut] + "..."
}
