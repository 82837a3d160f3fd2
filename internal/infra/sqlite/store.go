// Package sqlite serves the quiz from a local SQLite file, the format the
// dataset scraper produces. The driver is modernc.org/sqlite, so no cgo.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite
)

// Open opens the database file and makes sure the schema exists. The
// members tables are normally populated by the external ingestion tool;
// creating them empty keeps first runs from crashing.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    birthdate TEXT,
    image_url TEXT,
    cv_url TEXT
);

CREATE TABLE IF NOT EXISTS memberships (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id INTEGER NOT NULL REFERENCES members(id),
    term INTEGER NOT NULL,
    party_id INTEGER,
    party TEXT,
    start_date TEXT,
    end_date TEXT,
    UNIQUE (member_id, term, party_id, start_date, end_date)
);

CREATE TABLE IF NOT EXISTS high_scores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    initials TEXT NOT NULL,
    score INTEGER NOT NULL,
    mode TEXT NOT NULL,
    difficulty INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
`
