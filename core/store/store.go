// Package store persists recipe records in SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const defaultParams = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"

var (
	// ErrNotFound is returned for an id the owner has no recipe under.
	ErrNotFound = errors.New("recipe not found")
	// ErrInvalid is returned for a patch that would break a record.
	ErrInvalid = errors.New("invalid recipe update")
)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	url         TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	ingredients TEXT NOT NULL DEFAULT '[]',
	directions  TEXT NOT NULL DEFAULT '[]',
	categories  TEXT NOT NULL DEFAULT '[]',
	cook_time   TEXT NOT NULL DEFAULT '',
	prep_time   TEXT NOT NULL DEFAULT '',
	total_time  TEXT NOT NULL DEFAULT '',
	yield       TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	rating      INTEGER NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
	favorite    BOOLEAN NOT NULL DEFAULT 0,
	date_added  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_owner_date ON recipes (owner_id, date_added DESC);
`

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" is accepted.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+defaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}
