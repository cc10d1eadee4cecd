// Package sqlitestore is the durable stock.Store, a single SQLite table
// keyed by date. SQLite is opened in WAL mode so a reader never blocks
// the (single) writer.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"geohashd/internal/stock"
)

const schema = `
CREATE TABLE IF NOT EXISTS stocks (
    date  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// Store persists records in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and migrates the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening stock cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating stock cache: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, date stock.Date) (*stock.Record, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM stocks WHERE date = ?`, date.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading stock cache: %w", err)
	}
	return &stock.Record{Date: date, Value: value}, nil
}

// Put stores rec unless a record for its date already exists. INSERT OR
// IGNORE keeps the first stored value authoritative.
func (s *Store) Put(ctx context.Context, rec stock.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO stocks (date, value) VALUES (?, ?)`,
		rec.Date.String(), rec.Value)
	if err != nil {
		return fmt.Errorf("writing stock cache: %w", err)
	}
	return nil
}
