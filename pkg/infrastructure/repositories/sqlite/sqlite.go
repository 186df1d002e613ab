package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// DB is a SQLite-backed store for items and the feedback log
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// A single writer avoids "database is locked" under concurrent commits
	db.SetMaxOpenConns(1)

	store := &DB{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle
func (d *DB) Close() error {
	return d.db.Close()
}

// Items returns the item repository backed by this database
func (d *DB) Items() *ItemRepository {
	return &ItemRepository{db: d.db}
}

// FeedbackLog returns the feedback log backed by this database
func (d *DB) FeedbackLog() *FeedbackLog {
	return &FeedbackLog{db: d.db}
}

func (d *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS items (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			current_stock TEXT NOT NULL,
			usage_rate TEXT NOT NULL,
			unit TEXT NOT NULL,
			lead_days INTEGER NOT NULL,
			last_update TEXT NOT NULL,
			created_at TEXT NOT NULL,
			predicted_empty_date TEXT,
			alert_date TEXT,
			counters BLOB NOT NULL,
			history BLOB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS feedback (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			item_name TEXT NOT NULL,
			date TEXT NOT NULL,
			resulting_usage_rate TEXT NOT NULL,
			kind TEXT NOT NULL,
			delta TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS feedback_item_name ON feedback (item_name, seq);`,
	}
	for _, q := range queries {
		if _, err := d.db.Exec(q); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatOptionalTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseOptionalTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
