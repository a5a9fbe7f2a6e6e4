// Package db provides the SQLite connection and schema for hyperiond.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the bridge's SQLite handle. It only holds HomeKit host data; the
// light itself is never persisted.
type DB struct {
	*sql.DB
}

// Open opens or creates the database at dbPath. ":memory:" gives a shared
// in-memory database, which tests use.
func Open(dbPath string) (*DB, error) {
	dsn := dbPath + "?_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open accessory store %s: %w", dbPath, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare accessory store schema: %w", err)
	}

	return &DB{db}, nil
}

// initSchema creates kv_store, where each bucket holds the opaque entries of
// one hap.Store (pairings, long-term keys, config hash).
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (bucket, key)
		);
		CREATE INDEX IF NOT EXISTS idx_kv_bucket ON kv_store(bucket);
	`)
	if err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}

	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.DB.Close()
}
