// Package storage persists the HomeKit host's accessory data in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Bucket is a namespace of opaque values backed by the kv_store table.
// It satisfies hap.Store, so the HAP server keeps its pairings and keys here.
type Bucket struct {
	db   *sql.DB
	name string
}

// NewBucket creates a new SQLite-backed bucket.
func NewBucket(db *sql.DB, name string) *Bucket {
	return &Bucket{
		db:   db,
		name: name,
	}
}

// Set saves value under key, replacing any previous value.
func (b *Bucket) Set(key string, value []byte) error {
	now := time.Now().UTC().Unix()

	_, err := b.db.Exec(`
		INSERT INTO kv_store (bucket, key, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(bucket, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, b.name, key, value, now, now)
	if err != nil {
		return fmt.Errorf("failed to store %q: %w", key, err)
	}

	log.Debug().Str("bucket", b.name).Str("key", key).Int("bytes", len(value)).Msg("Bucket.Set completed")
	return nil
}

// Get retrieves a value by key.
func (b *Bucket) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRow(`
		SELECT value FROM kv_store
		WHERE bucket = ? AND key = ?
	`, b.name, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (b *Bucket) Delete(key string) error {
	_, err := b.db.Exec(`DELETE FROM kv_store WHERE bucket = ? AND key = ?`, b.name, key)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// KeysWithSuffix lists keys ending in suffix.
func (b *Bucket) KeysWithSuffix(suffix string) ([]string, error) {
	rows, err := b.db.Query(`SELECT key FROM kv_store WHERE bucket = ? ORDER BY key`, b.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if strings.HasSuffix(key, suffix) {
			keys = append(keys, key)
		}
	}
	return keys, rows.Err()
}

// Clear removes every key in the bucket.
func (b *Bucket) Clear() (int64, error) {
	result, err := b.db.Exec(`DELETE FROM kv_store WHERE bucket = ?`, b.name)
	if err != nil {
		return 0, fmt.Errorf("failed to clear bucket: %w", err)
	}
	return result.RowsAffected()
}
