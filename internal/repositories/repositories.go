// Package repositories implements SQLite persistence for cached collection data.
//
// The cache exists so that repeat folder listings and re-exports do not burn
// through the Discogs rate limit. Cached rows are advisory: the export engine
// always prefers live API data and refreshes the cache after each fetch.
//
// Key Implementations:
//   - [ReleaseRepository] : folder and release caching keyed by folder id
package repositories

import (
	"database/sql"
	"time"
)

// touch returns the timestamp recorded on cached rows.
func touch() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// withTx runs fn inside a transaction, rolling back on error.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
