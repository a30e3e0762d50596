package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Pool defaults for the browse cache. The cli is the only writer, so a
// small pool is plenty.
const (
	DefaultMaxOpenConns = 4
	DefaultMaxIdleConns = 2
)

// NewDatabase opens the sqlite cache at path and verifies the connection
// with a ping. Pass ":memory:" for a throwaway database in tests.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	return db, nil
}

// ConfigureDatabase applies connection pool limits from config. Zero or
// negative values fall back to the package defaults.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	if maxIdleConns <= 0 {
		maxIdleConns = DefaultMaxIdleConns
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
