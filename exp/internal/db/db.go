package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"
)

// BusyTimeout is how long a connection waits on a lock held by another process, such
// as cmd/query reading while cmd/sweep persists a sweep.
const BusyTimeout = 5 * time.Second

// DB stores sweeps, their candidates and the candidate centers.
type DB struct {
	db *sql.DB
}

// dsn attaches the connection pragmas to dbPath. The driver applies _pragma values to
// every pooled connection, so nested queries see the same settings. WAL lets readers
// run beside the single writer; foreign keys enforce the sweep -> candidate -> center
// cascade.
func dsn(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return dbPath + "?" + q.Encode()
}

// Open opens or creates the sweep database at dbPath and ensures its schema.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open sweep database %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sweep database %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sweep tables: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
