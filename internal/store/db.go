// Package store provides the SQLite key-value storage used for persisted
// site state such as the recently visited list.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sgx-labs/docsite/internal/config"
)

// DefaultPollInterval is how often subscriptions check for foreign writes.
const DefaultPollInterval = 250 * time.Millisecond

// DB wraps a single SQLite connection.
type DB struct {
	conn   *sql.DB
	mu     sync.Mutex // serialize writes
	origin string

	// PollInterval overrides DefaultPollInterval for new subscriptions.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Open opens or creates the database at the configured path.
func Open() (*DB, error) {
	return OpenPath(config.DBPath())
}

// OpenPath opens or creates the database at the given path.
func OpenPath(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newDB(conn)
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, err
	}
	return newDB(conn)
}

func newDB(conn *sql.DB) (*DB, error) {
	// One connection: PRAGMA data_version only moves for commits made by
	// other connections, and an in-memory database lives in its connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, origin: uuid.NewString()}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB for direct queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Origin identifies writes made through this handle.
func (db *DB) Origin() string {
	return db.origin
}

func (db *DB) logger() *slog.Logger {
	if db.Logger != nil {
		return db.Logger
	}
	return slog.Default()
}

// Get returns the value stored under key.
func (db *DB) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value under key and bumps its version.
func (db *DB) Set(key string, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`INSERT INTO kv (key, value, version, origin, updated_at)
		 VALUES (?, ?, 1, ?, unixepoch())
		 ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = kv.version + 1,
			origin = excluded.origin,
			updated_at = excluded.updated_at`,
		key, value, db.origin,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (db *DB) Delete(key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			origin TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
