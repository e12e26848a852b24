// Package telemetry persists per-tick observable snapshots to SQLite so
// the HTTP API can serve history without holding simulation locks.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    env_id       TEXT    NOT NULL,
    tick         INTEGER NOT NULL,
    sim_time     REAL    NOT NULL,
    recorded_at  INTEGER NOT NULL,
    trace        REAL    NOT NULL,
    purity       REAL    NOT NULL,
    sink_flux    REAL    NOT NULL,
    populations  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_env_tick ON snapshots(env_id, tick);
CREATE INDEX IF NOT EXISTS idx_snapshots_recorded ON snapshots(recorded_at);
`

// DB wraps the snapshot database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates the snapshot database at path, applying WAL mode and the
// schema. A "file:" URI is passed through untouched for in-memory tests.
func Open(path string) (*DB, error) {
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve telemetry db path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create telemetry db directory: %w", err)
		}
		path = absPath
	}

	connStr := path
	if !strings.Contains(path, "?") {
		connStr += "?_pragma=journal_mode(WAL)" +
			"&_pragma=synchronous(NORMAL)" +
			"&_pragma=temp_store(MEMORY)" +
			"&_pragma=wal_autocheckpoint(1000)" +
			"&_pragma=cache_size(-64000)"
	}

	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry db: %w", err)
	}

	// Snapshot writes arrive from one tick loop; reads from HTTP handlers.
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping telemetry db: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply telemetry schema: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// Conn returns the underlying connection for the repository.
func (db *DB) Conn() *sql.DB { return db.conn }

// Close closes the database connection.
func (db *DB) Close() error { return db.conn.Close() }

// QuickCheck pings the database.
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WALCheckpoint truncates the WAL file. Run after pruning to keep the
// file small on long-lived hosts.
func (db *DB) WALCheckpoint() error {
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	return nil
}
