package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dudecon/SpaceWheat-sub011/internal/environment"
)

// Record is one persisted snapshot row.
type Record struct {
	EnvironmentID string             `json:"env_id"`
	Tick          uint64             `json:"tick"`
	SimTime       float64            `json:"sim_time"`
	RecordedAt    time.Time          `json:"recorded_at"`
	Trace         float64            `json:"trace"`
	Purity        float64            `json:"purity"`
	SinkFlux      float64            `json:"sink_flux"`
	Populations   map[string]float64 `json:"populations"`
}

// Repository provides snapshot persistence. It implements
// environment.SnapshotSink.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a snapshot repository over an open database.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db.Conn()}
}

// SaveSnapshot persists one per-tick record.
func (r *Repository) SaveSnapshot(ctx context.Context, snap environment.Snapshot) error {
	pops, err := json.Marshal(snap.Populations)
	if err != nil {
		return fmt.Errorf("failed to marshal populations: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (env_id, tick, sim_time, recorded_at, trace, purity, sink_flux, populations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.EnvironmentID, snap.Tick, snap.Time, time.Now().Unix(),
		snap.Trace, snap.Purity, snap.SinkFlux, string(pops))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// History returns the most recent records for one environment, newest
// first, capped at limit.
func (r *Repository) History(ctx context.Context, envID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT env_id, tick, sim_time, recorded_at, trace, purity, sink_flux, populations
		 FROM snapshots WHERE env_id = ? ORDER BY tick DESC LIMIT ?`,
		envID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest returns the newest record for one environment, or nil when the
// environment has no rows yet.
func (r *Repository) Latest(ctx context.Context, envID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT env_id, tick, sim_time, recorded_at, trace, purity, sink_flux, populations
		 FROM snapshots WHERE env_id = ? ORDER BY tick DESC LIMIT 1`,
		envID)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PruneBefore deletes records recorded before the cutoff. Returns the
// number of rows deleted.
func (r *Repository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM snapshots WHERE recorded_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get pruned row count: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var recorded int64
	var pops string
	err := row.Scan(&rec.EnvironmentID, &rec.Tick, &rec.SimTime, &recorded,
		&rec.Trace, &rec.Purity, &rec.SinkFlux, &pops)
	if err == sql.ErrNoRows {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan snapshot row: %w", err)
	}
	rec.RecordedAt = time.Unix(recorded, 0)
	if err := json.Unmarshal([]byte(pops), &rec.Populations); err != nil {
		return rec, fmt.Errorf("failed to unmarshal populations: %w", err)
	}
	return rec, nil
}
