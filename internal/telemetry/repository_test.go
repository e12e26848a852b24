package telemetry

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudecon/SpaceWheat-sub011/internal/environment"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSnapshot(envID string, tick uint64) environment.Snapshot {
	return environment.Snapshot{
		EnvironmentID: envID,
		Tick:          tick,
		Time:          float64(tick) * 0.01,
		Trace:         1.0,
		Purity:        0.5,
		SinkFlux:      0.001 * float64(tick),
		Populations:   map[string]float64{"Wheat": 0.7, "Chaff": 0.3},
	}
}

func TestOpenAppliesSchema(t *testing.T) {
	db := setupTestDB(t)

	var name string
	err := db.Conn().QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'snapshots'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "snapshots", name)

	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestSaveAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rec, err := repo.Latest(ctx, "env-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", 1)))
	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", 2)))

	rec, err = repo.Latest(ctx, "env-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, uint64(2), rec.Tick)
	assert.InDelta(t, 0.7, rec.Populations["Wheat"], 1e-12)
	assert.InDelta(t, 0.5, rec.Purity, 1e-12)
	assert.False(t, rec.RecordedAt.IsZero())
}

func TestHistoryOrderAndLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for tick := uint64(1); tick <= 5; tick++ {
		require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", tick)))
	}
	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-2", 100)))

	recs, err := repo.History(ctx, "env-1", 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, uint64(5), recs[0].Tick)
	assert.Equal(t, uint64(3), recs[2].Tick)

	// Unknown environment yields an empty slice, not an error.
	recs, err = repo.History(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPruneBefore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", 1)))
	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", 2)))

	// Cutoff in the past deletes nothing.
	deleted, err := repo.PruneBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	// Cutoff in the future deletes everything.
	deleted, err = repo.PruneBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	rec, err := repo.Latest(ctx, "env-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRetentionJobPrunes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveSnapshot(ctx, testSnapshot("env-1", 1)))

	// Negative retention puts the cutoff in the future, so every row
	// is stale without sleeping through a wall-clock second.
	job := NewRetentionJob(repo, db, -time.Hour, zerolog.Nop())
	job.Run()

	rec, err := repo.Latest(ctx, "env-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
