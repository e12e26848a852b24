package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetentionJob deletes snapshots older than the retention window and
// truncates the WAL afterward. Scheduled via cron, typically hourly.
type RetentionJob struct {
	repo      *Repository
	db        *DB
	retention time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates the snapshot retention job.
func NewRetentionJob(repo *Repository, db *DB, retention time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		repo:      repo,
		db:        db,
		retention: retention,
		log:       log.With().Str("job", "telemetry_retention").Logger(),
	}
}

// Run executes one retention pass. Matches the robfig/cron Job interface.
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune telemetry snapshots")
		return
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).
			Msg("Pruned telemetry snapshots")
		if err := j.db.WALCheckpoint(); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint after prune failed")
		}
	}
}
