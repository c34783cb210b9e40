package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain/ports/repository"
)

// ReaperWorker prunes chat turns older than the retention window.
type ReaperWorker struct {
	interval      time.Duration
	retentionDays int
	sessions      repository.SessionRepository
	log           *zerolog.Logger
}

func NewReaperWorker(interval time.Duration, retentionDays int, sessions repository.SessionRepository, logger *zerolog.Logger) *ReaperWorker {
	compLog := logger.With().Str("component", "ReaperWorker").Logger()
	return &ReaperWorker{
		interval:      interval,
		retentionDays: retentionDays,
		sessions:      sessions,
		log:           &compLog,
	}
}

func (w *ReaperWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting turn reaper worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping turn reaper worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sessions.CleanupOldTurns(ctx, w.retentionDays)
			if err != nil {
				w.log.Error().Err(err).Msg("turn cleanup failed")
			}
			if n > 0 {
				w.log.Info().Int64("count", n).Msg("old turns pruned")
			}
		}
	}
}
