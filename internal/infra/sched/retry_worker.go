package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"portfolio-assistant/internal/usecase"
)

// RetryWorker periodically redelivers failed contact notifications.
// Payloads were persisted at dispatch time, so a retry never reruns the
// conversation flow.
type RetryWorker struct {
	interval time.Duration
	batch    int
	notifUC  usecase.NotificationUseCase
	log      *zerolog.Logger
}

func NewRetryWorker(interval time.Duration, batch int, notifUC usecase.NotificationUseCase, logger *zerolog.Logger) *RetryWorker {
	if batch <= 0 {
		batch = 20
	}
	compLog := logger.With().Str("component", "RetryWorker").Logger()
	return &RetryWorker{
		interval: interval,
		batch:    batch,
		notifUC:  notifUC,
		log:      &compLog,
	}
}

func (w *RetryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting notification retry worker")
	// Run once on startup, then on every tick
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping notification retry worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *RetryWorker) runCheck(ctx context.Context) {
	sent, err := w.notifUC.RetryFailed(ctx, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("notification retry failed")
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("failed notifications redelivered")
	}
}
