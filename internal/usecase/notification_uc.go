package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
	"portfolio-assistant/internal/domain/ports/repository"
	"portfolio-assistant/internal/infra/logging"
	"portfolio-assistant/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// Dispatch delivers a payload to the site owner and records the attempt.
	// Exactly one call per completed flow; no internal retries.
	Dispatch(ctx context.Context, sessionID string, payload model.NotificationPayload) error
	// RetryFailed redelivers failed notifications from the log, reusing the
	// already-collected payloads. Returns how many were delivered.
	RetryFailed(ctx context.Context, limit int) (int, error)
	// Recent lists the latest delivery records for the admin dashboard.
	Recent(ctx context.Context, limit int) ([]*model.NotificationLog, error)
}

type notificationUC struct {
	notifier adapter.Notifier
	logs     repository.NotificationLogRepository
	timeout  time.Duration
	dev      bool
	log      *zerolog.Logger
}

func NewNotificationUseCase(notifier adapter.Notifier, logs repository.NotificationLogRepository, timeout time.Duration, dev bool, logger *zerolog.Logger) *notificationUC {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &notificationUC{notifier: notifier, logs: logs, timeout: timeout, dev: dev, log: logger}
}

func (n *notificationUC) Dispatch(ctx context.Context, sessionID string, payload model.NotificationPayload) error {
	rec := &model.NotificationLog{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Payload:   payload,
		Attempts:  1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := n.deliver(ctx, payload)
	if err != nil {
		rec.Status = model.NotificationFailed
		rec.LastError = err.Error()
	} else {
		rec.Status = model.NotificationSent
	}

	if serr := n.logs.Save(ctx, repository.NoTX, rec); serr != nil {
		// The log row is bookkeeping; delivery outcome still decides the reply.
		n.log.Error().Err(serr).Str("notification_id", rec.ID).Msg("save notification log")
	}

	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDispatchFailed, err)
	}
	n.log.Info().
		Str("notification_id", rec.ID).
		Str("kind", string(payload.Kind)).
		Str("email", logging.Redact(payload.Email, n.dev)).
		Msg("notification dispatched")
	return nil
}

func (n *notificationUC) RetryFailed(ctx context.Context, limit int) (int, error) {
	failed, err := n.logs.FindFailed(ctx, repository.NoTX, limit)
	if err != nil {
		return 0, fmt.Errorf("find failed notifications: %w", err)
	}

	delivered := 0
	for _, rec := range failed {
		rec.Attempts++
		rec.UpdatedAt = time.Now()
		if err := n.deliver(ctx, rec.Payload); err != nil {
			rec.LastError = err.Error()
			if serr := n.logs.Save(ctx, repository.NoTX, rec); serr != nil {
				n.log.Error().Err(serr).Str("notification_id", rec.ID).Msg("save retry attempt")
			}
			continue
		}
		rec.Status = model.NotificationSent
		rec.LastError = ""
		if serr := n.logs.Save(ctx, repository.NoTX, rec); serr != nil {
			n.log.Error().Err(serr).Str("notification_id", rec.ID).Msg("mark notification sent")
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (n *notificationUC) Recent(ctx context.Context, limit int) ([]*model.NotificationLog, error) {
	return n.logs.FindRecent(ctx, repository.NoTX, limit)
}

func (n *notificationUC) deliver(ctx context.Context, payload model.NotificationPayload) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	err := n.notifier.Deliver(ctx, payload)
	metrics.ObserveDispatch(string(payload.Kind), time.Since(start), err == nil)
	return err
}
