package notify

import (
	"context"
	"log"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier logs the payload instead of delivering it. For local/dev runs.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) Deliver(ctx context.Context, payload model.NotificationPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("[noop-notify] %s from %s <%s>: %s", payload.Kind, payload.Name, payload.Email, payload.Body)
	return nil
}
