package adapter

import (
	"context"

	"portfolio-assistant/internal/domain/model"
)

// Notifier delivers a completed contact request to the site owner. It owns
// its delivery mechanism (Telegram DM, webhook, ...) and must not retry
// internally; retries live in the notification use case, deduplicated by
// notification id.
type Notifier interface {
	Deliver(ctx context.Context, payload model.NotificationPayload) error
}
