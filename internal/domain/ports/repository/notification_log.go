package repository

import (
	"context"

	"portfolio-assistant/internal/domain/model"
)

// -----------------------------
// Notifications Log
// -----------------------------

type NotificationLogRepository interface {
	// Save inserts or updates a delivery attempt record.
	Save(ctx context.Context, qx any, log *model.NotificationLog) error
	// FindFailed returns failed deliveries eligible for retry, oldest first.
	FindFailed(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error)
	// FindRecent returns the most recent delivery records for the admin API.
	FindRecent(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error)
	CountByStatus(ctx context.Context, qx any, status model.NotificationStatus) (int64, error)
}
