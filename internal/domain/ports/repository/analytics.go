package repository

import (
	"context"
	"time"

	"portfolio-assistant/internal/domain/model"
)

// -----------------------------
// Analytics
// -----------------------------

type AnalyticsRepository interface {
	SaveEvent(ctx context.Context, qx any, event *model.PageEvent) error
	CountViews(ctx context.Context, qx any, since time.Time) (int64, error)
	ViewsByDay(ctx context.Context, qx any, since time.Time) (map[string]int64, error)
	TopPaths(ctx context.Context, qx any, since time.Time, limit int) (map[string]int64, error)
}
