package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
)

// Compile-time check
var _ AnalyticsUseCase = (*analyticsUC)(nil)

type AnalyticsUseCase interface {
	RecordEvent(ctx context.Context, sessionID, path, referrer string) error
	Stats(ctx context.Context, window time.Duration) (*model.SiteStats, error)
}

type analyticsUC struct {
	events   repository.AnalyticsRepository
	sessions repository.SessionRepository
	logs     repository.NotificationLogRepository
	mu       sync.Mutex // guards entropy, which is not concurrency-safe
	entropy  *ulid.MonotonicEntropy
	log      *zerolog.Logger
}

func NewAnalyticsUseCase(
	events repository.AnalyticsRepository,
	sessions repository.SessionRepository,
	logs repository.NotificationLogRepository,
	logger *zerolog.Logger,
) *analyticsUC {
	return &analyticsUC{
		events:   events,
		sessions: sessions,
		logs:     logs,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		log:      logger,
	}
}

func (a *analyticsUC) RecordEvent(ctx context.Context, sessionID, path, referrer string) error {
	path = strings.TrimSpace(path)
	if sessionID == "" || path == "" {
		return domain.ErrInvalidArgument
	}
	now := time.Now()
	a.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), a.entropy).String()
	a.mu.Unlock()
	ev := &model.PageEvent{
		ID:         id,
		SessionID:  sessionID,
		Path:       path,
		Referrer:   strings.TrimSpace(referrer),
		OccurredAt: now,
	}
	if err := a.events.SaveEvent(ctx, repository.NoTX, ev); err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (a *analyticsUC) Stats(ctx context.Context, window time.Duration) (*model.SiteStats, error) {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	since := time.Now().Add(-window)

	total, err := a.events.CountViews(ctx, repository.NoTX, since)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	byDay, err := a.events.ViewsByDay(ctx, repository.NoTX, since)
	if err != nil {
		return nil, fmt.Errorf("views by day: %w", err)
	}
	topPaths, err := a.events.TopPaths(ctx, repository.NoTX, since, 10)
	if err != nil {
		return nil, fmt.Errorf("top paths: %w", err)
	}
	sessions, err := a.sessions.CountSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	sent, err := a.logs.CountByStatus(ctx, repository.NoTX, model.NotificationSent)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	return &model.SiteStats{
		TotalViews:      total,
		ViewsByDay:      byDay,
		TopPaths:        topPaths,
		ChatSessions:    sessions,
		ContactRequests: sent,
	}, nil
}
