//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
)

// --- Mocks for the server's collaborators ---

type mockAssistant struct {
	mu         sync.Mutex
	replies    map[string]string // text -> reply
	turns      map[string][]model.Turn
	handleN    int
	HandleErr  error
	HistoryErr error
}

func (m *mockAssistant) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handleN++
	if m.HandleErr != nil {
		return "", m.HandleErr
	}
	if r, ok := m.replies[text]; ok {
		return r, nil
	}
	return "ack: " + text, nil
}

func (m *mockAssistant) History(ctx context.Context, sessionID string) ([]model.Turn, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	turns, ok := m.turns[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

type mockAnalyticsUC struct {
	mu        sync.Mutex
	events    []string // recorded paths
	stats     *model.SiteStats
	RecordErr error
	StatsErr  error
}

func (m *mockAnalyticsUC) RecordEvent(ctx context.Context, sessionID, path, referrer string) error {
	if m.RecordErr != nil {
		return m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, path)
	return nil
}

func (m *mockAnalyticsUC) Stats(ctx context.Context, window time.Duration) (*model.SiteStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &model.SiteStats{}, nil
}

type mockNotifUC struct {
	logs []*model.NotificationLog
}

func (m *mockNotifUC) Dispatch(ctx context.Context, sessionID string, payload model.NotificationPayload) error {
	return nil
}

func (m *mockNotifUC) RetryFailed(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

func (m *mockNotifUC) Recent(ctx context.Context, limit int) ([]*model.NotificationLog, error) {
	if limit < len(m.logs) {
		return m.logs[:limit], nil
	}
	return m.logs, nil
}

// mockLocker hands out the lock unless `busy` is set.
type mockLocker struct {
	mu      sync.Mutex
	busy    bool
	lockN   int
	unlockN int
}

func (m *mockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return "", domain.ErrSessionBusy
	}
	m.lockN++
	return "tok", nil
}

func (m *mockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlockN++
	return nil
}

// mockLimiter allows everything unless `deny` is set.
type mockLimiter struct {
	deny bool
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return !m.deny, nil
}
