//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
)

// memStateRepo is a small in-memory ConversationStateRepository for unit tests.
type memStateRepo struct {
	mu     sync.Mutex
	states map[string]*model.ConversationState
	setErr error // used by tests to simulate storage failures
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{states: make(map[string]*model.ConversationState)}
}

func (m *memStateRepo) SetState(ctx context.Context, sessionID string, st *model.ConversationState) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *st
	if st.Collected != nil {
		cp.Collected = make(map[model.Slot]string, len(st.Collected))
		for k, v := range st.Collected {
			cp.Collected[k] = v
		}
	}
	m.states[sessionID] = &cp
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (m *memStateRepo) ClearState(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

// memSessionRepo keeps sessions and turns in memory.
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*model.Session)}
}

func (m *memSessionRepo) EnsureSession(ctx context.Context, qx any, sessionID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}
	s := model.NewSession(sessionID)
	m.sessions[sessionID] = s
	return s, nil
}

func (m *memSessionRepo) AppendTurn(ctx context.Context, qx any, turn *model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[turn.SessionID]
	if !ok {
		s = model.NewSession(turn.SessionID)
		m.sessions[turn.SessionID] = s
	}
	s.Turns = append(s.Turns, *turn)
	return nil
}

func (m *memSessionRepo) FindBySessionID(ctx context.Context, qx any, sessionID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Turns = append([]model.Turn(nil), s.Turns...)
	return &cp, nil
}

func (m *memSessionRepo) CountSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.sessions)), nil
}

func (m *memSessionRepo) CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

// memNotifLogRepo stores notification log rows in memory.
type memNotifLogRepo struct {
	mu   sync.Mutex
	rows map[string]*model.NotificationLog
}

func newMemNotifLogRepo() *memNotifLogRepo {
	return &memNotifLogRepo{rows: make(map[string]*model.NotificationLog)}
}

func (m *memNotifLogRepo) Save(ctx context.Context, qx any, rec *model.NotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.rows[rec.ID] = &cp
	return nil
}

func (m *memNotifLogRepo) FindFailed(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.NotificationLog
	for _, r := range m.rows {
		if r.Status == model.NotificationFailed {
			cp := *r
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memNotifLogRepo) FindRecent(ctx context.Context, qx any, limit int) ([]*model.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.NotificationLog
	for _, r := range m.rows {
		cp := *r
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memNotifLogRepo) CountByStatus(ctx context.Context, qx any, status model.NotificationStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

// memAnalyticsRepo records page events in memory.
type memAnalyticsRepo struct {
	mu     sync.Mutex
	events []*model.PageEvent
}

func newMemAnalyticsRepo() *memAnalyticsRepo { return &memAnalyticsRepo{} }

func (m *memAnalyticsRepo) SaveEvent(ctx context.Context, qx any, ev *model.PageEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events = append(m.events, &cp)
	return nil
}

func (m *memAnalyticsRepo) CountViews(ctx context.Context, qx any, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, ev := range m.events {
		if !ev.OccurredAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memAnalyticsRepo) ViewsByDay(ctx context.Context, qx any, since time.Time) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	for _, ev := range m.events {
		if !ev.OccurredAt.Before(since) {
			out[ev.OccurredAt.Format("2006-01-02")]++
		}
	}
	return out, nil
}

func (m *memAnalyticsRepo) TopPaths(ctx context.Context, qx any, since time.Time, limit int) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	for _, ev := range m.events {
		if !ev.OccurredAt.Before(since) {
			out[ev.Path]++
		}
	}
	return out, nil
}

// fakeNotifier records delivered payloads and can simulate failures.
type fakeNotifier struct {
	mu        sync.Mutex
	delivered []model.NotificationPayload
	err       error
}

func (f *fakeNotifier) Deliver(ctx context.Context, p model.NotificationPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, p)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

// fakeAI returns a canned reply and counts 1 token per message.
type fakeAI struct {
	reply string
	err   error
	calls int
	last  []adapter.Message
}

func (f *fakeAI) ListModels(ctx context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func (f *fakeAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return len(messages), nil
}

func (f *fakeAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.calls++
	f.last = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// memReplyCache is an in-memory ReplyCache without TTL.
type memReplyCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemReplyCache() *memReplyCache { return &memReplyCache{data: make(map[string]string)} }

func (c *memReplyCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (c *memReplyCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}
