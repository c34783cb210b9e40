package model

import (
	"time"
)

type TurnRole string

const (
	TurnRoleVisitor   TurnRole = "visitor"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is a single message within a session. Immutable once written.
type Turn struct {
	SessionID string
	Role      TurnRole
	Text      string
	Timestamp time.Time
}

// Session is the aggregate root for one visitor conversation. The ID is an
// opaque, client-generated string that stays stable for the browser tab
// lifetime; sessions are never explicitly destroyed.
type Session struct {
	ID        string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Turns:     make([]Turn, 0, 8),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *Session) AddTurn(role TurnRole, text string) {
	s.Turns = append(s.Turns, Turn{
		SessionID: s.ID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

func (s *Session) RecentTurns(n int) []Turn {
	if n <= 0 || len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}
