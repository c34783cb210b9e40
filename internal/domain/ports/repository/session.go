package repository

import (
	"context"

	"portfolio-assistant/internal/domain/model"
)

// -----------------------------
// Sessions & Turns
// -----------------------------

type SessionRepository interface {
	// EnsureSession creates the session row if it does not exist yet.
	EnsureSession(ctx context.Context, qx any, sessionID string) (*model.Session, error)
	AppendTurn(ctx context.Context, qx any, turn *model.Turn) error
	// FindBySessionID returns the session with its turns ordered by timestamp.
	FindBySessionID(ctx context.Context, qx any, sessionID string) (*model.Session, error)
	CountSessions(ctx context.Context) (int64, error)
	// CleanupOldTurns deletes turns older than the provided retention.
	CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error)
}
