package repository

import (
	"context"

	"portfolio-assistant/internal/domain/model"
)

// ConversationStateRepository is the port for the per-session slot-filling
// state. Implementations must expire idle state on their own (TTL); a missing
// state is reported as domain.ErrNotFound and treated as "no flow active".
type ConversationStateRepository interface {
	SetState(ctx context.Context, sessionID string, state *model.ConversationState) error
	GetState(ctx context.Context, sessionID string) (*model.ConversationState, error)
	ClearState(ctx context.Context, sessionID string) error
}
