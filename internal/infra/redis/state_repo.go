package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
)

var _ repository.ConversationStateRepository = (*StateRepo)(nil)

// StateRepo manages per-session slot-filling state in Redis. The TTL doubles
// as the abandonment policy: a visitor who walks away mid-flow simply has the
// state expire instead of lingering forever.
type StateRepo struct {
	client *Client
	ttl    time.Duration
}

func NewStateRepo(client *Client, ttl time.Duration) repository.ConversationStateRepository {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &StateRepo{client: client, ttl: ttl}
}

func (s *StateRepo) stateKey(sessionID string) string {
	return "conv_state:" + sessionID
}

func (s *StateRepo) SetState(ctx context.Context, sessionID string, state *model.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(sessionID), data, s.ttl)
}

func (s *StateRepo) GetState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *StateRepo) ClearState(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.stateKey(sessionID))
}
