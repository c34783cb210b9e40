package redis

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/usecase"
)

var _ usecase.ReplyCache = (*ReplyCache)(nil)

// ReplyCache caches assistant answers by normalized question text. It is
// constructed once and injected; the TTL keeps stale bio answers from
// outliving a content update for long.
type ReplyCache struct {
	client *Client
	ttl    time.Duration
}

func NewReplyCache(client *Client, ttl time.Duration) *ReplyCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ReplyCache{client: client, ttl: ttl}
}

func (c *ReplyCache) key(k string) string { return "chat_reply:" + k }

func (c *ReplyCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, c.key(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (c *ReplyCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, c.ttl)
}
