package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
	"portfolio-assistant/internal/domain/ports/repository"
	"portfolio-assistant/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// Answer responds to a free-text visitor question using the LLM with the
	// portfolio owner's context and the recent session history.
	Answer(ctx context.Context, sessionID, question string) (string, error)
}

// ReplyCache caches answers by normalized question text. Implementations own
// their TTL; a miss is reported as domain.ErrNotFound.
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type chatUC struct {
	sessions        repository.SessionRepository
	ai              adapter.AIServiceAdapter
	cache           ReplyCache
	systemPrompt    string
	model           string
	historyTurns    int
	maxPromptTokens int
	log             *zerolog.Logger
}

func NewChatUseCase(
	sessions repository.SessionRepository,
	ai adapter.AIServiceAdapter,
	cache ReplyCache,
	systemPrompt, model string,
	historyTurns, maxPromptTokens int,
	logger *zerolog.Logger,
) *chatUC {
	if historyTurns <= 0 {
		historyTurns = 12
	}
	if maxPromptTokens <= 0 {
		maxPromptTokens = 3000
	}
	return &chatUC{
		sessions:        sessions,
		ai:              ai,
		cache:           cache,
		systemPrompt:    systemPrompt,
		model:           model,
		historyTurns:    historyTurns,
		maxPromptTokens: maxPromptTokens,
		log:             logger,
	}
}

func (c *chatUC) Answer(ctx context.Context, sessionID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrInvalidArgument
	}

	cacheKey := normalizeQuestion(question)
	if c.cache != nil {
		if reply, err := c.cache.Get(ctx, cacheKey); err == nil && reply != "" {
			metrics.CacheHit("chat_reply")
			return reply, nil
		}
		metrics.CacheMiss("chat_reply")
	}

	msgs, err := c.buildPrompt(ctx, sessionID, question)
	if err != nil {
		return "", err
	}

	start := time.Now()
	reply, err := c.ai.Chat(ctx, c.model, msgs)
	metrics.ObserveAICall(c.model, time.Since(start), err == nil)
	if err != nil {
		return "", fmt.Errorf("ai chat: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, reply); err != nil {
			c.log.Warn().Err(err).Msg("cache reply")
		}
	}
	return reply, nil
}

// buildPrompt assembles system prompt + recent history + the new question,
// dropping the oldest history turns until the prompt fits the token budget.
func (c *chatUC) buildPrompt(ctx context.Context, sessionID, question string) ([]adapter.Message, error) {
	s, err := c.sessions.FindBySessionID(ctx, repository.NoTX, sessionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var history []adapter.Message
	if s != nil {
		for _, t := range s.RecentTurns(c.historyTurns) {
			role := "user"
			if t.Role == model.TurnRoleAssistant {
				role = "assistant"
			}
			history = append(history, adapter.Message{Role: role, Content: t.Text})
		}
	}

	for {
		msgs := make([]adapter.Message, 0, len(history)+2)
		if c.systemPrompt != "" {
			msgs = append(msgs, adapter.Message{Role: "system", Content: c.systemPrompt})
		}
		msgs = append(msgs, history...)
		msgs = append(msgs, adapter.Message{Role: "user", Content: question})

		tokens, err := c.ai.CountTokens(ctx, c.model, msgs)
		if err != nil || tokens <= c.maxPromptTokens || len(history) == 0 {
			// Counting is best-effort; on error send what we have.
			return msgs, nil
		}
		history = history[1:]
	}
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
