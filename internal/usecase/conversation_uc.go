package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
	"portfolio-assistant/internal/infra/metrics"
)

// Compile-time check
var _ ConversationUseCase = (*conversationUC)(nil)

type ConversationUseCase interface {
	// HandleTurn advances the slot-filling state machine by exactly one
	// inbound turn. handled=false means no flow is active and the input is
	// not a command, so the caller should route the turn to the general
	// Q&A responder instead.
	HandleTurn(ctx context.Context, sessionID, text string) (reply string, handled bool, err error)
}

type conversationUC struct {
	states repository.ConversationStateRepository
	notif  NotificationUseCase
	log    *zerolog.Logger
}

func NewConversationUseCase(states repository.ConversationStateRepository, notif NotificationUseCase, logger *zerolog.Logger) *conversationUC {
	return &conversationUC{states: states, notif: notif, log: logger}
}

func (c *conversationUC) HandleTurn(ctx context.Context, sessionID, text string) (string, bool, error) {
	st, err := c.loadState(ctx, sessionID)
	if err != nil {
		return "", false, err
	}
	if err := st.Validate(); err != nil {
		// Invariant violation, not user input. Fail fast so the bug surfaces.
		return "", false, fmt.Errorf("session %s: %w", sessionID, err)
	}

	if st.Active() && isCancel(text) {
		if err := c.states.ClearState(ctx, sessionID); err != nil {
			return "", false, fmt.Errorf("clear state: %w", err)
		}
		metrics.FlowAbandoned(string(st.Command))
		return replyCancelled, true, nil
	}

	// A command marker always wins: it either starts a fresh flow or
	// discards the current one and restarts from the name slot.
	if cmd := classifyIntent(text); cmd != model.CommandNone {
		st.Start(cmd)
		if err := c.states.SetState(ctx, sessionID, st); err != nil {
			return "", false, fmt.Errorf("set state: %w", err)
		}
		metrics.FlowStarted(string(cmd))
		return promptFor(st.Pending, st.Command), true, nil
	}

	if !st.Active() {
		return "", false, nil
	}

	value, ok := extractSlot(st.Pending, text)
	if !ok {
		// Validation failures are recoverable: same slot, clarifying
		// re-prompt, state untouched (the write just refreshes the TTL).
		if err := c.states.SetState(ctx, sessionID, st); err != nil {
			return "", false, fmt.Errorf("set state: %w", err)
		}
		return repromptFor(st.Pending, st.Command), true, nil
	}

	st.Accept(value)
	if st.Status != model.FlowCompleted {
		if err := c.states.SetState(ctx, sessionID, st); err != nil {
			return "", false, fmt.Errorf("set state: %w", err)
		}
		return promptFor(st.Pending, st.Command), true, nil
	}

	return c.dispatch(ctx, sessionID, st)
}

// dispatch runs exactly once per completed flow. On success the state resets
// to "no flow active"; on failure the collected slots are preserved under the
// dispatch_failed status so the retry worker can reuse them.
func (c *conversationUC) dispatch(ctx context.Context, sessionID string, st *model.ConversationState) (string, bool, error) {
	payload := model.FromCollected(st.Command, st.Collected)

	if err := c.notif.Dispatch(ctx, sessionID, payload); err != nil {
		c.log.Error().Err(err).Str("session_id", sessionID).Str("kind", string(payload.Kind)).Msg("dispatch failed")
		st.Status = model.FlowDispatchFailed
		if serr := c.states.SetState(ctx, sessionID, st); serr != nil {
			return "", false, fmt.Errorf("set state after dispatch failure: %w", serr)
		}
		metrics.FlowDispatchFailed(string(st.Command))
		return replyDispatchFailure, true, nil
	}

	if err := c.states.ClearState(ctx, sessionID); err != nil {
		return "", false, fmt.Errorf("clear state: %w", err)
	}
	metrics.FlowCompleted(string(st.Command))
	return confirmDispatch(payload), true, nil
}

func (c *conversationUC) loadState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	st, err := c.states.GetState(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.ConversationState{}, nil
		}
		return nil, fmt.Errorf("get state: %w", err)
	}
	return st, nil
}
