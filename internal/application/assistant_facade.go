package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/repository"
	"portfolio-assistant/internal/infra/logging"
	"portfolio-assistant/internal/usecase"
)

// AssistantFacade composes the slot-filling flow and the general Q&A
// responder into a single inbound-message entry point. The transport layer
// just forwards plain text in and out; per-session serialization and rate
// limiting stay in the transport, mirroring who owns the request lifecycle.
type AssistantFacade struct {
	convUC   usecase.ConversationUseCase
	chatUC   usecase.ChatUseCase
	sessions repository.SessionRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

// NewAssistantFacade wires the facade. tm may be nil; session upsert and the
// visitor turn are then written without a shared transaction.
func NewAssistantFacade(
	convUC usecase.ConversationUseCase,
	chatUC usecase.ChatUseCase,
	sessions repository.SessionRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *AssistantFacade {
	return &AssistantFacade{convUC: convUC, chatUC: chatUC, sessions: sessions, tm: tm, log: logger}
}

// persistVisitorTurn upserts the session row and appends the visitor turn,
// atomically when a transaction manager is available.
func (f *AssistantFacade) persistVisitorTurn(ctx context.Context, sessionID, text string) error {
	write := func(ctx context.Context, qx repository.Tx) error {
		if _, err := f.sessions.EnsureSession(ctx, qx, sessionID); err != nil {
			return fmt.Errorf("ensure session: %w", err)
		}
		turn := &model.Turn{SessionID: sessionID, Role: model.TurnRoleVisitor, Text: text}
		if err := f.sessions.AppendTurn(ctx, qx, turn); err != nil {
			return fmt.Errorf("append visitor turn: %w", err)
		}
		return nil
	}
	if f.tm == nil {
		return write(ctx, repository.NoTX)
	}
	return f.tm.WithTx(ctx, pgx.TxOptions{}, write)
}

// HandleMessage processes one inbound visitor turn to completion: persist the
// visitor turn, run it through the conversation state machine (or the Q&A
// responder when no flow applies), persist and return the assistant turn.
func (f *AssistantFacade) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || strings.TrimSpace(text) == "" {
		return "", domain.ErrInvalidArgument
	}
	ctx = logging.WithSessionID(ctx, sessionID)
	log := logging.With(ctx, f.log)
	defer logging.TraceDuration(log, "AssistantFacade.HandleMessage")()

	if err := f.persistVisitorTurn(ctx, sessionID, text); err != nil {
		return "", err
	}

	reply, handled, err := f.convUC.HandleTurn(ctx, sessionID, text)
	if err != nil {
		return "", err
	}
	if !handled {
		reply, err = f.chatUC.Answer(ctx, sessionID, text)
		if err != nil {
			return "", err
		}
	}

	assistant := &model.Turn{SessionID: sessionID, Role: model.TurnRoleAssistant, Text: reply}
	if err := f.sessions.AppendTurn(ctx, repository.NoTX, assistant); err != nil {
		// The reply was already produced; losing the stored turn is logged,
		// not surfaced to the visitor.
		log.Error().Err(err).Msg("append assistant turn")
	}
	return reply, nil
}

// History returns the stored turns for a session, oldest first.
func (f *AssistantFacade) History(ctx context.Context, sessionID string) ([]model.Turn, error) {
	s, err := f.sessions.FindBySessionID(ctx, repository.NoTX, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Turns, nil
}
