package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier delivers contact requests as a direct message to the
// site owner's chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram token empty")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Deliver(ctx context.Context, payload model.NotificationPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, formatPayload(payload))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatPayload(p model.NotificationPayload) string {
	var b strings.Builder
	switch p.Kind {
	case model.NotificationMeeting:
		b.WriteString("New meeting request\n")
	default:
		b.WriteString("New message\n")
	}
	fmt.Fprintf(&b, "From: %s", p.Name)
	if p.Company != "" {
		fmt.Fprintf(&b, " (%s)", p.Company)
	}
	fmt.Fprintf(&b, "\nEmail: %s\n", p.Email)
	if p.Datetime != "" {
		fmt.Fprintf(&b, "When: %s\n", p.Datetime)
	}
	fmt.Fprintf(&b, "\n%s", p.Body)
	return b.String()
}
