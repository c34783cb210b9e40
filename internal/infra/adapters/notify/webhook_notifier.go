package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"portfolio-assistant/internal/domain/model"
	"portfolio-assistant/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier POSTs the contact request as JSON to a configured URL
// (Slack-style incoming webhook, Zapier, or any custom receiver).
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook url empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (w *WebhookNotifier) Deliver(ctx context.Context, payload model.NotificationPayload) error {
	body, err := json.Marshal(struct {
		Kind     string `json:"kind"`
		Name     string `json:"name"`
		Company  string `json:"company,omitempty"`
		Email    string `json:"email"`
		Body     string `json:"body"`
		Datetime string `json:"datetime,omitempty"`
	}{
		Kind:     string(payload.Kind),
		Name:     payload.Name,
		Company:  payload.Company,
		Email:    payload.Email,
		Body:     payload.Body,
		Datetime: payload.Datetime,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook http %d", resp.StatusCode)
	}
	return nil
}
