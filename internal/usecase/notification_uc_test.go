//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"portfolio-assistant/internal/domain"
	"portfolio-assistant/internal/domain/model"
)

func TestDispatchLogsOutcome(t *testing.T) {
	logger := zerolog.Nop()
	notifier := &fakeNotifier{}
	logs := newMemNotifLogRepo()
	uc := NewNotificationUseCase(notifier, logs, time.Second, true, &logger)
	ctx := context.Background()

	payload := model.NotificationPayload{Kind: model.NotificationMessage, Name: "Jane", Email: "jane@acme.com", Body: "hi"}
	if err := uc.Dispatch(ctx, "s1", payload); err != nil {
		t.Fatal(err)
	}
	sent, _ := logs.CountByStatus(ctx, nil, model.NotificationSent)
	if sent != 1 {
		t.Errorf("sent rows = %d", sent)
	}

	notifier.err = errors.New("down")
	err := uc.Dispatch(ctx, "s2", payload)
	if !errors.Is(err, domain.ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	failed, _ := logs.CountByStatus(ctx, nil, model.NotificationFailed)
	if failed != 1 {
		t.Errorf("failed rows = %d", failed)
	}
}

func TestRetryFailedReusesCollectedPayload(t *testing.T) {
	logger := zerolog.Nop()
	notifier := &fakeNotifier{err: errors.New("down")}
	logs := newMemNotifLogRepo()
	uc := NewNotificationUseCase(notifier, logs, time.Second, true, &logger)
	ctx := context.Background()

	payload := model.NotificationPayload{Kind: model.NotificationMeeting, Name: "Sam", Email: "sam@x.com", Body: "role", Datetime: "Friday 3pm"}
	_ = uc.Dispatch(ctx, "s1", payload)

	// Provider recovers; the retry must deliver the original payload.
	notifier.err = nil
	delivered, err := uc.RetryFailed(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d", delivered)
	}
	if notifier.delivered[0] != payload {
		t.Errorf("retried payload = %+v, want the preserved one", notifier.delivered[0])
	}

	// Nothing left to retry; no duplicate delivery.
	delivered, err = uc.RetryFailed(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if delivered != 0 || notifier.count() != 1 {
		t.Errorf("retry must be deduplicated, delivered=%d total=%d", delivered, notifier.count())
	}
}

func TestRetryFailedKeepsFailingRows(t *testing.T) {
	logger := zerolog.Nop()
	notifier := &fakeNotifier{err: errors.New("still down")}
	logs := newMemNotifLogRepo()
	uc := NewNotificationUseCase(notifier, logs, time.Second, true, &logger)
	ctx := context.Background()

	_ = uc.Dispatch(ctx, "s1", model.NotificationPayload{Kind: model.NotificationMessage, Name: "J"})

	delivered, err := uc.RetryFailed(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d", delivered)
	}
	rows, _ := logs.FindFailed(ctx, nil, 10)
	if len(rows) != 1 {
		t.Fatalf("failed rows = %d", len(rows))
	}
	if rows[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", rows[0].Attempts)
	}
}
