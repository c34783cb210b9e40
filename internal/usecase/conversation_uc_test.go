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

func newConvFixture() (*conversationUC, *memStateRepo, *fakeNotifier) {
	logger := zerolog.Nop()
	states := newMemStateRepo()
	notifier := &fakeNotifier{}
	notifUC := NewNotificationUseCase(notifier, newMemNotifLogRepo(), time.Second, true, &logger)
	return NewConversationUseCase(states, notifUC, &logger), states, notifier
}

func drive(t *testing.T, uc *conversationUC, sessionID string, inputs []string) []string {
	t.Helper()
	var replies []string
	for _, in := range inputs {
		reply, handled, err := uc.HandleTurn(context.Background(), sessionID, in)
		if err != nil {
			t.Fatalf("HandleTurn(%q): %v", in, err)
		}
		if !handled {
			t.Fatalf("HandleTurn(%q): expected flow to handle the turn", in)
		}
		replies = append(replies, reply)
	}
	return replies
}

func TestCommandStartsFlowRegardlessOfHistory(t *testing.T) {
	uc, states, _ := newConvFixture()
	ctx := context.Background()

	reply, handled, err := uc.HandleTurn(ctx, "s1", "/message")
	if err != nil || !handled {
		t.Fatalf("handled=%v err=%v", handled, err)
	}
	if reply != "What's your name?" {
		t.Errorf("reply = %q", reply)
	}
	st, err := states.GetState(ctx, "s1")
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if st.Command != model.CommandSendMessage || st.Pending != model.SlotName {
		t.Errorf("state = %+v", st)
	}
}

func TestFreeTextWithoutFlowIsNotHandled(t *testing.T) {
	uc, _, _ := newConvFixture()

	_, handled, err := uc.HandleTurn(context.Background(), "s1", "what do you work on?")
	if err != nil {
		t.Fatal(err)
	}
	if handled {
		t.Error("free text with no active flow must fall through to the QA responder")
	}
}

func TestInvalidEmailReprompts(t *testing.T) {
	uc, states, _ := newConvFixture()
	ctx := context.Background()
	drive(t, uc, "s1", []string{"/message", "Jane Doe", "Acme Corp"})

	reply, _, err := uc.HandleTurn(ctx, "s1", "not-an-email")
	if err != nil {
		t.Fatal(err)
	}
	if reply != replyEmailInvalid {
		t.Errorf("reply = %q, want email validation re-prompt", reply)
	}
	st, _ := states.GetState(ctx, "s1")
	if st.Pending != model.SlotEmail {
		t.Errorf("pending slot must stay email, got %q", st.Pending)
	}

	drive(t, uc, "s1", []string{"a@b.co"})
	st, _ = states.GetState(ctx, "s1")
	if st.Pending != model.SlotBody {
		t.Errorf("valid email must advance to body, got %q", st.Pending)
	}
}

func TestMessageFlowEndToEnd(t *testing.T) {
	uc, states, notifier := newConvFixture()
	ctx := context.Background()

	drive(t, uc, "s1", []string{"/message", "Jane Doe", "Acme Corp", "jane@acme.com", "Interested in collaborating"})

	if notifier.count() != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", notifier.count())
	}
	got := notifier.delivered[0]
	want := model.NotificationPayload{
		Kind:    model.NotificationMessage,
		Name:    "Jane Doe",
		Company: "Acme Corp",
		Email:   "jane@acme.com",
		Body:    "Interested in collaborating",
	}
	if got != want {
		t.Errorf("payload = %+v, want %+v", got, want)
	}
	if _, err := states.GetState(ctx, "s1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("state must reset to none after dispatch, got err=%v", err)
	}
}

func TestMeetingFlowEndToEnd(t *testing.T) {
	uc, _, notifier := newConvFixture()

	drive(t, uc, "s1", []string{"/meeting", "Sam", "none", "sam@x.com", "Discuss a role", "Friday 3pm"})

	if notifier.count() != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", notifier.count())
	}
	got := notifier.delivered[0]
	if got.Kind != model.NotificationMeeting {
		t.Errorf("kind = %q", got.Kind)
	}
	if got.Datetime != "Friday 3pm" {
		t.Errorf("datetime = %q", got.Datetime)
	}
	if got.Company != "none" {
		t.Errorf(`company = %q, want verbatim "none"`, got.Company)
	}
}

func TestCancelAbandonsWithoutDispatch(t *testing.T) {
	uc, states, notifier := newConvFixture()
	ctx := context.Background()

	for _, upTo := range [][]string{
		{"/message"},
		{"/message", "Jane"},
		{"/meeting", "Sam", "none", "sam@x.com", "topic"},
	} {
		drive(t, uc, "s1", upTo)
		reply, handled, err := uc.HandleTurn(ctx, "s1", "cancel")
		if err != nil || !handled {
			t.Fatalf("cancel: handled=%v err=%v", handled, err)
		}
		if reply != replyCancelled {
			t.Errorf("reply = %q", reply)
		}
		if _, err := states.GetState(ctx, "s1"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("cancel must reset state, got err=%v", err)
		}
	}
	if notifier.count() != 0 {
		t.Errorf("cancel must never dispatch, got %d", notifier.count())
	}
}

func TestNewCommandDiscardsPartialFlow(t *testing.T) {
	uc, states, notifier := newConvFixture()
	ctx := context.Background()

	drive(t, uc, "s1", []string{"/message", "Jane", "Acme"})

	reply, _, err := uc.HandleTurn(ctx, "s1", "/meeting")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "What's your name?" {
		t.Errorf("second command must restart from the name slot, reply=%q", reply)
	}
	st, _ := states.GetState(ctx, "s1")
	if st.Command != model.CommandScheduleMeeting {
		t.Errorf("command = %q", st.Command)
	}
	if len(st.Collected) != 0 {
		t.Errorf("prior slots must be discarded, got %v", st.Collected)
	}
	if notifier.count() != 0 {
		t.Errorf("no dispatch on restart, got %d", notifier.count())
	}
}

func TestDispatchFailurePreservesCollectedSlots(t *testing.T) {
	uc, states, notifier := newConvFixture()
	notifier.err = errors.New("smtp down")
	ctx := context.Background()

	replies := drive(t, uc, "s1", []string{"/message", "Jane", "Acme", "jane@acme.com", "hello"})
	last := replies[len(replies)-1]
	if last != replyDispatchFailure {
		t.Errorf("reply = %q, want the dispatch apology", last)
	}

	st, err := states.GetState(ctx, "s1")
	if err != nil {
		t.Fatalf("state must be preserved on dispatch failure: %v", err)
	}
	if st.Status != model.FlowDispatchFailed {
		t.Errorf("status = %q", st.Status)
	}
	if st.Collected[model.SlotEmail] != "jane@acme.com" {
		t.Errorf("collected slots must survive, got %v", st.Collected)
	}

	// dispatch_failed is terminal: further free text is not slot input.
	_, handled, err := uc.HandleTurn(ctx, "s1", "any follow-up")
	if err != nil {
		t.Fatal(err)
	}
	if handled {
		t.Error("dispatch_failed state must not accept slot-filling input")
	}
}

func TestReplayYieldsIdenticalDispatch(t *testing.T) {
	inputs := []string{"/message", "Jane Doe", "Acme Corp", "jane@acme.com", "Interested in collaborating"}

	uc1, _, n1 := newConvFixture()
	drive(t, uc1, "s1", inputs)
	uc2, _, n2 := newConvFixture()
	drive(t, uc2, "s1", inputs)

	if n1.count() != 1 || n2.count() != 1 {
		t.Fatalf("each replay must dispatch exactly once, got %d and %d", n1.count(), n2.count())
	}
	if n1.delivered[0] != n2.delivered[0] {
		t.Errorf("replayed payloads differ: %+v vs %+v", n1.delivered[0], n2.delivered[0])
	}
}

func TestCorruptedStateFailsFast(t *testing.T) {
	uc, states, _ := newConvFixture()
	ctx := context.Background()

	// pendingSlot set while no command is active: a programming error.
	states.states["s1"] = &model.ConversationState{Pending: model.SlotEmail}

	_, _, err := uc.HandleTurn(ctx, "s1", "hello")
	if !errors.Is(err, domain.ErrStateCorrupted) {
		t.Fatalf("expected ErrStateCorrupted, got %v", err)
	}
}
