//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"portfolio-assistant/internal/domain"
)

// --- Session Model Tests ---

func TestSessionAddTurn(t *testing.T) {
	s := NewSession("tab-1")
	s.AddTurn(TurnRoleVisitor, "hello")
	s.AddTurn(TurnRoleAssistant, "hi there")

	if len(s.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(s.Turns))
	}
	if s.Turns[0].SessionID != "tab-1" {
		t.Errorf("turn not stamped with session id: %q", s.Turns[0].SessionID)
	}
	if s.Turns[1].Timestamp.Before(s.Turns[0].Timestamp) {
		t.Error("timestamps must be non-decreasing within a session")
	}
	if time.Since(s.UpdatedAt) > time.Second {
		t.Error("UpdatedAt not refreshed on AddTurn")
	}
}

func TestSessionRecentTurns(t *testing.T) {
	s := NewSession("tab-2")
	for i := 0; i < 10; i++ {
		s.AddTurn(TurnRoleVisitor, "msg")
	}
	if got := s.RecentTurns(4); len(got) != 4 {
		t.Errorf("expected 4 recent turns, got %d", len(got))
	}
	if got := s.RecentTurns(0); len(got) != 10 {
		t.Errorf("n<=0 should return all turns, got %d", len(got))
	}
	if got := s.RecentTurns(50); len(got) != 10 {
		t.Errorf("n>len should return all turns, got %d", len(got))
	}
}

// --- ConversationState Tests ---

func TestConversationStateStartAndAccept(t *testing.T) {
	var st ConversationState
	if st.Active() {
		t.Fatal("zero state must not be active")
	}

	st.Start(CommandSendMessage)
	if !st.Active() || st.Pending != SlotName {
		t.Fatalf("after Start expected active + pending name, got %+v", st)
	}

	st.Accept("Jane Doe")
	st.Accept("Acme Corp")
	st.Accept("jane@acme.com")
	st.Accept("Interested in collaborating")

	if st.Status != FlowCompleted {
		t.Fatalf("message flow should complete after body, status=%s", st.Status)
	}
	if st.Pending != SlotNone {
		t.Errorf("completed flow must have no pending slot, got %q", st.Pending)
	}
	if st.Collected[SlotEmail] != "jane@acme.com" {
		t.Errorf("collected email = %q", st.Collected[SlotEmail])
	}
}

func TestConversationStateMeetingHasDatetimeSlot(t *testing.T) {
	var st ConversationState
	st.Start(CommandScheduleMeeting)
	st.Accept("Sam")
	st.Accept("none")
	st.Accept("sam@x.com")
	st.Accept("Discuss a role")

	if st.Status == FlowCompleted {
		t.Fatal("meeting flow must not complete before datetime")
	}
	if st.Pending != SlotDatetime {
		t.Fatalf("expected pending datetime, got %q", st.Pending)
	}

	st.Accept("Friday 3pm")
	if st.Status != FlowCompleted {
		t.Fatalf("expected completed, got %s", st.Status)
	}
	if st.Collected[SlotCompany] != "none" {
		t.Errorf(`company "none" must be stored verbatim, got %q`, st.Collected[SlotCompany])
	}
}

func TestConversationStateStartDiscardsPriorSlots(t *testing.T) {
	var st ConversationState
	st.Start(CommandSendMessage)
	st.Accept("Jane")

	st.Start(CommandScheduleMeeting)
	if len(st.Collected) != 0 {
		t.Errorf("new command must discard prior slots, got %v", st.Collected)
	}
	if st.Pending != SlotName {
		t.Errorf("new command must restart at name, got %q", st.Pending)
	}
}

func TestConversationStateValidate(t *testing.T) {
	var st ConversationState
	if err := st.Validate(); err != nil {
		t.Fatalf("zero state must validate, got %v", err)
	}

	st.Pending = SlotEmail // pending slot without an active command
	if err := st.Validate(); !errors.Is(err, domain.ErrStateCorrupted) {
		t.Fatalf("expected ErrStateCorrupted, got %v", err)
	}

	st.Reset()
	if err := st.Validate(); err != nil {
		t.Fatalf("reset state must validate, got %v", err)
	}
}

// --- Notification Tests ---

func TestFromCollected(t *testing.T) {
	collected := map[Slot]string{
		SlotName:     "Sam",
		SlotCompany:  "none",
		SlotEmail:    "sam@x.com",
		SlotBody:     "Discuss a role",
		SlotDatetime: "Friday 3pm",
	}
	p := FromCollected(CommandScheduleMeeting, collected)
	if p.Kind != NotificationMeeting {
		t.Errorf("expected meeting kind, got %s", p.Kind)
	}
	if p.Datetime != "Friday 3pm" {
		t.Errorf("datetime = %q", p.Datetime)
	}

	p = FromCollected(CommandSendMessage, collected)
	if p.Kind != NotificationMessage {
		t.Errorf("expected message kind, got %s", p.Kind)
	}
}
