package model

import (
	"time"

	"portfolio-assistant/internal/domain"
)

// Command identifies which data-collection flow a session is running.
type Command string

const (
	CommandNone            Command = ""
	CommandSendMessage     Command = "send_message"
	CommandScheduleMeeting Command = "schedule_meeting"
)

// Slot names one piece of contact information solicited from the visitor.
type Slot string

const (
	SlotNone     Slot = ""
	SlotName     Slot = "name"
	SlotCompany  Slot = "company"
	SlotEmail    Slot = "email"
	SlotBody     Slot = "body"
	SlotDatetime Slot = "datetime"
)

type FlowStatus string

const (
	FlowInProgress     FlowStatus = "in_progress"
	FlowCompleted      FlowStatus = "completed"
	FlowAbandoned      FlowStatus = "abandoned"
	FlowDispatchFailed FlowStatus = "dispatch_failed"
)

// ConversationState is the per-session slot-filling state. It is persisted
// between turns and mutated only by the conversation use case, exactly once
// per inbound turn. The zero value means "no flow active".
type ConversationState struct {
	Command   Command         `json:"command"`
	Pending   Slot            `json:"pending_slot"`
	Collected map[Slot]string `json:"collected"`
	Status    FlowStatus      `json:"status"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Active reports whether a flow is currently collecting slots.
func (s *ConversationState) Active() bool {
	return s.Command != CommandNone && s.Status == FlowInProgress
}

// Start reinitializes the state for a new command. Any previously collected
// slots are discarded: a new command always wins over an in-flight one.
func (s *ConversationState) Start(cmd Command) {
	s.Command = cmd
	s.Pending = SlotName
	s.Collected = make(map[Slot]string, 5)
	s.Status = FlowInProgress
	s.UpdatedAt = time.Now()
}

// Reset returns the state to "no flow active".
func (s *ConversationState) Reset() {
	*s = ConversationState{UpdatedAt: time.Now()}
}

// Accept records a value for the pending slot and moves to the next one.
// The caller is responsible for validating the value first.
func (s *ConversationState) Accept(value string) {
	s.Collected[s.Pending] = value
	s.Pending = s.nextSlot()
	if s.Pending == SlotNone {
		s.Status = FlowCompleted
	}
	s.UpdatedAt = time.Now()
}

func (s *ConversationState) nextSlot() Slot {
	switch s.Pending {
	case SlotName:
		return SlotCompany
	case SlotCompany:
		return SlotEmail
	case SlotEmail:
		return SlotBody
	case SlotBody:
		if s.Command == CommandScheduleMeeting {
			return SlotDatetime
		}
		return SlotNone
	default:
		return SlotNone
	}
}

// Validate checks the structural invariant: no command means no pending slot
// and no collected values. A violation is a programming error, not user input.
func (s *ConversationState) Validate() error {
	if s.Command == CommandNone {
		if s.Pending != SlotNone || len(s.Collected) != 0 {
			return domain.ErrStateCorrupted
		}
	}
	return nil
}
