package model

import (
	"time"
)

type NotificationKind string

const (
	NotificationMessage NotificationKind = "message"
	NotificationMeeting NotificationKind = "meeting"
)

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// NotificationPayload is the structured contact request delivered to the
// site owner once a flow has collected every slot. Datetime is only set for
// meeting requests and is stored verbatim, never parsed.
type NotificationPayload struct {
	Kind     NotificationKind `json:"kind"`
	Name     string           `json:"name"`
	Company  string           `json:"company"`
	Email    string           `json:"email"`
	Body     string           `json:"body"`
	Datetime string           `json:"datetime,omitempty"`
}

// FromCollected builds a payload out of a completed slot map.
func FromCollected(cmd Command, collected map[Slot]string) NotificationPayload {
	kind := NotificationMessage
	if cmd == CommandScheduleMeeting {
		kind = NotificationMeeting
	}
	return NotificationPayload{
		Kind:     kind,
		Name:     collected[SlotName],
		Company:  collected[SlotCompany],
		Email:    collected[SlotEmail],
		Body:     collected[SlotBody],
		Datetime: collected[SlotDatetime],
	}
}

// NotificationLog records one delivery attempt so failed dispatches keep
// their collected data and can be retried without rerunning the flow.
type NotificationLog struct {
	ID        string
	SessionID string
	Payload   NotificationPayload
	Status    NotificationStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
