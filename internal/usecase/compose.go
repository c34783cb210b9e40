package usecase

import (
	"portfolio-assistant/internal/domain/model"
)

// Response composer: fixed templates only, no business logic. The state
// machine decides what happens; these functions decide how it reads.

const (
	replyCancelled       = "Okay, cancelled."
	replyEmailInvalid    = "I need a valid email address."
	replyDispatchFailure = "Something went wrong sending your request. Please try again in a bit, or reach out directly by email."
)

// promptFor returns the question soliciting the given slot.
func promptFor(slot model.Slot, cmd model.Command) string {
	switch slot {
	case model.SlotName:
		return "What's your name?"
	case model.SlotCompany:
		return "What company are you with? (type 'none' if not applicable)"
	case model.SlotEmail:
		return "What's your email address?"
	case model.SlotBody:
		if cmd == model.CommandScheduleMeeting {
			return "What would you like to discuss?"
		}
		return "What's your message?"
	case model.SlotDatetime:
		return "When would you like to schedule the meeting?"
	default:
		return ""
	}
}

// repromptFor returns the clarifying re-prompt after a validation failure.
func repromptFor(slot model.Slot, cmd model.Command) string {
	if slot == model.SlotEmail {
		return replyEmailInvalid
	}
	return promptFor(slot, cmd)
}

// confirmDispatch renders the success message after delivery.
func confirmDispatch(p model.NotificationPayload) string {
	if p.Kind == model.NotificationMeeting {
		return "Thanks " + p.Name + "! Your meeting request for \"" + p.Datetime + "\" has been sent. You'll hear back at " + p.Email + "."
	}
	return "Thanks " + p.Name + "! Your message has been sent. You'll hear back at " + p.Email + "."
}
