package usecase

import (
	"regexp"
	"strings"

	"portfolio-assistant/internal/domain/model"
)

// emailPattern is a simplified RFC-5322-ish token matcher. The first match
// anywhere in the turn is taken, so "reach me at jane@acme.com" works.
var emailPattern = regexp.MustCompile(`[^@\s]+@[^@\s]+\.[A-Za-z]{2,}`)

// nameDisallow rejects throwaway answers to the name prompt.
var nameDisallow = map[string]struct{}{
	"no": {}, "none": {}, "yes": {}, "ok": {},
}

// extractSlot validates the current turn as the answer for one slot. It never
// looks at history: collected values are carried in ConversationState, so a
// single turn is all there is to parse.
func extractSlot(slot model.Slot, text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	switch slot {
	case model.SlotName:
		if trimmed == "" {
			return "", false
		}
		if _, bad := nameDisallow[strings.ToLower(trimmed)]; bad {
			return "", false
		}
		return trimmed, true
	case model.SlotCompany:
		// Anything goes, including a literal "none", stored verbatim.
		return trimmed, true
	case model.SlotEmail:
		if m := emailPattern.FindString(text); m != "" {
			return m, true
		}
		return "", false
	case model.SlotBody, model.SlotDatetime:
		// Accepted verbatim; datetime is echoed to the owner, never parsed.
		if trimmed == "" {
			return "", false
		}
		return trimmed, true
	default:
		return "", false
	}
}
