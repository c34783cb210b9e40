package usecase

import (
	"strings"

	"portfolio-assistant/internal/domain/model"
)

// classifyIntent maps an inbound message to a command. Only explicit command
// markers are recognized; free-text questions are handled by the chat use
// case instead of keyword heuristics.
func classifyIntent(input string) model.Command {
	switch firstWord(input) {
	case "/message":
		return model.CommandSendMessage
	case "/meeting", "/meet":
		return model.CommandScheduleMeeting
	default:
		return model.CommandNone
	}
}

// isCancel reports whether the input aborts an active flow.
func isCancel(input string) bool {
	return strings.EqualFold(strings.TrimSpace(input), "cancel")
}

func firstWord(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		s = s[:i]
	}
	return s
}
