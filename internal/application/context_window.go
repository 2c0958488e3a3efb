package application

import (
	"strings"

	"github.com/bnema/boardroom/internal/domain"
)

const (
	DefaultContextWindow = 3

	contextTurnPrefix = "User: "
	contextSeparator  = " | "
)

// DeriveContext renders the last window turns oldest-first as
// "User: <message>" entries joined by " | ".
func DeriveContext(turns []domain.ConversationTurn, window int) string {
	if window <= 0 || len(turns) == 0 {
		return ""
	}

	start := 0
	if len(turns) > window {
		start = len(turns) - window
	}

	parts := make([]string, 0, len(turns)-start)
	for _, turn := range turns[start:] {
		parts = append(parts, contextTurnPrefix+turn.Message)
	}

	return strings.Join(parts, contextSeparator)
}
