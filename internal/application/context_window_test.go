package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/boardroom/internal/domain"
)

func turnsWithMessages(messages ...string) []domain.ConversationTurn {
	turns := make([]domain.ConversationTurn, 0, len(messages))
	for _, message := range messages {
		turns = append(turns, domain.ConversationTurn{Message: message})
	}
	return turns
}

func TestDeriveContext(t *testing.T) {
	tests := []struct {
		name   string
		turns  []domain.ConversationTurn
		window int
		want   string
	}{
		{name: "last three oldest first", turns: turnsWithMessages("a", "b", "c", "d"), window: 3, want: "User: b | User: c | User: d"},
		{name: "single turn", turns: turnsWithMessages("a"), window: 3, want: "User: a"},
		{name: "empty history", turns: nil, window: 3, want: ""},
		{name: "zero window", turns: turnsWithMessages("a", "b"), window: 0, want: ""},
		{name: "window larger than history", turns: turnsWithMessages("a", "b"), window: 5, want: "User: a | User: b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveContext(tc.turns, tc.window))
		})
	}
}

func TestDeriveContextIgnoresResponses(t *testing.T) {
	turns := []domain.ConversationTurn{{
		Message:   "pricing?",
		Responses: map[domain.PersonaID]string{"xander": "raise it"},
	}}

	assert.Equal(t, "User: pricing?", DeriveContext(turns, DefaultContextWindow))
}
