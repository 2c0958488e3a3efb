package application

import (
	"sync"

	"github.com/bnema/boardroom/internal/domain"
)

const (
	DefaultHistoryCapacity = 1000
	DefaultHistoryLimit    = 10
)

// ChatHistoryLog is an append-only, bounded log of conversation turns. When
// full, the oldest turn is evicted.
type ChatHistoryLog struct {
	mu       sync.Mutex
	capacity int
	turns    []domain.ConversationTurn
}

func NewChatHistoryLog(capacity int) *ChatHistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	return &ChatHistoryLog{capacity: capacity}
}

func (l *ChatHistoryLog) Append(turn domain.ConversationTurn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.turns) >= l.capacity {
		drop := len(l.turns) - l.capacity + 1
		l.turns = append(l.turns[:0:0], l.turns[drop:]...)
	}
	l.turns = append(l.turns, turn.Clone())
}

// Recent returns up to limit turns, most recent last.
func (l *ChatHistoryLog) Recent(limit int) []domain.ConversationTurn {
	if limit <= 0 {
		return []domain.ConversationTurn{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	start := 0
	if len(l.turns) > limit {
		start = len(l.turns) - limit
	}

	return cloneTurns(l.turns[start:])
}

func (l *ChatHistoryLog) All() []domain.ConversationTurn {
	l.mu.Lock()
	defer l.mu.Unlock()

	return cloneTurns(l.turns)
}

func (l *ChatHistoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.turns)
}

func cloneTurns(turns []domain.ConversationTurn) []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, 0, len(turns))
	for _, turn := range turns {
		out = append(out, turn.Clone())
	}

	return out
}
