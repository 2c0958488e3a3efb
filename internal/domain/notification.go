package domain

import "time"

const (
	MaxTopicRunes  = 200
	TopicEllipsis  = "..."
	DiscussionType = "boardroom.discussion.v1"
)

type Notification struct {
	PersonaNames []string
	Topic        string
	SentAt       time.Time
}

// TruncateTopic keeps at most MaxTopicRunes runes of message and appends
// TopicEllipsis when anything was cut.
func TruncateTopic(message string) string {
	runes := []rune(message)
	if len(runes) <= MaxTopicRunes {
		return message
	}

	return string(runes[:MaxTopicRunes]) + TopicEllipsis
}
