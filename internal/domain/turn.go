package domain

import "time"

type ConversationTurn struct {
	Timestamp  time.Time
	Message    string
	PersonaIDs []PersonaID
	Responses  map[PersonaID]string
}

// Clone returns a deep copy so stored turns stay immutable.
func (t ConversationTurn) Clone() ConversationTurn {
	clone := ConversationTurn{
		Timestamp:  t.Timestamp,
		Message:    t.Message,
		PersonaIDs: append([]PersonaID(nil), t.PersonaIDs...),
		Responses:  make(map[PersonaID]string, len(t.Responses)),
	}
	for id, text := range t.Responses {
		clone.Responses[id] = text
	}

	return clone
}
