package domain

import (
	"fmt"
	"strings"
)

type PersonaID string

type Persona struct {
	ID          PersonaID
	Name        string
	Title       string
	Department  string
	Personality string
	Expertise   []string
}

func (p Persona) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("persona %s: name is required", p.ID)
	}

	return nil
}

// DisplayName returns "Name, Title" or just the name when no title is set.
func (p Persona) DisplayName() string {
	if strings.TrimSpace(p.Title) == "" {
		return p.Name
	}

	return p.Name + ", " + p.Title
}

// Clone returns a copy that does not share the expertise slice.
func (p Persona) Clone() Persona {
	p.Expertise = append([]string(nil), p.Expertise...)
	return p
}

// NormalizePersonaIDs trims ids, drops blanks and removes duplicates while
// keeping first-seen order.
func NormalizePersonaIDs(ids []PersonaID) []PersonaID {
	normalized := make([]PersonaID, 0, len(ids))
	seen := make(map[PersonaID]struct{}, len(ids))
	for _, id := range ids {
		trimmed := PersonaID(strings.TrimSpace(string(id)))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}

	return normalized
}
