package application

import (
	"fmt"

	"github.com/bnema/boardroom/internal/domain"
)

// PersonaRegistry is the immutable persona catalogue loaded at startup.
type PersonaRegistry struct {
	order []domain.PersonaID
	byID  map[domain.PersonaID]domain.Persona
}

func NewPersonaRegistry(personas []domain.Persona) (*PersonaRegistry, error) {
	registry := &PersonaRegistry{
		order: make([]domain.PersonaID, 0, len(personas)),
		byID:  make(map[domain.PersonaID]domain.Persona, len(personas)),
	}

	for _, persona := range personas {
		if err := persona.Validate(); err != nil {
			return nil, fmt.Errorf("validate persona: %w", err)
		}
		if _, ok := registry.byID[persona.ID]; ok {
			return nil, fmt.Errorf("register persona %s: %w", persona.ID, domain.ErrDuplicatePersona)
		}

		registry.byID[persona.ID] = persona.Clone()
		registry.order = append(registry.order, persona.ID)
	}

	return registry, nil
}

func (r *PersonaRegistry) Lookup(id domain.PersonaID) (domain.Persona, bool) {
	persona, ok := r.byID[id]
	if !ok {
		return domain.Persona{}, false
	}

	return persona.Clone(), true
}

// List returns every persona in catalogue order.
func (r *PersonaRegistry) List() []domain.Persona {
	personas := make([]domain.Persona, 0, len(r.order))
	for _, id := range r.order {
		personas = append(personas, r.byID[id].Clone())
	}

	return personas
}

func (r *PersonaRegistry) Len() int {
	return len(r.order)
}

// Filter keeps the ids present in the catalogue, trimmed and deduplicated in
// first-seen order. Unknown ids are dropped.
func (r *PersonaRegistry) Filter(ids []domain.PersonaID) []domain.PersonaID {
	normalized := domain.NormalizePersonaIDs(ids)
	known := make([]domain.PersonaID, 0, len(normalized))
	for _, id := range normalized {
		if _, ok := r.byID[id]; ok {
			known = append(known, id)
		}
	}

	return known
}
