package personas

import (
	"fmt"

	"github.com/bnema/boardroom/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version" yaml:"version"`
	Personas []personaSchema `toml:"personas" yaml:"personas"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported personas schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type personaSchema struct {
	ID          string   `toml:"id" yaml:"id"`
	Name        string   `toml:"name" yaml:"name"`
	Title       string   `toml:"title" yaml:"title"`
	Department  string   `toml:"department" yaml:"department"`
	Personality string   `toml:"personality" yaml:"personality"`
	Expertise   []string `toml:"expertise" yaml:"expertise"`
}

func toSchema(persona domain.Persona) personaSchema {
	return personaSchema{
		ID:          string(persona.ID),
		Name:        persona.Name,
		Title:       persona.Title,
		Department:  persona.Department,
		Personality: persona.Personality,
		Expertise:   append([]string(nil), persona.Expertise...),
	}
}

func fromSchema(persona personaSchema) domain.Persona {
	return domain.Persona{
		ID:          domain.PersonaID(persona.ID),
		Name:        persona.Name,
		Title:       persona.Title,
		Department:  persona.Department,
		Personality: persona.Personality,
		Expertise:   append([]string(nil), persona.Expertise...),
	}
}
