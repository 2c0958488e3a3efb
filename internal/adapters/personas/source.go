package personas

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

//go:embed builtin.toml
var builtinCatalogue []byte

const (
	formatTOML = "toml"
	formatYAML = "yaml"

	fileMode        = 0o600
	dirMode         = 0o700
	tempFilePattern = ".personas-*.tmp"
)

// Source loads the persona catalogue from a TOML or YAML file, or from the
// built-in catalogue when no path is set.
type Source struct {
	path string
}

var _ ports.PersonaSource = (*Source)(nil)

func NewSource(path string) (*Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &Source{}, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve personas path: %w", err)
	}

	return &Source{path: filepath.Clean(absPath)}, nil
}

func Builtin() *Source {
	return &Source{}
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) LoadPersonas(ctx context.Context) ([]domain.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.path == "" {
		return decode(builtinCatalogue, formatTOML)
	}

	format, err := formatForPath(s.path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	return decode(data, format)
}

func decode(data []byte, format string) ([]domain.Persona, error) {
	var file fileSchema
	switch format {
	case formatTOML:
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode personas file: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("decode personas file: %w", err)
		}
	}
	if err := file.validateVersion(); err != nil {
		return nil, err
	}
	if len(file.Personas) == 0 {
		return nil, errors.New("personas file defines no personas")
	}

	personas := make([]domain.Persona, 0, len(file.Personas))
	for _, entry := range file.Personas {
		personas = append(personas, fromSchema(entry))
	}

	return personas, nil
}

func formatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unsupported personas file extension %q", filepath.Ext(path))
	}
}

// WriteFile atomically writes personas to path in the format implied by its
// extension.
func WriteFile(path string, personas []domain.Persona) error {
	format, err := formatForPath(path)
	if err != nil {
		return err
	}

	file := fileSchema{Personas: make([]personaSchema, 0, len(personas))}
	for _, persona := range personas {
		file.Personas = append(file.Personas, toSchema(persona))
	}
	file.applyDefaults()

	var data []byte
	switch format {
	case formatTOML:
		data, err = toml.Marshal(file)
	case formatYAML:
		data, err = yaml.Marshal(file)
	}
	if err != nil {
		return fmt.Errorf("encode personas file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create personas directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp personas file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp personas file: %w", err)
	}

	if err := tempFile.Chmod(fileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp personas file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp personas file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace personas file: %w", err)
	}

	cleanup = false

	return nil
}
