package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bnema/boardroom/internal/adapters/generation"
	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.7
)

var ErrEmptyCandidate = errors.New("gemini returned no text")

// contentGenerator is the slice of *genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Options struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

type Generator struct {
	models contentGenerator
	opts   Options
}

var _ ports.Generator = (*Generator)(nil)

func NewGenerator(ctx context.Context, opts Options) (*Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key: %w", domain.ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return newGenerator(client.Models, opts), nil
}

func newGenerator(models contentGenerator, opts Options) *Generator {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature < 0 {
		opts.Temperature = DefaultTemperature
	}

	return &Generator{models: models, opts: opts}
}

func (g *Generator) Generate(ctx context.Context, persona domain.Persona, message string, conversationContext string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(generation.SystemPrompt(persona, conversationContext), genai.RoleUser),
		Temperature:       genai.Ptr(g.opts.Temperature),
		MaxOutputTokens:   g.opts.MaxTokens,
	}
	contents := []*genai.Content{genai.NewContentFromText(message, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate gemini content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyCandidate
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyCandidate
	}

	return text, nil
}
