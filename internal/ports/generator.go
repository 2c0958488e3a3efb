package ports

import (
	"context"

	"github.com/bnema/boardroom/internal/domain"
)

// Generator produces one persona's answer to a message. Implementations own
// model choice, output length and sampling; a returned error carries no
// partial result.
type Generator interface {
	Generate(ctx context.Context, persona domain.Persona, message string, conversationContext string) (string, error)
}
