package ports

import (
	"context"

	"github.com/bnema/boardroom/internal/domain"
)

type PersonaSource interface {
	LoadPersonas(ctx context.Context) ([]domain.Persona, error)
}
