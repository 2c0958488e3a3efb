package generation

import (
	"context"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

// Unavailable stands in when no provider is configured. Every call fails with
// Err, so personas answer with the fallback text instead of aborting the run.
type Unavailable struct {
	Err error
}

var _ ports.Generator = Unavailable{}

func (u Unavailable) Generate(context.Context, domain.Persona, string, string) (string, error) {
	if u.Err == nil {
		return "", domain.ErrNotConfigured
	}

	return "", u.Err
}
