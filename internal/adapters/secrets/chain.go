package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/boardroom/internal/ports"
)

// RefPrefix marks a config value that names a secret instead of holding it.
const RefPrefix = "secret:"

// Chain tries primary first and falls back unless the context is done.
type Chain struct {
	primary  ports.SecretReader
	fallback ports.SecretReader
}

var _ ports.SecretReader = (*Chain)(nil)

func NewChain(primary, fallback ports.SecretReader) *Chain {
	return &Chain{primary: primary, fallback: fallback}
}

// NewPassFirstWithDirFallback reads from pass and then from files below root.
func NewPassFirstWithDirFallback(root string) *Chain {
	return NewChain(NewPass(), NewDir(root))
}

func (c *Chain) Get(ctx context.Context, key string) (string, error) {
	value, err := c.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}

	fallbackValue, fallbackErr := c.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return fallbackValue, nil
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Resolve returns value unchanged unless it carries RefPrefix, in which case
// the named secret is read from reader.
func Resolve(ctx context.Context, reader ports.SecretReader, value string) (string, error) {
	key, ok := strings.CutPrefix(strings.TrimSpace(value), RefPrefix)
	if !ok {
		return value, nil
	}

	secret, err := reader.Get(ctx, strings.TrimSpace(key))
	if err != nil {
		return "", err
	}

	return secret, nil
}
