package ports

import "context"

type SecretReader interface {
	Get(ctx context.Context, key string) (string, error)
}
