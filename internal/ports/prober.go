package ports

import "context"

// Prober checks connectivity to one external integration. It returns a short
// human-readable success message or an error.
type Prober interface {
	Name() string
	Configured() bool
	Probe(ctx context.Context) (string, error)
}
