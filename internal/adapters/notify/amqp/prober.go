package amqp

import (
	"context"
	"io"
	"strings"

	"github.com/bnema/boardroom/internal/ports"
)

// Prober checks that the broker accepts a connection.
type Prober struct {
	url  string
	dial func(url string) (io.Closer, error)
}

var _ ports.Prober = (*Prober)(nil)

func NewProber(url string) *Prober {
	return &Prober{
		url: url,
		dial: func(url string) (io.Closer, error) {
			return dial(url)
		},
	}
}

func (p *Prober) Name() string {
	return "amqp"
}

func (p *Prober) Configured() bool {
	return strings.TrimSpace(p.url) != ""
}

func (p *Prober) Probe(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	conn, err := p.dial(p.url)
	if err != nil {
		return "", err
	}
	_ = conn.Close()

	return "AMQP broker reachable", nil
}
