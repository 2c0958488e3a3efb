package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

type Policy struct {
	// Attempts is the total number of tries; 1 disables retry.
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Generator retries a wrapped generator with jittered exponential backoff.
type Generator struct {
	next   ports.Generator
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func(n int64) int64
}

var _ ports.Generator = (*Generator)(nil)

func Wrap(next ports.Generator, policy Policy, logger *zap.Logger) ports.Generator {
	if policy.Attempts <= 1 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		next:   next,
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
		jitter: rand.Int64N,
	}
}

func (g *Generator) Generate(ctx context.Context, persona domain.Persona, message string, conversationContext string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.policy.Attempts; attempt++ {
		text, err := g.next.Generate(ctx, persona, message, conversationContext)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if attempt == g.policy.Attempts {
			break
		}

		delay := g.backoff(attempt)
		g.logger.Debug("retrying generation",
			zap.String("persona_id", string(persona.ID)),
			zap.Int("attempt", attempt),
			zap.Duration("sleep", delay),
			zap.Error(err),
		)
		if err := g.sleep(ctx, delay); err != nil {
			break
		}
	}

	return "", fmt.Errorf("generate after retries: %w", lastErr)
}

// backoff doubles BaseDelay per attempt, caps it at MaxDelay and returns a
// random duration in [d/2, d].
func (g *Generator) backoff(attempt int) time.Duration {
	delay := g.policy.BaseDelay << (attempt - 1)
	if delay <= 0 || (g.policy.MaxDelay > 0 && delay > g.policy.MaxDelay) {
		delay = g.policy.MaxDelay
	}
	if delay <= 0 {
		return 0
	}

	half := delay / 2
	return half + time.Duration(g.jitter(int64(delay-half)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
