package application

import (
	"context"
	"fmt"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

// Boardroom is the entry point used by the CLI: persona listing,
// orchestration, history, analytics and health.
type Boardroom struct {
	registry     *PersonaRegistry
	orchestrator *Orchestrator
	dispatcher   *NotificationDispatcher
	clock        ports.Clock
	services     map[string]bool
}

type BoardroomOptions struct {
	Dispatcher *NotificationDispatcher
	Clock      ports.Clock
	// Services reports which integrations are configured, keyed by name.
	Services map[string]bool
}

func NewBoardroom(registry *PersonaRegistry, orchestrator *Orchestrator, opts BoardroomOptions) *Boardroom {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	services := make(map[string]bool, len(opts.Services))
	for name, configured := range opts.Services {
		services[name] = configured
	}

	return &Boardroom{
		registry:     registry,
		orchestrator: orchestrator,
		dispatcher:   opts.Dispatcher,
		clock:        opts.Clock,
		services:     services,
	}
}

func (b *Boardroom) Personas() []domain.Persona {
	return b.registry.List()
}

func (b *Boardroom) Persona(id domain.PersonaID) (domain.Persona, error) {
	persona, ok := b.registry.Lookup(id)
	if !ok {
		return domain.Persona{}, fmt.Errorf("lookup persona %s: %w", id, domain.ErrPersonaNotFound)
	}

	return persona, nil
}

func (b *Boardroom) Orchestrate(ctx context.Context, cmd OrchestrateCommand) (OrchestrationResult, error) {
	result, err := b.orchestrator.Orchestrate(ctx, cmd)
	if err != nil {
		return OrchestrationResult{}, fmt.Errorf("orchestrate message: %w", err)
	}

	return result, nil
}

// History returns up to limit turns, most recent last. A non-positive limit
// falls back to DefaultHistoryLimit.
func (b *Boardroom) History(limit int) []domain.ConversationTurn {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return b.orchestrator.History().Recent(limit)
}

func (b *Boardroom) Analytics() domain.AnalyticsSnapshot {
	return b.orchestrator.Analytics().Summarize()
}

func (b *Boardroom) Health() HealthStatus {
	services := make(map[string]bool, len(b.services))
	for name, configured := range b.services {
		services[name] = configured
	}

	return HealthStatus{
		Status:             HealthStatusHealthy,
		Timestamp:          b.clock.Now(),
		Services:           services,
		PersonasLoaded:     b.registry.Len(),
		TotalConversations: b.orchestrator.Analytics().TotalConversations(),
	}
}

// Close waits for background notifications to settle.
func (b *Boardroom) Close() {
	b.dispatcher.Wait()
}
