package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

const (
	DefaultPersonaTimeout = 60 * time.Second

	FallbackResponse = "I apologize, but I'm currently unavailable. Please try again."
)

var errBlankResponse = errors.New("generator returned blank response")

// Orchestrator fans one message out to the requested personas and joins on
// every answer before recording the turn.
type Orchestrator struct {
	registry   *PersonaRegistry
	generator  ports.Generator
	history    *ChatHistoryLog
	analytics  *AnalyticsAggregator
	dispatcher *NotificationDispatcher
	clock      ports.Clock
	logger     *zap.Logger

	personaTimeout time.Duration
	contextWindow  int
}

type OrchestratorOptions struct {
	History        *ChatHistoryLog
	Analytics      *AnalyticsAggregator
	Dispatcher     *NotificationDispatcher
	Clock          ports.Clock
	Logger         *zap.Logger
	PersonaTimeout time.Duration
	ContextWindow  int
}

func NewOrchestrator(registry *PersonaRegistry, generator ports.Generator, opts OrchestratorOptions) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.History == nil {
		opts.History = NewChatHistoryLog(DefaultHistoryCapacity)
	}
	if opts.Analytics == nil {
		opts.Analytics = NewAnalyticsAggregator(opts.Clock)
	}
	if opts.PersonaTimeout <= 0 {
		opts.PersonaTimeout = DefaultPersonaTimeout
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = DefaultContextWindow
	}

	return &Orchestrator{
		registry:       registry,
		generator:      generator,
		history:        opts.History,
		analytics:      opts.Analytics,
		dispatcher:     opts.Dispatcher,
		clock:          opts.Clock,
		logger:         opts.Logger,
		personaTimeout: opts.PersonaTimeout,
		contextWindow:  opts.ContextWindow,
	}
}

func (o *Orchestrator) History() *ChatHistoryLog {
	return o.history
}

func (o *Orchestrator) Analytics() *AnalyticsAggregator {
	return o.analytics
}

// Orchestrate runs one orchestration call. Per-persona failures become
// FallbackResponse; only request-level faults are returned as errors.
// Cancelling ctx does not abort in-flight generations.
func (o *Orchestrator) Orchestrate(ctx context.Context, cmd OrchestrateCommand) (result OrchestrationResult, err error) {
	if strings.TrimSpace(cmd.Message) == "" {
		return OrchestrationResult{}, domain.ErrEmptyMessage
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			o.logger.Error("orchestration panic", zap.Any("panic", recovered))
			result = OrchestrationResult{}
			err = fmt.Errorf("%w: %v", domain.ErrOrchestrationFailed, recovered)
		}
	}()

	started := o.clock.Now()
	valid := o.registry.Filter(cmd.PersonaIDs)
	conversationContext := DeriveContext(o.history.Recent(o.contextWindow), o.contextWindow)

	responses := o.fanOut(ctx, valid, cmd.Message, conversationContext)

	turn := domain.ConversationTurn{
		Timestamp:  o.clock.Now(),
		Message:    cmd.Message,
		PersonaIDs: valid,
		Responses:  responses,
	}
	o.history.Append(turn)

	o.analytics.Record(o.recordedIDs(cmd.PersonaIDs), o.clock.Now().Sub(started))
	o.dispatcher.Dispatch(cmd.Message, valid)

	return OrchestrationResult{
		Responses:     responses,
		Timestamp:     turn.Timestamp,
		AnsweredCount: len(responses),
	}, nil
}

func (o *Orchestrator) fanOut(ctx context.Context, ids []domain.PersonaID, message, conversationContext string) map[domain.PersonaID]string {
	responses := make(map[domain.PersonaID]string, len(ids))
	var mu sync.Mutex

	var group errgroup.Group
	for _, id := range ids {
		persona, _ := o.registry.Lookup(id)
		group.Go(func() error {
			text := o.invoke(ctx, persona, message, conversationContext)
			mu.Lock()
			responses[persona.ID] = text
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return responses
}

// invoke runs one generation under its own deadline, detached from the
// caller's cancellation.
func (o *Orchestrator) invoke(ctx context.Context, persona domain.Persona, message, conversationContext string) string {
	started := o.clock.Now()
	text, err := o.generate(ctx, persona, message, conversationContext)
	if err != nil {
		o.logger.Warn("persona generation failed",
			zap.String("persona_id", string(persona.ID)),
			zap.Duration("elapsed", o.clock.Now().Sub(started)),
			zap.Error(err),
		)
		return FallbackResponse
	}

	o.logger.Debug("persona answered",
		zap.String("persona_id", string(persona.ID)),
		zap.Duration("elapsed", o.clock.Now().Sub(started)),
	)

	return text
}

func (o *Orchestrator) generate(ctx context.Context, persona domain.Persona, message, conversationContext string) (string, error) {
	invokeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.personaTimeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		var out generation
		defer func() {
			if recovered := recover(); recovered != nil {
				out = generation{err: fmt.Errorf("generator panic: %v", recovered)}
			}
			done <- out
		}()
		text, err := o.generator.Generate(invokeCtx, persona, message, conversationContext)
		out = generation{text: text, err: err}
	}()

	var out generation
	select {
	case out = <-done:
	case <-invokeCtx.Done():
		return "", fmt.Errorf("generate response: %w", invokeCtx.Err())
	}
	if out.err != nil {
		return "", fmt.Errorf("generate response: %w", out.err)
	}

	text := strings.TrimSpace(out.text)
	if text == "" {
		return "", errBlankResponse
	}

	return text, nil
}

type generation struct {
	text string
	err  error
}

// recordedIDs keeps every known id occurrence, duplicates included.
func (o *Orchestrator) recordedIDs(ids []domain.PersonaID) []domain.PersonaID {
	recorded := make([]domain.PersonaID, 0, len(ids))
	for _, id := range ids {
		trimmed := domain.PersonaID(strings.TrimSpace(string(id)))
		if _, ok := o.registry.Lookup(trimmed); ok {
			recorded = append(recorded, trimmed)
		}
	}

	return recorded
}
