package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

const DefaultNotifyTimeout = 10 * time.Second

// NotificationDispatcher delivers discussion summaries in the background.
// Delivery is best effort: failures are logged and never reach the caller.
type NotificationDispatcher struct {
	notifier ports.Notifier
	registry *PersonaRegistry
	clock    ports.Clock
	logger   *zap.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

type DispatcherOptions struct {
	Clock   ports.Clock
	Logger  *zap.Logger
	Timeout time.Duration
}

func NewNotificationDispatcher(notifier ports.Notifier, registry *PersonaRegistry, opts DispatcherOptions) *NotificationDispatcher {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultNotifyTimeout
	}

	return &NotificationDispatcher{
		notifier: notifier,
		registry: registry,
		clock:    opts.Clock,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
	}
}

// Dispatch starts delivery and returns immediately.
func (d *NotificationDispatcher) Dispatch(message string, ids []domain.PersonaID) {
	if d == nil || d.notifier == nil {
		return
	}

	notification := domain.Notification{
		PersonaNames: d.personaNames(ids),
		Topic:        domain.TruncateTopic(message),
		SentAt:       d.clock.Now(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.deliver(notification); err != nil {
			d.logger.Warn("notification delivery failed", zap.Error(err))
			return
		}
		d.logger.Debug("notification delivered", zap.Int("personas", len(notification.PersonaNames)))
	}()
}

// Wait blocks until every in-flight delivery has settled.
func (d *NotificationDispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(notification domain.Notification) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("notifier panic: %v", recovered)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, notification); err != nil {
		return fmt.Errorf("notify discussion: %w", err)
	}

	return nil
}

func (d *NotificationDispatcher) personaNames(ids []domain.PersonaID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		persona, ok := d.registry.Lookup(id)
		if !ok {
			continue
		}
		names = append(names, persona.Name)
	}

	return names
}
