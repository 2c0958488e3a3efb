package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/boardroom/internal/domain"
	"github.com/bnema/boardroom/internal/ports"
)

// Notifier delivers each notification to every configured sink in order.
type Notifier struct {
	sinks []namedSink
}

type namedSink struct {
	name     string
	notifier ports.Notifier
}

var _ ports.Notifier = (*Notifier)(nil)

func New() *Notifier {
	return &Notifier{}
}

// Add registers a sink; nil notifiers are ignored.
func (n *Notifier) Add(name string, notifier ports.Notifier) *Notifier {
	if notifier != nil {
		n.sinks = append(n.sinks, namedSink{name: name, notifier: notifier})
	}
	return n
}

func (n *Notifier) Len() int {
	return len(n.sinks)
}

// AsPort returns nil when no sink is registered so callers can skip
// dispatch entirely.
func (n *Notifier) AsPort() ports.Notifier {
	if n.Len() == 0 {
		return nil
	}
	return n
}

func (n *Notifier) Notify(ctx context.Context, notification domain.Notification) error {
	var errs []error
	for _, sink := range n.sinks {
		err := sink.notifier.Notify(ctx, notification)
		if err == nil {
			continue
		}

		errs = append(errs, fmt.Errorf("%s sink: %w", sink.name, err))
		if shouldStop(err) {
			break
		}
	}

	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
