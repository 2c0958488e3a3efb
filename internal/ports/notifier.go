package ports

import (
	"context"

	"github.com/bnema/boardroom/internal/domain"
)

type Notifier interface {
	Notify(ctx context.Context, notification domain.Notification) error
}
