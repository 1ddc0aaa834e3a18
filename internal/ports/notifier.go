package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type Notifier interface {
	Send(ctx context.Context, notification domain.Notification) error
}
