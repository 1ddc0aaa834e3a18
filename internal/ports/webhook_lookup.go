package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// WebhookLookup finds the import-ready webhook of an account. A nil webhook with a nil
// error means it has not arrived yet. A returned webhook is consumed and never returned again.
type WebhookLookup interface {
	FindReady(ctx context.Context, id domain.AccountID) (*domain.Webhook, error)
}
