package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// ClientRegistry returns active client configurations, or domain.ErrClientNotFound.
type ClientRegistry interface {
	Lookup(ctx context.Context, id domain.ClientID) (domain.ClientConfig, error)
}
