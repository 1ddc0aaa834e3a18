package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type Scorer interface {
	Score(ctx context.Context, identity domain.SessionIdentity, imported []domain.AccountID) error
}
