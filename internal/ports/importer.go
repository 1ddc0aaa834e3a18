package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// Importer imports the historical data of one account. Errors are treated as transient.
type Importer interface {
	Import(ctx context.Context, id domain.AccountID, importCtx domain.ImportContext) error
}
