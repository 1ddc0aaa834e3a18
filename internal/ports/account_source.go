package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type AccountSource interface {
	ListByOwner(ctx context.Context, owner domain.MemberID) ([]domain.LinkedAccount, error)
}
