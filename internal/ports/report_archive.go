package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type ReportArchive interface {
	Save(ctx context.Context, report domain.Report) error
	List(ctx context.Context) ([]domain.Report, error)
}
