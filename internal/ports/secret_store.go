package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// SecretStore holds the credentials client configs and mail settings refer
// to. Missing refs wrap domain.ErrSecretNotFound; stores that cannot be
// written wrap domain.ErrSecretReadOnly from Put and Delete.
type SecretStore interface {
	Get(ctx context.Context, ref domain.SecretRef) (string, error)
	Put(ctx context.Context, ref domain.SecretRef, value string) error
	Delete(ctx context.Context, ref domain.SecretRef) error
}
