package ports

import (
	"context"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// IdentityProvider resolves member profiles, or domain.ErrProfileNotFound.
type IdentityProvider interface {
	Lookup(ctx context.Context, client domain.ClientConfig, id domain.MemberID) (domain.Profile, error)
}
