package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

const DefaultPrefix = "ONBOARD_SECRET_"

// Store reads secrets from environment variables, which is how container
// deployments hand over the identity client secrets and the mail API key.
// The ref "identity/northwind" maps to ONBOARD_SECRET_IDENTITY_NORTHWIND.
type Store struct {
	prefix string
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{prefix: prefix, lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, ref domain.SecretRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ref.Validate(); err != nil {
		return "", err
	}

	name := s.VariableName(ref)
	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s secret %s not set in %s: %w", ref.Kind(), ref, name, domain.ErrSecretNotFound)
	}
	return strings.TrimSpace(value), nil
}

func (s *Store) Put(ctx context.Context, ref domain.SecretRef, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("put %s into environment: %w", ref, domain.ErrSecretReadOnly)
}

func (s *Store) Delete(ctx context.Context, ref domain.SecretRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("delete %s from environment: %w", ref, domain.ErrSecretReadOnly)
}

// VariableName returns the environment variable that holds ref.
func (s *Store) VariableName(ref domain.SecretRef) string {
	var b strings.Builder
	b.WriteString(s.prefix)
	b.WriteString(strings.ToUpper(string(ref.Kind())))
	b.WriteByte('_')
	for _, r := range strings.ToUpper(ref.Name()) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
