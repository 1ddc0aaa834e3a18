package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	envstore "github.com/bnema/onboarding-coordinator/internal/adapters/secrets/env"
	filestore "github.com/bnema/onboarding-coordinator/internal/adapters/secrets/file"
	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

// Store resolves refs from primary and then fallback. Reads fall through only
// when primary does not hold the ref; writes fall through only when primary
// is read-only.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

type refLister interface {
	Refs(ctx context.Context) ([]domain.SecretRef, error)
}

func NewStore(primary ports.SecretStore, fallback ports.SecretStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}
	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}
	return &Store{primary: primary, fallback: fallback}, nil
}

// NewEnvFirstWithFileFallback reads ONBOARD_SECRET_* variables before
// files under fileRoot. Writes always land in the file store.
func NewEnvFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(envstore.NewStore(envstore.DefaultPrefix), filestore.NewStore(fileRoot))
}

func (s *Store) Get(ctx context.Context, ref domain.SecretRef) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	value, err := s.primary.Get(ctx, ref)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, domain.ErrSecretNotFound) {
		return "", fmt.Errorf("resolve %s secret %s: %w", ref.Kind(), ref, err)
	}

	value, err = s.fallback.Get(ctx, ref)
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, domain.ErrSecretNotFound):
		return "", fmt.Errorf("resolve %s secret %s: %w", ref.Kind(), ref, domain.ErrSecretNotFound)
	default:
		return "", fmt.Errorf("resolve %s secret %s from fallback: %w", ref.Kind(), ref, err)
	}
}

func (s *Store) Put(ctx context.Context, ref domain.SecretRef, value string) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	err := s.primary.Put(ctx, ref, value)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrSecretReadOnly) {
		return fmt.Errorf("store secret %s: %w", ref, err)
	}

	if err := s.fallback.Put(ctx, ref, value); err != nil {
		return fmt.Errorf("store secret %s: %w", ref, err)
	}
	return nil
}

// Delete removes ref from every writable store so it no longer resolves
// from either one.
func (s *Store) Delete(ctx context.Context, ref domain.SecretRef) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	var errs []error
	for _, store := range []ports.SecretStore{s.primary, s.fallback} {
		if err := store.Delete(ctx, ref); err != nil && !errors.Is(err, domain.ErrSecretReadOnly) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("delete secret %s: %w", ref, err)
	}
	return nil
}

// Refs lists the refs held by stores that can enumerate them.
func (s *Store) Refs(ctx context.Context) ([]domain.SecretRef, error) {
	seen := map[domain.SecretRef]bool{}
	refs := []domain.SecretRef{}
	for _, store := range []ports.SecretStore{s.primary, s.fallback} {
		lister, ok := store.(refLister)
		if !ok {
			continue
		}
		stored, err := lister.Refs(ctx)
		if err != nil {
			return nil, err
		}
		for _, ref := range stored {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}
