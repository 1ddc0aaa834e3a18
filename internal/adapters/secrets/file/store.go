package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

const (
	storeDirMode  = 0o700
	secretFileMod = 0o600
)

var kinds = []domain.SecretKind{domain.SecretKindIdentity, domain.SecretKindMail}

// Store keeps one secret per file at <root>/<kind>/<name>, so identity
// client secrets and the mail API key sit in separate directories.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, ref domain.SecretRef, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("secret %s: value is empty", ref)
	}

	path := s.path(ref)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create %s secret directory: %w", ref.Kind(), err)
	}
	if err := os.WriteFile(path, []byte(value), secretFileMod); err != nil {
		return fmt.Errorf("write secret %s: %w", ref, err)
	}
	return nil
}

// Get returns the secret with surrounding whitespace removed, so files
// written by editors with a trailing newline still work.
func (s *Store) Get(ctx context.Context, ref domain.SecretRef) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := ref.Validate(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(ref))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s secret %s not stored under %s: %w", ref.Kind(), ref, s.root, domain.ErrSecretNotFound)
		}
		return "", fmt.Errorf("read secret %s: %w", ref, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%s secret %s is empty: %w", ref.Kind(), ref, domain.ErrSecretNotFound)
	}
	return value, nil
}

func (s *Store) Delete(ctx context.Context, ref domain.SecretRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ref.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete secret %s: %w", ref, err)
	}
	return nil
}

// Refs lists the stored refs, sorted. Files whose names are not valid refs
// are skipped.
func (s *Store) Refs(ctx context.Context) ([]domain.SecretRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := []domain.SecretRef{}
	for _, kind := range kinds {
		entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list %s secrets: %w", kind, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ref, err := domain.ParseSecretRef(string(kind) + "/" + entry.Name())
			if err != nil || string(ref) != string(kind)+"/"+entry.Name() {
				continue
			}
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs, nil
}

func (s *Store) path(ref domain.SecretRef) string {
	return filepath.Join(s.root, string(ref.Kind()), ref.Name())
}
