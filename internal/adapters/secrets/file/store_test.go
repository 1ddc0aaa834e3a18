package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidRefs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	testCases := []struct {
		name string
		ref  domain.SecretRef
	}{
		{name: "empty", ref: ""},
		{name: "no kind", ref: "northwind"},
		{name: "unknown kind", ref: "aws/root"},
		{name: "traversal", ref: "identity/../../escape"},
		{name: "nested", ref: "mail/a/b"},
		{name: "not normalized", ref: "Identity/Northwind"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.ref, "value")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidSecretRef)
		})
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)
	ref := domain.SecretRef("identity/northwind")

	require.NoError(t, store.Put(context.Background(), ref, "top-secret"))

	got, err := store.Get(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "top-secret", got)

	info, err := os.Stat(filepath.Join(root, "identity", "northwind"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(secretFileMod), info.Mode().Perm())
}

func TestStorePutRejectsEmptyValue(t *testing.T) {
	t.Parallel()

	err := NewStore(t.TempDir()).Put(context.Background(), "mail/api-key", "  ")
	assert.ErrorContains(t, err, "value is empty")
}

func TestStoreGetTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "mail"), storeDirMode))
	require.NoError(t, os.WriteFile(filepath.Join(root, "mail", "api-key"), []byte("key-123\n"), secretFileMod))

	got, err := NewStore(root).Get(context.Background(), "mail/api-key")
	require.NoError(t, err)
	assert.Equal(t, "key-123", got)
}

func TestStoreGetMissingOrBlankIsNotFound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	_, err := store.Get(context.Background(), "identity/missing")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "identity"), storeDirMode))
	require.NoError(t, os.WriteFile(filepath.Join(root, "identity", "blank"), []byte("\n"), secretFileMod))
	_, err = store.Get(context.Background(), "identity/blank")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteIsIdempotentWhenSecretMissing(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ref := domain.SecretRef("identity/northwind")

	require.NoError(t, store.Put(context.Background(), ref, "s3cret"))
	require.NoError(t, store.Delete(context.Background(), ref))
	require.NoError(t, store.Delete(context.Background(), ref))

	_, err := store.Get(context.Background(), ref)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreRefsListsStoredSecretsByKind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(root)

	refs, err := store.Refs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)

	require.NoError(t, store.Put(context.Background(), "mail/api-key", "key"))
	require.NoError(t, store.Put(context.Background(), "identity/northwind", "a"))
	require.NoError(t, store.Put(context.Background(), "identity/contoso", "b"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "identity", "Not A Ref"), []byte("x"), secretFileMod))

	refs, err = store.Refs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.SecretRef{"identity/contoso", "identity/northwind", "mail/api-key"}, refs)
}
