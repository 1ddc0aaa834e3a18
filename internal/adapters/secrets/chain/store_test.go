package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	portmocks "github.com/bnema/onboarding-coordinator/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const identityRef = domain.SecretRef("identity/northwind")

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, identityRef).Return("from-env", nil).Once()

	value, err := store.Get(context.Background(), identityRef)
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestStoreGetFallsBackWhenPrimaryMisses(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, identityRef).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, identityRef).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), identityRef)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetReportsNotFoundWhenBothMiss(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, identityRef).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, identityRef).Return("", domain.ErrSecretNotFound).Once()

	_, err := store.Get(context.Background(), identityRef)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "identity secret identity/northwind")
}

func TestStoreGetSurfacesFallbackFailures(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Get(mock.Anything, identityRef).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, identityRef).Return("", errors.New("permission denied")).Once()

	_, err := store.Get(context.Background(), identityRef)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "permission denied")
}

func TestStoreGetDoesNotFallBackOnPrimaryErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
	}{
		{name: "canceled", err: context.Canceled},
		{name: "backend failure", err: errors.New("vault sealed")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			primary := portmocks.NewMockSecretStore(t)
			fallback := portmocks.NewMockSecretStore(t)
			store := NewStore(primary, fallback)

			primary.EXPECT().Get(mock.Anything, identityRef).Return("", tc.err).Once()

			_, err := store.Get(context.Background(), identityRef)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestStoreRejectsInvalidRefsBeforeTouchingBackends(t *testing.T) {
	t.Parallel()

	store := NewStore(portmocks.NewMockSecretStore(t), portmocks.NewMockSecretStore(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "northwind")
	assert.ErrorIs(t, err, domain.ErrInvalidSecretRef)
	assert.ErrorIs(t, store.Put(ctx, "aws/key", "v"), domain.ErrInvalidSecretRef)
	assert.ErrorIs(t, store.Delete(ctx, ""), domain.ErrInvalidSecretRef)
}

func TestStorePutWritesFallbackWhenPrimaryIsReadOnly(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, identityRef, "secret").Return(domain.ErrSecretReadOnly).Once()
	fallback.EXPECT().Put(mock.Anything, identityRef, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), identityRef, "secret"))
}

func TestStorePutStopsOnPrimaryFailure(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Put(mock.Anything, identityRef, "secret").Return(errors.New("disk full")).Once()

	assert.ErrorContains(t, store.Put(context.Background(), identityRef, "secret"), "disk full")
}

func TestStoreDeleteClearsEveryWritableStore(t *testing.T) {
	t.Parallel()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store := NewStore(primary, fallback)

	primary.EXPECT().Delete(mock.Anything, identityRef).Return(domain.ErrSecretReadOnly).Once()
	fallback.EXPECT().Delete(mock.Anything, identityRef).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), identityRef))
}

func TestNewStoreCheckedRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStoreChecked(nil, portmocks.NewMockSecretStore(t))
	assert.ErrorIs(t, err, errNilPrimaryStore)
	_, err = NewStoreChecked(portmocks.NewMockSecretStore(t), nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}

func TestEnvFirstWithFileFallbackResolvesClientAndMailSecrets(t *testing.T) {
	t.Setenv("ONBOARD_SECRET_IDENTITY_NORTHWIND", "")
	t.Setenv("ONBOARD_SECRET_MAIL_API_KEY", "")
	store, err := NewEnvFirstWithFileFallback(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Get(ctx, identityRef)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)

	require.NoError(t, store.Put(ctx, identityRef, "from-file"))
	require.NoError(t, store.Put(ctx, "mail/api-key", "key-123"))
	value, err := store.Get(ctx, identityRef)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)

	refs, err := store.Refs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.SecretRef{identityRef, "mail/api-key"}, refs)

	t.Setenv("ONBOARD_SECRET_IDENTITY_NORTHWIND", "from-env")
	value, err = store.Get(ctx, identityRef)
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	require.NoError(t, store.Delete(ctx, "mail/api-key"))
	_, err = store.Get(ctx, "mail/api-key")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}
