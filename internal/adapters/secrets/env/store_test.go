package env

import (
	"context"
	"testing"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreVariableName(t *testing.T) {
	t.Parallel()

	store := NewStore("")
	testCases := []struct {
		ref  domain.SecretRef
		want string
	}{
		{ref: "identity/northwind", want: "ONBOARD_SECRET_IDENTITY_NORTHWIND"},
		{ref: "mail/api-key", want: "ONBOARD_SECRET_MAIL_API_KEY"},
		{ref: domain.DefaultIdentitySecretRef("0f8fad5b-d9cb-469f-a165-70867728950e"), want: "ONBOARD_SECRET_IDENTITY_0F8FAD5B_D9CB_469F_A165_70867728950E"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, store.VariableName(tc.ref), tc.ref)
	}
}

func TestStoreGetReadsEnvironment(t *testing.T) {
	t.Setenv("ONBOARD_SECRET_IDENTITY_NORTHWIND", " s3cret\n")

	value, err := NewStore("").Get(context.Background(), "identity/northwind")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
}

func TestStoreGetMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore("TEST_ONLY_")
	store.lookup = func(string) (string, bool) { return "", false }

	_, err := store.Get(context.Background(), "identity/missing")
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "TEST_ONLY_IDENTITY_MISSING")
}

func TestStoreGetRejectsUnknownRefs(t *testing.T) {
	t.Parallel()

	store := NewStore("")
	store.lookup = func(string) (string, bool) {
		t.Fatal("environment must not be consulted for an invalid ref")
		return "", false
	}

	_, err := store.Get(context.Background(), "aws/root-key")
	assert.ErrorIs(t, err, domain.ErrInvalidSecretRef)
}

func TestStoreIsReadOnly(t *testing.T) {
	t.Parallel()

	store := NewStore("")
	assert.ErrorIs(t, store.Put(context.Background(), "mail/api-key", "v"), domain.ErrSecretReadOnly)
	assert.ErrorIs(t, store.Delete(context.Background(), "mail/api-key"), domain.ErrSecretReadOnly)
}
