package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecretRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want SecretRef
		ok   bool
	}{
		{name: "identity", raw: "identity/northwind", want: "identity/northwind", ok: true},
		{name: "mail", raw: "mail/api-key", want: "mail/api-key", ok: true},
		{name: "normalized", raw: "  Mail/API_Key ", want: "mail/api_key", ok: true},
		{name: "empty", raw: " "},
		{name: "no kind", raw: "northwind"},
		{name: "unknown kind", raw: "aws/root-key"},
		{name: "empty name", raw: "identity/"},
		{name: "nested", raw: "identity/a/b"},
		{name: "traversal", raw: "identity/../escape"},
		{name: "leading dot", raw: "mail/.hidden"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSecretRef(tc.raw)
			if !tc.ok {
				require.ErrorIs(t, err, ErrInvalidSecretRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSecretRefValidateRequiresNormalForm(t *testing.T) {
	t.Parallel()

	require.NoError(t, SecretRef("identity/northwind").Validate())
	assert.ErrorIs(t, SecretRef("Identity/Northwind").Validate(), ErrInvalidSecretRef)
	assert.ErrorIs(t, SecretRef(" mail/api-key").Validate(), ErrInvalidSecretRef)
}

func TestSecretRefParts(t *testing.T) {
	t.Parallel()

	ref := SecretRef("mail/api-key")
	assert.Equal(t, SecretKindMail, ref.Kind())
	assert.Equal(t, "api-key", ref.Name())
	assert.Equal(t, "mail/api-key", ref.String())
}

func TestClientIdentitySecretDefaultsToClientID(t *testing.T) {
	t.Parallel()

	client := ClientConfig{ClientID: "0F8FAD5B-D9CB-469F-A165-70867728950E"}
	ref := client.IdentitySecret()
	assert.Equal(t, SecretRef("identity/0f8fad5b-d9cb-469f-a165-70867728950e"), ref)
	require.NoError(t, ref.Validate())

	client.IdentitySecretRef = "identity/northwind"
	assert.Equal(t, SecretRef("identity/northwind"), client.IdentitySecret())
}
