package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{name: "version 4 guid", raw: "3f2504e0-4f89-41d3-9a0c-0305e82c3301"},
		{name: "surrounding whitespace", raw: "  3f2504e0-4f89-11d3-9a0c-0305e82c3301 "},
		{name: "empty", raw: "", wantErr: "must be a guid"},
		{name: "braced form", raw: "{3f2504e0-4f89-41d3-9a0c-0305e82c3301}", wantErr: "must be a guid"},
		{name: "nil guid", raw: "00000000-0000-0000-0000-000000000000", wantErr: "unsupported guid version 0"},
		{name: "version 6", raw: "3f2504e0-4f89-61d3-9a0c-0305e82c3301", wantErr: "unsupported guid version 6"},
		{name: "microsoft variant", raw: "3f2504e0-4f89-41d3-ca0c-0305e82c3301", wantErr: "not an RFC 4122 guid"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, err := ParseClientID(tc.raw)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, id)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidClientID)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestParseMemberID(t *testing.T) {
	t.Parallel()

	id, err := ParseMemberID("auth0|abc123")
	require.NoError(t, err)
	assert.Equal(t, MemberID("auth0|abc123"), id)

	for _, raw := range []string{"", "abc123", "google|abc", "auth0|", "auth0|abc-123"} {
		_, err := ParseMemberID(raw)
		assert.ErrorIs(t, err, ErrInvalidMemberID, raw)
	}
}

func TestNewSessionIDPairsClientAndMember(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SessionID("c-1:auth0|m1"), NewSessionID("c-1", "auth0|m1"))
}

func TestFatalErrorUnwraps(t *testing.T) {
	t.Parallel()

	err := Fatal("bootstrap", ErrClientNotFound)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.EqualError(t, err, "session aborted during bootstrap: client not found")
	assert.NoError(t, Fatal("bootstrap", nil))
	assert.False(t, IsFatal(ErrClientNotFound))
}
