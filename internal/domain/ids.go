package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type AccountID string
type ClientID string
type MemberID string
type SessionID string

var memberIDPattern = regexp.MustCompile(`^auth0\|[a-zA-Z0-9]+$`)

// ParseClientID accepts a canonical GUID (version 1-5, RFC 4122 variant).
func ParseClientID(raw string) (ClientID, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != 36 {
		return "", fmt.Errorf("%w: %q must be a guid", ErrInvalidClientID, raw)
	}

	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q must be a guid", ErrInvalidClientID, raw)
	}
	if version := parsed.Version(); version < 1 || version > 5 {
		return "", fmt.Errorf("%w: %q has unsupported guid version %d", ErrInvalidClientID, raw, version)
	}
	if parsed.Variant() != uuid.RFC4122 {
		return "", fmt.Errorf("%w: %q is not an RFC 4122 guid", ErrInvalidClientID, raw)
	}

	return ClientID(trimmed), nil
}

// ParseMemberID accepts identity-provider ids of the form "auth0|xxxxxxxx".
func ParseMemberID(raw string) (MemberID, error) {
	trimmed := strings.TrimSpace(raw)
	if !memberIDPattern.MatchString(trimmed) {
		return "", fmt.Errorf("%w: %q must follow 'auth0|xxxxxxxx' format", ErrInvalidMemberID, raw)
	}

	return MemberID(trimmed), nil
}

func NewSessionID(client ClientID, member MemberID) SessionID {
	return SessionID(fmt.Sprintf("%s:%s", client, member))
}

func (id AccountID) Valid() bool {
	return strings.TrimSpace(string(id)) != ""
}
