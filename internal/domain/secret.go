package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// SecretKind is the class of credential a SecretRef points at.
type SecretKind string

const (
	// SecretKindIdentity holds a tenant's machine-to-machine client secret.
	SecretKindIdentity SecretKind = "identity"
	// SecretKindMail holds the mail delivery API key.
	SecretKindMail SecretKind = "mail"
)

var secretNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// SecretRef names a credential in the secret store as "<kind>/<name>",
// e.g. "identity/northwind" or "mail/api-key".
type SecretRef string

// ParseSecretRef normalizes raw to lower case and checks its kind and name.
func ParseSecretRef(raw string) (SecretRef, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSecretRef)
	}

	kind, name, ok := strings.Cut(normalized, "/")
	if !ok {
		return "", fmt.Errorf("%w: %q is not <kind>/<name>", ErrInvalidSecretRef, raw)
	}
	switch SecretKind(kind) {
	case SecretKindIdentity, SecretKindMail:
	default:
		return "", fmt.Errorf("%w: %q has unknown kind %q", ErrInvalidSecretRef, raw, kind)
	}
	if !secretNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q has an invalid name", ErrInvalidSecretRef, raw)
	}
	return SecretRef(normalized), nil
}

// DefaultIdentitySecretRef is where a client's identity secret lives when
// its config names none.
func DefaultIdentitySecretRef(id ClientID) SecretRef {
	return SecretRef(string(SecretKindIdentity) + "/" + strings.ToLower(string(id)))
}

func (r SecretRef) Validate() error {
	parsed, err := ParseSecretRef(string(r))
	if err != nil {
		return err
	}
	if parsed != r {
		return fmt.Errorf("%w: %q is not normalized", ErrInvalidSecretRef, string(r))
	}
	return nil
}

func (r SecretRef) Kind() SecretKind {
	kind, _, _ := strings.Cut(string(r), "/")
	return SecretKind(kind)
}

func (r SecretRef) Name() string {
	_, name, _ := strings.Cut(string(r), "/")
	return name
}

func (r SecretRef) String() string {
	return string(r)
}
