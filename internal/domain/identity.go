package domain

import "time"

const ClientStatusActive = "active"

// ClientConfig is the tenant configuration a session is scoped to.
type ClientConfig struct {
	ClientID      ClientID
	PartnerName   string
	PartnerBrand  string
	TenantDomain  string
	TokenAudience string
	Status        string
	// IdentityClientID and IdentitySecretRef authenticate against the tenant's identity provider.
	// The secret itself lives in the secret store.
	IdentityClientID  string
	IdentitySecretRef SecretRef
}

// IdentitySecret returns the configured secret ref or the client's default.
func (c ClientConfig) IdentitySecret() SecretRef {
	if c.IdentitySecretRef != "" {
		return c.IdentitySecretRef
	}
	return DefaultIdentitySecretRef(c.ClientID)
}

func (c ClientConfig) Active() bool {
	return c.Status == ClientStatusActive
}

type Profile struct {
	UserID    MemberID
	Email     string
	Name      string
	Onboarded bool
	CreatedAt time.Time
}

// SessionIdentity is everything bootstrap resolved before the coordinator starts.
type SessionIdentity struct {
	SessionID        SessionID
	Client           ClientConfig
	Profile          Profile
	ProfileFetchTime time.Duration
	StartedAt        time.Time
}

func (s SessionIdentity) MemberID() MemberID {
	return s.Profile.UserID
}

// LinkedAccount is an external financial account owned by a member.
type LinkedAccount struct {
	ID            AccountID
	OwnerID       MemberID
	InstitutionID string
	LinkError     string
	CreatedAt     time.Time
}

func (a LinkedAccount) Healthy() bool {
	return a.LinkError == ""
}

type Notification struct {
	Subject   string
	Body      string
	Recipient string
}

// ImportContext is handed to the importer alongside the account id.
type ImportContext struct {
	SessionID SessionID
	ClientID  ClientID
	MemberID  MemberID
	WebhookID string
	Attempt   int
}
