package toml

import (
	"fmt"
	"time"
)

const (
	clientsSchemaVersion  = 1
	sessionsSchemaVersion = 1
)

type clientsFile struct {
	Version int            `toml:"version"`
	Clients []clientSchema `toml:"clients"`
}

func (s *clientsFile) applyDefaults() {
	if s.Version == 0 {
		s.Version = clientsSchemaVersion
	}
}

func (s clientsFile) validateVersion() error {
	if s.Version > clientsSchemaVersion {
		return fmt.Errorf("unsupported clients schema version %d (current %d)", s.Version, clientsSchemaVersion)
	}
	return nil
}

type clientSchema struct {
	ClientID          string `toml:"client_id"`
	PartnerName       string `toml:"partner_name"`
	PartnerBrand      string `toml:"partner_brand,omitempty"`
	TenantDomain      string `toml:"tenant_domain"`
	TokenAudience     string `toml:"token_audience,omitempty"`
	Status            string `toml:"status"`
	IdentityClientID  string `toml:"identity_client_id,omitempty"`
	IdentitySecretRef string `toml:"identity_secret_ref,omitempty"`
}

type sessionsFile struct {
	Version  int            `toml:"version"`
	Sessions []reportSchema `toml:"sessions"`
}

func (s *sessionsFile) applyDefaults() {
	if s.Version == 0 {
		s.Version = sessionsSchemaVersion
	}
}

func (s sessionsFile) validateVersion() error {
	if s.Version > sessionsSchemaVersion {
		return fmt.Errorf("unsupported sessions schema version %d (current %d)", s.Version, sessionsSchemaVersion)
	}
	return nil
}

type reportSchema struct {
	RunID                 string          `toml:"run_id"`
	SessionID             string          `toml:"session_id"`
	ClientID              string          `toml:"client_id"`
	MemberID              string          `toml:"member_id"`
	PartnerName           string          `toml:"partner_name,omitempty"`
	Outcome               string          `toml:"outcome"`
	FailureReason         string          `toml:"failure_reason,omitempty"`
	Onboarded             bool            `toml:"onboarded"`
	Linked                []string        `toml:"linked"`
	FailedLinks           []string        `toml:"failed_links"`
	Imported              []string        `toml:"imported"`
	ImportFailures        []string        `toml:"import_failures"`
	WebhookSearchFailures []string        `toml:"webhook_search_failures"`
	Scoring               string          `toml:"scoring"`
	ScoringFailures       []string        `toml:"scoring_failures"`
	Errors                []string        `toml:"errors"`
	States                statesSchema    `toml:"states"`
	StartedAt             string          `toml:"started_at"`
	EndedAt               string          `toml:"ended_at"`
	Elapsed               string          `toml:"elapsed"`
	ProfileFetchTime      string          `toml:"profile_fetch_time,omitempty"`
	Accounts              []accountSchema `toml:"accounts,omitempty"`
}

type statesSchema struct {
	Connection string `toml:"connection"`
	Discovery  string `toml:"discovery"`
	Import     string `toml:"import"`
	Scoring    string `toml:"scoring"`
}

type accountSchema struct {
	AccountID       string `toml:"account_id"`
	Status          string `toml:"status"`
	WebhookDelay    string `toml:"webhook_delay,omitempty"`
	WebhookAttempts uint   `toml:"webhook_attempts"`
	ImportAttempts  int    `toml:"import_attempts"`
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
