package domain

import "time"

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

type ScoringOutcome string

const (
	ScoringNotStarted ScoringOutcome = "not_started"
	ScoringRunning    ScoringOutcome = "running"
	ScoringCompleted  ScoringOutcome = "completed"
	ScoringSkipped    ScoringOutcome = "skipped"
	ScoringFailedOut  ScoringOutcome = "failed"
)

// RegionStates names the current sub-state of each region.
type RegionStates struct {
	Connection string `json:"connection"`
	Discovery  string `json:"discovery"`
	Import     string `json:"import"`
	Scoring    string `json:"scoring"`
}

// Snapshot is a read-only view of a running session.
type Snapshot struct {
	SessionID             SessionID                  `json:"session_id"`
	States                RegionStates               `json:"states"`
	Onboarded             bool                       `json:"onboarded"`
	Linked                int                        `json:"linked"`
	FailedLinks           int                        `json:"failed_links"`
	PendingWebhooks       int                        `json:"pending_webhooks"`
	PendingImports        int                        `json:"pending_imports"`
	Imported              int                        `json:"imported"`
	ImportFailures        int                        `json:"import_failures"`
	WebhookSearchFailures int                        `json:"webhook_search_failures"`
	Errors                int                        `json:"errors"`
	Webhooks              map[AccountID]WebhookState `json:"webhooks"`
	Completed             bool                       `json:"completed"`
	TakenAt               time.Time                  `json:"taken_at"`
}

type AccountReport struct {
	AccountID       AccountID     `json:"account_id" toml:"account_id"`
	Status          string        `json:"status" toml:"status"`
	WebhookDelay    time.Duration `json:"webhook_delay" toml:"webhook_delay"`
	WebhookAttempts uint          `json:"webhook_attempts" toml:"webhook_attempts"`
	ImportAttempts  int           `json:"import_attempts" toml:"import_attempts"`
}

// Report is emitted once, when a session finishes.
type Report struct {
	RunID                 string          `json:"run_id"`
	SessionID             SessionID       `json:"session_id"`
	ClientID              ClientID        `json:"client_id"`
	MemberID              MemberID        `json:"member_id"`
	PartnerName           string          `json:"partner_name,omitempty"`
	Outcome               Outcome         `json:"outcome"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	Onboarded             bool            `json:"onboarded"`
	Linked                []AccountID     `json:"linked"`
	FailedLinks           []AccountID     `json:"failed_links"`
	Accounts              []AccountReport `json:"accounts"`
	Imported              []AccountID     `json:"imported"`
	ImportFailures        []AccountID     `json:"import_failures"`
	WebhookSearchFailures []AccountID     `json:"webhook_search_failures"`
	Scoring               ScoringOutcome  `json:"scoring"`
	ScoringFailures       []string        `json:"scoring_failures"`
	Errors                []string        `json:"errors"`
	States                RegionStates    `json:"states"`
	StartedAt             time.Time       `json:"started_at"`
	EndedAt               time.Time       `json:"ended_at"`
	Elapsed               time.Duration   `json:"elapsed"`
	ProfileFetchTime      time.Duration   `json:"profile_fetch_time"`
}

func (r Report) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}
