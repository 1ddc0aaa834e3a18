package domain

import "time"

type WebhookStatus string

const (
	WebhookPending WebhookStatus = "pending"
	WebhookFound   WebhookStatus = "found"
	WebhookFailed  WebhookStatus = "failed"
)

const (
	WebhookTypeTransactions            = "TRANSACTIONS"
	WebhookTypeInvestmentsTransactions = "INVESTMENTS_TRANSACTIONS"
	WebhookCodeHistoricalUpdate        = "HISTORICAL_UPDATE"
)

// WebhookState tracks discovery of the import-ready webhook for one linked account.
type WebhookState struct {
	Status        WebhookStatus `json:"status"`
	Attempts      uint          `json:"attempts"`
	QueuedAt      time.Time     `json:"queued_at"`
	LastAttemptAt time.Time     `json:"last_attempt_at,omitempty"`
	FoundAt       *time.Time    `json:"found_at,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
}

// Webhook is an aggregator notification stored in the webhook queue.
type Webhook struct {
	ID         string
	AccountID  AccountID
	Type       string
	Code       string
	ReceivedAt time.Time
	ResolvedAt time.Time
	Payload    string
}

// HistoricalUpdate reports whether the webhook unblocks the initial data import.
func (w Webhook) HistoricalUpdate() bool {
	if w.Code != WebhookCodeHistoricalUpdate {
		return false
	}
	return w.Type == WebhookTypeTransactions || w.Type == WebhookTypeInvestmentsTransactions
}

// Discovery records a webhook found for an account and how long it took to arrive.
type Discovery struct {
	AccountID AccountID `json:"account_id"`
	WebhookID string    `json:"webhook_id"`
	QueuedAt  time.Time `json:"queued_at"`
	FoundAt   time.Time `json:"found_at"`
	Attempts  uint      `json:"attempts"`
}

func (d Discovery) Delay() time.Duration {
	return d.FoundAt.Sub(d.QueuedAt)
}
