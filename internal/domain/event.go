package domain

import (
	"fmt"
	"strings"
)

type EventType string

const (
	EventAccountLinked           EventType = "ACCOUNT_LINKED"
	EventAccountLinkFailed       EventType = "ACCOUNT_LINK_FAILED"
	EventUserFinished            EventType = "USER_FINISHED"
	EventSessionDeadlineExceeded EventType = "SESSION_DEADLINE_EXCEEDED"
	EventWebhookSearchFailed     EventType = "WEBHOOK_SEARCH_FAILED"
	EventWebhookAvailable        EventType = "WEBHOOK_AVAILABLE"
	EventImportDone              EventType = "IMPORT_DONE"
	EventImportFailed            EventType = "IMPORT_FAILED"
	EventAllImportsComplete      EventType = "ALL_IMPORTS_COMPLETE"
	EventBeginScoring            EventType = "BEGIN_SCORING"
	EventScoringComplete         EventType = "SCORING_COMPLETE"
	EventScoringFailed           EventType = "SCORING_FAILED"

	// Timer and collaborator completions; never accepted from outside.
	EventConnectionTimeout EventType = "CONNECTION_TIMEOUT"
	EventNotifySent        EventType = "NOTIFY_SENT"
	EventNotifyFailed      EventType = "NOTIFY_FAILED"
	EventWebhookFound      EventType = "WEBHOOK_FOUND"
	EventWebhookNotReady   EventType = "WEBHOOK_NOT_READY"
	EventDiscoveryTick     EventType = "DISCOVERY_TICK"
	EventImportRetry       EventType = "IMPORT_RETRY"
)

type eventRule struct {
	external       bool
	requireAccount bool
	requireAttempt bool
}

var eventRules = map[EventType]eventRule{
	EventAccountLinked:           {external: true, requireAccount: true},
	EventAccountLinkFailed:       {external: true, requireAccount: true},
	EventUserFinished:            {external: true},
	EventSessionDeadlineExceeded: {},
	EventWebhookSearchFailed:     {external: true, requireAccount: true},
	EventWebhookAvailable:        {requireAccount: true},
	EventImportDone:              {requireAccount: true, requireAttempt: true},
	EventImportFailed:            {external: true, requireAccount: true, requireAttempt: true},
	EventAllImportsComplete:      {},
	EventBeginScoring:            {},
	EventScoringComplete:         {external: true},
	EventScoringFailed:           {external: true},
	EventConnectionTimeout:       {},
	EventNotifySent:              {},
	EventNotifyFailed:            {},
	EventWebhookFound:            {requireAccount: true},
	EventWebhookNotReady:         {requireAccount: true},
	EventDiscoveryTick:           {},
	EventImportRetry:             {requireAccount: true},
}

// Event is the closed set of inputs a session reacts to.
type Event struct {
	Type      EventType `json:"type"`
	AccountID AccountID `json:"account_id,omitempty"`
	WebhookID string    `json:"webhook_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	// Attempt is the import attempt an IMPORT_DONE or IMPORT_FAILED reports on,
	// as handed to the importer in ImportContext.Attempt.
	Attempt   int       `json:"attempt,omitempty"`
}

func (e Event) String() string {
	if e.AccountID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s{%s}", e.Type, e.AccountID)
}

// Validate checks the type is known and its required fields are present.
func (e Event) Validate() error {
	rule, ok := eventRules[e.Type]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	if rule.requireAccount && strings.TrimSpace(string(e.AccountID)) == "" {
		return fmt.Errorf("event %s requires an account id", e.Type)
	}
	if rule.requireAttempt && e.Attempt < 1 {
		return fmt.Errorf("event %s requires an attempt number", e.Type)
	}
	return nil
}

// External reports whether callers outside the coordinator may deliver this event type.
func (t EventType) External() bool {
	return eventRules[t].external
}

func ExternalEventTypes() []EventType {
	return []EventType{
		EventAccountLinked,
		EventAccountLinkFailed,
		EventUserFinished,
		EventWebhookSearchFailed,
		EventImportFailed,
		EventScoringComplete,
		EventScoringFailed,
	}
}

func AccountLinked(id AccountID) Event {
	return Event{Type: EventAccountLinked, AccountID: id}
}

func AccountLinkFailed(id AccountID, reason string) Event {
	return Event{Type: EventAccountLinkFailed, AccountID: id, Reason: reason}
}

func UserFinished() Event {
	return Event{Type: EventUserFinished}
}

func SessionDeadlineExceeded() Event {
	return Event{Type: EventSessionDeadlineExceeded}
}

func WebhookSearchFailed(id AccountID, reason string) Event {
	return Event{Type: EventWebhookSearchFailed, AccountID: id, Reason: reason}
}

func FoundWebhook(id AccountID, webhookID string) Event {
	return Event{Type: EventWebhookFound, AccountID: id, WebhookID: webhookID}
}

func WebhookNotReady(id AccountID) Event {
	return Event{Type: EventWebhookNotReady, AccountID: id}
}

func WebhookAvailable(id AccountID) Event {
	return Event{Type: EventWebhookAvailable, AccountID: id}
}

func ImportDone(id AccountID, attempt int) Event {
	return Event{Type: EventImportDone, AccountID: id, Attempt: attempt}
}

func ImportFailed(id AccountID, attempt int, reason string) Event {
	return Event{Type: EventImportFailed, AccountID: id, Attempt: attempt, Reason: reason}
}

func ScoringComplete() Event {
	return Event{Type: EventScoringComplete}
}

func ScoringFailed(reason string) Event {
	return Event{Type: EventScoringFailed, Reason: reason}
}
