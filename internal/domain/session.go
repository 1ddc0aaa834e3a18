package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionRecord is the mutable state shared by every region of one onboarding session.
// It is owned by the coordinator's event loop and must not be touched from elsewhere.
type SessionRecord struct {
	ID        SessionID
	ClientID  ClientID
	MemberID  MemberID
	StartedAt time.Time
	Onboarded bool

	Linked      AccountSet
	FailedLinks AccountSet

	WebhookQueue map[AccountID]*WebhookState
	queueOrder   []AccountID

	PendingImports AccountSet

	Discoveries           []Discovery
	Imports               []ImportResult
	ImportAttempts        map[AccountID]int
	ImportFailures        []AccountID
	WebhookSearchFailures []AccountID
	ScoringFailures       []string
	ScoringSkipped        bool
	Errors                []string
}

type ImportResult struct {
	AccountID    AccountID     `json:"account_id"`
	Attempts     int           `json:"attempts"`
	CompletedAt  time.Time     `json:"completed_at"`
	WebhookDelay time.Duration `json:"webhook_delay"`
}

func NewSessionRecord(id SessionID, client ClientID, member MemberID, startedAt time.Time) *SessionRecord {
	return &SessionRecord{
		ID:             id,
		ClientID:       client,
		MemberID:       member,
		StartedAt:      startedAt,
		WebhookQueue:   map[AccountID]*WebhookState{},
		ImportAttempts: map[AccountID]int{},
	}
}

// LinkAccount records a successful link and queues webhook discovery for it.
// Ids already seen as linked or failed are ignored.
func (r *SessionRecord) LinkAccount(id AccountID, now time.Time) bool {
	if r.Linked.Has(id) || r.FailedLinks.Has(id) {
		return false
	}

	r.Linked.Add(id)
	r.WebhookQueue[id] = &WebhookState{Status: WebhookPending, QueuedAt: now}
	r.queueOrder = append(r.queueOrder, id)
	return true
}

func (r *SessionRecord) FailLink(id AccountID) bool {
	if r.Linked.Has(id) || r.FailedLinks.Has(id) {
		return false
	}

	return r.FailedLinks.Add(id)
}

// PendingWebhooks lists accounts still waiting for their webhook, in link order.
func (r *SessionRecord) PendingWebhooks() []AccountID {
	pending := make([]AccountID, 0, len(r.queueOrder))
	for _, id := range r.queueOrder {
		if state, ok := r.WebhookQueue[id]; ok && state.Status == WebhookPending {
			pending = append(pending, id)
		}
	}
	return pending
}

func (r *SessionRecord) HasPendingWebhooks() bool {
	for _, state := range r.WebhookQueue {
		if state.Status == WebhookPending {
			return true
		}
	}
	return false
}

// WebhookFound moves a pending account out of discovery and into the import queue.
func (r *SessionRecord) WebhookFound(id AccountID, webhookID string, now time.Time) bool {
	state, ok := r.WebhookQueue[id]
	if !ok || state.Status != WebhookPending {
		return false
	}

	foundAt := now
	state.Status = WebhookFound
	state.FoundAt = &foundAt
	state.Attempts++
	state.LastAttemptAt = now

	r.Discoveries = append(r.Discoveries, Discovery{
		AccountID: id,
		WebhookID: webhookID,
		QueuedAt:  state.QueuedAt,
		FoundAt:   foundAt,
		Attempts:  state.Attempts,
	})
	r.removeFromQueue(id)
	r.PendingImports.Add(id)
	return true
}

func (r *SessionRecord) WebhookMissing(id AccountID, now time.Time) bool {
	state, ok := r.WebhookQueue[id]
	if !ok || state.Status != WebhookPending {
		return false
	}

	state.Attempts++
	state.LastAttemptAt = now
	return true
}

// WebhookSearchFailed stops discovery for the account. The entry stays in the queue as failed.
func (r *SessionRecord) WebhookSearchFailed(id AccountID, reason string, now time.Time) bool {
	state, ok := r.WebhookQueue[id]
	if !ok || state.Status != WebhookPending {
		return false
	}

	state.Status = WebhookFailed
	state.Attempts++
	state.LastAttemptAt = now
	state.LastError = reason
	r.WebhookSearchFailures = append(r.WebhookSearchFailures, id)
	r.RecordError(fmt.Sprintf("webhook search failed for account %s: %s", id, reason))
	return true
}

func (r *SessionRecord) Discovery(id AccountID) (Discovery, bool) {
	for _, d := range r.Discoveries {
		if d.AccountID == id {
			return d, true
		}
	}
	return Discovery{}, false
}

func (r *SessionRecord) CompleteImport(id AccountID, now time.Time) bool {
	if !r.PendingImports.Remove(id) {
		return false
	}

	result := ImportResult{AccountID: id, Attempts: r.ImportAttempts[id], CompletedAt: now}
	if d, ok := r.Discovery(id); ok {
		result.WebhookDelay = d.Delay()
	}
	r.Imports = append(r.Imports, result)
	return true
}

// AbandonImport gives up on an account whose import will not be retried again.
func (r *SessionRecord) AbandonImport(id AccountID, reason string) bool {
	if !r.PendingImports.Remove(id) {
		return false
	}

	r.ImportFailures = append(r.ImportFailures, id)
	r.RecordError(fmt.Sprintf("import failed for account %s: %s", id, reason))
	return true
}

func (r *SessionRecord) RecordError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *SessionRecord) ImportedAccounts() []AccountID {
	ids := make([]AccountID, 0, len(r.Imports))
	for _, imp := range r.Imports {
		ids = append(ids, imp.AccountID)
	}
	return ids
}

// CheckInvariants verifies the cross-set rules every reachable state must satisfy.
func (r *SessionRecord) CheckInvariants() error {
	var errs []error

	for _, id := range r.Linked.Items() {
		if r.FailedLinks.Has(id) {
			errs = append(errs, fmt.Errorf("account %s is both linked and failed", id))
		}
	}
	for id, state := range r.WebhookQueue {
		if !r.Linked.Has(id) {
			errs = append(errs, fmt.Errorf("queued account %s is not linked", id))
		}
		if state.Status != WebhookFound && r.PendingImports.Has(id) {
			errs = append(errs, fmt.Errorf("account %s is both discovering and importing", id))
		}
	}
	for _, id := range r.PendingImports.Items() {
		if _, ok := r.Discovery(id); !ok {
			errs = append(errs, fmt.Errorf("pending import %s has no discovered webhook", id))
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy suitable for publishing outside the event loop.
func (r *SessionRecord) Clone() *SessionRecord {
	if r == nil {
		return nil
	}

	out := *r
	out.Linked = r.Linked.Clone()
	out.FailedLinks = r.FailedLinks.Clone()
	out.PendingImports = r.PendingImports.Clone()
	out.WebhookQueue = make(map[AccountID]*WebhookState, len(r.WebhookQueue))
	for id, state := range r.WebhookQueue {
		copied := *state
		out.WebhookQueue[id] = &copied
	}
	out.queueOrder = append([]AccountID(nil), r.queueOrder...)
	out.Discoveries = append([]Discovery(nil), r.Discoveries...)
	out.Imports = append([]ImportResult(nil), r.Imports...)
	out.ImportAttempts = make(map[AccountID]int, len(r.ImportAttempts))
	for id, n := range r.ImportAttempts {
		out.ImportAttempts[id] = n
	}
	out.ImportFailures = append([]AccountID(nil), r.ImportFailures...)
	out.WebhookSearchFailures = append([]AccountID(nil), r.WebhookSearchFailures...)
	out.ScoringFailures = append([]string(nil), r.ScoringFailures...)
	out.Errors = append([]string(nil), r.Errors...)
	return &out
}

func (r *SessionRecord) removeFromQueue(id AccountID) {
	delete(r.WebhookQueue, id)
	for i, existing := range r.queueOrder {
		if existing == id {
			r.queueOrder = append(r.queueOrder[:i:i], r.queueOrder[i+1:]...)
			return
		}
	}
}
