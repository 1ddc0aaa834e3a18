package application

import (
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type ImportState string

const (
	ImportIdle         ImportState = "Idle"
	ImportImporting    ImportState = "Importing"
	ImportRetrying     ImportState = "Retrying"
	ImportCheckPending ImportState = "CheckPending"
	ImportDone         ImportState = "Done"
)

// ImportRegion imports discovered accounts one at a time, retrying failures
// after a fixed delay. Done is soft-terminal: a later discovery restarts it.
type ImportRegion struct {
	state       ImportState
	retryDelay  time.Duration
	maxAttempts int
	current     domain.AccountID
}

// NewImportRegion builds the region. maxAttempts of zero retries forever.
func NewImportRegion(retryDelay time.Duration, maxAttempts int) *ImportRegion {
	return &ImportRegion{state: ImportIdle, retryDelay: retryDelay, maxAttempts: maxAttempts}
}

func (r *ImportRegion) Name() string  { return "import" }
func (r *ImportRegion) State() string { return string(r.state) }

// Current returns the account being imported or waiting for a retry.
func (r *ImportRegion) Current() domain.AccountID {
	return r.current
}

// Finished reports whether at least one import cycle has drained the queue.
func (r *ImportRegion) Finished() bool {
	return r.state == ImportDone
}

func (r *ImportRegion) Start(_ *domain.SessionRecord, _ time.Time) []Effect {
	return nil
}

func (r *ImportRegion) Handle(rec *domain.SessionRecord, ev domain.Event, now time.Time) []Effect {
	switch ev.Type {
	case domain.EventWebhookAvailable:
		if _, found := rec.Discovery(ev.AccountID); !found {
			return nil
		}
		rec.PendingImports.Add(ev.AccountID)
		if r.state == ImportIdle || r.state == ImportDone {
			return r.checkPending(rec)
		}
	case domain.EventImportDone:
		if !r.latestAttempt(rec, ev) {
			return nil
		}
		return r.completed(rec, ev.AccountID, now)
	case domain.EventImportFailed:
		if !r.latestAttempt(rec, ev) || r.state != ImportImporting {
			return nil
		}
		if r.maxAttempts > 0 && rec.ImportAttempts[ev.AccountID] >= r.maxAttempts {
			rec.AbandonImport(ev.AccountID, ev.Reason)
			r.current = ""
			return r.checkPending(rec)
		}
		r.state = ImportRetrying
		return []Effect{scheduleEffect(timerImportRetry, r.retryDelay, domain.Event{Type: domain.EventImportRetry, AccountID: ev.AccountID})}
	case domain.EventImportRetry:
		if r.state == ImportRetrying && ev.AccountID == r.current {
			return r.start(rec, ev.AccountID)
		}
	}
	return nil
}

func (r *ImportRegion) Settled(rec *domain.SessionRecord) bool {
	return (r.state == ImportDone || r.state == ImportIdle) && rec.PendingImports.Empty()
}

// latestAttempt reports whether ev is the outcome of the attempt in flight.
// Outcomes of earlier attempts arrive late and are dropped.
func (r *ImportRegion) latestAttempt(rec *domain.SessionRecord, ev domain.Event) bool {
	return r.current != "" && ev.AccountID == r.current && ev.Attempt == rec.ImportAttempts[ev.AccountID]
}

func (r *ImportRegion) completed(rec *domain.SessionRecord, id domain.AccountID, now time.Time) []Effect {
	var effects []Effect
	switch r.state {
	case ImportImporting:
	case ImportRetrying:
		effects = append(effects, cancelEffect(timerImportRetry))
	default:
		return nil
	}

	rec.CompleteImport(id, now)
	r.current = ""
	return append(effects, r.checkPending(rec)...)
}

func (r *ImportRegion) start(rec *domain.SessionRecord, id domain.AccountID) []Effect {
	r.state = ImportImporting
	r.current = id
	rec.ImportAttempts[id]++
	return []Effect{importEffect(id, rec.ImportAttempts[id])}
}

func (r *ImportRegion) checkPending(rec *domain.SessionRecord) []Effect {
	r.state = ImportCheckPending
	if !rec.PendingImports.Empty() {
		return r.start(rec, rec.PendingImports.First())
	}

	r.state = ImportDone
	return []Effect{raiseEffect(domain.Event{Type: domain.EventAllImportsComplete})}
}
