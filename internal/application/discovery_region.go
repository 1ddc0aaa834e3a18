package application

import (
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type DiscoveryState string

const (
	DiscoveryChecking  DiscoveryState = "Checking"
	DiscoveryIdle      DiscoveryState = "Idle"
	DiscoverySearching DiscoveryState = "Searching"
)

// DiscoveryRegion polls for the import-ready webhook of each linked account,
// one lookup at a time. Pending accounts are visited round-robin: each sweep
// looks every pending account up once, then the region idles for one
// interval before the next sweep.
type DiscoveryRegion struct {
	state    DiscoveryState
	interval time.Duration
	round    int
	visited  map[domain.AccountID]int
	current  domain.AccountID
}

func NewDiscoveryRegion(interval time.Duration) *DiscoveryRegion {
	return &DiscoveryRegion{
		state:    DiscoveryChecking,
		interval: interval,
		round:    1,
		visited:  map[domain.AccountID]int{},
	}
}

func (r *DiscoveryRegion) Name() string  { return "discovery" }
func (r *DiscoveryRegion) State() string { return string(r.state) }

// Searching returns the account whose lookup is in flight.
func (r *DiscoveryRegion) Searching() (domain.AccountID, bool) {
	return r.current, r.state == DiscoverySearching
}

func (r *DiscoveryRegion) Start(rec *domain.SessionRecord, _ time.Time) []Effect {
	return r.check(rec)
}

func (r *DiscoveryRegion) Handle(rec *domain.SessionRecord, ev domain.Event, now time.Time) []Effect {
	switch ev.Type {
	case domain.EventAccountLinked:
		if r.state == DiscoveryIdle && r.pending(rec, ev.AccountID) {
			return append([]Effect{cancelEffect(timerDiscovery)}, r.check(rec)...)
		}
	case domain.EventDiscoveryTick:
		if r.state == DiscoveryIdle {
			r.round++
			return r.check(rec)
		}
	case domain.EventWebhookFound:
		if !r.inFlight(ev.AccountID) {
			return nil
		}
		r.current = ""
		if rec.WebhookFound(ev.AccountID, ev.WebhookID, now) {
			return append([]Effect{raiseEffect(domain.WebhookAvailable(ev.AccountID))}, r.check(rec)...)
		}
		return r.check(rec)
	case domain.EventWebhookNotReady:
		if !r.inFlight(ev.AccountID) {
			return nil
		}
		r.current = ""
		rec.WebhookMissing(ev.AccountID, now)
		return r.check(rec)
	case domain.EventWebhookSearchFailed:
		rec.WebhookSearchFailed(ev.AccountID, ev.Reason, now)
		if r.inFlight(ev.AccountID) {
			r.current = ""
			return r.check(rec)
		}
	}
	return nil
}

func (r *DiscoveryRegion) Settled(rec *domain.SessionRecord) bool {
	return r.state != DiscoverySearching && !rec.HasPendingWebhooks()
}

func (r *DiscoveryRegion) inFlight(id domain.AccountID) bool {
	return r.state == DiscoverySearching && r.current == id
}

func (r *DiscoveryRegion) pending(rec *domain.SessionRecord, id domain.AccountID) bool {
	state, ok := rec.WebhookQueue[id]
	return ok && state.Status == domain.WebhookPending
}

// check picks the next pending account not yet visited this round, or idles.
func (r *DiscoveryRegion) check(rec *domain.SessionRecord) []Effect {
	r.state = DiscoveryChecking
	for _, id := range rec.PendingWebhooks() {
		if r.visited[id] >= r.round {
			continue
		}
		r.visited[id] = r.round
		r.current = id
		r.state = DiscoverySearching
		return []Effect{lookupEffect(id)}
	}

	r.state = DiscoveryIdle
	return []Effect{scheduleEffect(timerDiscovery, r.interval, domain.Event{Type: domain.EventDiscoveryTick})}
}
