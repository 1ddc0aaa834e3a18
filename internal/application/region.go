package application

import (
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

// Region is one sub-state machine of a session. Regions only touch the
// record while Handle runs and describe their side effects as Effects,
// which the coordinator executes.
type Region interface {
	Name() string
	State() string
	Start(rec *domain.SessionRecord, now time.Time) []Effect
	Handle(rec *domain.SessionRecord, ev domain.Event, now time.Time) []Effect
	// Settled reports whether the region has nothing left to drive on its own.
	Settled(rec *domain.SessionRecord) bool
}

type EffectKind int

const (
	EffectLookup EffectKind = iota + 1
	EffectImport
	EffectNotify
	EffectScore
	EffectSchedule
	EffectCancel
	EffectRaise
)

func (k EffectKind) String() string {
	switch k {
	case EffectLookup:
		return "lookup"
	case EffectImport:
		return "import"
	case EffectNotify:
		return "notify"
	case EffectScore:
		return "score"
	case EffectSchedule:
		return "schedule"
	case EffectCancel:
		return "cancel"
	case EffectRaise:
		return "raise"
	default:
		return "unknown"
	}
}

// Timer names. Scheduling a name that is already armed replaces it.
const (
	timerConnection   = "connection"
	timerDiscovery    = "discovery"
	timerImportRetry  = "import-retry"
	timerSessionLimit = "session-deadline"
)

type Effect struct {
	Kind      EffectKind
	AccountID domain.AccountID
	Attempt   int
	Timer     string
	Delay     time.Duration
	Event     domain.Event
}

func lookupEffect(id domain.AccountID) Effect {
	return Effect{Kind: EffectLookup, AccountID: id}
}

func importEffect(id domain.AccountID, attempt int) Effect {
	return Effect{Kind: EffectImport, AccountID: id, Attempt: attempt}
}

func notifyEffect() Effect {
	return Effect{Kind: EffectNotify}
}

func scoreEffect() Effect {
	return Effect{Kind: EffectScore}
}

func scheduleEffect(timer string, delay time.Duration, ev domain.Event) Effect {
	return Effect{Kind: EffectSchedule, Timer: timer, Delay: delay, Event: ev}
}

func cancelEffect(timer string) Effect {
	return Effect{Kind: EffectCancel, Timer: timer}
}

func raiseEffect(ev domain.Event) Effect {
	return Effect{Kind: EffectRaise, Event: ev}
}
