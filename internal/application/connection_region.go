package application

import (
	"fmt"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type ConnectionState string

const (
	ConnectionConnecting ConnectionState = "Connecting"
	ConnectionNotifying  ConnectionState = "Notifying"
	ConnectionDone       ConnectionState = "Done"
	ConnectionTimedOut   ConnectionState = "TimedOut"
	ConnectionFailed     ConnectionState = "Failed"
)

// ConnectionRegion accepts account links until the user finishes or the
// linking window closes.
type ConnectionRegion struct {
	state   ConnectionState
	timeout time.Duration
}

func NewConnectionRegion(timeout time.Duration) *ConnectionRegion {
	return &ConnectionRegion{state: ConnectionConnecting, timeout: timeout}
}

func (r *ConnectionRegion) Name() string  { return "connection" }
func (r *ConnectionRegion) State() string { return string(r.state) }

// LinkingOpen reports whether link events are still being recorded.
func (r *ConnectionRegion) LinkingOpen() bool {
	return r.state == ConnectionConnecting
}

func (r *ConnectionRegion) Start(_ *domain.SessionRecord, _ time.Time) []Effect {
	return []Effect{scheduleEffect(timerConnection, r.timeout, domain.Event{Type: domain.EventConnectionTimeout})}
}

func (r *ConnectionRegion) Handle(rec *domain.SessionRecord, ev domain.Event, now time.Time) []Effect {
	switch ev.Type {
	case domain.EventAccountLinked:
		if r.state == ConnectionConnecting {
			rec.LinkAccount(ev.AccountID, now)
		}
	case domain.EventAccountLinkFailed:
		if r.state == ConnectionConnecting && rec.FailLink(ev.AccountID) {
			rec.RecordError(linkFailureMessage(ev))
		}
	case domain.EventUserFinished:
		if r.state != ConnectionConnecting {
			return nil
		}
		rec.Onboarded = true
		r.state = ConnectionNotifying
		return []Effect{cancelEffect(timerConnection), notifyEffect()}
	case domain.EventConnectionTimeout:
		if r.state == ConnectionConnecting {
			r.state = ConnectionTimedOut
			rec.RecordError(fmt.Sprintf("linking timed out after %s", r.timeout))
		}
	case domain.EventNotifySent:
		if r.state == ConnectionNotifying {
			r.state = ConnectionDone
		}
	case domain.EventNotifyFailed:
		if r.state == ConnectionNotifying {
			r.state = ConnectionFailed
			rec.RecordError(fmt.Sprintf("onboarding notice failed: %s", ev.Reason))
		}
	}
	return nil
}

func (r *ConnectionRegion) Settled(_ *domain.SessionRecord) bool {
	switch r.state {
	case ConnectionDone, ConnectionTimedOut, ConnectionFailed:
		return true
	default:
		return false
	}
}

func linkFailureMessage(ev domain.Event) string {
	if ev.Reason == "" {
		return fmt.Sprintf("account %s failed to link", ev.AccountID)
	}
	return fmt.Sprintf("account %s failed to link: %s", ev.AccountID, ev.Reason)
}
