package application

import (
	"fmt"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
)

type ScoringState string

const (
	ScoringIdle    ScoringState = "Idle"
	ScoringRunning ScoringState = "Scoring"
	ScoringDone    ScoringState = "Done"
	ScoringFailed  ScoringState = "Failed"
)

// ScoringRegion runs the downstream scoring step once, after the
// coordinator raises BEGIN_SCORING. Failures are not retried.
type ScoringRegion struct {
	state ScoringState
}

func NewScoringRegion() *ScoringRegion {
	return &ScoringRegion{state: ScoringIdle}
}

func (r *ScoringRegion) Name() string  { return "scoring" }
func (r *ScoringRegion) State() string { return string(r.state) }

func (r *ScoringRegion) Idle() bool {
	return r.state == ScoringIdle
}

func (r *ScoringRegion) Start(_ *domain.SessionRecord, _ time.Time) []Effect {
	return nil
}

func (r *ScoringRegion) Handle(rec *domain.SessionRecord, ev domain.Event, _ time.Time) []Effect {
	switch ev.Type {
	case domain.EventBeginScoring:
		if r.state != ScoringIdle {
			return nil
		}
		if len(rec.Imports) == 0 {
			rec.ScoringSkipped = true
			r.state = ScoringDone
			return nil
		}
		r.state = ScoringRunning
		return []Effect{scoreEffect()}
	case domain.EventScoringComplete:
		if r.state == ScoringRunning {
			r.state = ScoringDone
		}
	case domain.EventScoringFailed:
		if r.state == ScoringRunning {
			r.state = ScoringFailed
			rec.ScoringFailures = append(rec.ScoringFailures, ev.Reason)
			rec.RecordError(fmt.Sprintf("scoring failed: %s", ev.Reason))
		}
	}
	return nil
}

func (r *ScoringRegion) Settled(_ *domain.SessionRecord) bool {
	return r.state == ScoringDone || r.state == ScoringFailed
}

// Outcome summarizes the region for the final report.
func (r *ScoringRegion) Outcome(rec *domain.SessionRecord) domain.ScoringOutcome {
	switch r.state {
	case ScoringRunning:
		return domain.ScoringRunning
	case ScoringDone:
		if rec.ScoringSkipped {
			return domain.ScoringSkipped
		}
		return domain.ScoringCompleted
	case ScoringFailed:
		return domain.ScoringFailedOut
	default:
		return domain.ScoringNotStarted
	}
}
