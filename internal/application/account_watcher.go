package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

// EventSink receives externally observed session events.
type EventSink interface {
	Deliver(ctx context.Context, ev domain.Event) error
	Done() <-chan struct{}
}

// AccountWatcher polls the member's linked accounts and profile and turns
// what it sees into session events.
type AccountWatcher struct {
	accounts ports.AccountSource
	profiles ports.IdentityProvider
	interval time.Duration
	logger   *logging.Logger
}

func NewAccountWatcher(accounts ports.AccountSource, profiles ports.IdentityProvider, interval time.Duration, logger *logging.Logger) *AccountWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &AccountWatcher{
		accounts: accounts,
		profiles: profiles,
		interval: interval,
		logger:   logger.WithComponent("account-watcher"),
	}
}

// Watch polls until the member finishes onboarding, the sink closes or ctx
// is cancelled. Poll errors are logged and retried on the next tick.
func (w *AccountWatcher) Watch(ctx context.Context, identity domain.SessionIdentity, sink EventSink) error {
	log := w.logger.WithSession(string(identity.SessionID))
	seen := map[domain.AccountID]bool{}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		finished, err := w.poll(ctx, identity, sink, seen)
		switch {
		case errors.Is(err, domain.ErrSessionClosed):
			return nil
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			log.Warn("account poll failed", "error", err.Error())
		case finished:
			log.Info("member finished onboarding", "linked", len(seen))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sink.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *AccountWatcher) poll(ctx context.Context, identity domain.SessionIdentity, sink EventSink, seen map[domain.AccountID]bool) (bool, error) {
	accounts, err := w.accounts.ListByOwner(ctx, identity.MemberID())
	if err != nil {
		return false, fmt.Errorf("list linked accounts: %w", err)
	}

	for _, acct := range accounts {
		if seen[acct.ID] {
			continue
		}
		ev := domain.AccountLinked(acct.ID)
		if !acct.Healthy() {
			ev = domain.AccountLinkFailed(acct.ID, acct.LinkError)
		}
		if err := sink.Deliver(ctx, ev); err != nil {
			return false, fmt.Errorf("deliver %s: %w", ev, err)
		}
		seen[acct.ID] = true
	}

	profile, err := w.profiles.Lookup(ctx, identity.Client, identity.MemberID())
	if err != nil {
		return false, fmt.Errorf("refresh member profile: %w", err)
	}
	if !profile.Onboarded {
		return false, nil
	}
	if err := sink.Deliver(ctx, domain.UserFinished()); err != nil {
		return false, fmt.Errorf("deliver %s: %w", domain.EventUserFinished, err)
	}
	return true, nil
}
