package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/bnema/onboarding-coordinator/internal/ports"
)

const (
	inboxSize     = 64
	reportTimeout = 30 * time.Second
)

var ErrCoordinatorStarted = errors.New("coordinator already started")

// SessionSettings holds the region timings. Zero durations take the defaults.
type SessionSettings struct {
	ConnectionTimeout time.Duration
	DiscoveryInterval time.Duration
	ImportRetryDelay  time.Duration
	// MaxImportAttempts of zero retries failed imports forever.
	MaxImportAttempts int
	Deadline          time.Duration
}

func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		ConnectionTimeout: 10 * time.Minute,
		DiscoveryInterval: 2 * time.Second,
		ImportRetryDelay:  3 * time.Second,
		Deadline:          20 * time.Minute,
	}
}

func (s SessionSettings) withDefaults() SessionSettings {
	def := DefaultSessionSettings()
	if s.ConnectionTimeout <= 0 {
		s.ConnectionTimeout = def.ConnectionTimeout
	}
	if s.DiscoveryInterval <= 0 {
		s.DiscoveryInterval = def.DiscoveryInterval
	}
	if s.ImportRetryDelay <= 0 {
		s.ImportRetryDelay = def.ImportRetryDelay
	}
	if s.Deadline <= 0 {
		s.Deadline = def.Deadline
	}
	if s.MaxImportAttempts < 0 {
		s.MaxImportAttempts = 0
	}
	return s
}

// CoordinatorDeps are the collaborators a session drives. Lookup, Importer,
// Notifier and Scorer are required.
type CoordinatorDeps struct {
	Lookup    ports.WebhookLookup
	Importer  ports.Importer
	Notifier  ports.Notifier
	Scorer    ports.Scorer
	Reporter  *Reporter
	Scheduler ports.Scheduler
	Clock     ports.Clock
	Logger    *logging.Logger
}

type envelope struct {
	event domain.Event
	timer string
	seq   uint64
}

type armedTimer struct {
	seq    uint64
	cancel ports.CancelFunc
}

// Coordinator runs one onboarding session. Every region transition happens
// on the goroutine executing Run; collaborator calls and timers run
// elsewhere and report back through a single inbox.
type Coordinator struct {
	identity domain.SessionIdentity
	settings SessionSettings
	deps     CoordinatorDeps
	log      *logging.Logger

	connection *ConnectionRegion
	discovery  *DiscoveryRegion
	imports    *ImportRegion
	scoring    *ScoringRegion
	regions    []Region

	inbox   chan envelope
	done    chan struct{}
	started atomic.Bool

	// Owned by the Run goroutine.
	rec              *domain.SessionRecord
	timers           map[string]armedTimer
	timerSeq         uint64
	scoringRequested bool
	finished         bool
	result           error

	mu       sync.RWMutex
	snapshot domain.Snapshot
	report   *domain.Report
}

func NewCoordinator(identity domain.SessionIdentity, settings SessionSettings, deps CoordinatorDeps) (*Coordinator, error) {
	var errs []error
	if deps.Lookup == nil {
		errs = append(errs, errors.New("webhook lookup is required"))
	}
	if deps.Importer == nil {
		errs = append(errs, errors.New("importer is required"))
	}
	if deps.Notifier == nil {
		errs = append(errs, errors.New("notifier is required"))
	}
	if deps.Scorer == nil {
		errs = append(errs, errors.New("scorer is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("new coordinator: %w", err)
	}

	if deps.Scheduler == nil {
		deps.Scheduler = ports.SystemScheduler{}
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.NopLogger()
	}
	if deps.Reporter == nil {
		deps.Reporter = NewReporter(deps.Notifier, nil, "", deps.Logger)
	}
	settings = settings.withDefaults()

	startedAt := identity.StartedAt
	if startedAt.IsZero() {
		startedAt = deps.Clock.Now()
	}
	sessionID := identity.SessionID
	if sessionID == "" {
		sessionID = domain.NewSessionID(identity.Client.ClientID, identity.MemberID())
	}

	c := &Coordinator{
		identity:   identity,
		settings:   settings,
		deps:       deps,
		log:        deps.Logger.WithSession(string(sessionID)),
		connection: NewConnectionRegion(settings.ConnectionTimeout),
		discovery:  NewDiscoveryRegion(settings.DiscoveryInterval),
		imports:    NewImportRegion(settings.ImportRetryDelay, settings.MaxImportAttempts),
		scoring:    NewScoringRegion(),
		inbox:      make(chan envelope, inboxSize),
		done:       make(chan struct{}),
		rec:        domain.NewSessionRecord(sessionID, identity.Client.ClientID, identity.MemberID(), startedAt),
		timers:     map[string]armedTimer{},
	}
	// Transitions triggered by one event apply in this order.
	c.regions = []Region{c.connection, c.discovery, c.imports, c.scoring}
	c.publish()
	return c, nil
}

func (c *Coordinator) SessionID() domain.SessionID {
	return c.rec.ID
}

// Done is closed once the session has finished, successfully or not.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Snapshot returns the state published after the most recent event.
func (c *Coordinator) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Report returns the final report once the session has finished.
func (c *Coordinator) Report() (domain.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return domain.Report{}, false
	}
	return *c.report, true
}

// Deliver queues an external event. Internal event types are rejected and
// a finished session returns domain.ErrSessionClosed.
func (c *Coordinator) Deliver(ctx context.Context, ev domain.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if !ev.Type.External() {
		return fmt.Errorf("%w: %s", domain.ErrInternalEvent, ev.Type)
	}

	select {
	case <-c.done:
		return domain.ErrSessionClosed
	default:
	}

	select {
	case c.inbox <- envelope{event: ev}:
		return nil
	case <-c.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the session until it completes or fails and returns the final
// report. Session-fatal failures come back as a *domain.FatalError alongside
// the failure report. Cancelling ctx aborts the session.
func (c *Coordinator) Run(ctx context.Context) (domain.Report, error) {
	if !c.started.CompareAndSwap(false, true) {
		return domain.Report{}, ErrCoordinatorStarted
	}

	c.log.Info("session started",
		"client_id", string(c.rec.ClientID),
		"member_id", string(c.rec.MemberID),
		"deadline", c.settings.Deadline.String(),
	)

	c.arm(timerSessionLimit, c.settings.Deadline, domain.SessionDeadlineExceeded())
	now := c.deps.Clock.Now()
	var raised []domain.Event
	for _, region := range c.regions {
		raised = append(raised, c.apply(ctx, region.Start(c.rec, now))...)
	}
	c.process(ctx, raised)

	for !c.finished {
		select {
		case <-ctx.Done():
			c.finish(ctx, domain.Fatal("session", ctx.Err()))
		case env := <-c.inbox:
			if env.timer != "" && !c.claimTimer(env) {
				continue
			}
			c.process(ctx, []domain.Event{env.event})
		}
	}

	report, _ := c.Report()
	return report, c.result
}

// process handles one inbound event plus everything it raises, then checks
// for completion.
func (c *Coordinator) process(ctx context.Context, queue []domain.Event) {
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		if ev.Type == domain.EventSessionDeadlineExceeded {
			c.log.Error("session deadline exceeded", "deadline", c.settings.Deadline.String())
			c.finish(ctx, domain.Fatal("session", domain.ErrSessionDeadlineExceeded))
			return
		}

		queue = append(queue, c.dispatch(ctx, ev)...)
		if c.scoringReady() {
			c.scoringRequested = true
			queue = append(queue, domain.Event{Type: domain.EventBeginScoring})
		}
	}

	if c.complete() {
		c.finish(ctx, nil)
		return
	}
	c.publish()
}

func (c *Coordinator) dispatch(ctx context.Context, ev domain.Event) []domain.Event {
	c.logEvent(ev)
	now := c.deps.Clock.Now()

	var raised []domain.Event
	for _, region := range c.regions {
		before := region.State()
		effects := region.Handle(c.rec, ev, now)
		if after := region.State(); after != before {
			c.log.Debug("region transition", "region", region.Name(), "from", before, "to", after, "event", ev.String())
		}
		raised = append(raised, c.apply(ctx, effects)...)
	}

	if err := c.rec.CheckInvariants(); err != nil {
		c.log.Error("session invariant violated", "event", ev.String(), "error", err.Error())
	}
	return raised
}

// scoringReady is the cross-region guard for BEGIN_SCORING: an import cycle
// has completed or linking is closed, and nothing is left to discover or
// import. Until the first cycle completes, scoring waits for linking to close.
func (c *Coordinator) scoringReady() bool {
	if c.scoringRequested || !c.scoring.Idle() {
		return false
	}
	if !c.imports.Finished() && c.connection.LinkingOpen() {
		return false
	}
	if _, searching := c.discovery.Searching(); searching {
		return false
	}
	return c.rec.PendingImports.Empty() && !c.rec.HasPendingWebhooks()
}

func (c *Coordinator) complete() bool {
	for _, region := range c.regions {
		if !region.Settled(c.rec) {
			return false
		}
	}
	return true
}

func (c *Coordinator) apply(ctx context.Context, effects []Effect) []domain.Event {
	var raised []domain.Event
	for _, eff := range effects {
		switch eff.Kind {
		case EffectRaise:
			raised = append(raised, eff.Event)
		case EffectSchedule:
			c.arm(eff.Timer, eff.Delay, eff.Event)
		case EffectCancel:
			c.disarm(eff.Timer)
		case EffectLookup:
			c.lookup(ctx, eff.AccountID)
		case EffectImport:
			c.importAccount(ctx, eff.AccountID, eff.Attempt)
		case EffectNotify:
			c.notify(ctx)
		case EffectScore:
			c.score(ctx)
		default:
			c.log.Warn("unknown effect", "kind", eff.Kind.String())
		}
	}
	return raised
}

func (c *Coordinator) lookup(ctx context.Context, id domain.AccountID) {
	go func() {
		webhook, err := c.deps.Lookup.FindReady(ctx, id)
		if ctx.Err() != nil {
			return
		}
		switch {
		case err != nil:
			c.post(envelope{event: domain.WebhookSearchFailed(id, err.Error())})
		case webhook == nil:
			c.post(envelope{event: domain.WebhookNotReady(id)})
		default:
			c.post(envelope{event: domain.FoundWebhook(id, webhook.ID)})
		}
	}()
}

func (c *Coordinator) importAccount(ctx context.Context, id domain.AccountID, attempt int) {
	importCtx := domain.ImportContext{
		SessionID: c.rec.ID,
		ClientID:  c.rec.ClientID,
		MemberID:  c.rec.MemberID,
		Attempt:   attempt,
	}
	if d, ok := c.rec.Discovery(id); ok {
		importCtx.WebhookID = d.WebhookID
	}

	go func() {
		err := c.deps.Importer.Import(ctx, id, importCtx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.post(envelope{event: domain.ImportFailed(id, attempt, err.Error())})
			return
		}
		c.post(envelope{event: domain.ImportDone(id, attempt)})
	}()
}

func (c *Coordinator) notify(ctx context.Context) {
	notice := c.deps.Reporter.OnboardingNotice(c.identity, c.rec)
	go func() {
		err := c.deps.Notifier.Send(ctx, notice)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.post(envelope{event: domain.Event{Type: domain.EventNotifyFailed, Reason: err.Error()}})
			return
		}
		c.post(envelope{event: domain.Event{Type: domain.EventNotifySent}})
	}()
}

func (c *Coordinator) score(ctx context.Context) {
	identity := c.identity
	identity.SessionID = c.rec.ID
	imported := c.rec.ImportedAccounts()
	go func() {
		err := c.deps.Scorer.Score(ctx, identity, imported)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.post(envelope{event: domain.ScoringFailed(err.Error())})
			return
		}
		c.post(envelope{event: domain.ScoringComplete()})
	}()
}

func (c *Coordinator) post(env envelope) {
	select {
	case c.inbox <- env:
	case <-c.done:
	}
}

// arm replaces any timer with the same name. Fired timers carry a sequence
// number so a callback racing with its own cancellation is dropped.
func (c *Coordinator) arm(name string, delay time.Duration, ev domain.Event) {
	c.disarm(name)
	c.timerSeq++
	seq := c.timerSeq
	cancel := c.deps.Scheduler.AfterFunc(delay, func() {
		c.post(envelope{event: ev, timer: name, seq: seq})
	})
	c.timers[name] = armedTimer{seq: seq, cancel: cancel}
}

func (c *Coordinator) disarm(name string) {
	if t, ok := c.timers[name]; ok {
		t.cancel()
		delete(c.timers, name)
	}
}

func (c *Coordinator) claimTimer(env envelope) bool {
	t, ok := c.timers[env.timer]
	if !ok || t.seq != env.seq {
		return false
	}
	delete(c.timers, env.timer)
	return true
}

func (c *Coordinator) finish(ctx context.Context, cause error) {
	c.finished = true
	c.result = cause
	for name := range c.timers {
		c.disarm(name)
	}
	close(c.done)

	endedAt := c.deps.Clock.Now()
	report := c.deps.Reporter.Build(c.identity, c.rec, c.states(), c.scoring.Outcome(c.rec), cause, endedAt)
	if cause != nil {
		c.log.Error("session failed", "error", cause.Error(), "elapsed", report.Elapsed.String())
	} else {
		c.log.Info("session complete",
			"linked", len(report.Linked),
			"imported", len(report.Imported),
			"scoring", string(report.Scoring),
			"elapsed", report.Elapsed.String(),
		)
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	if err := c.deps.Reporter.Publish(sendCtx, report); err != nil {
		c.log.Warn("session report not fully delivered", "error", err.Error())
	}

	snap := snapshotOf(c.rec, c.states(), true, endedAt)
	c.mu.Lock()
	c.snapshot = snap
	c.report = &report
	c.mu.Unlock()
}

func (c *Coordinator) publish() {
	snap := snapshotOf(c.rec, c.states(), c.finished, c.deps.Clock.Now())
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
}

func (c *Coordinator) states() domain.RegionStates {
	return domain.RegionStates{
		Connection: c.connection.State(),
		Discovery:  c.discovery.State(),
		Import:     c.imports.State(),
		Scoring:    c.scoring.State(),
	}
}

func (c *Coordinator) logEvent(ev domain.Event) {
	switch ev.Type {
	case domain.EventImportFailed, domain.EventWebhookSearchFailed, domain.EventAccountLinkFailed,
		domain.EventNotifyFailed, domain.EventScoringFailed:
		c.log.Warn("session event", "event", ev.String(), "reason", ev.Reason)
	case domain.EventAccountLinked, domain.EventUserFinished, domain.EventImportDone,
		domain.EventBeginScoring, domain.EventScoringComplete, domain.EventConnectionTimeout:
		c.log.Info("session event", "event", ev.String())
	default:
		c.log.Debug("session event", "event", ev.String())
	}
}

func snapshotOf(rec *domain.SessionRecord, states domain.RegionStates, completed bool, now time.Time) domain.Snapshot {
	webhooks := make(map[domain.AccountID]domain.WebhookState, len(rec.WebhookQueue))
	for id, state := range rec.WebhookQueue {
		webhooks[id] = *state
	}
	return domain.Snapshot{
		SessionID:             rec.ID,
		States:                states,
		Onboarded:             rec.Onboarded,
		Linked:                rec.Linked.Len(),
		FailedLinks:           rec.FailedLinks.Len(),
		PendingWebhooks:       len(rec.PendingWebhooks()),
		PendingImports:        rec.PendingImports.Len(),
		Imported:              len(rec.Imports),
		ImportFailures:        len(rec.ImportFailures),
		WebhookSearchFailures: len(rec.WebhookSearchFailures),
		Errors:                len(rec.Errors),
		Webhooks:              webhooks,
		Completed:             completed,
		TakenAt:               now,
	}
}
