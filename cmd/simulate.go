package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	notifyadapter "github.com/bnema/onboarding-coordinator/internal/adapters/notify"
	sqlitestore "github.com/bnema/onboarding-coordinator/internal/adapters/store/sqlite"
	"github.com/bnema/onboarding-coordinator/internal/application"
	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/spf13/cobra"
)

const (
	simulatedClientID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	simulatedMemberID = "auth0|simulated"
)

type simulateOptions struct {
	accounts       int
	failLookup     string
	importFailures int
	step           time.Duration
	jsonOut        bool
}

func newSimulateCmd(app *app) *cobra.Command {
	opts := simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted session against a throwaway store",
		Long:  "simulate links the requested number of accounts, delivers their historical-update webhooks one step apart and prints the resulting report. Notifications go to stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.accounts < 0 {
				return fmt.Errorf("--accounts must not be negative")
			}
			return simulateSession(cmd, app, opts)
		},
	}

	cmd.Flags().IntVar(&opts.accounts, "accounts", 3, "Number of accounts to link")
	cmd.Flags().StringVar(&opts.failLookup, "fail-lookup", "", "Account id whose webhook search fails")
	cmd.Flags().IntVar(&opts.importFailures, "import-failures", 0, "Number of import attempts that fail before imports succeed")
	cmd.Flags().DurationVar(&opts.step, "step", 150*time.Millisecond, "Delay between scripted events")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the final report as JSON")

	return cmd
}

func simulateSession(cmd *cobra.Command, app *app, opts simulateOptions) error {
	ctx := cmd.Context()

	dir, err := os.MkdirTemp("", "onboard-simulate-*")
	if err != nil {
		return fmt.Errorf("create simulation directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	store, err := sqlitestore.Open(filepath.Join(dir, "simulate.db"), app.clock)
	if err != nil {
		return fmt.Errorf("open simulation store: %w", err)
	}
	defer func() { _ = store.Close() }()

	started := app.clock.Now()
	identity := domain.SessionIdentity{
		SessionID: domain.NewSessionID(simulatedClientID, simulatedMemberID),
		Client: domain.ClientConfig{
			ClientID:    simulatedClientID,
			PartnerName: "Simulated Partner",
			Status:      domain.ClientStatusActive,
		},
		Profile:   domain.Profile{UserID: simulatedMemberID, Name: "Simulated Member"},
		StartedAt: started,
	}

	notifier := notifyadapter.NewWriterNotifier(cmd.ErrOrStderr())
	reporter := application.NewReporter(notifier, nil, "", app.logger)

	step := max(opts.step, time.Millisecond)
	coordinator, err := application.NewCoordinator(identity, application.SessionSettings{
		ConnectionTimeout: time.Duration(opts.accounts+5) * step * 4,
		DiscoveryInterval: step / 2,
		ImportRetryDelay:  step / 2,
		Deadline:          time.Duration(opts.accounts+opts.importFailures+10) * step * 10,
	}, application.CoordinatorDeps{
		Lookup:    store,
		Importer:  &flakyImporter{next: store, failures: int64(opts.importFailures)},
		Notifier:  notifier,
		Scorer:    store,
		Reporter:  reporter,
		Scheduler: app.scheduler,
		Clock:     app.clock,
		Logger:    app.logger,
	})
	if err != nil {
		return err
	}

	scriptCtx, cancelScript := context.WithCancel(ctx)
	defer cancelScript()
	go runScript(scriptCtx, store, coordinator, opts, step)

	report, runErr := coordinator.Run(ctx)
	cancelScript()

	if err := printReport(app, cmd.OutOrStdout(), report, opts.jsonOut); err != nil {
		return err
	}
	return runErr
}

// runScript plays a member linking accounts one by one while the
// aggregator delivers each account's webhooks a step later.
func runScript(ctx context.Context, store *sqlitestore.Store, sink application.EventSink, opts simulateOptions, step time.Duration) {
	pause := func() bool {
		select {
		case <-ctx.Done():
			return false
		case <-sink.Done():
			return false
		case <-time.After(step):
			return true
		}
	}

	for i := 1; i <= opts.accounts; i++ {
		id := domain.AccountID(fmt.Sprintf("acct-%d", i))
		if err := store.AddAccount(ctx, domain.LinkedAccount{ID: id, OwnerID: simulatedMemberID, InstitutionID: "ins_simulated"}); err != nil {
			return
		}
		if err := sink.Deliver(ctx, domain.AccountLinked(id)); err != nil {
			return
		}
		if !pause() {
			return
		}

		if string(id) == opts.failLookup {
			if err := sink.Deliver(ctx, domain.WebhookSearchFailed(id, "aggregator item error")); err != nil {
				return
			}
			continue
		}

		// An unrelated webhook arrives first and must be skipped by discovery.
		_, _ = store.SaveWebhook(ctx, domain.Webhook{AccountID: id, Type: domain.WebhookTypeTransactions, Code: "INITIAL_UPDATE"})
		_, _ = store.SaveWebhook(ctx, domain.Webhook{AccountID: id, Type: domain.WebhookTypeTransactions, Code: domain.WebhookCodeHistoricalUpdate})
	}

	if !pause() {
		return
	}
	_ = sink.Deliver(ctx, domain.UserFinished())
}

// flakyImporter fails the first failures calls and then delegates.
type flakyImporter struct {
	next     ports.Importer
	failures int64
	calls    atomic.Int64
}

func (f *flakyImporter) Import(ctx context.Context, id domain.AccountID, importCtx domain.ImportContext) error {
	if f.calls.Add(1) <= f.failures {
		return fmt.Errorf("simulated import failure %d for %s", importCtx.Attempt, id)
	}
	return f.next.Import(ctx, id, importCtx)
}
