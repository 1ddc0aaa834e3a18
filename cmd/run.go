package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/onboarding-coordinator/internal/adapters/httpapi"
	"github.com/bnema/onboarding-coordinator/internal/application"
	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	clientID string
	memberID string
	listen   string
	progress bool
	noWatch  bool
	jsonOut  bool
}

func newRunCmd(app *app) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run --client <guid> --member <auth0|id>",
		Short: "Run one onboarding session until it completes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSession(ctx, app, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.clientID, "client", "", "Client GUID")
	cmd.Flags().StringVar(&opts.memberID, "member", "", "Member id (auth0|xxxxxxxx)")
	cmd.Flags().StringVar(&opts.listen, "listen", app.cfg.HTTPListen, "Event ingress listen address; empty disables it")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show a live progress spinner")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not poll the account store; rely on the HTTP ingress only")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the final report as JSON")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("member")

	return cmd
}

func runSession(ctx context.Context, app *app, opts runOptions, out io.Writer) error {
	store, err := app.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	notifier := app.notifier(out)
	reporter := application.NewReporter(notifier, app.archive, app.cfg.Notify.ReportRecipient, app.logger)
	bootstrap := application.NewBootstrapService(app.clients, app.identity, reporter, app.clock, app.logger)

	identity, err := bootstrap.Start(ctx, opts.clientID, opts.memberID)
	if err != nil {
		return err
	}

	coordinator, err := application.NewCoordinator(identity, app.sessionSettings(), application.CoordinatorDeps{
		Lookup:    store,
		Importer:  store,
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

	var (
		report domain.Report
		runErr error
	)
	wait := func(ctx context.Context) error {
		g, gCtx := errgroup.WithContext(ctx)
		sessionCtx, cancelSession := context.WithCancel(gCtx)
		defer cancelSession()

		g.Go(func() error {
			defer cancelSession()
			report, runErr = coordinator.Run(gCtx)
			return nil
		})

		if opts.listen != "" {
			handler := httpapi.NewHandler(coordinator, store, app.logger).Router()
			g.Go(func() error {
				return ignoreCanceled(httpapi.Serve(sessionCtx, opts.listen, handler))
			})
			app.logger.Info("event ingress listening", "addr", opts.listen)
		}

		if !opts.noWatch {
			watcher := application.NewAccountWatcher(store, app.identity, app.cfg.WatchInterval, app.logger)
			g.Go(func() error {
				return ignoreCanceled(watcher.Watch(sessionCtx, identity, coordinator))
			})
		}

		return g.Wait()
	}

	if opts.progress {
		err = runProgressSpinner(ctx, out, coordinator.Snapshot, wait)
	} else {
		err = wait(ctx)
	}
	if err != nil {
		return err
	}

	if err := printReport(app, out, report, opts.jsonOut); err != nil {
		return err
	}
	return runErr
}

func printReport(app *app, out io.Writer, report domain.Report, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	rendered, err := app.renderReport(report)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = fmt.Fprintln(out, rendered)
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
