package cmd

import (
	"fmt"
	"io"
	"net/http"

	identityadapter "github.com/bnema/onboarding-coordinator/internal/adapters/identity"
	notifyadapter "github.com/bnema/onboarding-coordinator/internal/adapters/notify"
	sessionrender "github.com/bnema/onboarding-coordinator/internal/adapters/render/session"
	tomlrepo "github.com/bnema/onboarding-coordinator/internal/adapters/repo/toml"
	chainstore "github.com/bnema/onboarding-coordinator/internal/adapters/secrets/chain"
	sqlitestore "github.com/bnema/onboarding-coordinator/internal/adapters/store/sqlite"
	"github.com/bnema/onboarding-coordinator/internal/application"
	"github.com/bnema/onboarding-coordinator/internal/config"
	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg       config.Config
	logger    *logging.Logger
	secrets   *chainstore.Store
	clients   *tomlrepo.ClientRepository
	archive   *tomlrepo.ReportArchive
	identity  ports.IdentityProvider
	clock     ports.Clock
	scheduler ports.Scheduler

	renderReport   func(domain.Report) (string, error)
	renderReports  func([]domain.Report) (string, error)
	renderSnapshot func(domain.Snapshot) (string, error)
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	clients, err := tomlrepo.NewClientRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire client registry: %w", err)
	}
	archive, err := tomlrepo.NewReportArchive(v)
	if err != nil {
		return nil, fmt.Errorf("wire report archive: %w", err)
	}

	secrets, err := chainstore.NewEnvFirstWithFileFallback(cfg.SecretsDir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	identity := identityadapter.NewProvider(cfg.IdentityBaseURL, secrets, cfg.IdentityTimeout)
	identity.HTTPClient = http.DefaultClient

	return &app{
		cfg:            cfg,
		logger:         logger,
		secrets:        secrets,
		clients:        clients,
		archive:        archive,
		identity:       identity,
		clock:          ports.SystemClock{},
		scheduler:      ports.SystemScheduler{},
		renderReport:   sessionrender.RenderReport,
		renderReports:  sessionrender.RenderReports,
		renderSnapshot: sessionrender.RenderSnapshot,
	}, nil
}

// openStore opens the sqlite store. Callers close it.
func (a *app) openStore() (*sqlitestore.Store, error) {
	store, err := sqlitestore.Open(a.cfg.StorePath, a.clock)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// notifier delivers through Mailgun when configured and prints otherwise.
func (a *app) notifier(fallback io.Writer) ports.Notifier {
	if a.cfg.Notify.MailEnabled() {
		return &notifyadapter.MailgunNotifier{
			BaseURL:   a.cfg.Notify.MailgunBaseURL,
			Domain:    a.cfg.Notify.MailgunDomain,
			Sender:    a.cfg.Notify.Sender,
			APIKeyRef: a.cfg.Notify.APIKeyRef,
			Secrets:   a.secrets,
		}
	}
	return notifyadapter.NewWriterNotifier(fallback)
}

func (a *app) sessionSettings() application.SessionSettings {
	return application.SessionSettings{
		ConnectionTimeout: a.cfg.Session.ConnectionTimeout,
		DiscoveryInterval: a.cfg.Session.DiscoveryInterval,
		ImportRetryDelay:  a.cfg.Session.ImportRetryDelay,
		MaxImportAttempts: a.cfg.Session.MaxImportAttempts,
		Deadline:          a.cfg.Session.Deadline,
	}
}
