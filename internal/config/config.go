// Package config resolves coordinator settings from onboard.toml, ONBOARD_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "onboard"
	configType = "toml"
	envPrefix  = "ONBOARD"
	homeDir    = ".onboard"
)

const (
	KeyConnectionTimeout  = "session.connection_timeout"
	KeyDiscoveryInterval  = "session.discovery_interval"
	KeyImportRetryDelay   = "session.import_retry_delay"
	KeyMaxImportAttempts  = "session.max_import_attempts"
	KeySessionDeadline    = "session.deadline"
	KeyWatchInterval      = "watch.interval"
	KeyStorePath          = "store.path"
	KeyRegistryPath       = "registry.path"
	KeyArchivePath        = "archive.path"
	KeySecretsDir         = "secrets.dir"
	KeyHTTPListen         = "http.listen"
	KeyIdentityBaseURL    = "identity.base_url"
	KeyIdentityTimeout    = "identity.timeout"
	KeyMailgunDomain      = "notify.mailgun_domain"
	KeyMailgunBaseURL     = "notify.mailgun_base_url"
	KeyNotifySender       = "notify.sender"
	KeyNotifyAPIKeyRef    = "notify.api_key_ref"
	KeyReportRecipient    = "notify.report_recipient"
	KeyLogLevel           = "log.level"
	KeyLogDir             = "log.dir"
	defaultMailgunBaseURL = "https://api.mailgun.net"
)

type Session struct {
	ConnectionTimeout time.Duration
	DiscoveryInterval time.Duration
	ImportRetryDelay  time.Duration
	// MaxImportAttempts of zero retries failed imports forever.
	MaxImportAttempts int
	Deadline          time.Duration
}

type Notify struct {
	MailgunDomain   string
	MailgunBaseURL  string
	Sender          string
	APIKeyRef       domain.SecretRef
	ReportRecipient string
}

// MailEnabled reports whether enough is configured to deliver through Mailgun.
func (n Notify) MailEnabled() bool {
	return n.MailgunDomain != "" && n.APIKeyRef != "" && n.Sender != ""
}

type Config struct {
	Session         Session
	WatchInterval   time.Duration
	StorePath       string
	RegistryPath    string
	ArchivePath     string
	SecretsDir      string
	HTTPListen      string
	IdentityBaseURL string
	IdentityTimeout time.Duration
	Notify          Notify
	LogLevel        string
	LogDir          string
}

// Load reads configuration into v and returns the resolved values. A nil v
// uses a fresh viper instance. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(home, homeDir)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	v.AddConfigPath(base)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, base)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		Session: Session{
			ConnectionTimeout: v.GetDuration(KeyConnectionTimeout),
			DiscoveryInterval: v.GetDuration(KeyDiscoveryInterval),
			ImportRetryDelay:  v.GetDuration(KeyImportRetryDelay),
			MaxImportAttempts: v.GetInt(KeyMaxImportAttempts),
			Deadline:          v.GetDuration(KeySessionDeadline),
		},
		WatchInterval:   v.GetDuration(KeyWatchInterval),
		StorePath:       expandHome(v.GetString(KeyStorePath), home),
		RegistryPath:    expandHome(v.GetString(KeyRegistryPath), home),
		ArchivePath:     expandHome(v.GetString(KeyArchivePath), home),
		SecretsDir:      expandHome(v.GetString(KeySecretsDir), home),
		HTTPListen:      v.GetString(KeyHTTPListen),
		IdentityBaseURL: strings.TrimRight(v.GetString(KeyIdentityBaseURL), "/"),
		IdentityTimeout: v.GetDuration(KeyIdentityTimeout),
		Notify: Notify{
			MailgunDomain:   v.GetString(KeyMailgunDomain),
			MailgunBaseURL:  strings.TrimRight(v.GetString(KeyMailgunBaseURL), "/"),
			Sender:          v.GetString(KeyNotifySender),
			APIKeyRef:       domain.SecretRef(strings.ToLower(strings.TrimSpace(v.GetString(KeyNotifyAPIKeyRef)))),
			ReportRecipient: v.GetString(KeyReportRecipient),
		},
		LogLevel: v.GetString(KeyLogLevel),
		LogDir:   expandHome(v.GetString(KeyLogDir), home),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, base string) {
	v.SetDefault(KeyConnectionTimeout, 10*time.Minute)
	v.SetDefault(KeyDiscoveryInterval, 2*time.Second)
	v.SetDefault(KeyImportRetryDelay, 3*time.Second)
	v.SetDefault(KeyMaxImportAttempts, 0)
	v.SetDefault(KeySessionDeadline, 20*time.Minute)
	v.SetDefault(KeyWatchInterval, 5*time.Second)
	v.SetDefault(KeyStorePath, filepath.Join(base, "onboard.db"))
	v.SetDefault(KeyRegistryPath, filepath.Join(base, "clients.toml"))
	v.SetDefault(KeyArchivePath, filepath.Join(base, "sessions.toml"))
	v.SetDefault(KeySecretsDir, filepath.Join(base, "secrets"))
	v.SetDefault(KeyHTTPListen, "127.0.0.1:8088")
	v.SetDefault(KeyIdentityBaseURL, "")
	v.SetDefault(KeyIdentityTimeout, 15*time.Second)
	v.SetDefault(KeyMailgunDomain, "")
	v.SetDefault(KeyMailgunBaseURL, defaultMailgunBaseURL)
	v.SetDefault(KeyNotifySender, "")
	v.SetDefault(KeyNotifyAPIKeyRef, "")
	v.SetDefault(KeyReportRecipient, "")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogDir, "")
}

// Validate rejects settings the coordinator cannot run with.
func (c Config) Validate() error {
	var errs []error
	durations := []struct {
		key   string
		value time.Duration
	}{
		{KeyConnectionTimeout, c.Session.ConnectionTimeout},
		{KeyDiscoveryInterval, c.Session.DiscoveryInterval},
		{KeyImportRetryDelay, c.Session.ImportRetryDelay},
		{KeySessionDeadline, c.Session.Deadline},
		{KeyWatchInterval, c.WatchInterval},
		{KeyIdentityTimeout, c.IdentityTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.key, d.value))
		}
	}
	if c.Session.MaxImportAttempts < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyMaxImportAttempts))
	}
	paths := map[string]string{
		KeyStorePath:    c.StorePath,
		KeyRegistryPath: c.RegistryPath,
		KeyArchivePath:  c.ArchivePath,
	}
	for _, key := range []string{KeyStorePath, KeyRegistryPath, KeyArchivePath} {
		if strings.TrimSpace(paths[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is empty", key))
		}
	}
	if ref := c.Notify.APIKeyRef; ref != "" {
		if err := ref.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyNotifyAPIKeyRef, err))
		} else if ref.Kind() != domain.SecretKindMail {
			errs = append(errs, fmt.Errorf("%s must name a %s secret, got %s", KeyNotifyAPIKeyRef, domain.SecretKindMail, ref))
		}
	}
	return errors.Join(errs...)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
