package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Session.ConnectionTimeout)
	assert.Equal(t, 2*time.Second, cfg.Session.DiscoveryInterval)
	assert.Equal(t, 3*time.Second, cfg.Session.ImportRetryDelay)
	assert.Equal(t, 0, cfg.Session.MaxImportAttempts)
	assert.Equal(t, 20*time.Minute, cfg.Session.Deadline)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, filepath.Join(home, ".onboard", "onboard.db"), cfg.StorePath)
	assert.Equal(t, filepath.Join(home, ".onboard", "clients.toml"), cfg.RegistryPath)
	assert.Equal(t, "127.0.0.1:8088", cfg.HTTPListen)
	assert.Equal(t, "https://api.mailgun.net", cfg.Notify.MailgunBaseURL)
	assert.False(t, cfg.Notify.MailEnabled())
}

func TestLoadReadsConfigFileAndEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	t.Chdir(work)

	content := `
[session]
discovery_interval = "500ms"
max_import_attempts = 4

[store]
path = "~/data/onboard.db"

[notify]
mailgun_domain = "mg.example.com"
sender = "Onboarding <noreply@example.com>"
api_key_ref = "Mail/API_Key"
`
	require.NoError(t, os.WriteFile(filepath.Join(work, "onboard.toml"), []byte(content), 0o600))
	t.Setenv("ONBOARD_SESSION_CONNECTION_TIMEOUT", "90s")
	t.Setenv("ONBOARD_HTTP_LISTEN", "0.0.0.0:9000")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Session.DiscoveryInterval)
	assert.Equal(t, 4, cfg.Session.MaxImportAttempts)
	assert.Equal(t, 90*time.Second, cfg.Session.ConnectionTimeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTPListen)
	assert.Equal(t, filepath.Join(home, "data", "onboard.db"), cfg.StorePath)
	assert.Equal(t, domain.SecretRef("mail/api_key"), cfg.Notify.APIKeyRef)
	assert.True(t, cfg.Notify.MailEnabled())
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	work := t.TempDir()
	t.Chdir(work)
	require.NoError(t, os.WriteFile(filepath.Join(work, "onboard.toml"), []byte("[session\n"), 0o600))

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Session: Session{
			ConnectionTimeout: time.Minute,
			DiscoveryInterval: time.Second,
			ImportRetryDelay:  time.Second,
			Deadline:          time.Minute,
		},
		WatchInterval:   time.Second,
		IdentityTimeout: time.Second,
		StorePath:       "a.db",
		RegistryPath:    "clients.toml",
		ArchivePath:     "sessions.toml",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero discovery interval", func(c *Config) { c.Session.DiscoveryInterval = 0 }, KeyDiscoveryInterval},
		{"negative deadline", func(c *Config) { c.Session.Deadline = -time.Second }, KeySessionDeadline},
		{"negative attempts", func(c *Config) { c.Session.MaxImportAttempts = -1 }, KeyMaxImportAttempts},
		{"empty store", func(c *Config) { c.StorePath = " " }, KeyStorePath},
		{"api key ref without kind", func(c *Config) { c.Notify.APIKeyRef = "api-key" }, KeyNotifyAPIKeyRef},
		{"api key ref of identity kind", func(c *Config) { c.Notify.APIKeyRef = "identity/northwind" }, "must name a mail secret"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
