package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testMemberID = "auth0|abc123"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestClientAddThenList(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"client", "add",
		"--client", testClientID,
		"--name", "Northwind",
		"--tenant", "northwind.example.com",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "saved client "+testClientID)

	stdout, _, err = executeCLI(t, home, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, testClientID+"\tNorthwind\tnorthwind.example.com\tactive")

	raw, err := os.ReadFile(filepath.Join(home, ".onboard", "clients.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Northwind")
}

func TestClientAddRejectsInvalidGUID(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(),
		"client", "add",
		"--client", "not-a-guid",
		"--name", "Northwind",
		"--tenant", "northwind.example.com",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidClientID)
}

func TestClientAddRequiresTenant(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "client", "add", "--client", testClientID, "--name", "Northwind")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"tenant\" not set")
}

func TestAccountAddThenList(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "account", "add", "--member", testMemberID, "--account", "acct-1", "--institution", "ins_1")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "account", "add", "--member", testMemberID, "--account", "acct-2", "--error", "ITEM_LOGIN_REQUIRED")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "account", "list", "--member", testMemberID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "acct-1\tins_1\tok")
	assert.Contains(t, stdout, "acct-2\t\tfailed: ITEM_LOGIN_REQUIRED")
}

func TestAccountAddRejectsMalformedMember(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "account", "add", "--member", "abc123", "--account", "acct-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMemberID)
}

func TestWebhookAddDefaultsToHistoricalUpdate(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "webhook", "add", "--account", "acct-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "for acct-1 (TRANSACTIONS/HISTORICAL_UPDATE)")
}

func TestSecretSetWritesFileStore(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "secret", "set", "--key", "identity/northwind", "--value", "s3cret")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(home, ".onboard", "secrets", "identity", "northwind"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(raw))

	_, _, err = executeCLI(t, home, "secret", "delete", "--key", "identity/northwind")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".onboard", "secrets", "identity", "northwind"))
	assert.True(t, os.IsNotExist(err))
}

func TestSecretListShowsStoredRefs(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No stored secrets.")

	_, _, err = executeCLI(t, home, "secret", "set", "--key", "Mail/API-Key", "--value", "key-123")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "secret", "set", "--key", "identity/northwind", "--value", "s3cret")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "secret", "list")
	require.NoError(t, err)
	assert.Equal(t, "identity\tidentity/northwind\nmail\tmail/api-key\n", stdout)
}

func TestSecretSetRejectsRefOutsideKeySpace(t *testing.T) {
	home := t.TempDir()

	for _, key := range []string{"northwind", "aws/root-key", "identity/../escape"} {
		_, _, err := executeCLI(t, home, "secret", "set", "--key", key, "--value", "s3cret")
		require.Error(t, err, key)
		assert.ErrorIs(t, err, domain.ErrInvalidSecretRef, key)
	}

	_, err := os.Stat(filepath.Join(home, ".onboard", "secrets"))
	assert.True(t, os.IsNotExist(err))
}

func TestReportsEmptyArchive(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "reports")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No archived sessions.")
}

func TestSimulateHappyPath(t *testing.T) {
	stdout, stderr, err := executeCLI(t, t.TempDir(), "simulate", "--accounts", "2", "--step", "20ms")
	require.NoError(t, err)

	assert.Contains(t, stdout, "outcome: succeeded")
	assert.Contains(t, stdout, "2/2")
	assert.Contains(t, stdout, "scoring: completed")
	assert.Contains(t, stderr, "Subject: Onboarding Complete")
	assert.Contains(t, stderr, "Subject: Onboarding complete for auth0|simulated")
}

func TestSimulateWithFailedLookup(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "simulate", "--accounts", "2", "--step", "20ms", "--fail-lookup", "acct-2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "1/2")
	assert.Contains(t, stdout, "acct-2 webhook_search_failed")
	assert.Contains(t, stdout, "scoring: completed")
}

func TestSimulateRetriesFailedImports(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "simulate", "--accounts", "1", "--step", "20ms", "--import-failures", "2", "--json")
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.True(t, report.Succeeded())
	assert.Equal(t, []domain.AccountID{"acct-1"}, report.Imported)
	require.Len(t, report.Accounts, 1)
	assert.Equal(t, 3, report.Accounts[0].ImportAttempts)
}

func TestSimulateWithoutAccountsSkipsScoring(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "simulate", "--accounts", "0", "--step", "20ms")
	require.NoError(t, err)
	assert.Contains(t, stdout, "scoring: skipped")
}

func TestRunUnknownClientArchivesFailureReport(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "run", "--client", testClientID, "--member", testMemberID, "--listen", "")
	require.Error(t, err)
	assert.True(t, domain.IsFatal(err))
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assert.Contains(t, stdout, "Subject: Onboarding failed for "+testMemberID)

	stdout, _, err = executeCLI(t, home, "reports", "--json")
	require.NoError(t, err)
	var reports []domain.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, domain.OutcomeFailed, reports[0].Outcome)
	assert.Contains(t, reports[0].FailureReason, "client not found")
}

func TestRunCompletesSessionFromStore(t *testing.T) {
	home := t.TempDir()
	tenant := newTenantServer(t, true)

	t.Setenv("ONBOARD_IDENTITY_BASE_URL", tenant.URL)
	t.Setenv("ONBOARD_SECRET_IDENTITY_NORTHWIND", "s3cret")
	t.Setenv("ONBOARD_WATCH_INTERVAL", "10ms")
	t.Setenv("ONBOARD_SESSION_DISCOVERY_INTERVAL", "10ms")
	t.Setenv("ONBOARD_SESSION_IMPORT_RETRY_DELAY", "10ms")

	_, _, err := executeCLI(t, home,
		"client", "add",
		"--client", testClientID,
		"--name", "Northwind",
		"--tenant", "northwind.example.com",
		"--identity-client", "m2m-northwind",
		"--identity-secret-ref", "identity/northwind",
	)
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "account", "add", "--member", testMemberID, "--account", "acct-1")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "webhook", "add", "--account", "acct-1")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "run", "--client", testClientID, "--member", testMemberID, "--listen", "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Subject: Onboarding Complete")
	assert.Contains(t, stdout, "outcome: succeeded")
	assert.Contains(t, stdout, "1/1")
	assert.Contains(t, stdout, "scoring: completed")

	stdout, _, err = executeCLI(t, home, "reports")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 1")
	assert.Contains(t, stdout, "imported 1/1")
}

func TestSnapshotRendersRemoteSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/snapshot", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Snapshot{
			SessionID: "client:" + testMemberID,
			States:    domain.RegionStates{Connection: "Connecting", Discovery: "Searching", Import: "Idle", Scoring: "Idle"},
			Linked:    2,
			Imported:  1,
		})
	}))
	t.Cleanup(server.Close)

	stdout, _, err := executeCLI(t, t.TempDir(), "snapshot", "--addr", server.URL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Onboarding Session")
	assert.Contains(t, stdout, "1/2")
	assert.Contains(t, stdout, "discovery=Searching")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "pool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"pool\"")
}

func newTenantServer(t *testing.T, onboarded bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/v2/users/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user_id":      testMemberID,
			"email":        "member@example.com",
			"app_metadata": map[string]any{"onboarding": map[string]any{"is_onboarded": onboarded}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
