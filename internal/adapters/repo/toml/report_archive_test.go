package toml

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchive(t *testing.T) *ReportArchive {
	t.Helper()

	config := viper.New()
	config.Set("archive.path", filepath.Join(t.TempDir(), "sessions.toml"))

	archive, err := NewReportArchive(config)
	require.NoError(t, err)
	return archive
}

func sampleReport(runID string) domain.Report {
	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return domain.Report{
		RunID:       runID,
		SessionID:   "0f8fad5b-d9cb-469f-a165-70867728950e:auth0|abc123",
		ClientID:    testClientA,
		MemberID:    "auth0|abc123",
		PartnerName: "Northwind Credit Union",
		Outcome:     domain.OutcomeSucceeded,
		Onboarded:   true,
		Linked:      []domain.AccountID{"acct-1", "acct-2"},
		FailedLinks: []domain.AccountID{"acct-3"},
		Accounts: []domain.AccountReport{
			{AccountID: "acct-1", Status: "imported", WebhookDelay: 4 * time.Second, WebhookAttempts: 2, ImportAttempts: 1},
			{AccountID: "acct-2", Status: "import_failed", WebhookDelay: 6 * time.Second, WebhookAttempts: 3, ImportAttempts: 3},
			{AccountID: "acct-3", Status: "link_failed"},
		},
		Imported:              []domain.AccountID{"acct-1"},
		ImportFailures:        []domain.AccountID{"acct-2"},
		WebhookSearchFailures: []domain.AccountID{},
		Scoring:               domain.ScoringCompleted,
		ScoringFailures:       []string{},
		Errors:                []string{"import failed for account acct-2: gave up"},
		States: domain.RegionStates{
			Connection: "Done",
			Discovery:  "Idle",
			Import:     "Idle",
			Scoring:    "Done",
		},
		StartedAt:        started,
		EndedAt:          started.Add(90 * time.Second),
		Elapsed:          90 * time.Second,
		ProfileFetchTime: 120 * time.Millisecond,
	}
}

func TestReportArchiveRoundTrip(t *testing.T) {
	t.Parallel()

	archive := newArchive(t)
	first := sampleReport("run-1")
	second := sampleReport("run-2")
	second.Outcome = domain.OutcomeFailed
	second.FailureReason = "session aborted during session: session deadline exceeded"

	require.NoError(t, archive.Save(context.Background(), first))
	require.NoError(t, archive.Save(context.Background(), second))

	reports, err := archive.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first, reports[0])
	assert.Equal(t, second, reports[1])
}

func TestReportArchiveSaveReplacesSameRunID(t *testing.T) {
	t.Parallel()

	archive := newArchive(t)
	report := sampleReport("run-1")
	require.NoError(t, archive.Save(context.Background(), report))

	report.Scoring = domain.ScoringFailedOut
	require.NoError(t, archive.Save(context.Background(), report))

	reports, err := archive.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.ScoringFailedOut, reports[0].Scoring)
}

func TestReportArchiveListEmpty(t *testing.T) {
	t.Parallel()

	reports, err := newArchive(t).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReportArchiveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	archive := newArchive(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, archive.Save(ctx, sampleReport("run-1")), context.Canceled)
}
