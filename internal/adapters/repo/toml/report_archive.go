package toml

import (
	"context"
	"sync"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/spf13/viper"
)

const (
	archivePathKey    = "archive.path"
	archiveConfigFile = "sessions.toml"
)

// ReportArchive appends final session reports to sessions.toml.
type ReportArchive struct {
	path string
	mu   *sync.RWMutex
}

var _ ports.ReportArchive = (*ReportArchive)(nil)

func NewReportArchive(cfg *viper.Viper) (*ReportArchive, error) {
	path, err := resolvePath(cfg, archivePathKey, archiveConfigFile)
	if err != nil {
		return nil, err
	}
	return &ReportArchive{path: path, mu: lockForPath(path)}, nil
}

// Save stores the report, replacing an earlier one with the same run id.
func (a *ReportArchive) Save(ctx context.Context, report domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := a.read()
	if err != nil {
		return err
	}

	encoded := toReportSchema(report)
	replaced := false
	for i := range file.Sessions {
		if encoded.RunID != "" && file.Sessions[i].RunID == encoded.RunID {
			file.Sessions[i] = encoded
			replaced = true
			break
		}
	}
	if !replaced {
		file.Sessions = append(file.Sessions, encoded)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	file.applyDefaults()
	return writeTOML(a.path, "sessions", file)
}

// List returns archived reports oldest first.
func (a *ReportArchive) List(ctx context.Context) ([]domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, err := a.read()
	if err != nil {
		return nil, err
	}
	reports := make([]domain.Report, 0, len(file.Sessions))
	for _, entry := range file.Sessions {
		reports = append(reports, fromReportSchema(entry))
	}
	return reports, nil
}

func (a *ReportArchive) read() (sessionsFile, error) {
	var file sessionsFile
	if err := readTOML(a.path, "sessions", &file); err != nil {
		return sessionsFile{}, err
	}
	if err := file.validateVersion(); err != nil {
		return sessionsFile{}, err
	}
	file.applyDefaults()
	return file, nil
}

func toReportSchema(report domain.Report) reportSchema {
	accounts := make([]accountSchema, 0, len(report.Accounts))
	for _, acct := range report.Accounts {
		accounts = append(accounts, accountSchema{
			AccountID:       string(acct.AccountID),
			Status:          acct.Status,
			WebhookDelay:    formatDuration(acct.WebhookDelay),
			WebhookAttempts: acct.WebhookAttempts,
			ImportAttempts:  acct.ImportAttempts,
		})
	}

	return reportSchema{
		RunID:                 report.RunID,
		SessionID:             string(report.SessionID),
		ClientID:              string(report.ClientID),
		MemberID:              string(report.MemberID),
		PartnerName:           report.PartnerName,
		Outcome:               string(report.Outcome),
		FailureReason:         report.FailureReason,
		Onboarded:             report.Onboarded,
		Linked:                idStrings(report.Linked),
		FailedLinks:           idStrings(report.FailedLinks),
		Imported:              idStrings(report.Imported),
		ImportFailures:        idStrings(report.ImportFailures),
		WebhookSearchFailures: idStrings(report.WebhookSearchFailures),
		Scoring:               string(report.Scoring),
		ScoringFailures:       append([]string{}, report.ScoringFailures...),
		Errors:                append([]string{}, report.Errors...),
		States: statesSchema{
			Connection: report.States.Connection,
			Discovery:  report.States.Discovery,
			Import:     report.States.Import,
			Scoring:    report.States.Scoring,
		},
		StartedAt:        formatTime(report.StartedAt),
		EndedAt:          formatTime(report.EndedAt),
		Elapsed:          formatDuration(report.Elapsed),
		ProfileFetchTime: formatDuration(report.ProfileFetchTime),
		Accounts:         accounts,
	}
}

func fromReportSchema(entry reportSchema) domain.Report {
	accounts := make([]domain.AccountReport, 0, len(entry.Accounts))
	for _, acct := range entry.Accounts {
		accounts = append(accounts, domain.AccountReport{
			AccountID:       domain.AccountID(acct.AccountID),
			Status:          acct.Status,
			WebhookDelay:    parseDuration(acct.WebhookDelay),
			WebhookAttempts: acct.WebhookAttempts,
			ImportAttempts:  acct.ImportAttempts,
		})
	}

	return domain.Report{
		RunID:                 entry.RunID,
		SessionID:             domain.SessionID(entry.SessionID),
		ClientID:              domain.ClientID(entry.ClientID),
		MemberID:              domain.MemberID(entry.MemberID),
		PartnerName:           entry.PartnerName,
		Outcome:               domain.Outcome(entry.Outcome),
		FailureReason:         entry.FailureReason,
		Onboarded:             entry.Onboarded,
		Linked:                accountIDs(entry.Linked),
		FailedLinks:           accountIDs(entry.FailedLinks),
		Accounts:              accounts,
		Imported:              accountIDs(entry.Imported),
		ImportFailures:        accountIDs(entry.ImportFailures),
		WebhookSearchFailures: accountIDs(entry.WebhookSearchFailures),
		Scoring:               domain.ScoringOutcome(entry.Scoring),
		ScoringFailures:       append([]string{}, entry.ScoringFailures...),
		Errors:                append([]string{}, entry.Errors...),
		States: domain.RegionStates{
			Connection: entry.States.Connection,
			Discovery:  entry.States.Discovery,
			Import:     entry.States.Import,
			Scoring:    entry.States.Scoring,
		},
		StartedAt:        parseTime(entry.StartedAt),
		EndedAt:          parseTime(entry.EndedAt),
		Elapsed:          parseDuration(entry.Elapsed),
		ProfileFetchTime: parseDuration(entry.ProfileFetchTime),
	}
}

func idStrings(ids []domain.AccountID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

func accountIDs(raw []string) []domain.AccountID {
	out := make([]domain.AccountID, 0, len(raw))
	for _, id := range raw {
		out = append(out, domain.AccountID(id))
	}
	return out
}
