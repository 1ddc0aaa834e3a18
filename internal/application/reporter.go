package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/bnema/onboarding-coordinator/internal/logging"
	"github.com/bnema/onboarding-coordinator/internal/ports"
	"github.com/google/uuid"
)

// Account statuses used in reports.
const (
	AccountImported         = "imported"
	AccountImporting        = "importing"
	AccountImportFailed     = "import_failed"
	AccountAwaitingWebhook  = "awaiting_webhook"
	AccountWebhookSearchErr = "webhook_search_failed"
	AccountLinkFailed       = "link_failed"
)

// Reporter builds final session reports and delivers them. Delivery is
// best-effort: errors are logged and returned but never change the outcome.
type Reporter struct {
	notifier  ports.Notifier
	archive   ports.ReportArchive
	recipient string
	logger    *logging.Logger
	newRunID  func() string
}

// NewReporter wires the reporter. archive may be nil.
func NewReporter(notifier ports.Notifier, archive ports.ReportArchive, recipient string, logger *logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Reporter{
		notifier:  notifier,
		archive:   archive,
		recipient: recipient,
		logger:    logger.WithComponent("reporter"),
		newRunID:  func() string { return uuid.NewString() },
	}
}

// Build assembles the report for a session that ended at endedAt. A non-nil
// cause marks the session as failed.
func (r *Reporter) Build(identity domain.SessionIdentity, rec *domain.SessionRecord, states domain.RegionStates, scoring domain.ScoringOutcome, cause error, endedAt time.Time) domain.Report {
	report := domain.Report{
		RunID:                 r.newRunID(),
		SessionID:             rec.ID,
		ClientID:              rec.ClientID,
		MemberID:              rec.MemberID,
		PartnerName:           identity.Client.PartnerName,
		Outcome:               domain.OutcomeSucceeded,
		Onboarded:             rec.Onboarded,
		Linked:                rec.Linked.Items(),
		FailedLinks:           rec.FailedLinks.Items(),
		Accounts:              accountReports(rec),
		Imported:              rec.ImportedAccounts(),
		ImportFailures:        append([]domain.AccountID{}, rec.ImportFailures...),
		WebhookSearchFailures: append([]domain.AccountID{}, rec.WebhookSearchFailures...),
		Scoring:               scoring,
		ScoringFailures:       append([]string{}, rec.ScoringFailures...),
		Errors:                append([]string{}, rec.Errors...),
		States:                states,
		StartedAt:             rec.StartedAt,
		EndedAt:               endedAt,
		Elapsed:               endedAt.Sub(rec.StartedAt),
		ProfileFetchTime:      identity.ProfileFetchTime,
	}
	if cause != nil {
		report.Outcome = domain.OutcomeFailed
		report.FailureReason = cause.Error()
	}
	return report
}

// BootstrapFailure reports a session that never got past identity resolution.
func (r *Reporter) BootstrapFailure(client domain.ClientID, member domain.MemberID, cause error, startedAt, endedAt time.Time) domain.Report {
	report := domain.Report{
		RunID:                 r.newRunID(),
		SessionID:             domain.NewSessionID(client, member),
		ClientID:              client,
		MemberID:              member,
		Outcome:               domain.OutcomeFailed,
		Linked:                []domain.AccountID{},
		FailedLinks:           []domain.AccountID{},
		Accounts:              []domain.AccountReport{},
		Imported:              []domain.AccountID{},
		ImportFailures:        []domain.AccountID{},
		WebhookSearchFailures: []domain.AccountID{},
		Scoring:               domain.ScoringNotStarted,
		ScoringFailures:       []string{},
		Errors:                []string{},
		StartedAt:             startedAt,
		EndedAt:               endedAt,
		Elapsed:               endedAt.Sub(startedAt),
	}
	if cause != nil {
		report.FailureReason = cause.Error()
		report.Errors = append(report.Errors, cause.Error())
	}
	return report
}

// Publish sends the report and archives it.
func (r *Reporter) Publish(ctx context.Context, report domain.Report) error {
	log := r.logger.WithSession(string(report.SessionID))
	var errs []error

	if r.notifier != nil {
		if err := r.notifier.Send(ctx, ReportNotification(report, r.recipient)); err != nil {
			log.Warn("report delivery failed", "run_id", report.RunID, "error", err.Error())
			errs = append(errs, fmt.Errorf("send session report: %w", err))
		}
	}
	if r.archive != nil {
		if err := r.archive.Save(ctx, report); err != nil {
			log.Warn("report archive failed", "run_id", report.RunID, "error", err.Error())
			errs = append(errs, fmt.Errorf("archive session report: %w", err))
		}
	}

	log.Info("session report published", "run_id", report.RunID, "outcome", string(report.Outcome))
	return errors.Join(errs...)
}

// OnboardingNotice is sent when the user finishes linking.
func (r *Reporter) OnboardingNotice(identity domain.SessionIdentity, rec *domain.SessionRecord) domain.Notification {
	var body strings.Builder
	fmt.Fprintf(&body, "Member %s finished onboarding", rec.MemberID)
	if identity.Client.PartnerName != "" {
		fmt.Fprintf(&body, " with %s", identity.Client.PartnerName)
	}
	body.WriteString(".\n")
	fmt.Fprintf(&body, "Linked accounts: %d\n", rec.Linked.Len())
	fmt.Fprintf(&body, "Failed links: %d\n", rec.FailedLinks.Len())

	return domain.Notification{
		Subject:   "Onboarding Complete",
		Body:      body.String(),
		Recipient: r.recipient,
	}
}

// ReportNotification renders a report as a plain-text notification.
func ReportNotification(report domain.Report, recipient string) domain.Notification {
	subject := fmt.Sprintf("Onboarding complete for %s", report.MemberID)
	if !report.Succeeded() {
		subject = fmt.Sprintf("Onboarding failed for %s", report.MemberID)
	}
	return domain.Notification{Subject: subject, Body: ReportBody(report), Recipient: recipient}
}

func ReportBody(report domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", report.SessionID)
	if report.PartnerName != "" {
		fmt.Fprintf(&b, "Partner: %s\n", report.PartnerName)
	}
	fmt.Fprintf(&b, "Outcome: %s\n", report.Outcome)
	if report.FailureReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", report.FailureReason)
	}
	fmt.Fprintf(&b, "Onboarded: %t\n", report.Onboarded)
	fmt.Fprintf(&b, "Elapsed: %s\n", report.Elapsed.Round(time.Millisecond))
	if report.ProfileFetchTime > 0 {
		fmt.Fprintf(&b, "Profile fetch: %s\n", report.ProfileFetchTime.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Linked: %d, failed links: %d\n", len(report.Linked), len(report.FailedLinks))
	fmt.Fprintf(&b, "Imported: %d, import failures: %d, webhook search failures: %d\n",
		len(report.Imported), len(report.ImportFailures), len(report.WebhookSearchFailures))
	fmt.Fprintf(&b, "Scoring: %s\n", report.Scoring)

	if len(report.Accounts) > 0 {
		b.WriteString("\nAccounts:\n")
		for _, acct := range report.Accounts {
			fmt.Fprintf(&b, "  %s  %s", acct.AccountID, acct.Status)
			if acct.Status == AccountImported {
				fmt.Fprintf(&b, "  webhook after %s (%d lookups), %d import attempts",
					acct.WebhookDelay.Round(time.Millisecond), acct.WebhookAttempts, acct.ImportAttempts)
			}
			b.WriteString("\n")
		}
	}
	if len(report.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, msg := range report.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return b.String()
}

func accountReports(rec *domain.SessionRecord) []domain.AccountReport {
	imported := make(map[domain.AccountID]domain.ImportResult, len(rec.Imports))
	for _, imp := range rec.Imports {
		imported[imp.AccountID] = imp
	}
	abandoned := make(map[domain.AccountID]bool, len(rec.ImportFailures))
	for _, id := range rec.ImportFailures {
		abandoned[id] = true
	}

	out := make([]domain.AccountReport, 0, rec.Linked.Len()+rec.FailedLinks.Len())
	for _, id := range rec.Linked.Items() {
		acct := domain.AccountReport{AccountID: id, ImportAttempts: rec.ImportAttempts[id]}
		if d, ok := rec.Discovery(id); ok {
			acct.WebhookDelay = d.Delay()
			acct.WebhookAttempts = d.Attempts
		} else if state, ok := rec.WebhookQueue[id]; ok {
			acct.WebhookAttempts = state.Attempts
		}

		switch {
		case imported[id].AccountID != "":
			acct.Status = AccountImported
		case abandoned[id]:
			acct.Status = AccountImportFailed
		case rec.PendingImports.Has(id):
			acct.Status = AccountImporting
		case rec.WebhookQueue[id] != nil && rec.WebhookQueue[id].Status == domain.WebhookFailed:
			acct.Status = AccountWebhookSearchErr
		default:
			acct.Status = AccountAwaitingWebhook
		}
		out = append(out, acct)
	}

	for _, id := range rec.FailedLinks.Items() {
		out = append(out, domain.AccountReport{AccountID: id, Status: AccountLinkFailed})
	}
	return out
}
