package session

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

// RenderReport formats a final session report for the terminal.
func RenderReport(report domain.Report) (string, error) {
	return run(func(s styles) string { return reportView(report, s) })
}

// RenderReports formats archived reports as a compact list.
func RenderReports(reports []domain.Report) (string, error) {
	return run(func(s styles) string { return reportsView(reports, s) })
}

// RenderSnapshot formats a live session view.
func RenderSnapshot(snapshot domain.Snapshot) (string, error) {
	return run(func(s styles) string { return snapshotView(snapshot, s) })
}

func reportView(report domain.Report, s styles) string {
	lines := []string{
		s.title.Render("Onboarding Session Report"),
		s.header.Render(fmt.Sprintf("session: %s  run: %s", report.SessionID, report.RunID)),
		outcomeLine(report, s),
	}

	if report.PartnerName != "" {
		lines = append(lines, field(s, "partner", report.PartnerName))
	}
	lines = append(lines,
		field(s, "member", string(report.MemberID)),
		field(s, "onboarded", yesNo(report.Onboarded)),
		field(s, "elapsed", formatElapsed(report.Elapsed)),
	)
	if report.ProfileFetchTime > 0 {
		lines = append(lines, field(s, "profile fetch", formatElapsed(report.ProfileFetchTime)))
	}

	lines = append(lines, s.section.Render(importSection(report, s)))
	lines = append(lines, field(s, "scoring", string(report.Scoring)))
	lines = append(lines, field(s, "regions", statesLine(report.States)))

	if len(report.Errors) > 0 {
		errs := []string{s.warning.Render(fmt.Sprintf("errors (%d):", len(report.Errors)))}
		for _, msg := range report.Errors {
			errs = append(errs, s.detail.Render("  - "+msg))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, errs...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func outcomeLine(report domain.Report, s styles) string {
	if report.Succeeded() {
		return s.success.Render("outcome: succeeded")
	}
	line := s.failure.Render("outcome: failed")
	if report.FailureReason != "" {
		line += " " + s.detail.Render("("+report.FailureReason+")")
	}
	return line
}

func importSection(report domain.Report, s styles) string {
	linked := len(report.Linked)
	imported := len(report.Imported)

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render("imports:"),
		" ",
		renderProgressBar(imported, linked, barWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("%d/%d", imported, linked)),
	)
	parts := []string{header}

	if len(report.Accounts) == 0 {
		parts = append(parts, s.empty.Render("No accounts linked."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
	for _, acct := range report.Accounts {
		parts = append(parts, accountLine(acct, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountLine(acct domain.AccountReport, s styles) string {
	details := []string{acct.Status}
	if acct.WebhookAttempts > 0 {
		details = append(details, fmt.Sprintf("%d lookups", acct.WebhookAttempts))
	}
	if acct.WebhookDelay > 0 {
		details = append(details, "webhook after "+formatElapsed(acct.WebhookDelay))
	}
	if acct.ImportAttempts > 0 {
		details = append(details, fmt.Sprintf("%d import attempts", acct.ImportAttempts))
	}

	style := s.detail
	switch acct.Status {
	case "import_failed", "link_failed", "webhook_search_failed":
		style = s.warning
	}
	return "  " + s.label.Render(string(acct.AccountID)) + " " + style.Render(strings.Join(details, ", "))
}

func reportsView(reports []domain.Report, s styles) string {
	lines := []string{
		s.title.Render("Archived Sessions"),
		s.header.Render(fmt.Sprintf("sessions: %d", len(reports))),
	}
	if len(reports) == 0 {
		lines = append(lines, s.empty.Render("No archived sessions."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, report := range reports {
		status := s.success.Render("ok  ")
		if !report.Succeeded() {
			status = s.failure.Render("fail")
		}
		line := fmt.Sprintf("%s %s %s  imported %d/%d  scoring %s  %s",
			status,
			report.StartedAt.UTC().Format("2006-01-02 15:04"),
			s.label.Render(string(report.MemberID)),
			len(report.Imported), len(report.Linked),
			report.Scoring,
			formatElapsed(report.Elapsed),
		)
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func snapshotView(snapshot domain.Snapshot, s styles) string {
	lines := []string{
		s.title.Render("Onboarding Session"),
		s.header.Render(fmt.Sprintf("session: %s", snapshot.SessionID)),
		field(s, "regions", statesLine(snapshot.States)),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.label.Render("imports:"),
			" ",
			renderProgressBar(snapshot.Imported, snapshot.Linked, barWidth, s),
			" ",
			s.detail.Render(fmt.Sprintf("%d/%d", snapshot.Imported, snapshot.Linked)),
		),
		field(s, "waiting", fmt.Sprintf("%d webhooks, %d imports", snapshot.PendingWebhooks, snapshot.PendingImports)),
	}
	if snapshot.FailedLinks+snapshot.ImportFailures+snapshot.WebhookSearchFailures > 0 {
		lines = append(lines, s.warning.Render(fmt.Sprintf(
			"failures: %d links, %d imports, %d webhook searches",
			snapshot.FailedLinks, snapshot.ImportFailures, snapshot.WebhookSearchFailures,
		)))
	}
	if snapshot.Completed {
		lines = append(lines, s.success.Render("completed"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(s styles, label, value string) string {
	return s.label.Render(label+":") + " " + s.detail.Render(value)
}

func statesLine(states domain.RegionStates) string {
	return fmt.Sprintf("connection=%s discovery=%s import=%s scoring=%s",
		orDash(states.Connection), orDash(states.Discovery), orDash(states.Import), orDash(states.Scoring))
}

func renderProgressBar(done, total, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := 0.0
	if total > 0 {
		fraction = float64(done) / float64(total)
	}
	filled := int(math.Round(float64(width) * fraction))
	filled = max(0, min(filled, width))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func formatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
