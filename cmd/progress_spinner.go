package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/onboarding-coordinator/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type sessionDoneMsg struct {
	err error
}

type progressSpinnerModel struct {
	spinner  spinner.Model
	snapshot func() domain.Snapshot
	label    string
	wait     tea.Cmd
	err      error
	done     bool
}

func newProgressSpinnerModel(snapshot func() domain.Snapshot, wait tea.Cmd) progressSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return progressSpinnerModel{
		spinner:  s,
		snapshot: snapshot,
		label:    progressLabel(snapshot()),
		wait:     wait,
	}
}

func (m progressSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m progressSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.label = progressLabel(m.snapshot())
		return m, cmd
	case sessionDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m progressSpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func progressLabel(s domain.Snapshot) string {
	return fmt.Sprintf("linking %s, discovery %s, imports %d/%d, scoring %s",
		s.States.Connection, s.States.Discovery, s.Imported, s.Linked, s.States.Scoring)
}

func runProgressSpinner(ctx context.Context, output io.Writer, snapshot func() domain.Snapshot, wait func(context.Context) error) error {
	waitCmd := func() tea.Msg {
		return sessionDoneMsg{err: wait(ctx)}
	}

	p := tea.NewProgram(
		newProgressSpinnerModel(snapshot, waitCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(progressSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}
	return result.err
}
