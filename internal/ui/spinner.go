package ui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type doneMsg struct{}

type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
	done     bool
	cancel   context.CancelFunc
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting || m.done {
		return ""
	}
	return fmt.Sprintf(" %s %s\n", m.spinner.View(), lipgloss.NewStyle().Foreground(ColorCyan).Render(m.text))
}

// Interactive reports whether stdout is a terminal
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RunWithSpinner runs f while showing a spinner. Without a terminal f just runs.
// The terminal is in raw mode while the spinner is up, so Ctrl+C arrives as a
// key press; it cancels the context passed to f and waits for f to return.
func RunWithSpinner(ctx context.Context, text string, f func(ctx context.Context) error) error {
	if !Interactive() {
		return f(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorPurple)

	p := tea.NewProgram(spinnerModel{spinner: s, text: text, cancel: cancel}, tea.WithOutput(os.Stderr))

	errChan := make(chan error, 1)
	go func() {
		errChan <- f(ctx)
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errChan
		return err
	}
	return <-errChan
}
