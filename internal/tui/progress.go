// Package tui shows generation progress in the terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shireesh.com/firenext/internal/generator"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// eventMsg carries a generator event into the program.
type eventMsg generator.Event

type finishedMsg struct {
	summary generator.Summary
	err     error
}

type line struct {
	text string
	err  error
}

type Model struct {
	title   string
	spinner spinner.Model
	lines   []line
	current string

	finished  bool
	cancelled bool
	summary   generator.Summary
	err       error
}

func NewModel(title string) Model {
	return Model{
		title: title,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("205"))),
		),
	}
}

func (m Model) Init() tea.Cmd { return m.spinner.Tick }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.cancelled = true
			return m, tea.Quit
		}
	case eventMsg:
		label := stepLabel(generator.Event(msg))
		if !msg.Done {
			m.current = label
			return m, nil
		}
		// The project generator's frontend and backend steps only wrap
		// the nested generators, which report their own steps.
		if msg.Generator == "project" && msg.Err == nil && (msg.Step == "frontend" || msg.Step == "backend") {
			return m, nil
		}
		m.lines = append(m.lines, line{text: label, err: msg.Err})
		m.current = ""
		return m, nil
	case finishedMsg:
		m.finished = true
		m.summary, m.err = msg.summary, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for _, l := range m.lines {
		if l.err != nil {
			fmt.Fprintf(&b, "%s %s\n", failStyle.Render("✗"), l.text)
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", doneStyle.Render("✓"), l.text)
	}
	switch {
	case m.finished && m.err != nil:
		fmt.Fprintf(&b, "\n%s\n", failStyle.Render(m.err.Error()))
	case m.finished:
		fmt.Fprintf(&b, "\n%s\n", doneStyle.Render(m.summary.String()))
	case m.cancelled:
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render("cancelled"))
	case m.current != "":
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.current)
	}
	return b.String()
}

func stepLabel(e generator.Event) string {
	return fmt.Sprintf("%s %s %s", e.Generator, dimStyle.Render(fmt.Sprintf("[%d/%d]", e.Index, e.Total)), e.Step)
}

// RunFunc performs a generation run, reporting to progress.
type RunFunc func(ctx context.Context, progress generator.Progress) (generator.Summary, error)

// Run executes fn while rendering its progress to out. Quitting the view
// cancels the context passed to fn.
func Run(ctx context.Context, title string, out io.Writer, fn RunFunc) (generator.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title), tea.WithOutput(out))

	result := make(chan finishedMsg, 1)
	go func() {
		summary, err := fn(ctx, func(e generator.Event) { p.Send(eventMsg(e)) })
		res := finishedMsg{summary: summary, err: err}
		result <- res
		p.Send(res)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-result
		return generator.Summary{}, fmt.Errorf("progress view: %w", err)
	}
	cancel()
	res := <-result
	return res.summary, res.err
}
