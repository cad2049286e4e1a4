package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shireesh.com/firenext/internal/engine"
	"shireesh.com/firenext/internal/generator"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModelTracksSteps(t *testing.T) {
	m := NewModel("Generating demo")

	m, _ = update(t, m, eventMsg{Generator: "nextjs", Step: "config files", Index: 2, Total: 12})
	assert.Contains(t, m.View(), "config files")
	assert.NotContains(t, m.View(), "✓")

	m, _ = update(t, m, eventMsg{Generator: "nextjs", Step: "config files", Index: 2, Total: 12, Done: true})
	assert.Contains(t, m.View(), "✓")
	assert.Contains(t, m.View(), "[2/12]")

	// Wrapper steps are not listed.
	m, _ = update(t, m, eventMsg{Generator: "project", Step: "frontend", Index: 2, Total: 6, Done: true})
	assert.Len(t, m.lines, 1)

	m, _ = update(t, m, eventMsg{Generator: "firebase", Step: "firestore", Index: 4, Total: 7, Done: true, Err: errors.New("boom")})
	assert.Contains(t, m.View(), "✗")
}

func TestModelFinishes(t *testing.T) {
	m := NewModel("Generating demo")
	summary := generator.Summary{Stats: engine.Stats{Rendered: 3, Copied: 1, Bytes: 2048}}

	m, cmd := update(t, m, finishedMsg{summary: summary})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Contains(t, m.View(), "4 files")

	m = NewModel("Generating demo")
	m, _ = update(t, m, finishedMsg{err: errors.New("nextjs: hooks: boom")})
	assert.Contains(t, m.View(), "nextjs: hooks: boom")
}

func TestModelQuitOnCtrlC(t *testing.T) {
	m, cmd := update(t, NewModel("x"), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.True(t, m.cancelled)
	assert.Contains(t, m.View(), "cancelled")
}
