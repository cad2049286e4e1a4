package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/validator"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func heading(w io.Writer, text string) {
	fmt.Fprintln(w, headingStyle.Render(text))
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render("✗"), fmt.Sprintf(format, args...))
}

// report prints validation findings, errors first.
func report(w io.Writer, res validator.Result) {
	for _, e := range res.Errors {
		failure(w, "%s", e)
	}
	for _, msg := range res.Warnings {
		warn(w, "%s", msg)
	}
}

func nextSteps(w io.Writer, dir string, opts config.Options) {
	pm := string(opts.Project.PackageManager)
	run := pm + " run"
	if pm == "" {
		pm, run = "npm", "npm run"
	}

	fmt.Fprintln(w)
	heading(w, "Next steps")
	steps := []string{
		"cd " + dir,
		"cd frontend && " + pm + " install",
		"cd backend/functions && " + pm + " install",
		"cd frontend && " + run + " dev",
	}
	if len(opts.Firebase.Environments) > 0 {
		steps = append(steps, "cd backend && ./scripts/deploy-"+opts.Firebase.Environments[0].Name+".sh")
	}
	for i, s := range steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}

	var missing []string
	for _, env := range opts.Firebase.Environments {
		if env.ProjectType == config.ProjectGenerate {
			missing = append(missing, env.ProjectID)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(w, dimStyle.Render("  Create these Firebase projects before deploying: "+strings.Join(missing, ", ")))
	}
}
