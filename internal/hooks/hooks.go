// Package hooks runs external commands inside a generated project.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"shireesh.com/firenext/internal/config"
	xlog "shireesh.com/firenext/internal/log"
)

// ScriptDir is the directory of a custom template tree holding its
// pre.sh and post.sh scripts. It is never copied into the project.
const ScriptDir = ".template"

var ErrNotFound = errors.New("command not found")

type Runner struct {
	stdout   io.Writer
	stderr   io.Writer
	log      zerolog.Logger
	lookPath func(string) (string, error)
}

// New returns a Runner streaming command output to stdout and stderr. Nil
// writers discard the output.
func New(stdout, stderr io.Writer) *Runner {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Runner{
		stdout:   stdout,
		stderr:   stderr,
		log:      xlog.WithComponent("hooks"),
		lookPath: exec.LookPath,
	}
}

// LookPath reports ErrNotFound when name is not on PATH.
func (r *Runner) LookPath(name string) error {
	if _, err := r.lookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Run runs name in dir with output streamed to the runner's writers.
func (r *Runner) Run(ctx context.Context, dir, name string, args ...string) error {
	if err := r.LookPath(name); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	r.log.Info().Str("dir", dir).Str("cmd", commandLine(name, args)).Msg("running")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", commandLine(name, args), err)
	}
	return nil
}

// Output runs name in dir and returns its standard output. Standard error is
// included in the returned error.
func (r *Runner) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if err := r.LookPath(name); err != nil {
		return nil, err
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr
	r.log.Debug().Str("dir", dir).Str("cmd", commandLine(name, args)).Msg("running")
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", commandLine(name, args), err, msg)
		}
		return out, fmt.Errorf("%s: %w", commandLine(name, args), err)
	}
	return out, nil
}

// Script runs <templateDir>/.template/<name> with bash in workDir. A missing
// script is not an error.
func (r *Runner) Script(ctx context.Context, templateDir, name, workDir string) error {
	script := filepath.Join(templateDir, ScriptDir, name)
	if _, err := os.Stat(script); err != nil {
		r.log.Debug().Str("script", script).Msg("no hook script")
		return nil
	}
	abs, err := filepath.Abs(script)
	if err != nil {
		return err
	}
	return r.Run(ctx, workDir, "bash", abs)
}

// Install runs "<pm> install" in each directory.
func (r *Runner) Install(ctx context.Context, pm config.PackageManager, dirs ...string) error {
	if pm == "" {
		pm = config.NPM
	}
	for _, dir := range dirs {
		if err := r.Run(ctx, dir, string(pm), "install"); err != nil {
			return fmt.Errorf("installing dependencies in %s: %w", dir, err)
		}
	}
	return nil
}

// GitInit creates a repository in dir with an initial commit.
func (r *Runner) GitInit(ctx context.Context, dir string) error {
	steps := [][]string{
		{"init"},
		{"add", "-A"},
		{"commit", "-q", "-m", "Initial commit"},
	}
	for _, args := range steps {
		if err := r.Run(ctx, dir, "git", args...); err != nil {
			return err
		}
	}
	return nil
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
