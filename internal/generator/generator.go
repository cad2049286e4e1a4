// Package generator turns configuration options into a project tree.
//
// Each generator is a fixed list of named steps. A step renders part of the
// embedded template tree through the shared engine, gated by the options.
// Steps run in order; the first failing step stops the run.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"shireesh.com/firenext/internal/engine"
	xlog "shireesh.com/firenext/internal/log"
)

// Template tree roots.
const (
	NextJSTemplates   = "nextjs"
	FirebaseTemplates = "firebase"
	ProjectTemplates  = "project"
)

// Output directories inside the project.
const (
	FrontendDir = "frontend"
	BackendDir  = "backend"
)

type Generator interface {
	Name() string
	Generate(ctx context.Context) error
}

// Event reports the progress of a single step.
type Event struct {
	Generator string
	Step      string
	Index     int // 1-based
	Total     int
	Done      bool
	Err       error
}

type Progress func(Event)

type Option func(*settings)

type settings struct {
	progress Progress
	log      zerolog.Logger
	now      func() time.Time
}

// WithProgress reports every step start and finish to fn.
func WithProgress(fn Progress) Option {
	return func(s *settings) { s.progress = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithClock fixes the time used for timestamps in generated files.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func newSettings(opts []Option) settings {
	s := settings{
		progress: func(Event) {},
		log:      xlog.WithComponent("generator"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

type step struct {
	name string
	run  func() error
}

func runSteps(ctx context.Context, gen string, steps []step, s settings) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := Event{Generator: gen, Step: st.name, Index: i + 1, Total: len(steps)}
		s.progress(ev)
		s.log.Debug().Str("generator", gen).Str("step", st.name).Msg("step started")

		err := st.run()
		ev.Done, ev.Err = true, err
		s.progress(ev)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", gen, st.name, err)
		}
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	OutputDir string
	Stats     engine.Stats
	Written   []string
	Duration  time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files (%d rendered, %d copied), %s in %s",
		s.Stats.Files(), s.Stats.Rendered, s.Stats.Copied,
		humanize.Bytes(uint64(s.Stats.Bytes)), s.Duration.Round(time.Millisecond))
}
