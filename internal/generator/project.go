package generator

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/go-git/go-billy/v5"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/engine"
	xlog "shireesh.com/firenext/internal/log"
)

// Project generates a complete project: the frontend and the backend, plus
// the documentation, scripts and per-environment configuration around them.
type Project struct {
	e        *engine.Engine
	opts     config.Options
	s        settings
	nextjs   *NextJS
	firebase *Firebase
	summary  Summary
}

// New prepares a run that reads templates from src and writes the project
// into out, which should be rooted at the output directory.
func New(src fs.FS, out billy.Filesystem, opts config.Options, options ...Option) (*Project, error) {
	s := newSettings(options)
	e, err := engine.New(src, out, engine.NewContext(opts, s.now()),
		engine.WithLogger(xlog.WithComponent("engine")))
	if err != nil {
		return nil, err
	}
	return &Project{
		e:        e,
		opts:     opts,
		s:        s,
		nextjs:   NewNextJS(e, opts, options...),
		firebase: NewFirebase(e, opts, options...),
		summary:  Summary{OutputDir: opts.OutputDir},
	}, nil
}

func (g *Project) Name() string { return "project" }

func (g *Project) Generate(ctx context.Context) error {
	_, err := g.Run(ctx)
	return err
}

// Run generates the project and returns what was written, including on
// failure.
func (g *Project) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	err := runSteps(ctx, g.Name(), []step{
		{"directories", g.directories},
		{"frontend", func() error { return g.nextjs.Generate(ctx) }},
		{"backend", func() error { return g.firebase.Generate(ctx) }},
		{"global config", g.globalConfig},
		{"docs", g.docs},
		{"scripts", g.scripts},
	}, g.s)

	g.summary.Stats = g.e.Stats()
	g.summary.Written = g.e.Written()
	g.summary.Duration = time.Since(start)
	g.s.log.Info().
		Int("files", g.summary.Stats.Files()).
		Int64("bytes", g.summary.Stats.Bytes).
		Dur("took", g.summary.Duration).
		Msg("generation finished")
	return g.summary, err
}

func (g *Project) Summary() Summary { return g.summary }

func projectPath(p string) string { return path.Join(ProjectTemplates, p) }

func (g *Project) directories() error {
	return g.e.MkdirAll("docs", "scripts", ".github/workflows", "config")
}

// environmentConfig is the shape of config/<env>.json.
type environmentConfig struct {
	Name      string            `json:"name"`
	ProjectID string            `json:"projectId"`
	Region    string            `json:"region"`
	Variables map[string]string `json:"variables"`
	Firebase  struct {
		ProjectID string `json:"projectId"`
		Region    string `json:"region"`
	} `json:"firebase"`
	NextJS struct {
		config.NextJS
		Env string `json:"env"`
	} `json:"nextjs"`
}

type themesConfig struct {
	Themes       []config.Theme `json:"themes"`
	DefaultTheme string         `json:"defaultTheme"`
}

func (g *Project) globalConfig() error {
	if err := g.render([][2]string{
		{"README.md.tmpl", "README.md"},
		{"gitignore.tmpl", ".gitignore"},
		{"github/workflows/ci-cd.yml.tmpl", ".github/workflows/ci-cd.yml"},
	}); err != nil {
		return err
	}

	for _, env := range g.opts.Firebase.Environments {
		cfg := environmentConfig{
			Name:      env.Name,
			ProjectID: env.ProjectID,
			Region:    env.Region,
			Variables: env.Variables,
		}
		if cfg.Variables == nil {
			cfg.Variables = map[string]string{}
		}
		cfg.Firebase.ProjectID = env.ProjectID
		cfg.Firebase.Region = env.Region
		cfg.NextJS.NextJS = g.opts.NextJS
		cfg.NextJS.Env = env.Name
		if err := g.e.WriteJSON(fmt.Sprintf("config/%s.json", env.Name), cfg); err != nil {
			return err
		}
	}

	themes := themesConfig{Themes: g.opts.Themes, DefaultTheme: "default"}
	if len(g.opts.Themes) > 0 {
		themes.DefaultTheme = g.opts.Themes[0].Name
	} else {
		themes.Themes = []config.Theme{}
	}
	return g.e.WriteJSON("config/themes.json", themes)
}

func (g *Project) docs() error {
	return g.render([][2]string{
		{"docs/development.md.tmpl", "docs/development.md"},
		{"docs/deployment.md.tmpl", "docs/deployment.md"},
		{"docs/environment-setup.md.tmpl", "docs/environment-setup.md"},
	})
}

func (g *Project) scripts() error {
	return g.render([][2]string{
		{"scripts/deploy.sh.tmpl", "scripts/deploy.sh"},
		{"scripts/init-project.sh.tmpl", "scripts/init-project.sh"},
		{"scripts/init-project.bat.tmpl", "scripts/init-project.bat"},
	})
}

func (g *Project) render(files [][2]string) error {
	for _, f := range files {
		if err := g.e.ProcessTemplate(projectPath(f[0]), f[1]); err != nil {
			return err
		}
	}
	return nil
}
