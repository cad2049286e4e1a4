package engine

import (
	"time"

	"shireesh.com/firenext/internal/config"
)

// Context is the data every template is executed against.
type Context struct {
	Project        config.Project
	Firebase       config.Firebase
	NextJS         config.NextJS
	CloudFunctions config.CloudFunctions
	Firestore      config.Firestore
	Themes         []config.Theme
	OutputDir      string

	Version      string
	FunctionName string
	EnvName      string
	Timestamp    string
	Year         int

	// Set per call through overlays.
	Environment *config.Environment
	Migration   *config.Migration
	Extension   *config.Extension
}

// NewContext builds the base context for a generation run.
func NewContext(opts config.Options, now time.Time) Context {
	return Context{
		Project:        opts.Project,
		Firebase:       opts.Firebase,
		NextJS:         opts.NextJS,
		CloudFunctions: opts.CloudFunctions,
		Firestore:      opts.Firestore,
		Themes:         opts.Themes,
		OutputDir:      opts.OutputDir,
		Version:        opts.Project.Version,
		FunctionName:   "defaultFunction",
		EnvName:        "dev",
		Timestamp:      now.UTC().Format(time.RFC3339),
		Year:           now.Year(),
	}
}

// Overlay adjusts a copy of the base context for a single template.
type Overlay func(*Context)

func WithEnvironment(env config.Environment) Overlay {
	return func(c *Context) {
		c.Environment = &env
		c.EnvName = env.Name
	}
}

func WithMigration(m config.Migration) Overlay {
	return func(c *Context) { c.Migration = &m }
}

func WithExtension(ext config.Extension) Overlay {
	return func(c *Context) { c.Extension = &ext }
}

func (c Context) with(overlays []Overlay) Context {
	for _, o := range overlays {
		o(&c)
	}
	return c
}
