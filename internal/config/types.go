// Package config holds the options a project is generated from.
//
// Options is a plain nested struct. It is filled from defaults, an optional
// config file, command line flags and the interactive prompts, then handed to
// the validator and the generators unchanged.
package config

import "strings"

type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
)

type UIFramework string

const (
	UIMUI    UIFramework = "mui"
	UIShadcn UIFramework = "shadcn"
	UIBoth   UIFramework = "both"
)

type StateManagement string

const (
	StateZustand StateManagement = "zustand"
	StateRedux   StateManagement = "redux"
	StateBoth    StateManagement = "both"
)

// ProjectType tells whether an environment links to an existing Firebase
// project or names one that still has to be created.
type ProjectType string

const (
	ProjectLink     ProjectType = "link"
	ProjectGenerate ProjectType = "generate"
)

type TriggerType string

const (
	TriggerAuth      TriggerType = "auth"
	TriggerFirestore TriggerType = "firestore"
	TriggerStorage   TriggerType = "storage"
	TriggerHTTPS     TriggerType = "https"
)

type Project struct {
	Name           string         `yaml:"name" json:"name" toml:"name"`
	Description    string         `yaml:"description" json:"description" toml:"description"`
	Author         string         `yaml:"author" json:"author" toml:"author"`
	Version        string         `yaml:"version" json:"version" toml:"version"`
	License        string         `yaml:"license" json:"license" toml:"license"`
	PackageManager PackageManager `yaml:"packageManager" json:"packageManager" toml:"packageManager"`
}

type Environment struct {
	Name        string            `yaml:"name" json:"name" toml:"name"`
	ProjectID   string            `yaml:"projectId" json:"projectId" toml:"projectId"`
	Region      string            `yaml:"region" json:"region" toml:"region"`
	Variables   map[string]string `yaml:"variables" json:"variables" toml:"variables"`
	ProjectType ProjectType       `yaml:"projectType,omitempty" json:"projectType,omitempty" toml:"projectType,omitempty"`
}

type Extension struct {
	Name    string         `yaml:"name" json:"name" toml:"name"`
	Version string         `yaml:"version" json:"version" toml:"version"`
	Config  map[string]any `yaml:"config" json:"config" toml:"config"`
}

type Firebase struct {
	ProjectID    string        `yaml:"projectId,omitempty" json:"projectId,omitempty" toml:"projectId,omitempty"`
	Region       string        `yaml:"region,omitempty" json:"region,omitempty" toml:"region,omitempty"`
	Environments []Environment `yaml:"environments" json:"environments" toml:"environments"`
	Extensions   []Extension   `yaml:"extensions" json:"extensions" toml:"extensions"`
}

type Features struct {
	PWA         bool `yaml:"pwa" json:"pwa" toml:"pwa"`
	FCM         bool `yaml:"fcm" json:"fcm" toml:"fcm"`
	Analytics   bool `yaml:"analytics" json:"analytics" toml:"analytics"`
	Performance bool `yaml:"performance" json:"performance" toml:"performance"`
	Sentry      bool `yaml:"sentry" json:"sentry" toml:"sentry"`
}

// Enabled returns the names of the enabled features in FeatureNames order.
func (f Features) Enabled() []string {
	flags := []bool{f.PWA, f.FCM, f.Analytics, f.Performance, f.Sentry}
	var names []string
	for i, on := range flags {
		if on {
			names = append(names, FeatureNames[i])
		}
	}
	return names
}

type NextJS struct {
	Version         string          `yaml:"version" json:"version" toml:"version"`
	AppRouter       bool            `yaml:"appRouter" json:"appRouter" toml:"appRouter"`
	TypeScript      bool            `yaml:"typescript" json:"typescript" toml:"typescript"`
	StrictMode      bool            `yaml:"strictMode" json:"strictMode" toml:"strictMode"`
	UI              UIFramework     `yaml:"ui" json:"ui" toml:"ui"`
	StateManagement StateManagement `yaml:"stateManagement" json:"stateManagement" toml:"stateManagement"`
	Features        Features        `yaml:"features" json:"features" toml:"features"`
}

func (n NextJS) UsesMUI() bool     { return n.UI == UIMUI || n.UI == UIBoth }
func (n NextJS) UsesShadcn() bool  { return n.UI == UIShadcn || n.UI == UIBoth }
func (n NextJS) UsesZustand() bool { return n.StateManagement == StateZustand || n.StateManagement == StateBoth }
func (n NextJS) UsesRedux() bool   { return n.StateManagement == StateRedux || n.StateManagement == StateBoth }

type Trigger struct {
	Name  string      `yaml:"name" json:"name" toml:"name"`
	Type  TriggerType `yaml:"type" json:"type" toml:"type"`
	Event string      `yaml:"event" json:"event" toml:"event"`
	Path  string      `yaml:"path,omitempty" json:"path,omitempty" toml:"path,omitempty"`
}

type ScheduledFunction struct {
	Name     string `yaml:"name" json:"name" toml:"name"`
	Schedule string `yaml:"schedule" json:"schedule" toml:"schedule"`
	TimeZone string `yaml:"timeZone" json:"timeZone" toml:"timeZone"`
}

type CloudFunctions struct {
	Runtime   string              `yaml:"runtime" json:"runtime" toml:"runtime"`
	Region    string              `yaml:"region" json:"region" toml:"region"`
	Triggers  []Trigger           `yaml:"triggers" json:"triggers" toml:"triggers"`
	Scheduled []ScheduledFunction `yaml:"scheduled" json:"scheduled" toml:"scheduled"`
}

type Migration struct {
	Version     int    `yaml:"version" json:"version" toml:"version"`
	Description string `yaml:"description" json:"description" toml:"description"`
	Up          string `yaml:"up" json:"up" toml:"up"`
	Down        string `yaml:"down" json:"down" toml:"down"`
}

type Firestore struct {
	Rules      string      `yaml:"rules" json:"rules" toml:"rules"`
	Indexes    string      `yaml:"indexes" json:"indexes" toml:"indexes"`
	Migrations []Migration `yaml:"migrations" json:"migrations" toml:"migrations"`
}

type Theme struct {
	Name      string            `yaml:"name" json:"name" toml:"name"`
	Type      string            `yaml:"type" json:"type" toml:"type"`
	Variables map[string]string `yaml:"variables" json:"variables" toml:"variables"`
	DarkMode  bool              `yaml:"darkMode" json:"darkMode" toml:"darkMode"`
}

// Options is everything a generation run needs.
type Options struct {
	Project        Project        `yaml:"project" json:"project" toml:"project"`
	Firebase       Firebase       `yaml:"firebase" json:"firebase" toml:"firebase"`
	NextJS         NextJS         `yaml:"nextjs" json:"nextjs" toml:"nextjs"`
	CloudFunctions CloudFunctions `yaml:"cloudFunctions" json:"cloudFunctions" toml:"cloudFunctions"`
	Firestore      Firestore      `yaml:"firestore" json:"firestore" toml:"firestore"`
	Themes         []Theme        `yaml:"themes" json:"themes" toml:"themes"`
	OutputDir      string         `yaml:"outputDir" json:"outputDir" toml:"outputDir"`
	// TemplateDir overrides the embedded templates with a directory or a
	// zip archive.
	TemplateDir string `yaml:"templateDir,omitempty" json:"templateDir,omitempty" toml:"templateDir,omitempty"`
}

// Normalize trims user input and fills the values that are derived from
// other fields: the primary Firebase project and region come from the first
// environment when they are not set explicitly.
func (o *Options) Normalize() {
	o.Project.Name = strings.TrimSpace(o.Project.Name)
	o.Project.Description = strings.TrimSpace(o.Project.Description)
	o.Project.Author = strings.TrimSpace(o.Project.Author)
	o.Project.Version = strings.TrimSpace(o.Project.Version)
	o.OutputDir = strings.TrimSpace(o.OutputDir)

	for i := range o.Firebase.Environments {
		env := &o.Firebase.Environments[i]
		env.Name = strings.TrimSpace(env.Name)
		env.ProjectID = strings.TrimSpace(env.ProjectID)
		if env.Region == "" {
			env.Region = DefaultRegion
		}
		if env.Variables == nil {
			env.Variables = map[string]string{}
		}
	}
	for i := range o.Firebase.Extensions {
		ext := &o.Firebase.Extensions[i]
		if ext.Version == "" {
			ext.Version = "latest"
		}
		if ext.Config == nil {
			ext.Config = map[string]any{}
		}
	}

	if len(o.Firebase.Environments) > 0 {
		first := o.Firebase.Environments[0]
		if o.Firebase.ProjectID == "" {
			o.Firebase.ProjectID = first.ProjectID
		}
		if o.Firebase.Region == "" {
			o.Firebase.Region = first.Region
		}
	}

	if len(o.Themes) == 0 {
		o.Themes = []Theme{defaultTheme()}
	}
	for i := range o.Themes {
		if o.Themes[i].Variables == nil {
			o.Themes[i].Variables = map[string]string{}
		}
	}
}
