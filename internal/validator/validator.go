// Package validator checks generation options before anything is written.
//
// Every check runs; problems are collected as errors (generation must not
// proceed) or warnings (unusual but allowed).
package validator

import (
	"fmt"
	"regexp"
	"slices"

	"shireesh.com/firenext/internal/config"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// Result is the outcome of a validation pass.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Merge appends other's findings to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Valid = len(r.Errors) == 0
}

type checker struct {
	errors   []string
	warnings []string
}

func (c *checker) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}

func (c *checker) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

func (c *checker) result() Result {
	return Result{Valid: len(c.errors) == 0, Errors: c.errors, Warnings: c.warnings}
}

func Project(p config.Project) Result {
	var c checker

	if p.Name == "" || !slugPattern.MatchString(p.Name) {
		c.errorf("invalid project name %q: use lowercase letters, digits and hyphens", p.Name)
	}
	if len(p.Description) < 10 {
		c.warnf("project description is too short")
	}
	if p.Author == "" {
		c.errorf("project author is required")
	}
	if !versionPattern.MatchString(p.Version) {
		c.errorf("invalid version %q (format: x.y.z)", p.Version)
	}
	switch p.PackageManager {
	case config.NPM, config.Yarn, config.PNPM:
	default:
		c.errorf("invalid package manager %q", p.PackageManager)
	}

	return c.result()
}

func Firebase(f config.Firebase) Result {
	var c checker

	if f.ProjectID == "" || !slugPattern.MatchString(f.ProjectID) {
		c.errorf("invalid Firebase project ID %q", f.ProjectID)
	}
	if f.Region != "" && !slices.Contains(config.Regions, f.Region) {
		c.warnf("non-standard Firebase region: %s", f.Region)
	}

	if len(f.Environments) == 0 {
		c.errorf("at least one environment is required")
	}
	seen := map[string]bool{}
	duplicate := false
	for _, env := range f.Environments {
		if seen[env.Name] {
			duplicate = true
		}
		seen[env.Name] = true

		if !slugPattern.MatchString(env.ProjectID) {
			c.errorf("invalid project ID %q for environment %q", env.ProjectID, env.Name)
		}
		if env.Region != "" && !slices.Contains(config.Regions, env.Region) {
			c.warnf("non-standard region %s for environment %q", env.Region, env.Name)
		}
	}
	if duplicate {
		c.errorf("duplicate environment names")
	}

	extensions := map[string]bool{}
	for _, ext := range f.Extensions {
		if extensions[ext.Name] {
			c.errorf("duplicate extension %q", ext.Name)
		}
		extensions[ext.Name] = true
	}

	return c.result()
}

func NextJS(n config.NextJS) Result {
	var c checker

	if !slices.Contains(config.NextJSVersions, n.Version) {
		c.warnf("non-standard Next.js version: %s", n.Version)
	}
	switch n.UI {
	case config.UIMUI, config.UIShadcn, config.UIBoth:
	default:
		c.errorf("invalid UI framework %q", n.UI)
	}
	switch n.StateManagement {
	case config.StateZustand, config.StateRedux, config.StateBoth:
	default:
		c.errorf("invalid state management %q", n.StateManagement)
	}
	if n.Features.FCM && !n.Features.PWA {
		c.warnf("FCM is recommended together with PWA")
	}

	return c.result()
}

func Firestore(f config.Firestore) Result {
	var c checker

	versions := map[int]bool{}
	for _, m := range f.Migrations {
		if versions[m.Version] {
			c.errorf("duplicate migration version %d", m.Version)
		}
		versions[m.Version] = true
		if m.Description == "" {
			c.errorf("migration %d has no description", m.Version)
		}
	}

	return c.result()
}

// Options validates a complete configuration.
func Options(o config.Options) Result {
	res := Result{Valid: true}
	res.Merge(Project(o.Project))
	res.Merge(Firebase(o.Firebase))
	res.Merge(NextJS(o.NextJS))
	res.Merge(Firestore(o.Firestore))

	if o.OutputDir == "" {
		res.Merge(Result{Errors: []string{"output directory is required"}})
	}
	return res
}
