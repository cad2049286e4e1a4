package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/manifoldco/promptui"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/firebase"
)

var ErrCancelled = errors.New("configuration cancelled")

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

func validateSlug(s string) error {
	if s == "" {
		return errors.New("required")
	}
	if !slugPattern.MatchString(s) {
		return errors.New("use lowercase letters, digits and hyphens")
	}
	return nil
}

func validateRequired(s string) error {
	if s == "" {
		return errors.New("required")
	}
	return nil
}

// prompter asks the user for values.
type prompter interface {
	Input(label, def string, validate func(string) error) (string, error)
	Select(label string, items []string, def string) (string, error)
	MultiSelect(message string, options, defaults []string) ([]string, error)
	Confirm(message string, def bool) (bool, error)
}

// terminal prompts on the controlling terminal: text and single choices with
// promptui, multiple choices and confirmations with survey.
type terminal struct{}

func (terminal) Input(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, AllowEdit: def != "", Validate: validate}
	return p.Run()
}

func (terminal) Select(label string, items []string, def string) (string, error) {
	s := promptui.Select{Label: label, Items: items, Size: len(items)}
	if i := slices.Index(items, def); i >= 0 {
		s.CursorPos = i
	}
	_, res, err := s.Run()
	return res, err
}

func (terminal) MultiSelect(message string, options, defaults []string) ([]string, error) {
	var res []string
	p := &survey.MultiSelect{Message: message, Options: options, Default: defaults}
	if err := survey.AskOne(p, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (terminal) Confirm(message string, def bool) (bool, error) {
	var res bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &res); err != nil {
		return false, err
	}
	return res, nil
}

const (
	linkChoice     = "link an existing Firebase project"
	generateChoice = "generate a new Firebase project"
)

// collector fills Options interactively, starting from the values already
// set by defaults, the config file and flags.
type collector struct {
	ctx   context.Context
	p     prompter
	probe *firebase.Probe
	out   io.Writer
}

func (c *collector) collect(opts *config.Options) error {
	steps := []func(*config.Options) error{
		c.project,
		c.nextjs,
		c.environments,
		c.extensions,
		c.themes,
	}
	for _, step := range steps {
		if err := step(opts); err != nil {
			return err
		}
	}
	return nil
}

func (c *collector) project(opts *config.Options) error {
	p := &opts.Project
	var err error
	if p.Name, err = c.p.Input("Project name", p.Name, validateSlug); err != nil {
		return err
	}
	if p.Description, err = c.p.Input("Description", p.Description, nil); err != nil {
		return err
	}
	if p.Author, err = c.p.Input("Author", p.Author, validateRequired); err != nil {
		return err
	}
	pm, err := c.p.Select("Package manager", []string{"npm", "yarn", "pnpm"}, string(p.PackageManager))
	if err != nil {
		return err
	}
	p.PackageManager = config.PackageManager(pm)

	def := opts.OutputDir
	if def == "" || def == config.DefaultOutputDir {
		def = "./" + p.Name
	}
	opts.OutputDir, err = c.p.Input("Output directory", def, validateRequired)
	return err
}

func (c *collector) nextjs(opts *config.Options) error {
	n := &opts.NextJS
	var err error
	if n.Version, err = c.p.Select("Next.js version", config.NextJSVersions, n.Version); err != nil {
		return err
	}
	ui, err := c.p.Select("UI framework", []string{string(config.UIMUI), string(config.UIShadcn), string(config.UIBoth)}, string(n.UI))
	if err != nil {
		return err
	}
	n.UI = config.UIFramework(ui)
	state, err := c.p.Select("State management", []string{string(config.StateZustand), string(config.StateRedux), string(config.StateBoth)}, string(n.StateManagement))
	if err != nil {
		return err
	}
	n.StateManagement = config.StateManagement(state)

	features, err := c.p.MultiSelect("Features", config.FeatureNames, n.Features.Enabled())
	if err != nil {
		return err
	}
	n.Features = config.Features{
		PWA:         slices.Contains(features, "pwa"),
		FCM:         slices.Contains(features, "fcm"),
		Analytics:   slices.Contains(features, "analytics"),
		Performance: slices.Contains(features, "performance"),
		Sentry:      slices.Contains(features, "sentry"),
	}
	return nil
}

func (c *collector) environments(opts *config.Options) error {
	var current []string
	for _, env := range opts.Firebase.Environments {
		current = append(current, env.Name)
	}
	options := config.EnvironmentNames
	for _, name := range current {
		options = withDefault(options, name)
	}
	names, err := c.p.MultiSelect("Environments", options, current)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errors.New("at least one environment is required")
	}

	region := config.DefaultRegion
	if len(opts.Firebase.Environments) > 0 && opts.Firebase.Environments[0].Region != "" {
		region = opts.Firebase.Environments[0].Region
	}

	envs := make([]config.Environment, 0, len(names))
	for _, name := range names {
		prev, ok := findEnvironment(opts.Firebase.Environments, name)
		if !ok {
			prev = config.Environment{Name: name, Region: region, ProjectType: config.ProjectGenerate}
		}
		env, err := c.environment(prev, projectPrefix(prev, opts.Project.Name))
		if err != nil {
			return err
		}
		envs = append(envs, env)
	}
	opts.Firebase.Environments = envs
	// Derived again from the first environment by Normalize.
	opts.Firebase.ProjectID, opts.Firebase.Region = "", ""
	return nil
}

func findEnvironment(envs []config.Environment, name string) (config.Environment, bool) {
	for _, env := range envs {
		if env.Name == name {
			return env, true
		}
	}
	return config.Environment{}, false
}

// projectPrefix recovers <prefix> from a "<prefix>-<env>" project ID. IDs
// still built from the default project name follow the chosen name instead.
func projectPrefix(env config.Environment, name string) string {
	prefix, ok := strings.CutSuffix(env.ProjectID, "-"+env.Name)
	if !ok || prefix == "" || prefix == config.DefaultProjectName {
		return name
	}
	return prefix
}

// withDefault puts def first when it is not one of items.
func withDefault(items []string, def string) []string {
	if def == "" || slices.Contains(items, def) {
		return items
	}
	return append([]string{def}, items...)
}

// environment asks how env maps to a Firebase project. Its region and
// variables are kept unless the user changes them.
func (c *collector) environment(prev config.Environment, prefix string) (config.Environment, error) {
	env := prev
	env.Variables = maps.Clone(prev.Variables)
	if env.Variables == nil {
		env.Variables = map[string]string{}
	}
	region := prev.Region
	if region == "" {
		region = config.DefaultRegion
	}
	name := env.Name

	def := generateChoice
	if prev.ProjectType == config.ProjectLink {
		def = linkChoice
	}
	kind, err := c.p.Select(fmt.Sprintf("Firebase project for %s", name), []string{linkChoice, generateChoice}, def)
	if err != nil {
		return env, err
	}
	if kind == linkChoice {
		linkDefault := ""
		if prev.ProjectType == config.ProjectLink {
			linkDefault = prev.ProjectID
		}
		proj, ok, err := c.link(name, linkDefault)
		if err != nil {
			return env, err
		}
		if ok {
			env.ProjectType = config.ProjectLink
			env.ProjectID = proj.ID
			env.Region = proj.Region
			return env, nil
		}
	}

	env.ProjectType = config.ProjectGenerate
	prefix, err = c.p.Input(fmt.Sprintf("Project prefix for %s (creates <prefix>-%s)", name, name), prefix, validateSlug)
	if err != nil {
		return env, err
	}
	env.ProjectID = prefix + "-" + name
	env.Region, err = c.p.Select(fmt.Sprintf("Region for %s", name), withDefault(config.Regions, region), region)
	return env, err
}

// link asks for an existing project ID until the Firebase CLI confirms it.
// ok is false when the user chose to generate a new project instead.
func (c *collector) link(env, def string) (proj firebase.Project, ok bool, err error) {
	for {
		id, err := c.p.Input(fmt.Sprintf("Existing Firebase project ID for %s", env), def, validateSlug)
		if err != nil {
			return proj, false, err
		}

		if err := c.probe.CheckConnection(c.ctx); err != nil {
			failure(c.out, "%v", err)
			if errors.Is(err, firebase.ErrNotLoggedIn) {
				login, err := c.p.Confirm("Log in to Firebase now?", true)
				if err != nil {
					return proj, false, err
				}
				if login {
					if err := c.probe.Login(c.ctx); err != nil {
						failure(c.out, "firebase login failed: %v", err)
					}
					continue
				}
			}
			if err := c.retry(); err != nil {
				return proj, false, err
			}
			continue
		}

		found, exists, err := c.probe.LookupProject(c.ctx, id)
		if err != nil {
			failure(c.out, "%v", err)
			if err := c.retry(); err != nil {
				return proj, false, err
			}
			continue
		}
		if exists {
			success(c.out, "found %s (%s)", found.ID, found.Region)
			return found, true, nil
		}

		warn(c.out, "project %s not found in your Firebase account", id)
		create, err := c.p.Confirm("Generate a new project instead?", false)
		if err != nil {
			return proj, false, err
		}
		if create {
			return proj, false, nil
		}
		if err := c.retry(); err != nil {
			return proj, false, err
		}
	}
}

func (c *collector) retry() error {
	again, err := c.p.Confirm("Try again with another project ID?", true)
	if err != nil {
		return err
	}
	if !again {
		return ErrCancelled
	}
	return nil
}

func (c *collector) extensions(opts *config.Options) error {
	use, err := c.p.Confirm("Use Firebase extensions?", len(opts.Firebase.Extensions) > 0)
	if err != nil || !use {
		return err
	}
	var current []string
	for _, ext := range opts.Firebase.Extensions {
		current = append(current, ext.Name)
	}
	options := config.ExtensionNames
	for _, name := range current {
		options = withDefault(options, name)
	}
	names, err := c.p.MultiSelect("Extensions", options, current)
	if err != nil {
		return err
	}
	exts := make([]config.Extension, 0, len(names))
	for _, name := range names {
		ext := config.Extension{Name: name, Version: "latest", Config: map[string]any{}}
		if i := slices.IndexFunc(opts.Firebase.Extensions, func(e config.Extension) bool { return e.Name == name }); i >= 0 {
			prev := opts.Firebase.Extensions[i]
			if prev.Version != "" {
				ext.Version = prev.Version
			}
			if prev.Config != nil {
				ext.Config = maps.Clone(prev.Config)
			}
		}
		exts = append(exts, ext)
	}
	opts.Firebase.Extensions = exts
	return nil
}

func (c *collector) themes(opts *config.Options) error {
	custom, err := c.p.Confirm("Configure custom themes?", false)
	if err != nil || !custom {
		return err
	}
	count, err := c.p.Input("Number of themes", "1", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 10 {
			return errors.New("enter a number between 1 and 10")
		}
		return nil
	})
	if err != nil {
		return err
	}
	n, _ := strconv.Atoi(count)

	themes := make([]config.Theme, 0, n)
	for i := 1; i <= n; i++ {
		name, err := c.p.Input(fmt.Sprintf("Theme %d name", i), fmt.Sprintf("theme-%d", i), validateSlug)
		if err != nil {
			return err
		}
		kind, err := c.p.Select(fmt.Sprintf("Theme %d type", i), []string{"mui", "shadcn", "custom"}, string(opts.NextJS.UI))
		if err != nil {
			return err
		}
		dark, err := c.p.Confirm(fmt.Sprintf("Dark mode for theme %d?", i), true)
		if err != nil {
			return err
		}
		themes = append(themes, config.Theme{Name: name, Type: kind, DarkMode: dark, Variables: map[string]string{}})
	}
	opts.Themes = themes
	return nil
}
