package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shireesh.com/firenext/internal/archive"
	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/firebase"
	"shireesh.com/firenext/internal/generator"
	"shireesh.com/firenext/internal/hooks"
	xlog "shireesh.com/firenext/internal/log"
	"shireesh.com/firenext/internal/tui"
	"shireesh.com/firenext/internal/validator"
	"shireesh.com/firenext/internal/watch"
	"shireesh.com/firenext/templates"
)

var (
	ErrOutputNotEmpty = errors.New("output directory is not empty (use --force to write into it)")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

type createFlags struct {
	name           string
	description    string
	output         string
	yes            bool
	ui             string
	state          string
	features       string
	packageManager string
	nextjsVersion  string
	environments   string
	prefix         string
	region         string
	configFile     string
	templates      string
	dryRun         bool
	force          bool
	install        bool
	git            bool
	saveConfig     string
	watch          bool
}

func newCreateCmd() *cobra.Command {
	var f createFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new Next.js + Firebase project",
		Example: `  firenext create
  firenext create --yes --name shop --ui shadcn --state-management redux --features pwa,fcm
  firenext create -c firenext.yaml --output ./shop --install --git`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.name, "name", "n", config.DefaultProjectName, "project name (lowercase letters, digits and hyphens)")
	fl.StringVarP(&f.description, "description", "d", config.DefaultDescription, "project description")
	fl.StringVarP(&f.output, "output", "o", "", "output directory (default ./<name>)")
	fl.BoolVarP(&f.yes, "yes", "y", false, "skip the prompts and use defaults, config file and flags")
	fl.StringVar(&f.ui, "ui", string(config.UIMUI), "UI framework (mui, shadcn, both)")
	fl.StringVar(&f.state, "state-management", string(config.StateZustand), "state management (zustand, redux, both)")
	fl.StringVar(&f.features, "features", "pwa,analytics", "comma separated features ("+strings.Join(config.FeatureNames, ", ")+")")
	fl.StringVar(&f.packageManager, "package-manager", string(config.NPM), "package manager (npm, yarn, pnpm)")
	fl.StringVar(&f.nextjsVersion, "nextjs-version", "15", "Next.js major version")
	fl.StringVar(&f.environments, "environments", "dev,prod", "comma separated environment names")
	fl.StringVar(&f.prefix, "project-prefix", "", "Firebase project ID prefix (default the project name)")
	fl.StringVar(&f.region, "region", config.DefaultRegion, "Firebase region")
	fl.StringVarP(&f.configFile, "config", "c", "", "config file (.yaml, .json or .toml)")
	fl.StringVar(&f.templates, "templates", "", "template directory or zip archive replacing the built-in templates")
	fl.BoolVar(&f.dryRun, "dry-run", false, "render in memory and list the files without writing them")
	fl.BoolVar(&f.force, "force", false, "write into a non-empty output directory")
	fl.BoolVar(&f.install, "install", false, "install dependencies after generating")
	fl.BoolVar(&f.git, "git", false, "initialize a git repository")
	fl.StringVar(&f.saveConfig, "save-config", "", "write the final configuration to this file")
	fl.BoolVar(&f.watch, "watch", false, "regenerate when files in the --templates directory change")
	return cmd
}

// options merges defaults, the config file and the flags that were set.
func (f *createFlags) options(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()
	if f.configFile != "" {
		path, err := expandPath(f.configFile)
		if err != nil {
			return opts, err
		}
		if opts, err = config.Load(path, opts); err != nil {
			return opts, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("name") {
		opts.Project.Name = f.name
	}
	if changed("description") {
		opts.Project.Description = f.description
	}
	if changed("package-manager") {
		opts.Project.PackageManager = config.PackageManager(f.packageManager)
	}
	if changed("nextjs-version") {
		opts.NextJS.Version = f.nextjsVersion
	}
	if changed("ui") {
		opts.NextJS.UI = config.UIFramework(f.ui)
	}
	if changed("state-management") {
		opts.NextJS.StateManagement = config.StateManagement(f.state)
	}
	if changed("features") {
		features, err := config.ParseFeatures(f.features)
		if err != nil {
			return opts, err
		}
		opts.NextJS.Features = features
	}

	// Environments point at <prefix>-<env>; rebuild them when any part of
	// that changes, unless they come from the config file.
	if changed("environments") || changed("project-prefix") || (changed("name") && f.configFile == "") {
		names := config.SplitList(f.environments)
		if !changed("environments") {
			names = names[:0]
			for _, env := range opts.Firebase.Environments {
				names = append(names, env.Name)
			}
		}
		prefix := opts.Project.Name
		if changed("project-prefix") {
			prefix = f.prefix
		}
		region := f.region
		if !changed("region") && len(opts.Firebase.Environments) > 0 {
			region = opts.Firebase.Environments[0].Region
		}
		opts.Firebase.Environments = config.EnvironmentsFor(prefix, names, region)
		opts.Firebase.ProjectID = ""
	}
	if changed("region") {
		for i := range opts.Firebase.Environments {
			opts.Firebase.Environments[i].Region = f.region
		}
		opts.Firebase.Region = ""
		opts.CloudFunctions.Region = f.region
	}

	switch {
	case changed("output"):
		opts.OutputDir = f.output
	case opts.OutputDir == "" || opts.OutputDir == config.DefaultOutputDir:
		opts.OutputDir = "./" + opts.Project.Name
	}
	if changed("templates") {
		opts.TemplateDir = f.templates
	}
	return opts, nil
}

func runCreate(cmd *cobra.Command, f *createFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := xlog.WithComponent("cli")

	opts, err := f.options(cmd)
	if err != nil {
		return err
	}

	runner := hooks.New(out, cmd.ErrOrStderr())
	if !f.yes {
		c := &collector{ctx: ctx, p: terminal{}, probe: firebase.NewProbe(runner), out: out}
		if err := c.collect(&opts); err != nil {
			return err
		}
	}

	opts.Normalize()
	res := validator.Options(opts)
	report(out, res)
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(res.Errors, "; "))
	}

	src, tplDir, closeSrc, err := templateSource(opts.TemplateDir)
	if err != nil {
		return err
	}
	defer closeSrc()

	if f.dryRun {
		fsys := memfs.New()
		summary, err := generate(ctx, src, fsys, opts, nil)
		if err != nil {
			return err
		}
		heading(out, fmt.Sprintf("Dry run: %s would be generated in %s", opts.Project.Name, opts.OutputDir))
		for _, name := range summary.Written {
			fmt.Fprintln(out, "  "+name)
		}
		success(out, "%s", summary)
		return nil
	}

	dir, err := expandPath(opts.OutputDir)
	if err != nil {
		return err
	}
	if err := checkOutputDir(dir, f.force); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if tplDir != "" {
		if err := runner.Script(ctx, tplDir, "pre.sh", dir); err != nil {
			return fmt.Errorf("pre.sh: %w", err)
		}
	}

	var summary generator.Summary
	if file, ok := out.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		summary, err = tui.Run(ctx, "Generating "+opts.Project.Name, out, func(ctx context.Context, progress generator.Progress) (generator.Summary, error) {
			return generate(ctx, src, osfs.New(dir), opts, progress)
		})
	} else {
		summary, err = generate(ctx, src, osfs.New(dir), opts, func(e generator.Event) {
			if e.Done && e.Err == nil {
				log.Info().Str("generator", e.Generator).Str("step", e.Step).Msgf("[%d/%d]", e.Index, e.Total)
			}
		})
		if err == nil {
			success(out, "generated %s in %s: %s", opts.Project.Name, dir, summary)
		}
	}
	if err != nil {
		return err
	}

	if tplDir != "" {
		if err := runner.Script(ctx, tplDir, "post.sh", dir); err != nil {
			return fmt.Errorf("post.sh: %w", err)
		}
	}

	if f.saveConfig != "" {
		path, err := expandPath(f.saveConfig)
		if err != nil {
			return err
		}
		if err := config.Save(path, opts); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		success(out, "configuration saved to %s", path)
	}
	if f.install {
		dirs := []string{filepath.Join(dir, generator.FrontendDir), filepath.Join(dir, generator.BackendDir, "functions")}
		if err := runner.Install(ctx, opts.Project.PackageManager, dirs...); err != nil {
			warn(out, "%v", err)
		} else {
			success(out, "dependencies installed")
		}
	}
	if f.git {
		if err := runner.GitInit(ctx, dir); err != nil {
			warn(out, "git init failed: %v", err)
		} else {
			success(out, "git repository initialized")
		}
	}

	nextSteps(out, dir, opts)

	if f.watch {
		return watchTemplates(ctx, out, tplDir, dir, src, opts)
	}
	return nil
}

func generate(ctx context.Context, src fs.FS, out billy.Filesystem, opts config.Options, progress generator.Progress) (generator.Summary, error) {
	var options []generator.Option
	if progress != nil {
		options = append(options, generator.WithProgress(progress))
	}
	p, err := generator.New(src, out, opts, options...)
	if err != nil {
		return generator.Summary{}, err
	}
	return p.Run(ctx)
}

// templateSource opens the template tree. dir is set when the templates
// come from a directory, which is the only source with hook scripts and the
// only one that can be watched.
func templateSource(path string) (src fs.FS, dir string, closeFn func() error, err error) {
	nop := func() error { return nil }
	if path == "" {
		return templates.FS, "", nop, nil
	}
	if path, err = expandPath(path); err != nil {
		return nil, "", nop, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", nop, fmt.Errorf("templates: %w", err)
	}
	if info.IsDir() {
		return os.DirFS(path), path, nop, nil
	}
	zr, err := archive.Open(path)
	if err != nil {
		return nil, "", nop, fmt.Errorf("templates: %w", err)
	}
	return zr, "", zr.Close, nil
}

func checkOutputDir(dir string, force bool) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(entries) > 0 && !force {
		return fmt.Errorf("%s: %w", dir, ErrOutputNotEmpty)
	}
	return nil
}

func watchTemplates(ctx context.Context, out io.Writer, tplDir, dir string, src fs.FS, opts config.Options) error {
	if tplDir == "" {
		return errors.New("--watch needs --templates pointing at a directory")
	}
	heading(out, fmt.Sprintf("Watching %s (Ctrl+C to stop)", tplDir))
	return watch.Watch(ctx, tplDir, watch.DefaultDebounce, func(ctx context.Context) error {
		summary, err := generate(ctx, src, osfs.New(dir), opts, nil)
		if err != nil {
			failure(out, "%v", err)
			return err
		}
		success(out, "regenerated: %s", summary)
		return nil
	})
}
