package generator

import (
	"context"
	"path"
	"strings"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/engine"
)

// NextJS renders the frontend application into frontend/.
type NextJS struct {
	e    *engine.Engine
	opts config.Options
	s    settings
}

func NewNextJS(e *engine.Engine, opts config.Options, options ...Option) *NextJS {
	return &NextJS{e: e, opts: opts, s: newSettings(options)}
}

func (g *NextJS) Name() string { return "nextjs" }

func (g *NextJS) Generate(ctx context.Context) error {
	return runSteps(ctx, g.Name(), []step{
		{"directories", g.directories},
		{"config files", g.configFiles},
		{"base files", g.baseFiles},
		{"ui components", g.components},
		{"state management", g.stateManagement},
		{"hooks", g.hooks},
		{"api routes", g.apiRoutes},
		{"pages and layouts", g.pages},
		{"features", g.features},
		{"public assets", g.publicAssets},
		{"tests", g.tests},
		{"readme and ci", g.docs},
	}, g.s)
}

func nextjsPath(p string) string { return path.Join(NextJSTemplates, p) }

func frontendPath(p string) string { return path.Join(FrontendDir, p) }

func (g *NextJS) directories() error {
	dirs := []string{"public", "tests"}
	for _, d := range []string{"app", "components", "hooks", "lib", "stores", "types", "utils", "styles"} {
		dirs = append(dirs, path.Join("src", d))
	}
	for i := range dirs {
		dirs[i] = frontendPath(dirs[i])
	}
	return g.e.MkdirAll(dirs...)
}

func (g *NextJS) configFiles() error {
	files := [][2]string{
		{"package.json.tmpl", "package.json"},
		{"next.config.js.tmpl", "next.config.js"},
		{"tsconfig.json.tmpl", "tsconfig.json"},
	}
	if g.opts.NextJS.UsesShadcn() {
		files = append(files,
			[2]string{"tailwind.config.js.tmpl", "tailwind.config.js"},
			[2]string{"postcss.config.js.tmpl", "postcss.config.js"},
		)
	}
	files = append(files,
		[2]string{"env.local.tmpl", ".env.local"},
		[2]string{"env.local.tmpl", ".env.local.example"},
	)
	return g.render(files)
}

func (g *NextJS) baseFiles() error {
	return g.render([][2]string{
		{"lib/firebase.ts.tmpl", "src/lib/firebase.ts"},
		{"app/globals.css.tmpl", "src/app/globals.css"},
	})
}

func (g *NextJS) components() error {
	dst := frontendPath("src/components")
	dirs := []string{"components/core"}
	if g.opts.NextJS.UsesMUI() {
		dirs = append(dirs, "components/mui")
	}
	if g.opts.NextJS.UsesShadcn() {
		dirs = append(dirs, "components/common")
	}
	for _, d := range dirs {
		if err := g.e.ProcessDirectory(nextjsPath(d), dst); err != nil {
			return err
		}
	}
	return nil
}

func (g *NextJS) stateManagement() error {
	dst := frontendPath("src/stores")
	if g.opts.NextJS.UsesZustand() {
		if err := g.e.ProcessDirectory(nextjsPath("stores/zustand"), dst); err != nil {
			return err
		}
	}
	if g.opts.NextJS.UsesRedux() {
		if err := g.e.ProcessDirectory(nextjsPath("stores/redux"), dst); err != nil {
			return err
		}
	}
	return nil
}

const (
	authHook      = "use-auth.ts.tmpl"
	reduxAuthHook = "use-auth-redux.ts.tmpl"
)

func (g *NextJS) hooks() error {
	dir := nextjsPath("hooks/firebase")
	dst := frontendPath("src/hooks")

	auth := authHook
	if g.opts.NextJS.StateManagement == config.StateRedux {
		auth = reduxAuthHook
	}
	if err := g.e.ProcessTemplate(path.Join(dir, auth), path.Join(dst, "use-auth.ts")); err != nil {
		return err
	}

	entries, err := g.e.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == authHook || name == reduxAuthHook {
			continue
		}
		target := path.Join(dst, strings.TrimSuffix(name, engine.TemplateSuffix))
		if err := g.e.ProcessTemplate(path.Join(dir, name), target); err != nil {
			return err
		}
	}

	for _, d := range []string{"hooks/ui", "hooks/utils"} {
		if err := g.e.ProcessDirectory(nextjsPath(d), dst); err != nil {
			return err
		}
	}
	return nil
}

func (g *NextJS) apiRoutes() error {
	api := frontendPath("src/app/api")
	for _, d := range [][2]string{
		{"api/auth", path.Join(api, "auth")},
		{"api/firestore", path.Join(api, "firestore")},
		{"api/utils", api},
	} {
		if err := g.e.ProcessDirectory(nextjsPath(d[0]), d[1]); err != nil {
			return err
		}
	}
	return nil
}

func (g *NextJS) pages() error {
	if err := g.render([][2]string{
		{"app/layout.tsx.tmpl", "src/app/layout.tsx"},
		{"app/page.tsx.tmpl", "src/app/page.tsx"},
		{"app/not-found.tsx.tmpl", "src/app/not-found.tsx"},
	}); err != nil {
		return err
	}
	if err := g.e.ProcessDirectory(nextjsPath("app/auth"), frontendPath("src/app/auth")); err != nil {
		return err
	}
	return g.e.ProcessDirectory(nextjsPath("app/dashboard"), frontendPath("src/app/dashboard"))
}

func (g *NextJS) features() error {
	f := g.opts.NextJS.Features
	var files [][2]string
	if f.PWA {
		files = append(files,
			[2]string{"pwa/sw.js.tmpl", "public/sw.js"},
			[2]string{"pwa/manifest.json.tmpl", "public/manifest.json"},
			[2]string{"pwa/pwa-config.ts.tmpl", "src/lib/pwa-config.ts"},
		)
	}
	if f.FCM {
		files = append(files,
			[2]string{"fcm/fcm-config.ts.tmpl", "src/lib/fcm-config.ts"},
			[2]string{"fcm/use-fcm.ts.tmpl", "src/hooks/use-fcm.ts"},
			[2]string{"fcm/firebase-messaging-sw.js.tmpl", "public/firebase-messaging-sw.js"},
		)
	}
	if f.Analytics {
		files = append(files,
			[2]string{"analytics/analytics-config.ts.tmpl", "src/lib/analytics-config.ts"},
			[2]string{"analytics/use-analytics.ts.tmpl", "src/hooks/use-analytics.ts"},
		)
	}
	if f.Performance {
		files = append(files, [2]string{"performance/performance-config.ts.tmpl", "src/lib/performance-config.ts"})
	}
	if f.Sentry {
		files = append(files,
			[2]string{"sentry/sentry-config.ts.tmpl", "src/lib/sentry-config.ts"},
			[2]string{"sentry/sentry-middleware.ts.tmpl", "src/middleware.ts"},
		)
	}
	return g.render(files)
}

func (g *NextJS) publicAssets() error {
	return g.e.ProcessDirectory(nextjsPath("public"), frontendPath("public"))
}

func (g *NextJS) tests() error {
	n := g.opts.NextJS
	conds := []engine.Condition{
		{Match: "pwa", Enabled: n.Features.PWA},
		{Match: "fcm", Enabled: n.Features.FCM},
		{Match: "analytics", Enabled: n.Features.Analytics},
		{Match: "performance", Enabled: n.Features.Performance},
		{Match: "sentry", Enabled: n.Features.Sentry},
		{Match: "redux", Enabled: n.UsesRedux()},
		{Match: "zustand", Enabled: n.UsesZustand()},
	}
	return g.e.ProcessConditional(nextjsPath("tests"), frontendPath("tests"), conds)
}

func (g *NextJS) docs() error {
	return g.render([][2]string{
		{"README.md.tmpl", "README.md"},
		{"github/workflows/ci-cd.yml.tmpl", ".github/workflows/ci-cd.yml"},
	})
}

// render processes template/output pairs relative to the nextjs tree and
// the frontend directory.
func (g *NextJS) render(files [][2]string) error {
	for _, f := range files {
		if err := g.e.ProcessTemplate(nextjsPath(f[0]), frontendPath(f[1])); err != nil {
			return err
		}
	}
	return nil
}
