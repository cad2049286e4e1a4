package generator

import (
	"context"
	"fmt"
	"path"

	"github.com/iancoleman/strcase"

	"shireesh.com/firenext/internal/config"
	"shireesh.com/firenext/internal/engine"
)

// Firebase renders the backend (Firebase config, Cloud Functions, Firestore
// rules and migrations, extensions and deploy scripts) into backend/.
type Firebase struct {
	e    *engine.Engine
	opts config.Options
	s    settings
}

func NewFirebase(e *engine.Engine, opts config.Options, options ...Option) *Firebase {
	return &Firebase{e: e, opts: opts, s: newSettings(options)}
}

func (g *Firebase) Name() string { return "firebase" }

func (g *Firebase) Generate(ctx context.Context) error {
	return runSteps(ctx, g.Name(), []step{
		{"directories", g.directories},
		{"firebase config", g.firebaseConfig},
		{"cloud functions", g.functions},
		{"firestore", g.firestore},
		{"extensions", g.extensions},
		{"scripts", g.scripts},
		{"tests", g.tests},
	}, g.s)
}

func firebasePath(p string) string { return path.Join(FirebaseTemplates, p) }

func backendPath(p string) string { return path.Join(BackendDir, p) }

// functionDirs are the Cloud Functions source groups, one directory each.
var functionDirs = []string{"auth", "firestore", "storage", "https", "scheduled", "utils"}

func (g *Firebase) directories() error {
	dirs := []string{"functions", "firestore", "storage", "extensions", "scripts", "tests", "functions/tests"}
	for _, d := range functionDirs {
		dirs = append(dirs, path.Join("functions/src", d))
	}
	for i := range dirs {
		dirs[i] = backendPath(dirs[i])
	}
	return g.e.MkdirAll(dirs...)
}

func (g *Firebase) firebaseConfig() error {
	return g.render([][2]string{
		{"firebase.json.tmpl", "firebase.json"},
		{"firebaserc.tmpl", ".firebaserc"},
		{"firestore.rules.tmpl", "firestore.rules"},
		{"firestore.indexes.json.tmpl", "firestore.indexes.json"},
		{"storage.rules.tmpl", "storage.rules"},
	})
}

func (g *Firebase) functions() error {
	if err := g.render([][2]string{
		{"functions/package.json.tmpl", "functions/package.json"},
		{"functions/tsconfig.json.tmpl", "functions/tsconfig.json"},
		{"functions/index.ts.tmpl", "functions/src/index.ts"},
		{"functions/admin.ts.tmpl", "functions/src/admin.ts"},
	}); err != nil {
		return err
	}
	for _, d := range functionDirs {
		if err := g.e.ProcessDirectory(firebasePath(path.Join("functions", d)), backendPath(path.Join("functions/src", d))); err != nil {
			return err
		}
	}
	return nil
}

func (g *Firebase) firestore() error {
	for _, env := range g.opts.Firebase.Environments {
		dst := backendPath(fmt.Sprintf("firestore/rules.%s.firestore", env.Name))
		if err := g.e.ProcessTemplate(firebasePath("firestore/rules.tmpl"), dst, engine.WithEnvironment(env)); err != nil {
			return err
		}
	}
	if err := g.e.ProcessTemplate(firebasePath("firestore/indexes.json.tmpl"), backendPath("firestore/indexes.json")); err != nil {
		return err
	}
	for _, m := range g.opts.Firestore.Migrations {
		if err := g.e.ProcessTemplate(firebasePath("firestore/migration.ts.tmpl"), backendPath(MigrationFile(m)), engine.WithMigration(m)); err != nil {
			return err
		}
	}
	return nil
}

// MigrationFile is the path of a migration inside the backend directory.
func MigrationFile(m config.Migration) string {
	return fmt.Sprintf("firestore/migrations/v%d-%s.ts", m.Version, strcase.ToKebab(m.Description))
}

func (g *Firebase) extensions() error {
	for _, ext := range g.opts.Firebase.Extensions {
		dst := backendPath(path.Join("extensions", ext.Name, "extension.yaml"))
		if err := g.e.ProcessTemplate(firebasePath("extensions/extension.yaml.tmpl"), dst, engine.WithExtension(ext)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Firebase) scripts() error {
	if err := g.e.ProcessTemplate(firebasePath("scripts/deploy.sh.tmpl"), backendPath("scripts/deploy.sh")); err != nil {
		return err
	}
	for _, env := range g.opts.Firebase.Environments {
		dst := backendPath(fmt.Sprintf("scripts/deploy-%s.sh", env.Name))
		if err := g.e.ProcessTemplate(firebasePath("scripts/deploy-env.sh.tmpl"), dst, engine.WithEnvironment(env)); err != nil {
			return err
		}
	}
	return g.e.ProcessTemplate(firebasePath("scripts/rollback.sh.tmpl"), backendPath("scripts/rollback.sh"))
}

func (g *Firebase) tests() error {
	for _, d := range []string{"tests/functions", "tests/firestore"} {
		if err := g.e.ProcessDirectory(firebasePath(d), backendPath(d)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Firebase) render(files [][2]string) error {
	for _, f := range files {
		if err := g.e.ProcessTemplate(firebasePath(f[0]), backendPath(f[1])); err != nil {
			return err
		}
	}
	return nil
}
