package engine

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shireesh.com/firenext/internal/config"
)

var testTime = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestEngine(t *testing.T, src fstest.MapFS) (*Engine, *memfsHandle) {
	t.Helper()
	opts := config.Default()
	opts.Normalize()
	out := memfs.New()
	e, err := New(src, out, NewContext(opts, testTime))
	require.NoError(t, err)
	return e, &memfsHandle{t: t, fs: out}
}

type memfsHandle struct {
	t  *testing.T
	fs billy.Filesystem
}

func (h *memfsHandle) read(name string) string {
	h.t.Helper()
	data, err := util.ReadFile(h.fs, name)
	require.NoError(h.t, err)
	return string(data)
}

func (h *memfsHandle) exists(name string) bool {
	_, err := h.fs.Stat(name)
	return err == nil
}

func TestRender(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{})

	tests := []struct {
		name     string
		text     string
		overlays []Overlay
		want     string
	}{
		{name: "project name", text: "{{.Project.Name}}", want: "my-firebase-nextjs-app"},
		{name: "pascal case", text: "{{pascalCase .Project.Name}}", want: "MyFirebaseNextjsApp"},
		{name: "camel case", text: "{{camelCase .Project.Name}}", want: "myFirebaseNextjsApp"},
		{name: "snake case", text: "{{snakeCase .Project.Name}}", want: "my_firebase_nextjs_app"},
		{name: "kebab case", text: "{{kebabCase \"Add User Roles\"}}", want: "add-user-roles"},
		{name: "eq", text: `{{if eq .NextJS.UI "mui"}}yes{{end}}`, want: "yes"},
		{name: "in", text: `{{if in .NextJS.StateManagement "redux" "zustand"}}yes{{end}}`, want: "yes"},
		{name: "not in", text: `{{if in .NextJS.UI "shadcn"}}yes{{else}}no{{end}}`, want: "no"},
		{name: "defaults", text: "{{.FunctionName}} {{.EnvName}} {{.Version}}", want: "defaultFunction dev 1.0.0"},
		{name: "timestamp", text: "{{.Timestamp}} {{.Year}}", want: "2025-03-04T05:06:07Z 2025"},
		{name: "indent", text: `{{indent 2 "a\nb"}}`, want: "    a\n    b"},
		{name: "import if", text: `{{importIf true "Box" "@mui/material/Box"}}`, want: "import Box from '@mui/material/Box';"},
		{name: "import if false", text: `{{importIf false "Box" "@mui/material/Box"}}`, want: ""},
		{name: "json", text: `{{json .Themes}}`, want: "[\n  {\n    \"name\": \"default\",\n    \"type\": \"mui\",\n    \"variables\": {},\n    \"darkMode\": true\n  }\n]"},
		{name: "join", text: `{{join .NextJS.Features.Enabled ","}}`, want: "pwa,analytics"},
		{
			name:     "environment overlay",
			text:     "{{.EnvName}}:{{.Environment.ProjectID}}",
			overlays: []Overlay{WithEnvironment(config.Environment{Name: "staging", ProjectID: "acme-staging"})},
			want:     "staging:acme-staging",
		},
		{
			name:     "migration overlay",
			text:     "v{{.Migration.Version}} {{.Migration.Description}}",
			overlays: []Overlay{WithMigration(config.Migration{Version: 3, Description: "add roles"})},
			want:     "v3 add roles",
		},
		{
			name:     "extension overlay",
			text:     "{{.Extension.Name}}@{{.Extension.Version}}",
			overlays: []Overlay{WithExtension(config.Extension{Name: "firestore-exports", Version: "latest"})},
			want:     "firestore-exports@latest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.name, tt.text, tt.overlays...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderOverlayDoesNotLeak(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{})

	_, err := e.Render("env", "{{.EnvName}}", WithEnvironment(config.Environment{Name: "prod"}))
	require.NoError(t, err)

	got, err := e.Render("env", "{{.EnvName}}")
	require.NoError(t, err)
	assert.Equal(t, "dev", got)
	assert.Nil(t, e.Context().Environment)
}

func TestRenderErrors(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{})

	_, err := e.Render("bad", "{{.Project.Name")
	require.Error(t, err)

	_, err = e.Render("missing", "{{.Project.Nope}}")
	require.Error(t, err)
}

func TestProcessTemplate(t *testing.T) {
	e, out := newTestEngine(t, fstest.MapFS{
		"nextjs/config/package.json.tmpl": {Data: []byte(`{"name": "{{.Project.Name}}"}`)},
	})

	require.NoError(t, e.ProcessTemplate("nextjs/config/package.json.tmpl", "frontend/package.json"))
	assert.Equal(t, `{"name": "my-firebase-nextjs-app"}`, out.read("frontend/package.json"))
	assert.Equal(t, 1, e.Stats().Rendered)
}

func TestProcessTemplateErrorNamesTemplate(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{
		"broken.ts.tmpl": {Data: []byte("{{if}}")},
	})

	err := e.ProcessTemplate("broken.ts.tmpl", "broken.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.ts.tmpl")

	err = e.ProcessTemplate("absent.ts.tmpl", "absent.ts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.ts.tmpl")
}

func TestProcessDirectory(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}
	e, out := newTestEngine(t, fstest.MapFS{
		"tpl/index.ts.tmpl":                  {Data: []byte("export const name = '{{.Project.Name}}';")},
		"tpl/nested/deep/util.ts":            {Data: []byte("// {{.Version}}")},
		"tpl/icon.png":                       {Data: png},
		"tpl/.env.example.tmpl":              {Data: []byte("ENV={{.EnvName}}")},
		"tpl/node_modules/pkg/index.js":      {Data: []byte("{{ broken")},
		"tpl/nested/node_modules/x/y.js":     {Data: []byte("{{ broken")},
		"tpl/.git/HEAD":                      {Data: []byte("ref: refs/heads/main")},
		"tpl/dist/bundle.js":                 {Data: []byte("{{ broken")},
		"tpl/build/out.js":                   {Data: []byte("{{ broken")},
		"tpl/scripts/deploy.sh.tmpl":         {Data: []byte("#!/bin/bash\necho {{.Project.Name}}")},
		"other/not-included.ts":              {Data: []byte("no")},
		"tpl/nested/builder/keep-me.ts.tmpl": {Data: []byte("kept")},
	})

	require.NoError(t, e.ProcessDirectory("tpl", "out"))

	assert.Equal(t, "export const name = 'my-firebase-nextjs-app';", out.read("out/index.ts"))
	assert.Equal(t, "// 1.0.0", out.read("out/nested/deep/util.ts"))
	assert.Equal(t, string(png), out.read("out/icon.png"))
	assert.Equal(t, "ENV=dev", out.read("out/.env.example"))
	assert.Equal(t, "kept", out.read("out/nested/builder/keep-me.ts"))

	for _, name := range []string{
		"out/node_modules/pkg/index.js",
		"out/nested/node_modules/x/y.js",
		"out/.git/HEAD",
		"out/dist/bundle.js",
		"out/build/out.js",
		"out/not-included.ts",
	} {
		assert.False(t, out.exists(name), name)
	}

	info, err := out.fs.Stat("out/scripts/deploy.sh")
	require.NoError(t, err)
	assert.Equal(t, 0o755, int(info.Mode().Perm()))

	stats := e.Stats()
	assert.Equal(t, 5, stats.Rendered)
	assert.Equal(t, 1, stats.Copied)
	assert.Equal(t, 6, stats.Files())
	assert.Positive(t, stats.Bytes)
	assert.Len(t, e.Written(), 6)
}

func TestProcessDirectoryMissing(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{})

	require.NoError(t, e.ProcessDirectory("stores/mobx", "src/stores"))
	assert.Zero(t, e.Stats().Files())
}

func TestProcessDirectoryRejectsFile(t *testing.T) {
	e, _ := newTestEngine(t, fstest.MapFS{
		"stores/auth-store.ts.tmpl": {Data: []byte("export {}")},
	})

	err := e.ProcessDirectory("stores/auth-store.ts.tmpl", "src/stores")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stores/auth-store.ts.tmpl is a file")

	err = e.ProcessConditional("stores/auth-store.ts.tmpl", "src/stores", nil)
	require.Error(t, err)
	assert.Zero(t, e.Stats().Files())
}

func TestProcessDirectoryRoot(t *testing.T) {
	e, out := newTestEngine(t, fstest.MapFS{
		"a.txt.tmpl":   {Data: []byte("{{.Project.License}}")},
		"sub/b.txt":    {Data: []byte("b")},
		".hidden.tmpl": {Data: []byte("h")},
	})

	require.NoError(t, e.ProcessDirectory(".", "root"))
	assert.Equal(t, "MIT", out.read("root/a.txt"))
	assert.Equal(t, "b", out.read("root/sub/b.txt"))
	assert.Equal(t, "h", out.read("root/.hidden"))
}

func TestProcessConditional(t *testing.T) {
	src := fstest.MapFS{
		"tests/unit/auth.test.ts":        {Data: []byte("auth")},
		"tests/unit/pwa.test.ts":         {Data: []byte("pwa")},
		"tests/unit/fcm.test.ts":         {Data: []byte("fcm")},
		"tests/unit/redux-store.test.ts": {Data: []byte("redux")},
		"tests/unit/zustand.test.ts":     {Data: []byte("zustand")},
	}
	e, out := newTestEngine(t, src)

	conds := []Condition{
		{Match: "pwa", Enabled: true},
		{Match: "fcm", Enabled: false},
		{Match: "redux", Enabled: false},
		{Match: "zustand", Enabled: true},
	}
	require.NoError(t, e.ProcessConditional("tests", "frontend/tests", conds))

	got := e.Written()
	want := []string{
		"frontend/tests/unit/auth.test.ts",
		"frontend/tests/unit/pwa.test.ts",
		"frontend/tests/unit/zustand.test.ts",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("written files mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "pwa", out.read("frontend/tests/unit/pwa.test.ts"))
	assert.Equal(t, 2, e.Stats().Skipped)
}

func TestShouldProcess(t *testing.T) {
	conds := []Condition{
		{Match: "redux", Enabled: false},
		{Match: "use-auth-redux", Enabled: true},
		{Match: "auth", Enabled: true},
	}

	assert.False(t, ShouldProcess("hooks/use-auth-redux.ts", conds), "first match wins")
	assert.True(t, ShouldProcess("hooks/use-auth.ts", conds))
	assert.True(t, ShouldProcess("hooks/use-storage.ts", conds), "unmatched files are included")
	assert.True(t, ShouldProcess("anything", nil))
}

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{name: "logo.png", content: []byte("not really"), want: true},
		{name: "font.WOFF2", content: nil, want: true},
		{name: "doc.pdf", content: nil, want: true},
		{name: "image.svg.tmpl", content: nil, want: true},
		{name: "page.tsx", content: []byte("export default function Page() {}"), want: false},
		{name: "blob", content: []byte{'a', 0, 'b'}, want: true},
		{name: "empty.txt", content: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.name, tt.content))
		})
	}

	late := make([]byte, sniffLen+10)
	for i := range late {
		late[i] = 'x'
	}
	late[sniffLen+5] = 0
	assert.False(t, IsBinary("late.dat", late), "NUL bytes after the sniffed head are ignored")
}

func TestWriteJSONAndMkdirAll(t *testing.T) {
	e, out := newTestEngine(t, fstest.MapFS{})

	require.NoError(t, e.MkdirAll("docs", "config"))
	assert.True(t, out.exists("docs"))

	require.NoError(t, e.WriteJSON("config/dev.json", map[string]any{"name": "dev"}))
	assert.Equal(t, "{\n  \"name\": \"dev\"\n}\n", out.read("config/dev.json"))
}

func TestCustomIgnoreAndFuncs(t *testing.T) {
	opts := config.Default()
	out := memfs.New()
	e, err := New(fstest.MapFS{
		"t/keep.txt":       {Data: []byte("{{shout .Project.License}}")},
		"t/skip.draft.txt": {Data: []byte("x")},
		"t/dist/kept.txt":  {Data: []byte("dist is no longer ignored")},
	}, out, NewContext(opts, testTime),
		WithIgnore("**/*.draft.txt"),
		WithFuncs(map[string]any{"shout": func(s string) string { return s + "!" }}),
	)
	require.NoError(t, err)

	require.NoError(t, e.ProcessDirectory("t", "o"))
	data, err := util.ReadFile(out, "o/keep.txt")
	require.NoError(t, err)
	assert.Equal(t, "MIT!", string(data))
	_, err = out.Stat("o/skip.draft.txt")
	assert.Error(t, err)
	_, err = out.Stat("o/dist/kept.txt")
	assert.NoError(t, err)
}

func TestNewRejectsBadPattern(t *testing.T) {
	_, err := New(fstest.MapFS{}, memfs.New(), Context{}, WithIgnore("[", ""))
	require.Error(t, err)
}
