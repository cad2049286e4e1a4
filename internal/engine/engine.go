// Package engine renders a tree of template files into an output tree.
//
// Templates are read from any fs.FS (the embedded tree, a directory or a zip
// archive) and written to a billy.Filesystem, which is the project directory
// on disk or an in-memory filesystem for dry runs. Text files are executed
// with text/template against a Context; binary files are copied unchanged.
package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/go-git/go-billy/v5"
	"github.com/moby/patternmatcher"
	"github.com/rs/zerolog"
)

// TemplateSuffix is removed from rendered file names.
const TemplateSuffix = ".tmpl"

// DefaultIgnore lists the directories never read from a template tree.
var DefaultIgnore = []string{
	"node_modules", "**/node_modules",
	".git", "**/.git",
	"dist", "**/dist",
	"build", "**/build",
	".template", "**/.template",
}

var binaryExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".woff", ".woff2", ".ttf", ".eot",
	".mp4", ".mp3", ".wav", ".avi",
	".zip", ".tar", ".gz", ".rar",
	".pdf", ".doc", ".docx", ".xls", ".xlsx",
}

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

// Stats counts what an engine has done so far.
type Stats struct {
	Rendered int
	Copied   int
	Skipped  int
	Bytes    int64
}

// Files is the total number of files written.
func (s Stats) Files() int { return s.Rendered + s.Copied }

// Condition includes or excludes the files whose path contains Match.
type Condition struct {
	Match   string
	Enabled bool
}

type Engine struct {
	src     fs.FS
	out     billy.Filesystem
	ctx     Context
	funcs   template.FuncMap
	ignore  []string
	matcher *patternmatcher.PatternMatcher
	log     zerolog.Logger

	stats   Stats
	written []string
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithIgnore replaces DefaultIgnore.
func WithIgnore(patterns ...string) Option {
	return func(e *Engine) { e.ignore = patterns }
}

// WithFuncs adds or overrides template helpers.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

func New(src fs.FS, out billy.Filesystem, ctx Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		src:    src,
		out:    out,
		ctx:    ctx,
		funcs:  Funcs(),
		ignore: DefaultIgnore,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	matcher, err := patternmatcher.New(e.ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore patterns: %w", err)
	}
	e.matcher = matcher
	return e, nil
}

func (e *Engine) Context() Context { return e.ctx }

func (e *Engine) Stats() Stats { return e.stats }

// Written lists the output paths written so far, in order.
func (e *Engine) Written() []string { return slices.Clone(e.written) }

// Render executes a single template text against the context.
func (e *Engine) Render(name, text string, overlays ...Overlay) (string, error) {
	tpl, err := template.New(name).Funcs(e.funcs).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, e.ctx.with(overlays)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ProcessTemplate renders the template at src into dst.
func (e *Engine) ProcessTemplate(src, dst string, overlays ...Overlay) error {
	content, err := fs.ReadFile(e.src, src)
	if err != nil {
		return fmt.Errorf("reading template %s: %w", src, err)
	}
	return e.render(src, dst, content, overlays)
}

// ProcessDirectory mirrors every file below srcDir into dstDir.
func (e *Engine) ProcessDirectory(srcDir, dstDir string, overlays ...Overlay) error {
	return e.walk(srcDir, dstDir, nil, overlays)
}

// ProcessConditional is ProcessDirectory with per-file conditions; see
// ShouldProcess.
func (e *Engine) ProcessConditional(srcDir, dstDir string, conds []Condition, overlays ...Overlay) error {
	if conds == nil {
		conds = []Condition{}
	}
	return e.walk(srcDir, dstDir, conds, overlays)
}

// ShouldProcess decides whether the file at rel is generated. The first
// condition whose Match occurs in rel wins; files no condition mentions are
// included.
func ShouldProcess(rel string, conds []Condition) bool {
	for _, c := range conds {
		if strings.Contains(rel, c.Match) {
			return c.Enabled
		}
	}
	return true
}

// Copy writes the template file at src to dst without rendering it.
func (e *Engine) Copy(src, dst string) error {
	content, err := fs.ReadFile(e.src, src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := e.write(dst, content); err != nil {
		return err
	}
	e.stats.Copied++
	return nil
}

// Exists reports whether src is present in the template tree.
func (e *Engine) Exists(src string) bool {
	_, err := fs.Stat(e.src, src)
	return err == nil
}

func (e *Engine) ReadDir(src string) ([]fs.DirEntry, error) {
	return fs.ReadDir(e.src, src)
}

// MkdirAll creates output directories.
func (e *Engine) MkdirAll(dirs ...string) error {
	for _, dir := range dirs {
		if err := e.out.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// WriteFile writes generated content that does not come from a template.
func (e *Engine) WriteFile(dst string, data []byte) error {
	if err := e.write(dst, data); err != nil {
		return err
	}
	e.stats.Rendered++
	return nil
}

// WriteJSON writes v as indented JSON.
func (e *Engine) WriteJSON(dst string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", dst, err)
	}
	return e.WriteFile(dst, append(data, '\n'))
}

func (e *Engine) walk(srcDir, dstDir string, conds []Condition, overlays []Overlay) error {
	info, err := fs.Stat(e.src, srcDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		e.log.Warn().Str("dir", srcDir).Msg("template directory not found, skipping")
		return nil
	case err != nil:
		return fmt.Errorf("reading template directory %s: %w", srcDir, err)
	case !info.IsDir():
		return fmt.Errorf("template directory %s is a file", srcDir)
	}

	return fs.WalkDir(e.src, srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := relPath(srcDir, p)
		if rel == "" {
			return nil
		}
		if e.ignored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			e.stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if conds != nil && !ShouldProcess(rel, conds) {
			e.log.Debug().Str("file", p).Msg("excluded by condition")
			e.stats.Skipped++
			return nil
		}

		content, err := fs.ReadFile(e.src, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}
		dst := path.Join(dstDir, rel)
		if IsBinary(p, content) {
			if err := e.write(dst, content); err != nil {
				return err
			}
			e.stats.Copied++
			return nil
		}
		return e.render(p, dst, content, overlays)
	})
}

func (e *Engine) render(src, dst string, content []byte, overlays []Overlay) error {
	out, err := e.Render(src, string(content), overlays...)
	if err != nil {
		return fmt.Errorf("processing template %s: %w", src, err)
	}
	if err := e.write(strings.TrimSuffix(dst, TemplateSuffix), []byte(out)); err != nil {
		return err
	}
	e.stats.Rendered++
	return nil
}

func (e *Engine) write(dst string, data []byte) error {
	if dir := path.Dir(dst); dir != "." {
		if err := e.out.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	perm := fileMode(dst)
	f, err := e.out.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	// OpenFile only applies perm to new files.
	if ch, ok := e.out.(billy.Change); ok && perm&0o111 != 0 {
		if err := ch.Chmod(dst, perm); err != nil {
			return fmt.Errorf("chmod %s: %w", dst, err)
		}
	}

	e.stats.Bytes += int64(len(data))
	e.written = append(e.written, dst)
	e.log.Debug().Str("file", dst).Int("bytes", len(data)).Msg("wrote")
	return nil
}

func (e *Engine) ignored(rel string) bool {
	matched, err := e.matcher.MatchesOrParentMatches(filepath.FromSlash(rel))
	if err != nil {
		e.log.Warn().Err(err).Str("file", rel).Msg("ignore pattern failed")
		return false
	}
	return matched
}

// IsBinary reports whether a template file is copied instead of rendered:
// either its extension is a known binary type or its head contains a NUL
// byte.
func IsBinary(name string, content []byte) bool {
	ext := strings.ToLower(path.Ext(strings.TrimSuffix(name, TemplateSuffix)))
	if slices.Contains(binaryExtensions, ext) {
		return true
	}
	head := content
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// fileMode makes shell scripts executable.
func fileMode(dst string) os.FileMode {
	if strings.HasSuffix(dst, ".sh") {
		return 0o755
	}
	return 0o644
}

func relPath(root, p string) string {
	if root == "." || root == "" {
		if p == "." {
			return ""
		}
		return p
	}
	return strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
}
