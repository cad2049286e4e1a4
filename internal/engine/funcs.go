package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
)

// Funcs returns the helper functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"camelCase":  strcase.ToLowerCamel,
		"pascalCase": strcase.ToCamel,
		"kebabCase":  strcase.ToKebab,
		"snakeCase":  strcase.ToSnake,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"join":       strings.Join,
		"trimPrefix": strings.TrimPrefix,
		"in":         in,
		"indent":     indent,
		"envVar":     envVar,
		"importIf":   importIf,
		"json":       toJSON,
	}
}

// in reports whether elem equals one of list. Values are compared by their
// printed form so named string types match string literals.
func in(elem any, list ...any) bool {
	want := fmt.Sprint(elem)
	for _, item := range list {
		if fmt.Sprint(item) == want {
			return true
		}
	}
	return false
}

// indent prefixes every line of s with two spaces per level.
func indent(level int, s string) string {
	if level <= 0 {
		return s
	}
	prefix := strings.Repeat("  ", level)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func envVar(key string, fallback ...string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func importIf(cond bool, name, path string) string {
	if !cond {
		return ""
	}
	return fmt.Sprintf("import %s from '%s';", name, path)
}

func toJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
