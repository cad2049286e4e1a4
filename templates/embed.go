// Package templates holds the template tree compiled into the binary.
//
// The tree has three roots: nextjs for the frontend, firebase for the
// backend and project for the files at the top of a generated project.
// Files ending in .tmpl are rendered with text/template; everything else is
// rendered too unless it is binary, in which case it is copied as is.
package templates

import "embed"

//go:embed all:nextjs all:firebase all:project
var FS embed.FS
