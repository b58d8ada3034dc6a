// Package web carries the embedded browser assets: HTML templates
// rendered server-side and the static files served under /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var Templates embed.FS

//go:embed static/*
var static embed.FS

// StaticDir returns the static asset tree rooted at its own directory,
// ready to hand to http.FileServer.
func StaticDir() (fs.FS, error) {
	return fs.Sub(static, "static")
}
