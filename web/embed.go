// Package web holds the embedded page templates and static assets of the
// sweetshop front end.
package web

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// Templates returns the page templates, rooted at the templates directory.
func Templates() (fs.FS, error) {
	return sub("templates")
}

// Static returns the stylesheet and other assets served under /static/.
func Static() (fs.FS, error) {
	return sub("static")
}

func sub(dir string) (fs.FS, error) {
	fsys, err := fs.Sub(content, dir)
	if err != nil {
		return nil, fmt.Errorf("opening embedded %s: %w", dir, err)
	}
	return fsys, nil
}
