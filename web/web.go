// Package web embeds the gymscore pages (layout, competition list, live
// board) and the static assets they load.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*.css static/*.js
var staticFS embed.FS

// GetTemplatesFS returns the page templates rooted at templates/
func GetTemplatesFS() fs.FS {
	return mustSub(templatesFS, "templates")
}

// GetStaticFS returns the assets served under /static/
func GetStaticFS() fs.FS {
	return mustSub(staticFS, "static")
}

// mustSub panics only if the embed patterns above and the directory names drift apart
func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
