// Package static embeds the browser front end.
package static

import (
	"embed"
	"io/fs"
)

//go:embed public
var embedded embed.FS

// FS is rooted at public/.
var FS fs.FS = mustSub(embedded, "public")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
