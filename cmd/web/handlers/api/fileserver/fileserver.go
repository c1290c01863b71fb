// Package fileserver serves job artifacts from disk.
package fileserver

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// NoStore is the Cache-Control value for one-time artifacts.
const NoStore = "private, no-store"

// WeakETag derives a validator from size and modtime. It lets an interrupted
// download resume with If-Range without hashing the artifact.
func WeakETag(info os.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.ModTime().Unix(), info.Size())
}

// ServeAttachment streams absPath as a download named downloadName and
// reports whether the complete file reached the client. Partial, ranged and
// not-modified responses do not count.
func ServeAttachment(c echo.Context, absPath string, downloadName string, disposition string) (bool, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return false, echo.ErrNotFound
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false, echo.ErrNotFound
	}
	if downloadName == "" {
		downloadName = filepath.Base(absPath)
	}

	contentType := mime.TypeByExtension(filepath.Ext(downloadName))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, disposition)
	h.Set(echo.HeaderContentType, contentType)
	h.Set(echo.HeaderCacheControl, NoStore)
	h.Set("ETag", WeakETag(info))

	// http.ServeContent answers Range and If-Range so interrupted downloads can resume.
	http.ServeContent(c.Response(), c.Request(), downloadName, info.ModTime(), f)

	res := c.Response()
	return res.Status == http.StatusOK && res.Size == info.Size(), nil
}
