package static

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CachedFileInfo holds metadata for a static file used in HTTP cache headers.
type CachedFileInfo struct {
	ETag         string
	Size         int64
	LastModified time.Time
}

// StaticCache manages in-memory metadata for static assets.
type StaticCache struct {
	fileLock sync.RWMutex
	entries  map[string]CachedFileInfo
	fs       fs.FS
}

// NewStaticCache scans fsys and computes ETag and Last-Modified for each file.
func NewStaticCache(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{
		entries: make(map[string]CachedFileInfo),
		fs:      fsys,
	}

	c.fileLock.Lock()
	defer c.fileLock.Unlock()

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		etag := fmt.Sprintf("\"%x\"", h.Sum(nil))
		modTime := info.ModTime()
		if modTime.IsZero() {
			modTime = time.Now()
		}

		c.entries[path] = CachedFileInfo{
			ETag:         etag,
			Size:         info.Size(),
			LastModified: modTime,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Has reports whether name was found when the cache was built.
func (s *StaticCache) Has(name string) bool {
	s.fileLock.RLock()
	defer s.fileLock.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// ServeStaticFile serves the request path below prefix.
func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := path.Clean(strings.TrimPrefix(c.Request().URL.Path, prefix))
		return s.serve(c, name)
	}
}

// ServePage serves one fixed file, e.g. index.html at "/".
func (s *StaticCache) ServePage(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.serve(c, name)
	}
}

func (s *StaticCache) serve(c echo.Context, name string) error {
	if name == "." || !fs.ValidPath(name) {
		return echo.ErrNotFound
	}

	s.fileLock.RLock()
	ci, ok := s.entries[name]
	s.fileLock.RUnlock()

	// If client has up-to-date version, return 304
	if ok {
		if inm := c.Request().Header.Get("If-None-Match"); inm != "" && inm == ci.ETag {
			return c.NoContent(http.StatusNotModified)
		}
		if ims := c.Request().Header.Get(echo.HeaderIfModifiedSince); ims != "" {
			if t, err := time.Parse(time.RFC1123, ims); err == nil && ci.LastModified.Before(t.Add(time.Second)) {
				return c.NoContent(http.StatusNotModified)
			}
		}
	}

	ext := filepath.Ext(name)
	c.Response().Header().Set(echo.HeaderCacheControl, cacheControl(ext))

	f, err := s.fs.Open(name)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()

	if ok {
		c.Response().Header().Set("ETag", ci.ETag)
		c.Response().Header().Set(echo.HeaderLastModified, ci.LastModified.UTC().Format(http.TimeFormat))
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return c.Stream(http.StatusOK, contentType, f)
}

// Assets are not fingerprinted, so pages and scripts revalidate.
func cacheControl(ext string) string {
	switch ext {
	case ".html", ".css", ".js":
		return "no-cache, must-revalidate"
	case ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico":
		return "public, max-age=31536000, stale-while-revalidate=86400" // 1 year
	case ".woff", ".woff2", ".ttf":
		return "public, max-age=31536000, stale-while-revalidate=86400" // 1 year
	default:
		return "public, max-age=3600, stale-while-revalidate=300" // 1 hour
	}
}
