// Package resolver expands a submitted URL into the flat list of media
// entries that have to be downloaded.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/site"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks thirdcoast.systems/fetchbox/internal/resolver Prober,PageFetcher

// Prober is the metadata side of the extraction utility.
type Prober interface {
	Probe(ctx context.Context, url string, extraArgs ...string) ([]byte, error)
	Title(ctx context.Context, url string, extraArgs ...string) (string, error)
}

// PageFetcher downloads a raw web page.
type PageFetcher interface {
	Page(ctx context.Context, url string) ([]byte, error)
}

// Entry is one downloadable media item.
type Entry struct {
	ID         string
	URL        string
	WebpageURL string
	Title      string
	Type       string

	// Direct entries point at the media file itself and skip the extractor.
	Direct bool
}

// PageURL prefers the canonical page over a bare media URL.
func (e Entry) PageURL() string {
	if e.WebpageURL != "" {
		return e.WebpageURL
	}
	return e.URL
}

// BatchURL is the URL handed to the extractor when downloading a collection.
func (e Entry) BatchURL() string {
	if e.URL != "" {
		return e.URL
	}
	return e.WebpageURL
}

// Collection describes the first metadata document seen for a URL.
type Collection struct {
	Title        string
	IsCollection bool
}

type Result struct {
	Entries []Entry
	Meta    Collection
}

// Single reports whether the result takes the single-item download path.
func (r Result) Single() bool {
	return len(r.Entries) == 1 && !r.Meta.IsCollection
}

type Resolver struct {
	Prober  Prober
	Pages   PageFetcher
	Cookies site.Cookies

	newID func() string
}

func New(prober Prober, pages PageFetcher, cookies site.Cookies) *Resolver {
	return &Resolver{Prober: prober, Pages: pages, Cookies: cookies}
}

func (r *Resolver) shortID() string {
	if r.newID != nil {
		return r.newID()
	}
	return uuid.NewString()[:8]
}

// Resolve returns the deduplicated entries behind url.
func (r *Resolver) Resolve(ctx context.Context, url string) (Result, error) {
	switch site.For(url).Shortcut {
	case site.ShortcutTitleOnly:
		return r.resolveTitleOnly(ctx, url)
	case site.ShortcutPageScrape:
		return r.resolvePageScrape(ctx, url)
	}
	return r.resolveGeneral(ctx, url)
}

func (r *Resolver) resolveGeneral(ctx context.Context, url string) (Result, error) {
	queue := []string{url}
	visited := make(map[string]struct{})
	var found []*ytdlp.Info
	var first *ytdlp.Info

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		raw, err := r.Prober.Probe(ctx, current, r.Cookies.ArgsFor(current)...)
		if err != nil {
			return Result{}, fetcherr.Wrap(fetcherr.ErrResolution,
				fmt.Sprintf("Metadata fetch for %s failed. Stderr: %s", current, stderrOf(err)), err)
		}

		info, err := ytdlp.ParseInfo(raw)
		if err != nil {
			slog.Warn("resolver: could not parse metadata", "url", current, "error", err)
			continue
		}
		if first == nil {
			first = info
		}

		if !info.HasEntries() {
			if info.URL != "" || info.WebpageURL != "" {
				found = append(found, info)
			}
			continue
		}

		// Nested playlists are flattened in document order.
		stack := [][]*ytdlp.Info{info.Entries}
		for len(stack) > 0 {
			top := len(stack) - 1
			if len(stack[top]) == 0 {
				stack = stack[:top]
				continue
			}
			e := stack[top][0]
			stack[top] = stack[top][1:]
			if e == nil {
				continue
			}

			switch {
			case e.IsPlaylist() && e.HasEntries():
				stack = append(stack, e.Entries)
			case e.IsTransparent() && e.URL != "":
				if _, ok := visited[e.URL]; !ok {
					queue = append(queue, e.URL)
				}
			case e.URL != "":
				found = append(found, e)
			}
		}
	}

	res := Result{Entries: dedupe(found)}
	if first != nil {
		res.Meta = Collection{Title: first.Title, IsCollection: first.IsPlaylist()}
	} else {
		res.Meta = Collection{Title: "Content from " + url, IsCollection: true}
	}

	if len(res.Entries) == 0 {
		return res, fetcherr.New(fetcherr.ErrResolution, "No downloadable videos found.")
	}
	return res, nil
}

// dedupe keeps the first entry per ID and drops entries without one.
func dedupe(infos []*ytdlp.Info) []Entry {
	seen := make(map[string]struct{}, len(infos))
	out := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if info.ID == "" {
			continue
		}
		if _, ok := seen[info.ID]; ok {
			continue
		}
		seen[info.ID] = struct{}{}
		out = append(out, Entry{
			ID:         info.ID,
			URL:        info.URL,
			WebpageURL: info.WebpageURL,
			Title:      info.Title,
			Type:       info.Type,
		})
	}
	return out
}

func stderrOf(err error) string {
	var ee *ytdlp.ExecError
	if errors.As(err, &ee) {
		return ee.Stderr
	}
	return err.Error()
}
