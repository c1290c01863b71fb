package resolver

import (
	"context"
	"regexp"
	"strings"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/site"
)

// titleSeparator is the fullwidth bar Facebook puts between title parts.
const titleSeparator = "｜"

const snapchatTitle = "Snapchat - Spotlight Video"

var preloadVideoRe = regexp.MustCompile(`<link[^>]+rel="preload"[^>]+href="([^"]+)"[^>]+as="video"`)

// resolveTitleOnly treats url as a single item and only asks for its title.
func (r *Resolver) resolveTitleOnly(ctx context.Context, url string) (Result, error) {
	raw, err := r.Prober.Title(ctx, url, r.Cookies.ArgsFor(url)...)
	if err != nil {
		return Result{}, fetcherr.Wrap(fetcherr.ErrResolution, "Could not fetch title for Facebook video.", err)
	}

	title, uploader := splitTitle(site.CleanTitle(raw))
	if title == "" {
		title = "Facebook-Video-" + r.shortID()
	}

	return Result{
		Entries: []Entry{{
			ID:         url,
			URL:        url,
			WebpageURL: url,
			Title:      uploader + " - " + title,
		}},
		Meta: Collection{Title: title},
	}, nil
}

// splitTitle reads "... ｜ title ｜ uploader" style titles.
func splitTitle(s string) (title, uploader string) {
	uploader = "Unknown Uploader"
	if s == "" {
		return "", uploader
	}

	parts := strings.Split(s, titleSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) >= 2 {
		return parts[len(parts)-2], parts[len(parts)-1]
	}
	return s, uploader
}

// resolvePageScrape pulls the preloaded video link out of the page.
func (r *Resolver) resolvePageScrape(ctx context.Context, url string) (Result, error) {
	if r.Pages == nil {
		return Result{}, fetcherr.New(fetcherr.ErrResolution, "Failed to fetch Snapchat page content.")
	}
	body, err := r.Pages.Page(ctx, url)
	if err != nil {
		return Result{}, fetcherr.Wrap(fetcherr.ErrResolution, "Failed to fetch Snapchat page content.", err)
	}

	m := preloadVideoRe.FindSubmatch(body)
	if m == nil || len(m[1]) == 0 {
		return Result{}, fetcherr.New(fetcherr.ErrResolution, "Could not find direct video link in Snapchat page.")
	}
	direct := strings.ReplaceAll(string(m[1]), "&amp;", "&")

	return Result{
		Entries: []Entry{{
			ID:         url,
			URL:        direct,
			WebpageURL: url,
			Title:      snapchatTitle,
			Direct:     true,
		}},
		Meta: Collection{Title: snapchatTitle},
	}, nil
}
