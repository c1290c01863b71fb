// Package site holds per-domain download behaviour.
package site

import (
	"regexp"

	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

// Shortcut selects a resolver path that bypasses the general metadata probe.
type Shortcut int

const (
	ShortcutNone Shortcut = iota
	// ShortcutTitleOnly asks the extractor for the title and treats the URL as a single item.
	ShortcutTitleOnly
	// ShortcutPageScrape pulls a direct media link out of the page HTML.
	ShortcutPageScrape
)

// CookieKey names a configured credentials file.
type CookieKey string

const (
	CookieYouTube CookieKey = "youtube"
	CookieVimeo   CookieKey = "vimeo"
)

type Profile struct {
	Name          string
	BestOnly      bool
	SkipThumbnail bool
	Shortcut      Shortcut
	CookieKey     CookieKey

	pattern *regexp.Regexp
}

// Default applies to every URL no other profile matches.
var Default = Profile{Name: "default", CookieKey: CookieYouTube}

var profiles = []Profile{
	{Name: "snapchat", Shortcut: ShortcutPageScrape, CookieKey: CookieYouTube, pattern: regexp.MustCompile(`(?i)snapchat\.com`)},
	{Name: "facebook", BestOnly: true, Shortcut: ShortcutTitleOnly, CookieKey: CookieYouTube, pattern: regexp.MustCompile(`(?i)facebook\.com`)},
	{Name: "newgrounds", BestOnly: true, CookieKey: CookieYouTube, pattern: regexp.MustCompile(`(?i)newgrounds\.com`)},
	{Name: "snapchat-cdn", BestOnly: true, CookieKey: CookieYouTube, pattern: regexp.MustCompile(`(?i)sc-cdn\.net`)},
	{Name: "tumblr", BestOnly: true, SkipThumbnail: true, CookieKey: CookieYouTube, pattern: regexp.MustCompile(`(?i)tumblr\.com`)},
	{Name: "vimeo", CookieKey: CookieVimeo, pattern: regexp.MustCompile(`(?i)vimeo`)},
}

// For returns the first profile whose pattern matches url, or Default.
func For(url string) Profile {
	for _, p := range profiles {
		if p.pattern.MatchString(url) {
			return p
		}
	}
	return Default
}

// Cookies maps credential keys to cookies.txt paths.
type Cookies map[CookieKey]string

// ArgsFor returns the --cookies flag for url when its credentials file exists.
func (c Cookies) ArgsFor(url string) []string {
	if c == nil {
		return nil
	}
	return ytdlp.CookieArgs(c[For(url).CookieKey])
}
