package format

import (
	"fmt"
	"unicode"

	"thirdcoast.systems/fetchbox/internal/site"
	"thirdcoast.systems/fetchbox/pkg/utils/language"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

// Selection is the format expression plus every flag that depends on it.
type Selection struct {
	Format string
	Args   []string

	// ThumbnailSkipped explains why thumbnails were left out, if they were.
	ThumbnailSkipped string
}

// Policy carries the deployment-wide knobs of format selection.
type Policy struct {
	SubtitleLanguage language.Tag
}

// DefaultPolicy selects English subtitles.
var DefaultPolicy = Policy{SubtitleLanguage: mustParse("en")}

// Select is DefaultPolicy.Select.
func Select(url string, opts Options, title string) Selection {
	return DefaultPolicy.Select(url, opts, title)
}

// Select derives the selection for url. It has no side effects.
func (p Policy) Select(url string, opts Options, title string) Selection {
	profile := site.For(url)

	sel := Selection{Format: Expression(profile, opts)}

	switch {
	case opts.Container == "wav":
		sel.ThumbnailSkipped = "wav cannot carry cover art"
	case profile.SkipThumbnail:
		sel.ThumbnailSkipped = profile.Name + " thumbnails break embedding"
	case hasEmoji(title):
		sel.ThumbnailSkipped = "emoji in title"
	default:
		sel.Args = append(sel.Args, "--write-thumbnail", "--embed-thumbnail", "--convert-thumbnails", "jpg")
	}

	if opts.Subtitles {
		sel.Args = append(sel.Args,
			"--write-auto-subs", "--write-subs", "--embed-subs",
			"--sub-langs", p.subtitlePattern(),
			"--convert-subs", "srt",
		)
	}

	sel.Args = append(sel.Args, "-f", sel.Format, "--match-filter", ytdlp.LiveFilter)

	if opts.IsVideo() {
		sel.Args = append(sel.Args, "--merge-output-format", "mp4")
	} else {
		sel.Args = append(sel.Args, "-x", "--audio-format", opts.AudioCodec(), "--audio-quality", "0")
	}

	return sel
}

// Expression returns the yt-dlp -f expression for opts under profile.
func Expression(profile site.Profile, opts Options) string {
	if profile.BestOnly {
		return "best"
	}
	if !opts.IsVideo() {
		return "bestaudio/best"
	}

	filters := ""
	if opts.MaxHeight > 0 {
		filters += fmt.Sprintf("[height<=%d]", opts.MaxHeight)
	}
	if !opts.AllowHighFPS {
		filters += "[fps<=30]"
	}
	return "bestvideo[vcodec^=avc]" + filters + "+bestaudio[ext=m4a]/best[ext=mp4]" + filters + "/best"
}

func (p Policy) subtitlePattern() string {
	if p.SubtitleLanguage.Family() == "und" {
		return DefaultPolicy.SubtitleLanguage.SubtitlePattern()
	}
	return p.SubtitleLanguage.SubtitlePattern()
}

// hasEmoji reports pictographs and other symbols that break thumbnail
// embedding in some muxers. Plain digits, '#' and '*' are not counted.
func hasEmoji(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x1F000 && r <= 0x1FAFF:
			return true
		case r >= 0x2600 && r <= 0x27BF:
			return true
		case unicode.Is(unicode.So, r):
			return true
		}
	}
	return false
}

func mustParse(s string) language.Tag {
	t, err := language.Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}
