// Package format turns user download options into yt-dlp format selection
// and post-processing flags.
package format

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
)

// Containers lists the output formats a caller may request. mp4 is the only
// video container; the rest are audio-only.
var Containers = []string{"mp4", "mp3", "m4a", "ogg", "wav", "flac", "opus"}

const DefaultContainer = "mp4"

// Options are fixed for the lifetime of a job.
type Options struct {
	Container    string
	MaxHeight    int
	AllowHighFPS bool
	Subtitles    bool
}

// IsVideo reports whether the request keeps the video stream.
func (o Options) IsVideo() bool { return o.Container == "mp4" }

// AudioCodec maps the container to the name yt-dlp's --audio-format expects.
func (o Options) AudioCodec() string {
	if o.Container == "ogg" {
		return "vorbis"
	}
	return o.Container
}

// ParseOptions validates raw request fields. resolution accepts "720" or
// "720p"; anything without leading digits means no height limit. highestFPS
// only restricts frame rate when it is exactly "no".
func ParseOptions(container, resolution, highestFPS string, subtitles bool) (Options, error) {
	container = strings.ToLower(strings.TrimSpace(container))
	if container == "" {
		container = DefaultContainer
	}
	if !slices.Contains(Containers, container) {
		return Options{}, fetcherr.New(fetcherr.ErrClientInput,
			fmt.Sprintf("Unsupported format %q. Expected one of: %s.", container, strings.Join(Containers, ", ")))
	}

	return Options{
		Container:    container,
		MaxHeight:    leadingInt(resolution),
		AllowHighFPS: strings.TrimSpace(highestFPS) != "no",
		Subtitles:    subtitles,
	}, nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
