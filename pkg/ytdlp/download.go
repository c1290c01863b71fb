package ytdlp

import (
	"context"
	"fmt"
	"strings"
)

// MediaExtensions are the output extensions a finished download can have.
var MediaExtensions = []string{".m4a", ".mp3", ".mp4", ".mkv", ".webm", ".opus", ".ogg", ".flac", ".wav"}

// IsMediaFile reports whether name carries one of MediaExtensions.
func IsMediaFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range MediaExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// DownloadRequest describes one yt-dlp invocation. All URLs are fetched by a
// single process.
type DownloadRequest struct {
	URLs []string

	// OutputTemplate is passed to -o, e.g. <dir>/%(uploader,channel)s - %(title)s.%(ext)s
	OutputTemplate string

	// FormatArgs carries format, thumbnail, subtitle and post-processing flags.
	FormatArgs []string

	// CookieArgs is appended just before the URLs.
	CookieArgs []string

	// Pace spaces out requests for large batches.
	Pace bool

	// IgnoreErrors keeps going when one URL of a batch fails.
	IgnoreErrors bool

	// Log receives each output line. Falls back to Client.LogCallback.
	Log func(stream string, line string)
}

// Args returns the full argument list for req.
func (req DownloadRequest) Args() []string {
	args := []string{
		"--no-playlist",
		"--no-write-comments",
		"--newline",
		"-o", req.OutputTemplate,
		"--embed-metadata",
		"--concurrent-fragments", "10",
	}
	if req.Pace {
		args = append(args, "--sleep-interval", "5", "--max-sleep-interval", "10")
	}
	if req.IgnoreErrors {
		args = append(args, "--ignore-errors")
	}
	args = append(args, req.FormatArgs...)
	args = append(args, req.CookieArgs...)
	args = append(args, req.URLs...)
	return args
}

// Download runs one yt-dlp process for every URL in req.
func (c *Client) Download(ctx context.Context, req DownloadRequest) error {
	if len(req.URLs) == 0 {
		return fmt.Errorf("ytdlp: at least one url is required")
	}
	if strings.TrimSpace(req.OutputTemplate) == "" {
		return fmt.Errorf("ytdlp: output template is required")
	}

	args := req.Args()
	stdout, stderr, err := c.exec(ctx, req.Log, args...)
	if err != nil {
		return wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return nil
}
