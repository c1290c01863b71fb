package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// LiveFilter skips live streams; it is passed on every probe and download.
const LiveFilter = "live_status != 'is_live'"

// Info is a light wrapper over yt-dlp JSON output. It models only the fields
// needed to walk playlists. The full JSON is preserved in Raw.
type Info struct {
	ID         string          `json:"id"`
	Type       string          `json:"_type"`
	Title      string          `json:"title"`
	URL        string          `json:"url"`
	WebpageURL string          `json:"webpage_url"`
	Uploader   string          `json:"uploader"`
	Channel    string          `json:"channel"`
	LiveStatus string          `json:"live_status"`
	Entries    []*Info         `json:"entries,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// IsPlaylist reports whether yt-dlp tagged the object as a playlist.
func (i *Info) IsPlaylist() bool { return i.Type == "playlist" }

// IsTransparent reports whether the object only points at another URL that
// must be probed on its own.
func (i *Info) IsTransparent() bool { return i.Type == "url_transparent" }

// HasEntries distinguishes a container (even an empty one) from a single item.
func (i *Info) HasEntries() bool { return i.Entries != nil }

// ParseInfo decodes one --dump-single-json document.
func ParseInfo(raw []byte) (*Info, error) {
	raw = bytes.TrimSpace(raw)
	info := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("ytdlp: parse json: %w", err)
	}
	return info, nil
}

// Probe runs yt-dlp in flat metadata mode and returns the raw JSON document.
// It uses: --dump-single-json --flat-playlist --match-filter <LiveFilter>
func (c *Client) Probe(ctx context.Context, url string, extraArgs ...string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--dump-single-json", "--flat-playlist", "--match-filter", LiveFilter}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, nil, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return bytes.TrimSpace(stdout), nil
}

// GetInfo probes url and parses the result.
func (c *Client) GetInfo(ctx context.Context, url string, extraArgs ...string) (*Info, error) {
	raw, err := c.Probe(ctx, url, extraArgs...)
	if err != nil {
		return nil, err
	}
	return ParseInfo(raw)
}

// Title returns `yt-dlp --get-title` for url.
func (c *Client) Title(ctx context.Context, url string, extraArgs ...string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--get-title"}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, nil, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}
