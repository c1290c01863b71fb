// Package dispatch downloads resolved entries and produces the single
// artifact a job delivers.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"thirdcoast.systems/fetchbox/internal/archive"
	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/jobs"
	"thirdcoast.systems/fetchbox/internal/resolver"
	"thirdcoast.systems/fetchbox/internal/site"
	"thirdcoast.systems/fetchbox/pkg/utils/filename"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

//go:generate mockgen -destination=mocks/mock_dispatch.go -package=mocks thirdcoast.systems/fetchbox/internal/dispatch Downloader,Fetcher

// OutputTemplate names files after uploader and title inside the job directory.
const OutputTemplate = "%(uploader,channel)s - %(title)s.%(ext)s"

// PaceThreshold is the collection size above which requests are spaced out.
const PaceThreshold = 50

// titleBudget leaves room for the random suffix and ".zip" in a path element.
const titleBudget = 200

// Downloader runs the extraction utility.
type Downloader interface {
	Download(ctx context.Context, req ytdlp.DownloadRequest) error
}

// Fetcher downloads a direct media URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, outPath string) error
}

type Strategy struct {
	Root       string
	Downloader Downloader
	Fetcher    Fetcher
	Registry   *jobs.Registry
	Policy     format.Policy
	Cookies    site.Cookies

	suffix func(n int) string
}

func (s *Strategy) randomSuffix(n int) string {
	if s.suffix != nil {
		return s.suffix(n)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:n]
}

// Run downloads res for the job and binds the resulting artifact.
func (s *Strategy) Run(ctx context.Context, jobID, inputURL string, res resolver.Result, opts format.Options) (string, error) {
	if len(res.Entries) == 0 {
		return "", fetcherr.New(fetcherr.ErrResolution, "No downloadable videos found.")
	}
	if err := s.Registry.Advance(jobID, jobs.StateDownloading); err != nil {
		return "", err
	}

	var (
		artifact string
		err      error
	)
	switch {
	case res.Entries[0].Direct:
		artifact, err = s.direct(ctx, jobID, res.Entries[0])
	case res.Single():
		artifact, err = s.single(ctx, jobID, res.Entries[0], opts)
	default:
		artifact, err = s.collection(ctx, jobID, inputURL, res, opts)
	}
	if err != nil {
		return "", err
	}

	if err := s.Registry.Bind(jobID, artifact); err != nil {
		return "", err
	}
	if info, statErr := os.Stat(artifact); statErr == nil {
		slog.Info("dispatch: artifact ready", "job_id", jobID, "path", artifact, "size", humanize.Bytes(uint64(info.Size())))
	}
	return artifact, nil
}

// makeDir creates <root>/<sanitized title>-<suffix> and hands it to the job.
func (s *Strategy) makeDir(jobID, title, fallback string, suffixLen int) (string, error) {
	name := filename.SanitizeOr(title, fallback, titleBudget) + "-" + s.randomSuffix(suffixLen)
	dir := filepath.Join(s.Root, name)
	if err := s.Registry.SetDir(jobID, dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dispatch: create job dir: %w", err)
	}
	return dir, nil
}

func (s *Strategy) direct(ctx context.Context, jobID string, e resolver.Entry) (string, error) {
	title := filename.SanitizeOr(e.Title, "download", titleBudget)
	dir, err := s.makeDir(jobID, title, "download", 8)
	if err != nil {
		return "", err
	}

	out := filepath.Join(dir, title+".mp4")
	if err := s.Fetcher.Fetch(ctx, e.URL, out); err != nil {
		return "", classify(err)
	}
	if _, err := os.Stat(out); err != nil {
		return "", fetcherr.Wrap(fetcherr.ErrMissingArtifact, "Could not locate downloaded media file.", err)
	}
	return out, nil
}

func (s *Strategy) single(ctx context.Context, jobID string, e resolver.Entry, opts format.Options) (string, error) {
	dir, err := s.makeDir(jobID, e.Title, "download", 16)
	if err != nil {
		return "", err
	}

	url := e.PageURL()
	sel := s.Policy.Select(url, opts, e.Title)
	if sel.ThumbnailSkipped != "" {
		slog.Info("dispatch: skipping thumbnail embedding", "job_id", jobID, "reason", sel.ThumbnailSkipped)
	}

	err = s.Downloader.Download(ctx, ytdlp.DownloadRequest{
		URLs:           []string{url},
		OutputTemplate: filepath.Join(dir, OutputTemplate),
		FormatArgs:     sel.Args,
		CookieArgs:     s.Cookies.ArgsFor(url),
		Log:            jobLogger(jobID),
	})
	if err != nil {
		return "", classify(err)
	}

	files, err := mediaFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fetcherr.New(fetcherr.ErrMissingArtifact, "Could not locate downloaded media file.")
	}
	return files[0], nil
}

func (s *Strategy) collection(ctx context.Context, jobID, inputURL string, res resolver.Result, opts format.Options) (string, error) {
	dir, err := s.makeDir(jobID, res.Meta.Title, "playlist", 16)
	if err != nil {
		return "", err
	}

	urls := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		urls = append(urls, e.BatchURL())
	}

	sel := s.Policy.Select(inputURL, opts, "")
	runErr := s.Downloader.Download(ctx, ytdlp.DownloadRequest{
		URLs:           urls,
		OutputTemplate: filepath.Join(dir, OutputTemplate),
		FormatArgs:     sel.Args,
		CookieArgs:     s.Cookies.ArgsFor(inputURL),
		Pace:           len(urls) > PaceThreshold,
		IgnoreErrors:   true,
		Log:            jobLogger(jobID),
	})
	if runErr != nil && ctx.Err() != nil {
		return "", classify(runErr)
	}

	files, err := mediaFiles(dir)
	if err != nil {
		return "", err
	}
	if runErr != nil {
		if len(files) == 0 {
			return "", classify(runErr)
		}
		slog.Warn("dispatch: collection finished with failures",
			"job_id", jobID, "entries", len(urls), "downloaded", len(files), "error", runErr)
	}

	switch len(files) {
	case 0:
		return "", fetcherr.New(fetcherr.ErrMissingArtifact, "Could not find downloaded file in playlist directory.")
	case 1:
		return files[0], nil
	}

	zipPath := dir + ".zip"
	n, err := archive.ZipDir(ctx, dir, zipPath)
	if err != nil {
		return "", fmt.Errorf("dispatch: %w", err)
	}
	slog.Info("dispatch: archived collection", "job_id", jobID, "files", n, "path", zipPath)
	return zipPath, nil
}

// mediaFiles lists finished media files in dir, sorted by name.
func mediaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dispatch: read job dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && ytdlp.IsMediaFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func jobLogger(jobID string) func(stream, line string) {
	return func(stream, line string) {
		if stream == "stderr" {
			slog.Info("ytdlp", "job_id", jobID, "stream", stream, "line", line)
			return
		}
		slog.Debug("ytdlp", "job_id", jobID, "stream", stream, "line", line)
	}
}
