// Package pipeline runs one fetch request end to end: extract the URL,
// resolve it, download, and hand back a one-time job handle.
package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/jobs"
	"thirdcoast.systems/fetchbox/internal/resolver"
)

var urlRe = regexp.MustCompile(`https?://\S+`)

// ExtractURL returns the first http(s) URL found in free-form text.
func ExtractURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fetcherr.New(fetcherr.ErrClientInput, "Missing mediaUrl")
	}
	u := urlRe.FindString(raw)
	if u == "" {
		return "", fetcherr.New(fetcherr.ErrClientInput, "No valid URL found in the provided text.")
	}
	return u, nil
}

// Resolver is satisfied by *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, url string) (resolver.Result, error)
}

// Dispatcher is satisfied by *dispatch.Strategy.
type Dispatcher interface {
	Run(ctx context.Context, jobID, inputURL string, res resolver.Result, opts format.Options) (string, error)
}

type Service struct {
	Registry   *jobs.Registry
	Resolver   Resolver
	Dispatcher Dispatcher
}

// HandlePath is the retrieval path for a job id.
func HandlePath(id string) string {
	return "/file/" + id
}

// Submit processes raw input synchronously and returns the retrieval path.
// On failure the job and anything it created are discarded.
func (s *Service) Submit(ctx context.Context, raw string, opts format.Options) (string, error) {
	url, err := ExtractURL(raw)
	if err != nil {
		return "", err
	}

	job := s.Registry.Create()
	log := slog.With("job_id", job.ID)
	start := time.Now()
	log.Info("pipeline: job created", "url", url, "format", opts.Container)

	if err := s.run(ctx, job.ID, url, opts); err != nil {
		log.Error("pipeline: job failed", "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
		s.Registry.Discard(job.ID)
		return "", err
	}

	log.Info("pipeline: job ready", "elapsed", time.Since(start).Round(time.Millisecond))
	return HandlePath(job.ID), nil
}

func (s *Service) run(ctx context.Context, jobID, url string, opts format.Options) error {
	res, err := s.Resolver.Resolve(ctx, url)
	if err != nil {
		return err
	}
	if err := s.Registry.Advance(jobID, jobs.StateResolved); err != nil {
		return err
	}
	slog.Info("pipeline: resolved", "job_id", jobID, "entries", len(res.Entries), "collection", !res.Single())

	if _, err := s.Dispatcher.Run(ctx, jobID, url, res, opts); err != nil {
		return err
	}
	return nil
}

// Open claims a ready job for delivery. The caller must pass the job to
// Delivered or Failed afterwards.
func (s *Service) Open(id string) (jobs.Job, error) {
	j, ok := s.Registry.Take(id)
	if !ok {
		return jobs.Job{}, fetcherr.New(fetcherr.ErrNotFound, "File not found or job has expired.")
	}
	return j, nil
}

// Delivered removes the files of a job that was streamed successfully.
func (s *Service) Delivered(j jobs.Job) {
	slog.Info("pipeline: delivered", "job_id", j.ID)
	s.Registry.Release(j)
}

// Failed puts a job back after an aborted delivery so it can be retried
// until it expires.
func (s *Service) Failed(j jobs.Job, cause error) {
	slog.Warn("pipeline: delivery failed", "job_id", j.ID, "error", cause)
	s.Registry.Return(j)
}
