package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/jobs"
	"thirdcoast.systems/fetchbox/internal/resolver"
)

type fakeResolver struct {
	gotURL string
	res    resolver.Result
	err    error
}

func (f *fakeResolver) Resolve(_ context.Context, url string) (resolver.Result, error) {
	f.gotURL = url
	return f.res, f.err
}

type fakeDispatcher struct {
	registry *jobs.Registry
	root     string
	err      error
}

func (f *fakeDispatcher) Run(_ context.Context, jobID, _ string, _ resolver.Result, _ format.Options) (string, error) {
	dir := filepath.Join(f.root, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := f.registry.SetDir(jobID, dir); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	artifact := filepath.Join(dir, "Someone - Clip.mp4")
	if err := os.WriteFile(artifact, []byte("mp4"), 0o644); err != nil {
		return "", err
	}
	return artifact, f.registry.Bind(jobID, artifact)
}

func newService(t *testing.T) (*Service, *fakeResolver, *fakeDispatcher, string) {
	root := t.TempDir()
	reg := jobs.NewRegistry(time.Hour, root)
	res := &fakeResolver{res: resolver.Result{Entries: []resolver.Entry{{ID: "abc123", URL: "https://example.com/watch?v=abc123"}}}}
	disp := &fakeDispatcher{registry: reg, root: root}
	return &Service{Registry: reg, Resolver: res, Dispatcher: disp}, res, disp, root
}

func TestExtractURL(t *testing.T) {
	u, err := ExtractURL("check this out https://example.com/watch?v=abc123 !!")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/watch?v=abc123", u)

	_, err = ExtractURL("")
	require.ErrorIs(t, err, fetcherr.ErrClientInput)
	require.Equal(t, "Missing mediaUrl", err.Error())

	_, err = ExtractURL("no links here, just ftp://example.com")
	require.ErrorIs(t, err, fetcherr.ErrClientInput)
	require.Equal(t, "No valid URL found in the provided text.", err.Error())
}

func TestSubmit_DeliversOnce(t *testing.T) {
	svc, res, _, _ := newService(t)

	handle, err := svc.Submit(context.Background(), "look https://example.com/watch?v=abc123 wow", format.Options{Container: "mp4"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/watch?v=abc123", res.gotURL)
	require.Regexp(t, `^/file/[0-9a-f-]{36}$`, handle)

	id := filepath.Base(handle)
	j, err := svc.Open(id)
	require.NoError(t, err)
	require.FileExists(t, j.Artifact)

	svc.Delivered(j)
	require.NoFileExists(t, j.Artifact)

	_, err = svc.Open(id)
	require.ErrorIs(t, err, fetcherr.ErrNotFound)
	require.Equal(t, "File not found or job has expired.", err.Error())
}

func TestSubmit_FailedDeliveryCanRetry(t *testing.T) {
	svc, _, _, _ := newService(t)
	handle, err := svc.Submit(context.Background(), "https://example.com/watch?v=abc123", format.Options{Container: "mp4"})
	require.NoError(t, err)

	id := filepath.Base(handle)
	j, err := svc.Open(id)
	require.NoError(t, err)
	svc.Failed(j, errors.New("client went away"))

	_, err = svc.Open(id)
	require.NoError(t, err)
}

func TestSubmit_ResolutionFailureDiscardsJob(t *testing.T) {
	svc, res, _, _ := newService(t)
	res.err = fetcherr.New(fetcherr.ErrResolution, "No downloadable videos found.")

	_, err := svc.Submit(context.Background(), "https://example.com/empty", format.Options{Container: "mp4"})
	require.ErrorIs(t, err, fetcherr.ErrResolution)
	require.Zero(t, svc.Registry.Len())
}

func TestSubmit_DownloadFailureRemovesDir(t *testing.T) {
	svc, _, disp, root := newService(t)
	disp.err = fetcherr.New(fetcherr.ErrFatal, "yt-dlp exited with code 1. Stderr: nope")

	_, err := svc.Submit(context.Background(), "https://example.com/watch?v=abc123", format.Options{Container: "mp4"})
	require.ErrorIs(t, err, fetcherr.ErrFatal)
	require.Zero(t, svc.Registry.Len())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestSubmit_BadInput(t *testing.T) {
	svc, _, _, _ := newService(t)
	_, err := svc.Submit(context.Background(), "nothing to see", format.Options{Container: "mp4"})
	require.True(t, fetcherr.IsClient(err))
	require.Zero(t, svc.Registry.Len())
}

func TestOpen_UnknownHandle(t *testing.T) {
	svc, _, _, _ := newService(t)
	_, err := svc.Open("does-not-exist")
	require.ErrorIs(t, err, fetcherr.ErrNotFound)
}
