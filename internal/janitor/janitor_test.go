package janitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/fetchbox/internal/jobs"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestSweep_RemovesOnlyStaleEntries(t *testing.T) {
	downloads := t.TempDir()
	uploads := t.TempDir()
	now := time.Now()

	staleDir := filepath.Join(downloads, "Old-0123456789abcdef")
	require.NoError(t, os.MkdirAll(staleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staleDir, "a.mp4"), make([]byte, 2048), 0o644))
	touch(t, staleDir, now.Add(-4*time.Hour))

	freshZip := filepath.Join(downloads, "New.zip")
	require.NoError(t, os.WriteFile(freshZip, []byte("PK"), 0o644))

	staleUpload := filepath.Join(uploads, "upload.bin")
	require.NoError(t, os.WriteFile(staleUpload, []byte("x"), 0o644))
	touch(t, staleUpload, now.Add(-5*time.Hour))

	j := &Janitor{
		Roots: []string{downloads, uploads, filepath.Join(t.TempDir(), "missing")},
		TTL:   3 * time.Hour,
		now:   func() time.Time { return now },
	}
	res := j.Sweep()
	require.Equal(t, 2, res.Removed)
	require.Equal(t, int64(2049), res.Bytes)

	_, err := os.Stat(staleDir)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(staleUpload)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshZip)
	require.NoError(t, err)
}

func TestRun_ExpiresJobsAndStops(t *testing.T) {
	root := t.TempDir()
	reg := jobs.NewRegistry(time.Millisecond, root)
	job := reg.Create()
	dir := filepath.Join(root, "job")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, reg.SetDir(job.ID, dir))
	file := filepath.Join(dir, "a.mp4")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.NoError(t, reg.Bind(job.ID, file))

	j := &Janitor{
		Roots:          []string{root},
		TTL:            time.Hour,
		SweepInterval:  time.Hour,
		ExpiryInterval: 5 * time.Millisecond,
		Registry:       reg,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	require.Eventually(t, func() bool { return reg.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}
