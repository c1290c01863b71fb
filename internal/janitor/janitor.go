// Package janitor expires jobs and sweeps stale files out of the storage roots.
package janitor

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/fetchbox/internal/jobs"
)

type Janitor struct {
	Roots          []string
	TTL            time.Duration
	SweepInterval  time.Duration
	ExpiryInterval time.Duration
	Registry       *jobs.Registry

	now func() time.Time
}

func (j *Janitor) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

// Run sweeps once, then keeps expiring jobs and sweeping roots until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	j.Sweep()

	sweep := time.NewTicker(positive(j.SweepInterval, 3*time.Hour))
	defer sweep.Stop()
	expiry := time.NewTicker(positive(j.ExpiryInterval, time.Minute))
	defer expiry.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-expiry.C:
			if j.Registry != nil {
				j.Registry.Expire(j.clock())
			}
		case <-sweep.C:
			j.Sweep()
		}
	}
}

// SweepResult summarizes one pass over the roots.
type SweepResult struct {
	Removed int
	Bytes   int64
}

// Sweep removes every direct child of each root whose modification time is
// older than the TTL. Missing roots are skipped.
func (j *Janitor) Sweep() SweepResult {
	var total SweepResult
	cutoff := j.clock().Add(-j.TTL)

	for _, root := range j.Roots {
		res, err := sweepRoot(root, cutoff)
		total.Removed += res.Removed
		total.Bytes += res.Bytes
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Error("janitor: sweep failed", "root", root, "error", err)
		}
	}

	if total.Removed > 0 {
		slog.Info("janitor: removed stale files", "count", total.Removed, "size", humanize.Bytes(uint64(total.Bytes)))
	}
	return total
}

func sweepRoot(root string, cutoff time.Time) (SweepResult, error) {
	var res SweepResult

	entries, err := os.ReadDir(root)
	if err != nil {
		return res, err
	}

	var errs []error
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		info, err := os.Lstat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		size := diskUsage(path)
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Removed++
		res.Bytes += size
	}
	return res, errors.Join(errs...)
}

func diskUsage(path string) int64 {
	var n int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				n += info.Size()
			}
		}
		return nil
	})
	return n
}

func positive(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
