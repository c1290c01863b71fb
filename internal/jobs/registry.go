// Package jobs tracks in-flight and ready download jobs until they are
// delivered or expire.
package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownJob   = errors.New("jobs: unknown job")
	ErrAlreadyBound = errors.New("jobs: artifact already bound")
)

type State int

const (
	StateCreated State = iota
	StateResolved
	StateDownloading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateResolved:
		return "resolved"
	case StateDownloading:
		return "downloading"
	case StateReady:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Job is a snapshot; the registry owns the live record.
type Job struct {
	ID        string
	State     State
	Dir       string
	Artifact  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Paths returns the filesystem paths the job owns, artifact first.
func (j Job) Paths() []string {
	var out []string
	if j.Artifact != "" && !within(j.Dir, j.Artifact) {
		out = append(out, j.Artifact)
	}
	if j.Dir != "" {
		out = append(out, j.Dir)
	}
	return out
}

type Registry struct {
	mu   sync.Mutex
	jobs map[string]*Job

	ttl   time.Duration
	roots []string
	now   func() time.Time
}

// NewRegistry returns a registry whose jobs live for ttl and may only own
// paths under roots.
func NewRegistry(ttl time.Duration, roots ...string) *Registry {
	return &Registry{
		jobs:  make(map[string]*Job),
		ttl:   ttl,
		roots: roots,
		now:   time.Now,
	}
}

// Create registers a new job with a fresh id. Its expiry deadline is set
// once it becomes ready.
func (r *Registry) Create() Job {
	j := &Job{
		ID:        uuid.NewString(),
		State:     StateCreated,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()

	return *j
}

// SetDir records the working directory the job owns.
func (r *Registry) SetDir(id, dir string) error {
	if err := r.checkPath(dir); err != nil {
		return err
	}
	return r.update(id, func(j *Job) error {
		j.Dir = dir
		return nil
	})
}

// Advance moves a job forward to state. Ready is reached only through Bind.
func (r *Registry) Advance(id string, state State) error {
	return r.update(id, func(j *Job) error {
		if state == StateReady || state < j.State {
			return fmt.Errorf("jobs: cannot move %s job to %s", j.State, state)
		}
		j.State = state
		return nil
	})
}

// Bind attaches the finished artifact, marks the job ready and starts its
// TTL. A job carries at most one artifact.
func (r *Registry) Bind(id, artifact string) error {
	if err := r.checkPath(artifact); err != nil {
		return err
	}
	return r.update(id, func(j *Job) error {
		if j.Artifact != "" {
			return ErrAlreadyBound
		}
		j.Artifact = artifact
		j.State = StateReady
		j.ExpiresAt = r.now().Add(r.ttl)
		return nil
	})
}

// Get returns a snapshot of the job.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Take removes and returns a ready, unexpired job. Whoever takes a job is
// responsible for calling Release or Return.
func (r *Registry) Take(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok || j.State != StateReady || !r.now().Before(j.ExpiresAt) {
		return Job{}, false
	}
	delete(r.jobs, id)
	return *j, true
}

// Return puts back a job whose delivery failed, unless it expired meanwhile.
func (r *Registry) Return(j Job) {
	if !r.now().Before(j.ExpiresAt) {
		r.Release(j)
		return
	}
	r.mu.Lock()
	if _, exists := r.jobs[j.ID]; !exists {
		cp := j
		r.jobs[j.ID] = &cp
	}
	r.mu.Unlock()
}

// Release deletes the files of a job that is no longer registered.
func (r *Registry) Release(j Job) {
	for _, p := range j.Paths() {
		if err := r.removePath(p); err != nil {
			slog.Warn("jobs: cleanup failed", "job_id", j.ID, "path", p, "error", err)
		}
	}
}

// Discard drops a job and deletes whatever it owns. Used on failure.
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	j, ok := r.jobs[id]
	if ok {
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	if ok {
		r.Release(*j)
	}
}

// Expire removes every ready job whose deadline is not after now and deletes
// its files. Jobs still in flight are left to the directory sweep. It returns
// the expired jobs.
func (r *Registry) Expire(now time.Time) []Job {
	var expired []Job

	r.mu.Lock()
	for id, j := range r.jobs {
		if j.State != StateReady || now.Before(j.ExpiresAt) {
			continue
		}
		expired = append(expired, *j)
		delete(r.jobs, id)
	}
	r.mu.Unlock()

	for _, j := range expired {
		slog.Info("jobs: expired", "job_id", j.ID, "state", j.State.String())
		r.Release(j)
	}
	return expired
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *Registry) update(id string, fn func(*Job) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, id)
	}
	return fn(j)
}
