// Package registry tracks in-flight and finished conversion jobs. Job state
// lives only as long as the process; a restart forgets everything, by design.
package registry

import (
	"sync"
	"time"

	"github.com/mesyatsya/converter/internal/model"
)

// Registry is the single owner of all job records. Callers only ever receive
// copies; every mutation goes through a registry method so that concurrent
// pollers never observe a half-written transition.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{jobs: make(map[string]*model.Job)}
}

// Create stores a new job record in processing state.
func (r *Registry) Create(job model.Job) {
	job.Status = model.JobStatusProcessing
	job.Error = ""
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.TaskID] = &job
}

// Get returns a copy of the job for the given task ID.
func (r *Registry) Get(taskID string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[taskID]
	if !ok {
		return model.Job{}, false
	}
	return *job, true
}

// Exists reports whether a job is currently registered.
func (r *Registry) Exists(taskID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.jobs[taskID]
	return ok
}

// MarkCompleted moves a job to the completed state. It reports false when
// the job is gone or already terminal; terminal states never change again.
func (r *Registry) MarkCompleted(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[taskID]
	if !ok || job.Status.Terminal() {
		return false
	}
	now := time.Now()
	job.Status = model.JobStatusCompleted
	job.Error = ""
	job.CompletedAt = &now
	return true
}

// MarkError moves a job to the error state with the given diagnostic. An
// empty message is replaced so the error field stays non-empty exactly when
// the state is error.
func (r *Registry) MarkError(taskID, message string) bool {
	if message == "" {
		message = "unknown conversion error"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[taskID]
	if !ok || job.Status.Terminal() {
		return false
	}
	now := time.Now()
	job.Status = model.JobStatusError
	job.Error = message
	job.CompletedAt = &now
	return true
}

// Delete removes a job and returns its last snapshot so the caller can clean
// up the files it pointed at.
func (r *Registry) Delete(taskID string) (model.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[taskID]
	if !ok {
		return model.Job{}, false
	}
	delete(r.jobs, taskID)
	return *job, true
}

// Len returns the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
