// Package analysis implements the asynchronous contract-analysis pipeline:
// an in-memory job registry polled by clients, a bounded worker pool, and the
// multi-stage runner that drives the external model calls.
package analysis

import "sync"

// Status is a job's lifecycle state.
type Status string

const (
	// StatusProcessing means the job is queued or running.
	StatusProcessing Status = "processing"
	// StatusCompleted is terminal; Result is set.
	StatusCompleted Status = "completed"
	// StatusFailed is terminal; Error is set.
	StatusFailed Status = "failed"
)

// Job is the polled view of one analysis run. Once Status is terminal the
// record never changes again.
type Job struct {
	Status   Status  `json:"status"`
	Stage    int     `json:"stage"`
	Progress string  `json:"progress"`
	Result   *Result `json:"result,omitempty"`
	Error    string  `json:"error,omitempty"`

	// errorDetail keeps the full diagnostic text server-side; it is logged,
	// never serialized to clients.
	errorDetail string
}

// Registry maps job id to job state. Writes come from the single worker
// executing the job; reads come from any number of status polls. Records are
// kept for the process lifetime.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create inserts a new processing record at stage 0.
func (r *Registry) Create(id, progress string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &Job{Status: StatusProcessing, Stage: 0, Progress: progress}
}

// Update advances a non-terminal record's stage and progress message.
// Returns false if the job is unknown or already terminal.
func (r *Registry) Update(id string, stage int, progress string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != StatusProcessing {
		return false
	}
	j.Stage = stage
	j.Progress = progress
	return true
}

// Complete transitions the job to completed with the merged result.
// Terminal states are sticky: returns false without mutating if the job is
// unknown or already terminal.
func (r *Registry) Complete(id string, result *Result, progress string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != StatusProcessing {
		return false
	}
	j.Status = StatusCompleted
	j.Progress = progress
	j.Result = result
	return true
}

// Fail transitions the job to failed. summary is exposed via Get; detail is
// retained server-side only. Terminal states are sticky.
func (r *Registry) Fail(id, summary, detail, progress string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok || j.Status != StatusProcessing {
		return false
	}
	j.Status = StatusFailed
	j.Progress = progress
	j.Error = summary
	j.errorDetail = detail
	return true
}

// Get returns a snapshot of the job, or ok false if the id is unknown.
// The snapshot shares the (immutable once set) Result pointer.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}
