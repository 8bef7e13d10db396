package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docaudit/internal/report"
)

// JobStatus represents the state of a check job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusDiscovering JobStatus = "discovering"
	StatusChecking    JobStatus = "checking"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single documentation-set check.
type Job struct {
	mu sync.Mutex

	ID   string `json:"job_id"`
	Root string `json:"root"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	report *report.Report
	errors []string
}

// Progress tracks how many topics have been checked.
type Progress struct {
	TotalDocuments   int      `json:"total_documents"`
	DocumentsChecked int      `json:"documents_checked"`
	Errors           []string `json:"errors"`
}

// NewJob returns a queued job for root with a fresh ID.
func NewJob(root string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Root:      root,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalDocuments records how many topics discovery found.
func (j *Job) SetTotalDocuments(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocuments = n
	j.UpdatedAt = time.Now()
}

// IncrDocumentsChecked atomically increments the checked count.
func (j *Job) IncrDocumentsChecked() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsChecked++
	j.UpdatedAt = time.Now()
}

// SetReport stores the finished report.
func (j *Job) SetReport(r report.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.report = &r
	j.UpdatedAt = time.Now()
}

// Report returns the finished report, or nil while the job is running.
func (j *Job) Report() *report.Report {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string          `json:"job_id"`
	Root     string          `json:"root"`
	Status   JobStatus       `json:"status"`
	Phase    string          `json:"phase"`
	Progress Progress        `json:"progress"`
	Pass     *bool           `json:"pass,omitempty"`
	Summary  *report.Summary `json:"summary,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:     j.ID,
		Root:   j.Root,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalDocuments:   j.Progress.TotalDocuments,
			DocumentsChecked: j.Progress.DocumentsChecked,
			Errors:           append([]string{}, errs...),
		},
	}
	if j.report != nil {
		pass := j.report.Pass
		summary := j.report.Summary
		snap.Pass = &pass
		snap.Summary = &summary
	}
	return snap
}
