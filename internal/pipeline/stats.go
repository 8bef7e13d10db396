package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/docaudit/internal/report"
)

// run is one finished check as seen by CheckStats.
type run struct {
	finished time.Time
	elapsed  time.Duration
	pass     bool
	summary  report.Summary
}

// perDocumentMs is the run's cost per checked topic; zero for empty runs.
func (r run) perDocumentMs() float64 {
	if r.summary.Documents == 0 {
		return 0
	}
	return float64(r.elapsed.Milliseconds()) / float64(r.summary.Documents)
}

// StatsSnapshot aggregates the check runs inside the rolling window.
type StatsSnapshot struct {
	Runs       int `json:"runs"`
	PassedRuns int `json:"passed_runs"`
	FailedRuns int `json:"failed_runs"`

	Documents       int `json:"documents"`
	FailedDocuments int `json:"failed_documents"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`

	P50RunMs float64 `json:"p50_run_ms"`
	P95RunMs float64 `json:"p95_run_ms"`

	// Throughput over every run in the window, weighted by topic count.
	MsPerDocument      float64 `json:"ms_per_document"`
	DocumentsPerSecond float64 `json:"documents_per_second"`
	// Slowest per-topic cost among runs that checked at least one topic.
	P95MsPerDocument float64 `json:"p95_ms_per_document"`
}

// CheckStats tracks recent check runs within a rolling window.
type CheckStats struct {
	mu     sync.Mutex
	runs   []run
	maxAge time.Duration
}

func NewCheckStats(maxAge time.Duration) *CheckStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CheckStats{
		runs:   make([]run, 0, 256),
		maxAge: maxAge,
	}
}

// Record adds one finished run and the report it produced.
func (s *CheckStats) Record(elapsed time.Duration, rep report.Report) {
	if elapsed < 0 {
		elapsed = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.runs = append(s.runs, run{
		finished: now,
		elapsed:  elapsed,
		pass:     rep.Pass,
		summary:  rep.Summary,
	})
}

func (s *CheckStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.runs) == 0 {
		return StatsSnapshot{}
	}

	var snap StatsSnapshot
	var totalMs int64
	runMs := make([]float64, 0, len(s.runs))
	docMs := make([]float64, 0, len(s.runs))
	for _, r := range s.runs {
		snap.Runs++
		if r.pass {
			snap.PassedRuns++
		} else {
			snap.FailedRuns++
		}
		snap.Documents += r.summary.Documents
		snap.FailedDocuments += r.summary.Failed
		snap.Errors += r.summary.Errors
		snap.Warnings += r.summary.Warnings

		ms := r.elapsed.Milliseconds()
		totalMs += ms
		runMs = append(runMs, float64(ms))
		if r.summary.Documents > 0 {
			docMs = append(docMs, r.perDocumentMs())
		}
	}
	slices.Sort(runMs)
	slices.Sort(docMs)

	snap.P50RunMs = percentile(runMs, 50)
	snap.P95RunMs = percentile(runMs, 95)
	snap.P95MsPerDocument = percentile(docMs, 95)
	if snap.Documents > 0 {
		snap.MsPerDocument = float64(totalMs) / float64(snap.Documents)
	}
	if totalMs > 0 {
		snap.DocumentsPerSecond = float64(snap.Documents) * 1000 / float64(totalMs)
	}
	return snap
}

func (s *CheckStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.runs = slices.DeleteFunc(s.runs, func(r run) bool {
		return r.finished.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}
