package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/report"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("check pipeline is shutting down")

// Orchestrator runs queued check jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	loader *loader.Loader
	stats  *CheckStats
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped and every send on or close of queue.
	mu      sync.Mutex
	stopped bool
}

// NewOrchestrator creates the pipeline. Call Start before submitting.
func NewOrchestrator(cfg config.Config, l *loader.Loader, stats *CheckStats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		loader: l,
		stats:  stats,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline. Later Submit calls fail with
// ErrStopped; calling Stop again is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling check run tracker.
func (o *Orchestrator) Stats() *CheckStats {
	return o.stats
}

// process runs one check job to completion.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "root", job.Root)
	start := time.Now()

	job.SetStatus(StatusDiscovering, "loading rules")
	rules, err := config.LoadRules(config.FindRules(job.Root, o.cfg.RulesPath))
	if err != nil {
		log.Error("rules load failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "discovering")
		return
	}

	job.SetStatus(StatusDiscovering, "discovering")
	checker := &Checker{
		Loader:      o.loader,
		Rules:       rules,
		WorkerCount: o.cfg.MaxConcurrentLoad,
		Log:         log,
		OnDiscovered: func(total int) {
			job.SetTotalDocuments(total)
			job.SetStatus(StatusChecking, "checking")
		},
		OnDocument: func(report.DocumentResult) {
			job.IncrDocumentsChecked()
		},
	}

	rep, err := checker.Check(ctx, job.Root)
	if err != nil {
		log.Error("check failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "checking")
		return
	}
	if rules.Strict {
		rep = rep.Strict()
	}

	elapsed := time.Since(start)
	if o.stats != nil {
		o.stats.Record(elapsed, rep)
	}
	job.SetReport(rep)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job complete", "pass", rep.Pass, "documents", rep.Summary.Documents, "duration", elapsed)
}
