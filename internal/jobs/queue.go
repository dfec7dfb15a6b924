// Package jobs runs background work: a bounded worker pool and the
// scheduled citation refresh.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"brandwatch/internal/metrics"
)

var (
	ErrQueueFull   = errors.New("job queue is full")
	ErrQueueClosed = errors.New("job queue is not running")
)

// Job is a unit of work processed by the worker pool.
type Job struct {
	ID     string
	Source string
	Work   func(ctx context.Context) error
}

// Handle reports the outcome of a submitted job.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) finish(err error) {
	h.err = err
	close(h.done)
}

// Done is closed once the job has finished or was rejected.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the job's error. Only meaningful after Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the job finishes or ctx ends.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type queued struct {
	job    Job
	handle *Handle
}

// Stats exposes current queue counters.
type Stats struct {
	Length    int    `json:"length"`
	Capacity  int    `json:"capacity"`
	Workers   int    `json:"workers"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

// Queue is a bounded job queue with a fixed worker pool. Jobs run under
// the context passed to Start, never the submitter's.
type Queue struct {
	jobs      chan queued
	workers   int
	timeout   time.Duration
	running   bool
	closed    bool
	mu        sync.RWMutex
	wg        sync.WaitGroup
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewQueue creates a queue. A zero timeout lets jobs run until the root
// context ends.
func NewQueue(capacity, workers int, timeout time.Duration) *Queue {
	return &Queue{
		jobs:    make(chan queued, capacity),
		workers: workers,
		timeout: timeout,
	}
}

// Start launches the worker pool. When ctx ends the queue stops accepting
// jobs and anything still queued finishes with ErrQueueClosed.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.closed {
		return
	}
	q.running = true
	for range q.workers {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Submit queues a job without blocking. A job that cannot be queued gets
// a handle that is already done with ErrQueueFull or ErrQueueClosed.
func (q *Queue) Submit(j Job) *Handle {
	h := newHandle()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if !q.running {
		slog.Warn("job rejected, queue not running", "job", j.ID, "source", j.Source)
		h.finish(ErrQueueClosed)
		return h
	}

	select {
	case q.jobs <- queued{job: j, handle: h}:
	default:
		slog.Warn("job queue full, dropping job", "job", j.ID, "source", j.Source)
		metrics.RecordJob(j.Source, ErrQueueFull)
		h.finish(ErrQueueFull)
	}
	return h
}

// Stop stops accepting jobs and waits for queued ones to drain until ctx ends.
func (q *Queue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Stats returns current queue counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Length:    len(q.jobs),
		Capacity:  cap(q.jobs),
		Workers:   q.workers,
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
	}
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			q.abandon()
			return
		case item, ok := <-q.jobs:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				q.abandon()
				item.handle.finish(ErrQueueClosed)
				return
			}
			q.run(ctx, item)
		}
	}
}

// abandon stops intake and fails every job still waiting in the channel.
func (q *Queue) abandon() {
	q.mu.Lock()
	q.running = false
	q.mu.Unlock()

	for {
		select {
		case item, ok := <-q.jobs:
			if !ok {
				return
			}
			slog.Warn("job abandoned, queue context ended", "job", item.job.ID, "source", item.job.Source)
			item.handle.finish(ErrQueueClosed)
		default:
			return
		}
	}
}

func (q *Queue) run(ctx context.Context, item queued) {
	start := time.Now()
	j := item.job

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.ID, r)
		}

		q.processed.Add(1)
		if err != nil {
			q.failed.Add(1)
		}
		metrics.RecordJob(j.Source, err)

		attrs := []any{"job", j.ID, "source", j.Source, "duration_ms", time.Since(start).Milliseconds()}
		if err != nil {
			slog.Error("job failed", append(attrs, "error", err)...)
		} else {
			slog.Info("job finished", attrs...)
		}
		item.handle.finish(err)
	}()

	jobCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	err = j.Work(jobCtx)
}
