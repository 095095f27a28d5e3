// Package tasks runs deferred work on a single background worker with
// explicit completion and failure observability. It replaces detached
// fire-and-forget calls whose outcome would only be visible by accident.
package tasks

import (
	"context"
	"errors"
	"sync"

	obsmetrics "github.com/balfaz610/report-week/internal/observability/metrics"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// ErrQueueClosed is returned when work is submitted after shutdown began.
var ErrQueueClosed = errors.New("task queue closed")

// ErrQueueFull is returned when the queue has no capacity left.
var ErrQueueFull = errors.New("task queue full")

// Task is a named unit of deferred work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Runner struct {
	log     *zap.Logger
	metrics *obsmetrics.Metrics

	mu     sync.Mutex
	queue  chan Task
	closed bool
	done   chan struct{}
}

func NewRunner(queueSize int, log *zap.Logger, m *obsmetrics.Metrics) *Runner {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Runner{
		log:     log.Named("tasks"),
		metrics: m,
		queue:   make(chan Task, queueSize),
		done:    make(chan struct{}),
	}
}

// Enqueue submits a task without blocking the caller.
func (r *Runner) Enqueue(task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrQueueClosed
	}
	select {
	case r.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start consumes tasks until Shutdown is called. Each task gets the given
// base context; task failures are logged and counted, never fatal.
func (r *Runner) Start(ctx context.Context) {
	defer close(r.done)
	for task := range r.queue {
		r.runOne(ctx, task)
	}
}

func (r *Runner) runOne(ctx context.Context, task Task) {
	err := task.Run(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		r.log.Error("background task failed", zap.String("task", task.Name), zap.Error(err))
	} else {
		r.log.Debug("background task done", zap.String("task", task.Name))
	}
	if r.metrics != nil {
		r.metrics.BackgroundTasks.WithLabelValues(outcome).Inc()
	}
}

// Shutdown stops accepting work and waits for queued tasks to drain, or for
// the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
