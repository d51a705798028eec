package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/platform/logger"
)

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// RunnerConfigFrom converts application configuration.
func RunnerConfigFrom(cfg config.TaskConfig) RunnerConfig {
	return RunnerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
	}
}

// Runner accepts tasks and executes them in the background.
type Runner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

var _ Submitter = (*Runner)(nil)

// NewRunner creates a stopped runner. If log is nil, slog.Default() is used.
func NewRunner(cfg RunnerConfig, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "task_runner")
	queue := NewTaskQueue(cfg.QueueSize, log)
	return &Runner{
		queue:  queue,
		pool:   NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, log),
		logger: log,
	}
}

// SetErrorHandler sets a callback for failed tasks. Must be called before Start.
func (r *Runner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit queues task without blocking. Tasks may be submitted before Start;
// they run once the workers are up.
func (r *Runner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		logger.FromContextOrDefault(ctx, r.logger).WarnContext(ctx, "task rejected",
			"task_id", task.ID().String(),
			"task_type", task.Type(),
			"error", err)
		return fmt.Errorf("submit %s task: %w", task.Type(), err)
	}
	return nil
}

// Start launches the workers. Calling it twice has no effect.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true
	r.pool.Start()
}

// Stop closes the queue, cancels in-flight tasks, and waits for the workers.
// Queued tasks that have not started are dropped.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true
	r.queue.Close()
	if r.started {
		r.pool.Stop()
	}
}

// Run starts the runner and blocks until ctx is done, then stops it.
func (r *Runner) Run(ctx context.Context) error {
	r.Start()
	<-ctx.Done()
	r.Stop()
	return nil
}
