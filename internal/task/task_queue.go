package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Queue errors
var (
	// ErrQueueClosed is returned when enqueuing to a closed queue
	ErrQueueClosed = errors.New("task queue is closed")

	// ErrQueueFull is returned when the queue buffer has no room
	ErrQueueFull = errors.New("task queue is full")
)

// TaskQueue is a bounded, non-blocking task buffer.
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	logger *slog.Logger
	closed bool
}

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue that holds at most size tasks.
func NewTaskQueue(size int, log *slog.Logger) *TaskQueue {
	if size < 1 {
		size = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: log,
	}
}

// Enqueue adds task without blocking.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID().String(),
			"task_type", task.Type(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close closes the queue. Workers drain what is already buffered.
// Safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel implements TaskQueueReader.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
