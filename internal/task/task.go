package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TypeDocumentSummary summarizes an uploaded document.
	TypeDocumentSummary = "document_summary"
)

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel so workers
// can consume tasks without being able to enqueue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter lets producers add tasks.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing.
	// Returns ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error

	// Close prevents further submissions.
	Close()
}

// Submitter accepts tasks for background execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}
