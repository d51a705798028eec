// Package task runs background work on a bounded in-memory queue served by a
// fixed pool of workers. Document summarization runs here so uploads return
// before the model answers. Tasks are not persisted; work queued at shutdown
// is dropped.
package task
