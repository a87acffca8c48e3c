// Package jobs runs fire-and-forget background work on a fixed pool of
// goroutines fed by a bounded in-memory queue.
//
// Submitting never blocks the caller: when the queue is full the job is
// rejected with ErrQueueFull and the caller decides whether to drop it.
// Jobs are not persisted and are lost if the process exits.
package jobs
