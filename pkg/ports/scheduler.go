package ports

import (
	"context"
	"time"
)

// Task is a unit of deferred work.
type Task func(ctx context.Context) error

// Handle cancels a scheduled task.
type Handle interface {
	// Cancel prevents the task from running. Returns false if it already ran or was cancelled.
	Cancel() bool
}

// Scheduler runs deferred work after the current synchronous mutation completes.
// No ordering is guaranteed between tasks beyond their delay.
type Scheduler interface {
	After(delay time.Duration, task Task) Handle
}
