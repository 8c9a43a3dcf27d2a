// Package scheduler provides the cooperative deferred-work loop of a workspace.
//
// The loop keeps a logical clock. Hosts advance it from their event loop (or a ticker
// under the workspace lock); tests drain it explicitly. Tasks never run inside the
// call that scheduled them, which lets entity geometry settle before derived state is
// recomputed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/ports"
)

// NextTick is the delay hint for work that only has to wait for the current mutation.
const NextTick time.Duration = 0

// maxDrainRounds bounds Drain when tasks keep scheduling follow-up tasks.
const maxDrainRounds = 64

type entry struct {
	id        uint64
	due       time.Duration
	task      ports.Task
	cancelled bool
	done      bool
}

// Handle cancels a scheduled task.
type Handle struct {
	e *entry
}

// Cancel prevents the task from running. Returns false if it already ran or was cancelled.
func (h *Handle) Cancel() bool {
	if h == nil || h.e == nil || h.e.done || h.e.cancelled {
		return false
	}
	h.e.cancelled = true
	return true
}

// Loop is a single-threaded cooperative scheduler.
// It is not safe for concurrent use.
type Loop struct {
	now     time.Duration
	seq     uint64
	queue   []*entry
	logger  *slog.Logger
	onError func(ctx context.Context, err error)
}

// Option configures the Loop.
type Option func(*Loop)

// WithLogger configures a logger for task failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithErrorHandler registers a callback for failed or panicking tasks.
func WithErrorHandler(fn func(ctx context.Context, err error)) Option {
	return func(l *Loop) {
		l.onError = fn
	}
}

// NewLoop creates a loop whose clock starts at zero.
func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// After schedules task to run once the clock has advanced by at least delay.
// Tasks with the same due time run in scheduling order.
func (l *Loop) After(delay time.Duration, task ports.Task) ports.Handle {
	if delay < 0 {
		delay = 0
	}
	l.seq++
	e := &entry{id: l.seq, due: l.now + delay, task: task}

	i, _ := slices.BinarySearchFunc(l.queue, e, func(a, b *entry) int {
		if a.due != b.due {
			if a.due < b.due {
				return -1
			}
			return 1
		}
		if a.id < b.id {
			return -1
		}
		return 1
	})
	l.queue = slices.Insert(l.queue, i, e)
	return &Handle{e: e}
}

// Now returns the logical clock.
func (l *Loop) Now() time.Duration {
	return l.now
}

// Pending returns the number of tasks waiting to run.
func (l *Loop) Pending() int {
	n := 0
	for _, e := range l.queue {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d and runs every task that became due,
// including tasks those tasks schedule for the same instant. Returns the number of
// tasks run.
func (l *Loop) Advance(ctx context.Context, d time.Duration) int {
	if d > 0 {
		l.now += d
	}
	return l.runDue(ctx)
}

// Drain runs every pending task regardless of its delay, moving the clock to the last
// due time. Follow-up tasks scheduled while draining are run as well, up to a bounded
// number of rounds.
func (l *Loop) Drain(ctx context.Context) int {
	ran := 0
	for round := 0; round < maxDrainRounds && len(l.queue) > 0; round++ {
		last := l.queue[len(l.queue)-1]
		if last.due > l.now {
			l.now = last.due
		}
		ran += l.runDue(ctx)
	}
	if len(l.queue) > 0 {
		l.logger.Warn("Scheduler drain stopped with pending tasks", "pending", len(l.queue))
	}
	return ran
}

func (l *Loop) runDue(ctx context.Context) int {
	ran := 0
	for len(l.queue) > 0 && l.queue[0].due <= l.now {
		if ctx.Err() != nil {
			return ran
		}
		e := l.queue[0]
		l.queue = l.queue[1:]
		if e.cancelled {
			continue
		}
		e.done = true
		ran++
		if err := l.run(ctx, e); err != nil {
			l.logger.Warn("Deferred task failed", "task_id", e.id, "err", err)
			if l.onError != nil {
				l.onError(ctx, err)
			}
		}
	}
	return ran
}

// run executes one task, converting a panic into an error so that one failing task
// never blocks the rest of the pass.
func (l *Loop) run(ctx context.Context, e *entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return e.task(ctx)
}

var _ ports.Scheduler = (*Loop)(nil)
