package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/session"
)

// ValidateSettleInterval rejects tick intervals the settler cannot run with.
func ValidateSettleInterval(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("settle interval must be positive, got %v", interval)
	}
	return nil
}

// RunSettler advances the deferred work of every open workspace on each tick, until
// ctx is cancelled. It takes the workspace lock, so it never interleaves with edits.
func RunSettler(ctx context.Context, sessions *session.Manager, interval time.Duration, logger *slog.Logger) error {
	if err := ValidateSettleInterval(interval); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			SettleOnce(ctx, sessions, elapsed, logger)
		}
	}
}

// SettleOnce advances every open workspace by elapsed and returns the tasks run.
func SettleOnce(ctx context.Context, sessions *session.Manager, elapsed time.Duration, logger *slog.Logger) int {
	total := 0
	for _, id := range sessions.List() {
		err := sessions.WithLock(ctx, id, func(ctx context.Context, ws *planner.Workspace) error {
			total += ws.Advance(ctx, elapsed)
			return nil
		})
		if err != nil {
			// Closed between List and WithLock.
			logger.Debug("Settle skipped", "workspace", id, "err", err)
		}
	}
	return total
}
