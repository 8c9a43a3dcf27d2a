package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/planner/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every journal event to logger.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			attrs := []any{"event", e.Type, "command", e.Command, "entities", len(e.Entities)}
			if e.Err != nil {
				logger.WarnContext(ctx, "history_event", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "history_event", attrs...)
		},
		OnHistoryChange: func(ctx context.Context, s domain.HistoryState) {
			logger.DebugContext(ctx, "history_state", "can_undo", s.CanUndo, "can_redo", s.CanRedo)
		},
		OnItemsChanged: func(ctx context.Context, e *domain.ItemsChangedEvent) {
			logger.InfoContext(ctx, "items_changed", "registries", e.Registries)
		},
		OnRecompute: func(ctx context.Context, e *domain.RecomputeEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "recompute", "entity_id", e.EntityID, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "recompute", "entity_id", e.EntityID, "skipped", e.Skipped)
		},
	}
}
