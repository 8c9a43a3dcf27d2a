package domain

import (
	"context"
	"time"
)

// EventType defines the category of a history event.
type EventType string

const (
	EventExecute EventType = "execute" // A new command was executed and pushed
	EventRecord  EventType = "record"  // An already-applied insertion was recorded
	EventUndo    EventType = "undo"
	EventRedo    EventType = "redo"
	EventEvict   EventType = "evict" // The oldest entry fell off a full stack
)

// HistoryState is the UI affordance reported after every stack mutation.
type HistoryState struct {
	CanUndo   bool `json:"can_undo"`
	CanRedo   bool `json:"can_redo"`
	UndoDepth int  `json:"undo_depth"`
	RedoDepth int  `json:"redo_depth"`
}

// CommandEvent describes a command moving through the history.
type CommandEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Type      EventType  `json:"type"`
	Command   string     `json:"command"`
	Entities  []EntityID `json:"entities,omitempty"`
	Err       error      `json:"-"`
}

// ItemsChangedEvent is broadcast after a command changed registry membership, so
// independent panels (layer lists) can refresh without polling.
type ItemsChangedEvent struct {
	Timestamp  time.Time      `json:"timestamp"`
	Registries []RegistryName `json:"registries"`
}

// RecomputeEvent reports the outcome of a deferred overlay recomputation.
type RecomputeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	EntityID  EntityID  `json:"entity_id"`
	Skipped   bool      `json:"skipped,omitempty"` // Target was gone when the task ran
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for journal observability.
type LifecycleHooks struct {
	OnCommand       func(context.Context, *CommandEvent)
	OnHistoryChange func(context.Context, HistoryState)
	OnItemsChanged  func(context.Context, *ItemsChangedEvent)
	OnRecompute     func(context.Context, *RecomputeEvent)
}

// MergeHooks fans every callback out to all of the given hook sets, in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range sets {
		h := h
		if h.OnCommand != nil {
			prev := merged.OnCommand
			merged.OnCommand = func(ctx context.Context, e *CommandEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCommand(ctx, e)
			}
		}
		if h.OnHistoryChange != nil {
			prev := merged.OnHistoryChange
			merged.OnHistoryChange = func(ctx context.Context, s HistoryState) {
				if prev != nil {
					prev(ctx, s)
				}
				h.OnHistoryChange(ctx, s)
			}
		}
		if h.OnItemsChanged != nil {
			prev := merged.OnItemsChanged
			merged.OnItemsChanged = func(ctx context.Context, e *ItemsChangedEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnItemsChanged(ctx, e)
			}
		}
		if h.OnRecompute != nil {
			prev := merged.OnRecompute
			merged.OnRecompute = func(ctx context.Context, e *RecomputeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRecompute(ctx, e)
			}
		}
	}
	return merged
}
