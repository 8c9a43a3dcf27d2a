package history

import (
	"context"
	"log/slog"

	"github.com/aretw0/planner/pkg/domain"
)

// Filter reports whether an inserted entity must not be tracked.
type Filter func(e *domain.Entity) bool

// Tracker records free-form insertions as Add commands, so tools that stamp single
// entities need not know about the history.
type Tracker struct {
	env      *Env
	manager  *Manager
	resolver *Resolver
	filters  []Filter
	logger   *slog.Logger

	ctx    context.Context
	cancel func()
}

// TrackerOption configures the Tracker.
type TrackerOption func(*Tracker)

// WithTrackFilter installs an extra host filter. Entities matching any filter are
// ignored.
func WithTrackFilter(f Filter) TrackerOption {
	return func(t *Tracker) {
		t.filters = append(t.filters, f)
	}
}

// WithTrackerLogger configures a logger for the Tracker.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker creates a Tracker. It observes nothing until Start is called.
func NewTracker(env *Env, manager *Manager, resolver *Resolver, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		env:      env,
		manager:  manager,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = env.logger()
	}
	return t
}

// Start subscribes to scene insertions. ctx is passed to the history hooks fired by
// recorded commands.
func (t *Tracker) Start(ctx context.Context) {
	if t.cancel != nil {
		return
	}
	t.ctx = ctx
	t.cancel = t.env.Scene.OnInsert(t.observe)
}

// Stop unsubscribes from the scene.
func (t *Tracker) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Skips reports whether an inserted entity is outside the tracker's reach.
func (t *Tracker) Skips(e *domain.Entity) bool {
	switch {
	case e == nil:
		return true
	case e.Transient, e.Kind.IsTransient(), e.Kind.IsDerived():
		return true
	case e.Kind.IsRegion() && !e.Finalized:
		return true
	case e.Kind == domain.KindAggregate:
		// Emitted pre-composed by their owning tool.
		return true
	}
	for _, f := range t.filters {
		if f(e) {
			return true
		}
	}
	return false
}

func (t *Tracker) observe(e *domain.Entity) {
	if t.manager.Executing() || t.Skips(e) {
		return
	}
	cmd := NewAddCommand(t.env, e, t.resolver.FindRelated(e)...)
	if !t.manager.Record(t.ctx, cmd) {
		return
	}
	t.logger.Debug("Insertion tracked", "entity_id", e.ID, "kind", e.Kind)
	var err error
	t.manager.Suppress(func() { err = cmd.Adopt(t.ctx) })
	if err != nil {
		t.logger.Error("Tracked insertion not fully registered", "entity_id", e.ID, "err", err)
	}
}
