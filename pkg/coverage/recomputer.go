// Package coverage maintains the derived coverage overlays of coverage-bearing devices.
//
// Overlays are recomputed through the workspace scheduler, never inline, so that the
// device's final position and scale have settled before the geometry is read.
package coverage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/aretw0/planner/internal/logging"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/ports"
)

// Model computes the overlay outline of a coverage-bearing entity.
type Model interface {
	Outline(e *domain.Entity) ([]domain.Point, error)
}

// CircleModel approximates coverage as a circle around the device.
// The radius is read from the "range" field and multiplied by the device scale.
type CircleModel struct {
	Segments     int
	DefaultRange float64
}

// DefaultModel is used when no model is configured.
var DefaultModel = CircleModel{Segments: 24, DefaultRange: 100}

// Outline implements Model.
func (m CircleModel) Outline(e *domain.Entity) ([]domain.Point, error) {
	radius := m.DefaultRange
	if raw := e.Field("range"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", raw, err)
		}
		radius = v
	}
	if e.Scale > 0 {
		radius *= e.Scale
	}
	if radius <= 0 {
		return nil, fmt.Errorf("non-positive coverage radius %v", radius)
	}

	segments := m.Segments
	if segments < 3 {
		segments = 3
	}
	pts := make([]domain.Point, segments)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = domain.Point{
			X: e.Position.X + radius*math.Cos(theta),
			Y: e.Position.Y + radius*math.Sin(theta),
		}
	}
	return pts, nil
}

// OverlayID returns the ID of the coverage overlay owned by an entity.
func OverlayID(owner domain.EntityID) domain.EntityID {
	return owner + ":coverage"
}

// Recomputer schedules and runs overlay recomputation, at most one pending task per
// entity. A newer request replaces the pending one; removing the entity cancels it.
type Recomputer struct {
	scene   ports.Scene
	sched   ports.Scheduler
	model   Model
	delay   time.Duration
	pending map[domain.EntityID]ports.Handle
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures the Recomputer.
type Option func(*Recomputer)

// WithModel sets the overlay geometry model.
func WithModel(m Model) Option {
	return func(r *Recomputer) {
		r.model = m
	}
}

// WithDelay sets the settle delay before a recompute runs.
func WithDelay(d time.Duration) Option {
	return func(r *Recomputer) {
		r.delay = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Recomputer) {
		r.hooks = hooks
	}
}

// WithLogger configures a logger for recompute failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recomputer) {
		r.logger = logger
	}
}

// New creates a Recomputer bound to a scene and a scheduler.
func New(scene ports.Scene, sched ports.Scheduler, opts ...Option) *Recomputer {
	r := &Recomputer{
		scene:   scene,
		sched:   sched,
		model:   DefaultModel,
		pending: make(map[domain.EntityID]ports.Handle),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schedule requests a deferred recompute for id, replacing any pending request.
func (r *Recomputer) Schedule(id domain.EntityID) {
	if h, ok := r.pending[id]; ok {
		h.Cancel()
	}
	r.pending[id] = r.sched.After(r.delay, func(ctx context.Context) error {
		delete(r.pending, id)
		r.recompute(ctx, id)
		return nil
	})
}

// Cancel drops a pending recompute for id, if any.
func (r *Recomputer) Cancel(id domain.EntityID) {
	if h, ok := r.pending[id]; ok {
		h.Cancel()
		delete(r.pending, id)
	}
}

// IsPending reports whether a recompute for id is waiting to run.
func (r *Recomputer) IsPending(id domain.EntityID) bool {
	_, ok := r.pending[id]
	return ok
}

// ScheduleAll requests a recompute for every coverage-bearing entity in the scene.
func (r *Recomputer) ScheduleAll() int {
	n := 0
	for _, e := range r.scene.List() {
		if e.Coverage {
			r.Schedule(e.ID)
			n++
		}
	}
	return n
}

// recompute refreshes the overlay of id. Failures are logged and reported, never
// propagated: one entity's failure must not block the rest of the pass.
func (r *Recomputer) recompute(ctx context.Context, id domain.EntityID) {
	evt := &domain.RecomputeEvent{Timestamp: time.Now(), EntityID: id}
	defer func() {
		if p := recover(); p != nil {
			evt.Err = fmt.Errorf("recompute panicked: %v", p)
		}
		if evt.Err != nil {
			r.logger.Warn("Coverage recompute failed", "entity_id", id, "err", evt.Err)
		}
		if r.hooks.OnRecompute != nil {
			r.hooks.OnRecompute(ctx, evt)
		}
	}()

	e, ok := r.scene.Get(id)
	if !ok || !e.Coverage {
		// Removed (or no longer coverage-bearing) after the task was scheduled.
		evt.Skipped = true
		return
	}

	outline, err := r.model.Outline(e)
	if err != nil {
		evt.Err = err
		return
	}

	overlayID := OverlayID(id)
	if overlay, ok := r.scene.Get(overlayID); ok {
		overlay.Points = outline
		overlay.Position = e.Position
		overlay.Hidden = e.Hidden
	} else {
		r.scene.Insert(&domain.Entity{
			ID:        overlayID,
			Kind:      domain.KindOverlay,
			Transient: true,
			Finalized: true,
			Position:  e.Position,
			Points:    outline,
			Hidden:    e.Hidden,
			Owner:     id,
		})
	}
	r.scene.RequestRedraw()
}
