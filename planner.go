package planner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/planner/pkg/adapters/memory"
	"github.com/aretw0/planner/pkg/coverage"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
	"github.com/aretw0/planner/pkg/ports"
	"github.com/aretw0/planner/pkg/scheduler"
	"github.com/aretw0/planner/pkg/walls"
	"github.com/google/uuid"
)

// Workspace is the high-level entry point: one editable document with its scene,
// registries, wall graph, deferred work and history.
type Workspace struct {
	ID string

	scene      ports.Scene
	registries ports.RegistryStore
	walls      *walls.Graph
	loop       *scheduler.Loop
	coverage   *coverage.Recomputer
	env        *history.Env
	manager    *history.Manager
	resolver   *history.Resolver
	tracker    *history.Tracker
	router     *history.Router

	maxHistory  int
	model       coverage.Model
	settleDelay time.Duration
	filters     []history.Filter
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	newID       func() domain.EntityID
}

// Option defines a functional option for configuring the Workspace.
type Option func(*Workspace)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Workspace) {
		w.hooks = domain.MergeHooks(w.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the workspace.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// WithMaxHistory sets the capacity of the undo and redo stacks (default 50).
func WithMaxHistory(n int) Option {
	return func(w *Workspace) {
		w.maxHistory = n
	}
}

// WithRegistryStore injects the registry backend. Defaults to in-memory registries.
func WithRegistryStore(store ports.RegistryStore) Option {
	return func(w *Workspace) {
		w.registries = store
	}
}

// WithScene injects the scene. Defaults to an in-memory scene.
func WithScene(scene ports.Scene) Option {
	return func(w *Workspace) {
		w.scene = scene
	}
}

// WithCoverageModel sets the model used to compute coverage overlays.
func WithCoverageModel(m coverage.Model) Option {
	return func(w *Workspace) {
		w.model = m
	}
}

// WithSettleDelay delays overlay recomputation after a change (default: next tick).
func WithSettleDelay(d time.Duration) Option {
	return func(w *Workspace) {
		w.settleDelay = d
	}
}

// WithTrackFilter excludes matching insertions from auto-tracking.
func WithTrackFilter(f history.Filter) Option {
	return func(w *Workspace) {
		w.filters = append(w.filters, f)
	}
}

// WithIDGenerator overrides how new entity IDs are minted (default: UUIDs).
func WithIDGenerator(fn func() domain.EntityID) Option {
	return func(w *Workspace) {
		w.newID = fn
	}
}

// New initializes a Workspace and starts auto-tracking its scene.
func New(id string, opts ...Option) (*Workspace, error) {
	if id == "" {
		return nil, fmt.Errorf("workspace id is required")
	}
	w := &Workspace{ID: id}
	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w.logger = w.logger.With("workspace", id)
	if w.scene == nil {
		w.scene = memory.NewScene()
	}
	if w.registries == nil {
		w.registries = memory.NewRegistryStore()
	}
	if w.model == nil {
		w.model = coverage.DefaultModel
	}
	if w.newID == nil {
		w.newID = func() domain.EntityID { return domain.EntityID(uuid.NewString()) }
	}

	w.walls = walls.New()
	w.loop = scheduler.NewLoop(scheduler.WithLogger(w.logger))
	w.coverage = coverage.New(w.scene, w.loop,
		coverage.WithModel(w.model),
		coverage.WithDelay(w.settleDelay),
		coverage.WithLifecycleHooks(w.hooks),
		coverage.WithLogger(w.logger),
	)
	w.env = &history.Env{
		Scene:      w.scene,
		Registries: w.registries,
		Walls:      w.walls,
		Coverage:   w.coverage,
		Hooks:      w.hooks,
		Logger:     w.logger,
		NewID:      w.newID,
	}

	mgrOpts := []history.Option{history.WithLogger(w.logger)}
	if w.maxHistory > 0 {
		mgrOpts = append(mgrOpts, history.WithMaxSize(w.maxHistory))
	}
	w.manager = history.NewManager(w.env, mgrOpts...)
	w.resolver = history.NewResolver(w.scene)
	w.router = history.NewRouter(w.env, w.resolver, w.manager)

	trackOpts := []history.TrackerOption{history.WithTrackerLogger(w.logger)}
	for _, f := range w.filters {
		trackOpts = append(trackOpts, history.WithTrackFilter(f))
	}
	w.tracker = history.NewTracker(w.env, w.manager, w.resolver, trackOpts...)
	w.tracker.Start(context.Background())

	return w, nil
}

// Close stops auto-tracking and releases the registry store when it holds a
// connection. Pending deferred work is dropped.
func (w *Workspace) Close() {
	w.tracker.Stop()
	if c, ok := w.registries.(io.Closer); ok {
		if err := c.Close(); err != nil {
			w.logger.Warn("Registry store close failed", "err", err)
		}
	}
}

// Scene returns the underlying scene.
func (w *Workspace) Scene() ports.Scene {
	return w.scene
}

// Registries returns the registry store.
func (w *Workspace) Registries() ports.RegistryStore {
	return w.registries
}

// Walls returns the wall graph index.
func (w *Workspace) Walls() *walls.Graph {
	return w.walls
}

// History returns the history manager.
func (w *Workspace) History() *history.Manager {
	return w.manager
}

// Env returns the command environment, for tools that build their own commands.
func (w *Workspace) Env() *history.Env {
	return w.env
}

// Execute runs a tool-built command through the history.
func (w *Workspace) Execute(ctx context.Context, cmd history.Command) bool {
	return w.manager.ExecuteCommand(ctx, cmd)
}

// Undo reverts the most recent command.
func (w *Workspace) Undo(ctx context.Context) bool {
	return w.manager.Undo(ctx)
}

// Redo re-applies the most recently undone command.
func (w *Workspace) Redo(ctx context.Context) bool {
	return w.manager.Redo(ctx)
}

// State returns the undo/redo affordance state.
func (w *Workspace) State() domain.HistoryState {
	return w.manager.State()
}

// Settle runs every deferred task, including tasks they schedule in turn.
func (w *Workspace) Settle(ctx context.Context) int {
	return w.loop.Drain(ctx)
}

// Advance moves the workspace clock forward and runs the tasks that became due.
func (w *Workspace) Advance(ctx context.Context, d time.Duration) int {
	return w.loop.Advance(ctx, d)
}

// Pending returns the number of deferred tasks waiting to run.
func (w *Workspace) Pending() int {
	return w.loop.Pending()
}

// Get returns a scene entity.
func (w *Workspace) Get(id domain.EntityID) (*domain.Entity, error) {
	e, ok := w.scene.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEntityNotFound, id)
	}
	return e, nil
}
