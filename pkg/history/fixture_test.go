package history_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/planner/pkg/adapters/memory"
	"github.com/aretw0/planner/pkg/coverage"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/aretw0/planner/pkg/history"
	"github.com/aretw0/planner/pkg/scheduler"
	"github.com/aretw0/planner/pkg/walls"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx      context.Context
	scene    *memory.Scene
	regs     *memory.RegistryStore
	walls    *walls.Graph
	loop     *scheduler.Loop
	coverage *coverage.Recomputer
	env      *history.Env
	manager  *history.Manager
	resolver *history.Resolver
	tracker  *history.Tracker
	router   *history.Router

	states  []domain.HistoryState
	changed int
}

func newFixture(t *testing.T, opts ...history.Option) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		scene: memory.NewScene(),
		regs:  memory.NewRegistryStore(),
		walls: walls.New(),
		loop:  scheduler.NewLoop(),
	}
	f.coverage = coverage.New(f.scene, f.loop)
	seq := 0
	f.env = &history.Env{
		Scene:      f.scene,
		Registries: f.regs,
		Walls:      f.walls,
		Coverage:   f.coverage,
		Hooks: domain.LifecycleHooks{
			OnHistoryChange: func(ctx context.Context, s domain.HistoryState) { f.states = append(f.states, s) },
			OnItemsChanged:  func(ctx context.Context, e *domain.ItemsChangedEvent) { f.changed++ },
		},
		NewID: func() domain.EntityID {
			seq++
			return domain.EntityID(fmt.Sprintf("gen-%d", seq))
		},
	}
	f.manager = history.NewManager(f.env, opts...)
	f.resolver = history.NewResolver(f.scene)
	f.tracker = history.NewTracker(f.env, f.manager, f.resolver)
	f.router = history.NewRouter(f.env, f.resolver, f.manager)
	f.tracker.Start(f.ctx)
	t.Cleanup(f.tracker.Stop)
	return f
}

func (f *fixture) records(t *testing.T, name domain.RegistryName) []domain.Record {
	t.Helper()
	recs, err := f.regs.Registry(name).List(f.ctx)
	require.NoError(t, err)
	return recs
}

func (f *fixture) lastState() domain.HistoryState {
	if len(f.states) == 0 {
		return domain.HistoryState{}
	}
	return f.states[len(f.states)-1]
}

func shape(id domain.EntityID) *domain.Entity {
	return &domain.Entity{ID: id, Kind: domain.KindShape, Finalized: true, Position: domain.Point{X: 1, Y: 2}}
}

func device(id domain.EntityID, label string) *domain.Entity {
	return &domain.Entity{
		ID: id, Kind: domain.KindDevice, Finalized: true,
		Position: domain.Point{X: 100, Y: 50}, Scale: 1.5,
		LabelText: label, Coverage: true,
		Fields: map[string]string{"model": "AP-42", "range": "10"},
	}
}

func label(id, owner domain.EntityID, text string) *domain.Entity {
	return &domain.Entity{ID: id, Kind: domain.KindLabel, Finalized: true, Text: text, Owner: owner, Position: domain.Point{X: 100, Y: 80}}
}

func node(id domain.EntityID) *domain.Entity {
	return &domain.Entity{ID: id, Kind: domain.KindWallNode, Finalized: true}
}

func edge(id, a, b domain.EntityID) *domain.Entity {
	return &domain.Entity{ID: id, Kind: domain.KindWallEdge, Finalized: true, Endpoints: [2]domain.EntityID{a, b}}
}

// buildChain draws the A–B–C wall chain as one composite.
func (f *fixture) buildChain(t *testing.T) {
	t.Helper()
	cmd := history.NewCompositeCommand(
		history.NewAddCommand(f.env, node("A")),
		history.NewAddCommand(f.env, node("B")),
		history.NewAddCommand(f.env, node("C")),
		history.NewAddCommand(f.env, edge("AB", "A", "B")),
		history.NewAddCommand(f.env, edge("BC", "B", "C")),
	)
	require.True(t, f.manager.ExecuteCommand(f.ctx, cmd))
}

func (f *fixture) present(ids ...domain.EntityID) bool {
	for _, id := range ids {
		if !f.scene.Contains(id) {
			return false
		}
	}
	return true
}

func (f *fixture) absent(ids ...domain.EntityID) bool {
	for _, id := range ids {
		if f.scene.Contains(id) {
			return false
		}
	}
	return true
}
