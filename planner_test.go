package planner_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/adapters/redis"
	"github.com/aretw0/planner/pkg/coverage"
	"github.com/aretw0/planner/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() planner.Option {
	n := 0
	return planner.WithIDGenerator(func() domain.EntityID {
		n++
		return domain.EntityID(fmt.Sprintf("id-%d", n))
	})
}

func newWorkspace(t *testing.T, opts ...planner.Option) *planner.Workspace {
	t.Helper()
	ws, err := planner.New("test", append([]planner.Option{sequentialIDs()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(ws.Close)
	return ws
}

func TestNew_RequiresID(t *testing.T) {
	_, err := planner.New("")
	assert.Error(t, err)
}

func TestWorkspace_DeviceCoverageLifecycle(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	ap, err := ws.PlaceDevice(ctx, planner.DeviceSpec{
		ID: "ap", Position: domain.Point{X: 50, Y: 50}, Scale: 2, Label: "AP 1",
		Coverage: true, Fields: map[string]string{"range": "30"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ws.Pending())
	assert.False(t, ws.Scene().Contains(coverage.OverlayID(ap.ID)))

	ws.Settle(ctx)
	overlay, err := ws.Get(coverage.OverlayID(ap.ID))
	require.NoError(t, err)
	assert.InDelta(t, 110.0, overlay.Points[0].X, 1e-9)

	label, err := ws.Get(ap.Label)
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 50, Y: 90}, label.Position)

	require.True(t, ws.Undo(ctx))
	ws.Settle(ctx)
	assert.Empty(t, ws.Scene().List())

	require.True(t, ws.Redo(ctx))
	ws.Settle(ctx)
	assert.True(t, ws.Scene().Contains(coverage.OverlayID(ap.ID)))
	assert.True(t, ws.Scene().Contains(ap.Label))
}

func TestWorkspace_SettleDelay(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t, planner.WithSettleDelay(50*time.Millisecond))

	ap, err := ws.PlaceDevice(ctx, planner.DeviceSpec{Coverage: true})
	require.NoError(t, err)

	assert.Equal(t, 0, ws.Advance(ctx, 20*time.Millisecond))
	assert.False(t, ws.Scene().Contains(coverage.OverlayID(ap.ID)))
	assert.Equal(t, 1, ws.Advance(ctx, 30*time.Millisecond))
	assert.True(t, ws.Scene().Contains(coverage.OverlayID(ap.ID)))
}

func TestWorkspace_RegionIsOneUndoStep(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	region, err := ws.DrawRegion(ctx, planner.RegionSpec{
		ID: "P", Kind: domain.KindZone, Label: "Lobby",
		Points: []domain.Point{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 30}, {X: 0, Y: 30}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 15, Y: 15}, region.Position)
	assert.Equal(t, 1, ws.State().UndoDepth)

	snap, err := ws.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Registries[domain.RegistryZones], 1)
	assert.Equal(t, "Lobby", snap.Registries[domain.RegistryZones][0].Name)
	assert.Equal(t, 1, snap.Count(domain.KindLabel))

	ws.Undo(ctx)
	snap, _ = ws.Snapshot(ctx)
	assert.Empty(t, snap.Registries[domain.RegistryZones])
	assert.Empty(t, snap.Entities)

	ws.Redo(ctx)
	snap, _ = ws.Snapshot(ctx)
	require.Len(t, snap.Registries[domain.RegistryZones], 1)
	assert.Equal(t, domain.EntityID("P"), snap.Registries[domain.RegistryZones][0].EntityID)
}

func TestWorkspace_DrawRegionValidation(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	_, err := ws.DrawRegion(ctx, planner.RegionSpec{Kind: domain.KindShape, Points: make([]domain.Point, 3)})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = ws.DrawRegion(ctx, planner.RegionSpec{Kind: domain.KindRoom, Points: make([]domain.Point, 2)})
	assert.Error(t, err)
	assert.Equal(t, 0, ws.State().UndoDepth)
}

func TestWorkspace_WallLoop(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	nodes, err := ws.DrawWalls(ctx, planner.WallSpec{
		Points: []domain.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		Closed: true,
	})
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Len(t, ws.Walls().Edges(), 3)
	assert.Equal(t, 1, ws.State().UndoDepth)

	snap, _ := ws.Snapshot(ctx)
	assert.Equal(t, 0, snap.Count(domain.KindGuide), "guides are gone once drawing ends")

	// In a loop every neighbour keeps another edge, so nothing is orphaned.
	ok, err := ws.Delete(ctx, nodes[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, ws.Walls().Edges(), 1)
	assert.Equal(t, 2, ws.Walls().Degree(nodes[1])+ws.Walls().Degree(nodes[2]))

	ws.Undo(ctx)
	assert.Len(t, ws.Walls().Edges(), 3)

	ws.Undo(ctx)
	assert.Empty(t, ws.Scene().List())
	assert.Empty(t, ws.Walls().Edges())
}

func TestWorkspace_DeleteErrors(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	_, err := ws.Delete(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	assert.ErrorIs(t, ws.HideLabel("missing", true), domain.ErrEntityNotFound)
}

func TestWorkspace_HideLabelSurvivesDeleteUndo(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)
	ap, err := ws.PlaceDevice(ctx, planner.DeviceSpec{ID: "ap", Label: "AP"})
	require.NoError(t, err)

	require.NoError(t, ws.HideLabel("ap", true))
	assert.Equal(t, 1, ws.State().UndoDepth, "visibility is not journaled")

	_, err = ws.Delete(ctx, "ap")
	require.NoError(t, err)
	ws.Undo(ctx)

	label, err := ws.Get(ap.Label)
	require.NoError(t, err)
	assert.True(t, label.Hidden)
}

func TestWorkspace_StampValidation(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t)

	_, err := ws.Stamp(ctx, &domain.Entity{Kind: "sofa"})
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	e, err := ws.Stamp(ctx, &domain.Entity{Kind: domain.KindImage})
	require.NoError(t, err)
	assert.Equal(t, domain.EntityID("id-1"), e.ID)

	_, err = ws.Stamp(ctx, &domain.Entity{ID: e.ID, Kind: domain.KindImage})
	assert.Error(t, err)
	assert.Equal(t, 1, ws.State().UndoDepth)

	refused := []struct {
		name   string
		entity *domain.Entity
	}{
		{"zone", &domain.Entity{Kind: domain.KindZone, Points: []domain.Point{{X: 0}, {X: 1}, {Y: 1}}}},
		{"room", &domain.Entity{Kind: domain.KindRoom}},
		{"title block", &domain.Entity{Kind: domain.KindTitleBlock}},
		{"label", &domain.Entity{Kind: domain.KindLabel, Text: "orphan"}},
		{"overlay", &domain.Entity{Kind: domain.KindOverlay}},
		{"handle", &domain.Entity{Kind: domain.KindHandle}},
		{"guide", &domain.Entity{Kind: domain.KindGuide}},
		{"background", &domain.Entity{Kind: domain.KindBackground}},
		{"aggregate", &domain.Entity{Kind: domain.KindAggregate}},
		{"transient shape", &domain.Entity{Kind: domain.KindShape, Transient: true}},
	}
	for _, tt := range refused {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.Stamp(ctx, tt.entity)
			assert.ErrorIs(t, err, domain.ErrNotStampable)
		})
	}

	snap, err := ws.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entities, 1, "refused stamps leave nothing behind")
	assert.Empty(t, snap.Registries[domain.RegistryZones])
	assert.Equal(t, 1, ws.State().UndoDepth)
}

func TestWorkspace_ToolsReportDroppedCommands(t *testing.T) {
	ctx := context.Background()
	var ws *planner.Workspace
	var errs []error
	nested := false
	ws = newWorkspace(t, planner.WithLifecycleHooks(domain.LifecycleHooks{
		OnItemsChanged: func(ctx context.Context, e *domain.ItemsChangedEvent) {
			if nested {
				return
			}
			nested = true
			// Fires while the outer command is executing.
			_, err := ws.PlaceDevice(ctx, planner.DeviceSpec{ID: "inner", Label: "Inner"})
			errs = append(errs, err)
			_, err = ws.DrawRegion(ctx, planner.RegionSpec{ID: "R", Kind: domain.KindZone,
				Points: []domain.Point{{X: 0}, {X: 10}, {Y: 10}}})
			errs = append(errs, err)
			_, err = ws.DrawWalls(ctx, planner.WallSpec{Points: []domain.Point{{X: 0}, {X: 5}}})
			errs = append(errs, err)
			_, err = ws.Stamp(ctx, &domain.Entity{Kind: domain.KindShape})
			errs = append(errs, err)
		},
	}))

	_, err := ws.PlaceDevice(ctx, planner.DeviceSpec{ID: "outer"})
	require.NoError(t, err)

	require.Len(t, errs, 4)
	for _, err := range errs {
		assert.ErrorIs(t, err, domain.ErrNotApplied)
	}
	snap, err := ws.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entities, 1, "only the outer device")
	assert.Equal(t, 1, ws.State().UndoDepth)
}

func TestWorkspace_MaxHistory(t *testing.T) {
	ctx := context.Background()
	ws := newWorkspace(t, planner.WithMaxHistory(5))
	for i := 0; i < 8; i++ {
		_, err := ws.Stamp(ctx, &domain.Entity{Kind: domain.KindShape})
		require.NoError(t, err)
	}
	assert.Equal(t, 5, ws.State().UndoDepth)
}

func TestWorkspace_HooksFire(t *testing.T) {
	ctx := context.Background()
	var commands, itemsChanged, recomputes int
	var states []domain.HistoryState
	ws := newWorkspace(t,
		planner.WithLifecycleHooks(domain.LifecycleHooks{
			OnCommand:       func(ctx context.Context, e *domain.CommandEvent) { commands++ },
			OnHistoryChange: func(ctx context.Context, s domain.HistoryState) { states = append(states, s) },
		}),
		planner.WithLifecycleHooks(domain.LifecycleHooks{
			OnItemsChanged: func(ctx context.Context, e *domain.ItemsChangedEvent) { itemsChanged++ },
			OnRecompute:    func(ctx context.Context, e *domain.RecomputeEvent) { recomputes++ },
		}),
	)

	_, err := ws.PlaceDevice(ctx, planner.DeviceSpec{Coverage: true})
	require.NoError(t, err)
	ws.Settle(ctx)

	assert.Equal(t, 1, commands)
	assert.Equal(t, 1, itemsChanged)
	assert.Equal(t, 1, recomputes)
	require.Len(t, states, 1)
	assert.True(t, states[0].CanUndo)
}

func TestWorkspace_RedisRegistries(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := redis.New(mr.Addr(), "", 0, redis.WithPrefix("plan:"))
	defer store.Close()

	ws := newWorkspace(t, planner.WithRegistryStore(store))
	_, err := ws.DrawRegion(ctx, planner.RegionSpec{
		ID: "R", Kind: domain.KindRoom, Label: "Lab",
		Points: []domain.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}},
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("plan:rooms:records"))

	ws.Undo(ctx)
	recs, err := store.Registry(domain.RegistryRooms).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
